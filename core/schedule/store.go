package schedule

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/ccourse/core"
)

var (
	// ErrNotFound is returned by a Repository when no row matches.
	ErrNotFound = errors.New("class session not found")
	// ErrReleased is returned when a persistence call completes after the store was released.
	ErrReleased = errors.New("schedule store released")
)

type (
	Repository interface {
		// QuerySessions returns all sessions ordered by date, then start time.
		QuerySessions(ctx context.Context) ([]ClassSession, error)
		CreateSession(ctx context.Context, cs ClassSession) (ClassSession, error)
		UpdateSession(ctx context.Context, cs ClassSession) (ClassSession, error)
		DeleteSession(ctx context.Context, id string) error
	}

	StoreOptions struct {
		DefaultMeetingLink string
		Location           *time.Location // defaults to UTC
		Notifier           Notifier       // optional
		Now                func() time.Time
	}

	// ScheduleStore holds the class sessions of one request or session.
	// It is not safe for concurrent use.
	ScheduleStore struct {
		repo      Repository
		logger    core.Logger
		validator *core.Validator
		opts      StoreOptions
		sessions  []ClassSession
		released  atomic.Bool
	}
)

func NewScheduleStore(repo Repository, logger core.Logger, validator *core.Validator, opts StoreOptions) *ScheduleStore {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = core.NowFunc
	}
	return &ScheduleStore{
		repo:      repo,
		logger:    logger,
		validator: validator,
		opts:      opts,
	}
}

func (s *ScheduleStore) Load(ctx context.Context) ([]ClassSession, error) {
	if s.Released() {
		return nil, ErrReleased
	}
	sessions, err := s.repo.QuerySessions(ctx)
	if s.Released() {
		return nil, ErrReleased
	}
	if err != nil {
		return nil, core.NewPersistenceError("querying class sessions", err)
	}
	s.sessions = sessions
	return s.Sessions(), nil
}

// AddSession validates and persists a new session, then appends it to the collection.
func (s *ScheduleStore) AddSession(ctx context.Context, nc NewClassSession) (ClassSession, error) {
	if s.Released() {
		return ClassSession{}, ErrReleased
	}
	cs, err := s.candidate(nc)
	if err != nil {
		return ClassSession{}, err
	}
	now := s.opts.Now().UTC()
	cs.ID = uuid.New().String()
	cs.CreatedAt = now
	cs.UpdatedAt = now

	created, err := s.repo.CreateSession(ctx, cs)
	if s.Released() {
		return ClassSession{}, ErrReleased
	}
	if err != nil {
		return ClassSession{}, core.NewPersistenceError("creating class session", err)
	}

	s.sessions = append(s.sessions, created)
	if s.opts.Notifier != nil {
		s.opts.Notifier.SessionScheduled(created, false)
	}
	return created, nil
}

// UpdateSession replaces the session identified by id with the validated candidate.
func (s *ScheduleStore) UpdateSession(ctx context.Context, id string, nc NewClassSession) (ClassSession, error) {
	if s.Released() {
		return ClassSession{}, ErrReleased
	}
	cs, err := s.candidate(nc)
	if err != nil {
		return ClassSession{}, err
	}
	i := s.index(id)
	if i < 0 {
		return ClassSession{}, core.NewNotFoundError("class session", id)
	}
	cs.ID = id
	cs.CreatedAt = s.sessions[i].CreatedAt
	cs.UpdatedAt = s.opts.Now().UTC()

	updated, err := s.repo.UpdateSession(ctx, cs)
	if s.Released() {
		return ClassSession{}, ErrReleased
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ClassSession{}, core.NewNotFoundError("class session", id)
		}
		return ClassSession{}, core.NewPersistenceError("updating class session", err)
	}

	s.sessions[i] = updated
	if s.opts.Notifier != nil {
		s.opts.Notifier.SessionScheduled(updated, true)
	}
	return updated, nil
}

// RemoveSession deletes the session identified by id. Removing an unknown id is an error.
func (s *ScheduleStore) RemoveSession(ctx context.Context, id string) error {
	if s.Released() {
		return ErrReleased
	}
	i := s.index(id)
	if i < 0 {
		return core.NewNotFoundError("class session", id)
	}

	err := s.repo.DeleteSession(ctx, id)
	if s.Released() {
		return ErrReleased
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return core.NewNotFoundError("class session", id)
		}
		return core.NewPersistenceError("deleting class session", err)
	}

	removed := s.sessions[i]
	s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
	if s.opts.Notifier != nil {
		s.opts.Notifier.SessionCancelled(removed)
	}
	return nil
}

// Sessions returns a copy of the collection in its current order.
func (s *ScheduleStore) Sessions() []ClassSession {
	out := make([]ClassSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// ListUpcoming returns the sessions starting strictly after now, soonest first.
func (s *ScheduleStore) ListUpcoming(now time.Time) []ClassSession {
	now = now.In(s.opts.Location)
	upcoming := make([]ClassSession, 0, len(s.sessions))
	for _, cs := range s.sessions {
		if cs.StartsAt(s.opts.Location).After(now) {
			upcoming = append(upcoming, cs)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt(s.opts.Location).Before(upcoming[j].StartsAt(s.opts.Location))
	})
	return upcoming
}

// ListPast returns the sessions not listed by ListUpcoming, most recent first.
func (s *ScheduleStore) ListPast(now time.Time) []ClassSession {
	now = now.In(s.opts.Location)
	past := make([]ClassSession, 0, len(s.sessions))
	for _, cs := range s.sessions {
		if !cs.StartsAt(s.opts.Location).After(now) {
			past = append(past, cs)
		}
	}
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].StartsAt(s.opts.Location).After(past[j].StartsAt(s.opts.Location))
	})
	return past
}

func (s *ScheduleStore) NextSession(now time.Time) (ClassSession, bool) {
	return FindNextSession(s.sessions, now.In(s.opts.Location))
}

func (s *ScheduleStore) TeachingHours(now time.Time) TeachingHours {
	return ComputeTeachingHours(s.sessions, now.In(s.opts.Location))
}

// Release discards the results of persistence calls still in flight.
func (s *ScheduleStore) Release() { s.released.Store(true) }

func (s *ScheduleStore) Released() bool { return s.released.Load() }

func (s *ScheduleStore) candidate(nc NewClassSession) (ClassSession, error) {
	if err := nc.Validate(s.validator); err != nil {
		return ClassSession{}, err
	}
	return nc.session(s.opts.DefaultMeetingLink)
}

func (s *ScheduleStore) index(id string) int {
	for i, cs := range s.sessions {
		if cs.ID == id {
			return i
		}
	}
	return -1
}
