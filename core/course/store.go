package course

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ccourse/core"
)

// ErrReleased is returned when a persistence call completes after the store was released.
var ErrReleased = errors.New("progress store released")

type (
	ProgressRepository interface {
		QueryLessonProgress(ctx context.Context) ([]LessonProgress, error)
		// UpsertLessonProgress inserts or replaces the record keyed by (ModuleID, LessonID).
		UpsertLessonProgress(ctx context.Context, rec LessonProgress) (LessonProgress, error)
	}

	StoreOptions struct {
		// SeedFirstModule marks every lesson of the first module completed when nothing is persisted yet.
		SeedFirstModule bool
		Now             func() time.Time
	}

	// ProgressStore holds the module collection of one request or session.
	// It is not safe for concurrent use.
	ProgressStore struct {
		repo       ProgressRepository
		curriculum Curriculum
		logger     core.Logger
		opts       StoreOptions
		modules    []Module
		released   atomic.Bool
	}
)

func NewProgressStore(repo ProgressRepository, curriculum Curriculum, logger core.Logger, opts StoreOptions) *ProgressStore {
	if opts.Now == nil {
		opts.Now = core.NowFunc
	}
	return &ProgressStore{
		repo:       repo,
		curriculum: curriculum,
		logger:     logger,
		opts:       opts,
		modules:    cloneModules(curriculum),
	}
}

// LoadInitialProgress rebuilds the collection from the curriculum merged with the persisted records.
func (s *ProgressStore) LoadInitialProgress(ctx context.Context) ([]Module, error) {
	if s.Released() {
		return nil, ErrReleased
	}
	records, err := s.repo.QueryLessonProgress(ctx)
	if s.Released() {
		return nil, ErrReleased
	}
	if err != nil {
		return nil, core.NewPersistenceError("querying lesson progress", err)
	}

	modules := cloneModules(s.curriculum)
	if len(records) == 0 && s.opts.SeedFirstModule && len(modules) > 0 {
		records = s.seedFirstModule(ctx, modules[0])
		if s.Released() {
			return nil, ErrReleased
		}
	}

	idx := make(map[progressKey]LessonStatus, len(records))
	for _, rec := range records {
		if !rec.Status.IsValid() {
			s.logger.Warn(fmt.Sprintf("ignoring lesson progress %s/%s with status %q", rec.ModuleID, rec.LessonID, rec.Status))
			continue
		}
		idx[progressKey{rec.ModuleID, rec.LessonID}] = rec.Status
	}
	for mi := range modules {
		for li := range modules[mi].Lessons {
			l := &modules[mi].Lessons[li]
			if status, ok := idx[progressKey{modules[mi].ID, l.ID}]; ok {
				l.Status = status
			} else {
				l.Status = StatusNotStarted
			}
		}
	}

	s.modules = modules
	return cloneModules(s.modules), nil
}

// seedFirstModule upserts every lesson of m as completed and returns the records that were saved.
func (s *ProgressStore) seedFirstModule(ctx context.Context, m Module) []LessonProgress {
	records := make([]LessonProgress, 0, len(m.Lessons))
	for _, l := range m.Lessons {
		rec, err := s.repo.UpsertLessonProgress(ctx, LessonProgress{
			ModuleID:  m.ID,
			LessonID:  l.ID,
			Status:    StatusCompleted,
			UpdatedAt: s.opts.Now().UTC(),
		})
		if err != nil {
			s.logger.Error(fmt.Sprintf("seeding progress of %s/%s: %v", m.ID, l.ID, err), err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// UpdateLessonStatus persists status for the lesson, then applies it to the collection.
// The collection is left untouched on any error.
func (s *ProgressStore) UpdateLessonStatus(ctx context.Context, moduleID, lessonID string, status LessonStatus) error {
	if s.Released() {
		return ErrReleased
	}
	mi := s.moduleIndex(moduleID)
	if mi < 0 {
		return core.NewNotFoundError("module", moduleID)
	}
	li := s.modules[mi].lessonIndex(lessonID)
	if li < 0 {
		return core.NewNotFoundError("lesson", lessonID)
	}
	if !status.IsValid() {
		return core.NewValidationError(
			fmt.Errorf("invalid lesson status %q", status),
			core.FieldError{Field: "status", Error: lessonStatusText},
		)
	}

	_, err := s.repo.UpsertLessonProgress(ctx, LessonProgress{
		ModuleID:  moduleID,
		LessonID:  lessonID,
		Status:    status,
		UpdatedAt: s.opts.Now().UTC(),
	})
	if s.Released() {
		return ErrReleased
	}
	if err != nil {
		return core.NewPersistenceError("upserting lesson progress", err)
	}

	s.modules[mi].Lessons[li].Status = status
	return nil
}

// ApplyStatusUpdates applies updates matched by title substring. Unmatched updates are logged and skipped.
// The first failure is returned once every update has been attempted.
func (s *ProgressStore) ApplyStatusUpdates(ctx context.Context, updates []StatusUpdate) error {
	var firstErr error
	for _, u := range updates {
		m, ok := s.findModuleByTitle(u.ModuleTitle)
		if !ok {
			s.logger.Warn(fmt.Sprintf("no module matching %q", u.ModuleTitle))
			continue
		}
		l, ok := findLessonByTitle(m, u.LessonTitle)
		if !ok {
			s.logger.Warn(fmt.Sprintf("no lesson matching %q in module %q", u.LessonTitle, m.Title))
			continue
		}

		err := s.UpdateLessonStatus(ctx, m.ID, l.ID, u.Status)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrReleased) {
			return err
		}
		s.logger.Error(fmt.Sprintf("updating %q / %q: %v", m.Title, l.Title, err), err)
		if firstErr == nil {
			firstErr = errors.Wrapf(err, "updating lesson %q", l.Title)
		}
	}
	return firstErr
}

// Modules returns a copy of the current collection.
func (s *ProgressStore) Modules() []Module {
	return cloneModules(s.modules)
}

func (s *ProgressStore) Progress() AggregateProgress {
	return ComputeProgress(s.modules)
}

func (s *ProgressStore) ModuleProgress(moduleID string) (int, error) {
	mi := s.moduleIndex(moduleID)
	if mi < 0 {
		return 0, core.NewNotFoundError("module", moduleID)
	}
	return ComputeModuleProgress(s.modules[mi]), nil
}

// Release discards the results of persistence calls still in flight.
func (s *ProgressStore) Release() { s.released.Store(true) }

func (s *ProgressStore) Released() bool { return s.released.Load() }

func (s *ProgressStore) moduleIndex(id string) int {
	for i, m := range s.modules {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// MatchLesson finds the first lesson whose title contains lessonTitle, in the first module whose title
// contains moduleTitle. Matching is case-sensitive.
func (s *ProgressStore) MatchLesson(moduleTitle, lessonTitle string) (Module, Lesson, bool) {
	m, ok := s.findModuleByTitle(moduleTitle)
	if !ok {
		return Module{}, Lesson{}, false
	}
	l, ok := findLessonByTitle(m, lessonTitle)
	if !ok {
		return Module{}, Lesson{}, false
	}
	return m.clone(), l, true
}

func (s *ProgressStore) findModuleByTitle(title string) (Module, bool) {
	for _, m := range s.modules {
		if strings.Contains(m.Title, title) {
			return m, true
		}
	}
	return Module{}, false
}

func findLessonByTitle(m Module, title string) (Lesson, bool) {
	for _, l := range m.Lessons {
		if strings.Contains(l.Title, title) {
			return l, true
		}
	}
	return Lesson{}, false
}

type progressKey struct {
	moduleID, lessonID string
}
