package schedule_test

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/schedule"
	emailsvc "github.com/trezcool/ccourse/services/email"
	inmemdb "github.com/trezcool/ccourse/storage/database/inmem"
	"github.com/trezcool/ccourse/tests"
)

const defaultLink = "https://meet.example.com/default"

var (
	testNow  = time.Date(2025, time.May, 5, 12, 0, 0, 0, time.UTC)
	testDay  = schedule.DateOf(testNow)
	validate = testutil.NewValidator()
)

type flakyRepo struct {
	schedule.Repository
	fail   bool
	onCall func()
}

func (r *flakyRepo) hook() error {
	if r.onCall != nil {
		r.onCall()
	}
	if r.fail {
		return errors.New("backend unavailable")
	}
	return nil
}

func (r *flakyRepo) CreateSession(ctx context.Context, cs schedule.ClassSession) (schedule.ClassSession, error) {
	if err := r.hook(); err != nil {
		return schedule.ClassSession{}, err
	}
	return r.Repository.CreateSession(ctx, cs)
}

func (r *flakyRepo) UpdateSession(ctx context.Context, cs schedule.ClassSession) (schedule.ClassSession, error) {
	if err := r.hook(); err != nil {
		return schedule.ClassSession{}, err
	}
	return r.Repository.UpdateSession(ctx, cs)
}

func (r *flakyRepo) DeleteSession(ctx context.Context, id string) error {
	if err := r.hook(); err != nil {
		return err
	}
	return r.Repository.DeleteSession(ctx, id)
}

func newStore(t *testing.T, opts schedule.StoreOptions) (*schedule.ScheduleStore, *flakyRepo) {
	t.Helper()
	repo := &flakyRepo{Repository: inmemdb.NewScheduleRepository(inmemdb.Open())}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	store := schedule.NewScheduleStore(repo, testutil.NewLogger(), validate, opts)
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	return store, repo
}

func newSession(date schedule.Date, start, end string) schedule.NewClassSession {
	return schedule.NewClassSession{Date: date.String(), StartTime: start, EndTime: end}
}

func TestScheduleStore_AddSession(t *testing.T) {
	ctx := context.Background()

	t.Run("offline drops the supplied link", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{DefaultMeetingLink: defaultLink})
		nc := newSession(testDay, "18:00", "20:00")
		nc.Mode = "offline"
		nc.MeetingLink = "https://meet.example.com/custom"

		cs, err := store.AddSession(ctx, nc)
		require.NoError(t, err)
		assert.Equal(t, schedule.ModeOffline, cs.Mode)
		assert.False(t, cs.MeetingLink.Valid)
		assert.Equal(t, "Monday", cs.Day)
		assert.Equal(t, 120, cs.DurationMinutes())
		assert.NotEmpty(t, cs.ID)
		assert.Equal(t, testNow, cs.CreatedAt)
	})

	t.Run("offline ignores a link that is not a URL", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{DefaultMeetingLink: defaultLink})
		nc := newSession(testDay, "18:00", "20:00")
		nc.Mode = "offline"
		nc.MeetingLink = "Room 12"

		cs, err := store.AddSession(ctx, nc)
		require.NoError(t, err)
		assert.False(t, cs.MeetingLink.Valid)
		assert.Equal(t, []schedule.ClassSession{cs}, store.Sessions())
	})

	t.Run("online without link uses the default", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{DefaultMeetingLink: defaultLink})
		cs, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		require.NoError(t, err)
		assert.Equal(t, schedule.ModeOnline, cs.Mode, "empty mode is online")
		assert.Equal(t, defaultLink, cs.MeetingLink.String)
	})

	t.Run("online keeps the supplied link", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{DefaultMeetingLink: defaultLink})
		nc := newSession(testDay, "18:00", "20:00")
		nc.Mode = "ONLINE"
		nc.MeetingLink = "https://meet.example.com/custom"

		cs, err := store.AddSession(ctx, nc)
		require.NoError(t, err)
		assert.Equal(t, "https://meet.example.com/custom", cs.MeetingLink.String)
	})

	t.Run("online without any link", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{})
		cs, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		require.NoError(t, err)
		assert.False(t, cs.MeetingLink.Valid)
	})

	t.Run("persisted for the next load", func(t *testing.T) {
		store, repo := newStore(t, schedule.StoreOptions{})
		cs, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		require.NoError(t, err)

		other := schedule.NewScheduleStore(repo, testutil.NewLogger(), validate, schedule.StoreOptions{})
		sessions, err := other.Load(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, cs.ID, sessions[0].ID)
	})

	invalid := []struct {
		name  string
		nc    schedule.NewClassSession
		field string
	}{
		{name: "end before start", nc: newSession(testDay, "20:00", "18:00"), field: "end_time"},
		{name: "end equals start", nc: newSession(testDay, "18:00", "18:00"), field: "end_time"},
		{name: "missing date", nc: schedule.NewClassSession{StartTime: "18:00", EndTime: "20:00"}, field: "date"},
		{name: "bad date", nc: schedule.NewClassSession{Date: "05/05/2025", StartTime: "18:00", EndTime: "20:00"}, field: "date"},
		{name: "bad start", nc: newSession(testDay, "6pm", "20:00"), field: "start_time"},
		{name: "bad mode", nc: schedule.NewClassSession{Date: testDay.String(), StartTime: "18:00", EndTime: "20:00", Mode: "hybrid"}, field: "mode"},
		{name: "bad link", nc: schedule.NewClassSession{Date: testDay.String(), StartTime: "18:00", EndTime: "20:00", MeetingLink: "not a url"}, field: "meeting_link"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(t, schedule.StoreOptions{})
			_, err := store.AddSession(ctx, tt.nc)
			require.True(t, core.IsValidation(err), "got %v", err)

			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr))
			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Empty(t, store.Sessions())
		})
	}

	t.Run("backend failure", func(t *testing.T) {
		store, repo := newStore(t, schedule.StoreOptions{})
		repo.fail = true
		_, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		assert.True(t, core.IsPersistence(err), "got %v", err)
		assert.Empty(t, store.Sessions())
	})
}

func TestScheduleStore_UpdateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{DefaultMeetingLink: defaultLink})
		cs, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		require.NoError(t, err)

		nc := newSession(testDay.AddDays(1), "09:00", "10:30")
		nc.Mode = "offline"
		updated, err := store.UpdateSession(ctx, cs.ID, nc)
		require.NoError(t, err)
		assert.Equal(t, cs.ID, updated.ID)
		assert.Equal(t, cs.CreatedAt, updated.CreatedAt)
		assert.Equal(t, "Tuesday", updated.Day)
		assert.False(t, updated.MeetingLink.Valid)
		assert.Equal(t, []schedule.ClassSession{updated}, store.Sessions())
	})

	tests := []struct {
		name    string
		id      string // empty means the existing session
		nc      schedule.NewClassSession
		fail    bool
		wantErr func(error) bool
	}{
		{name: "unknown id", id: "unknown", nc: newSession(testDay, "09:00", "10:30"), wantErr: core.IsNotFound},
		{name: "end before start", nc: newSession(testDay, "10:30", "09:00"), wantErr: core.IsValidation},
		{name: "end equals start", nc: newSession(testDay, "09:00", "09:00"), wantErr: core.IsValidation},
		{name: "bad mode", nc: schedule.NewClassSession{Date: testDay.String(), StartTime: "09:00", EndTime: "10:30", Mode: "hybrid"}, wantErr: core.IsValidation},
		{name: "backend failure", nc: newSession(testDay, "09:00", "10:30"), fail: true, wantErr: core.IsPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, repo := newStore(t, schedule.StoreOptions{DefaultMeetingLink: defaultLink})
			cs, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
			require.NoError(t, err)
			before := store.Sessions()

			id := tt.id
			if id == "" {
				id = cs.ID
			}
			repo.fail = tt.fail
			_, err = store.UpdateSession(ctx, id, tt.nc)
			assert.True(t, tt.wantErr(err), "got %v", err)
			assert.Equal(t, before, store.Sessions())

			// nothing reached the backend either
			repo.fail = false
			other := schedule.NewScheduleStore(repo, testutil.NewLogger(), validate, schedule.StoreOptions{})
			persisted, err := other.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, persisted)
		})
	}
}

func TestScheduleStore_RemoveSession(t *testing.T) {
	ctx := context.Background()

	t.Run("removes", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{})
		a, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		require.NoError(t, err)
		b, err := store.AddSession(ctx, newSession(testDay.AddDays(1), "18:00", "20:00"))
		require.NoError(t, err)

		require.NoError(t, store.RemoveSession(ctx, a.ID))
		assert.Equal(t, []schedule.ClassSession{b}, store.Sessions())
	})

	t.Run("unknown id", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{})
		err := store.RemoveSession(ctx, "unknown")
		assert.True(t, core.IsNotFound(err), "got %v", err)
	})

	t.Run("backend failure keeps the session", func(t *testing.T) {
		store, repo := newStore(t, schedule.StoreOptions{})
		cs, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		require.NoError(t, err)

		repo.fail = true
		err = store.RemoveSession(ctx, cs.ID)
		assert.True(t, core.IsPersistence(err), "got %v", err)
		assert.Len(t, store.Sessions(), 1)
	})
}

func TestScheduleStore_Listings(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, schedule.StoreOptions{})

	add := func(d schedule.Date, start, end string) string {
		cs, err := store.AddSession(ctx, newSession(d, start, end))
		require.NoError(t, err)
		return cs.ID
	}
	later := add(testDay.AddDays(2), "18:00", "20:00")
	yesterday := add(testDay.AddDays(-1), "18:00", "20:00")
	tonight := add(testDay, "18:00", "20:00")
	lastWeek := add(testDay.AddDays(-7), "09:00", "11:00")
	running := add(testDay, "11:00", "13:00") // started before now

	ids := func(sessions []schedule.ClassSession) []string {
		out := make([]string, 0, len(sessions))
		for _, cs := range sessions {
			out = append(out, cs.ID)
		}
		return out
	}

	assert.Equal(t, []string{tonight, later}, ids(store.ListUpcoming(testNow)))
	assert.Equal(t, []string{running, yesterday, lastWeek}, ids(store.ListPast(testNow)))

	next, ok := store.NextSession(testNow)
	require.True(t, ok)
	assert.Equal(t, tonight, next.ID)

	assert.Equal(t, schedule.TeachingHours{
		CompletedMinutes: 240,
		PlannedMinutes:   600,
		RemainingMinutes: 360,
	}, store.TeachingHours(testNow))
}

func TestScheduleStore_Location(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("EAT", 3*60*60)
	store, _ := newStore(t, schedule.StoreOptions{Location: loc})
	_, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
	require.NoError(t, err)

	// 16:30 UTC is 19:30 in the store's location: the class already started
	now := time.Date(2025, time.May, 5, 16, 30, 0, 0, time.UTC)
	_, ok := store.NextSession(now)
	assert.False(t, ok)
	assert.Len(t, store.ListPast(now), 1)
}

func TestScheduleStore_Notifier(t *testing.T) {
	ctx := context.Background()
	conf := core.NewTestConfig()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, testutil.NewLogger())
	student := mail.Address{Name: "Student", Address: "student@example.com"}

	store, _ := newStore(t, schedule.StoreOptions{
		DefaultMeetingLink: defaultLink,
		Notifier:           schedule.NewEmailNotifier(mailSvc, student),
	})

	cs, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
	require.NoError(t, err)
	_, err = store.UpdateSession(ctx, cs.ID, newSession(testDay, "18:30", "20:00"))
	require.NoError(t, err)
	require.NoError(t, store.RemoveSession(ctx, cs.ID))

	sent := mailSvc.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, []mail.Address{student}, sent[0].To)
	assert.True(t, strings.HasPrefix(sent[0].Subject, "New class scheduled"))
	assert.Contains(t, sent[0].TextContent, "18:00 - 20:00")
	assert.Contains(t, sent[0].TextContent, defaultLink)
	assert.True(t, strings.HasPrefix(sent[1].Subject, "Class rescheduled"))
	assert.Contains(t, sent[1].TextContent, "18:30 - 20:00")
	assert.True(t, strings.HasPrefix(sent[2].Subject, "Class cancelled"))

	t.Run("nothing sent on failure", func(t *testing.T) {
		mailSvc.Reset()
		store, repo := newStore(t, schedule.StoreOptions{Notifier: schedule.NewEmailNotifier(mailSvc, student)})
		repo.fail = true
		_, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		require.Error(t, err)
		assert.Empty(t, mailSvc.Sent())
	})

	t.Run("no recipients", func(t *testing.T) {
		mailSvc.Reset()
		store, _ := newStore(t, schedule.StoreOptions{Notifier: schedule.NewEmailNotifier(mailSvc)})
		_, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		require.NoError(t, err)
		assert.Empty(t, mailSvc.Sent())
	})
}

func TestScheduleStore_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("result arriving after release is discarded", func(t *testing.T) {
		store, repo := newStore(t, schedule.StoreOptions{})
		repo.onCall = store.Release

		_, err := store.AddSession(ctx, newSession(testDay, "18:00", "20:00"))
		assert.ErrorIs(t, err, schedule.ErrReleased)
		assert.Empty(t, store.Sessions())
	})

	t.Run("calls after release", func(t *testing.T) {
		store, _ := newStore(t, schedule.StoreOptions{})
		store.Release()
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, schedule.ErrReleased)
		assert.ErrorIs(t, store.RemoveSession(ctx, "any"), schedule.ErrReleased)
	})
}
