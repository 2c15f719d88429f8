package echoapi

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/schedule"
)

// storeFactory builds the loaded stores of one request. Callers release them when the request ends.
type storeFactory struct {
	deps ServerDeps
}

func (f storeFactory) progressStore(ctx context.Context) (*course.ProgressStore, error) {
	store := course.NewProgressStore(f.deps.ProgressRepo, f.deps.Curriculum, f.deps.Logger, course.StoreOptions{
		SeedFirstModule: f.deps.Conf.SeedFirstModule,
	})
	if _, err := store.LoadInitialProgress(ctx); err != nil {
		store.Release()
		return nil, errors.Wrap(err, "loading lesson progress")
	}
	return store, nil
}

func (f storeFactory) scheduleStore(ctx context.Context) (*schedule.ScheduleStore, error) {
	store := schedule.NewScheduleStore(f.deps.ScheduleRepo, f.deps.Logger, f.deps.Validator, schedule.StoreOptions{
		DefaultMeetingLink: f.deps.Conf.DefaultMeetLink,
		Location:           f.deps.Conf.Location,
		Notifier:           f.deps.Notifier,
	})
	if _, err := store.Load(ctx); err != nil {
		store.Release()
		return nil, errors.Wrap(err, "loading class sessions")
	}
	return store, nil
}
