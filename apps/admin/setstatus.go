package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ccourse/core/course"
)

// setStatus updates the first lesson matching the titles, both matched as case-sensitive substrings.
func (cli *commandLine) setStatus(moduleTitle, lessonTitle, status string) error {
	lessonStatus, err := course.ParseLessonStatus(status)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store := course.NewProgressStore(cli.progressRepo, cli.curriculum, cli.logger, course.StoreOptions{})
	defer store.Release()
	if _, err = store.LoadInitialProgress(ctx); err != nil {
		return err
	}

	m, l, ok := store.MatchLesson(moduleTitle, lessonTitle)
	if !ok {
		return fmt.Errorf("no lesson matching %q in a module matching %q", lessonTitle, moduleTitle)
	}
	err = store.ApplyStatusUpdates(ctx, []course.StatusUpdate{
		{ModuleTitle: moduleTitle, LessonTitle: lessonTitle, Status: lessonStatus},
	})
	if err != nil {
		return err
	}

	progress, _ := store.ModuleProgress(m.ID)
	fmt.Printf("%s / %s: %s (module %d%%, course %d%%)\n", m.Title, l.Title, lessonStatus, progress, store.Progress().CompletionPercentage)
	return nil
}
