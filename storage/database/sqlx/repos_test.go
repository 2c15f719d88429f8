package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/material"
	"github.com/trezcool/ccourse/core/schedule"
	"github.com/trezcool/ccourse/core/user"
	sqlxrepos "github.com/trezcool/ccourse/storage/database/sqlx"
	"github.com/trezcool/ccourse/tests"
)

var created = time.Date(2025, time.May, 1, 8, 30, 0, 0, time.UTC)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewUserRepository(db)

	tutor := testutil.CreateUser(t, repo, "Tutor", "tutor@example.com", "Str0ngPassw0rd", []string{user.RoleTutor}, true)
	testutil.CreateUser(t, repo, "Student", "student@example.com", "", nil, true)

	got, err := repo.GetUser(ctx, user.GetFilter{Email: "tutor@example.com"})
	require.NoError(t, err)
	assert.Equal(t, tutor.ID, got.ID)
	assert.Equal(t, []string{user.RoleTutor}, got.Roles)
	assert.NoError(t, got.CheckPassword("Str0ngPassw0rd"))

	_, err = repo.CreateUser(ctx, user.User{ID: uuid.New().String(), Email: "tutor@example.com", CreatedAt: created, UpdatedAt: created})
	assert.ErrorIs(t, err, user.ErrEmailExists)

	got.LastLogin = null.TimeFrom(created)
	got.Email = "student@example.com"
	_, err = repo.UpdateUser(ctx, got)
	assert.ErrorIs(t, err, user.ErrEmailExists)

	got.Email = "tutor@example.com"
	updated, err := repo.UpdateUser(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, created, updated.LastLogin.Time)

	_, err = repo.UpdateUser(ctx, user.User{ID: uuid.New().String(), Email: "x@example.com"})
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = repo.GetUser(ctx, user.GetFilter{ID: uuid.New().String()})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestProgressRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewProgressRepository(db)

	for _, rec := range []course.LessonProgress{
		{ModuleID: "module-1", LessonID: "lesson-1-1", Status: course.StatusInProgress, UpdatedAt: created},
		{ModuleID: "module-2", LessonID: "lesson-2-1", Status: course.StatusNotStarted, UpdatedAt: created},
		{ModuleID: "module-1", LessonID: "lesson-1-1", Status: course.StatusCompleted, UpdatedAt: created.Add(time.Hour)},
	} {
		_, err := repo.UpsertLessonProgress(ctx, rec)
		require.NoError(t, err)
	}

	records, err := repo.QueryLessonProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.LessonProgress{
		{ModuleID: "module-1", LessonID: "lesson-1-1", Status: course.StatusCompleted, UpdatedAt: created.Add(time.Hour)},
		{ModuleID: "module-2", LessonID: "lesson-2-1", Status: course.StatusNotStarted, UpdatedAt: created},
	}, records)

	_, err = repo.UpsertLessonProgress(ctx, course.LessonProgress{ModuleID: "module-1", LessonID: "lesson-1-2", Status: "done", UpdatedAt: created})
	assert.Error(t, err, "rejected by the status check")
}

func TestScheduleRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewScheduleRepository(db)
	day := schedule.NewDate(2025, time.May, 5)

	later := testutil.CreateSession(t, repo, day.AddDays(1), "09:00", "10:30")
	first := testutil.CreateSession(t, repo, day, "18:00", "20:00")

	sessions, err := repo.QuerySessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, later.ID, sessions[1].ID)
	assert.Equal(t, day, sessions[0].Date)
	assert.Equal(t, schedule.NewClock(18, 0), sessions[0].StartTime)
	assert.Equal(t, 120, sessions[0].DurationMinutes())

	first.Mode = schedule.ModeOnline
	first.MeetingLink = null.StringFrom("https://meet.example.com/c")
	first.EndTime = schedule.NewClock(19, 30)
	updated, err := repo.UpdateSession(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "https://meet.example.com/c", updated.MeetingLink.String)
	assert.Equal(t, 90, updated.DurationMinutes())

	unknown := schedule.ClassSession{ID: uuid.New().String(), Date: day, StartTime: 60, EndTime: 120, Mode: schedule.ModeOffline}
	_, err = repo.UpdateSession(ctx, unknown)
	assert.ErrorIs(t, err, schedule.ErrNotFound)

	require.NoError(t, repo.DeleteSession(ctx, first.ID))
	assert.ErrorIs(t, repo.DeleteSession(ctx, first.ID), schedule.ErrNotFound)
}

func TestMaterialRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewMaterialRepository(db)

	newMat := func(moduleID, lessonID string, uploaded time.Time) material.Material {
		m, err := repo.CreateMaterial(ctx, material.Material{
			ID:         uuid.New().String(),
			ModuleID:   moduleID,
			LessonID:   null.NewString(lessonID, lessonID != ""),
			Title:      "Notes",
			FileURL:    "#",
			FileType:   material.FileTypePDF,
			UploadDate: uploaded,
			UpdatedAt:  uploaded,
		})
		require.NoError(t, err)
		return m
	}
	old := newMat("module-1", "lesson-1-1", created)
	recent := newMat("module-1", "", created.Add(time.Hour))
	newMat("module-2", "", created.Add(2*time.Hour))

	mats, err := repo.QueryMaterials(ctx, material.QueryFilter{ModuleID: "module-1"})
	require.NoError(t, err)
	assert.Equal(t, []material.Material{recent, old}, mats)

	all, err := repo.QueryMaterials(ctx, material.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	old.Title = "Notes (v2)"
	updated, err := repo.UpdateMaterial(ctx, old)
	require.NoError(t, err)
	assert.Equal(t, "Notes (v2)", updated.Title)

	require.NoError(t, repo.DeleteMaterial(ctx, old.ID))
	_, err = repo.GetMaterial(ctx, old.ID)
	assert.ErrorIs(t, err, material.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteMaterial(ctx, old.ID), material.ErrNotFound)
}
