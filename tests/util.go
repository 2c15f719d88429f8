package testutil

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/material"
	"github.com/trezcool/ccourse/core/schedule"
	"github.com/trezcool/ccourse/core/user"
	logsvc "github.com/trezcool/ccourse/services/logger"
	"github.com/trezcool/ccourse/storage/database"
)

// NewLogger returns a logger that reports nothing to rollbar. Output goes to stderr when TEST_LOGS is set.
func NewLogger() core.Logger {
	var out io.Writer = io.Discard
	if os.Getenv("TEST_LOGS") != "" {
		out = os.Stderr
	}
	logger := logsvc.NewRollbarLogger(log.New(out, "TEST : ", log.Lmicroseconds|log.Lshortfile), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every domain validator registered.
func NewValidator() *core.Validator {
	v := core.NewValidator()
	course.InitValidators(v.Validate, v.Translator)
	schedule.InitValidators(v.Validate, v.Translator)
	material.InitValidators(v.Validate, v.Translator)
	user.InitValidators(v.Validate, v.Translator)
	return v
}

// FreezeTime makes core.NowFunc return now until the test ends.
func FreezeTime(t *testing.T, now time.Time) {
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

// PrepareDB opens the database named by TEST_DATABASE_URL, migrates it and empties its tables.
// The test is skipped when no database is configured.
func PrepareDB(t *testing.T) *sqlx.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("sqlx.Open(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate(): %v", err)
	}
	ResetDB(t, db)
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	q := `TRUNCATE "user", lesson_progress, classes, materials`
	if _, err := db.ExecContext(context.Background(), q); err != nil {
		t.Fatalf("ResetDB(): %v", err)
	}
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string, roles []string, isActive bool) user.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	usr := user.User{
		ID:        newID(),
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateSession stores an online session of date from start to end, both formatted as HH:MM.
func CreateSession(t *testing.T, repo schedule.Repository, date schedule.Date, start, end string) schedule.ClassSession {
	startClock, err := schedule.ParseClock(start)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	endClock, err := schedule.ParseClock(end)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	cs, err := repo.CreateSession(context.Background(), schedule.ClassSession{
		ID:        newID(),
		Date:      date,
		Day:       date.Weekday().String(),
		StartTime: startClock,
		EndTime:   endClock,
		Mode:      schedule.ModeOnline,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return cs
}

func newID() string { return uuid.New().String() }
