package course

import (
	"fmt"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ccourse/core"
)

// LessonStatus is the progress state of a lesson. Every transition is allowed.
type LessonStatus string

const (
	StatusNotStarted LessonStatus = "not-started"
	StatusInProgress LessonStatus = "in-progress"
	StatusCompleted  LessonStatus = "completed"
)

var LessonStatuses = []LessonStatus{StatusNotStarted, StatusInProgress, StatusCompleted}

func (s LessonStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseLessonStatus rejects anything outside the closed set of statuses.
func ParseLessonStatus(s string) (LessonStatus, error) {
	status := LessonStatus(strings.TrimSpace(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid lesson status %q", s)
	}
	return status, nil
}

type Lesson struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Status          LessonStatus `json:"status"`
	StartAt         null.Time    `json:"start_time"`
	EndAt           null.Time    `json:"end_time"`
	DurationMinutes null.Int     `json:"duration_minutes"`
}

// Validate checks the optional timing fields are consistent with each other.
func (l Lesson) Validate() error {
	var flds []core.FieldError
	if !l.Status.IsValid() {
		flds = append(flds, core.FieldError{Field: "status", Error: lessonStatusText})
	}
	if l.DurationMinutes.Valid && l.DurationMinutes.Int < 0 {
		flds = append(flds, core.FieldError{Field: "duration_minutes", Error: "must be a non-negative number of minutes"})
	}
	if l.StartAt.Valid && l.EndAt.Valid {
		span := l.EndAt.Time.Sub(l.StartAt.Time)
		switch {
		case span < 0:
			flds = append(flds, core.FieldError{Field: "end_time", Error: "must not be before start_time"})
		case l.DurationMinutes.Valid && int(span/time.Minute) != l.DurationMinutes.Int:
			flds = append(flds, core.FieldError{Field: "duration_minutes", Error: "does not match start_time and end_time"})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(fmt.Errorf("invalid lesson %q", l.ID), flds...)
	}
	return nil
}

type Module struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

func (m Module) clone() Module {
	lessons := make([]Lesson, len(m.Lessons))
	copy(lessons, m.Lessons)
	m.Lessons = lessons
	return m
}

func (m Module) lessonIndex(lessonID string) int {
	for i, l := range m.Lessons {
		if l.ID == lessonID {
			return i
		}
	}
	return -1
}

func cloneModules(modules []Module) []Module {
	out := make([]Module, len(modules))
	for i, m := range modules {
		out[i] = m.clone()
	}
	return out
}

// LessonProgress is the persisted status of one lesson.
type LessonProgress struct {
	ModuleID  string       `json:"module_id" db:"module_id"`
	LessonID  string       `json:"lesson_id" db:"lesson_id"`
	Status    LessonStatus `json:"status" db:"status"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

// StatusUpdate locates a lesson by module and lesson title substrings.
type StatusUpdate struct {
	ModuleTitle string
	LessonTitle string
	Status      LessonStatus
}

// StatusChange is the payload of a lesson status update request.
type StatusChange struct {
	Status string `json:"status" validate:"required,lessonstatus"`
}

func (sc *StatusChange) Validate(v *core.Validator) error {
	sc.Status = core.CleanString(sc.Status, true /* lower */)
	return v.Struct(sc)
}

// AggregateProgress summarizes lesson statuses across modules.
type AggregateProgress struct {
	TotalLessons         int `json:"total_lessons"`
	CompletedLessons     int `json:"completed_lessons"`
	InProgressLessons    int `json:"in_progress_lessons"`
	NotStartedLessons    int `json:"not_started_lessons"`
	CompletionPercentage int `json:"completion_percentage"`
	CompletedMinutes     int `json:"completed_minutes"`
}
