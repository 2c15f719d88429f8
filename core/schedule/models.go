package schedule

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ccourse/core"
)

type ClassSession struct {
	ID          string      `json:"id"`
	Date        Date        `json:"date"`
	Day         string      `json:"day"`
	StartTime   Clock       `json:"start_time"`
	EndTime     Clock       `json:"end_time"`
	Mode        SessionMode `json:"mode"`
	MeetingLink null.String `json:"meeting_link"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"` // UTC
}

func (cs ClassSession) StartsAt(loc *time.Location) time.Time { return cs.Date.At(cs.StartTime, loc) }
func (cs ClassSession) EndsAt(loc *time.Location) time.Time   { return cs.Date.At(cs.EndTime, loc) }

// DurationMinutes is the length of the session, never negative.
func (cs ClassSession) DurationMinutes() int {
	if cs.EndTime < cs.StartTime {
		return 0
	}
	return int(cs.EndTime - cs.StartTime)
}

// NewClassSession contains the information needed to schedule a class, as sent by a caller.
type NewClassSession struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	EndTime     string `json:"end_time" validate:"required,clock"`
	Mode        string `json:"mode" validate:"omitempty,sessionmode"`
	MeetingLink string `json:"meeting_link" validate:"omitempty,url"`
}

func (nc *NewClassSession) Validate(v *core.Validator) error {
	nc.Date = core.CleanString(nc.Date)
	nc.StartTime = core.CleanString(nc.StartTime)
	nc.EndTime = core.CleanString(nc.EndTime)
	nc.Mode = core.CleanString(nc.Mode, true /* lower */)
	nc.MeetingLink = core.CleanString(nc.MeetingLink)
	if nc.Mode == string(ModeOffline) {
		nc.MeetingLink = ""
	}
	return v.Struct(nc)
}

// session converts a validated candidate. The meeting link follows the mode:
// offline classes have none, online ones fall back to defaultLink.
func (nc NewClassSession) session(defaultLink string) (ClassSession, error) {
	date, err := ParseDate(nc.Date)
	if err != nil {
		return ClassSession{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}
	start, err := ParseClock(nc.StartTime)
	if err != nil {
		return ClassSession{}, core.NewValidationError(err, core.FieldError{Field: "start_time", Error: clockText})
	}
	end, err := ParseClock(nc.EndTime)
	if err != nil {
		return ClassSession{}, core.NewValidationError(err, core.FieldError{Field: "end_time", Error: clockText})
	}
	if end <= start {
		return ClassSession{}, core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: endAfterStartText})
	}
	mode, err := ParseSessionMode(nc.Mode)
	if err != nil {
		return ClassSession{}, core.NewValidationError(err, core.FieldError{Field: "mode", Error: sessionModeText})
	}

	var link null.String
	if mode == ModeOnline {
		switch {
		case nc.MeetingLink != "":
			link = null.StringFrom(nc.MeetingLink)
		case defaultLink != "":
			link = null.StringFrom(defaultLink)
		}
	}

	return ClassSession{
		Date:        date,
		Day:         date.Weekday().String(),
		StartTime:   start,
		EndTime:     end,
		Mode:        mode,
		MeetingLink: link,
	}, nil
}

// TeachingHours sums session durations in minutes.
type TeachingHours struct {
	CompletedMinutes int `json:"completed_minutes"`
	PlannedMinutes   int `json:"planned_minutes"`
	RemainingMinutes int `json:"remaining_minutes"`
}
