package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ccourse/core"
)

var (
	sessionModeTag  = "sessionmode"
	sessionModeText = "must be one of online or offline"

	endAfterStartTag  = "endafterstart"
	endAfterStartText = "end_time must be after start_time"

	clockText = "must be a time of day formatted as HH:MM"
)

// InitValidators registers the schedule validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(sessionModeTag, sessionModeValidation)
	core.RegisterCustomTranslation(validate, translator, sessionModeTag, sessionModeText)

	validate.RegisterStructValidation(sessionStructValidation, NewClassSession{})
	core.RegisterCustomTranslation(validate, translator, endAfterStartTag, endAfterStartText)
}

func sessionModeValidation(fl validator.FieldLevel) bool {
	_, err := ParseSessionMode(fl.Field().String())
	return err == nil
}

// sessionStructValidation checks end_time is after start_time once both are well formed.
func sessionStructValidation(sl validator.StructLevel) {
	nc, ok := sl.Current().Interface().(NewClassSession)
	if !ok {
		return
	}
	start, err := ParseClock(nc.StartTime)
	if err != nil {
		return
	}
	end, err := ParseClock(nc.EndTime)
	if err != nil {
		return
	}
	if end <= start {
		sl.ReportError(nc.EndTime, "end_time", "EndTime", endAfterStartTag, "")
	}
}
