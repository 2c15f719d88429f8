package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ccourse/core"
)

var (
	lessonStatusTag  = "lessonstatus"
	lessonStatusText = "must be one of not-started, in-progress or completed"
)

// InitValidators registers the course validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(lessonStatusTag, lessonStatusValidation)
	core.RegisterCustomTranslation(validate, translator, lessonStatusTag, lessonStatusText)
}

func lessonStatusValidation(fl validator.FieldLevel) bool {
	return LessonStatus(fl.Field().String()).IsValid()
}
