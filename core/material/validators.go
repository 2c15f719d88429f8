package material

import (
	"net/url"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ccourse/core"
)

var (
	fileURLTag  = "fileurl"
	fileURLText = "must be a valid URL or #"

	fileTypeTag  = "filetype"
	fileTypeText = "must be one of pdf, doc, code, link or other"
)

// InitValidators registers the material validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(fileURLTag, fileURLValidation)
	core.RegisterCustomTranslation(validate, translator, fileURLTag, fileURLText)

	_ = validate.RegisterValidation(fileTypeTag, fileTypeValidation)
	core.RegisterCustomTranslation(validate, translator, fileTypeTag, fileTypeText)
}

// fileURLValidation allows absolute URLs and the "#" placeholder used before a file is uploaded.
func fileURLValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "#" {
		return true
	}
	u, err := url.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func fileTypeValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, ft := range FileTypes {
		if s == ft {
			return true
		}
	}
	return false
}
