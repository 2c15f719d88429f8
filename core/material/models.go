package material

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ccourse/core"
)

// File types
const (
	FileTypePDF   = "pdf"
	FileTypeDoc   = "doc"
	FileTypeCode  = "code"
	FileTypeLink  = "link"
	FileTypeOther = "other"
)

var FileTypes = []string{FileTypePDF, FileTypeDoc, FileTypeCode, FileTypeLink, FileTypeOther}

type Material struct {
	ID          string      `json:"id"`
	ModuleID    string      `json:"module_id"`
	LessonID    null.String `json:"lesson_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	FileURL     string      `json:"file_url"`
	FileType    string      `json:"file_type"`
	UploadDate  time.Time   `json:"upload_date"` // UTC
	UpdatedAt   time.Time   `json:"updated_at"`  // UTC
}

// NewMaterial contains the information needed to publish or edit a Material.
type NewMaterial struct {
	ModuleID    string `json:"module_id" validate:"required"`
	LessonID    string `json:"lesson_id"`
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	FileURL     string `json:"file_url" validate:"required,fileurl"`
	FileType    string `json:"file_type" validate:"omitempty,filetype"`
}

func (nm *NewMaterial) clean() {
	nm.ModuleID = core.CleanString(nm.ModuleID)
	nm.LessonID = core.CleanString(nm.LessonID)
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	nm.FileURL = core.CleanString(nm.FileURL)
	nm.FileType = core.CleanString(nm.FileType, true /* lower */)
	if nm.FileType == "" {
		nm.FileType = FileTypePDF
	}
}

type QueryFilter struct {
	ModuleID string `query:"module_id"`
}

func (qf *QueryFilter) Clean() {
	qf.ModuleID = core.CleanString(qf.ModuleID)
}
