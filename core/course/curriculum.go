package course

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/ccourse/core"
)

// Curriculum is the fixed, ordered template of modules and lessons.
type Curriculum []Module

// DefaultCurriculum returns a fresh copy of the course curriculum, every lesson not-started.
func DefaultCurriculum() Curriculum {
	return Curriculum{
		{
			ID:    "module-1",
			Title: "C Fundamentals & Control Statements",
			Lessons: []Lesson{
				{ID: "lesson-1-1", Title: "C Character Set, Constants, Identifiers, Keywords", Status: StatusNotStarted},
				{ID: "lesson-1-2", Title: "Data Types, Operators, Expressions, Input/Output", Status: StatusNotStarted},
				{ID: "lesson-1-3", Title: "Control Flow: if, switch, loops, break, continue", Status: StatusNotStarted},
			},
		},
		{
			ID:    "module-2",
			Title: "Arrays & Strings",
			Lessons: []Lesson{
				{ID: "lesson-2-1", Title: "1D & 2D Arrays, Enum, Typedef, Matrix Programs", Status: StatusNotStarted},
				{ID: "lesson-2-2", Title: "Sorting, Searching, String Functions & Matching", Status: StatusNotStarted},
			},
		},
		{
			ID:    "module-3",
			Title: "Functions, Structures & Storage Classes",
			Lessons: []Lesson{
				{ID: "lesson-3-1", Title: "Functions (Recursive, Parameter Passing, Macros)", Status: StatusNotStarted},
				{ID: "lesson-3-2", Title: "CLI Args, Structures & Unions, Storage Classes", Status: StatusNotStarted},
			},
		},
		{
			ID:    "module-4",
			Title: "Pointers & File Handling",
			Lessons: []Lesson{
				{ID: "lesson-4-1", Title: "Pointers, Arrays, Strings, Function Pointers", Status: StatusNotStarted},
				{ID: "lesson-4-2", Title: "Dynamic Memory, File Operations: fseek, fread, fwrite", Status: StatusNotStarted},
			},
		},
	}
}

// LoadCurriculum returns c once it passes Validate. Stores must only be seeded from a loaded curriculum.
func LoadCurriculum(c Curriculum) (Curriculum, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "loading curriculum")
	}
	return c, nil
}

// Validate checks ids are unique and every lesson is consistent.
func (c Curriculum) Validate() error {
	modIDs := make(map[string]struct{}, len(c))
	for _, m := range c {
		if m.ID == "" {
			return core.NewValidationError(fmt.Errorf("module %q has no id", m.Title))
		}
		if _, dup := modIDs[m.ID]; dup {
			return core.NewValidationError(fmt.Errorf("duplicate module id %q", m.ID))
		}
		modIDs[m.ID] = struct{}{}

		lesIDs := make(map[string]struct{}, len(m.Lessons))
		for _, l := range m.Lessons {
			if _, dup := lesIDs[l.ID]; dup {
				return core.NewValidationError(fmt.Errorf("duplicate lesson id %q in module %q", l.ID, m.ID))
			}
			lesIDs[l.ID] = struct{}{}
			if err := l.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Module looks a module up by id.
func (c Curriculum) Module(id string) (Module, bool) {
	for _, m := range c {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// HasLesson reports whether lessonID belongs to moduleID.
func (c Curriculum) HasLesson(moduleID, lessonID string) bool {
	m, ok := c.Module(moduleID)
	return ok && m.lessonIndex(lessonID) >= 0
}
