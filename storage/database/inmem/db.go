package inmemdb

import (
	"sync"

	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/material"
	"github.com/trezcool/ccourse/core/schedule"
	"github.com/trezcool/ccourse/core/user"
)

type (
	// DB is an in-memory database shared by the repositories built on it.
	// Every table is safe for concurrent use.
	DB struct {
		user     *userTable
		progress *progressTable
		classes  *classTable
		material *materialTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	progressKey struct {
		moduleID, lessonID string
	}

	progressTable struct {
		sync.RWMutex
		table map[progressKey]course.LessonProgress
		order []progressKey // insertion order
	}

	classTable struct {
		sync.RWMutex
		table map[string]schedule.ClassSession
	}

	materialTable struct {
		sync.RWMutex
		table map[string]material.Material
	}
)

func Open() *DB {
	return &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		progress: &progressTable{table: make(map[progressKey]course.LessonProgress)},
		classes:  &classTable{table: make(map[string]schedule.ClassSession)},
		material: &materialTable{table: make(map[string]material.Material)},
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.progress.Lock()
	db.progress.table = make(map[progressKey]course.LessonProgress)
	db.progress.order = nil
	db.progress.Unlock()

	db.classes.Lock()
	db.classes.table = make(map[string]schedule.ClassSession)
	db.classes.Unlock()

	db.material.Lock()
	db.material.table = make(map[string]material.Material)
	db.material.Unlock()
}
