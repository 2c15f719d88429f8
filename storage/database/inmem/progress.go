package inmemdb

import (
	"context"

	"github.com/trezcool/ccourse/core/course"
)

type progressRepository struct {
	db *progressTable
}

var _ course.ProgressRepository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) course.ProgressRepository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) QueryLessonProgress(_ context.Context) ([]course.LessonProgress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]course.LessonProgress, 0, len(repo.db.order))
	for _, key := range repo.db.order {
		records = append(records, repo.db.table[key])
	}
	return records, nil
}

func (repo *progressRepository) UpsertLessonProgress(_ context.Context, rec course.LessonProgress) (course.LessonProgress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := progressKey{rec.ModuleID, rec.LessonID}
	if _, ok := repo.db.table[key]; !ok {
		repo.db.order = append(repo.db.order, key)
	}
	repo.db.table[key] = rec
	return rec, nil
}
