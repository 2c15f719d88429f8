package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/course"
)

type progressRow struct {
	ModuleID  string    `db:"module_id"`
	LessonID  string    `db:"lesson_id"`
	Status    string    `db:"status"`
	UpdatedAt time.Time `db:"updated_at"`
}

type progressRepository struct {
	db core.DBExecutor
}

var _ course.ProgressRepository = (*progressRepository)(nil)

func NewProgressRepository(db core.DBExecutor) course.ProgressRepository {
	return &progressRepository{db: db}
}

// QueryLessonProgress returns statuses as stored. The progress store skips the ones it does not know.
func (repo *progressRepository) QueryLessonProgress(ctx context.Context) ([]course.LessonProgress, error) {
	var rows []progressRow
	q := `SELECT module_id, lesson_id, status, updated_at FROM lesson_progress ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting lesson progress")
	}

	records := make([]course.LessonProgress, 0, len(rows))
	for _, r := range rows {
		records = append(records, course.LessonProgress{
			ModuleID:  r.ModuleID,
			LessonID:  r.LessonID,
			Status:    course.LessonStatus(r.Status),
			UpdatedAt: r.UpdatedAt.UTC(),
		})
	}
	return records, nil
}

func (repo *progressRepository) UpsertLessonProgress(ctx context.Context, rec course.LessonProgress) (course.LessonProgress, error) {
	q := `INSERT INTO lesson_progress (module_id, lesson_id, status, updated_at)
		VALUES (:module_id, :lesson_id, :status, :updated_at)
		ON CONFLICT (module_id, lesson_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	row := progressRow{
		ModuleID:  rec.ModuleID,
		LessonID:  rec.LessonID,
		Status:    string(rec.Status),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return course.LessonProgress{}, errors.Wrap(err, "upserting lesson progress")
	}
	return rec, nil
}
