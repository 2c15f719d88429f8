package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/schedule"
)

type classRow struct {
	ID        string         `db:"id"`
	Date      schedule.Date  `db:"date"`
	Day       string         `db:"day"`
	StartTime schedule.Clock `db:"start_time"`
	EndTime   schedule.Clock `db:"end_time"`
	Mode      string         `db:"mode"`
	MeetLink  null.String    `db:"meet_link"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func newClassRow(cs schedule.ClassSession) classRow {
	return classRow{
		ID:        cs.ID,
		Date:      cs.Date,
		Day:       cs.Day,
		StartTime: cs.StartTime,
		EndTime:   cs.EndTime,
		Mode:      string(cs.Mode),
		MeetLink:  cs.MeetingLink,
		CreatedAt: cs.CreatedAt.UTC(),
		UpdatedAt: cs.UpdatedAt.UTC(),
	}
}

func (r classRow) session() (schedule.ClassSession, error) {
	mode := schedule.SessionMode(r.Mode)
	if !mode.IsValid() {
		return schedule.ClassSession{}, errors.Errorf("class %s: invalid session mode %q", r.ID, r.Mode)
	}
	return schedule.ClassSession{
		ID:          r.ID,
		Date:        r.Date,
		Day:         r.Day,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Mode:        mode,
		MeetingLink: r.MeetLink,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}, nil
}

const classColumns = `id, date, day, start_time, end_time, mode, meet_link, created_at, updated_at`

type scheduleRepository struct {
	db core.DBExecutor
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db core.DBExecutor) schedule.Repository {
	return &scheduleRepository{db: db}
}

func (repo *scheduleRepository) QuerySessions(ctx context.Context) ([]schedule.ClassSession, error) {
	var rows []classRow
	q := `SELECT ` + classColumns + ` FROM classes ORDER BY date, start_time, created_at`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}

	sessions := make([]schedule.ClassSession, 0, len(rows))
	for _, r := range rows {
		cs, err := r.session()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, cs)
	}
	return sessions, nil
}

func (repo *scheduleRepository) getSession(ctx context.Context, id string) (schedule.ClassSession, error) {
	var row classRow
	q := `SELECT ` + classColumns + ` FROM classes WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schedule.ClassSession{}, schedule.ErrNotFound
		}
		return schedule.ClassSession{}, errors.Wrap(err, "selecting class")
	}
	return row.session()
}

func (repo *scheduleRepository) CreateSession(ctx context.Context, cs schedule.ClassSession) (schedule.ClassSession, error) {
	q := `INSERT INTO classes (` + classColumns + `)
		VALUES (:id, :date, :day, :start_time, :end_time, :mode, :meet_link, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newClassRow(cs)); err != nil {
		return schedule.ClassSession{}, errors.Wrap(err, "inserting class")
	}
	return repo.getSession(ctx, cs.ID)
}

func (repo *scheduleRepository) UpdateSession(ctx context.Context, cs schedule.ClassSession) (schedule.ClassSession, error) {
	q := `UPDATE classes SET
		date = :date, day = :day, start_time = :start_time, end_time = :end_time,
		mode = :mode, meet_link = :meet_link, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newClassRow(cs))
	if err != nil {
		return schedule.ClassSession{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.ClassSession{}, schedule.ErrNotFound
	}
	return repo.getSession(ctx, cs.ID)
}

func (repo *scheduleRepository) DeleteSession(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}
