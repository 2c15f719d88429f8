package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/material"
)

type materialRow struct {
	ID          string      `db:"id"`
	ModuleID    string      `db:"module_id"`
	LessonID    null.String `db:"lesson_id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	FileURL     string      `db:"file_url"`
	FileType    string      `db:"file_type"`
	UploadDate  time.Time   `db:"upload_date"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r materialRow) material() material.Material {
	return material.Material{
		ID:          r.ID,
		ModuleID:    r.ModuleID,
		LessonID:    r.LessonID,
		Title:       r.Title,
		Description: r.Description,
		FileURL:     r.FileURL,
		FileType:    r.FileType,
		UploadDate:  r.UploadDate.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func newMaterialRow(m material.Material) materialRow {
	return materialRow{
		ID:          m.ID,
		ModuleID:    m.ModuleID,
		LessonID:    m.LessonID,
		Title:       m.Title,
		Description: m.Description,
		FileURL:     m.FileURL,
		FileType:    m.FileType,
		UploadDate:  m.UploadDate.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

const materialColumns = `id, module_id, lesson_id, title, description, file_url, file_type, upload_date, updated_at`

type materialRepository struct {
	db core.DBExecutor
}

var _ material.Repository = (*materialRepository)(nil)

func NewMaterialRepository(db core.DBExecutor) material.Repository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) QueryMaterials(ctx context.Context, filter material.QueryFilter) ([]material.Material, error) {
	q := `SELECT ` + materialColumns + ` FROM materials`
	var args []interface{}
	if filter.ModuleID != "" {
		q += ` WHERE module_id = $1`
		args = append(args, filter.ModuleID)
	}
	q += ` ORDER BY upload_date DESC, id`

	var rows []materialRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting materials")
	}
	mats := make([]material.Material, 0, len(rows))
	for _, r := range rows {
		mats = append(mats, r.material())
	}
	return mats, nil
}

func (repo *materialRepository) GetMaterial(ctx context.Context, id string) (material.Material, error) {
	var row materialRow
	q := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return material.Material{}, material.ErrNotFound
		}
		return material.Material{}, errors.Wrap(err, "selecting material")
	}
	return row.material(), nil
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	q := `INSERT INTO materials (` + materialColumns + `)
		VALUES (:id, :module_id, :lesson_id, :title, :description, :file_url, :file_type, :upload_date, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newMaterialRow(m)); err != nil {
		return material.Material{}, errors.Wrap(err, "inserting material")
	}
	return repo.GetMaterial(ctx, m.ID)
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, m material.Material) (material.Material, error) {
	q := `UPDATE materials SET
		module_id = :module_id, lesson_id = :lesson_id, title = :title, description = :description,
		file_url = :file_url, file_type = :file_type, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newMaterialRow(m))
	if err != nil {
		return material.Material{}, errors.Wrap(err, "updating material")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return material.Material{}, material.ErrNotFound
	}
	return repo.GetMaterial(ctx, m.ID)
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting material")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting material")
	}
	if n == 0 {
		return material.ErrNotFound
	}
	return nil
}
