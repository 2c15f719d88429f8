package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ccourse/core/material"
)

type materialRepository struct {
	db *materialTable
}

var _ material.Repository = (*materialRepository)(nil)

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{db: db.material}
}

func (repo *materialRepository) QueryMaterials(_ context.Context, filter material.QueryFilter) ([]material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mats := make([]material.Material, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		if filter.ModuleID != "" && m.ModuleID != filter.ModuleID {
			continue
		}
		mats = append(mats, m)
	}
	sort.Slice(mats, func(i, j int) bool {
		if !mats[i].UploadDate.Equal(mats[j].UploadDate) {
			return mats[i].UploadDate.After(mats[j].UploadDate)
		}
		return mats[i].ID < mats[j].ID
	})
	return mats, nil
}

func (repo *materialRepository) GetMaterial(_ context.Context, id string) (material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[id]; ok {
		return m, nil
	}
	return material.Material{}, material.ErrNotFound
}

func (repo *materialRepository) CreateMaterial(_ context.Context, m material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[m.ID] = m
	return m, nil
}

func (repo *materialRepository) UpdateMaterial(_ context.Context, m material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[m.ID]; !ok {
		return material.Material{}, material.ErrNotFound
	}
	repo.db.table[m.ID] = m
	return m, nil
}

func (repo *materialRepository) DeleteMaterial(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return material.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
