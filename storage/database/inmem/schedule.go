package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ccourse/core/schedule"
)

type scheduleRepository struct {
	db *classTable
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{db: db.classes}
}

func (repo *scheduleRepository) QuerySessions(_ context.Context) ([]schedule.ClassSession, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]schedule.ClassSession, 0, len(repo.db.table))
	for _, cs := range repo.db.table {
		sessions = append(sessions, cs)
	}
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return sessions, nil
}

func (repo *scheduleRepository) CreateSession(_ context.Context, cs schedule.ClassSession) (schedule.ClassSession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[cs.ID] = cs
	return cs, nil
}

func (repo *scheduleRepository) UpdateSession(_ context.Context, cs schedule.ClassSession) (schedule.ClassSession, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[cs.ID]; !ok {
		return schedule.ClassSession{}, schedule.ErrNotFound
	}
	repo.db.table[cs.ID] = cs
	return cs, nil
}

func (repo *scheduleRepository) DeleteSession(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
