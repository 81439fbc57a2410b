package inmemdb

import (
	"context"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/absence"
)

type absenceRepository struct {
	db *absenceTable
}

var _ absence.Repository = (*absenceRepository)(nil)

func NewAbsenceRepository(db *DB) *absenceRepository {
	return &absenceRepository{db: db.absence}
}

func (repo *absenceRepository) QueryAbsences(_ context.Context, studentID string, filter *absence.QueryFilter, _ ...core.DBExecutor) ([]absence.RawAbsence, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stored := repo.db.table[studentID]
	absences := make([]absence.RawAbsence, 0, len(stored))
	for _, a := range stored {
		if filter == nil || filter.Keep(a.StartDate) {
			absences = append(absences, a)
		}
	}
	return absences, nil
}

func (repo *absenceRepository) SaveAbsences(_ context.Context, studentID string, absences []absence.RawAbsence, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := make([]absence.RawAbsence, len(absences))
	copy(stored, absences)
	repo.db.table[studentID] = stored
	return nil
}
