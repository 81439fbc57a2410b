package inmemdb

import (
	"context"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) QueryGrades(_ context.Context, studentID string, _ ...core.DBExecutor) ([]grade.RawGrade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	stored := repo.db.table[studentID]
	grades := make([]grade.RawGrade, len(stored))
	copy(grades, stored)
	return grades, nil
}

func (repo *gradeRepository) SaveGrades(_ context.Context, studentID string, grades []grade.RawGrade, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := make([]grade.RawGrade, len(grades))
	copy(stored, grades)
	repo.db.table[studentID] = stored
	return nil
}
