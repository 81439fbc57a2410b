package inmemdb

import (
	"context"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/syllabus"
)

type syllabusRepository struct {
	db *syllabusTable
}

var _ syllabus.Repository = (*syllabusRepository)(nil)

func NewSyllabusRepository(db *DB) *syllabusRepository {
	return &syllabusRepository{db: db.syllabus}
}

func (repo *syllabusRepository) QuerySyllabi(_ context.Context, filter *syllabus.QueryFilter, _ ...core.DBExecutor) ([]syllabus.Syllabus, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	syllabi := make([]syllabus.Syllabus, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		s := *repo.db.table[id]
		if filter == nil || filter.Keep(s) {
			syllabi = append(syllabi, s)
		}
	}
	return syllabi, nil
}

func (repo *syllabusRepository) GetSyllabus(_ context.Context, id string, _ ...core.DBExecutor) (syllabus.Syllabus, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return syllabus.Syllabus{}, syllabus.ErrNotFound
}

func (repo *syllabusRepository) SaveSyllabi(_ context.Context, syllabi []syllabus.Syllabus, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range syllabi {
		s := syllabi[i]
		if _, ok := repo.db.table[s.ID]; !ok {
			repo.db.order = append(repo.db.order, s.ID)
		}
		repo.db.table[s.ID] = &s
	}
	return nil
}
