package syllabus

import (
	"context"
	"errors"

	"github.com/trezcool/releve/core"
)

var (
	// errors
	ErrNotFound = errors.New("syllabus not found")
)

type (
	Repository interface {
		// QuerySyllabi returns the catalog in catalog order. A nil filter returns everything.
		QuerySyllabi(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Syllabus, error)
		GetSyllabus(ctx context.Context, id string, exec ...core.DBExecutor) (Syllabus, error)
		// SaveSyllabi upserts the given entries, keeping their relative order.
		SaveSyllabi(ctx context.Context, syllabi []Syllabus, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Syllabus, error) {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.repo.QuerySyllabi(ctx, nil)
	}
	return svc.repo.QuerySyllabi(ctx, &filter)
}

func (svc *Service) Get(ctx context.Context, id string) (Syllabus, error) {
	return svc.repo.GetSyllabus(ctx, core.CleanString(id))
}

// Import validates and stores catalog entries. Nothing is stored if any entry is invalid.
func (svc *Service) Import(ctx context.Context, syllabi []Syllabus) error {
	for i := range syllabi {
		if err := syllabi[i].Validate(); err != nil {
			if flds := core.ValidationFieldErrors(err); flds != nil {
				return core.NewValidationError(err, flds...)
			}
			return err
		}
	}
	return svc.repo.SaveSyllabi(ctx, syllabi)
}
