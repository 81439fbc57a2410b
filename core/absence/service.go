package absence

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/releve/core"
)

type (
	Repository interface {
		// QueryAbsences returns the raw absences of a student. A nil filter returns everything.
		QueryAbsences(ctx context.Context, studentID string, filter *QueryFilter, exec ...core.DBExecutor) ([]RawAbsence, error)
		// SaveAbsences replaces the stored raw absences of a student.
		SaveAbsences(ctx context.Context, studentID string, absences []RawAbsence, exec ...core.DBExecutor) error
	}

	Service struct {
		repo         Repository
		slotDuration time.Duration
		loc          *time.Location // school timezone, nil keeps the stored one
	}
)

// NewService returns an absence service; `loc` is the timezone absences are grouped by day in.
func NewService(repo Repository, slotDuration time.Duration, loc ...*time.Location) *Service {
	svc := &Service{repo: repo, slotDuration: slotDuration}
	if len(loc) > 0 {
		svc.loc = loc[0]
	}
	return svc
}

// Absences returns the consolidated absences of a student, most recent first.
func (svc *Service) Absences(ctx context.Context, studentID string, filter QueryFilter) ([]Absence, error) {
	var f *QueryFilter
	if !filter.IsEmpty() {
		f = &filter
	}
	raw, err := svc.repo.QueryAbsences(ctx, core.CleanString(studentID), f)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying absences")
	}
	return Consolidate(raw, svc.slotDuration, svc.loc), nil
}

// Sync validates and stores a fresh set of raw absences for a student.
func (svc *Service) Sync(ctx context.Context, studentID string, fresh []RawAbsence) error {
	studentID = core.CleanString(studentID)
	if studentID == "" {
		return core.NewValidationError(errors.New("student is required"), core.FieldError{Field: "student", Error: "this field is required"})
	}
	seen := make(map[string]bool, len(fresh))
	absences := make([]RawAbsence, 0, len(fresh))
	for i, ra := range fresh {
		if err := ra.Validate(); err != nil {
			if flds := core.ValidationFieldErrors(err); flds != nil {
				return core.NewValidationError(pkgerrors.Wrapf(err, "absence #%d", i), flds...)
			}
			return err
		}
		if seen[ra.SlotID] {
			continue
		}
		seen[ra.SlotID] = true
		absences = append(absences, ra)
	}
	if err := svc.repo.SaveAbsences(ctx, studentID, absences); err != nil {
		return pkgerrors.Wrap(err, "saving absences")
	}
	return nil
}
