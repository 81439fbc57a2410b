package grade

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/syllabus"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNoGrades  = errors.New("no grades collection supplied")
	ErrNotCached = errors.New("grades not cached")
)

type (
	Repository interface {
		// QueryGrades returns every stored raw grade of a student, all semesters, in sync order.
		QueryGrades(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]RawGrade, error)
		// SaveGrades replaces the stored raw grades of a student.
		SaveGrades(ctx context.Context, studentID string, grades []RawGrade, exec ...core.DBExecutor) error
	}

	// Cache holds the last computed PeriodGrades, served when a refresh fails.
	Cache interface {
		GetPeriodGrades(ctx context.Context, key string) (PeriodGrades, error) // ErrNotCached when missing
		SetPeriodGrades(ctx context.Context, key string, pg PeriodGrades) error
	}

	Service struct {
		repo     Repository
		syllabi  syllabus.Repository
		cache    Cache
		mailSvc  core.EmailService
		logger   core.Logger
		opts     Options
		notifyOn bool
	}
)

func NewService(
	repo Repository,
	syllabi syllabus.Repository,
	cache Cache,
	mailSvc core.EmailService,
	logger core.Logger,
	opts Options,
) *Service {
	return &Service{
		repo:     repo,
		syllabi:  syllabi,
		cache:    cache,
		mailSvc:  mailSvc,
		logger:   logger,
		opts:     opts,
		notifyOn: mailSvc != nil,
	}
}

// Compute filters raw grades by semester (0 keeps them all), matches them against the
// catalog and aggregates them. It only fails when no grades collection is supplied.
func Compute(raw []RawGrade, syllabi []syllabus.Syllabus, semester int, opts Options) (PeriodGrades, error) {
	if raw == nil {
		return PeriodGrades{}, ErrNoGrades
	}
	if semester > 0 {
		filtered := make([]RawGrade, 0, len(raw))
		for _, rg := range raw {
			if rg.SemesterNumber() == semester {
				filtered = append(filtered, rg)
			}
		}
		raw = filtered
	}
	return Aggregate(MatchAll(raw, syllabi), opts), nil
}

func CacheKey(studentID string, semester int) string {
	return fmt.Sprintf("grades:%s:%d", studentID, semester)
}

// PeriodGrades computes the grades of a student for a semester (0 for all semesters).
// When the grades or the catalog cannot be loaded, the last computed result is served
// instead, flagged as Stale.
func (svc *Service) PeriodGrades(ctx context.Context, studentID string, semester int) (PeriodGrades, error) {
	studentID = core.CleanString(studentID)
	key := CacheKey(studentID, semester)

	pg, err := svc.compute(ctx, studentID, semester)
	if err != nil {
		cached, cErr := svc.cache.GetPeriodGrades(ctx, key)
		if cErr != nil {
			if !errors.Is(cErr, ErrNotCached) {
				svc.logger.Error("reading cached grades", cErr, core.StudentRef{ID: studentID})
			}
			return PeriodGrades{}, err
		}
		svc.logger.Warn("serving cached grades", err, core.StudentRef{ID: studentID})
		cached.Stale = true
		return cached, nil
	}

	if err := svc.cache.SetPeriodGrades(ctx, key, pg); err != nil {
		svc.logger.Warn("caching grades", err, core.StudentRef{ID: studentID})
	}
	return pg, nil
}

func (svc *Service) compute(ctx context.Context, studentID string, semester int) (PeriodGrades, error) {
	raw, err := svc.repo.QueryGrades(ctx, studentID)
	if err != nil {
		return PeriodGrades{}, pkgerrors.Wrap(err, "querying grades")
	}
	syllabi, err := svc.syllabi.QuerySyllabi(ctx, nil)
	if err != nil {
		return PeriodGrades{}, pkgerrors.Wrap(err, "querying syllabi")
	}
	return Compute(raw, syllabi, semester, svc.opts)
}

// Sync stores a fresh set of raw grades for a student and returns the ones never seen before.
// SyncedAt is carried over from stored grades with the same code, so grade dates stay stable.
// The student is notified of new grades, except on their first sync.
func (svc *Service) Sync(ctx context.Context, student core.StudentRef, fresh []RawGrade) ([]RawGrade, error) {
	student.ID = core.CleanString(student.ID)
	if student.ID == "" {
		return nil, core.NewValidationError(errors.New("student is required"), core.FieldError{Field: "student", Error: "this field is required"})
	}
	valid := make([]RawGrade, len(fresh))
	for i, rg := range fresh {
		if err := rg.Validate(); err != nil {
			if flds := core.ValidationFieldErrors(err); flds != nil {
				return nil, core.NewValidationError(pkgerrors.Wrapf(err, "grade #%d", i), flds...)
			}
			return nil, err
		}
		valid[i] = rg
	}

	existing, err := svc.repo.QueryGrades(ctx, student.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying grades")
	}
	syncedAt := make(map[string]time.Time, len(existing))
	for _, rg := range existing {
		syncedAt[rg.Code] = rg.SyncedAt
	}

	now := NowFunc().UTC()
	seen := make(map[string]bool, len(fresh))
	grades := make([]RawGrade, 0, len(fresh))
	var added []RawGrade
	for _, rg := range valid {
		if seen[rg.Code] {
			continue
		}
		seen[rg.Code] = true
		if t, ok := syncedAt[rg.Code]; ok {
			rg.SyncedAt = t
		} else {
			rg.SyncedAt = now
			added = append(added, rg)
		}
		grades = append(grades, rg)
	}

	if err := svc.repo.SaveGrades(ctx, student.ID, grades); err != nil {
		return nil, pkgerrors.Wrap(err, "saving grades")
	}
	if len(added) > 0 && len(existing) > 0 {
		svc.notify(ctx, student, added)
	}
	return added, nil
}

// Unmatched lists the grades of a student that match no syllabus, with the closest catalog code.
func (svc *Service) Unmatched(ctx context.Context, studentID string) ([]Suggestion, error) {
	raw, err := svc.repo.QueryGrades(ctx, core.CleanString(studentID))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying grades")
	}
	syllabi, err := svc.syllabi.QuerySyllabi(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying syllabi")
	}
	return Suggest(Unmatched(raw, syllabi), syllabi), nil
}

type (
	notifiedGrade struct {
		Description string
		Mark        string
	}

	newGradesData struct {
		StudentName string
		Grades      []notifiedGrade
	}
)

func (svc *Service) notify(ctx context.Context, student core.StudentRef, added []RawGrade) {
	if !svc.notifyOn || student.Email == "" {
		return
	}

	syllabi, err := svc.syllabi.QuerySyllabi(ctx, nil)
	if err != nil {
		// raw names are good enough for a notification
		svc.logger.Warn("querying syllabi for notification", err, student)
	}
	data := newGradesData{StudentName: student.Name}
	if data.StudentName == "" {
		data.StudentName = student.ID
	}
	for _, g := range MatchAll(added, syllabi) {
		desc := g.Description
		if g.SubjectName != "" && desc != g.Name {
			desc = g.SubjectName + " - " + desc
		}
		data.Grades = append(data.Grades, notifiedGrade{Description: desc, Mark: g.Mark.String()})
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject:      "New grades",
		TemplateName: "new_grades",
		TemplateData: data,
	})
}
