package grade

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/syllabus"
)

var errDown = errors.New("portal down")

type stubRepo struct {
	grades map[string][]RawGrade
	err    error
}

func (r *stubRepo) QueryGrades(_ context.Context, studentID string, _ ...core.DBExecutor) ([]RawGrade, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append(make([]RawGrade, 0), r.grades[studentID]...), nil
}

func (r *stubRepo) SaveGrades(_ context.Context, studentID string, grades []RawGrade, _ ...core.DBExecutor) error {
	r.grades[studentID] = grades
	return nil
}

type stubSyllabi struct {
	syllabi []syllabus.Syllabus
	err     error
}

func (r *stubSyllabi) QuerySyllabi(context.Context, *syllabus.QueryFilter, ...core.DBExecutor) ([]syllabus.Syllabus, error) {
	return r.syllabi, r.err
}

func (r *stubSyllabi) GetSyllabus(context.Context, string, ...core.DBExecutor) (syllabus.Syllabus, error) {
	return syllabus.Syllabus{}, syllabus.ErrNotFound
}

func (r *stubSyllabi) SaveSyllabi(context.Context, []syllabus.Syllabus, ...core.DBExecutor) error {
	return nil
}

type stubCache map[string]PeriodGrades

func (c stubCache) GetPeriodGrades(_ context.Context, key string) (PeriodGrades, error) {
	pg, ok := c[key]
	if !ok {
		return PeriodGrades{}, ErrNotCached
	}
	return pg, nil
}

func (c stubCache) SetPeriodGrades(_ context.Context, key string, pg PeriodGrades) error {
	c[key] = pg
	return nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *stubMailer) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup() (*Service, *stubRepo, *stubSyllabi, stubCache, *stubMailer) {
	repo := &stubRepo{grades: make(map[string][]RawGrade)}
	syllabi := &stubSyllabi{syllabi: catalog()}
	cache := make(stubCache)
	mailer := &stubMailer{}
	svc := NewService(repo, syllabi, cache, mailer, nopLogger{}, Options{})
	return svc, repo, syllabi, cache, mailer
}

func TestService_PeriodGrades(t *testing.T) {
	svc, repo, syllabi, cache, _ := setup()
	ctx := context.Background()
	repo.grades["st1"] = []RawGrade{raw("MIA_IGM_EXA", 15)}

	pg, err := svc.PeriodGrades(ctx, " st1 ", 3)
	require.NoError(t, err)
	assert.False(t, pg.Stale)
	assert.InDelta(t, 15, pg.StudentOverall.Value, 1e-9)
	assert.Contains(t, cache, CacheKey("st1", 3))

	// catalog down: the last result is served
	syllabi.err = errDown
	pg, err = svc.PeriodGrades(ctx, "st1", 3)
	require.NoError(t, err)
	assert.True(t, pg.Stale)
	assert.InDelta(t, 15, pg.StudentOverall.Value, 1e-9)

	// nothing cached for this key
	_, err = svc.PeriodGrades(ctx, "st1", 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDown))

	// grades down
	syllabi.err = nil
	repo.err = errDown
	pg, err = svc.PeriodGrades(ctx, "st1", 3)
	require.NoError(t, err)
	assert.True(t, pg.Stale)
}

func TestService_Sync(t *testing.T) {
	svc, repo, _, _, mailer := setup()
	ctx := context.Background()
	student := core.StudentRef{ID: "st1", Name: "Ada", Email: "ada@test.cd"}

	t0 := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(48 * time.Hour)
	NowFunc = func() time.Time { return t0 }
	defer func() { NowFunc = time.Now }()

	added, err := svc.Sync(ctx, student, []RawGrade{raw("MIA_IGM_EXA", 15), raw("CN_PC_PSE_CC", 12)})
	require.NoError(t, err)
	assert.Len(t, added, 2)
	assert.Empty(t, mailer.sent, "no notification on first sync")
	for _, rg := range repo.grades["st1"] {
		assert.Equal(t, t0, rg.SyncedAt)
		assert.Equal(t, 3, rg.Semester)
	}

	NowFunc = func() time.Time { return t1 }
	added, err = svc.Sync(ctx, student, []RawGrade{
		raw("MIA_IGM_EXA", 15), raw("CN_PC_PSE_CC", 12), raw("CN_PC_PSE_EXA", 9), raw("CN_PC_PSE_EXA", 9),
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "CN_PC_PSE_EXA", added[0].Code)

	stored := repo.grades["st1"]
	require.Len(t, stored, 3)
	assert.Equal(t, t0, stored[0].SyncedAt, "syncedAt carried over")
	assert.Equal(t, t1, stored[2].SyncedAt)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "ada@test.cd", msg.To[0].Address)
	assert.Equal(t, "new_grades", msg.TemplateName)
	data := msg.TemplateData.(newGradesData)
	require.Len(t, data.Grades, 1)
	assert.True(t, strings.HasPrefix(data.Grades[0].Description, "Programmation système"))
	assert.Equal(t, "9", data.Grades[0].Mark)
}

func TestService_Sync_doesNotMutateInput(t *testing.T) {
	svc, repo, _, _, _ := setup()
	fresh := []RawGrade{{Code: " c1 ", Name: " " + prefix + "MIA_IGM_EXA ", Grade: 15, AlphaMark: " "}}
	before := append([]RawGrade(nil), fresh...)

	_, err := svc.Sync(context.Background(), core.StudentRef{ID: "st1"}, fresh)
	require.NoError(t, err)
	assert.Equal(t, before, fresh)

	stored := repo.grades["st1"]
	require.Len(t, stored, 1)
	assert.Equal(t, "c1", stored[0].Code)
	assert.Equal(t, prefix+"MIA_IGM_EXA", stored[0].Name)
	assert.Equal(t, 3, stored[0].Semester)
}

func TestService_Sync_validation(t *testing.T) {
	svc, _, _, _, _ := setup()
	ctx := context.Background()

	_, err := svc.Sync(ctx, core.StudentRef{}, nil)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))

	_, err = svc.Sync(ctx, core.StudentRef{ID: "st1"}, []RawGrade{{Code: "x", Name: "y", AlphaMark: "AB"}})
	require.True(t, errors.As(err, &vErr))
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "RawGrade.alpha_mark", vErr.Fields[0].Field)
}

func TestService_Unmatched(t *testing.T) {
	svc, repo, _, _, _ := setup()
	repo.grades["st1"] = []RawGrade{raw("MIA_IGM_EXA", 15), raw("CN_PC_PSX_EXA_1", 12), raw("CN_PC_PSX_EXA", 9)}

	sugs, err := svc.Unmatched(context.Background(), "st1")
	require.NoError(t, err)
	require.Len(t, sugs, 2)
	for _, sug := range sugs {
		assert.Equal(t, "CN_PC_PSX", sug.Code)
		assert.Equal(t, "CN_PC_PSE", sug.Closest)
		assert.Equal(t, "pse", sug.SyllabusID)
		assert.Greater(t, sug.Ratio, .8)
	}
}
