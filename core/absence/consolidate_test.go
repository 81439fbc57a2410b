package absence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/releve/core"
)

var day = time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

func at(d int, h, m int) time.Time {
	return day.AddDate(0, 0, d).Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func rec(id string, start time.Time, subject, reason string) RawAbsence {
	return RawAbsence{SlotID: id, StartDate: start, SubjectName: subject, Justificatory: reason}
}

func TestConsolidate(t *testing.T) {
	tests := []struct {
		name    string
		records []RawAbsence
		slot    time.Duration
		want    []Absence
	}{
		{name: "empty", want: []Absence{}},
		{
			name:    "same subject, day and status merge",
			records: []RawAbsence{rec("1", at(0, 9, 0), "Maths", ""), rec("2", at(0, 10, 0), "Maths", "")},
			slot:    time.Hour,
			want: []Absence{
				{ID: "1", From: at(0, 9, 0), To: at(0, 11, 0), TimeMissed: 120, SubjectName: "Maths", Slots: 2},
			},
		},
		{
			name:    "different subjects never merge",
			records: []RawAbsence{rec("1", at(0, 9, 0), "Maths", ""), rec("2", at(0, 10, 0), "Web", "")},
			slot:    time.Hour,
			want: []Absence{
				{ID: "2", From: at(0, 10, 0), To: at(0, 11, 0), TimeMissed: 60, SubjectName: "Web", Slots: 1},
				{ID: "1", From: at(0, 9, 0), To: at(0, 10, 0), TimeMissed: 60, SubjectName: "Maths", Slots: 1},
			},
		},
		{
			name:    "different justification never merge",
			records: []RawAbsence{rec("1", at(0, 9, 0), "Maths", "sick"), rec("2", at(0, 10, 30), "Maths", "")},
			want: []Absence{
				{ID: "2", From: at(0, 10, 30), To: at(0, 12, 0), TimeMissed: 90, SubjectName: "Maths", Slots: 1},
				{ID: "1", From: at(0, 9, 0), To: at(0, 10, 30), TimeMissed: 90, Justified: true, Reason: "sick", SubjectName: "Maths", Slots: 1},
			},
		},
		{
			name:    "different days never merge",
			records: []RawAbsence{rec("2", at(1, 9, 0), "Maths", ""), rec("1", at(0, 16, 0), "Maths", "")},
			slot:    time.Hour,
			want: []Absence{
				{ID: "2", From: at(1, 9, 0), To: at(1, 10, 0), TimeMissed: 60, SubjectName: "Maths", Slots: 1},
				{ID: "1", From: at(0, 16, 0), To: at(0, 17, 0), TimeMissed: 60, SubjectName: "Maths", Slots: 1},
			},
		},
		{
			name: "only contiguous records merge",
			records: []RawAbsence{
				rec("1", at(0, 8, 0), "Maths", ""), rec("2", at(0, 9, 0), "Web", ""), rec("3", at(0, 10, 0), "Maths", ""),
			},
			slot: time.Hour,
			want: []Absence{
				{ID: "3", From: at(0, 10, 0), To: at(0, 11, 0), TimeMissed: 60, SubjectName: "Maths", Slots: 1},
				{ID: "2", From: at(0, 9, 0), To: at(0, 10, 0), TimeMissed: 60, SubjectName: "Web", Slots: 1},
				{ID: "1", From: at(0, 8, 0), To: at(0, 9, 0), TimeMissed: 60, SubjectName: "Maths", Slots: 1},
			},
		},
		{
			name: "explicit end dates and overlaps",
			records: []RawAbsence{
				{SlotID: "1", StartDate: at(0, 9, 0), EndDate: at(0, 12, 0), SubjectName: "Maths", Mandatory: true},
				{SlotID: "2", StartDate: at(0, 10, 0), EndDate: at(0, 11, 0), SubjectName: "Maths"},
			},
			want: []Absence{
				{ID: "1", From: at(0, 9, 0), To: at(0, 12, 0), TimeMissed: 240, SubjectName: "Maths", Mandatory: true, Slots: 2},
			},
		},
		{
			name: "same instant keeps input order",
			records: []RawAbsence{
				rec("a", at(0, 9, 0), "Web", ""), rec("b", at(0, 9, 0), "Maths", ""), rec("c", at(0, 9, 0), "Web", ""),
			},
			slot: time.Hour,
			want: []Absence{
				{ID: "a", From: at(0, 9, 0), To: at(0, 10, 0), TimeMissed: 60, SubjectName: "Web", Slots: 1},
				{ID: "b", From: at(0, 9, 0), To: at(0, 10, 0), TimeMissed: 60, SubjectName: "Maths", Slots: 1},
				{ID: "c", From: at(0, 9, 0), To: at(0, 10, 0), TimeMissed: 60, SubjectName: "Web", Slots: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consolidate(tt.records, tt.slot)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsolidate_location(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// 23:30 and 00:30 UTC on Nov 3-4 are 00:30 and 01:30 in Paris, on Nov 4
	records := []RawAbsence{rec("1", at(0, 23, 30), "Maths", ""), rec("2", at(1, 0, 30), "Maths", "")}

	got := Consolidate(records, time.Hour)
	assert.Len(t, got, 2, "different UTC days")

	got = Consolidate(records, time.Hour, paris)
	require.Len(t, got, 1)
	assert.Equal(t, 120, got[0].TimeMissed)
	assert.Equal(t, at(1, 1, 30), got[0].To)

	// the other way around: same UTC day, different local days
	records = []RawAbsence{rec("1", at(0, 22, 0), "Maths", ""), rec("2", at(0, 23, 30), "Maths", "")}
	assert.Len(t, Consolidate(records, time.Hour), 1)
	assert.Len(t, Consolidate(records, time.Hour, paris), 2)

	svc := NewService(&stubRepo{absences: map[string][]RawAbsence{"st1": records}}, time.Hour, paris)
	absences, err := svc.Absences(context.Background(), "st1", QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, absences, 2)
}

func TestConsolidate_doesNotMutateInput(t *testing.T) {
	records := []RawAbsence{rec("2", at(1, 9, 0), "Maths", ""), rec("1", at(0, 9, 0), "Maths", "")}
	_ = Consolidate(records, 0)
	assert.Equal(t, "2", records[0].SlotID)
}

func TestSummarize(t *testing.T) {
	absences := Consolidate([]RawAbsence{
		rec("1", at(0, 9, 0), "Maths", ""),
		rec("2", at(0, 10, 0), "Maths", ""),
		{SlotID: "3", StartDate: at(1, 9, 0), SubjectName: "Web", Justificatory: "sick", Mandatory: true},
	}, time.Hour)
	assert.Equal(t, Summary{Count: 2, TimeMissed: 180, Justified: 60, Unjustified: 120, Mandatory: 1}, Summarize(absences))
}

type stubRepo struct {
	absences map[string][]RawAbsence
	filter   *QueryFilter
}

func (r *stubRepo) QueryAbsences(_ context.Context, studentID string, filter *QueryFilter, _ ...core.DBExecutor) ([]RawAbsence, error) {
	r.filter = filter
	return r.absences[studentID], nil
}

func (r *stubRepo) SaveAbsences(_ context.Context, studentID string, absences []RawAbsence, _ ...core.DBExecutor) error {
	r.absences[studentID] = absences
	return nil
}

func TestService(t *testing.T) {
	repo := &stubRepo{absences: make(map[string][]RawAbsence)}
	svc := NewService(repo, time.Hour)
	ctx := context.Background()

	fresh := []RawAbsence{
		rec(" 1 ", at(0, 9, 0), " Maths ", ""),
		rec("2", at(0, 10, 0), "Maths", "  "),
		rec("1", at(0, 9, 0), "Maths", ""),
	}
	err := svc.Sync(ctx, "st1", fresh)
	require.NoError(t, err)
	assert.Equal(t, " 1 ", fresh[0].SlotID, "input left untouched")
	assert.Equal(t, " Maths ", fresh[0].SubjectName)
	require.Len(t, repo.absences["st1"], 2)
	assert.Equal(t, "1", repo.absences["st1"][0].SlotID)
	assert.Equal(t, "Maths", repo.absences["st1"][0].SubjectName)

	got, err := svc.Absences(ctx, "st1", QueryFilter{})
	require.NoError(t, err)
	assert.Nil(t, repo.filter)
	require.Len(t, got, 1)
	assert.Equal(t, 120, got[0].TimeMissed)
	assert.False(t, got[0].Justified)

	_, err = svc.Absences(ctx, "st1", QueryFilter{From: day})
	require.NoError(t, err)
	require.NotNil(t, repo.filter)

	err = svc.Sync(ctx, "st1", []RawAbsence{{SlotID: "x"}})
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))

	err = svc.Sync(ctx, "", nil)
	require.True(t, errors.As(err, &vErr))
}
