package grade

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/releve/core/syllabus"
)

const prefix = "2526_B_CYBER_S03_"

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func raw(name string, score float64, alpha ...string) RawGrade {
	rg := RawGrade{Code: name, Name: prefix + name, Grade: score}
	if len(alpha) > 0 {
		rg.AlphaMark = alpha[0]
	}
	return rg
}

func catalog() []syllabus.Syllabus {
	return []syllabus.Syllabus{
		{
			ID: "pse", Name: prefix + "CN_PC_PSE", UE: "CN", Coeff: floatPtr(2),
			Caption: syllabus.Caption{Name: "Programmation système"},
			Exams: []syllabus.ExamComponent{
				{Type: "CC", Weighting: 30, Description: "Contrôle continu"},
				{Type: "EXA", Weighting: 70, Description: "Examen final"},
			},
		},
		{
			ID: "web", Name: prefix + "CN_WEB", UE: "CN",
			Caption: syllabus.Caption{Name: "Web"},
			Exams: []syllabus.ExamComponent{
				{Type: "PRJ", Index: intPtr(1), Weighting: 50, Description: "Projet 1"},
				{Type: "PRJ", Index: intPtr(2), Weighting: 50, Description: "Projet 2"},
			},
		},
		{
			ID: "igm", Name: prefix + "MIA_IGM", UE: "MIA",
			Caption: syllabus.Caption{Name: "Infographie"},
			Exams:   []syllabus.ExamComponent{{Type: "EXA", Weighting: 100}},
		},
		{
			ID: "stage", Name: prefix + "ST_STAGE", UE: "ST",
			Caption: syllabus.Caption{Name: "Stage"},
		},
	}
}

func aggregate(rgs ...RawGrade) PeriodGrades {
	return Aggregate(MatchAll(rgs, catalog()), Options{Names: ModuleNames{"CN": "Concevoir"}})
}

func findSubject(t *testing.T, pg PeriodGrades, id string) Subject {
	t.Helper()
	for _, s := range pg.Subjects {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("subject %q not found in %v", id, pg.Subjects)
	return Subject{}
}

func TestAggregate_empty(t *testing.T) {
	pg := Aggregate([]Grade{}, Options{})
	assert.Equal(t, 0.0, pg.StudentOverall.Value)
	assert.Equal(t, float64(DefaultOutOf), pg.StudentOverall.OutOf)
	assert.NotNil(t, pg.Subjects)
	assert.Empty(t, pg.Subjects)
	assert.NotNil(t, pg.Modules)
	assert.Empty(t, pg.Modules)

	pg = Aggregate(nil, Options{OutOf: 100})
	assert.Empty(t, pg.Subjects)
	assert.Equal(t, 100.0, pg.StudentOverall.OutOf)
}

func TestAggregate_weightedAverage(t *testing.T) {
	pg := aggregate(raw("CN_PC_PSE_CC", 10), raw("CN_PC_PSE_EXA", 16))

	subj := findSubject(t, pg, "CN_Programmation système")
	require.Len(t, subj.Grades, 2)
	assert.InDelta(t, 0.3, subj.Grades[0].Coefficient, 1e-9)
	assert.InDelta(t, 0.7, subj.Grades[1].Coefficient, 1e-9)
	assert.InDelta(t, 14.2, subj.StudentAverage.Value, 1e-9)
	assert.Equal(t, "Contrôle continu", subj.Grades[0].Description)
	assert.Equal(t, 2.0, subj.Coefficient)
	assert.False(t, subj.IsValidationOnly)
}

func TestAggregate_makeUpOverride(t *testing.T) {
	tests := []struct {
		name      string
		grades    []RawGrade
		wantCodes []string
		wantAvg   float64
	}{
		{
			name:      "resit better",
			grades:    []RawGrade{raw("MIA_IGM_EXA_1", 10), raw("MIA_IGM_EXF_1", 14)},
			wantCodes: []string{"MIA_IGM_EXF_1"},
			wantAvg:   14,
		},
		{
			name:      "resit worse",
			grades:    []RawGrade{raw("MIA_IGM_EXA_1", 12), raw("MIA_IGM_EXF_1", 8)},
			wantCodes: []string{"MIA_IGM_EXA_1"},
			wantAvg:   12,
		},
		{
			name:      "tie keeps first",
			grades:    []RawGrade{raw("MIA_IGM_EXF_1", 11), raw("MIA_IGM_EXA_1", 11)},
			wantCodes: []string{"MIA_IGM_EXF_1"},
			wantAvg:   11,
		},
		{
			name:      "different slots",
			grades:    []RawGrade{raw("MIA_IGM_EXA_1", 10), raw("MIA_IGM_EXF_2", 14)},
			wantCodes: []string{"MIA_IGM_EXA_1", "MIA_IGM_EXF_2"},
			wantAvg:   12,
		},
		{
			name:      "non exam grades never merge",
			grades:    []RawGrade{raw("MIA_IGM_TP_1", 10), raw("MIA_IGM_TP_1", 14)},
			wantCodes: []string{"MIA_IGM_TP_1", "MIA_IGM_TP_1"},
			wantAvg:   12,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := aggregate(tt.grades...)
			subj := findSubject(t, pg, "MIA_Infographie")
			codes := make([]string, 0, len(subj.Grades))
			for _, g := range subj.Grades {
				codes = append(codes, g.Code)
			}
			assert.Equal(t, tt.wantCodes, codes)
			assert.InDelta(t, tt.wantAvg, subj.StudentAverage.Value, 1e-9)
		})
	}
}

func TestAggregate_validationOnly(t *testing.T) {
	pg := aggregate(raw("ST_STAGE_RAP", 0, "VA"), raw("ST_STAGE_SOUT", 0, "va"), raw("MIA_IGM_EXA", 12))

	stage := findSubject(t, pg, "ST_Stage")
	assert.True(t, stage.IsValidationOnly)
	assert.False(t, stage.HasNonValidated)
	assert.Equal(t, 0.0, stage.StudentAverage.Value)

	require.Len(t, pg.Modules, 2)
	assert.Equal(t, "ST", pg.Modules[0].ID)
	assert.True(t, pg.Modules[0].IsValidationOnly)
	assert.False(t, pg.Modules[1].IsValidationOnly)
	// the validation-only module does not drag the overall average down
	assert.InDelta(t, 12, pg.StudentOverall.Value, 1e-9)
}

func TestAggregate_nonValidated(t *testing.T) {
	pg := aggregate(raw("ST_STAGE_RAP", 0, "NV"), raw("CN_WEB_PRJ_1", 12), raw("CN_WEB_SOUT", 15, "VA"))

	stage := findSubject(t, pg, "ST_Stage")
	assert.True(t, stage.IsValidationOnly)
	assert.True(t, stage.HasNonValidated)

	web := findSubject(t, pg, "CN_Web")
	assert.False(t, web.IsValidationOnly)
	// the alpha mark is out of the numeric average
	assert.InDelta(t, 12, web.StudentAverage.Value, 1e-9)

	mods := map[string]Module{}
	for _, m := range pg.Modules {
		mods[m.ID] = m
	}
	assert.True(t, mods["ST"].HasNonValidated)
	assert.False(t, mods["CN"].HasNonValidated)
}

func TestAggregate_modules(t *testing.T) {
	pg := aggregate(
		raw("CN_PC_PSE_CC", 10),  // PSE: 10*.3 + 16*.7 = 14.2, coeff 2
		raw("CN_PC_PSE_EXA", 16), //
		raw("CN_WEB_PRJ_1", 8),   // Web: (8+12)/2 = 10, coeff 1
		raw("CN_WEB_PRJ_2", 12),  //
		raw("MIA_IGM_EXA", 15),   // IGM: 15
	)

	require.Len(t, pg.Modules, 2)
	cn := pg.Modules[0]
	assert.Equal(t, "CN", cn.ID)
	assert.Equal(t, "Concevoir", cn.Name)
	require.Len(t, cn.Subjects, 2)
	assert.InDelta(t, (14.2*2+10*1)/3, cn.StudentAverage.Value, 1e-9)

	mia := pg.Modules[1]
	assert.Equal(t, "MIA", mia.Name) // no label: falls back to the code
	assert.InDelta(t, 15, mia.StudentAverage.Value, 1e-9)

	// plain mean of module averages, not weighted
	assert.InDelta(t, ((14.2*2+10*1)/3+15)/2, pg.StudentOverall.Value, 1e-9)

	// modules share the subjects of the period
	assert.Same(t, &pg.Subjects[0], cn.Subjects[0])
}

func TestAggregate_unmatchedFallback(t *testing.T) {
	pg := aggregate(raw("XX_UNKNOWN_TP_1", 9), raw("XX_UNKNOWN_TP_2", 13))

	require.Len(t, pg.Subjects, 1)
	subj := pg.Subjects[0]
	assert.Equal(t, "XX_XX_UNKNOWN", subj.ID)
	require.Len(t, subj.Grades, 2)
	for _, g := range subj.Grades {
		assert.Equal(t, g.Name, g.Description)
		assert.Equal(t, 1.0, g.Coefficient)
		assert.Equal(t, "TP", g.ExamType)
		assert.Empty(t, g.SyllabusID)
	}
	assert.InDelta(t, 11, subj.StudentAverage.Value, 1e-9)
	assert.InDelta(t, 11, pg.StudentOverall.Value, 1e-9)

	// an unindexed exam part is cut too, so both grades share one subject
	pg = aggregate(raw("ZZ_ALGO_EXA", 8), raw("ZZ_ALGO_CC_1", 12))
	require.Len(t, pg.Subjects, 1)
	subj = pg.Subjects[0]
	assert.Equal(t, "ZZ_ZZ_ALGO", subj.ID)
	require.Len(t, subj.Grades, 2)
	assert.Equal(t, "EXA", subj.Grades[0].ExamType)
	assert.Nil(t, subj.Grades[0].ExamIndex)
	assert.Equal(t, "CC", subj.Grades[1].ExamType)
	assert.InDelta(t, 10, subj.StudentAverage.Value, 1e-9)
	require.Len(t, pg.Modules, 1)
	assert.InDelta(t, 10, pg.Modules[0].StudentAverage.Value, 1e-9)

	// a trailing segment that is no known exam type stays in the subject code
	pg = aggregate(raw("ZZ_ALGO_INTRO", 14))
	require.Len(t, pg.Subjects, 1)
	assert.Equal(t, "ZZ_ZZ_ALGO_INTRO", pg.Subjects[0].ID)
	assert.Empty(t, pg.Subjects[0].Grades[0].ExamType)
}

func TestAggregate_makeUpKeepsExamWeighting(t *testing.T) {
	tests := []struct {
		name    string
		grades  []RawGrade
		wantAvg float64
	}{
		{
			name:    "resit better",
			grades:  []RawGrade{raw("CN_PC_PSE_CC", 10), raw("CN_PC_PSE_EXA_1", 12), raw("CN_PC_PSE_EXF_1", 16)},
			wantAvg: 10*.3 + 16*.7,
		},
		{
			name:    "resit before exam",
			grades:  []RawGrade{raw("CN_PC_PSE_EXF_1", 16), raw("CN_PC_PSE_CC", 10), raw("CN_PC_PSE_EXA_1", 12)},
			wantAvg: 10*.3 + 16*.7,
		},
		{
			name:    "resit worse",
			grades:  []RawGrade{raw("CN_PC_PSE_CC", 10), raw("CN_PC_PSE_EXA_1", 12), raw("CN_PC_PSE_EXF_1", 6)},
			wantAvg: 10*.3 + 12*.7,
		},
		{
			name:    "resit alone",
			grades:  []RawGrade{raw("CN_PC_PSE_CC", 10), raw("CN_PC_PSE_EXF_1", 16)},
			wantAvg: (10*.3 + 16) / 1.3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subj := findSubject(t, aggregate(tt.grades...), "CN_Programmation système")
			require.Len(t, subj.Grades, 2)
			assert.InDelta(t, tt.wantAvg, subj.StudentAverage.Value, 1e-9)
		})
	}
}

func TestAggregate_unmatchedComponent(t *testing.T) {
	pg := aggregate(raw("CN_PC_PSE_TP_1", 9))
	subj := findSubject(t, pg, "CN_Programmation système")
	require.Len(t, subj.Grades, 1)
	assert.Equal(t, prefix+"CN_PC_PSE_TP_1", subj.Grades[0].Description)
	assert.Equal(t, 1.0, subj.Grades[0].Coefficient)
}

func TestAggregate_zeroCoefficients(t *testing.T) {
	syllabi := []syllabus.Syllabus{{
		ID: "z", Name: prefix + "CN_Z", Coeff: floatPtr(0),
		Exams: []syllabus.ExamComponent{{Type: "EXA", Weighting: 0}},
	}}
	pg := Aggregate(MatchAll([]RawGrade{raw("CN_Z_EXA", 18)}, syllabi), Options{})
	require.Len(t, pg.Subjects, 1)
	assert.Equal(t, 0.0, pg.Subjects[0].StudentAverage.Value)
	assert.Equal(t, 0.0, pg.Modules[0].StudentAverage.Value)
	assert.False(t, pg.Modules[0].IsValidationOnly)
}

func TestAggregate_doesNotMutateInput(t *testing.T) {
	grades := MatchAll([]RawGrade{raw("MIA_IGM_EXA_1", 10), raw("MIA_IGM_EXF_1", 14)}, catalog())
	before := append([]Grade(nil), grades...)
	_ = Aggregate(grades, Options{})
	assert.Equal(t, before, grades)
}

func TestCompute(t *testing.T) {
	_, err := Compute(nil, catalog(), 0, Options{})
	assert.Equal(t, ErrNoGrades, err)

	s4 := RawGrade{Code: "x", Name: "2526_B_CYBER_S04_MIA_IGM_TP", Grade: 4}
	pg, err := Compute([]RawGrade{raw("MIA_IGM_EXA", 16), s4}, catalog(), 3, Options{})
	require.NoError(t, err)
	require.Len(t, pg.Subjects, 1)
	assert.InDelta(t, 16, pg.StudentOverall.Value, 1e-9)

	// canonical codes ignore the semester: both grades land in the same subject
	pg, err = Compute([]RawGrade{raw("MIA_IGM_EXA", 16), s4}, catalog(), 0, Options{})
	require.NoError(t, err)
	require.Len(t, pg.Subjects, 1)
	assert.Len(t, pg.Subjects[0].Grades, 2)
	assert.InDelta(t, 10, pg.StudentOverall.Value, 1e-9)
}

func TestGrade_JSON(t *testing.T) {
	pg := aggregate(raw("CN_PC_PSE_CC", 10), raw("ST_STAGE_RAP", 0, "NV"))
	data, err := json.Marshal(pg)
	require.NoError(t, err)

	var decoded PeriodGrades
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Subjects, 2)
	assert.Equal(t, Score(10), decoded.Subjects[0].Grades[0].Mark)
	assert.Equal(t, NotValidated, decoded.Subjects[1].Grades[0].Mark)
	assert.Equal(t, pg.Subjects[0].StudentAverage, decoded.Subjects[0].StudentAverage)
}

func TestAggregate_idempotent(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	properties := gopter.NewProperties(params)

	names := []string{
		"CN_PC_PSE_CC", "CN_PC_PSE_EXA", "CN_PC_PSE_EXF", "CN_WEB_PRJ_1", "CN_WEB_PRJ_2",
		"MIA_IGM_EXA_1", "MIA_IGM_EXF_1", "ST_STAGE_RAP", "XX_UNKNOWN_TP_1",
	}
	genGrade := gopter.CombineGens(
		gen.IntRange(0, len(names)-1),
		gen.Float64Range(0, 20),
		gen.OneConstOf("", "VA", "NV"),
	).Map(func(vals []interface{}) RawGrade {
		return raw(names[vals[0].(int)], vals[1].(float64), vals[2].(string))
	})

	properties.Property("same input, same output", prop.ForAll(
		func(rgs []RawGrade) bool {
			first, _ := json.Marshal(Aggregate(MatchAll(rgs, catalog()), Options{}))
			second, _ := json.Marshal(Aggregate(MatchAll(rgs, catalog()), Options{}))
			return string(first) == string(second)
		},
		gen.SliceOf(genGrade),
	))

	properties.Property("averages stay within the scale", prop.ForAll(
		func(rgs []RawGrade) string {
			pg := Aggregate(MatchAll(rgs, catalog()), Options{})
			check := func(what string, a Average) string {
				if a.Value < 0 || a.Value > a.OutOf+1e-9 {
					return fmt.Sprintf("%s average %v out of [0, %v]", what, a.Value, a.OutOf)
				}
				return ""
			}
			for _, s := range pg.Subjects {
				if msg := check(s.ID, s.StudentAverage); msg != "" {
					return msg
				}
			}
			for _, m := range pg.Modules {
				if msg := check(m.ID, m.StudentAverage); msg != "" {
					return msg
				}
			}
			return check("overall", pg.StudentOverall)
		},
		gen.SliceOf(genGrade),
	))

	properties.TestingRun(t)
}
