package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/releve/core/absence"
	"github.com/trezcool/releve/core/grade"
	"github.com/trezcool/releve/core/syllabus"
)

// Logger records log entries instead of reporting them.
type Logger struct {
	mu      sync.Mutex
	Entries []string // "<LEVEL> <msg>"
}

func (l *Logger) Enable(bool) {}

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, level+" "+msg)
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

// Catalog returns a small third-semester bachelor catalog.
//
//	MIA_IGM   coeff 2, CC 1 (40%) + EXA (60%)
//	CO_ANG    coeff 1, EXA (100%)
//	ST_STAGE  validation only
func Catalog() []syllabus.Syllabus {
	return []syllabus.Syllabus{
		{
			ID: "s-igm", Name: "2526_B_CYBER_S03_MIA_IGM", UE: "MIA", Semester: 3, Coeff: floatPtr(2), Duration: 40,
			Caption: syllabus.Caption{Name: "Maths for security"},
			Exams: []syllabus.ExamComponent{
				{Type: "CC", Index: intPtr(1), Weighting: 40, Description: "Quiz", TypeName: "Contrôle continu"},
				{Type: "EXA", Weighting: 60, Description: "Final exam", TypeName: "Examen"},
			},
			Activities: []string{"TD", "TP"},
		},
		{
			ID: "s-ang", Name: "2526_B_CYBER_S03_CO_ANG", UE: "CO", Semester: 3, Duration: 20,
			Caption: syllabus.Caption{Name: "English"},
			Exams:   []syllabus.ExamComponent{{Type: "EXA", Weighting: 100, TypeName: "Examen"}},
		},
		{
			ID: "s-stage", Name: "2526_B_CYBER_S03_ST_STAGE", UE: "ST", Semester: 3,
			Caption: syllabus.Caption{Name: "Internship"},
			Exams:   []syllabus.ExamComponent{{Type: "EXA", Weighting: 100, TypeName: "Soutenance"}},
		},
	}
}

// RawGrades returns grades matching Catalog: IGM 12 (CC) + 15 (EXA), ANG 14 then a 16 make-up, STAGE validated.
func RawGrades(syncedAt time.Time) []grade.RawGrade {
	mk := func(i int, name string, score float64, alpha string) grade.RawGrade {
		return grade.RawGrade{Code: fmt.Sprintf("G%02d", i), Name: name, Semester: 3, Grade: score, AlphaMark: alpha, SyncedAt: syncedAt}
	}
	return []grade.RawGrade{
		mk(1, "2526_B_CYBER_S03_MIA_IGM_CC_1", 12, ""),
		mk(2, "2526_B_CYBER_S03_MIA_IGM_EXA", 15, ""),
		mk(3, "2526_B_CYBER_S03_CO_ANG_EXA", 14, ""),
		mk(4, "2526_B_CYBER_S03_CO_ANG_EXF", 16, ""),
		mk(5, "2526_B_CYBER_S03_ST_STAGE_EXA", 0, grade.AlphaValidated),
	}
}

func SeedSyllabi(t *testing.T, repo syllabus.Repository, syllabi []syllabus.Syllabus) {
	t.Helper()
	if err := repo.SaveSyllabi(context.Background(), syllabi); err != nil {
		t.Fatalf("SeedSyllabi() failed: %v", err)
	}
}

func SeedGrades(t *testing.T, repo grade.Repository, studentID string, grades []grade.RawGrade) {
	t.Helper()
	if err := repo.SaveGrades(context.Background(), studentID, grades); err != nil {
		t.Fatalf("SeedGrades() failed: %v", err)
	}
}

func SeedAbsences(t *testing.T, repo absence.Repository, studentID string, absences []absence.RawAbsence) {
	t.Helper()
	if err := repo.SaveAbsences(context.Background(), studentID, absences); err != nil {
		t.Fatalf("SeedAbsences() failed: %v", err)
	}
}
