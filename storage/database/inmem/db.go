package inmemdb

import (
	"sync"

	"github.com/trezcool/releve/core/absence"
	"github.com/trezcool/releve/core/grade"
	"github.com/trezcool/releve/core/syllabus"
)

type (
	// DB is a process-local store, used by tests and the demo server.
	DB struct {
		grade    *gradeTable
		syllabus *syllabusTable
		absence  *absenceTable
	}

	gradeTable struct {
		table map[string][]grade.RawGrade // by student
		mutex sync.RWMutex
	}

	syllabusTable struct {
		table map[string]*syllabus.Syllabus
		order []string // catalog order
		mutex sync.RWMutex
	}

	absenceTable struct {
		table map[string][]absence.RawAbsence // by student
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		grade:    &gradeTable{table: make(map[string][]grade.RawGrade)},
		syllabus: &syllabusTable{table: make(map[string]*syllabus.Syllabus)},
		absence:  &absenceTable{table: make(map[string][]absence.RawAbsence)},
	}
}
