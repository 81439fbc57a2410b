package syllabus

import (
	"strings"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/code"
)

// ExamComponent is one graded assessment of a Syllabus.
type ExamComponent struct {
	Type        string  `json:"type" validate:"required,alphanum"` // eg. EXA, EXF, CC
	Index       *int    `json:"index,omitempty"`                   // disambiguates several components of the same Type
	Weighting   float64 `json:"weighting" validate:"min=0,max=100"`
	Description string  `json:"description"`
	TypeName    string  `json:"type_name"`
}

// Coefficient returns the weighting as a ratio (40 -> .4).
func (ec ExamComponent) Coefficient() float64 {
	return ec.Weighting / 100
}

func (ec ExamComponent) Label() string {
	if ec.Description != "" {
		return ec.Description
	}
	return ec.TypeName
}

type Caption struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Syllabus is the catalog definition of a course.
type Syllabus struct {
	ID         string          `json:"id" validate:"required"`
	Name       string          `json:"name" validate:"required,alphanum_"` // raw code, no exam suffix
	UE         string          `json:"ue"`
	Semester   int             `json:"semester" validate:"min=0"`
	Coeff      *float64        `json:"coeff,omitempty" validate:"omitempty,min=0"` // weight within the UE
	Duration   int             `json:"duration" validate:"min=0"`                  // hours
	Caption    Caption         `json:"caption"`
	Exams      []ExamComponent `json:"exams" validate:"dive"`
	Activities []string        `json:"activities"`
}

// Code returns the canonical subject code.
func (s Syllabus) Code() string {
	return code.ExtractSubjectCode(s.Name)
}

// UECode returns the declared UE, or the one encoded in the canonical code.
func (s Syllabus) UECode() string {
	if ue := core.CleanString(s.UE); ue != "" {
		return ue
	}
	return code.UE(s.Code())
}

// Coefficient returns the declared UE weight, 1 when absent.
func (s Syllabus) Coefficient() float64 {
	if s.Coeff == nil {
		return 1
	}
	return *s.Coeff
}

func (s Syllabus) DisplayName() string {
	if name := core.CleanString(s.Caption.Name); name != "" {
		return name
	}
	return s.Code()
}

// CountExams returns the number of components of the given type.
func (s Syllabus) CountExams(examType string) int {
	var n int
	for _, ec := range s.Exams {
		if ec.Type == examType {
			n++
		}
	}
	return n
}

func (s *Syllabus) Validate() error {
	s.ID = core.CleanString(s.ID)
	s.Name = core.CleanString(s.Name)
	s.UE = strings.ToUpper(core.CleanString(s.UE))
	for i := range s.Exams {
		s.Exams[i].Type = strings.ToUpper(core.CleanString(s.Exams[i].Type))
	}
	return core.Validate.Struct(s)
}

type QueryFilter struct {
	Semester int    `query:"semester" json:"semester" validate:"min=0,max=20"`
	UE       string `query:"ue" json:"ue"`
	Search   string `query:"search" json:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.UE = strings.ToUpper(core.CleanString(qf.UE))
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.Semester == 0 && qf.UE == "" && qf.Search == ""
}

// Keep reports whether `s` satisfies the filter.
func (qf QueryFilter) Keep(s Syllabus) bool {
	if qf.Semester != 0 && s.Semester != qf.Semester {
		return false
	}
	if qf.UE != "" && s.UECode() != qf.UE {
		return false
	}
	if qf.Search != "" &&
		!strings.Contains(strings.ToLower(s.Name), qf.Search) &&
		!strings.Contains(strings.ToLower(s.Caption.Name), qf.Search) {
		return false
	}
	return true
}
