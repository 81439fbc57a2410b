package grade

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/code"
)

// DefaultOutOf is the grading scale of the school portals.
const DefaultOutOf = 20

// alpha marks
const (
	AlphaValidated    = "VA"
	AlphaNotValidated = "NV"
)

// Mark is either a numeric Score or a pass/fail Validation.
type Mark interface {
	isMark()
	String() string
}

type Score float64

func (Score) isMark() {}

func (s Score) String() string { return strconv.FormatFloat(float64(s), 'f', -1, 64) }

type Validation uint8

const (
	Validated Validation = iota + 1
	NotValidated
)

func (Validation) isMark() {}

func (v Validation) String() string {
	if v == NotValidated {
		return AlphaNotValidated
	}
	return AlphaValidated
}

// ParseMark builds the Mark of a raw record: a recognized alpha mark wins over the score.
func ParseMark(score float64, alpha string) Mark {
	switch strings.ToUpper(core.CleanString(alpha)) {
	case AlphaValidated:
		return Validated
	case AlphaNotValidated:
		return NotValidated
	default:
		return Score(score)
	}
}

// value returns the numeric value used to compare marks; validations count as 0.
func value(m Mark) float64 {
	if s, ok := m.(Score); ok {
		return float64(s)
	}
	return 0
}

// RawGrade is one score as reported by the grading portal.
type RawGrade struct {
	Code      string    `json:"code" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Semester  int       `json:"semester" validate:"min=0"`
	Grade     float64   `json:"grade" validate:"min=0"`
	AlphaMark string    `json:"alpha_mark,omitempty" validate:"alphamark"`
	SyncedAt  time.Time `json:"synced_at"`
}

func (rg RawGrade) Mark() Mark { return ParseMark(rg.Grade, rg.AlphaMark) }

// SemesterNumber returns the declared semester, or the one encoded in the name.
func (rg RawGrade) SemesterNumber() int {
	if rg.Semester > 0 {
		return rg.Semester
	}
	return code.Semester(rg.Name)
}

func (rg *RawGrade) Validate() error {
	rg.Code = core.CleanString(rg.Code)
	rg.Name = core.CleanString(rg.Name)
	rg.AlphaMark = strings.ToUpper(core.CleanString(rg.AlphaMark))
	if err := core.Validate.Struct(rg); err != nil {
		return err
	}
	rg.Semester = rg.SemesterNumber()
	return nil
}

// Grade is a RawGrade resolved against the syllabus catalog.
type Grade struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Canonical   string    `json:"canonical"` // canonical item code, exam part included
	Semester    int       `json:"semester"`
	Mark        Mark      `json:"mark"`
	Coefficient float64   `json:"coefficient"`
	Description string    `json:"description"`
	ExamType    string    `json:"exam_type,omitempty"`
	ExamIndex   *int      `json:"exam_index,omitempty"`
	Date        time.Time `json:"date"`

	SyllabusID   string  `json:"syllabus_id,omitempty"`
	UE           string  `json:"ue"`
	SubjectCode  string  `json:"subject_code"`
	SubjectName  string  `json:"subject_name"`
	SubjectCoeff float64 `json:"subject_coeff"`
}

// SubjectKey identifies the Subject the grade belongs to.
func (g Grade) SubjectKey() string {
	return g.UE + "_" + g.SubjectName
}

func (g Grade) IsValidation() bool {
	_, ok := g.Mark.(Validation)
	return ok
}

type gradeAlias Grade

type gradeJSON struct {
	gradeAlias
	Mark      *float64 `json:"mark"`
	AlphaMark string   `json:"alpha_mark,omitempty"`
}

func (g Grade) MarshalJSON() ([]byte, error) {
	gj := gradeJSON{gradeAlias: gradeAlias(g)}
	switch m := g.Mark.(type) {
	case Score:
		v := float64(m)
		gj.Mark = &v
	case Validation:
		gj.AlphaMark = m.String()
	}
	return json.Marshal(gj)
}

func (g *Grade) UnmarshalJSON(data []byte) error {
	var gj gradeJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return errors.Wrap(err, "decoding grade")
	}
	*g = Grade(gj.gradeAlias)
	var score float64
	if gj.Mark != nil {
		score = *gj.Mark
	}
	g.Mark = ParseMark(score, gj.AlphaMark)
	return nil
}

type Average struct {
	Value float64 `json:"value"`
	OutOf float64 `json:"out_of"`
}

// Subject groups the effective grades of one course.
type Subject struct {
	ID               string  `json:"id"` // <UE>_<display name>
	Name             string  `json:"name"`
	Code             string  `json:"code"`
	UE               string  `json:"ue"`
	Coefficient      float64 `json:"coefficient"` // weight within the UE
	Grades           []Grade `json:"grades"`
	StudentAverage   Average `json:"student_average"` // 0 when IsValidationOnly
	IsValidationOnly bool    `json:"is_validation_only"`
	HasNonValidated  bool    `json:"has_non_validated"`
}

// Module groups the subjects of one UE.
type Module struct {
	ID               string     `json:"id"` // UE code
	Name             string     `json:"name"`
	Subjects         []*Subject `json:"subjects"`
	StudentAverage   Average    `json:"student_average"`
	IsValidationOnly bool       `json:"is_validation_only"`
	HasNonValidated  bool       `json:"has_non_validated"`
}

type PeriodGrades struct {
	StudentOverall Average   `json:"student_overall"`
	Subjects       []Subject `json:"subjects"`
	Modules        []Module  `json:"modules"`
	Stale          bool      `json:"stale,omitempty"` // served from cache after a failed refresh
}
