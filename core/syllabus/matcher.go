package syllabus

import "github.com/trezcool/releve/core/code"

// Catalog indexes syllabi by canonical code, keeping catalog order.
type Catalog struct {
	entries   []Syllabus
	codes     []string
	examTypes map[string]bool
}

func NewCatalog(syllabi []Syllabus) *Catalog {
	cat := &Catalog{
		entries:   syllabi,
		codes:     make([]string, len(syllabi)),
		examTypes: make(map[string]bool),
	}
	for i, s := range syllabi {
		cat.codes[i] = s.Code()
		for _, ec := range s.Exams {
			cat.examTypes[ec.Type] = true
		}
	}
	return cat
}

func (cat *Catalog) Len() int { return len(cat.entries) }

// IsExamType reports whether some syllabus of the catalog has a component of type `t`.
func (cat *Catalog) IsExamType(t string) bool { return cat.examTypes[t] }

// Match returns the first syllabus, in catalog order, whose canonical code equals the
// grade's canonical code or is an `_`-bounded prefix of it. It returns nil when none does.
func (cat *Catalog) Match(gradeCode string) *Syllabus {
	c := code.ExtractSubjectCode(gradeCode)
	for i, sc := range cat.codes {
		if code.HasPrefix(c, sc) {
			return &cat.entries[i]
		}
	}
	return nil
}

// Match is Catalog.Match over a one-off catalog.
func Match(gradeCode string, syllabi []Syllabus) *Syllabus {
	return NewCatalog(syllabi).Match(gradeCode)
}

// MatchExamComponent returns the component of `s` the grade was given for.
// The exam part following the syllabus code (eg. "EXA_1") must name the component type;
// the index must match too unless `s` has a single component of that type.
// The first matching component wins. It returns nil when none matches.
func MatchExamComponent(gradeCode string, s *Syllabus) *ExamComponent {
	if s == nil {
		return nil
	}
	examType, examIndex := code.ParseExamPart(code.ExamPart(code.ExtractSubjectCode(gradeCode), s.Code()))
	if examType == "" {
		return nil
	}

	single := s.CountExams(examType) == 1
	for i, ec := range s.Exams {
		if ec.Type != examType {
			continue
		}
		if single || sameIndex(ec.Index, examIndex) {
			return &s.Exams[i]
		}
	}
	return nil
}

func sameIndex(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
