package grade

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/releve/core/code"
	"github.com/trezcool/releve/core/syllabus"
)

// Suggestion pairs an unmatched grade with the most similar catalog code.
// It is a diagnostic aid; matching itself never uses similarity.
type Suggestion struct {
	Grade      RawGrade `json:"grade"`
	Code       string   `json:"code"` // canonical code of the grade, exam part cut off
	SyllabusID string   `json:"syllabus_id,omitempty"`
	Closest    string   `json:"closest,omitempty"`
	Ratio      float64  `json:"ratio"`
}

// Suggest returns a Suggestion for each unmatched grade, in input order.
func Suggest(unmatched []RawGrade, syllabi []syllabus.Syllabus) []Suggestion {
	codes := make([][]string, len(syllabi))
	for i, s := range syllabi {
		codes[i] = strings.Split(s.Code(), "")
	}

	cat := syllabus.NewCatalog(syllabi)
	out := make([]Suggestion, 0, len(unmatched))
	for _, rg := range unmatched {
		base, _ := code.SplitExamSuffix(code.ExtractSubjectCode(rg.Name), cat.IsExamType)
		sug := Suggestion{Grade: rg, Code: base}
		m := difflib.NewMatcher(strings.Split(base, ""), nil)
		for i, sc := range codes {
			m.SetSeq2(sc)
			if ratio := m.Ratio(); ratio > sug.Ratio {
				sug.Ratio = ratio
				sug.Closest = syllabi[i].Code()
				sug.SyllabusID = syllabi[i].ID
			}
		}
		out = append(out, sug)
	}
	return out
}
