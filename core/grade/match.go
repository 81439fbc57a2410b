package grade

import (
	"github.com/trezcool/releve/core/code"
	"github.com/trezcool/releve/core/syllabus"
)

// MatchAll resolves raw grades against the syllabus catalog, keeping their order.
// Unmatched grades keep their raw name as description and a coefficient of 1.
func MatchAll(raw []RawGrade, syllabi []syllabus.Syllabus) []Grade {
	cat := syllabus.NewCatalog(syllabi)
	grades := make([]Grade, 0, len(raw))
	for _, rg := range raw {
		grades = append(grades, resolve(rg, cat))
	}
	return grades
}

func resolve(rg RawGrade, cat *syllabus.Catalog) Grade {
	canonical := code.ExtractSubjectCode(rg.Name)
	g := Grade{
		Code:         rg.Code,
		Name:         rg.Name,
		Canonical:    canonical,
		Semester:     rg.SemesterNumber(),
		Mark:         rg.Mark(),
		Coefficient:  1,
		Description:  rg.Name,
		Date:         rg.SyncedAt,
		SubjectCoeff: 1,
	}

	s := cat.Match(rg.Name)
	if s == nil {
		base, part := code.SplitExamSuffix(canonical, cat.IsExamType)
		g.UE = code.UE(base)
		g.SubjectCode = base
		g.SubjectName = base
		g.ExamType, g.ExamIndex = code.ParseExamPart(part)
		return g
	}

	g.SyllabusID = s.ID
	g.UE = s.UECode()
	g.SubjectCode = s.Code()
	g.SubjectName = s.DisplayName()
	g.SubjectCoeff = s.Coefficient()
	g.ExamType, g.ExamIndex = code.ParseExamPart(code.ExamPart(canonical, g.SubjectCode))
	if ec := syllabus.MatchExamComponent(rg.Name, s); ec != nil {
		g.Coefficient = ec.Coefficient()
		if label := ec.Label(); label != "" {
			g.Description = label
		}
	}
	return g
}

// Unmatched returns the raw grades no syllabus of the catalog matches.
func Unmatched(raw []RawGrade, syllabi []syllabus.Syllabus) []RawGrade {
	cat := syllabus.NewCatalog(syllabi)
	var out []RawGrade
	for _, rg := range raw {
		if cat.Match(rg.Name) == nil {
			out = append(out, rg)
		}
	}
	return out
}
