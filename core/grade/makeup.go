package grade

import "github.com/trezcool/releve/core/code"

// effectiveGrades resolves make-up exams: an exam (EXA) and its resit (EXF) for the same
// slot collapse into the one with the strictly higher score, the earlier one on ties.
// A winning resit counts with the coefficient of the exam it replaces.
// Other grades pass through untouched. Input order is kept.
func effectiveGrades(grades []Grade) []Grade {
	out := make([]Grade, 0, len(grades))
	slots := make(map[string]int)          // exam slot -> index in out
	examCoeffs := make(map[string]float64) // exam slot -> coefficient of its first EXA
	for _, g := range grades {
		slot, ok := code.ExamSlot(g.Canonical)
		if !ok {
			out = append(out, g)
			continue
		}
		if _, seen := examCoeffs[slot]; !seen && !code.IsResit(g.Canonical) {
			examCoeffs[slot] = g.Coefficient
		}
		if i, seen := slots[slot]; seen {
			if value(g.Mark) > value(out[i].Mark) {
				out[i] = g
			}
			continue
		}
		slots[slot] = len(out)
		out = append(out, g)
	}

	for slot, i := range slots {
		if coeff, ok := examCoeffs[slot]; ok && code.IsResit(out[i].Canonical) {
			out[i].Coefficient = coeff
		}
	}
	return out
}
