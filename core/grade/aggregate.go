package grade

// Options tunes Aggregate. The zero value is usable.
type Options struct {
	Names ModuleNames // UE labels; codes are used when missing
	OutOf float64     // grading scale, DefaultOutOf when zero
}

func (o Options) outOf() float64 {
	if o.OutOf > 0 {
		return o.OutOf
	}
	return DefaultOutOf
}

// Aggregate groups matched grades into subjects and UE modules and computes
// their weighted averages. It does not modify `grades`.
//
//   - subject average: Σ(score×coefficient) / Σcoefficient over effective numeric grades
//   - module average:  Σ(subject average×subject coefficient) / Σsubject coefficient
//     over subjects that are not validation-only
//   - overall average: plain mean of the module averages of modules that are not validation-only
//
// Averages without any eligible input are 0.
func Aggregate(grades []Grade, opts Options) PeriodGrades {
	outOf := opts.outOf()
	pg := PeriodGrades{
		StudentOverall: Average{OutOf: outOf},
		Subjects:       make([]Subject, 0),
		Modules:        make([]Module, 0),
	}

	// partition by subject, in order of first appearance
	buckets := make(map[string]int)
	var grouped [][]Grade
	for _, g := range grades {
		key := g.SubjectKey()
		i, ok := buckets[key]
		if !ok {
			i = len(grouped)
			buckets[key] = i
			grouped = append(grouped, nil)
		}
		grouped[i] = append(grouped[i], g)
	}
	for _, gs := range grouped {
		pg.Subjects = append(pg.Subjects, newSubject(gs, outOf))
	}

	// group subjects by UE, in order of first appearance
	modIdx := make(map[string]int)
	for i := range pg.Subjects {
		subj := &pg.Subjects[i]
		j, ok := modIdx[subj.UE]
		if !ok {
			j = len(pg.Modules)
			modIdx[subj.UE] = j
			pg.Modules = append(pg.Modules, Module{
				ID:               subj.UE,
				Name:             opts.Names.Name(subj.UE),
				Subjects:         make([]*Subject, 0, 1),
				IsValidationOnly: true,
			})
		}
		pg.Modules[j].Subjects = append(pg.Modules[j].Subjects, subj)
	}

	var overall float64
	var counted int
	for j := range pg.Modules {
		mod := &pg.Modules[j]
		computeModule(mod, outOf)
		if !mod.IsValidationOnly {
			overall += mod.StudentAverage.Value
			counted++
		}
	}
	if counted > 0 {
		pg.StudentOverall.Value = overall / float64(counted)
	}
	return pg
}

func newSubject(grades []Grade, outOf float64) Subject {
	first := grades[0]
	subj := Subject{
		ID:             first.SubjectKey(),
		Name:           first.SubjectName,
		Code:           first.SubjectCode,
		UE:             first.UE,
		Coefficient:    first.SubjectCoeff,
		Grades:         effectiveGrades(grades),
		StudentAverage: Average{OutOf: outOf},
	}

	var sum, coeffs float64
	var numeric int
	for _, g := range subj.Grades {
		switch m := g.Mark.(type) {
		case Score:
			sum += float64(m) * g.Coefficient
			coeffs += g.Coefficient
			numeric++
		case Validation:
			if m == NotValidated {
				subj.HasNonValidated = true
			}
		}
	}
	subj.IsValidationOnly = len(subj.Grades) > 0 && numeric == 0
	if !subj.IsValidationOnly && coeffs > 0 {
		subj.StudentAverage.Value = sum / coeffs
	}
	return subj
}

func computeModule(mod *Module, outOf float64) {
	mod.StudentAverage = Average{OutOf: outOf}

	var sum, coeffs float64
	for _, subj := range mod.Subjects {
		if subj.HasNonValidated {
			mod.HasNonValidated = true
		}
		if subj.IsValidationOnly {
			continue
		}
		mod.IsValidationOnly = false
		sum += subj.StudentAverage.Value * subj.Coefficient
		coeffs += subj.Coefficient
	}
	if coeffs > 0 {
		mod.StudentAverage.Value = sum / coeffs
	}
}
