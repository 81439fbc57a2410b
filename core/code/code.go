// Package code canonicalizes the raw item identifiers published by the school portals.
//
// Raw names follow the `<year>_<section>_<track>_S<NN>_<UE>_<SUBJECT...>[_<TYPE>[_<INDEX>]]`
// convention (eg. "2526_B_CYBER_S03_CN_PC_PSE_EXA_1"). The part after the semester marker
// is the canonical subject code shared by grades, absences and syllabus entries.
package code

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	semesterRegex = regexp.MustCompile(`_S(\d{2})_`)
	bachelorRegex = regexp.MustCompile(`^\d{4}_B_`)
	examSlotRegex = regexp.MustCompile(`_(EXA|EXF)(_(\d+))?$`)
	examPartRegex = regexp.MustCompile(`_([A-Z]+)(?:_(\d+))?$`)
)

const (
	ExamType   = "EXA" // final exam
	ResitType  = "EXF" // make-up exam (rattrapage)
	separator  = "_"
	semesterAt = 1 // submatch index of the semester number
)

// ExtractSubjectCode returns everything after the `_S<NN>_` marker of `name`,
// or `name` unchanged when the marker is absent.
func ExtractSubjectCode(name string) string {
	loc := semesterRegex.FindStringIndex(name)
	if loc == nil {
		return name
	}
	return name[loc[1]:]
}

// Semester returns the semester number encoded in `name`, or 0.
func Semester(name string) int {
	m := semesterRegex.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[semesterAt])
	return n
}

// IsBachelorSection reports whether `name` starts with a 4-digit year followed by `_B_`.
func IsBachelorSection(name string) bool {
	return bachelorRegex.MatchString(name)
}

// UE returns the curriculum unit fragment of a canonical code (its first segment).
func UE(canonical string) string {
	if i := strings.Index(canonical, separator); i >= 0 {
		return canonical[:i]
	}
	return canonical
}

// HasPrefix reports whether canonical code `c` is `prefix` itself or one of its
// `_`-separated extensions. "CN_PC_PSE_EXA_1" extends "CN_PC_PSE" but not "CN_PC_PS".
func HasPrefix(c, prefix string) bool {
	return c == prefix || strings.HasPrefix(c, prefix+separator)
}

// ExamPart returns what follows `prefix` in canonical code `c` (eg. "EXA_1"), or "".
func ExamPart(c, prefix string) string {
	if !HasPrefix(c, prefix) || c == prefix {
		return ""
	}
	return c[len(prefix)+len(separator):]
}

// ParseExamPart splits an exam part into its type and optional index: "EXA_1" -> ("EXA", 1).
// A non-numeric second segment leaves the index unset.
func ParseExamPart(part string) (examType string, index *int) {
	if part == "" {
		return "", nil
	}
	parts := strings.SplitN(part, separator, 3)
	examType = parts[0]
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			index = &n
		}
	}
	return examType, index
}

// SplitExamSuffix cuts a trailing `_<TYPE>[_<INDEX>]` off a canonical code.
// An indexed suffix is always cut. An unindexed one is cut only for EXA, EXF and the
// types isExamType accepts, so "CN_PC_PSE" keeps its last segment. The base is never empty.
// It is only used for codes that matched no syllabus, where the exam part cannot be
// derived from a known prefix.
func SplitExamSuffix(c string, isExamType func(string) bool) (base, examPart string) {
	m := examPartRegex.FindStringSubmatchIndex(c)
	if m == nil || m[0] == 0 {
		return c, ""
	}
	if m[4] < 0 { // no `_<INDEX>`
		typ := c[m[2]:m[3]]
		if typ != ExamType && typ != ResitType && (isExamType == nil || !isExamType(typ)) {
			return c, ""
		}
	}
	return c[:m[0]], c[m[0]+len(separator):]
}

// ExamSlot returns the key shared by an exam and its make-up (EXF is folded onto EXA,
// the index is kept). ok is false for any other kind of grade.
func ExamSlot(c string) (slot string, ok bool) {
	m := examSlotRegex.FindStringSubmatchIndex(c)
	if m == nil {
		return "", false
	}
	slot = c[:m[0]] + separator + ExamType
	if m[4] >= 0 { // `_<n>` group matched
		slot += c[m[4]:m[5]]
	}
	return slot, true
}

// IsResit reports whether `c` designates a make-up exam.
func IsResit(c string) bool {
	m := examSlotRegex.FindStringSubmatch(c)
	return m != nil && m[1] == ResitType
}
