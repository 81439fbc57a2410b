package absence

import (
	"sort"
	"time"
)

// Consolidate merges raw absences into display units, most recent first.
//
// Records are sorted by start (stably), then merged left to right: a record joins the
// current run when it has the same subject, the same justification status and starts on
// the same calendar day. A run ends at the latest end of its records and sums their time.
// `slotDuration` is the length of records without an end date (DefaultSlotDuration when <= 0).
// Calendar days are taken in `loc` when given, in the location of the run's first record otherwise.
func Consolidate(records []RawAbsence, slotDuration time.Duration, loc ...*time.Location) []Absence {
	if slotDuration <= 0 {
		slotDuration = DefaultSlotDuration
	}
	var dayLoc *time.Location
	if len(loc) > 0 {
		dayLoc = loc[0]
	}

	interim := make([]Absence, 0, len(records))
	for _, r := range records {
		interim = append(interim, newAbsence(r, slotDuration))
	}
	sort.SliceStable(interim, func(i, j int) bool { return interim[i].From.Before(interim[j].From) })

	out := make([]Absence, 0, len(interim))
	for i, next := range interim {
		if i > 0 {
			cur := &out[len(out)-1]
			if mergeable(*cur, next, dayLoc) {
				if next.To.After(cur.To) {
					cur.To = next.To
				}
				cur.TimeMissed += next.TimeMissed
				cur.Mandatory = cur.Mandatory || next.Mandatory
				cur.Slots++
				if cur.Reason == "" {
					cur.Reason = next.Reason
				}
				continue
			}
		}
		out = append(out, next)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].From.After(out[j].From) })
	return out
}

func newAbsence(r RawAbsence, slotDuration time.Duration) Absence {
	to := r.EndDate
	if to.IsZero() || to.Before(r.StartDate) {
		to = r.StartDate.Add(slotDuration)
	}
	return Absence{
		ID:          r.SlotID,
		From:        r.StartDate,
		To:          to,
		TimeMissed:  int(to.Sub(r.StartDate) / time.Minute),
		Justified:   r.IsJustified(),
		Reason:      r.Justificatory,
		SubjectName: r.SubjectName,
		Mandatory:   r.Mandatory,
		Slots:       1,
	}
}

func mergeable(cur, next Absence, loc *time.Location) bool {
	return cur.SubjectName == next.SubjectName &&
		cur.Justified == next.Justified &&
		sameDay(cur.From, next.From, loc)
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = a.Location()
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Summarize totals consolidated absences.
func Summarize(absences []Absence) Summary {
	var s Summary
	for _, a := range absences {
		s.Count++
		s.TimeMissed += a.TimeMissed
		if a.Justified {
			s.Justified += a.TimeMissed
		} else {
			s.Unjustified += a.TimeMissed
		}
		if a.Mandatory {
			s.Mandatory++
		}
	}
	return s
}
