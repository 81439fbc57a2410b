package absence

import (
	"time"

	"github.com/trezcool/releve/core"
)

// DefaultSlotDuration applies to raw records without an end date.
const DefaultSlotDuration = 90 * time.Minute

// RawAbsence is one missed slot as reported by the attendance portal.
type RawAbsence struct {
	SlotID        string    `json:"slot_id" validate:"required"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date,omitempty"` // zero when unknown
	SubjectName   string    `json:"subject_name"`
	Justificatory string    `json:"justificatory"` // empty when unjustified
	Mandatory     bool      `json:"mandatory"`
}

func (ra RawAbsence) IsJustified() bool {
	return core.CleanString(ra.Justificatory) != ""
}

func (ra *RawAbsence) Validate() error {
	ra.SlotID = core.CleanString(ra.SlotID)
	ra.SubjectName = core.CleanString(ra.SubjectName)
	ra.Justificatory = core.CleanString(ra.Justificatory)
	return core.Validate.Struct(ra)
}

// Absence is a run of contiguous missed slots of the same subject, day and justification.
type Absence struct {
	ID          string    `json:"id"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	TimeMissed  int       `json:"time_missed"` // minutes
	Justified   bool      `json:"justified"`
	Reason      string    `json:"reason"`
	SubjectName string    `json:"subject_name"`
	Mandatory   bool      `json:"mandatory"`
	Slots       int       `json:"slots"`
}

type Summary struct {
	Count       int `json:"count"`
	TimeMissed  int `json:"time_missed"`
	Justified   int `json:"justified"`   // minutes
	Unjustified int `json:"unjustified"` // minutes
	Mandatory   int `json:"mandatory"`   // absences with a mandatory slot
}

type QueryFilter struct {
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

func (qf QueryFilter) IsEmpty() bool {
	return qf.From.IsZero() && qf.To.IsZero()
}

// Keep reports whether a record starting at `start` is within the filter bounds (inclusive).
func (qf QueryFilter) Keep(start time.Time) bool {
	if !qf.From.IsZero() && start.Before(qf.From) {
		return false
	}
	if !qf.To.IsZero() && start.After(qf.To) {
		return false
	}
	return true
}
