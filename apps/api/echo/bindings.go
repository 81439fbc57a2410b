package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/absence"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

type (
	gradesQuery struct {
		Semester int `query:"semester" json:"semester" validate:"min=0,max=20"`
	}

	absencesQuery struct {
		absence.QueryFilter
	}
)

// Bind reads `from` and `to` as RFC 3339 timestamps or plain dates. A plain `to` date is inclusive.
func (q *absencesQuery) Bind(ctx echo.Context) error {
	var flds []core.FieldError
	for _, p := range []struct {
		name string
		dest *time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		val := core.CleanString(ctx.QueryParam(p.name))
		if val == "" {
			continue
		}
		t, dateOnly, ok := parseDate(val)
		if !ok {
			flds = append(flds, core.FieldError{Field: p.name, Error: "invalid date; expected YYYY-MM-DD or RFC 3339"})
			continue
		}
		if dateOnly && p.name == "to" {
			t = t.Add(24*time.Hour - time.Nanosecond) // whole day
		}
		*p.dest = t
	}
	if flds != nil {
		return core.NewValidationError(errors.New("invalid query"), flds...)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return core.NewValidationError(errors.New("invalid query"), core.FieldError{Field: "to", Error: "must not be before from"})
	}
	return nil
}

// parseDate reports whether `val` is a plain date, without time of day.
func parseDate(val string) (t time.Time, dateOnly bool, ok bool) {
	for i, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t, i > 0, true
		}
	}
	return time.Time{}, false, false
}
