package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/releve/core/absence"
)

type (
	absenceApi struct {
		svc AbsenceService
	}

	absencesResponse struct {
		Absences []absence.Absence `json:"absences"`
		Summary  absence.Summary   `json:"summary"`
	}
)

func registerAbsenceAPI(g *echo.Group, svc AbsenceService) {
	api := absenceApi{svc: svc}
	g.GET("/students/:id/absences", api.query)
}

func (api *absenceApi) query(ctx echo.Context) error {
	var q absencesQuery
	if err := q.Bind(ctx); err != nil {
		return err
	}

	absences, err := api.svc.Absences(ctx.Request().Context(), ctx.Param("id"), q.QueryFilter)
	if err != nil {
		return errors.Wrap(err, "querying absences")
	}
	return ctx.JSON(http.StatusOK, absencesResponse{Absences: absences, Summary: absence.Summarize(absences)})
}
