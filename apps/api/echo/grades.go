package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/releve/core"
)

type gradeApi struct {
	svc GradeService
}

func registerGradeAPI(g *echo.Group, svc GradeService) {
	api := gradeApi{svc: svc}

	sg := g.Group("/students/:id/grades")
	sg.GET("", api.periodGrades)
	sg.GET("/unmatched", api.unmatched)
}

func (api *gradeApi) periodGrades(ctx echo.Context) error {
	var q gradesQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to gradesQuery")
	}
	if err := core.Validate.Struct(q); err != nil {
		return err
	}

	pg, err := api.svc.PeriodGrades(ctx.Request().Context(), ctx.Param("id"), q.Semester)
	if err != nil {
		return errors.Wrap(err, "computing period grades")
	}
	return ctx.JSON(http.StatusOK, pg)
}

func (api *gradeApi) unmatched(ctx echo.Context) error {
	suggestions, err := api.svc.Unmatched(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing unmatched grades")
	}
	return ctx.JSON(http.StatusOK, suggestions)
}
