package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/syllabus"
)

type syllabusApi struct {
	svc SyllabusService
}

func registerSyllabusAPI(g *echo.Group, svc SyllabusService) {
	api := syllabusApi{svc: svc}

	sg := g.Group("/syllabi")
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
}

func (api *syllabusApi) query(ctx echo.Context) error {
	var filter syllabus.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to syllabus.QueryFilter")
	}
	if err := core.Validate.Struct(filter); err != nil {
		return err
	}

	syllabi, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying syllabi")
	}
	return ctx.JSON(http.StatusOK, syllabi)
}

func (api *syllabusApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting syllabus")
	}
	return ctx.JSON(http.StatusOK, s)
}
