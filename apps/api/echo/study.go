package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/report"
	"github.com/shanmukhasaireddy13/study-tracker/core/study"
	"github.com/shanmukhasaireddy13/study-tracker/core/tracking"
)

type studyApi struct {
	svc      *tracking.Service
	reports  *report.Service
	validate *validator.Validate
	clock    core.Clock
}

func registerStudyAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *tracking.Service,
	reports *report.Service,
	validate *validator.Validate,
	clock core.Clock,
) {
	api := studyApi{svc: svc, reports: reports, validate: validate, clock: clock}

	sg := g.Group("/study", jwt, studentMiddleware())
	sg.POST("", api.record)
	sg.GET("", api.list)
	sg.GET("/stats", api.stats)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func (api *studyApi) record(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data study.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}

	res, err := api.svc.RecordActivity(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "recording activity")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *studyApi) list(ctx echo.Context) error {
	studentID, err := targetStudent(ctx)
	if err != nil {
		return err
	}
	var filter study.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}
	filter.Clean()
	if err := api.validate.Struct(filter); err != nil {
		return err
	}

	acts, err := api.svc.Activities().List(studentID, filter).All(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing activities")
	}
	if acts == nil {
		acts = []study.Activity{}
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *studyApi) stats(ctx echo.Context) error {
	studentID, err := targetStudent(ctx)
	if err != nil {
		return err
	}
	q := report.StatsQuery{Period: core.CleanString(ctx.QueryParam("period"), true /* lower */)}

	stats, err := api.reports.Stats(ctx.Request().Context(), studentID, q, api.clock.Now())
	if err != nil {
		return errors.Wrap(err, "computing study stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// owner is the student whose activities the caller may touch; admins may touch all of them.
func owner(claims Claims) string {
	if claims.IsAdmin {
		return ""
	}
	return claims.Subject
}

func (api *studyApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	act, err := api.svc.Activities().Get(ctx.Request().Context(), ctx.Param("id"), owner(claims))
	if err != nil {
		return errors.Wrap(err, "getting activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *studyApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data study.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}

	res, err := api.svc.UpdateActivity(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studyApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.DeleteActivity(ctx.Request().Context(), ctx.Param("id"), claims.Subject, claims.IsAdmin)
	if err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.JSON(http.StatusOK, res)
}
