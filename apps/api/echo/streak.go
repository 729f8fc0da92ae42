package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core/tracking"
)

type streakApi struct {
	svc *tracking.Service
}

func registerStreakAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *tracking.Service) {
	api := streakApi{svc: svc}

	sg := g.Group("/streak", jwt, studentMiddleware())
	sg.GET("", api.retrieve)
	sg.POST("/refresh", api.refresh)
	sg.GET("/revision-plan", api.revisionPlan)
}

func (api *streakApi) retrieve(ctx echo.Context) error {
	studentID, err := targetStudent(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.Streak(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "getting streak")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *streakApi) refresh(ctx echo.Context) error {
	studentID, err := targetStudent(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.RefreshStreak(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "refreshing streak")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *streakApi) revisionPlan(ctx echo.Context) error {
	studentID, err := targetStudent(ctx)
	if err != nil {
		return err
	}
	ov, err := api.svc.Overview(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "planning revisions")
	}
	return ctx.JSON(http.StatusOK, ov)
}
