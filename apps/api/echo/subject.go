package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core/subject"
)

type subjectApi struct {
	svc *subject.Service
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *subject.Service) {
	api := subjectApi{svc: svc}
	admin := []echo.MiddlewareFunc{jwt, adminMiddleware()}

	g.GET("/subjects", api.query)
	g.GET("/subjects/:id", api.retrieve)
	g.POST("/subjects", api.create, admin...)
	g.POST("/subjects/init", api.initDefaults, admin...)
	g.PUT("/subjects/:id", api.update, admin...)
	g.DELETE("/subjects/:id", api.destroy, admin...)

	g.GET("/lessons", api.queryLessons)
	g.GET("/lessons/by-subject", api.lessonsBySubject)
	g.GET("/lessons/:id", api.retrieveLesson)
	g.POST("/lessons", api.createLesson, admin...)
	g.PUT("/lessons/:id", api.updateLesson, admin...)
	g.DELETE("/lessons/:id", api.destroyLesson, admin...)
}

func (api *subjectApi) query(ctx echo.Context) error {
	subjects, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	subj, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	subj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *subjectApi) initDefaults(ctx echo.Context) error {
	subjects, err := api.svc.InitDefaults(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "initializing subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) update(ctx echo.Context) error {
	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	subj, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Lessons

func (api *subjectApi) queryLessons(ctx echo.Context) error {
	filter := subject.LessonFilter{SubjectID: ctx.QueryParam("subject"), ActiveOnly: true}
	lessons, err := api.svc.ListLessons(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing lessons")
	}
	if lessons == nil {
		lessons = []subject.Lesson{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *subjectApi) lessonsBySubject(ctx echo.Context) error {
	grouped, err := api.svc.LessonsBySubject(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "grouping lessons")
	}
	return ctx.JSON(http.StatusOK, grouped)
}

func (api *subjectApi) retrieveLesson(ctx echo.Context) error {
	lsn, err := api.svc.GetLesson(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *subjectApi) createLesson(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data subject.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	lsn, err := api.svc.CreateLesson(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *subjectApi) updateLesson(ctx echo.Context) error {
	var data subject.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	lsn, err := api.svc.UpdateLesson(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *subjectApi) destroyLesson(ctx echo.Context) error {
	if err := api.svc.DeleteLesson(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}
