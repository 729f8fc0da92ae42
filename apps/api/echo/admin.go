package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shanmukhasaireddy13/study-tracker/core"
	"github.com/shanmukhasaireddy13/study-tracker/core/report"
	"github.com/shanmukhasaireddy13/study-tracker/core/timezone"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type adminApi struct {
	reports *report.Service
	clock   core.Clock
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, reports *report.Service, clock core.Clock) {
	api := adminApi{reports: reports, clock: clock}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/students/performance", api.performance)
	ag.GET("/students/performance.xlsx", api.performanceXLSX)
	ag.GET("/students/:studentId/performance", api.studentPerformance)
}

func (api *adminApi) performance(ctx echo.Context) error {
	rep, err := api.reports.Performance(ctx.Request().Context(), api.clock.Now())
	if err != nil {
		return errors.Wrap(err, "building performance report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *adminApi) performanceXLSX(ctx echo.Context) error {
	now := api.clock.Now()
	rep, err := api.reports.Performance(ctx.Request().Context(), now)
	if err != nil {
		return errors.Wrap(err, "building performance report")
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rep); err != nil {
		return errors.Wrap(err, "writing xlsx")
	}
	filename := "performance-" + timezone.DayKey(now) + ".xlsx"
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (api *adminApi) studentPerformance(ctx echo.Context) error {
	detail, err := api.reports.StudentDetail(ctx.Request().Context(), ctx.Param("studentId"), api.clock.Now())
	if err != nil {
		return errors.Wrap(err, "building student performance")
	}
	return ctx.JSON(http.StatusOK, detail)
}
