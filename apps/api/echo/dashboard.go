package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/enrollment"
)

type dashboardApi struct {
	conf      core.CatalogConfig
	courseSvc *course.Service
	svc       *enrollment.Service
}

func registerDashboardAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf core.CatalogConfig,
	courseSvc *course.Service,
	svc *enrollment.Service,
) {
	api := dashboardApi{
		conf:      conf,
		courseSvc: courseSvc,
		svc:       svc,
	}

	dg := g.Group("/dashboard", jwt)
	dg.GET("", api.home)
	dg.GET("/courses", api.myCourses)

	// :id is the enrollment ID
	dg.GET("/courses/:id", api.contents)
	dg.POST("/courses/:id/modules/:moduleId/complete", api.completeModule)
	dg.DELETE("/courses/:id", api.unenroll)
}

// Handlers

func (api *dashboardApi) home(ctx echo.Context) error {
	reqCtx, session := ctx.Request().Context(), contextSession(ctx)

	enrs, err := api.svc.Mine(reqCtx, session)
	badEnrs, err := degradedList(err)
	if err != nil {
		return errors.Wrap(err, "querying my enrollments")
	}
	newest, err := api.courseSvc.Newest(reqCtx, session, api.conf.DashboardLimit)
	badNewest, err := degradedList(err)
	if err != nil {
		return errors.Wrap(err, "querying newest courses")
	}

	view := newDashboardView(enrs.Items, newest.Items)
	view.Degraded = badEnrs || badNewest
	return ctx.JSON(http.StatusOK, view)
}

func (api *dashboardApi) myCourses(ctx echo.Context) error {
	enrs, err := api.svc.Mine(ctx.Request().Context(), contextSession(ctx))
	degraded, err := degradedList(err)
	if err != nil {
		return errors.Wrap(err, "querying my enrollments")
	}
	search := core.CleanString(ctx.QueryParam("search"))
	status := core.CleanString(ctx.QueryParam("status"), true /* lower */)

	view := newMyCoursesView(enrs.Items, search, status)
	if degraded {
		view.Degraded = true
		view.Empty = &EmptyState{Title: "Your courses could not be loaded", Hint: "Please try again later"}
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *dashboardApi) contents(ctx echo.Context) error {
	contents, err := api.svc.Contents(ctx.Request().Context(), contextSession(ctx), ctx.Param("id"), ctx.QueryParam("module"))
	if err != nil {
		return errors.Wrap(err, "getting course contents")
	}
	return ctx.JSON(http.StatusOK, contents)
}

func (api *dashboardApi) completeModule(ctx echo.Context) error {
	enr, err := api.svc.CompleteModule(ctx.Request().Context(), contextSession(ctx), ctx.Param("id"), ctx.Param("moduleId"))
	if err != nil {
		return errors.Wrap(err, "completing module")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *dashboardApi) unenroll(ctx echo.Context) error {
	if err := api.svc.Unenroll(ctx.Request().Context(), contextSession(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "unenrolling")
	}
	return ctx.NoContent(http.StatusNoContent)
}
