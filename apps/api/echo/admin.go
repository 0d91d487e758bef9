package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/user"
)

type adminApi struct {
	conf     core.CatalogConfig
	svc      *course.Service
	validate *validator.Validate
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf core.CatalogConfig,
	svc *course.Service,
	validate *validator.Validate,
) {
	api := adminApi{
		conf:     conf,
		svc:      svc,
		validate: validate,
	}

	ag := g.Group("/admin/courses", jwt, roleMiddleware(user.RoleAdmin))
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *adminApi) query(ctx echo.Context) error {
	filter, err := bindQueryFilter(ctx, api.validate, api.conf.AdminLimit)
	if err != nil {
		return err
	}
	page, err := api.svc.Query(ctx.Request().Context(), contextSession(ctx), filter)
	degraded, err := degradedList(err)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	view := newCatalogView(page, api.conf.MaxVisiblePages, filter.Search != "")
	view.setDegraded(degraded)
	return ctx.JSON(http.StatusOK, view)
}

func (api *adminApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), contextSession(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, newCourseDetail(crs))
}

func (api *adminApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), contextSession(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, newCourseDetail(crs))
}

func (api *adminApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), contextSession(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, newCourseDetail(crs))
}

func (api *adminApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextSession(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}
