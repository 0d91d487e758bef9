package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/enrollment"
)

type courseApi struct {
	conf     core.CatalogConfig
	svc      *course.Service
	enrSvc   *enrollment.Service
	validate *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf core.CatalogConfig,
	svc *course.Service,
	enrSvc *enrollment.Service,
	validate *validator.Validate,
) {
	api := courseApi{
		conf:     conf,
		svc:      svc,
		enrSvc:   enrSvc,
		validate: validate,
	}

	cg := g.Group("/courses")

	// un-authed endpoints
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)

	// authed endpoints
	cg.GET("/:id/enrollment", api.checkEnrollment, jwt)
	cg.POST("/:id/enroll", api.enroll, jwt)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	filter, err := bindQueryFilter(ctx, api.validate, api.conf.DefaultLimit)
	if err != nil {
		return err
	}

	page, err := api.svc.Query(ctx.Request().Context(), contextSession(ctx), filter)
	degraded, err := degradedList(err)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}

	view := newCatalogView(page, api.conf.MaxVisiblePages, filter.Search != "")
	view.LimitChoices = course.LimitChoices
	view.setDegraded(degraded)
	return ctx.JSON(http.StatusOK, view)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByID(ctx.Request().Context(), contextSession(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, newCourseDetail(crs))
}

func (api *courseApi) checkEnrollment(ctx echo.Context) error {
	res, err := api.enrSvc.Check(ctx.Request().Context(), contextSession(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	data.BatchID = core.CleanString(data.BatchID)

	enr, err := api.enrSvc.Enroll(ctx.Request().Context(), contextSession(ctx), ctx.Param("id"), data.BatchID)
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

type EnrollRequest struct {
	// BatchID may be left empty for courses with a single batch.
	BatchID string `json:"batch_id"`
}
