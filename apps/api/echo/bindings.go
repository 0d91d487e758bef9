package echoapi

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-storefront/core/course"
)

var orderingParam = "ordering"

// Ordering is the shorthand sort param of the catalog, eg. `ordering=-price` sorts by price, descending.
// Only the first field is used: the backend sorts on a single field.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord *Ordering) Bind(ctx echo.Context) bool {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return false
	}
	field := strings.TrimSpace(strings.Split(val, ",")[0])
	descending := strings.HasPrefix(field, "-")
	if descending {
		field = field[1:] // drop "-"
	}
	if field == "" {
		return false
	}
	ord.Field, ord.Ascending = field, !descending
	return true
}

func (ord Ordering) apply(filter *course.QueryFilter) {
	filter.SortBy = ord.Field
	filter.SortOrder = course.SortDesc
	if ord.Ascending {
		filter.SortOrder = course.SortAsc
	}
}

// bindQueryFilter binds, cleans & validates the catalog query.
// `tags` may be repeated or comma separated; `ordering` wins over sort_by/sort_order.
func bindQueryFilter(ctx echo.Context, validate *validator.Validate, defaultLimit int) (course.QueryFilter, error) {
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return filter, errors.Wrap(err, "binding to QueryFilter")
	}

	tags := make([]string, 0, len(filter.Tags))
	for _, t := range filter.Tags {
		tags = append(tags, strings.Split(t, ",")...)
	}
	filter.Tags = tags

	var ord Ordering
	if ord.Bind(ctx) {
		ord.apply(&filter)
	}

	filter.Clean(defaultLimit)
	if err := filter.Validate(validate); err != nil {
		return filter, err
	}
	return filter, nil
}
