package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/course"
	"github.com/trezcool/masomo-storefront/core/enrollment"
	"github.com/trezcool/masomo-storefront/core/user"
	backendsvc "github.com/trezcool/masomo-storefront/services/backend"
)

var (
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errSessionExpired   = echo.NewHTTPError(http.StatusUnauthorized, "session expired, please log in again")
	errRefreshExpired   = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")
	errBackendUnhealthy = echo.NewHTTPError(http.StatusBadGateway, "the course service is unavailable, please try again later")
)

// httpError translates the domain & backend errors into the HTTP errors the clients see.
// It returns nil for errors it does not know.
func httpError(err error) error {
	switch cause := errors.Cause(err); cause {
	case course.ErrNotFound, enrollment.ErrNotFound:
		return echo.NewHTTPError(http.StatusNotFound, cause.Error())
	case enrollment.ErrAlreadyEnrolled:
		return echo.NewHTTPError(http.StatusConflict, cause.Error())
	case enrollment.ErrBatchRequired, enrollment.ErrUnknownBatch:
		return core.NewValidationError(nil, core.FieldError{Field: "batch_id", Error: cause.Error()})
	case user.ErrEmailExists:
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: cause.Error()})
	case user.ErrInvalidCredentials, course.ErrNoChanges:
		return core.NewValidationError(cause)
	}

	var berr *backendsvc.Error
	if errors.As(err, &berr) {
		switch {
		case berr.StatusCode == http.StatusUnauthorized:
			return errSessionExpired
		case berr.StatusCode == http.StatusForbidden:
			return errHttpForbidden
		case berr.StatusCode == http.StatusNotFound:
			return errHttpNotFound
		case berr.StatusCode < http.StatusInternalServerError:
			msg := berr.Message
			if msg == "" {
				msg = http.StatusText(berr.StatusCode)
			}
			return echo.NewHTTPError(berr.StatusCode, msg)
		}
	}
	return nil
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(translator ut.Translator, logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		if herr := httpError(err); herr != nil {
			err = herr
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr = claims.User()
			}

			var (
				berr *backendsvc.Error
				uerr *backendsvc.UnreachableError
			)
			if errors.As(err, &berr) || errors.As(err, &uerr) {
				code = errBackendUnhealthy.Code
				message = errBackendUnhealthy.Message
				logger.Error("backend call failed", err, map[string]interface{}{"path": ctx.Path()}, usr)
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
