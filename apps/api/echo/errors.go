package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/permission"
	"github.com/trezcool/coursehub/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errTooManyRequests      = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")

	notFoundErrors = []error{
		user.ErrNotFound,
		course.ErrNotFound,
		course.ErrMaterialNotFound,
		course.ErrTestNotFound,
		enrollment.ErrNotFound,
		calendar.ErrNotFound,
		chat.ErrNotFound,
		grade.ErrNotFound,
	}
	forbiddenErrors = []error{
		permission.ErrForbidden,
		chat.ErrNotParticipant,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code int
			body echo.Map

			httpErr *echo.HTTPError
			valErrs validator.ValidationErrors
			appErr  *core.ValidationError
		)

		switch {
		case errors.As(err, &httpErr):
			if httpErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				body = echo.Map{"error": fmt.Sprint(httpErr.Message)}
				break
			}
			if httpErr.Internal != nil {
				if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
					httpErr = herr
				}
			}
			code = httpErr.Code
			body = echo.Map{"error": fmt.Sprint(httpErr.Message)}
		case errors.As(err, &valErrs):
			fldErrs := make(map[string]string, len(valErrs))
			for _, vErr := range valErrs {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			body = echo.Map{"error": core.ValidationFailedMsg, "fields": fldErrs}
		case errors.As(err, &appErr):
			code = http.StatusBadRequest
			body = echo.Map{"error": appErr.Error()}
			if fldErrs := appErr.FieldMap(); fldErrs != nil {
				body["fields"] = fldErrs
			}
		case isAny(err, notFoundErrors):
			code = http.StatusNotFound
			body = echo.Map{"error": errors.Cause(err).Error()}
		case isAny(err, forbiddenErrors):
			code = http.StatusForbidden
			body = echo.Map{"error": errors.Cause(err).Error()}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			body = echo.Map{"error": msg}

			if usr, uErr := getContextUser(ctx); uErr == nil {
				logger.Error(msg, errors.Wrap(err, msg), usr)
			} else {
				logger.Error(msg, errors.Wrap(err, msg))
			}
			if ctx.Echo().Debug {
				body["detail"] = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
