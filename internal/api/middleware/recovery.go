package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
)

// Recovery returns Echo middleware that converts a handler panic into a 500
// *echo.HTTPError, leaving the response body to the server's error handler.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				cause, ok := r.(error)
				if !ok {
					cause = fmt.Errorf("%v", r)
				}

				log.Error("handler panicked",
					"error", cause,
					"method", c.Request().Method,
					"route", c.Path(),
					"path", c.Request().URL.Path,
					"request_id", RequestID(c),
					"stack", string(debug.Stack()),
				)

				err = echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").
					SetInternal(cause)
			}()
			return next(c)
		}
	}
}
