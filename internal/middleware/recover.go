package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// PanicRecovery turns a handler panic into an error for the HTTP error
// handler, which answers with SYSTEM_001. The stack goes to the log only.
func PanicRecovery() echo.MiddlewareFunc {
	return echomw.RecoverWithConfig(echomw.RecoverConfig{
		StackSize: 8 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			slog.Error("panic recovered",
				"trace_id", traceIDOrUnknown(c),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"panic", err.Error(),
				"stack", string(stack),
			)
			return err
		},
	})
}
