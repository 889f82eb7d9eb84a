package middleware

import (
	"finance-assistant/internal/handlers"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	// TraceIDHeader carries the request trace id in both directions.
	TraceIDHeader     = "X-Trace-ID"
	TraceIDContextKey = handlers.TraceIDContextKey

	unknownTraceID = "unknown"
)

// RequestID reuses an inbound X-Trace-ID or mints a UUID, echoes it on the
// response and stores it under TraceIDContextKey for error bodies and logs.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		TargetHeader: TraceIDHeader,
		Generator:    uuid.NewString,
		RequestIDHandler: func(c echo.Context, traceID string) {
			c.Set(TraceIDContextKey, traceID)
		},
	})
}

func GetTraceID(c echo.Context) string {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	return traceID
}

func traceIDOrUnknown(c echo.Context) string {
	if traceID := GetTraceID(c); traceID != "" {
		return traceID
	}
	return unknownTraceID
}
