package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"finance-assistant/internal/errors"
	"finance-assistant/internal/validation"

	"github.com/labstack/echo/v4"
)

// Handlers report failures only through SendError, SendSystemError and
// SendRequestError so every error body carries a code and the trace id.

// SuccessResponse wraps CRUD and auth payloads. Dashboard views are returned bare.
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type ErrorResponse = errors.ErrorResponse

// requestSource names where bindRequest reads from, for the error detail.
type requestSource string

const (
	fromBody  requestSource = "request body"
	fromQuery requestSource = "query parameters"
)

type bindError struct {
	source requestSource
	err    error
}

func (e *bindError) Error() string { return "invalid " + string(e.source) + ": " + e.err.Error() }
func (e *bindError) Unwrap() error { return e.err }

// bindRequest decodes the request into dst and runs the struct validator on it.
func bindRequest(c echo.Context, dst interface{}, source requestSource) error {
	if err := c.Bind(dst); err != nil {
		return &bindError{source: source, err: err}
	}
	return c.Validate(dst)
}

// TraceIDContextKey is where the request id middleware stores the trace id.
const TraceIDContextKey = "trace_id"

func getTraceID(c echo.Context) string {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	return traceID
}

func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	resp := errors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(resp.GetHTTPStatus(), resp)
}

// SendSystemError logs err and answers with a generic SYSTEM_001.
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	resp, internalErr := errors.WrapSystemError(err, traceID)
	slog.Error("request failed", "trace_id", traceID, "path", c.Request().URL.Path, "error", internalErr)
	return c.JSON(http.StatusInternalServerError, resp)
}

// SendValidationError reports validator failures field by field. Other errors become VALIDATION_001.
func SendValidationError(c echo.Context, err error) error {
	if fieldErrors, ok := validation.FieldErrors(err); ok {
		return c.JSON(http.StatusBadRequest, errors.NewValidationError(fieldErrors, getTraceID(c)))
	}
	return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
}

// SendRequestError answers a bindRequest failure.
func SendRequestError(c echo.Context, err error) error {
	var be *bindError
	if stderrors.As(err, &be) {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid "+string(be.source)))
	}
	return SendValidationError(c, err)
}
