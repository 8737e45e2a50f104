package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Error codes reported in the "code" field of the error envelope.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
	CodeTimeout       = "TIMEOUT"
	CodeCanceled      = "CANCELED"
	CodeUnavailable   = "UNAVAILABLE"
)

// AppError is a failure reported to the client with an HTTP status and a
// machine-readable code. Meta carries optional details, such as the limits
// a request exceeded.
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Meta    any    `json:"meta,omitempty"`
}

func (e *AppError) Error() string { return e.Code + ": " + e.Message }

// NewAppError creates an AppError.
func NewAppError(status int, code, message string, meta any) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Meta: meta}
}

// statusCodes gives the code of each status the handlers report.
var statusCodes = map[int]string{
	http.StatusBadRequest:          CodeBadRequest,
	http.StatusNotFound:            CodeNotFound,
	http.StatusInternalServerError: CodeInternalError,
	http.StatusServiceUnavailable:  CodeUnavailable,
}

func statusError(status int, msg string) *AppError {
	return NewAppError(status, statusCodes[status], msg, nil)
}

// BadRequest reports invalid query parameters.
func BadRequest(msg string) *AppError { return statusError(http.StatusBadRequest, msg) }

// NotFound reports an unknown route.
func NotFound(msg string) *AppError { return statusError(http.StatusNotFound, msg) }

// Internal reports a failure whose details stay in the server log.
func Internal(msg string) *AppError { return statusError(http.StatusInternalServerError, msg) }

// Unavailable reports that the server no longer takes work, for example
// while it drains before shutdown.
func Unavailable(msg string) *AppError { return statusError(http.StatusServiceUnavailable, msg) }

// FromStdError maps err to the AppError written to the client. Context
// errors become 408 responses. Any other error that is not an AppError
// becomes a generic internal error, so its text never reaches clients.
func FromStdError(err error) *AppError {
	var app *AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &app):
		return app
	case errors.Is(err, context.Canceled):
		return NewAppError(http.StatusRequestTimeout, CodeCanceled, "request canceled", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAppError(http.StatusRequestTimeout, CodeTimeout, "request timeout", nil)
	}
	return Internal("unexpected error")
}

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Err *AppError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	app := FromStdError(err)
	writeJSON(w, app.Status, errorEnvelope{Err: app})
}
