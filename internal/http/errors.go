package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"finfamily/internal/core"
	"finfamily/internal/log"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Field     string   `json:"field,omitempty"`
	Hint      string   `json:"hint,omitempty"`
	Missing   []string `json:"missing,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

// statusOf maps ledger errors to HTTP statuses.
func statusOf(err error) int {
	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConfiguration:
		return http.StatusServiceUnavailable
	case core.KindPersistence:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func responseFor(err error) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		return he.Code, errorResponse{Error: msg, Code: "http_error"}
	}

	status := statusOf(err)
	resp := errorResponse{Error: err.Error(), Code: log.ErrorType(err)}

	var (
		ve *core.ValidationError
		pe *core.PersistenceError
		ce *core.ConfigurationError
	)
	switch {
	case errors.As(err, &ve):
		resp.Field = ve.Field
	case errors.As(err, &ce):
		resp.Missing = ce.Missing
	case errors.As(err, &pe):
		resp.Hint = pe.Hint()
	}
	if status == http.StatusInternalServerError {
		resp.Error = "internal server error"
	}
	return status, resp
}

// errorHandler replaces echo's default so every error has the same shape.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, resp := responseFor(err)
	resp.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, resp)
}
