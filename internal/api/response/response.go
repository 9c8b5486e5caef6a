// Package response writes the API's JSON envelopes.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/parser"
)

// tradeHint accompanies validation errors so clients can fix the trade line.
const tradeHint = "expected PAIR DIRECTION ENTRY EXIT PNL [TAGS], e.g. " + parser.Example

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

func meta(w http.ResponseWriter) Meta {
	return Meta{Timestamp: time.Now().UTC(), RequestID: w.Header().Get("X-Request-ID")}
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail contains error information. Cause is only filled for client
// errors; server-side causes stay in the logs.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
	Meta  Meta        `json:"meta"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, SuccessResponse{Data: data, Meta: meta(w)})
}

// HTML writes a rendered journal message as is.
func HTML(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil && status < http.StatusInternalServerError {
			detail.Cause = coreErr.Cause.Error()
		}
	}
	if core.IsValidation(err) {
		detail.Hint = tradeHint
	}

	write(w, status, ErrorResponse{Error: detail, Meta: meta(w)})
}

// Status maps an error to the HTTP status it is answered with.
func Status(err error) int {
	switch {
	case core.IsValidation(err), errors.Is(err, core.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTradeNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with the status Status picks.
func Fail(w http.ResponseWriter, err error) {
	Error(w, Status(err), err)
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
