package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/configurator"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/quote"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Error codes understood by the front end.
const (
	CodeInvalidArguments    = "INVALID_ARGUMENTS"
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

var defaultMessages = map[string]string{
	CodeInvalidArguments:    "Request contains invalid or incomplete information",
	CodeResourceNotFound:    "The requested resource could not be found",
	CodeInternalServerError: "An unexpected error occurred",
}

// BaseResponse wraps every successful payload.
type BaseResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status         string        `json:"status"`
	Code           string        `json:"code"`
	Message        string        `json:"message"`
	Timestamp      time.Time     `json:"timestamp"`
	Errors         []ErrorDetail `json:"errors"`
	ErrorReference string        `json:"error_reference"`
}

// ErrorDetail describes one rejected input field.
type ErrorDetail struct {
	Field         string `json:"field,omitempty"`
	Message       string `json:"message"`
	RejectedValue string `json:"rejected_value,omitempty"`
}

func respondOK(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	render.Status(r, status)
	render.JSON(w, r, BaseResponse{Status: StatusSuccess, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details []ErrorDetail) {
	if message == "" {
		message = defaultMessages[code]
	}
	if details == nil {
		details = []ErrorDetail{}
	}

	ref := newErrorReference()
	log := logger.FromContext(r.Context())
	attrs := []any{
		slog.Int("status", status),
		slog.String("code", code),
		slog.String("message", message),
		slog.String("error_reference", ref),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Status:         StatusFailed,
		Code:           code,
		Message:        message,
		Timestamp:      time.Now().UTC(),
		Errors:         details,
		ErrorReference: ref,
	})
}

// respondDomainError maps service errors to HTTP responses.
// Anything unclassified is a 500 whose cause is logged, never returned.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *configurator.ValidationError
		requestErr    *quote.RequestError
	)

	switch {
	case errors.As(err, &requestErr):
		details := make([]ErrorDetail, 0, len(requestErr.Fields))
		for _, f := range requestErr.Fields {
			details = append(details, ErrorDetail{Field: f.Field, Message: f.Message, RejectedValue: truncate(f.Value, 100)})
		}
		respondError(w, r, http.StatusBadRequest, CodeInvalidArguments, "", details)

	case errors.Is(err, quote.ErrInvalidConfiguration),
		errors.As(err, &validationErr),
		errors.Is(err, catalog.ErrUnknownReference),
		errors.Is(err, quote.ErrInvalidRequest):
		respondError(w, r, http.StatusBadRequest, CodeInvalidArguments, err.Error(), nil)

	case errors.Is(err, quote.ErrQuoteNotFound):
		respondError(w, r, http.StatusNotFound, CodeResourceNotFound, err.Error(), nil)

	default:
		logger.FromContext(r.Context()).Error("unhandled service error", slog.String("error", err.Error()))
		respondError(w, r, http.StatusInternalServerError, CodeInternalServerError, "", nil)
	}
}

func newErrorReference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
