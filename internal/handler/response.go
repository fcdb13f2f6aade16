package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so clients always get
// the platform's shapes:
//
//	writeJSON(w, http.StatusOK, user)
//	writeError(w, logger, "User", err)
//
// ERROR FORMAT:
// Errors use the platform's error document, e.g.
//
//	{"message": "Not Found", "documentation_url": "https://docs.github.com/rest", "status": "404"}
//
// Conflicts and validation failures additionally list the offending field:
//
//	{"message": "Validation Failed", "errors": [{"resource": "User", "field": "login", "code": "already_exists"}], ...}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/fakehub/internal/apperror"
)

// DocumentationURL is the documentation link carried by every error document.
const DocumentationURL = "https://docs.github.com/rest"

// ErrorResponse is the platform's error document.
type ErrorResponse struct {
	Message          string       `json:"message"`
	Errors           []FieldError `json:"errors,omitempty"`
	DocumentationURL string       `json:"documentation_url"`
	Status           string       `json:"status"`
}

// FieldError names one offending field of a rejected request.
type FieldError struct {
	Resource string `json:"resource"`
	Field    string `json:"field,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message,omitempty"`
}

// writeJSON sends data as JSON with the given status.
//
// HTML escaping is off: URL templates such as
// "search/code?q={query}{&page,per_page,sort,order}" must reach clients
// with a literal '&'.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		// Headers are already sent; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps an engine error to the platform's error document.
//
//	ErrNotFound   → 404 Not Found
//	ErrConflict   → 409 Validation Failed / already_exists
//	ErrValidation → 422 Validation Failed / invalid
//	anything else → 500, logged, details withheld
func writeError(w http.ResponseWriter, logger *slog.Logger, resource string, err error) {
	var appErr *apperror.AppError
	errors.As(err, &appErr)

	var (
		status int
		body   ErrorResponse
	)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		body.Message = "Not Found"
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
		body.Message = "Validation Failed"
		body.Errors = []FieldError{{Resource: resource, Field: fieldOf(appErr), Code: "already_exists", Message: messageOf(appErr)}}
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusUnprocessableEntity
		body.Message = "Validation Failed"
		body.Errors = []FieldError{{Resource: resource, Field: fieldOf(appErr), Code: "invalid", Message: messageOf(appErr)}}
	default:
		status = http.StatusInternalServerError
		body.Message = "Internal Server Error"
		logger.Error("request failed", slog.String("error", err.Error()))
	}

	body.DocumentationURL = DocumentationURL
	body.Status = strconv.Itoa(status)
	writeJSON(w, status, body)
}

// writeBadRequest answers a request whose body could not be decoded.
func writeBadRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Message:          "Problems parsing JSON",
		DocumentationURL: DocumentationURL,
		Status:           strconv.Itoa(http.StatusBadRequest),
	})
}

func fieldOf(e *apperror.AppError) string {
	if e == nil {
		return ""
	}
	return e.Field
}

func messageOf(e *apperror.AppError) string {
	if e == nil {
		return ""
	}
	return e.Message
}
