package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

var (
	ErrNotFound     = stderrors.New("not found")
	ErrConflict     = stderrors.New("conflict")
	ErrUnauthorized = stderrors.New("unauthorized")

	// The token and credential errors all match ErrUnauthorized.
	ErrInvalidCredentials error = &authError{msg: "user credential mismatch"}
	ErrInvalidToken       error = &authError{msg: "invalid token"}
	ErrExpiredToken       error = &authError{msg: "token has expired"}
)

type authError struct {
	msg string
}

func (e *authError) Error() string { return e.msg }

func (e *authError) Is(target error) bool { return target == ErrUnauthorized }

// NotFoundError reports a missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a uniqueness violation. It matches ErrConflict.
type ConflictError struct {
	Entity string
	Field  string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s already exists", e.Entity)
	}
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func NewNotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

func NewConflict(entity, field string) error {
	return &ConflictError{Entity: entity, Field: field}
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// Detailer is implemented by errors that carry extra response details.
type Detailer interface {
	Details() map[string]interface{}
}

// WriteFromError maps the error taxonomy onto an HTTP response. Unknown
// errors are logged with the request's logger and reported as a generic
// internal error.
func WriteFromError(w http.ResponseWriter, r *http.Request, err error) {
	details := map[string]interface{}{}
	var detailer Detailer
	if stderrors.As(err, &detailer) {
		for k, v := range detailer.Details() {
			details[k] = v
		}
	}

	var validation *ValidationError
	switch {
	case stderrors.As(err, &validation):
		if validation.Field != "" {
			details["field"] = validation.Field
		}
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidInput, validation.Error(), orNil(details))
	case stderrors.Is(err, ErrExpiredToken):
		WriteError(w, http.StatusUnauthorized, ErrCodeTokenExpired, err.Error(), orNil(details))
	case stderrors.Is(err, ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error(), orNil(details))
	case stderrors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, err.Error(), orNil(details))
	case stderrors.Is(err, ErrConflict):
		WriteError(w, http.StatusConflict, ErrCodeConflict, err.Error(), orNil(details))
	default:
		requestLogger(r).Error().Err(err).Msg("unhandled error")
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", orNil(details))
	}
}

func orNil(details map[string]interface{}) interface{} {
	if len(details) == 0 {
		return nil
	}
	return details
}

// requestLogger prefers the logger stored in the request context, which
// carries the request id, and falls back to the global logger.
func requestLogger(r *http.Request) *zerolog.Logger {
	if r != nil {
		if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &log.Logger
}
