package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
	CodeTimeout         = "TIMEOUT"
	CodeRequestClosed   = "REQUEST_CLOSED"
	CodeSlotUnavailable = "SLOT_UNAVAILABLE"
	CodeQuotaExceeded   = "QUOTA_EXCEEDED"
)

// AppError is the typed error crossing the service/handler boundary. The four
// booking failure modes (NOT_FOUND, REQUEST_CLOSED, SLOT_UNAVAILABLE,
// QUOTA_EXCEEDED) are expected outcomes, not defects; handlers render them as
// structured JSON with the carried HTTP status.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

// RequestClosed signals a claim against a closed request. Terminal for that
// request; listings still succeed so the caller can render closed state.
func RequestClosed() *AppError {
	return &AppError{
		Code:       CodeRequestClosed,
		Message:    "This booking request is closed and no longer accepts claims",
		HTTPStatus: http.StatusConflict,
	}
}

// SlotUnavailable covers both "this slot is already booked" and "an
// overlapping slot is booked". Callers cannot distinguish the two on purpose;
// either way they should refresh the listing and pick another slot.
func SlotUnavailable() *AppError {
	return &AppError{
		Code:       CodeSlotUnavailable,
		Message:    "The selected slot is no longer available",
		HTTPStatus: http.StatusConflict,
	}
}

// QuotaExceeded signals the invite already holds its maximum number of slots.
func QuotaExceeded(limit int) *AppError {
	return &AppError{
		Code:       CodeQuotaExceeded,
		Message:    "The maximum number of slots for this invite has already been claimed",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"max_selections_per_person": limit,
		},
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
