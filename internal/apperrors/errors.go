package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
// Cross-tenant lookups resolve to this error as well, so callers cannot tell
// "absent" from "belongs to another company".
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized indicates the authorization gate denied the action.
var ErrUnauthorized = errors.New("action not permitted")

// ErrInvalidTransition indicates the action is not valid from the workflow's current state.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// ErrConflict indicates an optimistic version check was lost.
var ErrConflict = errors.New("concurrent modification")

// ErrTokenReplay indicates a confirmation token has already been consumed.
var ErrTokenReplay = errors.New("confirmation token already used")

// ErrTokenInvalid indicates a confirmation token is missing, malformed, stale or bound to another subject.
var ErrTokenInvalid = errors.New("confirmation token invalid")

// ErrStorageUnavailable indicates a transient infrastructure failure.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrInternal is the fallback for failures that fit no other kind.
var ErrInternal = errors.New("internal error")

// Kind is the stable, client-visible name of an error class.
type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindValidation         Kind = "Validation"
	KindUnauthorized       Kind = "Unauthorized"
	KindInvalidTransition  Kind = "InvalidTransition"
	KindConflict           Kind = "Conflict"
	KindTokenReplay        Kind = "TokenReplay"
	KindTokenInvalid       Kind = "TokenInvalid"
	KindStorageUnavailable Kind = "StorageUnavailable"
	KindInternal           Kind = "Internal"
)

var kindBySentinel = []struct {
	sentinel error
	kind     Kind
	status   int
}{
	{ErrNotFound, KindNotFound, http.StatusNotFound},
	{ErrValidation, KindValidation, http.StatusBadRequest},
	{ErrUnauthorized, KindUnauthorized, http.StatusForbidden},
	{ErrInvalidTransition, KindInvalidTransition, http.StatusConflict},
	{ErrConflict, KindConflict, http.StatusConflict},
	{ErrTokenReplay, KindTokenReplay, http.StatusConflict},
	{ErrTokenInvalid, KindTokenInvalid, http.StatusUnprocessableEntity},
	{ErrStorageUnavailable, KindStorageUnavailable, http.StatusServiceUnavailable},
}

// AppError carries an HTTP status, a safe message, an optional reason code and
// the underlying cause. It matches its sentinel through errors.Is.
type AppError struct {
	Code     int
	Message  string
	Reason   string
	sentinel error
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.sentinel != nil {
		out = append(out, e.sentinel)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewAppError builds an internal error with an explicit status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, sentinel: ErrInternal, Err: err}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, sentinel: ErrNotFound}
}

func NewValidationFailedError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, sentinel: ErrValidation}
}

// NewUnauthorizedError records the gate's reason code alongside the message.
func NewUnauthorizedError(reason, message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message, Reason: reason, sentinel: ErrUnauthorized}
}

func NewInvalidTransitionError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, sentinel: ErrInvalidTransition}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, sentinel: ErrConflict}
}

func NewTokenReplayError() *AppError {
	return &AppError{Code: http.StatusConflict, Message: "confirmation token already used", sentinel: ErrTokenReplay}
}

func NewTokenInvalidError(reason string, err error) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Message: "confirmation token invalid", Reason: reason, sentinel: ErrTokenInvalid, Err: err}
}

func NewStorageUnavailableError(message string, err error) *AppError {
	return &AppError{Code: http.StatusServiceUnavailable, Message: message, sentinel: ErrStorageUnavailable, Err: err}
}

// KindOf classifies any error into its stable kind.
func KindOf(err error) Kind {
	for _, k := range kindBySentinel {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// HTTPStatus returns the status code for err, defaulting to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	for _, k := range kindBySentinel {
		if errors.Is(err, k.sentinel) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// ReasonOf returns the reason code attached to err, if any.
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// SafeMessage returns a message that is safe to show to the caller. Internal
// causes are never included.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch KindOf(err) {
	case KindInternal:
		return "internal error"
	default:
		return err.Error()
	}
}

// IsRetryable reports whether the error is a transient storage failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
