package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the acting user lacks permission for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates the request lacks valid authentication.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRefreshTokenExpired indicates the stored refresh token is past its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrConflict indicates a concurrent modification was detected (optimistic lock
// failure). Callers should re-fetch current state and resubmit.
var ErrConflict = errors.New("concurrent modification conflict")

// Engine error kinds. These are the typed failures the approval engine
// surfaces to callers; none of them are retried internally.

// ErrUnknownCurrency indicates a currency code is missing from the rate table.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrPolicyInvalid indicates a malformed or self-contradictory approval policy.
// It is raised at policy create/edit time, never during resolution.
var ErrPolicyInvalid = errors.New("invalid approval policy")

// ErrStaleLevel indicates a decision targeted a level that is not the
// expense's current level, or an expense that is already terminal.
var ErrStaleLevel = errors.New("stale or invalid approval level")

// ErrUnauthorizedApprover indicates the acting user neither holds the required
// role for the level nor is a designated override approver.
var ErrUnauthorizedApprover = errors.New("approver not authorized for this level")

// AppError carries an HTTP status code alongside the error. It is used at the
// repository and handler boundaries where the status is already known.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with an explicit status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message, Err: ErrUnauthorized}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message}
}

func NewGatewayTimeoutError(message string) *AppError {
	return &AppError{Code: http.StatusGatewayTimeout, Message: message}
}
