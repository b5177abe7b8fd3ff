// Package errors provides custom error types for the ledgerly API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError carrying the same code, so that
// wrapped copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the caller may safely retry the whole operation.
func (e *AppError) Retryable() bool {
	return e.Code == ErrConcurrencyConflict.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Team scope required", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Balance maintenance errors.
var (
	ErrInvalidRelationship = &AppError{Code: "INVALID_RELATIONSHIP", Message: "A referenced record does not exist or belongs to another team", StatusCode: http.StatusUnprocessableEntity}
	ErrConcurrencyConflict = &AppError{Code: "CONCURRENCY_CONFLICT", Message: "The balance was modified concurrently, retry the request", StatusCode: http.StatusServiceUnavailable}
	ErrViewRefreshFailed   = &AppError{Code: "VIEW_REFRESH_FAILED", Message: "Reporting view refresh failed", StatusCode: http.StatusInternalServerError}
	ErrInvalidEntityType   = &AppError{Code: "INVALID_ENTITY_TYPE", Message: "Unsupported balance entity type", StatusCode: http.StatusBadRequest}
	ErrInvalidView         = &AppError{Code: "INVALID_VIEW", Message: "Unknown reporting view", StatusCode: http.StatusBadRequest}
)

// Ownership errors.
var (
	ErrTeamNotFound     = &AppError{Code: "TEAM_NOT_FOUND", Message: "Team not found", StatusCode: http.StatusNotFound}
	ErrAccountNotFound  = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrMerchantNotFound = &AppError{Code: "MERCHANT_NOT_FOUND", Message: "Merchant not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrTagNotFound      = &AppError{Code: "TAG_NOT_FOUND", Message: "Tag not found", StatusCode: http.StatusNotFound}
	ErrOwnerInUse       = &AppError{Code: "OWNER_IN_USE", Message: "Record is still referenced by active transactions", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound   = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotDeleted = &AppError{Code: "TRANSACTION_NOT_DELETED", Message: "Only deleted transactions can be restored", StatusCode: http.StatusConflict}
)
