package errors

import "fmt"

type ErrorCode string

const (
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrCreateFailed       ErrorCode = "CREATE_FAILED"
	ErrGetFailed          ErrorCode = "GET_FAILED"
	ErrUpdateFailed       ErrorCode = "UPDATE_FAILED"
	ErrDeleteFailed       ErrorCode = "DELETE_FAILED"

	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Scheduling error codes
	ErrSlotUnavailable       ErrorCode = "SLOT_NO_LONGER_AVAILABLE"
	ErrInvalidTransition     ErrorCode = "INVALID_TRANSITION"
	ErrPastDateTime          ErrorCode = "PAST_DATE_TIME"
	ErrDuplicateRequest      ErrorCode = "DUPLICATE_REQUEST"
	ErrInternalInconsistency ErrorCode = "INTERNAL_INCONSISTENCY"
	ErrResourceBusy          ErrorCode = "RESOURCE_BUSY"
)

// AppError is the error type services return to controllers
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string, details any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
