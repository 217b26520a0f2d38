package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	// ErrConflict is returned when a concurrent mutation holds the same key.
	// Retrying the call is safe.
	ErrConflict = New(
		CodeConflict,
		"The resource is being modified by another request, please retry",
		http.StatusConflict,
	)

	// ErrTimeout is returned when a call exceeds its time budget. Nothing was
	// committed, retrying the call is safe.
	ErrTimeout = New(
		CodeTimeout,
		"The request took too long and was not applied, please retry",
		http.StatusGatewayTimeout,
	)
)

func RequiredField(field string) *AppError {
	return New(
		CodeValidation,
		fmt.Sprintf("%s is required", field),
		http.StatusBadRequest,
	)
}

func InvalidField(field string) *AppError {
	return New(
		CodeValidation,
		fmt.Sprintf("%s is invalid", field),
		http.StatusBadRequest,
	)
}
