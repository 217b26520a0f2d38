package balanceerrors

import (
	"net/http"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
)

var (
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"leave_type must be one of PAID, UNPAID, SICK, CASUAL",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be positive with at most 2 decimals",
		http.StatusBadRequest,
	)
	ErrAccrualNotAllowed = apperror.New(
		apperror.CodeInvalidInput,
		"leave type does not accrue",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrNotAuthorized = apperror.New(
		apperror.CodeNotAuthorized,
		"you may only view your own balance or the balance of your reports",
		http.StatusForbidden,
	)
	// ErrRefundExceedsConsumed means a refund did not match a reservation.
	// It is an internal invariant breach, not a client error.
	ErrRefundExceedsConsumed = apperror.New(
		apperror.CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
)
