package accrualerrors

import (
	"net/http"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
)

var (
	ErrInvalidMonth = apperror.New(
		apperror.CodeValidation,
		"month must be formatted as YYYY-MM",
		http.StatusBadRequest,
	)
	ErrRunInProgress = apperror.New(
		apperror.CodeConflict,
		"an accrual run is already in progress",
		http.StatusConflict,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"no accrual run recorded for this month",
		http.StatusNotFound,
	)
	ErrInvalidPolicy = apperror.New(
		apperror.CodeInvalidInput,
		"invalid accrual policy",
		http.StatusInternalServerError,
	)
)
