package calendarerrors

import (
	"net/http"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
)

var (
	ErrMissingWindow = apperror.New(
		apperror.CodeValidation,
		"from and to are required",
		http.StatusBadRequest,
	)
	ErrWindowTooLarge = apperror.New(
		apperror.CodeInvalidRange,
		"calendar window must not exceed 366 days",
		http.StatusBadRequest,
	)
)
