package middleware

import (
	"net/http"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
)

var (
	ErrTokenMissing = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrTokenInvalid = apperror.New(apperror.CodeUnauthorized, "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired = apperror.New(apperror.CodeUnauthorized, "Token has expired", http.StatusUnauthorized)
	ErrNoIdentity   = apperror.New(apperror.CodeUnauthorized, "Token carries no employee identity", http.StatusUnauthorized)
	ErrRateLimited  = apperror.New(apperror.CodeTooManyRequests, "Too many requests, slow down", http.StatusTooManyRequests)
	ErrInProgress   = apperror.New(apperror.CodeConflict, "A request with this idempotency key is still being processed", http.StatusConflict)
)
