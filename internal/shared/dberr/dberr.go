// Package dberr translates Postgres driver errors into the engine's error
// kinds so raw storage errors never cross a service boundary.
package dberr

import (
	"context"
	"errors"
	"strings"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeQueryCanceled        = "57014"
)

// IsUniqueViolation reports whether err is a unique violation, optionally on
// a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation &&
			(constraint == "" || pgErr.ConstraintName == constraint)
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") &&
		(constraint == "" || strings.Contains(errMsg, constraint))
}

// Translate maps contention and cancellation errors to Conflict and Timeout.
// Anything else is returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.ErrTimeout.WithCause(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
			return apperror.ErrConflict.WithCause(err)
		case codeQueryCanceled:
			return apperror.ErrTimeout.WithCause(err)
		}
	}
	return err
}

// IsRetryable reports whether a call failing with err may succeed when retried.
func IsRetryable(err error) bool {
	err = Translate(err)
	return errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrTimeout)
}
