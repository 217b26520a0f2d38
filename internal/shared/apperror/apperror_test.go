package apperror_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps code and status", func(t *testing.T) {
		err := apperror.New(apperror.CodeOverlap, "overlap", http.StatusConflict)
		got := apperror.ToHTTP(fmt.Errorf("submit: %w", err))

		assert.Equal(t, http.StatusConflict, got.Status)
		assert.Equal(t, apperror.CodeOverlap, got.Code)
		assert.Equal(t, "overlap", got.Message)
	})

	t.Run("raw errors are not leaked", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("pq: relation leave_balances does not exist"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, apperror.CodeInternalError, got.Code)
		assert.NotContains(t, got.Message, "leave_balances")
	})

	t.Run("deadline becomes timeout", func(t *testing.T) {
		got := apperror.ToHTTP(context.DeadlineExceeded)

		assert.Equal(t, http.StatusGatewayTimeout, got.Status)
		assert.Equal(t, apperror.CodeTimeout, got.Code)
	})
}

func TestIs(t *testing.T) {
	wrapped := apperror.Wrap(errors.New("lock"), apperror.CodeConflict, "busy", http.StatusConflict)

	assert.True(t, apperror.Is(wrapped, apperror.CodeConflict))
	assert.False(t, apperror.Is(wrapped, apperror.CodeTimeout))
	assert.False(t, apperror.Is(errors.New("plain"), apperror.CodeConflict))
}

func TestWithCause_StillMatchesSentinel(t *testing.T) {
	cause := errors.New("SQLSTATE 55P03")
	err := apperror.ErrConflict.WithCause(cause)

	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, apperror.ErrConflict.Err)
}

func TestMapValidationError(t *testing.T) {
	apperror.Init()
	v := binding.Validator.Engine().(*validator.Validate)

	type req struct {
		LeaveType string `json:"leave_type" binding:"required,oneof=PAID UNPAID"`
		Reason    string `json:"reason" binding:"max=5"`
	}

	err := apperror.MapValidationError(v.Struct(req{Reason: "ok"}))
	assert.Equal(t, "Leave Type is required", err.Error())

	err = apperror.MapValidationError(v.Struct(req{LeaveType: "ANNUAL"}))
	assert.Equal(t, "Leave Type must be one of: PAID, UNPAID", err.Error())

	err = apperror.MapValidationError(v.Struct(req{LeaveType: "PAID", Reason: "too long"}))
	assert.Equal(t, "Reason must be at most 5 characters", err.Error())

	err = apperror.MapValidationError(errors.New("EOF"))
	assert.True(t, apperror.Is(err, apperror.CodeInvalidInput))
}
