package config_test

import (
	"testing"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCRUAL_MAX_RETRIES", "")
	t.Setenv("NOTIFY_RETRY_BASE", "")

	cfg := config.Load()

	assert.Equal(t, 3, cfg.AccrualMaxRetries)
	assert.Equal(t, 2*time.Second, cfg.NotifyRetryBase)
	assert.Equal(t, "0 0 1 * *", cfg.AccrualCron)
	assert.Equal(t, "log", cfg.MailDriver)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ACCRUAL_MAX_RETRIES", "5")
	t.Setenv("LEAVE_CALL_TIMEOUT", "750ms")
	t.Setenv("MAIL_DRIVER", "SMTP")
	t.Setenv("NOTIFY_WORKERS", "not-a-number")

	cfg := config.Load()

	assert.Equal(t, 5, cfg.AccrualMaxRetries)
	assert.Equal(t, 750*time.Millisecond, cfg.LeaveCallTimeout)
	assert.Equal(t, "smtp", cfg.MailDriver)
	assert.Equal(t, 4, cfg.NotifyWorkers)
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	assert.Equal(t, []string{"http://localhost:5173"}, config.Load().CORSOrigins)

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://hr.example.com, ,https://admin.example.com ")
	assert.Equal(t, []string{"https://hr.example.com", "https://admin.example.com"}, config.Load().CORSOrigins)
}
