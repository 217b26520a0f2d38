package app

import (
	"context"
	"net/http"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/calendar"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"
	employeeerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/leave"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/rbac"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/rbac/infra"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/realtime"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	idempotencyTTL  = 24 * time.Hour
	streamHeartbeat = 25 * time.Second
	sessionBuffer   = 16
)

func registerModules(router *gin.Engine, c *core) error {
	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, c.logger)

	// --- Services ---
	employeeService := employee.NewService(c.employeeRepo, c.logger)
	balanceService := balance.NewService(c.sqlDB, c.balanceRepo, c.employeeRepo, c.defaults, c.logger)
	leaveService := leave.NewService(
		c.sqlDB,
		c.leaveRepo,
		c.employeeRepo,
		c.ledger,
		c.outboxRepo,
		leave.Options{CallTimeout: c.cfg.LeaveCallTimeout, Audit: c.audit},
		c.logger,
	)
	calendarService := calendar.NewService(c.leaveRepo, c.employeeRepo, c.logger)
	notificationService := notification.NewService(c.outboxRepo, c.logger)
	hub := realtime.NewHub(realtime.NewBridge(c.rdb), sessionBuffer, c.logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, c.logger)
	balanceHandler := balance.NewHandler(balanceService, c.logger)
	leaveHandler := leave.NewHandler(leaveService, c.logger)
	calendarHandler := calendar.NewHandler(calendarService, c.logger)
	accrualHandler := accrual.NewHandler(c.accrualService, c.audit, c.logger)
	notificationHandler := notification.NewHandler(notificationService, c.logger)
	realtimeHandler := realtime.NewHandler(hub, streamHeartbeat, c.logger)
	rbacHandler := rbac.NewHandler(rbacService, c.logger)

	// --- Middleware ---
	resolver := middleware.IdentityResolverFunc(func(ctx context.Context, employeeID, email string) (string, error) {
		e, err := employeeService.Resolve(ctx, employee.IdentityQuery{ID: employeeID, Email: email})
		if err != nil {
			return "", err
		}
		if !e.IsActive {
			return "", employeeerrors.ErrEmployeeInactive
		}
		return e.ID.String(), nil
	})
	auth := middleware.AuthMiddleware(c.cfg.JWTSecret, resolver)
	mutate := []gin.HandlerFunc{
		middleware.RateLimitByUser(rate.Limit(c.cfg.RateLimitRPS), c.cfg.RateLimitBurst),
		middleware.Idempotency(c.rdb, idempotencyTTL),
	}

	router.GET("/healthz", c.health)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, auth, rbacService)
		balance.RegisterRoutes(api, balanceHandler, auth, rbacService)
		leave.RegisterRoutes(api, leaveHandler, auth, rbacService, mutate...)
		calendar.RegisterRoutes(api, calendarHandler, auth, rbacService)
		accrual.RegisterRoutes(api, accrualHandler, auth, rbacService)
		notification.RegisterRoutes(api, notificationHandler, realtimeHandler.Stream, auth, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, auth, rbacService)
	}
	return nil
}

func (c *core) health(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "up", "redis": "up"}
	code := http.StatusOK
	if err := c.sqlDB.PingContext(reqCtx); err != nil {
		status["database"] = "down"
		code = http.StatusServiceUnavailable
	}
	if err := c.rdb.Ping(reqCtx).Err(); err != nil {
		status["redis"] = "down"
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, status)
}
