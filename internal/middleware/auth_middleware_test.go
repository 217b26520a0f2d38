package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return s
}

func newAuthRouter(resolver middleware.IdentityResolver, seen *contextutil.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", middleware.AuthMiddleware(testSecret, resolver), func(c *gin.Context) {
		if a, ok := contextutil.GetActor(c.Request.Context()); ok {
			*seen = a
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	resolver := middleware.IdentityResolverFunc(func(ctx context.Context, id, email string) (string, error) {
		if id != "" {
			return id, nil
		}
		if email == "ana@corp.test" {
			return "emp-from-email", nil
		}
		return "", errors.New("not found")
	})

	t.Run("valid token with employee id", func(t *testing.T) {
		var actor contextutil.Actor
		r := newAuthRouter(resolver, &actor)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
			"employee_id": "emp-1",
			"role":        "Manager",
			"exp":         time.Now().Add(time.Hour).Unix(),
		}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "emp-1", actor.EmployeeID)
		assert.Equal(t, "manager", actor.Role)
	})

	t.Run("email claim resolved when id absent", func(t *testing.T) {
		var actor contextutil.Actor
		r := newAuthRouter(resolver, &actor)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
			"email": "ana@corp.test",
			"role":  "employee",
		}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "emp-from-email", actor.EmployeeID)
	})

	t.Run("negative missing token", func(t *testing.T) {
		var actor contextutil.Actor
		r := newAuthRouter(resolver, &actor)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token not found")
	})

	t.Run("negative expired token", func(t *testing.T) {
		var actor contextutil.Actor
		r := newAuthRouter(resolver, &actor)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{
			"employee_id": "emp-1",
			"exp":         time.Now().Add(-time.Hour).Unix(),
		}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("negative unknown employee", func(t *testing.T) {
		var actor contextutil.Actor
		r := newAuthRouter(resolver, &actor)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"email": "ghost@corp.test"}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, actor.EmployeeID)
	})
}
