package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/contextutil"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	ContextEmployeeID = "employee_id"
	ContextRole       = "role"
)

// IdentityResolver maps token claims to an active employee id. Lookup is by
// exact id when employeeID is set, by exact email otherwise.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, employeeID, email string) (string, error)
}

type IdentityResolverFunc func(ctx context.Context, employeeID, email string) (string, error)

func (f IdentityResolverFunc) ResolveIdentity(ctx context.Context, employeeID, email string) (string, error) {
	return f(ctx, employeeID, email)
}

// AuthMiddleware validates the HS256 bearer token (or access_token cookie),
// resolves the employee and stores the actor on both the gin and the
// request context.
func AuthMiddleware(secret string, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWith(c, ErrTokenMissing)
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, ErrTokenExpired)
				return
			}
			abortWith(c, ErrTokenInvalid)
			return
		}

		claimID, _ := claims["employee_id"].(string)
		claimEmail, _ := claims["email"].(string)
		if strings.TrimSpace(claimID) == "" && strings.TrimSpace(claimEmail) == "" {
			abortWith(c, ErrNoIdentity)
			return
		}

		ctx := c.Request.Context()
		employeeID, err := resolver.ResolveIdentity(ctx, claimID, claimEmail)
		if err != nil {
			contextutil.GetLogger(ctx, zap.L()).Warn("identity resolution failed", zap.Error(err))
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		role, _ := claims["role"].(string)
		role = strings.ToLower(strings.TrimSpace(role))

		c.Set(ContextEmployeeID, employeeID)
		c.Set(ContextRole, role)

		ctx = contextutil.WithActor(ctx, contextutil.Actor{EmployeeID: employeeID, Role: role})
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, zap.L()).With(zap.String("employee_id", employeeID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, nil)
	c.Abort()
}
