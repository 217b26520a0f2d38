package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, contextutil.GetRequestID(c.Request.Context()))
	})

	do := func(header string) (string, string) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(middleware.HeaderRequestID, header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Body.String(), w.Header().Get(middleware.HeaderRequestID)
	}

	body, echoed := do("req-42")
	assert.Equal(t, "req-42", body)
	assert.Equal(t, "req-42", echoed)

	body, _ = do("")
	assert.Len(t, body, 36)

	body, _ = do(strings.Repeat("x", 65))
	assert.Len(t, body, 36)

	body, _ = do("héllo")
	assert.NotEqual(t, "héllo", body)
}
