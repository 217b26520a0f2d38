package balance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	balanceerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeService struct {
	getFn func(ctx context.Context, employeeID string) (balance.BalanceResponse, error)
}

func (f fakeService) GetBalance(ctx context.Context, employeeID string) (balance.BalanceResponse, error) {
	return f.getFn(ctx, employeeID)
}

func (f fakeService) OpenAccounts(context.Context, string) ([]balance.Snapshot, error) {
	return nil, nil
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func TestBalanceHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var asked string
	svc := fakeService{getFn: func(_ context.Context, employeeID string) (balance.BalanceResponse, error) {
		asked = employeeID
		if employeeID == "someone-else" {
			return balance.BalanceResponse{}, balanceerrors.ErrNotAuthorized
		}
		return balance.BalanceResponse{
			EmployeeID: employeeID,
			Balances: map[balance.LeaveType]balance.BalanceEntry{
				balance.LeaveTypePaid: {Accrued: balance.Days(10), Available: balance.Days(10)},
			},
		}, nil
	}}
	h := balance.NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextEmployeeID, "emp-1") })
	r.GET("/balances/me", h.GetMine)
	r.GET("/balances/:employee_id", h.GetByEmployee)

	do := func(path string) (*httptest.ResponseRecorder, envelope) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		var env envelope
		_ = json.Unmarshal(w.Body.Bytes(), &env)
		return w, env
	}

	w, env := do("/balances/me")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "emp-1", asked)
	assert.JSONEq(t, `{"employee_id":"emp-1","balances":{"PAID":{"accrued":"10.00","consumed":"0.00","available":"10.00","carry_over_cap":"0.00","unlimited":false}}}`, string(env.Data))

	w, env = do("/balances/someone-else")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_AUTHORIZED", env.Error.Code)
}
