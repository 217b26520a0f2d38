// Package balancetest provides an in-memory balance.Repository for tests of
// packages that mutate balances through the ledger.
package balancetest

import (
	"context"
	"database/sql"
	"sync"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"

	"gorm.io/gorm"
)

type key struct {
	employeeID string
	leaveType  balance.LeaveType
}

// MemoryRepo ignores transactions: writes are visible immediately and are
// not rolled back.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[key]balance.LeaveBalance

	// FailFind, when set, is returned by FindForUpdate.
	FailFind error
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: map[key]balance.LeaveBalance{}}
}

// Put seeds a row.
func (m *MemoryRepo) Put(b balance.LeaveBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[key{b.EmployeeID.String(), b.LeaveType}] = b
}

// Get returns the stored row, ok is false when it was never opened.
func (m *MemoryRepo) Get(employeeID string, lt balance.LeaveType) (balance.LeaveBalance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[key{employeeID, lt}]
	return b, ok
}

func (m *MemoryRepo) WithTx(*sql.Tx) balance.Repository { return m }

func (m *MemoryRepo) EnsureOpened(_ context.Context, b *balance.LeaveBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{b.EmployeeID.String(), b.LeaveType}
	if _, ok := m.rows[k]; !ok {
		m.rows[k] = *b
	}
	return nil
}

func (m *MemoryRepo) FindForUpdate(_ context.Context, employeeID string, lt balance.LeaveType) (*balance.LeaveBalance, error) {
	if m.FailFind != nil {
		return nil, m.FailFind
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[key{employeeID, lt}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (m *MemoryRepo) FindByEmployee(_ context.Context, employeeID string) ([]balance.LeaveBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []balance.LeaveBalance
	for _, lt := range balance.AllLeaveTypes {
		if b, ok := m.rows[key{employeeID, lt}]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemoryRepo) Save(_ context.Context, b *balance.LeaveBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[key{b.EmployeeID.String(), b.LeaveType}] = *b
	return nil
}
