package accrual_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual"
	accrualerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/balancetest"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"
	employeemock "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee/mock"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification/notificationtest"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type markerKey struct {
	employeeID uuid.UUID
	month      string
}

type memAccrualRepo struct {
	mu      sync.Mutex
	markers map[markerKey]accrual.Marker
	runs    map[string]accrual.Run

	// failInsert makes the next n marker inserts for an employee fail.
	failInsert map[uuid.UUID]int
}

func newMemAccrualRepo() *memAccrualRepo {
	return &memAccrualRepo{
		markers:    map[markerKey]accrual.Marker{},
		runs:       map[string]accrual.Run{},
		failInsert: map[uuid.UUID]int{},
	}
}

func (m *memAccrualRepo) WithTx(*sql.Tx) accrual.Repository { return m }

func (m *memAccrualRepo) InsertMarker(_ context.Context, mk *accrual.Marker) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := m.failInsert[mk.EmployeeID]; n > 0 {
		m.failInsert[mk.EmployeeID] = n - 1
		return false, errors.New("connection reset by peer")
	}
	k := markerKey{mk.EmployeeID, mk.MonthKey}
	if _, ok := m.markers[k]; ok {
		return false, nil
	}
	m.markers[k] = *mk
	return true, nil
}

func (m *memAccrualRepo) SaveRun(_ context.Context, run *accrual.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.MonthKey] = *run
	return nil
}

func (m *memAccrualRepo) FindRun(_ context.Context, monthKey string) (*accrual.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[monthKey]
	if !ok {
		return &accrual.Run{}, gorm.ErrRecordNotFound
	}
	return &run, nil
}

type memLease struct {
	mu         sync.Mutex
	held       map[string]string
	released   int
	acquiredAt time.Time
}

func (l *memLease) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.acquiredAt = time.Now()
	token := uuid.NewString()
	l.held[key] = token
	return token, true, nil
}

func (l *memLease) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return accrual.ErrLeaseLost
	}
	delete(l.held, key)
	l.released++
	return nil
}

var testDefaults = balance.Defaults{
	PaidCap:     balance.Days(24),
	SickGrant:   balance.Days(12),
	CasualGrant: balance.Days(6),
}

type accrualDeps struct {
	sqlMock  sqlmock.Sqlmock
	service  accrual.Service
	repo     *memAccrualRepo
	empRepo  *employeemock.MockRepository
	balances *balancetest.MemoryRepo
	outbox   *notificationtest.MemoryOutbox
	lease    *memLease
}

func setupAccrualTest(t *testing.T, tweak ...func(*accrual.Options)) *accrualDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	d := &accrualDeps{
		sqlMock:  sqlMock,
		repo:     newMemAccrualRepo(),
		empRepo:  employeemock.NewMockRepository(ctrl),
		balances: balancetest.NewMemoryRepo(),
		outbox:   notificationtest.NewMemoryOutbox(),
		lease:    &memLease{held: map[string]string{}},
	}
	policy, err := accrual.ParsePolicy("0:1.25,3000:1.50", "")
	assert.NoError(t, err)

	opts := accrual.Options{
		Policy:       policy,
		Workers:      1,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	d.service = accrual.NewService(db, d.repo, d.empRepo,
		balance.NewLedger(d.balances, testDefaults), d.outbox, d.lease, opts)
	return d
}

func newAccrualEmployee(name, wage string) employee.Employee {
	return employee.Employee{
		ID:              uuid.New(),
		FullName:        name,
		Email:           name + "@corp.test",
		MonthlyWage:     decimal.RequireFromString(wage),
		AccrualEligible: true,
		IsActive:        true,
		JoinDate:        time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC),
		Locale:          "en",
	}
}

func (d *accrualDeps) available(t *testing.T, e employee.Employee) balance.Amount {
	t.Helper()
	b, ok := d.balances.Get(e.ID.String(), balance.LeaveTypePaid)
	assert.True(t, ok)
	return b.Available()
}

func expectTxs(mock sqlmock.Sqlmock, outcomes ...bool) {
	for _, commit := range outcomes {
		mock.ExpectBegin()
		if commit {
			mock.ExpectCommit()
		} else {
			mock.ExpectRollback()
		}
	}
}

func TestAccrualService_RunAccrual_IsIdempotentPerMonth(t *testing.T) {
	d := setupAccrualTest(t)
	ctx := context.Background()
	junior := newAccrualEmployee("dewi", "2500")
	senior := newAccrualEmployee("eko", "4500")
	d.empRepo.EXPECT().ListAccrualCandidates(gomock.Any(), gomock.Any()).
		Return([]employee.Employee{junior, senior}, nil).Times(2)

	expectTxs(d.sqlMock, true, true)
	resp, err := d.service.RunAccrual(ctx, "2026-03")
	assert.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.Status)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 0, resp.Failed)
	assert.Equal(t, balance.MustParseAmount("1.25"), d.available(t, junior))
	assert.Equal(t, balance.MustParseAmount("1.50"), d.available(t, senior))
	assert.Equal(t, []notification.Kind{notification.KindAccrued, notification.KindAccrued}, d.outbox.Kinds())

	expectTxs(d.sqlMock, false, false)
	resp, err = d.service.RunAccrual(ctx, "2026-03")
	assert.NoError(t, err)
	assert.Equal(t, 0, resp.Succeeded)
	assert.Equal(t, 2, resp.Skipped)
	assert.Equal(t, balance.MustParseAmount("1.25"), d.available(t, junior))
	assert.Len(t, d.outbox.Events(), 2)

	assert.Equal(t, 2, d.lease.released)
	assert.NoError(t, d.sqlMock.ExpectationsWereMet())
}

func TestAccrualService_RunAccrual_RetriesAndIsolatesFailures(t *testing.T) {
	d := setupAccrualTest(t)
	flaky := newAccrualEmployee("fajar", "1000")
	broken := newAccrualEmployee("gita", "1000")
	steady := newAccrualEmployee("hadi", "1000")
	d.repo.failInsert[flaky.ID] = 2
	d.repo.failInsert[broken.ID] = 10
	d.empRepo.EXPECT().ListAccrualCandidates(gomock.Any(), gomock.Any()).
		Return([]employee.Employee{flaky, broken, steady}, nil)

	expectTxs(d.sqlMock,
		false, false, true, // flaky: two failures then success
		false, false, false, false, // broken: first attempt plus three retries
		true, // steady
	)

	resp, err := d.service.RunAccrual(context.Background(), "2026-04")
	assert.NoError(t, err)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	assert.Contains(t, resp.LastError, "connection reset")
	assert.Equal(t, 6, d.repo.failInsert[broken.ID])

	assert.Equal(t, balance.MustParseAmount("1.25"), d.available(t, flaky))
	assert.Equal(t, balance.MustParseAmount("1.25"), d.available(t, steady))
	_, ok := d.balances.Get(broken.ID.String(), balance.LeaveTypePaid)
	assert.False(t, ok)
	assert.NoError(t, d.sqlMock.ExpectationsWereMet())
}

func TestAccrualService_RunAccrual_CappedCreditWritesNoEvent(t *testing.T) {
	d := setupAccrualTest(t)
	full := newAccrualEmployee("indah", "1000")
	b := testDefaults.NewBalance(full.ID, balance.LeaveTypePaid)
	b.Accrued = balance.Days(24)
	d.balances.Put(b)

	inactive := newAccrualEmployee("joko", "1000")
	inactive.IsActive = false
	d.empRepo.EXPECT().ListAccrualCandidates(gomock.Any(), gomock.Any()).
		Return([]employee.Employee{full, inactive}, nil)

	expectTxs(d.sqlMock, true)
	resp, err := d.service.RunAccrual(context.Background(), "2026-05")
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, balance.Days(24), d.available(t, full))
	assert.Empty(t, d.outbox.Events())
	assert.Len(t, d.repo.markers, 1)
}

func TestAccrualService_RunAccrual_Refusals(t *testing.T) {
	d := setupAccrualTest(t)
	ctx := context.Background()

	_, err := d.service.RunAccrual(ctx, "March")
	assert.ErrorIs(t, err, accrualerrors.ErrInvalidMonth)

	d.lease.held["leave:accrual:run"] = "someone-else"
	_, err = d.service.RunAccrual(ctx, "2026-06")
	assert.ErrorIs(t, err, accrualerrors.ErrRunInProgress)
	_, err = d.service.GetRun(ctx, "2026-06")
	assert.ErrorIs(t, err, accrualerrors.ErrRunNotFound)
}

func TestAccrualService_RunAccrual_CandidateQueryFails(t *testing.T) {
	d := setupAccrualTest(t)
	d.empRepo.EXPECT().ListAccrualCandidates(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("boom"))

	_, err := d.service.RunAccrual(context.Background(), "2026-07")
	assert.Error(t, err)

	run, err := d.service.GetRun(context.Background(), "2026-07")
	assert.NoError(t, err)
	assert.Equal(t, "FAILED", run.Status)
	assert.Equal(t, "boom", run.LastError)
	assert.NotNil(t, run.FinishedAt)
	assert.Equal(t, 1, d.lease.released)
}

func TestAccrualService_RunAccrual_EndsBeforeLeaseExpires(t *testing.T) {
	d := setupAccrualTest(t, func(o *accrual.Options) { o.LeaseTTL = 50 * time.Millisecond })
	started := time.Now()

	var deadline time.Time
	d.empRepo.EXPECT().ListAccrualCandidates(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ time.Time) ([]employee.Employee, error) {
			deadline, _ = ctx.Deadline()
			return []employee.Employee{newAccrualEmployee("fajar", "2500")}, nil
		})
	// The employee's transaction cannot start before the run budget is spent.
	d.sqlMock.ExpectBegin().WillDelayFor(time.Second)

	// Parent context has no deadline, like the admin endpoint.
	_, err := d.service.RunAccrual(context.Background(), "2026-08")

	assert.ErrorIs(t, err, apperror.ErrTimeout)
	assert.False(t, deadline.IsZero())
	assert.True(t, deadline.Before(d.lease.acquiredAt.Add(50*time.Millisecond)))
	assert.Less(t, time.Since(started), time.Second)

	run, err := d.service.GetRun(context.Background(), "2026-08")
	assert.NoError(t, err)
	assert.Equal(t, "FAILED", run.Status)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 1, d.lease.released)
}
