package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/bootstrap"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"
	employeeerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"
	leaveerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/leave/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/contextutil"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	roleAdmin  = "admin"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, employeeID string, req SubmitLeaveRequest) (LeaveResponse, error)
	Decide(ctx context.Context, id, deciderID string, req DecisionRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, id, employeeID string) (LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	ListMine(ctx context.Context, employeeID, status string) ([]LeaveResponse, error)
	ListPending(ctx context.Context, managerID string) ([]LeaveResponse, error)
}

type Options struct {
	// CallTimeout bounds every mutating call. Zero means no budget.
	CallTimeout time.Duration
	Audit       bootstrap.AuditLogger
}

type service struct {
	db      *sql.DB
	repo    Repository
	empRepo employee.Repository
	ledger  balance.Ledger
	outbox  notification.OutboxRepository
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	empRepo employee.Repository,
	ledger balance.Ledger,
	outbox notification.OutboxRepository,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if opts.Audit == nil {
		opts.Audit = bootstrap.NewStdoutAuditLogger(l)
	}
	return &service{
		db:      db,
		repo:    repo,
		empRepo: empRepo,
		ledger:  ledger,
		outbox:  outbox,
		opts:    opts,
		logger:  l,
		now:     time.Now,
	}
}

func (s *service) budget(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.CallTimeout)
}

func (s *service) Submit(ctx context.Context, employeeID string, req SubmitLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("submit leave requested",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	leaveType, err := balance.ParseLeaveType(req.LeaveType)
	if err != nil {
		return LeaveResponse{}, err
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if actor, ok := contextutil.GetActor(ctx); ok && actor.EmployeeID != employeeID && actor.Role != roleAdmin {
		s.denied(ctx, "LEAVE_SUBMIT_DENIED", "", employeeID)
		return LeaveResponse{}, leaveerrors.ErrNotAuthorized
	}

	ctx, cancel := s.budget(ctx)
	defer cancel()

	app, err := s.submit(ctx, empUUID, leaveType, startDate, endDate, req.Reason)
	if err != nil {
		err = budgetError(ctx, err)
		log.Warn("submit leave failed", zap.String("employee_id", employeeID), zap.Error(err))
		return LeaveResponse{}, err
	}

	log.Info("leave submitted",
		zap.String("leave_id", app.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("leave_type", string(leaveType)),
		zap.Int("total_days", app.TotalDays),
	)
	return mapToResponse(*app), nil
}

// submit locks the applicant row first, so two submissions by the same
// employee cannot both pass the overlap check.
func (s *service) submit(ctx context.Context, employeeID uuid.UUID, leaveType balance.LeaveType, startDate, endDate time.Time, reason string) (*LeaveApplication, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, dberr.Translate(err)
	}
	defer tx.Rollback()

	emps := s.empRepo.WithTx(tx)
	applicant, err := emps.LockByID(ctx, employeeID.String())
	if err != nil {
		return nil, mapEmployeeError(err)
	}
	if !applicant.IsActive {
		return nil, employeeerrors.ErrEmployeeInactive
	}
	if applicant.ManagerID == nil {
		return nil, leaveerrors.ErrNoManager
	}
	manager, err := emps.FindByID(ctx, applicant.ManagerID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrNoManager
		}
		return nil, dberr.Translate(err)
	}

	qtx := s.repo.WithTx(tx)
	overlap, err := qtx.HasOverlappingPeriod(ctx, employeeID.String(), startDate, endDate)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if overlap {
		return nil, leaveerrors.ErrLeaveOverlap
	}

	now := s.now().UTC()
	totalDays := InclusiveDays(startDate, endDate)
	app := &LeaveApplication{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		LeaveType:   leaveType,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalDays:   totalDays,
		Reserved:    balance.Days(totalDays),
		Reason:      reason,
		Status:      StatusSubmitted,
		RequestedAt: now,
		UpdatedAt:   now,
	}

	if _, err := s.ledger.WithTx(tx).Debit(ctx, employeeID.String(), leaveType, app.Reserved); err != nil {
		return nil, err
	}
	if err := qtx.Create(ctx, app); err != nil {
		return nil, mapRepositoryError(err)
	}

	routing := notification.Routing{
		Email:    []notification.Recipient{recipientOf(*manager)},
		Realtime: []notification.Recipient{recipientOf(*manager), recipientOf(*applicant)},
		Bus:      true,
	}
	if err := s.appendEvent(ctx, tx, notification.KindSubmitted, *app, *applicant, manager, routing, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, dberr.Translate(err)
	}
	return app, nil
}

func (s *service) Decide(ctx context.Context, id, deciderID string, req DecisionRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("decide leave requested",
		zap.String("leave_id", id),
		zap.String("decider_id", deciderID),
		zap.String("outcome", req.Outcome),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	deciderUUID, err := uuid.Parse(deciderID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	outcome := Outcome(req.Outcome)
	if outcome != OutcomeApprove && outcome != OutcomeReject {
		return LeaveResponse{}, leaveerrors.ErrInvalidOutcome
	}

	ctx, cancel := s.budget(ctx)
	defer cancel()

	app, err := s.decide(ctx, id, deciderUUID, outcome, req.Comment)
	if err != nil {
		err = budgetError(ctx, err)
		log.Warn("decide leave failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	log.Info("leave decided",
		zap.String("leave_id", id),
		zap.String("decider_id", deciderID),
		zap.String("status", string(app.Status)),
	)
	return mapToResponse(*app), nil
}

func (s *service) decide(ctx context.Context, id string, deciderID uuid.UUID, outcome Outcome, comment string) (*LeaveApplication, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, dberr.Translate(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	app, err := qtx.FindForUpdate(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	emps := s.empRepo.WithTx(tx)
	applicant, err := emps.FindByID(ctx, app.EmployeeID.String())
	if err != nil {
		return nil, mapEmployeeError(err)
	}
	if deciderID == app.EmployeeID || !applicant.IsManagedBy(deciderID) {
		s.denied(ctx, "LEAVE_DECISION_DENIED", id, deciderID.String())
		return nil, leaveerrors.ErrNotAuthorized
	}
	decider, err := emps.FindByID(ctx, deciderID.String())
	if err != nil {
		return nil, mapEmployeeError(err)
	}

	now := s.now().UTC()
	if !app.decide(outcome, deciderID, comment, now) {
		return nil, leaveerrors.ErrInvalidTransition
	}
	if outcome == OutcomeReject {
		if _, err := s.ledger.WithTx(tx).Refund(ctx, app.EmployeeID.String(), app.LeaveType, app.Reserved); err != nil {
			return nil, err
		}
	}
	if err := qtx.Update(ctx, app); err != nil {
		return nil, mapRepositoryError(err)
	}

	kind := notification.KindApproved
	if outcome == OutcomeReject {
		kind = notification.KindRejected
	}
	routing := notification.Routing{
		Email:    []notification.Recipient{recipientOf(*applicant)},
		Realtime: []notification.Recipient{recipientOf(*applicant)},
		Bus:      true,
	}
	if err := s.appendEvent(ctx, tx, kind, *app, *applicant, decider, routing, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, dberr.Translate(err)
	}
	return app, nil
}

func (s *service) Cancel(ctx context.Context, id, employeeID string) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	ctx, cancel := s.budget(ctx)
	defer cancel()

	app, err := s.cancel(ctx, id, empUUID)
	if err != nil {
		err = budgetError(ctx, err)
		log.Warn("cancel leave failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	log.Info("leave cancelled", zap.String("leave_id", id), zap.String("employee_id", employeeID))
	return mapToResponse(*app), nil
}

func (s *service) cancel(ctx context.Context, id string, employeeID uuid.UUID) (*LeaveApplication, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, dberr.Translate(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	app, err := qtx.FindForUpdate(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if app.EmployeeID != employeeID {
		s.denied(ctx, "LEAVE_CANCEL_DENIED", id, employeeID.String())
		return nil, leaveerrors.ErrNotAuthorized
	}

	now := s.now().UTC()
	if !app.cancel(now) {
		return nil, leaveerrors.ErrInvalidTransition
	}
	if _, err := s.ledger.WithTx(tx).Refund(ctx, app.EmployeeID.String(), app.LeaveType, app.Reserved); err != nil {
		return nil, err
	}
	if err := qtx.Update(ctx, app); err != nil {
		return nil, mapRepositoryError(err)
	}

	emps := s.empRepo.WithTx(tx)
	applicant, err := emps.FindByID(ctx, employeeID.String())
	if err != nil {
		return nil, mapEmployeeError(err)
	}
	var manager *employee.Employee
	routing := notification.Routing{Bus: true}
	if applicant.ManagerID != nil {
		manager, err = emps.FindByID(ctx, applicant.ManagerID.String())
		switch {
		case err == nil:
			routing.Email = []notification.Recipient{recipientOf(*manager)}
			routing.Realtime = []notification.Recipient{recipientOf(*manager)}
		case errors.Is(err, gorm.ErrRecordNotFound):
			manager = nil
		default:
			return nil, dberr.Translate(err)
		}
	}
	if err := s.appendEvent(ctx, tx, notification.KindCancelled, *app, *applicant, manager, routing, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, dberr.Translate(err)
	}
	return app, nil
}

// GetByID is visible to the applicant, the applicant's manager and admins.
func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	actor, ok := contextutil.GetActor(ctx)
	if ok && actor.Role != roleAdmin && actor.EmployeeID != app.EmployeeID.String() {
		applicant, err := s.empRepo.FindByID(ctx, app.EmployeeID.String())
		if err != nil {
			return LeaveResponse{}, mapEmployeeError(err)
		}
		actorID, _ := uuid.Parse(actor.EmployeeID)
		if !applicant.IsManagedBy(actorID) {
			return LeaveResponse{}, leaveerrors.ErrNotAuthorized
		}
	}
	return mapToResponse(*app), nil
}

func (s *service) ListMine(ctx context.Context, employeeID, status string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}
	var statuses []Status
	if status != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return nil, leaveerrors.ErrInvalidStatusFilter
		}
		statuses = []Status{st}
	}

	apps, err := s.repo.ListByEmployee(ctx, employeeID, statuses)
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(apps), nil
}

func (s *service) ListPending(ctx context.Context, managerID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}
	apps, err := s.repo.ListPendingForManager(ctx, managerID)
	if err != nil {
		s.logger.Error("list pending leaves failed", zap.String("manager_id", managerID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(apps), nil
}

func (s *service) appendEvent(
	ctx context.Context,
	tx *sql.Tx,
	kind notification.Kind,
	app LeaveApplication,
	applicant employee.Employee,
	manager *employee.Employee,
	routing notification.Routing,
	now time.Time,
) error {
	ev, err := notification.NewEvent(kind, notification.AggregateLeaveApplication, app.ID,
		lifecyclePayload(ctx, app, applicant, manager), routing, now)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Append(ctx, ev); err != nil {
		return dberr.Translate(err)
	}
	return nil
}

func (s *service) denied(ctx context.Context, action, leaveID, actorID string) {
	s.opts.Audit.Log(ctx, bootstrap.AuditLog{
		Action:  action,
		Message: "leave action refused",
		Meta: map[string]any{
			"leave_id": leaveID,
			"actor_id": actorID,
		},
	})
}

func lifecyclePayload(ctx context.Context, app LeaveApplication, applicant employee.Employee, manager *employee.Employee) events.LeaveLifecycleEvent {
	p := events.LeaveLifecycleEvent{
		RequestID:     contextutil.GetRequestID(ctx),
		EmployeeID:    applicant.ID.String(),
		EmployeeName:  applicant.FullName,
		ApplicationID: app.ID.String(),
		LeaveType:     string(app.LeaveType),
		StartDate:     app.StartDate.Format(dateLayout),
		EndDate:       app.EndDate.Format(dateLayout),
		TotalDays:     app.TotalDays,
		Reason:        app.Reason,
		Status:        string(app.Status),
	}
	if manager != nil {
		p.ManagerID = manager.ID.String()
		p.ManagerName = manager.FullName
	}
	if app.DecidedBy != nil {
		p.DecidedBy = app.DecidedBy.String()
	}
	if app.DecisionComment != nil {
		p.Comment = *app.DecisionComment
	}
	return p
}

func recipientOf(e employee.Employee) notification.Recipient {
	return notification.Recipient{EmployeeID: e.ID, Email: e.Email, Locale: e.Locale}
}

func mapEmployeeError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}
	return dberr.Translate(err)
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidRange
	}
	return startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(a LeaveApplication) LeaveResponse {
	resp := LeaveResponse{
		ID:              a.ID.String(),
		EmployeeID:      a.EmployeeID.String(),
		LeaveType:       string(a.LeaveType),
		StartDate:       a.StartDate.Format(dateLayout),
		EndDate:         a.EndDate.Format(dateLayout),
		TotalDays:       a.TotalDays,
		Reserved:        a.Reserved.String(),
		Reason:          a.Reason,
		Status:          string(a.Status),
		RequestedAt:     a.RequestedAt.UTC().Format(time.RFC3339),
		DecisionComment: a.DecisionComment,
	}
	if a.DecidedBy != nil {
		v := a.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if a.DecidedAt != nil {
		v := a.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	if a.CancelledAt != nil {
		v := a.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	return resp
}

func mapToListResponse(apps []LeaveApplication) []LeaveResponse {
	resp := make([]LeaveResponse, len(apps))
	for i, a := range apps {
		resp[i] = mapToResponse(a)
	}
	return resp
}
