package employee

import (
	"context"
	"strings"

	employeeerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Resolve(ctx context.Context, q IdentityQuery) (*Employee, error)
	GetProfile(ctx context.Context, id string) (EmployeeResponse, error)
	ListReports(ctx context.Context, managerID string) ([]EmployeeResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, logger: l}
}

// Resolve looks an employee up by exact primary key when q.ID is set, and by
// exact (case-insensitive) email only when it is not. The two are never
// combined into one query.
func (s *service) Resolve(ctx context.Context, q IdentityQuery) (*Employee, error) {
	id := strings.TrimSpace(q.ID)
	email := strings.TrimSpace(q.Email)

	switch {
	case id != "":
		if _, err := uuid.Parse(id); err != nil {
			return nil, employeeerrors.ErrInvalidEmployeeID
		}
		e, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		return e, nil
	case email != "":
		e, err := s.repo.FindByEmail(ctx, email)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		return e, nil
	default:
		return nil, employeeerrors.ErrIdentityRequired
	}
}

func (s *service) GetProfile(ctx context.Context, id string) (EmployeeResponse, error) {
	e, err := s.Resolve(ctx, IdentityQuery{ID: id})
	if err != nil {
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) ListReports(ctx context.Context, managerID string) ([]EmployeeResponse, error) {
	if _, err := uuid.Parse(managerID); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}
	emps, err := s.repo.ListReports(ctx, managerID)
	if err != nil {
		s.logger.Error("list reports failed", zap.String("manager_id", managerID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(emps), nil
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:              e.ID.String(),
		FullName:        e.FullName,
		Email:           e.Email,
		JoinDate:        e.JoinDate.Format("2006-01-02"),
		AccrualEligible: e.AccrualEligible,
		IsActive:        e.IsActive,
		Locale:          e.Locale,
	}
	if e.ManagerID != nil {
		v := e.ManagerID.String()
		resp.ManagerID = &v
	}
	return resp
}

func mapToListResponse(emps []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		resp[i] = mapToResponse(e)
	}
	return resp
}
