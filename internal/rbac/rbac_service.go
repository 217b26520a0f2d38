package rbac

import (
	"strings"
	"sync"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
	Policies() ([]domain.PolicyResponse, error)
	Roles() ([]domain.RoleResponse, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, logger: l}
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		return false, nil
	}

	allowed, err := s.enforcer.Enforce(role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Policies() ([]domain.PolicyResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.enforcer.GetPolicy()
	if err != nil {
		return nil, err
	}
	out := make([]domain.PolicyResponse, 0, len(rows))
	for _, p := range rows {
		if len(p) < 3 {
			continue
		}
		out = append(out, domain.PolicyResponse{Role: p[0], Resource: p[1], Action: p[2]})
	}
	return out, nil
}

func (s *service) Roles() ([]domain.RoleResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.enforcer.GetGroupingPolicy()
	if err != nil {
		return nil, err
	}
	inherits := map[string][]string{}
	order := []string{}
	for _, g := range rows {
		if len(g) < 2 {
			continue
		}
		if _, ok := inherits[g[0]]; !ok {
			order = append(order, g[0])
		}
		inherits[g[0]] = append(inherits[g[0]], g[1])
	}
	out := make([]domain.RoleResponse, 0, len(order))
	for _, role := range order {
		out = append(out, domain.RoleResponse{Name: role, Inherits: inherits[role]})
	}
	return out, nil
}
