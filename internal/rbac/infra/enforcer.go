package infra

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// rolePolicies is the complete role table. Managers inherit employee
// permissions and admins inherit manager permissions.
var rolePolicies = [][]string{
	{RoleEmployee, "employee", "read_self"},
	{RoleEmployee, "leave", "submit"},
	{RoleEmployee, "leave", "cancel"},
	{RoleEmployee, "leave", "read"},
	{RoleEmployee, "balance", "read"},
	{RoleEmployee, "calendar", "read"},
	{RoleEmployee, "notification", "stream"},

	{RoleManager, "employee", "read_reports"},
	{RoleManager, "leave", "decide"},
	{RoleManager, "leave", "read_pending"},

	{RoleAdmin, "accrual", "run"},
	{RoleAdmin, "accrual", "read"},
	{RoleAdmin, "notification", "read"},
	{RoleAdmin, "rbac", "read"},
}

var roleInheritance = [][]string{
	{RoleManager, RoleEmployee},
	{RoleAdmin, RoleManager},
}

// NewEnforcer builds the enforcer from the in-code model and policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := e.AddPolicies(rolePolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicies(roleInheritance); err != nil {
		return nil, err
	}
	return e, nil
}
