package service

import (
	"fmt"
	"log"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/sliramanoel/venda/internal/model"
)

// Protected resources and actions
const (
	ResourceOrders    = "orders"
	ResourceSettings  = "settings"
	ResourceAnalytics = "analytics"
	ResourceUsers     = "users"

	ActionRead  = "read"
	ActionWrite = "write"
)

const rbacModel = `
[request_definition]
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

// Operators run the shop day to day; admins additionally own content and accounts.
var (
	defaultPolicies = [][]string{
		{model.RoleOperator, ResourceOrders, ActionRead},
		{model.RoleOperator, ResourceOrders, ActionWrite},
		{model.RoleOperator, ResourceAnalytics, ActionRead},
		{model.RoleOperator, ResourceSettings, ActionRead},
		{model.RoleAdmin, ResourceSettings, ActionWrite},
		{model.RoleAdmin, ResourceUsers, ActionRead},
		{model.RoleAdmin, ResourceUsers, ActionWrite},
	}
	defaultRoleInheritance = [][]string{
		{model.RoleAdmin, model.RoleOperator},
	}
)

// AuthorizationService answers role based permission checks through casbin
type AuthorizationService struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizationService builds the RBAC enforcer from the embedded model and policies
func NewAuthorizationService() (*AuthorizationService, error) {
	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RBAC model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RBAC enforcer: %w", err)
	}

	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("failed to load RBAC policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicies(defaultRoleInheritance); err != nil {
		return nil, fmt.Errorf("failed to load RBAC roles: %w", err)
	}

	return &AuthorizationService{enforcer: enforcer}, nil
}

// CheckPermission reports whether the user's role may perform action on resource
func (s *AuthorizationService) CheckPermission(user *model.AdminUser, resource, action string) (bool, error) {
	allowed, err := s.enforcer.Enforce(user.Role, resource, action)
	if err != nil {
		return false, fmt.Errorf("RBAC permission check failed: %w", err)
	}
	if !allowed {
		log.Printf("[AUTHZ] denied %s (%s) %s on %s", user.Email, user.Role, action, resource)
	}
	return allowed, nil
}

// GetRolePermissions lists the effective permissions of a role, inherited ones included
func (s *AuthorizationService) GetRolePermissions(role string) ([][]string, error) {
	permissions, err := s.enforcer.GetImplicitPermissionsForUser(role)
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}
	return permissions, nil
}
