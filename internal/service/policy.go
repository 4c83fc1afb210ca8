package service

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/pageza/ticketdesk/backend/internal/models"
)

// Policy objects.
const (
	ObjTicket   = "ticket"
	ObjCategory = "category"
)

// Policy actions.
const (
	ActRead       = "read"
	ActCreate     = "create"
	ActRespond    = "respond"
	ActResolve    = "resolve"
	ActPrioritize = "prioritize"
	ActManage     = "manage"
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

var defaultPolicies = [][]string{
	{models.RoleUser, ObjTicket, ActRead},
	{models.RoleUser, ObjTicket, ActCreate},
	{models.RoleUser, ObjTicket, ActRespond},
	{models.RoleUser, ObjTicket, ActResolve},
	{models.RoleAdmin, ObjTicket, ActPrioritize},
	{models.RoleAdmin, ObjCategory, ActManage},
}

// Authorizer answers role based permission questions. Subjects are user roles;
// admin inherits every user permission.
type Authorizer struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
}

func NewAuthorizer() (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("failed to add policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicy(models.RoleAdmin, models.RoleUser); err != nil {
		return nil, fmt.Errorf("failed to add role inheritance: %w", err)
	}

	return &Authorizer{enforcer: enforcer}, nil
}

// Can reports whether role may perform act on obj.
func (a *Authorizer) Can(role, obj, act string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	allowed, err := a.enforcer.Enforce(role, obj, act)
	if err != nil {
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}

// Require returns ErrUnauthorized for a nil user and ErrForbidden when the
// user's role lacks the permission.
func (a *Authorizer) Require(user *models.User, obj, act string) error {
	if user == nil {
		return ErrUnauthorized
	}
	allowed, err := a.Can(user.Type, obj, act)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

// HasRole reports whether subject is role or inherits it.
func (a *Authorizer) HasRole(subject, role string) bool {
	if subject == role {
		return true
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	ok, err := a.enforcer.HasRoleForUser(subject, role)
	return err == nil && ok
}
