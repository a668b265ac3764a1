package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
	"github.com/iota-uz/payroll-bot/modules/access/domain/permission"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/pkg/authz"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

// ErrOutOfScope is a denial caused by the target employee, not the action. It also matches authz.ErrForbidden.
var ErrOutOfScope = serrors.NewError("ACCESS_OUT_OF_SCOPE", "employee is outside of your scope", "Authorization.OutOfScope")

// AccessGate answers whether an identity may perform an action, optionally on one employee.
type AccessGate struct {
	enforcer *authz.Service
	logger   *logrus.Entry
}

// NewAccessGate builds the enforcer from permission.Table.
func NewAccessGate(logger *logrus.Logger) (*AccessGate, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	enforcer, err := authz.NewService(permission.Policy(), logger)
	if err != nil {
		return nil, err
	}
	return &AccessGate{
		enforcer: enforcer,
		logger:   logger.WithField("component", "access-gate"),
	}, nil
}

func (g *AccessGate) Authorize(ctx context.Context, who identity.Identity, action permission.Action) error {
	return g.enforcer.Authorize(ctx, authz.NewRequest(who.Role.String(), action.String()))
}

// Allowed is Authorize without the error, for menu building.
func (g *AccessGate) Allowed(ctx context.Context, who identity.Identity, action permission.Action) bool {
	ok, err := g.enforcer.Check(ctx, authz.NewRequest(who.Role.String(), action.String()))
	if err != nil {
		g.logger.WithError(err).Error("authz check failed")
		return false
	}
	return ok
}

// AuthorizeEmployee checks the action and then the scope on target. Managers reach
// employees of their departments, employees reach only themselves.
func (g *AccessGate) AuthorizeEmployee(ctx context.Context, who identity.Identity, action permission.Action, target employee.Employee) error {
	if err := g.Authorize(ctx, who, action); err != nil {
		return err
	}
	if InScope(who, target) {
		return nil
	}
	g.logger.WithFields(logrus.Fields{
		"external_id": who.ExternalID,
		"role":        who.Role,
		"action":      action,
		"employee_id": target.ID,
	}).Warn("employee outside of scope")
	return ErrOutOfScope.WithTemplateData(map[string]string{
		"action":   action.String(),
		"employee": target.FullName,
	}).Wrap(authz.ErrForbidden)
}

// InScope reports whether target is reachable by who, ignoring the action.
func InScope(who identity.Identity, target employee.Employee) bool {
	switch who.Role {
	case identity.RoleSuperAdmin:
		return true
	case identity.RoleManager:
		return who.Manages(target.DepartmentID)
	case identity.RoleEmployee:
		return who.EmployeeID != 0 && who.EmployeeID == target.ID
	default:
		return false
	}
}
