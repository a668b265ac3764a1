package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
)

// EmployeeLookup is the part of the directory the resolver reads.
type EmployeeLookup interface {
	FindActiveByExternalID(ctx context.Context, externalID int64) (employee.Employee, error)
	ManagedDepartmentIDs(ctx context.Context, externalID int64) ([]int64, error)
}

// IdentityResolver maps an external user id to a role and scope.
type IdentityResolver struct {
	superAdmins map[int64]struct{}
	directory   EmployeeLookup
	logger      *logrus.Entry
}

func NewIdentityResolver(superAdminIDs []int64, directory EmployeeLookup, logger *logrus.Logger) *IdentityResolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	admins := make(map[int64]struct{}, len(superAdminIDs))
	for _, id := range superAdminIDs {
		admins[id] = struct{}{}
	}
	return &IdentityResolver{
		superAdmins: admins,
		directory:   directory,
		logger:      logger.WithField("component", "identity-resolver"),
	}
}

// Resolve never fails: directory errors are logged and resolve to Unknown.
func (r *IdentityResolver) Resolve(ctx context.Context, externalID int64) identity.Identity {
	if _, ok := r.superAdmins[externalID]; ok {
		return identity.Identity{ExternalID: externalID, Role: identity.RoleSuperAdmin}
	}

	e, err := r.directory.FindActiveByExternalID(ctx, externalID)
	if err != nil {
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			r.logger.WithError(err).WithField("external_id", externalID).Error("identity lookup failed")
		}
		return identity.Unknown(externalID)
	}

	switch e.Role {
	case employee.RoleManager:
		departments, err := r.directory.ManagedDepartmentIDs(ctx, externalID)
		if err != nil {
			r.logger.WithError(err).WithField("external_id", externalID).Error("manager scope lookup failed")
			return identity.Unknown(externalID)
		}
		if len(departments) == 0 {
			departments = []int64{e.DepartmentID}
		}
		return identity.Identity{
			ExternalID:    externalID,
			Role:          identity.RoleManager,
			DepartmentIDs: departments,
			EmployeeID:    e.ID,
		}
	case employee.RoleEmployee:
		return identity.Identity{
			ExternalID: externalID,
			Role:       identity.RoleEmployee,
			EmployeeID: e.ID,
		}
	default:
		r.logger.WithField("external_id", externalID).WithField("role", e.Role).Warn("employee has unknown role")
		return identity.Unknown(externalID)
	}
}
