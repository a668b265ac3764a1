package services

import (
	"errors"

	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	dirservices "github.com/iota-uz/payroll-bot/modules/directory/services"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	"github.com/iota-uz/payroll-bot/pkg/authz"
	"github.com/iota-uz/payroll-bot/pkg/money"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

var (
	ErrNoSelection         = serrors.NewError("DIALOGUE_NO_SELECTION", "no employee is selected", "Errors.NoSelection")
	ErrNoManagedDepartment = serrors.NewError("DIALOGUE_NO_MANAGED_DEPARTMENT", "manager has no department", "Errors.NoManagedDepartment")
	ErrNoDepartments       = serrors.NewError("DIALOGUE_NO_DEPARTMENTS", "no departments exist", "Errors.NoDepartments")
	ErrInvalidInput        = serrors.NewError("DIALOGUE_INVALID_INPUT", "input rejected", "")
)

// Class decides what a failed turn does to the conversation.
type Class int

const (
	// ClassValidation re-prompts the current step.
	ClassValidation Class = iota + 1
	// ClassAuthorization refuses and aborts the flow; pins stay.
	ClassAuthorization
	// ClassNotFound reports the missing entity and clears the context.
	ClassNotFound
	// ClassConflict reports the clash and clears the context.
	ClassConflict
	// ClassStore is logged, answered with the generic failure and clears the context.
	ClassStore
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassAuthorization:
		return "authorization"
	case ClassNotFound:
		return "not_found"
	case ClassConflict:
		return "conflict"
	default:
		return "store"
	}
}

func Classify(err error) Class {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		return ClassAuthorization
	case isAny(err,
		serrors.ErrValidation,
		ErrInvalidInput,
		money.ErrInvalidAmount,
		money.ErrTooPrecise,
		money.ErrNotPositive,
		money.ErrNegativeAmount,
		money.ErrTooLarge,
		department.ErrEmptyName,
		dirservices.ErrNegativeSalary,
		accrual.ErrNonPositive,
		accrual.ErrInvalidKind,
		accrual.ErrInvalidPeriod,
	):
		return ClassValidation
	case isAny(err,
		ErrNoSelection,
		ErrNoManagedDepartment,
		ErrNoDepartments,
		employee.ErrEmployeeNotFound,
		employee.ErrInactive,
		department.ErrDepartmentNotFound,
	):
		return ClassNotFound
	case isAny(err, department.ErrDepartmentExists, employee.ErrExternalIDTaken):
		return ClassConflict
	default:
		return ClassStore
	}
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
