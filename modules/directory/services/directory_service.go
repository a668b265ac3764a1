package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/eventbus"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

var inTxFn = composables.InTx

var ErrNegativeSalary = serrors.NewError("EMPLOYEE_NEGATIVE_SALARY", "salary must not be negative", "Errors.AmountNegative")

// DirectoryService owns departments and employees.
type DirectoryService struct {
	departments department.Repository
	employees   employee.Repository
	publisher   eventbus.EventBus
}

func NewDirectoryService(departments department.Repository, employees employee.Repository, publisher eventbus.EventBus) *DirectoryService {
	return &DirectoryService{
		departments: departments,
		employees:   employees,
		publisher:   publisher,
	}
}

func (s *DirectoryService) ListDepartments(ctx context.Context) ([]department.Department, error) {
	return s.departments.List(ctx)
}

func (s *DirectoryService) GetDepartment(ctx context.Context, id int64) (department.Department, error) {
	return s.departments.GetByID(ctx, id)
}

// ListActiveEmployees lists active employees ordered by name; departmentID zero lists everyone.
func (s *DirectoryService) ListActiveEmployees(ctx context.Context, departmentID int64) ([]employee.Employee, error) {
	return s.employees.ListActive(ctx, employee.FindParams{DepartmentID: departmentID})
}

// FindActiveByName returns every active employee with that name so callers can detect ambiguity.
func (s *DirectoryService) FindActiveByName(ctx context.Context, name string, departmentID int64) ([]employee.Employee, error) {
	name = employee.NormalizeName(name)
	if name == "" {
		return nil, nil
	}
	return s.employees.FindActiveByName(ctx, name, employee.FindParams{DepartmentID: departmentID})
}

func (s *DirectoryService) GetEmployee(ctx context.Context, id int64) (employee.Employee, error) {
	return s.employees.GetByID(ctx, id)
}

func (s *DirectoryService) FindActiveByExternalID(ctx context.Context, externalID int64) (employee.Employee, error) {
	return s.employees.FindActiveByExternalID(ctx, externalID)
}

func (s *DirectoryService) ManagedDepartmentIDs(ctx context.Context, externalID int64) ([]int64, error) {
	return s.employees.ManagedDepartmentIDs(ctx, externalID)
}

func (s *DirectoryService) CreateDepartment(ctx context.Context, actorID int64, name, emoji string) (department.Department, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return department.Department{}, department.ErrEmptyName
	}
	var created department.Department
	err := inTxFn(ctx, func(txCtx context.Context) error {
		d, err := s.departments.Create(txCtx, department.Department{Name: name, Emoji: strings.TrimSpace(emoji)})
		if err != nil {
			return err
		}
		created = d
		return nil
	})
	if err != nil {
		return department.Department{}, err
	}
	s.publisher.Publish(department.NewCreatedEvent(created, actorID))
	return created, nil
}

func (s *DirectoryService) CreateEmployee(ctx context.Context, actorID int64, data *employee.CreateDTO) (employee.Employee, error) {
	if err := data.Validate(); err != nil {
		return employee.Employee{}, err
	}
	var created employee.Employee
	err := inTxFn(ctx, func(txCtx context.Context) error {
		if _, err := s.departments.GetByID(txCtx, data.DepartmentID); err != nil {
			return err
		}
		e, err := s.employees.Create(txCtx, data.ToEntity())
		if err != nil {
			return err
		}
		created = e
		return nil
	})
	if err != nil {
		return employee.Employee{}, err
	}
	s.publisher.Publish(employee.NewCreatedEvent(actorID, created))
	return created, nil
}

// SetSalary overwrites the informational salary figure. It does not touch the ledger.
func (s *DirectoryService) SetSalary(ctx context.Context, actorID, employeeID int64, salary decimal.Decimal) error {
	if salary.IsNegative() {
		return ErrNegativeSalary
	}
	if err := inTxFn(ctx, func(txCtx context.Context) error {
		return s.employees.UpdateSalary(txCtx, employeeID, salary)
	}); err != nil {
		return err
	}
	s.publisher.Publish(employee.NewSalaryChangedEvent(actorID, employeeID, salary))
	return nil
}

func (s *DirectoryService) BindExternalID(ctx context.Context, actorID, employeeID, externalID int64) error {
	if err := inTxFn(ctx, func(txCtx context.Context) error {
		holder, err := s.employees.FindActiveByExternalID(txCtx, externalID)
		switch {
		case err == nil && holder.ID != employeeID:
			return employee.ErrExternalIDTaken
		case err != nil && !errors.Is(err, employee.ErrEmployeeNotFound):
			return err
		}
		return s.employees.BindExternalID(txCtx, employeeID, externalID)
	}); err != nil {
		return err
	}
	s.publisher.Publish(employee.NewIdentityBoundEvent(actorID, employeeID, externalID))
	return nil
}

func (s *DirectoryService) SetRole(ctx context.Context, actorID, employeeID int64, role employee.Role) error {
	if !role.Valid() {
		return serrors.ErrValidation
	}
	if err := inTxFn(ctx, func(txCtx context.Context) error {
		return s.employees.UpdateRole(txCtx, employeeID, role)
	}); err != nil {
		return err
	}
	s.publisher.Publish(employee.NewRoleChangedEvent(actorID, employeeID, role))
	return nil
}

// Deactivate hides the employee from lists and frees its external id. Ledger rows stay.
func (s *DirectoryService) Deactivate(ctx context.Context, actorID, employeeID int64) error {
	if err := inTxFn(ctx, func(txCtx context.Context) error {
		return s.employees.Deactivate(txCtx, employeeID)
	}); err != nil {
		return err
	}
	s.publisher.Publish(employee.NewDeactivatedEvent(actorID, employeeID))
	return nil
}
