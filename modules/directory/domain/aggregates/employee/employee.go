package employee

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// Badges prefix employee names in menus.
const (
	EmployeeBadge = "👤"
	ManagerBadge  = "👔"
)

var (
	ErrEmployeeNotFound = serrors.NewError("EMPLOYEE_NOT_FOUND", "employee not found", "Errors.EmployeeNotFound")
	ErrExternalIDTaken  = serrors.NewError("EMPLOYEE_EXTERNAL_ID_TAKEN", "external id is bound to another active employee", "Errors.ExternalIDTaken")
	ErrInactive         = serrors.NewError("EMPLOYEE_INACTIVE", "employee is deactivated", "Errors.EmployeeInactive")
)

type Employee struct {
	ID           int64
	FullName     string
	ExternalID   *int64
	DepartmentID int64
	Role         Role
	Position     string
	Salary       decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e Employee) Badge() string {
	if e.Role == RoleManager {
		return ManagerBadge
	}
	return EmployeeBadge
}

// Label is the list-menu text, e.g. "👤 Ivan Petrov".
func (e Employee) Label() string {
	return e.Badge() + " " + e.FullName
}

// QualifiedLabel identifies the employee unambiguously, e.g. "12: Ivan Petrov (Developer)".
func (e Employee) QualifiedLabel() string {
	label := strconv.FormatInt(e.ID, 10) + ": " + e.FullName
	if e.Position != "" {
		label += " (" + e.Position + ")"
	}
	return label
}

func (e Employee) BoundTo(externalID int64) bool {
	return e.ExternalID != nil && *e.ExternalID == externalID
}

// Selection is what a user typed or tapped to pick an employee.
type Selection struct {
	ID   int64
	Name string
}

// ParseSelection accepts "<id>: <name>" labels, badge-prefixed names and bare names.
func ParseSelection(text string) Selection {
	text = strings.TrimSpace(text)
	if head, tail, ok := strings.Cut(text, ":"); ok {
		if id, err := strconv.ParseInt(strings.TrimSpace(head), 10, 64); err == nil && id > 0 {
			name := strings.TrimSpace(tail)
			if i := strings.LastIndex(name, " ("); i > 0 && strings.HasSuffix(name, ")") {
				name = name[:i]
			}
			return Selection{ID: id, Name: name}
		}
	}
	return Selection{Name: NormalizeName(text)}
}

// NormalizeName strips decorative badges and collapses whitespace.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	for _, badge := range []string{EmployeeBadge, ManagerBadge} {
		name = strings.TrimPrefix(name, badge)
	}
	return strings.Join(strings.Fields(name), " ")
}

type FindParams struct {
	// DepartmentID restricts results to one department; zero means all departments.
	DepartmentID int64
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (Employee, error)
	ListActive(ctx context.Context, params FindParams) ([]Employee, error)
	FindActiveByName(ctx context.Context, name string, params FindParams) ([]Employee, error)
	FindActiveByExternalID(ctx context.Context, externalID int64) (Employee, error)
	ManagedDepartmentIDs(ctx context.Context, externalID int64) ([]int64, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	UpdateSalary(ctx context.Context, id int64, salary decimal.Decimal) error
	BindExternalID(ctx context.Context, id int64, externalID int64) error
	UpdateRole(ctx context.Context, id int64, role Role) error
	Deactivate(ctx context.Context, id int64) error
}
