package persistence

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
)

// MemoryStore keeps departments and employees in process. It enforces the same
// uniqueness rules as the Postgres schema and backs tests and local runs without a database.
type MemoryStore struct {
	mu          sync.RWMutex
	departments []department.Department
	employees   []employee.Employee
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Departments() department.Repository {
	return &memoryDepartments{m}
}

func (m *MemoryStore) Employees() employee.Repository {
	return &memoryEmployees{m}
}

type memoryDepartments struct{ *MemoryStore }

func (r *memoryDepartments) List(ctx context.Context) ([]department.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.departments), nil
}

func (r *memoryDepartments) GetByID(ctx context.Context, id int64) (department.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return department.Department{}, department.ErrDepartmentNotFound
}

func (r *memoryDepartments) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.departments)), nil
}

func (r *memoryDepartments) Create(ctx context.Context, d department.Department) (department.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.departments {
		if existing.Name == d.Name {
			return department.Department{}, department.ErrDepartmentExists.
				WithTemplateData(map[string]string{"Name": d.Name})
		}
	}
	d.ID = int64(len(r.departments) + 1)
	d.CreatedAt = time.Now().UTC()
	r.departments = append(r.departments, d)
	return d, nil
}

type memoryEmployees struct{ *MemoryStore }

func (r *memoryEmployees) find(id int64) (int, bool) {
	for i, e := range r.employees {
		if e.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (r *memoryEmployees) filter(keep func(employee.Employee) bool) []employee.Employee {
	var out []employee.Employee
	for _, e := range r.employees {
		if e.IsActive && keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r *memoryEmployees) externalIDTaken(externalID int64, exceptID int64) bool {
	for _, e := range r.employees {
		if e.IsActive && e.ID != exceptID && e.BoundTo(externalID) {
			return true
		}
	}
	return false
}

func (r *memoryEmployees) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.find(id); ok {
		return r.employees[i], nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *memoryEmployees) ListActive(ctx context.Context, params employee.FindParams) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.filter(func(e employee.Employee) bool {
		return params.DepartmentID == 0 || e.DepartmentID == params.DepartmentID
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FullName == out[j].FullName {
			return out[i].ID < out[j].ID
		}
		return out[i].FullName < out[j].FullName
	})
	return out, nil
}

func (r *memoryEmployees) FindActiveByName(ctx context.Context, name string, params employee.FindParams) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name = employee.NormalizeName(name)
	return r.filter(func(e employee.Employee) bool {
		return strings.EqualFold(e.FullName, name) &&
			(params.DepartmentID == 0 || e.DepartmentID == params.DepartmentID)
	}), nil
}

func (r *memoryEmployees) FindActiveByExternalID(ctx context.Context, externalID int64) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := r.filter(func(e employee.Employee) bool { return e.BoundTo(externalID) })
	if len(found) == 0 {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return found[0], nil
}

func (r *memoryEmployees) ManagedDepartmentIDs(ctx context.Context, externalID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []int64
	for _, e := range r.filter(func(e employee.Employee) bool {
		return e.Role == employee.RoleManager && e.BoundTo(externalID)
	}) {
		if !slices.Contains(ids, e.DepartmentID) {
			ids = append(ids, e.DepartmentID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *memoryEmployees) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.ContainsFunc(r.departments, func(d department.Department) bool { return d.ID == e.DepartmentID }) {
		return employee.Employee{}, department.ErrDepartmentNotFound
	}
	if e.ExternalID != nil && r.externalIDTaken(*e.ExternalID, 0) {
		return employee.Employee{}, employee.ErrExternalIDTaken
	}
	now := time.Now().UTC()
	e.ID = int64(len(r.employees) + 1)
	e.IsActive = true
	e.CreatedAt, e.UpdatedAt = now, now
	r.employees = append(r.employees, e)
	return e, nil
}

func (r *memoryEmployees) update(id int64, fn func(e *employee.Employee) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.find(id)
	if !ok || !r.employees[i].IsActive {
		return employee.ErrEmployeeNotFound
	}
	e := r.employees[i]
	if err := fn(&e); err != nil {
		return err
	}
	e.UpdatedAt = time.Now().UTC()
	r.employees[i] = e
	return nil
}

func (r *memoryEmployees) UpdateSalary(ctx context.Context, id int64, salary decimal.Decimal) error {
	return r.update(id, func(e *employee.Employee) error {
		e.Salary = salary
		return nil
	})
}

func (r *memoryEmployees) BindExternalID(ctx context.Context, id int64, externalID int64) error {
	return r.update(id, func(e *employee.Employee) error {
		if r.externalIDTaken(externalID, id) {
			return employee.ErrExternalIDTaken
		}
		e.ExternalID = &externalID
		return nil
	})
}

func (r *memoryEmployees) UpdateRole(ctx context.Context, id int64, role employee.Role) error {
	return r.update(id, func(e *employee.Employee) error {
		e.Role = role
		return nil
	})
}

func (r *memoryEmployees) Deactivate(ctx context.Context, id int64) error {
	return r.update(id, func(e *employee.Employee) error {
		e.IsActive = false
		return nil
	})
}
