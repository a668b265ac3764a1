package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/repo"
)

const (
	employeeColumns = `id, full_name, external_id, department_id, role, position, salary, is_active, created_at, updated_at`

	getEmployeeQuery = `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	listActiveEmployeesQuery = `SELECT ` + employeeColumns + ` FROM employees
		WHERE is_active AND ($1::bigint = 0 OR department_id = $1)
		ORDER BY full_name, id`

	findActiveByNameQuery = `SELECT ` + employeeColumns + ` FROM employees
		WHERE is_active AND lower(full_name) = lower($1) AND ($2::bigint = 0 OR department_id = $2)
		ORDER BY id`

	findActiveByExternalIDQuery = `SELECT ` + employeeColumns + ` FROM employees
		WHERE is_active AND external_id = $1`

	managedDepartmentsQuery = `SELECT DISTINCT department_id FROM employees
		WHERE is_active AND role = 'manager' AND external_id = $1
		ORDER BY department_id`

	insertEmployeeQuery = `INSERT INTO employees (full_name, external_id, department_id, role, position, salary, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING ` + employeeColumns

	updateSalaryQuery   = `UPDATE employees SET salary = $2, updated_at = now() WHERE id = $1 AND is_active`
	bindExternalIDQuery = `UPDATE employees SET external_id = $2, updated_at = now() WHERE id = $1 AND is_active`
	updateRoleQuery     = `UPDATE employees SET role = $2, updated_at = now() WHERE id = $1 AND is_active`
	deactivateQuery     = `UPDATE employees SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_active`

	externalIDUniqueIx = "employees_active_external_id_key"
)

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		e          employee.Employee
		externalID pgtype.Int8
		role       string
		salary     pgtype.Numeric
	)
	if err := row.Scan(
		&e.ID, &e.FullName, &externalID, &e.DepartmentID, &role,
		&e.Position, &salary, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return employee.Employee{}, err
	}
	if externalID.Valid {
		id := externalID.Int64
		e.ExternalID = &id
	}
	e.Role = employee.Role(role)
	amount, err := repo.DecimalFromNumeric(salary)
	if err != nil {
		return employee.Employee{}, err
	}
	e.Salary = amount
	return e, nil
}

func (r *PgEmployeeRepository) queryMany(ctx context.Context, sql string, args ...any) ([]employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to query employees")
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, gerrors.Wrap(err, "failed to scan employee")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "failed to iterate employees")
	}
	return out, nil
}

func (r *PgEmployeeRepository) queryOne(ctx context.Context, sql string, args ...any) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	e, err := scanEmployee(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, gerrors.Wrap(err, "failed to get employee")
	}
	return e, nil
}

func (r *PgEmployeeRepository) exec(ctx context.Context, sql string, args ...any) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		if repo.IsUniqueViolation(err, externalIDUniqueIx) {
			return employee.ErrExternalIDTaken
		}
		return gerrors.Wrap(err, "failed to update employee")
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	return r.queryOne(ctx, getEmployeeQuery, id)
}

func (r *PgEmployeeRepository) ListActive(ctx context.Context, params employee.FindParams) ([]employee.Employee, error) {
	return r.queryMany(ctx, listActiveEmployeesQuery, params.DepartmentID)
}

func (r *PgEmployeeRepository) FindActiveByName(ctx context.Context, name string, params employee.FindParams) ([]employee.Employee, error) {
	return r.queryMany(ctx, findActiveByNameQuery, employee.NormalizeName(name), params.DepartmentID)
}

func (r *PgEmployeeRepository) FindActiveByExternalID(ctx context.Context, externalID int64) (employee.Employee, error) {
	return r.queryOne(ctx, findActiveByExternalIDQuery, externalID)
}

func (r *PgEmployeeRepository) ManagedDepartmentIDs(ctx context.Context, externalID int64) ([]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, managedDepartmentsQuery, externalID)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to query managed departments")
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to collect managed departments")
	}
	return ids, nil
}

func (r *PgEmployeeRepository) Create(ctx context.Context, data employee.Employee) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	e, err := scanEmployee(tx.QueryRow(ctx, insertEmployeeQuery,
		data.FullName, data.ExternalID, data.DepartmentID, string(data.Role),
		data.Position, repo.NumericFromDecimal(data.Salary),
	))
	if err != nil {
		switch {
		case repo.IsUniqueViolation(err, externalIDUniqueIx):
			return employee.Employee{}, employee.ErrExternalIDTaken
		case repo.IsForeignKeyViolation(err):
			return employee.Employee{}, department.ErrDepartmentNotFound
		}
		return employee.Employee{}, gerrors.Wrap(err, "failed to create employee")
	}
	return e, nil
}

func (r *PgEmployeeRepository) UpdateSalary(ctx context.Context, id int64, salary decimal.Decimal) error {
	return r.exec(ctx, updateSalaryQuery, id, repo.NumericFromDecimal(salary))
}

func (r *PgEmployeeRepository) BindExternalID(ctx context.Context, id int64, externalID int64) error {
	return r.exec(ctx, bindExternalIDQuery, id, externalID)
}

func (r *PgEmployeeRepository) UpdateRole(ctx context.Context, id int64, role employee.Role) error {
	return r.exec(ctx, updateRoleQuery, id, string(role))
}

func (r *PgEmployeeRepository) Deactivate(ctx context.Context, id int64) error {
	return r.exec(ctx, deactivateQuery, id)
}
