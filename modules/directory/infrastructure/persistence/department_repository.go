package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/repo"
)

const (
	departmentColumns = `id, name, emoji, created_at`

	listDepartmentsQuery   = `SELECT ` + departmentColumns + ` FROM departments ORDER BY id`
	getDepartmentQuery     = `SELECT ` + departmentColumns + ` FROM departments WHERE id = $1`
	countDepartmentsQuery  = `SELECT COUNT(*) FROM departments`
	insertDepartmentQuery  = `INSERT INTO departments (name, emoji) VALUES ($1, $2) RETURNING ` + departmentColumns
	departmentNameUniqueIx = "departments_name_key"
)

type PgDepartmentRepository struct{}

func NewDepartmentRepository() department.Repository {
	return &PgDepartmentRepository{}
}

func scanDepartment(row pgx.Row) (department.Department, error) {
	var d department.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Emoji, &d.CreatedAt); err != nil {
		return department.Department{}, err
	}
	return d, nil
}

func (r *PgDepartmentRepository) List(ctx context.Context) ([]department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, listDepartmentsQuery)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to list departments")
	}
	defer rows.Close()

	var out []department.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, gerrors.Wrap(err, "failed to scan department")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "failed to iterate departments")
	}
	return out, nil
}

func (r *PgDepartmentRepository) GetByID(ctx context.Context, id int64) (department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, err
	}
	d, err := scanDepartment(tx.QueryRow(ctx, getDepartmentQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, gerrors.Wrapf(err, "failed to get department %d", id)
	}
	return d, nil
}

func (r *PgDepartmentRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.QueryRow(ctx, countDepartmentsQuery).Scan(&n); err != nil {
		return 0, gerrors.Wrap(err, "failed to count departments")
	}
	return n, nil
}

func (r *PgDepartmentRepository) Create(ctx context.Context, data department.Department) (department.Department, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return department.Department{}, err
	}
	d, err := scanDepartment(tx.QueryRow(ctx, insertDepartmentQuery, data.Name, data.Emoji))
	if err != nil {
		if repo.IsUniqueViolation(err, departmentNameUniqueIx) {
			return department.Department{}, department.ErrDepartmentExists.
				WithTemplateData(map[string]string{"Name": data.Name})
		}
		return department.Department{}, gerrors.Wrap(err, "failed to create department")
	}
	return d, nil
}
