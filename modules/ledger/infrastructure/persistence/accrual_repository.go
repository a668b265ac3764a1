package persistence

import (
	"context"
	stderrors "errors"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/repo"
)

const (
	accrualColumns = `id, employee_id, amount, kind, comment, period, created_at, created_by`

	insertAccrualQuery = `INSERT INTO accruals (employee_id, amount, kind, comment, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	assignPeriodQuery = `UPDATE accruals SET period = $2 WHERE id = $1 AND period IS NULL`

	getAccrualQuery = `SELECT ` + accrualColumns + ` FROM accruals WHERE id = $1`

	listAccrualsQuery = `SELECT ` + accrualColumns + ` FROM accruals
		WHERE employee_id = $1
		ORDER BY created_at, id`

	recentAccrualsQuery = `SELECT ` + accrualColumns + ` FROM accruals
		WHERE employee_id = $1 AND ($2::text = '' OR period = $2::text)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	lockEmployeeQuery = `SELECT pg_advisory_xact_lock($1::bigint)`

	pgRaiseException = "P0001"
)

type PgAccrualRepository struct{}

func NewAccrualRepository() accrual.Repository {
	return &PgAccrualRepository{}
}

func scanAccrual(row pgx.Row) (accrual.Record, error) {
	var (
		r      accrual.Record
		amount pgtype.Numeric
		kind   string
		period pgtype.Text
	)
	if err := row.Scan(&r.ID, &r.EmployeeID, &amount, &kind, &r.Comment, &period, &r.CreatedAt, &r.CreatedBy); err != nil {
		return accrual.Record{}, err
	}
	d, err := repo.DecimalFromNumeric(amount)
	if err != nil {
		return accrual.Record{}, err
	}
	r.Amount = d
	r.Kind = accrual.Kind(kind)
	if period.Valid {
		r.Period = accrual.Period(period.String)
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == pgRaiseException {
		return accrual.ErrAppendOnlyLedger.Wrap(err)
	}
	return err
}

func (r *PgAccrualRepository) Append(ctx context.Context, rec accrual.Record) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	var id int64
	if err := tx.QueryRow(ctx, insertAccrualQuery,
		rec.EmployeeID, repo.NumericFromDecimal(rec.Amount), string(rec.Kind), rec.Comment, rec.CreatedBy,
	).Scan(&id); err != nil {
		return 0, errors.Wrap(mapWriteError(err), "failed to append accrual")
	}
	return id, nil
}

func (r *PgAccrualRepository) AssignPeriod(ctx context.Context, recordID int64, period accrual.Period) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, assignPeriodQuery, recordID, string(period))
	if err != nil {
		return errors.Wrap(mapWriteError(err), "failed to assign accrual period")
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	existing, err := r.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if existing.Period == period {
		return nil
	}
	return accrual.ErrPeriodAssigned
}

func (r *PgAccrualRepository) GetByID(ctx context.Context, recordID int64) (accrual.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return accrual.Record{}, errors.Wrap(err, "failed to get transaction")
	}
	rec, err := scanAccrual(tx.QueryRow(ctx, getAccrualQuery, recordID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return accrual.Record{}, accrual.ErrRecordNotFound
		}
		return accrual.Record{}, errors.Wrap(err, "failed to get accrual")
	}
	return rec, nil
}

func (r *PgAccrualRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]accrual.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, listAccrualsQuery, employeeID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query accruals")
	}
	defer rows.Close()

	var out []accrual.Record
	for rows.Next() {
		rec, err := scanAccrual(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan accrual")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating accruals")
	}
	return out, nil
}

// Recent runs its query when iteration starts and releases the rows when the caller stops.
func (r *PgAccrualRepository) Recent(ctx context.Context, q accrual.HistoryQuery) iter.Seq2[accrual.Record, error] {
	return func(yield func(accrual.Record, error) bool) {
		tx, err := composables.UseTx(ctx)
		if err != nil {
			yield(accrual.Record{}, errors.Wrap(err, "failed to get transaction"))
			return
		}
		rows, err := tx.Query(ctx, recentAccrualsQuery, q.EmployeeID, string(q.Period), q.Limit)
		if err != nil {
			yield(accrual.Record{}, errors.Wrap(err, "failed to query recent accruals"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanAccrual(rows)
			if err != nil {
				yield(accrual.Record{}, errors.Wrap(err, "failed to scan accrual"))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(accrual.Record{}, errors.Wrap(err, "error iterating accruals"))
		}
	}
}

func (r *PgAccrualRepository) LockEmployee(ctx context.Context, employeeID int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, ok := tx.(pgx.Tx); !ok {
		return composables.ErrNoTx
	}
	if _, err := tx.Exec(ctx, lockEmployeeQuery, employeeID); err != nil {
		return errors.Wrap(err, "failed to lock employee ledger")
	}
	return nil
}
