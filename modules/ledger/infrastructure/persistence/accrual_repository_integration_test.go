package persistence_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	"github.com/iota-uz/payroll-bot/modules/ledger/infrastructure/persistence"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/itf"
)

func TestPgAccrualRepository(t *testing.T) {
	ctx, pool := itf.NewPool(t)
	var employeeID int64
	require.NoError(t, pool.QueryRow(ctx, `
		WITH d AS (INSERT INTO departments (name) VALUES ('IT') RETURNING id)
		INSERT INTO employees (full_name, department_id) SELECT 'Ivan', id FROM d RETURNING id`,
	).Scan(&employeeID))

	r := persistence.NewAccrualRepository()
	add := func(kind accrual.Kind, amount string) int64 {
		id, err := r.Append(ctx, accrual.Record{
			EmployeeID: employeeID, Amount: decimal.RequireFromString(amount), Kind: kind, CreatedBy: 1,
		})
		require.NoError(t, err)
		return id
	}

	first := add(accrual.KindBonus, "10000")
	second := add(accrual.KindDeduction, "2000.50")

	require.NoError(t, r.AssignPeriod(ctx, second, "2025-03"))
	require.NoError(t, r.AssignPeriod(ctx, second, "2025-03"))
	require.ErrorIs(t, r.AssignPeriod(ctx, second, "2025-04"), accrual.ErrPeriodAssigned)
	require.ErrorIs(t, r.AssignPeriod(ctx, 9999, "2025-04"), accrual.ErrRecordNotFound)

	got, err := r.GetByID(ctx, first)
	require.NoError(t, err)
	require.Empty(t, got.Period, "assigning one record leaves others untouched")

	records, err := r.ListByEmployee(ctx, employeeID)
	require.NoError(t, err)
	require.True(t, accrual.Balance(records).Equal(decimal.RequireFromString("7999.50")))

	var ids []int64
	for rec, err := range r.Recent(ctx, accrual.HistoryQuery{EmployeeID: employeeID, Limit: 1}) {
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	require.Equal(t, []int64{second}, ids)

	_, err = pool.Exec(ctx, `DELETE FROM accruals WHERE id = $1`, first)
	require.Error(t, err, "ledger rows cannot be deleted")
	_, err = pool.Exec(ctx, `UPDATE accruals SET amount = 1 WHERE id = $1`, first)
	require.Error(t, err, "ledger rows cannot be rewritten")

	require.ErrorIs(t, r.LockEmployee(ctx, employeeID), composables.ErrNoTx)
	require.NoError(t, composables.InTx(ctx, func(txCtx context.Context) error {
		return r.LockEmployee(txCtx, employeeID)
	}))
}
