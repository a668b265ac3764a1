package accrual

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/pkg/money"
)

func rec(kind Kind, amount string) Record {
	return Record{Kind: kind, Amount: decimal.RequireFromString(amount)}
}

func TestBalance_Empty(t *testing.T) {
	require.True(t, Balance(nil).IsZero())
	s := Summarize(nil)
	require.True(t, s.Balance.IsZero())
	for _, k := range Kinds {
		require.True(t, s.Totals[k].IsZero())
	}
}

func TestBalance_Signs(t *testing.T) {
	records := []Record{
		rec(KindSalary, "50000"),
		rec(KindBonus, "10000"),
		rec(KindDeduction, "2000"),
		rec(KindAdvance, "20000"),
		rec(KindPayout, "30000.50"),
	}
	require.True(t, Balance(records).Equal(decimal.RequireFromString("7999.50")))

	s := Summarize(records)
	require.True(t, s.Totals[KindPayout].Equal(decimal.RequireFromString("30000.50")))
	require.Equal(t, 5, s.Count)
}

func TestBalance_OrderIndependent(t *testing.T) {
	records := []Record{
		rec(KindSalary, "100.10"), rec(KindBonus, "0.01"), rec(KindDeduction, "33.33"),
		rec(KindAdvance, "12"), rec(KindPayout, "40"), rec(KindSalary, "999.99"),
	}
	want := Balance(records)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := append([]Record(nil), records...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.True(t, want.Equal(Balance(shuffled)))
	}
}

func TestRecord_Validate(t *testing.T) {
	require.NoError(t, rec(KindBonus, "1").Validate())
	require.ErrorIs(t, rec("tip", "1").Validate(), ErrInvalidKind)
	require.ErrorIs(t, rec(KindBonus, "0").Validate(), ErrNonPositive)
	require.ErrorIs(t, rec(KindBonus, "-1").Validate(), ErrNonPositive)
	require.NoError(t, rec(KindBonus, "999999999999.99").Validate())
	require.ErrorIs(t, rec(KindBonus, "1000000000000").Validate(), money.ErrTooLarge)

	bad := rec(KindBonus, "1")
	bad.Period = "2024-13"
	require.ErrorIs(t, bad.Validate(), ErrInvalidPeriod)
}

func TestPeriod(t *testing.T) {
	at := time.Date(2025, 1, 31, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	require.Equal(t, Period("2025-02"), PeriodOf(at))

	p, err := ParsePeriod("2024-07")
	require.NoError(t, err)
	require.Equal(t, "2024-07", p.String())

	_, err = ParsePeriod("2024-7")
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestFilterPeriod(t *testing.T) {
	a, b := rec(KindSalary, "1"), rec(KindSalary, "2")
	a.Period, b.Period = "2024-01", "2024-02"
	require.Len(t, FilterPeriod([]Record{a, b}, ""), 2)
	require.Equal(t, []Record{b}, FilterPeriod([]Record{a, b}, "2024-02"))
}

func TestSingleUse(t *testing.T) {
	seq := SingleUse(func(yield func(Record, error) bool) {
		for _, r := range []Record{{ID: 1}, {ID: 2}} {
			if !yield(r, nil) {
				return
			}
		}
	})

	var ids []int64
	for r, err := range seq {
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	require.Equal(t, []int64{1, 2}, ids)

	calls := 0
	for _, err := range seq {
		calls++
		require.ErrorIs(t, err, ErrHistoryConsumed)
	}
	require.Equal(t, 1, calls)
}
