package accrual

import (
	"iter"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Balance folds records into Σ(salary, bonus) − Σ(payout, advance, deduction).
// The result does not depend on record order.
func Balance(records []Record) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.Signed())
	}
	return sum
}

// Summary holds per-kind totals and the resulting balance.
type Summary struct {
	Totals  map[Kind]decimal.Decimal
	Balance decimal.Decimal
	Count   int
}

func Summarize(records []Record) Summary {
	s := Summary{Totals: make(map[Kind]decimal.Decimal, len(Kinds))}
	for _, k := range Kinds {
		s.Totals[k] = decimal.Zero
	}
	for _, r := range records {
		s.Totals[r.Kind] = s.Totals[r.Kind].Add(r.Amount)
	}
	s.Balance = Balance(records)
	s.Count = len(records)
	return s
}

// FilterPeriod keeps records of one period; an empty period keeps everything.
func FilterPeriod(records []Record, period Period) []Record {
	if period == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Period == period {
			out = append(out, r)
		}
	}
	return out
}

// SingleUse wraps seq so it can be ranged over once. Later iterations yield ErrHistoryConsumed.
func SingleUse(seq iter.Seq2[Record, error]) iter.Seq2[Record, error] {
	var used atomic.Bool
	return func(yield func(Record, error) bool) {
		if used.Swap(true) {
			yield(Record{}, ErrHistoryConsumed)
			return
		}
		seq(yield)
	}
}
