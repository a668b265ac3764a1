package accrual

import (
	"context"
	"iter"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/pkg/money"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

type Kind string

const (
	KindSalary    Kind = "salary"
	KindBonus     Kind = "bonus"
	KindDeduction Kind = "deduction"
	KindAdvance   Kind = "advance"
	KindPayout    Kind = "payout"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindSalary, KindBonus, KindDeduction, KindAdvance, KindPayout}

func (k Kind) Valid() bool {
	switch k {
	case KindSalary, KindBonus, KindDeduction, KindAdvance, KindPayout:
		return true
	}
	return false
}

// Credit reports whether the kind increases what the organisation owes.
func (k Kind) Credit() bool {
	return k == KindSalary || k == KindBonus
}

var (
	ErrInvalidKind      = serrors.NewError("ACCRUAL_INVALID_KIND", "unknown accrual kind", "Errors.AccrualInvalidKind")
	ErrNonPositive      = serrors.NewError("ACCRUAL_NON_POSITIVE", "accrual amount must be positive", "Errors.AmountNotPositive")
	ErrInvalidPeriod    = serrors.NewError("ACCRUAL_INVALID_PERIOD", "period must look like YYYY-MM", "Errors.InvalidPeriod")
	ErrRecordNotFound   = serrors.NewError("ACCRUAL_NOT_FOUND", "accrual record not found", "Errors.AccrualNotFound")
	ErrPeriodAssigned   = serrors.NewError("ACCRUAL_PERIOD_ASSIGNED", "accrual period is already assigned", "")
	ErrHistoryConsumed  = serrors.NewError("ACCRUAL_HISTORY_CONSUMED", "history sequence was already consumed", "")
	ErrNothingToPayout  = serrors.NewError("ACCRUAL_NOTHING_TO_PAYOUT", "balance is not positive", "Errors.NothingToPayout")
	ErrAppendOnlyLedger = serrors.NewError("ACCRUAL_APPEND_ONLY", "accrual records are immutable", "")
)

// Period is a calendar month, "YYYY-MM".
type Period string

const periodLayout = "2006-01"

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// PeriodOf returns the UTC calendar month containing t.
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format(periodLayout))
}

func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return "", ErrInvalidPeriod.WithTemplateData(map[string]string{"Period": s})
	}
	return Period(s), nil
}

func (p Period) String() string {
	return string(p)
}

// Record is one immutable ledger row.
type Record struct {
	ID         int64
	EmployeeID int64
	Amount     decimal.Decimal
	Kind       Kind
	Comment    string
	Period     Period
	CreatedAt  time.Time
	CreatedBy  int64
}

// Signed is the record's contribution to the balance.
func (r Record) Signed() decimal.Decimal {
	if r.Kind.Credit() {
		return r.Amount
	}
	return r.Amount.Neg()
}

// Validate checks the fields a caller controls before an append.
func (r Record) Validate() error {
	if !r.Kind.Valid() {
		return ErrInvalidKind.WithTemplateData(map[string]string{"Kind": string(r.Kind)})
	}
	if !r.Amount.IsPositive() {
		return ErrNonPositive
	}
	if r.Amount.GreaterThan(money.MaxAmount) {
		return money.ErrTooLarge
	}
	if r.Period != "" {
		if _, err := ParsePeriod(string(r.Period)); err != nil {
			return err
		}
	}
	return nil
}

// HistoryQuery selects the newest records of one employee.
type HistoryQuery struct {
	EmployeeID int64
	Limit      int
	// Period filters to one month when non-empty.
	Period Period
}

type Repository interface {
	// Append stores r and returns its id. ID, CreatedAt and Period are assigned by the store.
	Append(ctx context.Context, r Record) (int64, error)
	// AssignPeriod sets the period of recordID once; a record that already has one is left untouched.
	AssignPeriod(ctx context.Context, recordID int64, period Period) error
	GetByID(ctx context.Context, recordID int64) (Record, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]Record, error)
	// Recent lazily yields records newest first.
	Recent(ctx context.Context, q HistoryQuery) iter.Seq2[Record, error]
	// LockEmployee serialises writers for employeeID until the surrounding transaction ends.
	LockEmployee(ctx context.Context, employeeID int64) error
}
