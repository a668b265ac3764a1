package services

import (
	"context"
	"iter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/eventbus"
)

var inTxFn = composables.InTx

// DefaultHistoryLimit applies when callers ask for zero or fewer records.
const DefaultHistoryLimit = 20

type AppendParams struct {
	EmployeeID int64
	Amount     decimal.Decimal
	Kind       accrual.Kind
	Comment    string
	CreatedBy  int64
}

type PayoutResult struct {
	Paid   bool
	Amount decimal.Decimal
	Record accrual.Record
}

type Options struct {
	AdvanceAmount decimal.Decimal
	HistoryLimit  int
	Logger        *logrus.Logger
	// Now is the clock used for periods; defaults to time.Now.
	Now func() time.Time
}

// LedgerService is the only writer of accrual records.
type LedgerService struct {
	repo         accrual.Repository
	publisher    eventbus.EventBus
	advance      decimal.Decimal
	historyLimit int
	logger       *logrus.Entry
	now          func() time.Time
	tracer       trace.Tracer
}

func NewLedgerService(repo accrual.Repository, publisher eventbus.EventBus, opts Options) *LedgerService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &LedgerService{
		repo:         repo,
		publisher:    publisher,
		advance:      opts.AdvanceAmount,
		historyLimit: opts.HistoryLimit,
		logger:       opts.Logger.WithField("component", "ledger"),
		now:          opts.Now,
		tracer:       otel.Tracer("payroll-bot/ledger"),
	}
}

// CurrentPeriod is the UTC calendar month of the service clock.
func (s *LedgerService) CurrentPeriod() accrual.Period {
	return accrual.PeriodOf(s.now())
}

func (s *LedgerService) AdvanceAmount() decimal.Decimal {
	return s.advance
}

// AppendAccrual stores one record without a period and returns its id.
func (s *LedgerService) AppendAccrual(ctx context.Context, p AppendParams) (int64, error) {
	rec := accrual.Record{
		EmployeeID: p.EmployeeID,
		Amount:     p.Amount,
		Kind:       p.Kind,
		Comment:    p.Comment,
		CreatedBy:  p.CreatedBy,
	}
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	return s.repo.Append(ctx, rec)
}

// AssignPeriod sets the period of the record returned by AppendAccrual.
func (s *LedgerService) AssignPeriod(ctx context.Context, recordID int64, period accrual.Period) error {
	if _, err := accrual.ParsePeriod(string(period)); err != nil {
		return err
	}
	return s.repo.AssignPeriod(ctx, recordID, period)
}

// Record appends p and stamps it with the current period in one transaction,
// then publishes accrual.RecordedEvent.
func (s *LedgerService) Record(ctx context.Context, p AppendParams) (accrual.Record, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Record", trace.WithAttributes(
		attribute.Int64("employee.id", p.EmployeeID),
		attribute.String("accrual.kind", string(p.Kind)),
	))
	defer span.End()

	var rec accrual.Record
	err := inTxFn(ctx, func(txCtx context.Context) error {
		var err error
		rec, err = s.record(txCtx, p)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return accrual.Record{}, err
	}
	s.committed(rec)
	return rec, nil
}

func (s *LedgerService) record(txCtx context.Context, p AppendParams) (accrual.Record, error) {
	id, err := s.AppendAccrual(txCtx, p)
	if err != nil {
		return accrual.Record{}, err
	}
	if err := s.repo.AssignPeriod(txCtx, id, s.CurrentPeriod()); err != nil {
		return accrual.Record{}, err
	}
	return s.repo.GetByID(txCtx, id)
}

func (s *LedgerService) committed(rec accrual.Record) {
	s.logger.WithFields(logrus.Fields{
		"record_id":   rec.ID,
		"employee_id": rec.EmployeeID,
		"kind":        rec.Kind,
		"amount":      rec.Amount.StringFixed(2),
		"period":      rec.Period,
	}).Info("accrual recorded")
	s.publisher.Publish(accrual.NewRecordedEvent(rec))
}

// BalanceOf folds every record of the employee. No records means zero.
func (s *LedgerService) BalanceOf(ctx context.Context, employeeID int64) (decimal.Decimal, error) {
	records, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	return accrual.Balance(records), nil
}

func (s *LedgerService) Summary(ctx context.Context, employeeID int64) (accrual.Summary, error) {
	records, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return accrual.Summary{}, err
	}
	return accrual.Summarize(records), nil
}

// Records returns the employee's records oldest first, optionally for one period.
func (s *LedgerService) Records(ctx context.Context, employeeID int64, period accrual.Period) ([]accrual.Record, error) {
	records, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return accrual.FilterPeriod(records, period), nil
}

// RecentHistory yields at most limit records newest first, optionally within one period.
// The sequence is lazy and can be ranged over once.
func (s *LedgerService) RecentHistory(ctx context.Context, employeeID int64, limit int, period accrual.Period) iter.Seq2[accrual.Record, error] {
	if limit <= 0 {
		limit = s.historyLimit
	}
	if period != "" {
		if _, err := accrual.ParsePeriod(string(period)); err != nil {
			return func(yield func(accrual.Record, error) bool) { yield(accrual.Record{}, err) }
		}
	}
	return accrual.SingleUse(s.repo.Recent(ctx, accrual.HistoryQuery{
		EmployeeID: employeeID,
		Limit:      limit,
		Period:     period,
	}))
}

// GiveAdvance records the configured fixed advance.
func (s *LedgerService) GiveAdvance(ctx context.Context, employeeID, creatorID int64, comment string) (accrual.Record, error) {
	return s.Record(ctx, AppendParams{
		EmployeeID: employeeID,
		Amount:     s.advance,
		Kind:       accrual.KindAdvance,
		Comment:    comment,
		CreatedBy:  creatorID,
	})
}

// PayoutBalance pays out the whole balance when it is strictly positive. The balance
// read and the payout append happen under a per-employee lock in one transaction.
func (s *LedgerService) PayoutBalance(ctx context.Context, employeeID, creatorID int64, comment string) (PayoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.PayoutBalance", trace.WithAttributes(
		attribute.Int64("employee.id", employeeID),
	))
	defer span.End()

	var res PayoutResult
	err := inTxFn(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockEmployee(txCtx, employeeID); err != nil {
			return err
		}
		records, err := s.repo.ListByEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}
		balance := accrual.Balance(records)
		res.Amount = balance
		if !balance.IsPositive() {
			return nil
		}
		rec, err := s.record(txCtx, AppendParams{
			EmployeeID: employeeID,
			Amount:     balance,
			Kind:       accrual.KindPayout,
			Comment:    comment,
			CreatedBy:  creatorID,
		})
		if err != nil {
			return err
		}
		res.Paid = true
		res.Record = rec
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return PayoutResult{}, err
	}
	span.SetAttributes(attribute.Bool("payout.paid", res.Paid))
	if res.Paid {
		s.committed(res.Record)
	}
	return res, nil
}
