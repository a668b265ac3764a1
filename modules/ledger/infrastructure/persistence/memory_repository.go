package persistence

import (
	"context"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
)

// MemoryAccrualRepository is an append-only in-process ledger for tests and local runs.
type MemoryAccrualRepository struct {
	mu      sync.RWMutex
	records []accrual.Record
	now     func() time.Time
}

func NewMemoryAccrualRepository() *MemoryAccrualRepository {
	return &MemoryAccrualRepository{now: time.Now}
}

// WithClock replaces the store clock used for CreatedAt.
func (m *MemoryAccrualRepository) WithClock(now func() time.Time) *MemoryAccrualRepository {
	m.now = now
	return m
}

func (m *MemoryAccrualRepository) Append(ctx context.Context, r accrual.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = int64(len(m.records) + 1)
	r.CreatedAt = m.now().UTC()
	r.Period = ""
	m.records = append(m.records, r)
	return r.ID, nil
}

func (m *MemoryAccrualRepository) AssignPeriod(ctx context.Context, recordID int64, period accrual.Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := int(recordID - 1)
	if recordID <= 0 || i >= len(m.records) {
		return accrual.ErrRecordNotFound
	}
	switch m.records[i].Period {
	case "":
		m.records[i].Period = period
		return nil
	case period:
		return nil
	default:
		return accrual.ErrPeriodAssigned
	}
}

func (m *MemoryAccrualRepository) GetByID(ctx context.Context, recordID int64) (accrual.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := int(recordID - 1)
	if recordID <= 0 || i >= len(m.records) {
		return accrual.Record{}, accrual.ErrRecordNotFound
	}
	return m.records[i], nil
}

func (m *MemoryAccrualRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]accrual.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []accrual.Record
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryAccrualRepository) Recent(ctx context.Context, q accrual.HistoryQuery) iter.Seq2[accrual.Record, error] {
	return func(yield func(accrual.Record, error) bool) {
		all, _ := m.ListByEmployee(ctx, q.EmployeeID)
		all = accrual.FilterPeriod(all, q.Period)
		slices.Reverse(all)
		for i, r := range all {
			if q.Limit > 0 && i >= q.Limit {
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (m *MemoryAccrualRepository) LockEmployee(ctx context.Context, employeeID int64) error {
	return nil
}
