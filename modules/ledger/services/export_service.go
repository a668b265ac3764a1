package services

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
)

const exportSheet = "Ledger"

var exportHeadings = []any{"ID", "Date", "Period", "Kind", "Amount", "Signed", "Comment", "Created by"}

// ExportService renders an employee's ledger as an XLSX workbook.
type ExportService struct {
	ledger *LedgerService
}

func NewExportService(ledger *LedgerService) *ExportService {
	return &ExportService{ledger: ledger}
}

// Export writes one sheet with every record (optionally one period) followed by per-kind totals.
func (s *ExportService) Export(ctx context.Context, employeeID int64, title string, period accrual.Period, w io.Writer) (accrual.Summary, error) {
	if period != "" {
		if _, err := accrual.ParsePeriod(string(period)); err != nil {
			return accrual.Summary{}, err
		}
	}
	records, err := s.ledger.Records(ctx, employeeID, period)
	if err != nil {
		return accrual.Summary{}, errors.Wrap(err, "load records")
	}
	summary := accrual.Summarize(records)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return summary, errors.Wrap(err, "rename sheet")
	}

	row := 1
	if title != "" {
		if err := f.SetCellValue(exportSheet, "A1", title); err != nil {
			return summary, err
		}
		row = 3
	}
	if err := setRow(f, row, exportHeadings); err != nil {
		return summary, err
	}
	for _, r := range records {
		row++
		values := []any{
			r.ID,
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			string(r.Period),
			string(r.Kind),
			r.Amount.InexactFloat64(),
			r.Signed().InexactFloat64(),
			r.Comment,
			r.CreatedBy,
		}
		if err := setRow(f, row, values); err != nil {
			return summary, err
		}
	}

	row++
	for _, k := range accrual.Kinds {
		row++
		if err := setRow(f, row, []any{"", "", "", string(k), summary.Totals[k].InexactFloat64()}); err != nil {
			return summary, err
		}
	}
	row++
	if err := setRow(f, row, []any{"", "", "", "balance", summary.Balance.InexactFloat64()}); err != nil {
		return summary, err
	}

	if err := f.Write(w); err != nil {
		return summary, errors.Wrap(err, "write workbook")
	}
	return summary, nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}
