package presentation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
)

const cardSeparator = "━━━━━━━━━━━━━━━━"

var kindEmoji = map[accrual.Kind]string{
	accrual.KindSalary:    "💼",
	accrual.KindBonus:     "➕",
	accrual.KindDeduction: "➖",
	accrual.KindAdvance:   "💸",
	accrual.KindPayout:    "💰",
}

func heading(e employee.Employee) string {
	s := e.Badge() + " " + e.FullName
	if e.Position != "" {
		s += " (" + e.Position + ")"
	}
	return s
}

// EmployeeCard shows the salary figure, per-kind totals, the balance and recent operations (newest first).
func (t *Texts) EmployeeCard(e employee.Employee, s accrual.Summary, recent []accrual.Record) string {
	var b strings.Builder
	b.WriteString(heading(e))
	b.WriteString("\n\n")
	for _, line := range []struct {
		id     string
		amount decimal.Decimal
	}{
		{"Card.Salary", e.Salary},
		{"Card.Bonuses", s.Totals[accrual.KindBonus]},
		{"Card.Deductions", s.Totals[accrual.KindDeduction]},
		{"Card.Advances", s.Totals[accrual.KindAdvance]},
		{"Card.Payouts", s.Totals[accrual.KindPayout]},
	} {
		b.WriteString(t.Amount(line.id, line.amount))
		b.WriteByte('\n')
	}
	b.WriteString(cardSeparator)
	b.WriteByte('\n')
	b.WriteString(t.Amount("Card.Total", s.Balance))

	if len(recent) > 0 {
		b.WriteString("\n\n")
		b.WriteString(t.T("Card.Recent"))
		for _, r := range recent {
			b.WriteByte('\n')
			b.WriteString(t.RecordLine(r))
		}
	}
	return b.String()
}

// RecordLine renders one operation, e.g. "➕ Премия: 10 000,00 ₽ (план)".
func (t *Texts) RecordLine(r accrual.Record) string {
	emoji, ok := kindEmoji[r.Kind]
	if !ok {
		emoji = "•"
	}
	line := emoji + " " + t.KindName(r.Kind) + ": " + t.Money(r.Amount)
	if r.Comment != "" {
		line += " (" + r.Comment + ")"
	}
	return line
}

func (t *Texts) KindName(k accrual.Kind) string {
	return t.T("Kind." + string(k))
}

// DefaultComment is used when the user leaves the comment empty.
func (t *Texts) DefaultComment(k accrual.Kind, period accrual.Period) string {
	return t.TD("Comment."+string(k), map[string]any{"Period": string(period)})
}

// CompanyReport lists every department with its active employees.
func (t *Texts) CompanyReport(departments []department.Department, staff map[int64][]employee.Employee) string {
	var b strings.Builder
	b.WriteString(t.T("Report.AllTitle"))
	for _, d := range departments {
		b.WriteString("\n\n")
		b.WriteString(d.Label())
		employees := staff[d.ID]
		if len(employees) == 0 {
			b.WriteString("\n  ")
			b.WriteString(t.T("Menu.NoEmployees"))
			continue
		}
		for _, e := range employees {
			b.WriteString("\n  ")
			b.WriteString(heading(e))
		}
	}
	return b.String()
}

func (t *Texts) TeamReport(employees []employee.Employee) string {
	var b strings.Builder
	b.WriteString(t.T("Report.MyTitle"))
	b.WriteString("\n")
	if len(employees) == 0 {
		b.WriteString("\n")
		b.WriteString(t.T("Menu.NoEmployees"))
	}
	for _, e := range employees {
		b.WriteString("\n")
		b.WriteString(heading(e))
	}
	return b.String()
}

// DepartmentView is the header above a department's employee list.
func (t *Texts) DepartmentView(d department.Department, empty bool) string {
	if empty {
		return d.Label() + "\n\n" + t.T("Menu.NoEmployees")
	}
	return d.Label() + "\n\n" + t.T("Menu.PickEmployee")
}

func (t *Texts) OwnBalance(e employee.Employee, balance decimal.Decimal) string {
	name := e.FullName
	if e.Position != "" {
		name += " (" + e.Position + ")"
	}
	return t.TD("Balance.Own", map[string]any{"Name": name, "Amount": t.Money(balance)})
}
