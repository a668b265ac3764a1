package presentation

import (
	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
)

// MainMenu is the role's home keyboard. Unknown users get none.
func MainMenu(role identity.Role, l Labels, departments []department.Department) [][]string {
	switch role {
	case identity.RoleSuperAdmin:
		rows := make([][]string, 0, len(departments)+3)
		for _, d := range departments {
			rows = append(rows, []string{d.Label()})
		}
		return append(rows, []string{l.AllEmployees}, []string{l.AddEmployee}, []string{l.AddDepartment})
	case identity.RoleManager:
		return [][]string{{l.MyEmployees}, {l.AccrueSalary}, {l.AddEmployee}}
	case identity.RoleEmployee:
		return [][]string{{l.MySalary}}
	default:
		return nil
	}
}

// EmployeeList shows badge-prefixed names that open employee cards.
func EmployeeList(l Labels, employees []employee.Employee) [][]string {
	rows := make([][]string, 0, len(employees)+1)
	for _, e := range employees {
		rows = append(rows, []string{e.Label()})
	}
	return append(rows, []string{l.BackToMain})
}

// Selection lists "<id>: <name> (<position>)" labels that identify employees unambiguously.
func Selection(l Labels, employees []employee.Employee) [][]string {
	rows := make([][]string, 0, len(employees)+1)
	for _, e := range employees {
		rows = append(rows, []string{e.QualifiedLabel()})
	}
	return append(rows, []string{l.Cancel})
}

func DepartmentPicker(l Labels, departments []department.Department) [][]string {
	rows := make([][]string, 0, len(departments)+1)
	for _, d := range departments {
		rows = append(rows, []string{d.Label()})
	}
	return append(rows, []string{l.Cancel})
}

func CancelOnly(l Labels) [][]string {
	return [][]string{{l.Cancel}}
}

// CardActions selects the buttons shown under an employee card.
type CardActions struct {
	Advance      bool
	OtherAdvance bool
	Payout       bool
	Promote      bool
	SetSalary    bool
	Bonus        bool
	Deduction    bool
	BindIdentity bool
	Deactivate   bool
}

func CardMenu(l Labels, a CardActions) [][]string {
	var rows [][]string
	add := func(ok bool, label string) {
		if ok {
			rows = append(rows, []string{label})
		}
	}
	add(a.Advance, l.GiveAdvance)
	add(a.OtherAdvance, l.AddAdvance)
	add(a.Payout, l.GivePayout)
	add(a.Promote, l.Promote)
	add(a.SetSalary, l.SetSalary)
	add(a.Bonus, l.AddBonus)
	add(a.Deduction, l.AddDeduction)
	add(a.BindIdentity, l.BindIdentity)
	add(a.Deactivate, l.Deactivate)
	return append(rows, []string{l.BackToList})
}

// Flatten returns every label of menu, row by row.
func Flatten(menu [][]string) []string {
	var out []string
	for _, row := range menu {
		out = append(out, row...)
	}
	return out
}
