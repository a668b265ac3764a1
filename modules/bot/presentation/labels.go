package presentation

import (
	"github.com/shopspring/decimal"
)

// Labels are the button texts of one locale. Typed text equal to a label acts as the button.
type Labels struct {
	AllEmployees  string
	AddEmployee   string
	AddDepartment string
	MyEmployees   string
	AccrueSalary  string
	MySalary      string
	BackToMain    string
	BackToList    string
	Cancel        string
	GiveAdvance   string
	AddAdvance    string
	GivePayout    string
	Promote       string
	SetSalary     string
	AddBonus      string
	AddDeduction  string
	BindIdentity  string
	Deactivate    string
}

const (
	CommandStart = "/start"
	CommandHelp  = "/help"
)

func (t *Texts) Labels(advance decimal.Decimal) Labels {
	return Labels{
		AllEmployees:  t.T("Label.AllEmployees"),
		AddEmployee:   t.T("Label.AddEmployee"),
		AddDepartment: t.T("Label.AddDepartment"),
		MyEmployees:   t.T("Label.MyEmployees"),
		AccrueSalary:  t.T("Label.AccrueSalary"),
		MySalary:      t.T("Label.MySalary"),
		BackToMain:    t.T("Label.BackToMain"),
		BackToList:    t.T("Label.BackToList"),
		Cancel:        t.T("Label.Cancel"),
		GiveAdvance:   t.Amount("Label.GiveAdvance", advance),
		AddAdvance:    t.T("Label.AddAdvance"),
		GivePayout:    t.T("Label.GivePayout"),
		Promote:       t.T("Label.Promote"),
		SetSalary:     t.T("Label.SetSalary"),
		AddBonus:      t.T("Label.AddBonus"),
		AddDeduction:  t.T("Label.AddDeduction"),
		BindIdentity:  t.T("Label.BindIdentity"),
		Deactivate:    t.T("Label.Deactivate"),
	}
}

// Navigation reports whether text is one of the labels that interrupt any flow.
func (l Labels) Navigation(text string) bool {
	switch text {
	case l.Cancel, l.BackToList, l.BackToMain:
		return true
	}
	return false
}
