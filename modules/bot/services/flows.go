package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/iota-uz/payroll-bot/modules/access/domain/permission"
	"github.com/iota-uz/payroll-bot/modules/bot/domain/conversation"
	"github.com/iota-uz/payroll-bot/modules/bot/presentation"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	ledgerservices "github.com/iota-uz/payroll-bot/modules/ledger/services"
	"github.com/iota-uz/payroll-bot/pkg/money"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

// maxTextLen matches the longest name and position the directory accepts.
const maxTextLen = 200

// skipComment keeps the kind's default comment.
const skipComment = "-"

// invalid is a rejected input rendered with the message at localeKey.
func invalid(localeKey string) *serrors.BaseError {
	return serrors.NewError(ErrInvalidInput.Code, ErrInvalidInput.Message, localeKey)
}

// amountError picks the re-prompt text for a rejected amount.
func amountError(err error, localeKey string) error {
	if errors.Is(err, money.ErrTooLarge) {
		localeKey = "Invalid.AmountTooLarge"
	}
	return invalid(localeKey).Wrap(err)
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

var accrualActions = map[accrual.Kind]permission.Action{
	accrual.KindSalary:    permission.AccrualSalary,
	accrual.KindBonus:     permission.AccrualBonus,
	accrual.KindDeduction: permission.AccrualDeduction,
	accrual.KindAdvance:   permission.AccrualAdvance,
}

var promptKinds = map[accrual.Kind]string{
	accrual.KindSalary:    "Salary",
	accrual.KindBonus:     "Bonus",
	accrual.KindDeduction: "Deduction",
	accrual.KindAdvance:   "Advance",
}

func (c *Controller) startAddDepartment(ctx context.Context, t *turn) (Reply, error) {
	if err := c.gate.Authorize(ctx, t.who, permission.DepartmentCreate); err != nil {
		return Reply{}, err
	}
	t.conv.Start(&conversation.AddDepartmentFlow{Step: conversation.StepName})
	return c.prompt(ctx, t), nil
}

func (c *Controller) startAddEmployee(ctx context.Context, t *turn) (Reply, error) {
	if err := c.gate.Authorize(ctx, t.who, permission.EmployeeCreate); err != nil {
		return Reply{}, err
	}
	if t.who.IsManager() {
		if _, ok := t.who.PrimaryDepartment(); !ok {
			return Reply{}, ErrNoManagedDepartment
		}
	} else {
		departments, err := c.directory.ListDepartments(ctx)
		if err != nil {
			return Reply{}, err
		}
		if len(departments) == 0 {
			return Reply{}, ErrNoDepartments
		}
	}
	t.conv.Start(&conversation.AddEmployeeFlow{Step: conversation.StepName})
	return c.prompt(ctx, t), nil
}

// startAccrual enters the accrual flow. From a card the pinned employee is used and the
// employee step is skipped.
func (c *Controller) startAccrual(ctx context.Context, t *turn, kind accrual.Kind, fromCard bool) (Reply, error) {
	action := accrualActions[kind]
	if fromCard {
		e, err := c.pinned(ctx, t, action)
		if err != nil {
			return Reply{}, err
		}
		t.conv.Start(&conversation.RecordAccrualFlow{
			Step:        conversation.StepAmount,
			AccrualKind: kind,
			EmployeeID:  e.ID,
		})
		return c.prompt(ctx, t), nil
	}

	if err := c.gate.Authorize(ctx, t.who, action); err != nil {
		return Reply{}, err
	}
	candidates, err := c.scopedEmployees(ctx, t.who)
	if err != nil {
		return Reply{}, err
	}
	if len(candidates) == 0 {
		return c.home(ctx, t, c.texts.T("Menu.NoDepartmentEmployees")), nil
	}
	t.conv.Start(&conversation.RecordAccrualFlow{
		Step:        conversation.StepEmployee,
		AccrualKind: kind,
	})
	return Reply{
		Text: c.texts.T("Menu.PickAccrualEmployee"),
		Menu: presentation.Selection(c.labels, candidates),
	}, nil
}

func (c *Controller) startSetSalary(ctx context.Context, t *turn) (Reply, error) {
	if _, err := c.pinned(ctx, t, permission.SalarySet); err != nil {
		return Reply{}, err
	}
	t.conv.Start(&conversation.SetSalaryFlow{Step: conversation.StepAmount})
	return c.prompt(ctx, t), nil
}

func (c *Controller) startBindIdentity(ctx context.Context, t *turn) (Reply, error) {
	if _, err := c.pinned(ctx, t, permission.EmployeeBindIdentity); err != nil {
		return Reply{}, err
	}
	t.conv.Start(&conversation.BindIdentityFlow{Step: conversation.StepExternalID})
	return c.prompt(ctx, t), nil
}

func (c *Controller) continueFlow(ctx context.Context, t *turn) (Reply, error) {
	switch f := t.conv.Flow.(type) {
	case *conversation.AddDepartmentFlow:
		return c.addDepartment(ctx, t)
	case *conversation.AddEmployeeFlow:
		return c.addEmployee(ctx, t, f)
	case *conversation.RecordAccrualFlow:
		return c.recordAccrual(ctx, t, f)
	case *conversation.SetSalaryFlow:
		return c.setSalary(ctx, t)
	case *conversation.BindIdentityFlow:
		return c.bindIdentity(ctx, t)
	default:
		t.conv.ClearFlow()
		return c.home(ctx, t, c.texts.T("Menu.Main")), nil
	}
}

func (c *Controller) addDepartment(ctx context.Context, t *turn) (Reply, error) {
	name := collapse(t.text)
	if name == "" {
		return Reply{}, invalid("Invalid.EmptyDepartmentName")
	}
	if utf8.RuneCountInString(name) > maxTextLen {
		return Reply{}, invalid("Invalid.TooLong")
	}
	if err := c.gate.Authorize(ctx, t.who, permission.DepartmentCreate); err != nil {
		return Reply{}, err
	}
	d, err := c.directory.CreateDepartment(ctx, t.who.ExternalID, name, "")
	if err != nil {
		return Reply{}, err
	}
	t.conv.Reset()
	return c.home(ctx, t, c.texts.TD("Done.DepartmentCreated", map[string]any{"Name": d.Name})), nil
}

func (c *Controller) addEmployee(ctx context.Context, t *turn, f *conversation.AddEmployeeFlow) (Reply, error) {
	switch f.Step {
	case conversation.StepName:
		name := employee.NormalizeName(t.text)
		if name == "" {
			return Reply{}, invalid("Invalid.EmptyName")
		}
		if utf8.RuneCountInString(name) > maxTextLen {
			return Reply{}, invalid("Invalid.TooLong")
		}
		f.FullName = name
		f.Step = conversation.StepPosition
		t.conv.Advance()
		return c.prompt(ctx, t), nil

	case conversation.StepPosition:
		position := collapse(t.text)
		if position == "" {
			return Reply{}, invalid("Invalid.EmptyPosition")
		}
		if utf8.RuneCountInString(position) > maxTextLen {
			return Reply{}, invalid("Invalid.TooLong")
		}
		f.Position = position
		t.conv.Advance()
		if t.who.IsManager() {
			departmentID, ok := t.who.PrimaryDepartment()
			if !ok {
				return Reply{}, ErrNoManagedDepartment
			}
			return c.createEmployee(ctx, t, f, departmentID)
		}
		f.Step = conversation.StepDepartment
		return c.prompt(ctx, t), nil

	case conversation.StepDepartment:
		d, ok, err := c.matchDepartment(ctx, t.text)
		if err != nil {
			return Reply{}, err
		}
		if !ok {
			return Reply{}, invalid("Invalid.Department")
		}
		return c.createEmployee(ctx, t, f, d.ID)
	}
	t.conv.ClearFlow()
	return c.home(ctx, t, c.texts.T("Menu.Main")), nil
}

func (c *Controller) createEmployee(ctx context.Context, t *turn, f *conversation.AddEmployeeFlow, departmentID int64) (Reply, error) {
	if err := c.gate.Authorize(ctx, t.who, permission.EmployeeCreate); err != nil {
		return Reply{}, err
	}
	if t.who.IsManager() && !t.who.Manages(departmentID) {
		return Reply{}, ErrNoManagedDepartment
	}
	d, err := c.directory.GetDepartment(ctx, departmentID)
	if err != nil {
		return Reply{}, err
	}
	created, err := c.directory.CreateEmployee(ctx, t.who.ExternalID, &employee.CreateDTO{
		FullName:     f.FullName,
		Position:     f.Position,
		DepartmentID: d.ID,
		Role:         employee.RoleEmployee,
	})
	if err != nil {
		return Reply{}, err
	}
	t.conv.ClearFlow()
	return c.home(ctx, t, c.texts.TD("Done.EmployeeCreated", map[string]any{
		"Name":       created.FullName,
		"Position":   created.Position,
		"Department": d.Name,
	})), nil
}

func (c *Controller) recordAccrual(ctx context.Context, t *turn, f *conversation.RecordAccrualFlow) (Reply, error) {
	action, ok := accrualActions[f.AccrualKind]
	if !ok {
		return Reply{}, accrual.ErrInvalidKind
	}
	switch f.Step {
	case conversation.StepEmployee:
		e, ambiguous, err := c.resolveEmployee(ctx, t, t.text)
		switch {
		case isAny(err, employee.ErrEmployeeNotFound, ErrNoSelection):
			t.hint = c.didYouMean(ctx, t)
			return Reply{}, invalid("Invalid.Employee")
		case err != nil:
			return Reply{}, err
		case len(ambiguous) > 0:
			return Reply{
				Text: c.texts.T("Menu.Ambiguous"),
				Menu: presentation.Selection(c.labels, ambiguous),
			}, nil
		}
		if err := c.gate.AuthorizeEmployee(ctx, t.who, action, e); err != nil {
			return Reply{}, err
		}
		f.EmployeeID = e.ID
		f.Step = conversation.StepAmount
		t.conv.Advance()
		return c.prompt(ctx, t), nil

	case conversation.StepAmount:
		amount, err := money.ParsePositive(t.text)
		if err != nil {
			return Reply{}, amountError(err, "Invalid.Amount")
		}
		f.Amount = amount
		f.Step = conversation.StepComment
		t.conv.Advance()
		return c.prompt(ctx, t), nil

	case conversation.StepComment:
		comment := collapse(t.text)
		if utf8.RuneCountInString(comment) > maxTextLen {
			return Reply{}, invalid("Invalid.TooLong")
		}
		if comment == "" || comment == skipComment {
			comment = c.texts.DefaultComment(f.AccrualKind, c.ledger.CurrentPeriod())
		}
		e, err := c.directory.GetEmployee(ctx, f.EmployeeID)
		if err != nil {
			return Reply{}, err
		}
		if !e.IsActive {
			return Reply{}, employee.ErrInactive
		}
		if err := c.gate.AuthorizeEmployee(ctx, t.who, action, e); err != nil {
			return Reply{}, err
		}
		rec, err := c.ledger.Record(ctx, ledgerservices.AppendParams{
			EmployeeID: e.ID,
			Amount:     f.Amount,
			Kind:       f.AccrualKind,
			Comment:    comment,
			CreatedBy:  t.who.ExternalID,
		})
		if err != nil {
			return Reply{}, err
		}
		t.conv.ClearFlow()
		t.conv.Pinned.DepartmentID = e.DepartmentID
		t.conv.PinEmployee(e.ID)
		return c.card(ctx, t, c.texts.TD("Done."+promptKinds[f.AccrualKind], map[string]any{
			"Amount": c.texts.Money(rec.Amount),
			"Name":   e.FullName,
		}))
	}
	t.conv.ClearFlow()
	return c.home(ctx, t, c.texts.T("Menu.Main")), nil
}

func (c *Controller) setSalary(ctx context.Context, t *turn) (Reply, error) {
	salary, err := money.ParseNonNegative(t.text)
	if err != nil {
		return Reply{}, amountError(err, "Invalid.NonNegativeAmount")
	}
	e, err := c.pinned(ctx, t, permission.SalarySet)
	if err != nil {
		return Reply{}, err
	}
	if err := c.directory.SetSalary(ctx, t.who.ExternalID, e.ID, salary); err != nil {
		return Reply{}, err
	}
	t.conv.ClearFlow()
	return c.card(ctx, t, c.texts.Amount("Done.SalarySet", salary))
}

func (c *Controller) bindIdentity(ctx context.Context, t *turn) (Reply, error) {
	externalID, err := strconv.ParseInt(t.text, 10, 64)
	if err != nil || externalID <= 0 {
		return Reply{}, invalid("Invalid.ExternalID")
	}
	e, err := c.pinned(ctx, t, permission.EmployeeBindIdentity)
	if err != nil {
		return Reply{}, err
	}
	if err := c.directory.BindExternalID(ctx, t.who.ExternalID, e.ID, externalID); err != nil {
		return Reply{}, err
	}
	t.conv.ClearFlow()
	return c.card(ctx, t, c.texts.TD("Done.IdentityBound", map[string]any{
		"ExternalID": externalID,
		"Name":       e.FullName,
	}))
}

// prompt asks for the input of the current step.
func (c *Controller) prompt(ctx context.Context, t *turn) Reply {
	var id string
	switch f := t.conv.Flow.(type) {
	case *conversation.AddDepartmentFlow:
		id = "Prompt.DepartmentName"
	case *conversation.AddEmployeeFlow:
		switch f.Step {
		case conversation.StepPosition:
			id = "Prompt.Position"
		case conversation.StepDepartment:
			id = "Menu.PickDepartment"
		default:
			id = "Prompt.EmployeeName"
		}
	case *conversation.RecordAccrualFlow:
		switch f.Step {
		case conversation.StepEmployee:
			id = "Menu.PickAccrualEmployee"
		case conversation.StepComment:
			return Reply{
				Text: c.texts.T("Prompt."+promptKinds[f.AccrualKind]+"Comment") + "\n\n" + c.texts.T("Prompt.SkipComment"),
				Menu: [][]string{{skipComment}, {c.labels.Cancel}},
			}
		default:
			id = "Prompt." + promptKinds[f.AccrualKind] + "Amount"
		}
	case *conversation.SetSalaryFlow:
		id = "Prompt.NewSalary"
	case *conversation.BindIdentityFlow:
		id = "Prompt.ExternalID"
	default:
		return c.home(ctx, t, c.texts.T("Menu.Main"))
	}
	return Reply{Text: c.texts.T(id), Menu: c.stepMenu(ctx, t)}
}

// stepMenu is the keyboard shown while the current step waits for input.
func (c *Controller) stepMenu(ctx context.Context, t *turn) [][]string {
	switch f := t.conv.Flow.(type) {
	case *conversation.AddEmployeeFlow:
		if f.Step == conversation.StepDepartment {
			departments, err := c.directory.ListDepartments(ctx)
			if err != nil {
				c.logger.WithError(err).Warn("list departments for picker")
			}
			return presentation.DepartmentPicker(c.labels, departments)
		}
	case *conversation.RecordAccrualFlow:
		switch f.Step {
		case conversation.StepEmployee:
			candidates, err := c.scopedEmployees(ctx, t.who)
			if err != nil {
				c.logger.WithError(err).Warn("list employees for picker")
			}
			return presentation.Selection(c.labels, candidates)
		case conversation.StepComment:
			return [][]string{{skipComment}, {c.labels.Cancel}}
		}
	}
	return presentation.CancelOnly(c.labels)
}
