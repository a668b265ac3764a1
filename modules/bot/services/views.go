package services

import (
	"context"

	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
	"github.com/iota-uz/payroll-bot/modules/access/domain/permission"
	accessservices "github.com/iota-uz/payroll-bot/modules/access/services"
	"github.com/iota-uz/payroll-bot/modules/bot/presentation"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
)

func (c *Controller) companyReport(ctx context.Context, t *turn) (Reply, error) {
	if err := c.gate.Authorize(ctx, t.who, permission.EmployeeListAll); err != nil {
		return Reply{}, err
	}
	departments, err := c.directory.ListDepartments(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(departments) == 0 {
		return c.home(ctx, t, c.texts.T("Errors.NoDepartmentsYet")), nil
	}
	everyone, err := c.directory.ListActiveEmployees(ctx, 0)
	if err != nil {
		return Reply{}, err
	}
	staff := make(map[int64][]employee.Employee, len(departments))
	for _, e := range everyone {
		staff[e.DepartmentID] = append(staff[e.DepartmentID], e)
	}
	return Reply{
		Text: c.texts.CompanyReport(departments, staff),
		Menu: presentation.MainMenu(t.who.Role, c.labels, departments),
	}, nil
}

func (c *Controller) teamReport(ctx context.Context, t *turn) (Reply, error) {
	if err := c.gate.Authorize(ctx, t.who, permission.EmployeeListOwn); err != nil {
		return Reply{}, err
	}
	team, err := c.scopedEmployees(ctx, t.who)
	if err != nil {
		return Reply{}, err
	}
	if len(team) == 0 {
		return c.home(ctx, t, c.texts.T("Menu.NoDepartmentEmployees")), nil
	}
	return Reply{
		Text: c.texts.TeamReport(team),
		Menu: presentation.EmployeeList(c.labels, team),
	}, nil
}

func (c *Controller) openDepartment(ctx context.Context, t *turn, d department.Department, header string) (Reply, error) {
	if err := c.gate.Authorize(ctx, t.who, permission.DepartmentView); err != nil {
		return Reply{}, err
	}
	employees, err := c.directory.ListActiveEmployees(ctx, d.ID)
	if err != nil {
		return Reply{}, err
	}
	t.conv.PinDepartment(d.ID)
	return Reply{
		Text: withHeader(header, c.texts.DepartmentView(d, len(employees) == 0)),
		Menu: presentation.EmployeeList(c.labels, employees),
	}, nil
}

// backToList returns to the list the pinned employee was picked from.
func (c *Controller) backToList(ctx context.Context, t *turn, header string) (Reply, error) {
	switch {
	case t.who.IsSuperAdmin() && t.conv.Pinned.DepartmentID != 0:
		d, err := c.directory.GetDepartment(ctx, t.conv.Pinned.DepartmentID)
		if err != nil {
			return Reply{}, err
		}
		return c.openDepartment(ctx, t, d, header)
	case t.who.IsManager():
		reply, err := c.teamReport(ctx, t)
		reply.Text = withHeader(header, reply.Text)
		return reply, err
	default:
		t.conv.Reset()
		if header == "" {
			header = c.texts.T("Menu.Main")
		}
		return c.home(ctx, t, header), nil
	}
}

func (c *Controller) ownBalance(ctx context.Context, t *turn) (Reply, error) {
	if err := c.gate.Authorize(ctx, t.who, permission.BalanceViewOwn); err != nil {
		return Reply{}, err
	}
	self, err := c.directory.GetEmployee(ctx, t.who.EmployeeID)
	if err != nil {
		return Reply{}, err
	}
	if err := c.gate.AuthorizeEmployee(ctx, t.who, permission.BalanceViewOwn, self); err != nil {
		return Reply{}, err
	}
	balance, err := c.ledger.BalanceOf(ctx, self.ID)
	if err != nil {
		return Reply{}, err
	}
	return c.home(ctx, t, c.texts.OwnBalance(self, balance)), nil
}

// openEmployee shows the card of the typed or tapped employee.
func (c *Controller) openEmployee(ctx context.Context, t *turn) (Reply, error) {
	if !c.gate.Allowed(ctx, t.who, permission.EmployeeView) {
		return c.unknownCommand(ctx, t), nil
	}
	e, ambiguous, err := c.resolveEmployee(ctx, t, t.text)
	switch {
	case isAny(err, employee.ErrEmployeeNotFound, ErrNoSelection):
		return c.unknownCommand(ctx, t), nil
	case err != nil:
		return Reply{}, err
	case len(ambiguous) > 0:
		return Reply{
			Text: c.texts.T("Menu.Ambiguous"),
			Menu: presentation.Selection(c.labels, ambiguous),
		}, nil
	}
	if err := c.gate.AuthorizeEmployee(ctx, t.who, permission.EmployeeView, e); err != nil {
		return Reply{}, err
	}
	t.conv.Pinned.DepartmentID = e.DepartmentID
	t.conv.PinEmployee(e.ID)
	return c.card(ctx, t, "")
}

// card renders the pinned employee with the actions the caller may take.
func (c *Controller) card(ctx context.Context, t *turn, header string) (Reply, error) {
	e, err := c.pinned(ctx, t, permission.EmployeeView)
	if err != nil {
		return Reply{}, err
	}
	summary, err := c.ledger.Summary(ctx, e.ID)
	if err != nil {
		return Reply{}, err
	}
	recent, err := c.recent(ctx, e.ID)
	if err != nil {
		return Reply{}, err
	}
	return Reply{
		Text: withHeader(header, c.texts.EmployeeCard(e, summary, recent)),
		Menu: presentation.CardMenu(c.labels, c.cardActions(ctx, t.who, e)),
	}, nil
}

func (c *Controller) cardActions(ctx context.Context, who identity.Identity, e employee.Employee) presentation.CardActions {
	allowed := func(a permission.Action) bool {
		return c.gate.Allowed(ctx, who, a)
	}
	return presentation.CardActions{
		Advance:      allowed(permission.AdvanceGive),
		OtherAdvance: allowed(permission.AccrualAdvance),
		Payout:       allowed(permission.PayoutGive),
		Promote:      allowed(permission.EmployeePromote) && e.Role == employee.RoleEmployee,
		SetSalary:    allowed(permission.SalarySet),
		Bonus:        allowed(permission.AccrualBonus),
		Deduction:    allowed(permission.AccrualDeduction),
		BindIdentity: allowed(permission.EmployeeBindIdentity),
		Deactivate:   allowed(permission.EmployeeDeactivate),
	}
}

func (c *Controller) recent(ctx context.Context, employeeID int64) ([]accrual.Record, error) {
	records := make([]accrual.Record, 0, c.cardHistory)
	for r, err := range c.ledger.RecentHistory(ctx, employeeID, c.cardHistory, "") {
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// pinned loads the pinned employee and checks action on it.
func (c *Controller) pinned(ctx context.Context, t *turn, action permission.Action) (employee.Employee, error) {
	if t.conv.Pinned.EmployeeID == 0 {
		return employee.Employee{}, ErrNoSelection
	}
	e, err := c.directory.GetEmployee(ctx, t.conv.Pinned.EmployeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !e.IsActive {
		return employee.Employee{}, employee.ErrInactive
	}
	if err := c.gate.AuthorizeEmployee(ctx, t.who, action, e); err != nil {
		return employee.Employee{}, err
	}
	return e, nil
}

// resolveEmployee turns a selection label or typed name into one active employee.
// Several in-scope matches are returned as ambiguous; a lone out-of-scope match is
// returned as is so the caller's scope check refuses it.
func (c *Controller) resolveEmployee(ctx context.Context, t *turn, text string) (employee.Employee, []employee.Employee, error) {
	sel := employee.ParseSelection(text)
	if sel.ID > 0 {
		e, err := c.directory.GetEmployee(ctx, sel.ID)
		if err != nil {
			return employee.Employee{}, nil, err
		}
		if !e.IsActive {
			return employee.Employee{}, nil, employee.ErrInactive
		}
		return e, nil, nil
	}
	if sel.Name == "" {
		return employee.Employee{}, nil, ErrNoSelection
	}

	matches, err := c.directory.FindActiveByName(ctx, sel.Name, 0)
	if err != nil {
		return employee.Employee{}, nil, err
	}
	if len(matches) == 0 {
		return employee.Employee{}, nil, employee.ErrEmployeeNotFound
	}
	scoped := make([]employee.Employee, 0, len(matches))
	for _, m := range matches {
		if accessservices.InScope(t.who, m) {
			scoped = append(scoped, m)
		}
	}
	if len(scoped) == 0 {
		return matches[0], nil, nil
	}
	if pinned := t.conv.Pinned.DepartmentID; pinned != 0 && len(scoped) > 1 {
		var inDepartment []employee.Employee
		for _, m := range scoped {
			if m.DepartmentID == pinned {
				inDepartment = append(inDepartment, m)
			}
		}
		if len(inDepartment) > 0 {
			scoped = inDepartment
		}
	}
	if len(scoped) == 1 {
		return scoped[0], nil, nil
	}
	return employee.Employee{}, scoped, nil
}

// scopedEmployees lists the active employees the caller can reach.
func (c *Controller) scopedEmployees(ctx context.Context, who identity.Identity) ([]employee.Employee, error) {
	switch who.Role {
	case identity.RoleSuperAdmin:
		return c.directory.ListActiveEmployees(ctx, 0)
	case identity.RoleManager:
		var out []employee.Employee
		for _, id := range who.DepartmentIDs {
			employees, err := c.directory.ListActiveEmployees(ctx, id)
			if err != nil {
				return nil, err
			}
			out = append(out, employees...)
		}
		return out, nil
	default:
		return nil, nil
	}
}

func (c *Controller) matchDepartment(ctx context.Context, text string) (department.Department, bool, error) {
	departments, err := c.directory.ListDepartments(ctx)
	if err != nil {
		return department.Department{}, false, err
	}
	for _, d := range departments {
		if d.MatchesLabel(text) {
			return d, true, nil
		}
	}
	return department.Department{}, false, nil
}

func (c *Controller) unknownCommand(ctx context.Context, t *turn) Reply {
	text := c.texts.T("Errors.UnknownCommand")
	if hint := c.didYouMean(ctx, t); hint != "" {
		text += "\n" + hint
	}
	return c.home(ctx, t, text)
}

func withHeader(header, body string) string {
	if header == "" {
		return body
	}
	return header + "\n\n" + body
}
