package services

import (
	"context"

	"github.com/iota-uz/payroll-bot/modules/access/domain/permission"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
)

func (c *Controller) giveAdvance(ctx context.Context, t *turn) (Reply, error) {
	e, err := c.pinned(ctx, t, permission.AdvanceGive)
	if err != nil {
		return Reply{}, err
	}
	comment := c.texts.DefaultComment(accrual.KindAdvance, c.ledger.CurrentPeriod())
	rec, err := c.ledger.GiveAdvance(ctx, e.ID, t.who.ExternalID, comment)
	if err != nil {
		return Reply{}, err
	}
	return c.card(ctx, t, c.texts.Amount("Done.Advance", rec.Amount))
}

// givePayout pays the whole positive balance; otherwise the ledger is left untouched.
func (c *Controller) givePayout(ctx context.Context, t *turn) (Reply, error) {
	e, err := c.pinned(ctx, t, permission.PayoutGive)
	if err != nil {
		return Reply{}, err
	}
	comment := c.texts.DefaultComment(accrual.KindPayout, c.ledger.CurrentPeriod())
	res, err := c.ledger.PayoutBalance(ctx, e.ID, t.who.ExternalID, comment)
	if err != nil {
		return Reply{}, err
	}
	if !res.Paid {
		return c.card(ctx, t, c.texts.T("Done.NothingToPayout"))
	}
	return c.card(ctx, t, c.texts.Amount("Done.Payout", res.Amount))
}

func (c *Controller) promote(ctx context.Context, t *turn) (Reply, error) {
	e, err := c.pinned(ctx, t, permission.EmployeePromote)
	if err != nil {
		return Reply{}, err
	}
	if e.Role != employee.RoleManager {
		if err := c.directory.SetRole(ctx, t.who.ExternalID, e.ID, employee.RoleManager); err != nil {
			return Reply{}, err
		}
	}
	return c.card(ctx, t, c.texts.TD("Done.Promoted", map[string]any{"Name": e.FullName}))
}

// deactivate hides the employee and returns to the list it was picked from.
func (c *Controller) deactivate(ctx context.Context, t *turn) (Reply, error) {
	e, err := c.pinned(ctx, t, permission.EmployeeDeactivate)
	if err != nil {
		return Reply{}, err
	}
	if err := c.directory.Deactivate(ctx, t.who.ExternalID, e.ID); err != nil {
		return Reply{}, err
	}
	t.conv.ClearEmployee()
	return c.backToList(ctx, t, c.texts.TD("Done.Deactivated", map[string]any{"Name": e.FullName}))
}
