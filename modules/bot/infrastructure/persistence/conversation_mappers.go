package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/modules/bot/domain/conversation"
	"github.com/iota-uz/payroll-bot/modules/bot/infrastructure/persistence/models"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
)

func ToDBConversation(c *conversation.Context) (models.Conversation, error) {
	m := models.Conversation{
		UserID:           c.UserID,
		Retries:          c.Retries,
		PinnedDepartment: c.Pinned.DepartmentID,
		PinnedEmployee:   c.Pinned.EmployeeID,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.Flow == nil {
		return m, nil
	}

	var payload any
	switch f := c.Flow.(type) {
	case *conversation.AddEmployeeFlow:
		payload = models.AddEmployeeFlow{Step: string(f.Step), FullName: f.FullName, Position: f.Position}
	case *conversation.AddDepartmentFlow:
		payload = models.StepOnlyFlow{Step: string(f.Step)}
	case *conversation.SetSalaryFlow:
		payload = models.StepOnlyFlow{Step: string(f.Step)}
	case *conversation.BindIdentityFlow:
		payload = models.StepOnlyFlow{Step: string(f.Step)}
	case *conversation.RecordAccrualFlow:
		rf := models.RecordAccrualFlow{Step: string(f.Step), Kind: string(f.AccrualKind), EmployeeID: f.EmployeeID}
		if !f.Amount.IsZero() {
			rf.Amount = f.Amount.String()
		}
		payload = rf
	default:
		return m, fmt.Errorf("unsupported flow %T", c.Flow)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return m, errors.Wrap(err, "marshal flow")
	}
	m.FlowKind = string(c.Flow.Kind())
	m.Flow = raw
	return m, nil
}

func ToDomainConversation(m models.Conversation) (*conversation.Context, error) {
	c := &conversation.Context{
		UserID:  m.UserID,
		Retries: m.Retries,
		Pinned: conversation.Pinned{
			DepartmentID: m.PinnedDepartment,
			EmployeeID:   m.PinnedEmployee,
		},
		UpdatedAt: m.UpdatedAt,
	}
	if m.FlowKind == "" {
		return c, nil
	}

	switch conversation.FlowKind(m.FlowKind) {
	case conversation.FlowAddEmployee:
		var f models.AddEmployeeFlow
		if err := json.Unmarshal(m.Flow, &f); err != nil {
			return nil, errors.Wrap(err, "unmarshal add_employee flow")
		}
		c.Flow = &conversation.AddEmployeeFlow{Step: conversation.Step(f.Step), FullName: f.FullName, Position: f.Position}
	case conversation.FlowAddDepartment, conversation.FlowSetSalary, conversation.FlowBindIdentity:
		var f models.StepOnlyFlow
		if err := json.Unmarshal(m.Flow, &f); err != nil {
			return nil, errors.Wrapf(err, "unmarshal %s flow", m.FlowKind)
		}
		step := conversation.Step(f.Step)
		switch conversation.FlowKind(m.FlowKind) {
		case conversation.FlowAddDepartment:
			c.Flow = &conversation.AddDepartmentFlow{Step: step}
		case conversation.FlowSetSalary:
			c.Flow = &conversation.SetSalaryFlow{Step: step}
		default:
			c.Flow = &conversation.BindIdentityFlow{Step: step}
		}
	case conversation.FlowRecordAccrual:
		var f models.RecordAccrualFlow
		if err := json.Unmarshal(m.Flow, &f); err != nil {
			return nil, errors.Wrap(err, "unmarshal record_accrual flow")
		}
		rf := &conversation.RecordAccrualFlow{
			Step:        conversation.Step(f.Step),
			AccrualKind: accrual.Kind(f.Kind),
			EmployeeID:  f.EmployeeID,
		}
		if f.Amount != "" {
			amount, err := decimal.NewFromString(f.Amount)
			if err != nil {
				return nil, errors.Wrap(err, "parse amount")
			}
			rf.Amount = amount
		}
		c.Flow = rf
	default:
		return nil, fmt.Errorf("unknown flow kind %q", m.FlowKind)
	}
	return c, nil
}

func encode(c *conversation.Context) ([]byte, error) {
	m, err := ToDBConversation(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func decode(data []byte) (*conversation.Context, error) {
	var m models.Conversation
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal conversation")
	}
	return ToDomainConversation(m)
}
