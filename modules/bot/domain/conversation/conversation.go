package conversation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

// ErrBusy is returned by a Locker that gave up waiting for another turn of the same user.
var ErrBusy = serrors.NewError("CONVERSATION_BUSY", "conversation is busy", "Errors.Busy")

type FlowKind string

const (
	FlowAddEmployee   FlowKind = "add_employee"
	FlowAddDepartment FlowKind = "add_department"
	FlowRecordAccrual FlowKind = "record_accrual"
	FlowSetSalary     FlowKind = "set_salary"
	FlowBindIdentity  FlowKind = "bind_identity"
)

type Step string

const (
	StepName       Step = "awaiting_name"
	StepPosition   Step = "awaiting_position"
	StepDepartment Step = "awaiting_department"
	StepEmployee   Step = "awaiting_employee"
	StepAmount     Step = "awaiting_amount"
	StepComment    Step = "awaiting_comment"
	StepExternalID Step = "awaiting_external_id"
)

// Flow is one of the *...Flow variants below. Each variant holds only the fields its steps collect.
type Flow interface {
	Kind() FlowKind
	Current() Step
}

type AddEmployeeFlow struct {
	Step     Step
	FullName string
	Position string
}

func (f *AddEmployeeFlow) Kind() FlowKind { return FlowAddEmployee }
func (f *AddEmployeeFlow) Current() Step  { return f.Step }

type AddDepartmentFlow struct {
	Step Step
}

func (f *AddDepartmentFlow) Kind() FlowKind { return FlowAddDepartment }
func (f *AddDepartmentFlow) Current() Step  { return f.Step }

// RecordAccrualFlow fixes the accrual kind when the flow starts.
type RecordAccrualFlow struct {
	Step        Step
	AccrualKind accrual.Kind
	EmployeeID  int64
	Amount      decimal.Decimal
}

func (f *RecordAccrualFlow) Kind() FlowKind { return FlowRecordAccrual }
func (f *RecordAccrualFlow) Current() Step  { return f.Step }

type SetSalaryFlow struct {
	Step Step
}

func (f *SetSalaryFlow) Kind() FlowKind { return FlowSetSalary }
func (f *SetSalaryFlow) Current() Step  { return f.Step }

type BindIdentityFlow struct {
	Step Step
}

func (f *BindIdentityFlow) Kind() FlowKind { return FlowBindIdentity }
func (f *BindIdentityFlow) Current() Step  { return f.Step }

// Pinned is the selection in view. It outlives flows.
type Pinned struct {
	DepartmentID int64
	EmployeeID   int64
}

// Context is the dialogue state of one external user.
type Context struct {
	UserID    int64
	Flow      Flow
	Retries   int
	Pinned    Pinned
	UpdatedAt time.Time
}

func New(userID int64) *Context {
	return &Context{UserID: userID}
}

func (c *Context) InFlow() bool {
	return c.Flow != nil
}

// Start replaces the active flow and resets the retry counter.
func (c *Context) Start(f Flow) {
	c.Flow = f
	c.Retries = 0
}

// Advance is called after a step accepted its input.
func (c *Context) Advance() {
	c.Retries = 0
}

// Fail counts a rejected input and reports whether max attempts are used up.
func (c *Context) Fail(max int) bool {
	c.Retries++
	return max > 0 && c.Retries >= max
}

// ClearFlow ends the active flow; pins stay.
func (c *Context) ClearFlow() {
	c.Flow = nil
	c.Retries = 0
}

// ClearEmployee ends the flow and unpins the employee.
func (c *Context) ClearEmployee() {
	c.ClearFlow()
	c.Pinned.EmployeeID = 0
}

// Reset ends the flow and drops every pin.
func (c *Context) Reset() {
	c.ClearFlow()
	c.Pinned = Pinned{}
}

func (c *Context) PinDepartment(id int64) {
	c.Pinned = Pinned{DepartmentID: id}
}

func (c *Context) PinEmployee(id int64) {
	c.Pinned.EmployeeID = id
}

// Empty reports whether there is nothing worth persisting.
func (c *Context) Empty() bool {
	return c.Flow == nil && c.Pinned == Pinned{}
}

type Repository interface {
	// Get returns the stored context or a fresh one for userID.
	Get(ctx context.Context, userID int64) (*Context, error)
	Save(ctx context.Context, c *Context) error
	Delete(ctx context.Context, userID int64) error
}

// Locker serialises turns of one user. unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, userID int64) (unlock func(), err error)
}
