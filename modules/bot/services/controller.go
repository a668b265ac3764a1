package services

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/payroll-bot/modules/access/domain/identity"
	accessservices "github.com/iota-uz/payroll-bot/modules/access/services"
	"github.com/iota-uz/payroll-bot/modules/bot/domain/conversation"
	"github.com/iota-uz/payroll-bot/modules/bot/presentation"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	ledgerservices "github.com/iota-uz/payroll-bot/modules/ledger/services"
)

const (
	DefaultMaxRetries  = 5
	DefaultCardHistory = 5
)

// Inbound is one text message or button press.
type Inbound struct {
	UserID int64
	Text   string
}

// Reply is the answer to one Inbound. A nil Menu keeps the keyboard the user has;
// HideMenu removes it.
type Reply struct {
	Text     string
	Menu     [][]string
	HideMenu bool
}

type Resolver interface {
	Resolve(ctx context.Context, externalID int64) identity.Identity
}

type Directory interface {
	ListDepartments(ctx context.Context) ([]department.Department, error)
	GetDepartment(ctx context.Context, id int64) (department.Department, error)
	ListActiveEmployees(ctx context.Context, departmentID int64) ([]employee.Employee, error)
	FindActiveByName(ctx context.Context, name string, departmentID int64) ([]employee.Employee, error)
	GetEmployee(ctx context.Context, id int64) (employee.Employee, error)
	CreateDepartment(ctx context.Context, actorID int64, name, emoji string) (department.Department, error)
	CreateEmployee(ctx context.Context, actorID int64, data *employee.CreateDTO) (employee.Employee, error)
	SetSalary(ctx context.Context, actorID, employeeID int64, salary decimal.Decimal) error
	BindExternalID(ctx context.Context, actorID, employeeID, externalID int64) error
	SetRole(ctx context.Context, actorID, employeeID int64, role employee.Role) error
	Deactivate(ctx context.Context, actorID, employeeID int64) error
}

type Ledger interface {
	CurrentPeriod() accrual.Period
	AdvanceAmount() decimal.Decimal
	Record(ctx context.Context, p ledgerservices.AppendParams) (accrual.Record, error)
	BalanceOf(ctx context.Context, employeeID int64) (decimal.Decimal, error)
	Summary(ctx context.Context, employeeID int64) (accrual.Summary, error)
	RecentHistory(ctx context.Context, employeeID int64, limit int, period accrual.Period) iter.Seq2[accrual.Record, error]
	GiveAdvance(ctx context.Context, employeeID, creatorID int64, comment string) (accrual.Record, error)
	PayoutBalance(ctx context.Context, employeeID, creatorID int64, comment string) (ledgerservices.PayoutResult, error)
}

type Deps struct {
	Resolver      Resolver
	Gate          *accessservices.AccessGate
	Directory     Directory
	Ledger        Ledger
	Conversations conversation.Repository
	Locker        conversation.Locker
	Texts         *presentation.Texts
}

type Options struct {
	// MaxRetries bounds rejected inputs per flow before it is abandoned.
	MaxRetries int
	// CardHistory is the number of operations listed on an employee card.
	CardHistory int
	Logger      *logrus.Logger
}

// Controller runs the role-gated dialogue: one Handle call per inbound message.
type Controller struct {
	resolver      Resolver
	gate          *accessservices.AccessGate
	directory     Directory
	ledger        Ledger
	conversations conversation.Repository
	locker        conversation.Locker
	texts         *presentation.Texts
	labels        presentation.Labels
	maxRetries    int
	cardHistory   int
	logger        *logrus.Entry
	tracer        trace.Tracer
}

func NewController(deps Deps, opts Options) *Controller {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.CardHistory <= 0 {
		opts.CardHistory = DefaultCardHistory
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Controller{
		resolver:      deps.Resolver,
		gate:          deps.Gate,
		directory:     deps.Directory,
		ledger:        deps.Ledger,
		conversations: deps.Conversations,
		locker:        deps.Locker,
		texts:         deps.Texts,
		labels:        deps.Texts.Labels(deps.Ledger.AdvanceAmount()),
		maxRetries:    opts.MaxRetries,
		cardHistory:   opts.CardHistory,
		logger:        opts.Logger.WithField("component", "dialogue"),
		tracer:        otel.Tracer("payroll-bot/dialogue"),
	}
}

// Labels are the button texts the controller recognises.
func (c *Controller) Labels() presentation.Labels {
	return c.labels
}

// turn is the state of one Handle call.
type turn struct {
	who  identity.Identity
	conv *conversation.Context
	text string
	// hint is appended to a validation reply, e.g. a did-you-mean suggestion.
	hint string
}

// Handle processes one message. Turns of the same user are serialised; the returned
// error is set only when the conversation could not be loaded or stored. When storing
// fails after the turn was applied, its reply is returned together with the error.
func (c *Controller) Handle(ctx context.Context, in Inbound) (Reply, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "dialogue.Handle", trace.WithAttributes(
		attribute.Int64("user.id", in.UserID),
	))
	defer span.End()

	unlock, err := c.locker.Lock(ctx, in.UserID)
	if errors.Is(err, conversation.ErrBusy) {
		recordTurn(identity.RoleUnknown, "busy", time.Since(start))
		return Reply{Text: c.texts.T("Errors.Busy")}, nil
	}
	if err != nil {
		span.RecordError(err)
		return Reply{}, err
	}
	defer unlock()

	who := c.resolver.Resolve(ctx, in.UserID)
	span.SetAttributes(attribute.String("user.role", who.Role.String()))
	if !who.IsKnown() {
		recordTurn(who.Role, "denied", time.Since(start))
		return Reply{Text: c.texts.T("Start.Unknown"), HideMenu: true}, nil
	}

	conv, err := c.conversations.Get(ctx, in.UserID)
	if err != nil {
		span.RecordError(err)
		return Reply{}, err
	}

	t := &turn{who: who, conv: conv, text: strings.TrimSpace(in.Text)}
	outcome := "ok"
	reply, err := c.dispatch(ctx, t)
	if err != nil {
		class := Classify(err)
		outcome = class.String()
		span.SetAttributes(attribute.String("dialogue.error", outcome))
		reply = c.fail(ctx, t, class, err)
	}

	if err := c.persist(ctx, t.conv); err != nil {
		span.RecordError(err)
		recordTurn(who.Role, ClassStore.String(), time.Since(start))
		c.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": in.UserID,
			"outcome": outcome,
			"flow":    flowName(t.conv),
		}).Error("turn applied but conversation not stored")
		return reply, err
	}
	recordTurn(who.Role, outcome, time.Since(start))
	c.logger.WithFields(logrus.Fields{
		"user_id": in.UserID,
		"role":    who.Role,
		"outcome": outcome,
		"flow":    flowName(t.conv),
	}).Debug("turn handled")
	return reply, nil
}

func (c *Controller) persist(ctx context.Context, conv *conversation.Context) error {
	if conv.Empty() {
		return c.conversations.Delete(ctx, conv.UserID)
	}
	return c.conversations.Save(ctx, conv)
}

// dispatch gives /start and navigation labels precedence over flow input.
func (c *Controller) dispatch(ctx context.Context, t *turn) (Reply, error) {
	l := c.labels
	switch t.text {
	case presentation.CommandStart:
		t.conv.Reset()
		return c.home(ctx, t, c.texts.T("Start."+roleKey(t.who.Role))), nil
	case presentation.CommandHelp:
		reply := Reply{Text: c.texts.T("Help." + roleKey(t.who.Role))}
		if t.conv.InFlow() {
			reply.Menu = c.stepMenu(ctx, t)
		} else {
			reply.Menu = c.mainMenu(ctx, t.who)
		}
		return reply, nil
	case l.Cancel:
		t.conv.ClearFlow()
		if t.conv.Pinned.EmployeeID != 0 {
			return c.card(ctx, t, c.texts.T("Menu.Cancelled"))
		}
		return c.home(ctx, t, c.texts.T("Menu.Cancelled")), nil
	case l.BackToList:
		t.conv.ClearEmployee()
		return c.backToList(ctx, t, "")
	case l.BackToMain:
		t.conv.Reset()
		return c.home(ctx, t, c.texts.T("Menu.Main")), nil
	}
	if t.conv.InFlow() {
		return c.continueFlow(ctx, t)
	}
	return c.route(ctx, t)
}

// route handles input outside of any flow: menu labels, card actions and selections.
func (c *Controller) route(ctx context.Context, t *turn) (Reply, error) {
	l := c.labels
	switch t.text {
	case l.AllEmployees:
		return c.companyReport(ctx, t)
	case l.MyEmployees:
		return c.teamReport(ctx, t)
	case l.MySalary:
		return c.ownBalance(ctx, t)
	case l.AddDepartment:
		return c.startAddDepartment(ctx, t)
	case l.AddEmployee:
		return c.startAddEmployee(ctx, t)
	case l.AccrueSalary:
		return c.startAccrual(ctx, t, accrual.KindSalary, false)
	case l.AddBonus:
		return c.startAccrual(ctx, t, accrual.KindBonus, true)
	case l.AddDeduction:
		return c.startAccrual(ctx, t, accrual.KindDeduction, true)
	case l.AddAdvance:
		return c.startAccrual(ctx, t, accrual.KindAdvance, true)
	case l.SetSalary:
		return c.startSetSalary(ctx, t)
	case l.BindIdentity:
		return c.startBindIdentity(ctx, t)
	case l.GiveAdvance:
		return c.giveAdvance(ctx, t)
	case l.GivePayout:
		return c.givePayout(ctx, t)
	case l.Promote:
		return c.promote(ctx, t)
	case l.Deactivate:
		return c.deactivate(ctx, t)
	}

	if t.who.IsSuperAdmin() {
		d, ok, err := c.matchDepartment(ctx, t.text)
		if err != nil {
			return Reply{}, err
		}
		if ok {
			return c.openDepartment(ctx, t, d, "")
		}
	}
	return c.openEmployee(ctx, t)
}

// fail applies the error taxonomy to the conversation and builds the reply.
func (c *Controller) fail(ctx context.Context, t *turn, class Class, err error) Reply {
	switch class {
	case ClassValidation:
		if !t.conv.InFlow() {
			return c.home(ctx, t, c.texts.Error(err))
		}
		if t.conv.Fail(c.maxRetries) {
			t.conv.ClearFlow()
			return c.home(ctx, t, c.texts.T("Invalid.TooManyAttempts"))
		}
		text := c.texts.Error(err)
		if t.hint != "" {
			text += "\n" + t.hint
		}
		return Reply{Text: text, Menu: c.stepMenu(ctx, t)}
	case ClassAuthorization:
		t.conv.ClearFlow()
		return c.home(ctx, t, c.texts.Error(err))
	case ClassNotFound, ClassConflict:
		t.conv.Reset()
		return c.home(ctx, t, c.texts.Error(err))
	default:
		c.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": t.who.ExternalID,
			"role":    t.who.Role,
			"flow":    flowName(t.conv),
		}).Error("dialogue turn failed")
		t.conv.Reset()
		return c.home(ctx, t, c.texts.T("Errors.Generic"))
	}
}

func (c *Controller) home(ctx context.Context, t *turn, text string) Reply {
	return Reply{Text: text, Menu: c.mainMenu(ctx, t.who)}
}

func (c *Controller) mainMenu(ctx context.Context, who identity.Identity) [][]string {
	var departments []department.Department
	if who.IsSuperAdmin() {
		var err error
		departments, err = c.directory.ListDepartments(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("list departments for main menu")
		}
	}
	return presentation.MainMenu(who.Role, c.labels, departments)
}

var roleKeys = map[identity.Role]string{
	identity.RoleSuperAdmin: "SuperAdmin",
	identity.RoleManager:    "Manager",
	identity.RoleEmployee:   "Employee",
}

func roleKey(r identity.Role) string {
	if key, ok := roleKeys[r]; ok {
		return key
	}
	return "Unknown"
}

func flowName(conv *conversation.Context) string {
	if conv == nil || conv.Flow == nil {
		return ""
	}
	return string(conv.Flow.Kind())
}
