package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	accessservices "github.com/iota-uz/payroll-bot/modules/access/services"
	"github.com/iota-uz/payroll-bot/modules/bot/domain/conversation"
	botpersistence "github.com/iota-uz/payroll-bot/modules/bot/infrastructure/persistence"
	"github.com/iota-uz/payroll-bot/modules/bot/presentation"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	dirpersistence "github.com/iota-uz/payroll-bot/modules/directory/infrastructure/persistence"
	dirservices "github.com/iota-uz/payroll-bot/modules/directory/services"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	ledgerpersistence "github.com/iota-uz/payroll-bot/modules/ledger/infrastructure/persistence"
	ledgerservices "github.com/iota-uz/payroll-bot/modules/ledger/services"
	"github.com/iota-uz/payroll-bot/pkg/application"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/eventbus"
	"github.com/iota-uz/payroll-bot/pkg/money"
)

const (
	adminID    int64 = 1000
	managerID  int64 = 2000
	workerID   int64 = 3000
	strangerID int64 = 4000
)

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type countingRepo struct {
	*botpersistence.MemoryRepository
	calls int
}

func (r *countingRepo) Get(ctx context.Context, userID int64) (*conversation.Context, error) {
	r.calls++
	return r.MemoryRepository.Get(ctx, userID)
}

func (r *countingRepo) Save(ctx context.Context, c *conversation.Context) error {
	r.calls++
	return r.MemoryRepository.Save(ctx, c)
}

func (r *countingRepo) Delete(ctx context.Context, userID int64) error {
	r.calls++
	return r.MemoryRepository.Delete(ctx, userID)
}

var errStoreDown = errors.New("store down")

// failingSaveRepo loses every write.
type failingSaveRepo struct {
	*botpersistence.MemoryRepository
}

func (failingSaveRepo) Save(ctx context.Context, c *conversation.Context) error {
	return errStoreDown
}

type busyLocker struct{}

func (busyLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	return nil, conversation.ErrBusy
}

type harness struct {
	ctx           context.Context
	ctrl          *Controller
	directory     *dirservices.DirectoryService
	ledger        *ledgerservices.LedgerService
	conversations *countingRepo
	texts         *presentation.Texts
	labels        presentation.Labels

	sklad, it                  department.Department
	manager, worker, outsider employee.Employee
}

func newTexts(t *testing.T) *presentation.Texts {
	t.Helper()
	bundle := application.LoadBundle("ru")
	for _, name := range []string{"ru.toml", "en.toml"} {
		data, err := presentation.LocaleFiles.ReadFile("locales/" + name)
		require.NoError(t, err)
		_, err = bundle.ParseMessageFileBytes(data, name)
		require.NoError(t, err)
	}
	return presentation.NewTexts(bundle, "ru", money.NewFormatter("RUB"))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	ctx := composables.WithoutDB(context.Background())

	store := dirpersistence.NewMemoryStore()
	bus := eventbus.NewEventPublisher(logger)
	directory := dirservices.NewDirectoryService(store.Departments(), store.Employees(), bus)
	ledger := ledgerservices.NewLedgerService(
		ledgerpersistence.NewMemoryAccrualRepository().WithClock(func() time.Time { return fixedNow }),
		bus,
		ledgerservices.Options{
			AdvanceAmount: decimal.NewFromInt(20000),
			Logger:        logger,
			Now:           func() time.Time { return fixedNow },
		},
	)
	gate, err := accessservices.NewAccessGate(logger)
	require.NoError(t, err)
	texts := newTexts(t)
	conversations := &countingRepo{MemoryRepository: botpersistence.NewMemoryRepository(time.Hour)}

	ctrl := NewController(Deps{
		Resolver:      accessservices.NewIdentityResolver([]int64{adminID}, directory, logger),
		Gate:          gate,
		Directory:     directory,
		Ledger:        ledger,
		Conversations: conversations,
		Locker:        botpersistence.NewMemoryLocker(),
		Texts:         texts,
	}, Options{MaxRetries: 3, Logger: logger})

	h := &harness{
		ctx:           ctx,
		ctrl:          ctrl,
		directory:     directory,
		ledger:        ledger,
		conversations: conversations,
		texts:         texts,
		labels:        ctrl.Labels(),
	}
	h.sklad, err = directory.CreateDepartment(ctx, adminID, "Склад", "")
	require.NoError(t, err)
	h.it, err = directory.CreateDepartment(ctx, adminID, "IT", "🧮")
	require.NoError(t, err)
	h.manager = h.createEmployee(t, "Анна Иванова", "начальник склада", h.sklad.ID, managerID, employee.RoleManager)
	h.worker = h.createEmployee(t, "Иван Петров", "кладовщик", h.sklad.ID, workerID, employee.RoleEmployee)
	h.outsider = h.createEmployee(t, "Пётр Сидоров", "разработчик", h.it.ID, 0, employee.RoleEmployee)
	return h
}

func (h *harness) createEmployee(t *testing.T, name, position string, departmentID, externalID int64, role employee.Role) employee.Employee {
	t.Helper()
	dto := &employee.CreateDTO{FullName: name, Position: position, DepartmentID: departmentID, Role: role}
	if externalID != 0 {
		dto.ExternalID = &externalID
	}
	e, err := h.directory.CreateEmployee(h.ctx, adminID, dto)
	require.NoError(t, err)
	return e
}

func (h *harness) send(t *testing.T, userID int64, text string) Reply {
	t.Helper()
	reply, err := h.ctrl.Handle(h.ctx, Inbound{UserID: userID, Text: text})
	require.NoError(t, err)
	return reply
}

func (h *harness) conv(t *testing.T, userID int64) *conversation.Context {
	t.Helper()
	c, err := h.conversations.MemoryRepository.Get(h.ctx, userID)
	require.NoError(t, err)
	return c
}

func (h *harness) balance(t *testing.T, employeeID int64) decimal.Decimal {
	t.Helper()
	b, err := h.ledger.BalanceOf(h.ctx, employeeID)
	require.NoError(t, err)
	return b
}

func (h *harness) openCard(t *testing.T, e employee.Employee) Reply {
	t.Helper()
	d := h.sklad
	if e.DepartmentID == h.it.ID {
		d = h.it
	}
	list := h.send(t, adminID, d.Label())
	require.Contains(t, presentation.Flatten(list.Menu), e.Label())
	card := h.send(t, adminID, e.Label())
	require.Contains(t, card.Text, e.FullName)
	return card
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestHandle_UnknownUserIsDeniedWithoutState(t *testing.T) {
	h := newHarness(t)
	departments, err := h.directory.ListDepartments(h.ctx)
	require.NoError(t, err)

	for _, text := range []string{"/start", h.labels.AddDepartment, "Новый отдел", h.labels.AllEmployees} {
		reply := h.send(t, strangerID, text)
		require.Equal(t, h.texts.T("Start.Unknown"), reply.Text)
		require.True(t, reply.HideMenu)
		require.Nil(t, reply.Menu)
	}

	require.Zero(t, h.conversations.calls)
	require.Zero(t, h.conversations.Len())
	after, err := h.directory.ListDepartments(h.ctx)
	require.NoError(t, err)
	require.Equal(t, departments, after)
}

func TestHandle_StartShowsRoleMenu(t *testing.T) {
	h := newHarness(t)

	admin := h.send(t, adminID, "/start")
	require.Equal(t, h.texts.T("Start.SuperAdmin"), admin.Text)
	require.Equal(t, []string{h.sklad.Label(), h.it.Label(), h.labels.AllEmployees, h.labels.AddEmployee, h.labels.AddDepartment}, presentation.Flatten(admin.Menu))

	manager := h.send(t, managerID, "/start")
	require.Equal(t, h.texts.T("Start.Manager"), manager.Text)
	require.Equal(t, []string{h.labels.MyEmployees, h.labels.AccrueSalary, h.labels.AddEmployee}, presentation.Flatten(manager.Menu))

	worker := h.send(t, workerID, "/start")
	require.Equal(t, h.texts.T("Start.Employee"), worker.Text)
	require.Equal(t, []string{h.labels.MySalary}, presentation.Flatten(worker.Menu))

	help := h.send(t, managerID, "/help")
	require.Equal(t, h.texts.T("Help.Manager"), help.Text)
}

func TestHandle_Busy(t *testing.T) {
	h := newHarness(t)
	h.ctrl.locker = busyLocker{}

	reply := h.send(t, adminID, "/start")
	require.Equal(t, h.texts.T("Errors.Busy"), reply.Text)
	require.Zero(t, h.conversations.calls)
}

func TestHandle_StoreFailureKeepsAppliedReply(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.worker)
	h.ctrl.conversations = failingSaveRepo{h.conversations.MemoryRepository}

	reply, err := h.ctrl.Handle(h.ctx, Inbound{UserID: adminID, Text: h.labels.GiveAdvance})
	require.ErrorIs(t, err, errStoreDown)
	require.Contains(t, reply.Text, h.texts.Amount("Done.Advance", dec(20000)))
	require.True(t, h.balance(t, h.worker.ID).Equal(dec(-20000)))
}

func TestAddDepartment(t *testing.T) {
	h := newHarness(t)

	prompt := h.send(t, adminID, h.labels.AddDepartment)
	require.Equal(t, h.texts.T("Prompt.DepartmentName"), prompt.Text)
	require.Equal(t, presentation.CancelOnly(h.labels), prompt.Menu)

	empty := h.send(t, adminID, "   ")
	require.Equal(t, h.texts.T("Invalid.EmptyDepartmentName"), empty.Text)

	done := h.send(t, adminID, "  Отдел   продаж ")
	require.Equal(t, h.texts.TD("Done.DepartmentCreated", map[string]any{"Name": "Отдел продаж"}), done.Text)
	require.Contains(t, presentation.Flatten(done.Menu), "🏢 Отдел продаж")
	require.True(t, h.conv(t, adminID).Empty())
}

func TestAddDepartment_DuplicateIsRejected(t *testing.T) {
	h := newHarness(t)

	h.send(t, adminID, h.labels.AddDepartment)
	reply := h.send(t, adminID, "Склад")
	require.Equal(t, h.texts.T("Errors.DepartmentExists"), reply.Text)

	departments, err := h.directory.ListDepartments(h.ctx)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	require.True(t, h.conv(t, adminID).Empty())
	require.Zero(t, h.conversations.Len())
}

func TestAddDepartment_DeniedToManager(t *testing.T) {
	h := newHarness(t)

	reply := h.send(t, managerID, h.labels.AddDepartment)
	require.Equal(t, h.texts.T("Authorization.PermissionDenied"), reply.Text)
	require.False(t, h.conv(t, managerID).InFlow())
}

func TestAddEmployee_ManagerUsesOwnDepartment(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, h.texts.T("Prompt.EmployeeName"), h.send(t, managerID, h.labels.AddEmployee).Text)
	require.Equal(t, h.texts.T("Prompt.Position"), h.send(t, managerID, "Ольга   Кузнецова").Text)
	done := h.send(t, managerID, "бухгалтер")
	require.Equal(t, h.texts.TD("Done.EmployeeCreated", map[string]any{
		"Name":       "Ольга Кузнецова",
		"Position":   "бухгалтер",
		"Department": "Склад",
	}), done.Text)

	found, err := h.directory.FindActiveByName(h.ctx, "Ольга Кузнецова", h.sklad.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, employee.RoleEmployee, found[0].Role)
}

func TestAddEmployee_SuperAdminPicksDepartment(t *testing.T) {
	h := newHarness(t)

	h.send(t, adminID, h.labels.AddEmployee)
	h.send(t, adminID, "Мария Орлова")
	picker := h.send(t, adminID, "аналитик")
	require.Equal(t, h.texts.T("Menu.PickDepartment"), picker.Text)
	require.Equal(t, presentation.DepartmentPicker(h.labels, []department.Department{h.sklad, h.it}), picker.Menu)

	wrong := h.send(t, adminID, "Бухгалтерия")
	require.Equal(t, h.texts.T("Invalid.Department"), wrong.Text)
	require.True(t, h.conv(t, adminID).InFlow())

	h.send(t, adminID, h.it.Label())
	found, err := h.directory.FindActiveByName(h.ctx, "Мария Орлова", h.it.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.False(t, h.conv(t, adminID).InFlow())
}

func TestRecordAccrual_ManagerCannotSelectOutsideScope(t *testing.T) {
	h := newHarness(t)

	picker := h.send(t, managerID, h.labels.AccrueSalary)
	require.Equal(t, h.texts.T("Menu.PickAccrualEmployee"), picker.Text)
	labels := presentation.Flatten(picker.Menu)
	require.Contains(t, labels, h.worker.QualifiedLabel())
	require.NotContains(t, labels, h.outsider.QualifiedLabel())

	refusal := h.send(t, managerID, "Пётр Сидоров")
	require.Equal(t, h.texts.TD("Authorization.OutOfScope", map[string]any{"employee": "Пётр Сидоров"}), refusal.Text)
	require.False(t, h.conv(t, managerID).InFlow())

	h.send(t, managerID, h.labels.AccrueSalary)
	byID := h.send(t, managerID, h.outsider.QualifiedLabel())
	require.Equal(t, refusal.Text, byID.Text)

	card := h.send(t, managerID, h.outsider.Label())
	require.Equal(t, refusal.Text, card.Text)
	require.True(t, h.balance(t, h.outsider.ID).IsZero())
}

func TestRecordAccrual_ManagerSalary(t *testing.T) {
	h := newHarness(t)

	h.send(t, managerID, h.labels.AccrueSalary)
	amount := h.send(t, managerID, h.worker.QualifiedLabel())
	require.Equal(t, h.texts.T("Prompt.SalaryAmount"), amount.Text)
	comment := h.send(t, managerID, "50000,50")
	require.Contains(t, comment.Text, h.texts.T("Prompt.SalaryComment"))
	require.Equal(t, [][]string{{"-"}, {h.labels.Cancel}}, comment.Menu)

	card := h.send(t, managerID, "оклад за март")
	require.Contains(t, card.Text, h.texts.TD("Done.Salary", map[string]any{
		"Amount": h.texts.Money(decimal.RequireFromString("50000.50")),
		"Name":   h.worker.FullName,
	}))
	require.True(t, h.balance(t, h.worker.ID).Equal(decimal.RequireFromString("50000.50")))

	records, err := h.ledger.Records(h.ctx, h.worker.ID, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, accrual.Period("2026-03"), records[0].Period)
	require.Equal(t, "оклад за март", records[0].Comment)
	require.Equal(t, managerID, records[0].CreatedBy)

	conv := h.conv(t, managerID)
	require.False(t, conv.InFlow())
	require.Equal(t, h.worker.ID, conv.Pinned.EmployeeID)

	menu := presentation.Flatten(card.Menu)
	require.NotContains(t, menu, h.labels.GivePayout)
	require.NotContains(t, menu, h.labels.AddAdvance)
	require.Contains(t, menu, h.labels.AddBonus)
}

func TestRecordAccrual_RetryLimit(t *testing.T) {
	h := newHarness(t)

	h.send(t, managerID, h.labels.AccrueSalary)
	h.send(t, managerID, h.worker.QualifiedLabel())

	first := h.send(t, managerID, "abc")
	require.Equal(t, h.texts.T("Invalid.Amount"), first.Text)
	require.Equal(t, presentation.CancelOnly(h.labels), first.Menu)
	second := h.send(t, managerID, "-5")
	require.Equal(t, h.texts.T("Invalid.Amount"), second.Text)
	require.Equal(t, 2, h.conv(t, managerID).Retries)

	last := h.send(t, managerID, "1.234")
	require.Equal(t, h.texts.T("Invalid.TooManyAttempts"), last.Text)
	require.False(t, h.conv(t, managerID).InFlow())
	require.True(t, h.balance(t, h.worker.ID).IsZero())
}

func TestRecordAccrual_TooLargeAmountRePrompts(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.worker)
	h.send(t, adminID, h.labels.AddBonus)

	reply := h.send(t, adminID, "100000000000000000")
	require.Equal(t, h.texts.T("Invalid.AmountTooLarge"), reply.Text)
	require.Equal(t, presentation.CancelOnly(h.labels), reply.Menu)
	conv := h.conv(t, adminID)
	require.True(t, conv.InFlow())
	require.Equal(t, 1, conv.Retries)

	comment := h.send(t, adminID, "1000000000000")
	require.Equal(t, h.texts.T("Invalid.AmountTooLarge"), comment.Text)

	comment = h.send(t, adminID, "999999999999,99")
	require.Contains(t, comment.Text, h.texts.T("Prompt.BonusComment"))
	done := h.send(t, adminID, "-")
	require.Contains(t, done.Text, h.texts.Amount("Done.Bonus", decimal.RequireFromString("999999999999.99")))
	require.True(t, h.balance(t, h.worker.ID).Equal(money.MaxAmount))
}

func TestCard_AdvanceWithTypedAmount(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.worker)

	require.Equal(t, h.texts.T("Prompt.AdvanceAmount"), h.send(t, adminID, h.labels.AddAdvance).Text)
	comment := h.send(t, adminID, "15000")
	require.Contains(t, comment.Text, h.texts.T("Prompt.AdvanceComment"))
	done := h.send(t, adminID, "-")
	require.Contains(t, done.Text, h.texts.Amount("Done.Advance", dec(15000)))
	require.True(t, h.balance(t, h.worker.ID).Equal(dec(-15000)))

	records, err := h.ledger.Records(h.ctx, h.worker.ID, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, accrual.KindAdvance, records[0].Kind)
	require.Equal(t, h.texts.DefaultComment(accrual.KindAdvance, "2026-03"), records[0].Comment)
	require.Equal(t, adminID, records[0].CreatedBy)
}

func TestCard_AdvanceWithTypedAmountDeniedToManager(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.worker)
	h.send(t, managerID, h.worker.QualifiedLabel())

	reply := h.send(t, managerID, h.labels.AddAdvance)
	require.Equal(t, h.texts.T("Authorization.PermissionDenied"), reply.Text)
	require.False(t, h.conv(t, managerID).InFlow())
	require.True(t, h.balance(t, h.worker.ID).IsZero())
}

func TestRecordAccrual_UnknownEmployeeRePrompts(t *testing.T) {
	h := newHarness(t)

	h.send(t, managerID, h.labels.AccrueSalary)
	reply := h.send(t, managerID, "Иван Петро")
	require.Contains(t, reply.Text, h.texts.T("Invalid.Employee"))
	require.Contains(t, reply.Text, h.worker.Label())
	require.True(t, h.conv(t, managerID).InFlow())
	require.Contains(t, presentation.Flatten(reply.Menu), h.worker.QualifiedLabel())
}

func TestCard_BonusDeductionPayout(t *testing.T) {
	h := newHarness(t)
	card := h.openCard(t, h.worker)
	require.Equal(t, presentation.CardMenu(h.labels, presentation.CardActions{
		Advance: true, OtherAdvance: true, Payout: true, Promote: true, SetSalary: true,
		Bonus: true, Deduction: true, BindIdentity: true, Deactivate: true,
	}), card.Menu)

	require.Equal(t, h.texts.T("Prompt.BonusAmount"), h.send(t, adminID, h.labels.AddBonus).Text)
	h.send(t, adminID, "10000")
	bonus := h.send(t, adminID, "-")
	require.Contains(t, bonus.Text, h.texts.Amount("Done.Bonus", dec(10000)))

	require.Equal(t, h.texts.T("Prompt.DeductionAmount"), h.send(t, adminID, h.labels.AddDeduction).Text)
	h.send(t, adminID, "2000")
	deduction := h.send(t, adminID, "опоздание")
	require.Contains(t, deduction.Text, h.texts.Amount("Done.Deduction", dec(2000)))
	require.Contains(t, deduction.Text, h.texts.Amount("Card.Total", dec(8000)))

	payout := h.send(t, adminID, h.labels.GivePayout)
	require.Contains(t, payout.Text, h.texts.Amount("Done.Payout", dec(8000)))
	require.True(t, h.balance(t, h.worker.ID).IsZero())

	again := h.send(t, adminID, h.labels.GivePayout)
	require.Contains(t, again.Text, h.texts.T("Done.NothingToPayout"))

	records, err := h.ledger.Records(h.ctx, h.worker.ID, "")
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, h.texts.DefaultComment(accrual.KindBonus, "2026-03"), records[0].Comment)
	require.Equal(t, accrual.KindPayout, records[2].Kind)
	require.Equal(t, h.texts.DefaultComment(accrual.KindPayout, "2026-03"), records[2].Comment)
}

func TestCard_PayoutOnNonPositiveBalanceIsNoop(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.worker)

	advance := h.send(t, adminID, h.labels.GiveAdvance)
	require.Contains(t, advance.Text, h.texts.Amount("Done.Advance", dec(20000)))
	require.True(t, h.balance(t, h.worker.ID).Equal(dec(-20000)))

	payout := h.send(t, adminID, h.labels.GivePayout)
	require.Contains(t, payout.Text, h.texts.T("Done.NothingToPayout"))
	records, err := h.ledger.Records(h.ctx, h.worker.ID, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestCard_SetSalaryAndBindIdentity(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.outsider)

	h.send(t, adminID, h.labels.SetSalary)
	require.Equal(t, h.texts.T("Invalid.NonNegativeAmount"), h.send(t, adminID, "много").Text)
	set := h.send(t, adminID, "55000")
	require.Contains(t, set.Text, h.texts.Amount("Done.SalarySet", dec(55000)))
	e, err := h.directory.GetEmployee(h.ctx, h.outsider.ID)
	require.NoError(t, err)
	require.True(t, e.Salary.Equal(dec(55000)))
	require.True(t, h.balance(t, h.outsider.ID).IsZero())

	h.send(t, adminID, h.labels.BindIdentity)
	require.Equal(t, h.texts.T("Invalid.ExternalID"), h.send(t, adminID, "0").Text)
	taken := h.send(t, adminID, "3000")
	require.Equal(t, h.texts.T("Errors.ExternalIDTaken"), taken.Text)
	require.True(t, h.conv(t, adminID).Empty())

	h.openCard(t, h.outsider)
	h.send(t, adminID, h.labels.BindIdentity)
	bound := h.send(t, adminID, "5000")
	require.Contains(t, bound.Text, h.texts.TD("Done.IdentityBound", map[string]any{"ExternalID": int64(5000), "Name": h.outsider.FullName}))
	require.Equal(t, h.texts.T("Start.Employee"), h.send(t, 5000, "/start").Text)
}

func TestCard_PromoteAndDeactivate(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.worker)

	promoted := h.send(t, adminID, h.labels.Promote)
	require.Contains(t, promoted.Text, h.texts.TD("Done.Promoted", map[string]any{"Name": h.worker.FullName}))
	require.NotContains(t, presentation.Flatten(promoted.Menu), h.labels.Promote)
	require.Equal(t, h.texts.T("Start.Manager"), h.send(t, workerID, "/start").Text)

	h.openCard(t, h.outsider)
	gone := h.send(t, adminID, h.labels.Deactivate)
	require.Contains(t, gone.Text, h.texts.TD("Done.Deactivated", map[string]any{"Name": h.outsider.FullName}))
	require.NotContains(t, presentation.Flatten(gone.Menu), h.outsider.Label())
	conv := h.conv(t, adminID)
	require.Equal(t, conversation.Pinned{DepartmentID: h.it.ID}, conv.Pinned)

	e, err := h.directory.GetEmployee(h.ctx, h.outsider.ID)
	require.NoError(t, err)
	require.False(t, e.IsActive)
}

func TestNavigation(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.worker)

	h.send(t, adminID, h.labels.SetSalary)
	cancelled := h.send(t, adminID, h.labels.Cancel)
	require.Contains(t, cancelled.Text, h.texts.T("Menu.Cancelled"))
	conv := h.conv(t, adminID)
	require.False(t, conv.InFlow())
	require.Equal(t, conversation.Pinned{DepartmentID: h.sklad.ID, EmployeeID: h.worker.ID}, conv.Pinned)

	h.send(t, adminID, h.labels.SetSalary)
	list := h.send(t, adminID, h.labels.BackToList)
	require.Contains(t, presentation.Flatten(list.Menu), h.worker.Label())
	conv = h.conv(t, adminID)
	require.False(t, conv.InFlow())
	require.Equal(t, conversation.Pinned{DepartmentID: h.sklad.ID}, conv.Pinned)

	noPin := h.send(t, adminID, h.labels.AddBonus)
	require.Equal(t, h.texts.T("Errors.NoSelection"), noPin.Text)
	require.True(t, h.conv(t, adminID).Empty())

	h.send(t, adminID, h.labels.AddDepartment)
	main := h.send(t, adminID, h.labels.BackToMain)
	require.Equal(t, h.texts.T("Menu.Main"), main.Text)
	departments, err := h.directory.ListDepartments(h.ctx)
	require.NoError(t, err)
	require.Len(t, departments, 2)

	h.send(t, adminID, h.labels.AddDepartment)
	start := h.send(t, adminID, "/start")
	require.Equal(t, h.texts.T("Start.SuperAdmin"), start.Text)
	require.True(t, h.conv(t, adminID).Empty())
}

func TestAmbiguousNamesAreNeverFirstMatch(t *testing.T) {
	h := newHarness(t)
	first := h.createEmployee(t, "Анна Смирнова", "кассир", h.sklad.ID, 0, employee.RoleEmployee)
	second := h.createEmployee(t, "Анна Смирнова", "грузчик", h.sklad.ID, 0, employee.RoleEmployee)

	reply := h.send(t, managerID, "Анна Смирнова")
	require.Equal(t, h.texts.T("Menu.Ambiguous"), reply.Text)
	require.Equal(t, presentation.Selection(h.labels, []employee.Employee{first, second}), reply.Menu)
	require.Zero(t, h.conv(t, managerID).Pinned.EmployeeID)

	card := h.send(t, managerID, second.QualifiedLabel())
	require.Contains(t, card.Text, "грузчик")
	require.Equal(t, second.ID, h.conv(t, managerID).Pinned.EmployeeID)
}

func TestReports(t *testing.T) {
	h := newHarness(t)

	all := h.send(t, adminID, h.labels.AllEmployees)
	require.Contains(t, all.Text, "🏢 Склад\n  👔 Анна Иванова (начальник склада)")
	require.Contains(t, all.Text, "🧮 IT\n  👤 Пётр Сидоров (разработчик)")

	team := h.send(t, managerID, h.labels.MyEmployees)
	require.Equal(t, presentation.EmployeeList(h.labels, []employee.Employee{h.manager, h.worker}), team.Menu)

	denied := h.send(t, managerID, h.labels.AllEmployees)
	require.Equal(t, h.texts.T("Authorization.PermissionDenied"), denied.Text)
}

func TestEmployee_OwnBalanceOnly(t *testing.T) {
	h := newHarness(t)
	h.openCard(t, h.worker)
	h.send(t, adminID, h.labels.GiveAdvance)

	own := h.send(t, workerID, h.labels.MySalary)
	require.Equal(t, h.texts.OwnBalance(h.worker, dec(-20000)), own.Text)

	other := h.send(t, workerID, h.outsider.FullName)
	require.Contains(t, other.Text, h.texts.T("Errors.UnknownCommand"))
	require.True(t, h.conv(t, workerID).Empty())
}

func TestUnknownCommandSuggestsLabel(t *testing.T) {
	h := newHarness(t)

	reply := h.send(t, adminID, "все сотрудн")
	require.Equal(t, h.texts.T("Errors.UnknownCommand")+"\n"+
		h.texts.TD("Errors.DidYouMean", map[string]any{"Suggestion": h.labels.AllEmployees}), reply.Text)
}
