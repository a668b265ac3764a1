package ledger

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	"github.com/iota-uz/payroll-bot/modules/ledger/infrastructure/persistence"
	"github.com/iota-uz/payroll-bot/modules/ledger/services"
	"github.com/iota-uz/payroll-bot/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := app.Config()
	advance, err := conf.Advance()
	if err != nil {
		return err
	}
	ledgerService := services.NewLedgerService(
		persistence.NewAccrualRepository(),
		app.EventPublisher(),
		services.Options{
			AdvanceAmount: advance,
			HistoryLimit:  conf.Dialogue.HistoryLimit,
			Logger:        app.Logger(),
		},
	)
	app.RegisterServices(
		ledgerService,
		services.NewExportService(ledgerService),
	)

	log := app.Logger().WithField("component", "ledger")
	bus := app.EventPublisher()
	bus.Subscribe(services.CountAccrual)
	bus.Subscribe(func(e *accrual.RecordedEvent) {
		log.WithFields(logrus.Fields{
			"event_id":  e.ID,
			"record_id": e.Record.ID,
			"actor":     e.Record.CreatedBy,
		}).Debug("accrual event")
	})
	return nil
}

func (m *Module) Name() string {
	return "ledger"
}
