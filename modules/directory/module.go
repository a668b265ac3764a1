package directory

import (
	"github.com/iota-uz/payroll-bot/modules/directory/domain/aggregates/employee"
	"github.com/iota-uz/payroll-bot/modules/directory/domain/entities/department"
	"github.com/iota-uz/payroll-bot/modules/directory/infrastructure/persistence"
	"github.com/iota-uz/payroll-bot/modules/directory/services"
	"github.com/iota-uz/payroll-bot/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	departments := persistence.NewDepartmentRepository()
	employees := persistence.NewEmployeeRepository()
	app.RegisterServices(
		services.NewDirectoryService(departments, employees, app.EventPublisher()),
		services.NewSeedService(departments, employees, app.Logger()),
	)

	log := app.Logger().WithField("component", "directory")
	bus := app.EventPublisher()
	bus.Subscribe(func(e *department.CreatedEvent) {
		log.WithField("department_id", e.Result.ID).WithField("actor", e.CreatedBy).Info("department created")
	})
	bus.Subscribe(func(e *employee.CreatedEvent) {
		log.WithField("employee_id", e.Result.ID).WithField("actor", e.ActorID).Info("employee created")
	})
	bus.Subscribe(func(e *employee.DeactivatedEvent) {
		log.WithField("employee_id", e.EmployeeID).WithField("actor", e.ActorID).Info("employee deactivated")
	})
	return nil
}

func (m *Module) Name() string {
	return "directory"
}
