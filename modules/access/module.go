package access

import (
	"github.com/iota-uz/payroll-bot/modules/access/services"
	dirservices "github.com/iota-uz/payroll-bot/modules/directory/services"
	"github.com/iota-uz/payroll-bot/pkg/application"
)

// NewModule must be loaded after the directory module.
func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	directory := app.Service(dirservices.DirectoryService{}).(*dirservices.DirectoryService)
	gate, err := services.NewAccessGate(app.Logger())
	if err != nil {
		return err
	}
	app.RegisterServices(
		services.NewIdentityResolver(app.Config().SuperAdminIDs, directory, app.Logger()),
		gate,
	)
	return nil
}

func (m *Module) Name() string {
	return "access"
}
