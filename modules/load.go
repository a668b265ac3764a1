package modules

import (
	"github.com/iota-uz/payroll-bot/modules/access"
	"github.com/iota-uz/payroll-bot/modules/bot"
	"github.com/iota-uz/payroll-bot/modules/directory"
	"github.com/iota-uz/payroll-bot/modules/ledger"
	"github.com/iota-uz/payroll-bot/pkg/application"
)

// Domain lists the modules every binary needs, in dependency order.
func Domain() []application.Module {
	return []application.Module{
		directory.NewModule(),
		ledger.NewModule(),
		access.NewModule(),
	}
}

// BuiltIn adds the Telegram dialogue on top of Domain.
func BuiltIn(botOpts *bot.ModuleOptions) []application.Module {
	return append(Domain(), bot.NewModule(botOpts))
}

func Load(app application.Application, modules ...application.Module) error {
	return application.LoadModules(app, modules...)
}
