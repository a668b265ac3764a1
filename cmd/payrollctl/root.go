package main

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/payroll-bot/internal/server"
	"github.com/iota-uz/payroll-bot/modules"
	"github.com/iota-uz/payroll-bot/pkg/application"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/configuration"
	"github.com/iota-uz/payroll-bot/pkg/eventbus"
)

// env is what every subcommand needs: configuration, a pool and the domain services.
type env struct {
	conf   configuration.Configuration
	logger *logrus.Logger
	pool   *pgxpool.Pool
	app    application.Application
	closer io.Closer
}

func (e *env) ctx(parent context.Context) context.Context {
	return composables.WithPool(parent, e.pool)
}

func (e *env) close() {
	e.pool.Close()
	_ = e.closer.Close()
}

func openEnv(ctx context.Context) (*env, error) {
	conf, err := configuration.Load(".env", ".env.local")
	if err != nil {
		return nil, err
	}
	logger, closer, err := conf.Logger()
	if err != nil {
		return nil, err
	}
	pool, err := server.Connect(ctx, conf)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
		Config:   conf,
	})
	if err := modules.Load(app, modules.Domain()...); err != nil {
		pool.Close()
		_ = closer.Close()
		return nil, err
	}
	return &env{conf: conf, logger: logger, pool: pool, app: app, closer: closer}, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "payrollctl",
		Short:        "Payroll bot administration",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newBalanceCmd(),
		newExportCmd(),
	)
	return cmd
}
