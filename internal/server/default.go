package server

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/payroll-bot/pkg/application"
	"github.com/iota-uz/payroll-bot/pkg/configuration"
	"github.com/iota-uz/payroll-bot/pkg/metrics"
	"github.com/iota-uz/payroll-bot/pkg/middleware"
	"github.com/iota-uz/payroll-bot/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default builds the ops HTTP server: request logging, health and optional Prometheus metrics.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	app.RegisterMiddleware(middleware.WithLogger(options.Logger))
	var db metrics.Pinger
	if options.Pool != nil {
		db = options.Pool
	}
	app.RegisterControllers(metrics.NewHealthController(db))
	if conf := options.Configuration; conf.Prometheus.Enabled {
		prom, err := metrics.NewPrometheusController(
			conf.Prometheus.Path,
			metrics.NewInfo(conf.GoAppEnvironment, conf.Locale, conf.Currency),
		)
		if err != nil {
			return nil, err
		}
		app.RegisterControllers(prom)
	}
	return server.NewHTTPServer(app), nil
}
