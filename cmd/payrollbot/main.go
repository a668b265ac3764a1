package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/payroll-bot/internal/server"
	"github.com/iota-uz/payroll-bot/migrations"
	"github.com/iota-uz/payroll-bot/modules"
	"github.com/iota-uz/payroll-bot/modules/bot"
	"github.com/iota-uz/payroll-bot/modules/bot/presentation/telegram"
	"github.com/iota-uz/payroll-bot/pkg/application"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/configuration"
	"github.com/iota-uz/payroll-bot/pkg/eventbus"
	"github.com/iota-uz/payroll-bot/pkg/logging"
)

func main() {
	conf, err := configuration.Load(".env", ".env.local")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger, closer, err := conf.Logger()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, conf, logger); err != nil {
		logger.WithError(err).Error("payrollbot stopped")
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, conf configuration.Configuration, logger *logrus.Logger) error {
	if conf.OpenTelemetry.Enabled {
		shutdown, err := logging.SetupTracing(ctx, conf.OpenTelemetry.ServiceName, conf.OpenTelemetry.Endpoint, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.WithError(err).Warn("tracing shutdown")
			}
		}()
	}

	pool, err := server.Connect(ctx, conf)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := migrations.Up(ctx, pool, logger); err != nil {
		return err
	}

	var rdb *redis.Client
	if conf.Dialogue.Store == "redis" || (conf.RateLimit.Enabled && conf.RateLimit.Storage == "redis") {
		rdb = redis.NewClient(&redis.Options{Addr: conf.RedisURL})
		defer rdb.Close()
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
		Config:   conf,
	})
	if err := modules.Load(app, modules.BuiltIn(&bot.ModuleOptions{Redis: rdb})...); err != nil {
		return err
	}
	ops, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
	})
	if err != nil {
		return err
	}
	tg := app.Service(telegram.Bot{}).(*telegram.Bot)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tg.Run(composables.WithPool(gctx, pool))
	})
	g.Go(func() error {
		logger.WithField("address", conf.SocketAddress()).Info("ops server listening")
		return ops.Start(gctx, conf.SocketAddress())
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
