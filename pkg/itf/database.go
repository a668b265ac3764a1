// Package itf provides integration-test fixtures backed by a throwaway Postgres database.
package itf

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/payroll-bot/migrations"
	"github.com/iota-uz/payroll-bot/pkg/composables"
	"github.com/iota-uz/payroll-bot/pkg/configuration"
)

func isCI() bool {
	return strings.TrimSpace(os.Getenv("CI")) != "" ||
		strings.EqualFold(strings.TrimSpace(os.Getenv("GITHUB_ACTIONS")), "true")
}

func dbName(tb testing.TB) string {
	name := "itf_" + strings.ToLower(tb.Name())
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// NewPool creates a fresh migrated database for tb and returns a context carrying its pool.
// The test is skipped when Postgres is unreachable outside CI.
func NewPool(tb testing.TB) (context.Context, *pgxpool.Pool) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	tb.Cleanup(cancel)

	conf, err := configuration.Load()
	require.NoError(tb, err)
	opts := conf.Database

	admin := opts
	admin.Name = "postgres"
	adminConn, err := pgx.Connect(ctx, admin.ConnectionString())
	if err != nil {
		if isCI() {
			require.NoError(tb, err)
		}
		tb.Skip("postgres is not reachable; skipping integration test")
	}
	tb.Cleanup(func() { _ = adminConn.Close(context.Background()) })

	name := dbName(tb)
	_, _ = adminConn.Exec(ctx, "DROP DATABASE IF EXISTS "+name)
	if _, err := adminConn.Exec(ctx, "CREATE DATABASE "+name); err != nil {
		if isCI() {
			require.NoError(tb, err)
		}
		tb.Skip("failed to create test database; skipping integration test")
	}

	opts.Name = name
	cfg, err := pgxpool.ParseConfig(opts.ConnectionString())
	require.NoError(tb, err)
	cfg.MaxConns = 8
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(tb, err)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	require.NoError(tb, migrations.Up(ctx, pool, logger))

	tb.Cleanup(func() {
		pool.Close()
		_, _ = adminConn.Exec(context.Background(), "DROP DATABASE IF EXISTS "+name)
	})

	return composables.WithPool(context.Background(), pool), pool
}
