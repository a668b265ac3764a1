package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed *.sql
var FS embed.FS

// Status is one migration's version, source file and whether it has been applied.
type Status struct {
	Version int64
	Path    string
	Applied bool
}

func newProvider(pool *pgxpool.Pool) (*goose.Provider, *sql.DB, error) {
	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: init provider: %w", err)
	}
	return provider, db, nil
}

// Up applies every pending migration.
func Up(ctx context.Context, pool *pgxpool.Pool, logger *logrus.Logger) error {
	provider, db, err := newProvider(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrations: up: %w", err)
	}
	for _, r := range results {
		logger.WithFields(logrus.Fields{
			"component": "migrations",
			"version":   r.Source.Version,
			"duration":  r.Duration.String(),
		}).Info("migration applied")
	}
	return nil
}

func List(ctx context.Context, pool *pgxpool.Pool) ([]Status, error) {
	provider, db, err := newProvider(pool)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: status: %w", err)
	}
	out := make([]Status, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Status{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}
