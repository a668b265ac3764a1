package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{"00001_directory.sql", "00002_ledger.sql"}, files)

	for _, name := range files {
		raw, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		body := string(raw)
		require.True(t, strings.HasPrefix(body, "-- +goose Up"), name)
		require.Contains(t, body, "-- +goose Down", name)
	}
}
