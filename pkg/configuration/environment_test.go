package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_SkipsMissingFiles(t *testing.T) {
	tmp := t.TempDir()
	present := filepath.Join(tmp, ".env.local")
	require.NoError(t, os.WriteFile(present, []byte("PAYROLL_TEST_ENV_LOAD=ok\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("PAYROLL_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{filepath.Join(tmp, ".env"), present})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "ok", os.Getenv("PAYROLL_TEST_ENV_LOAD"))
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	require.Equal(t, 5, c.Dialogue.MaxRetries)
	require.Equal(t, 20, c.Dialogue.HistoryLimit)
	require.Equal(t, ConversationStoreMemory, c.Dialogue.Store)
	require.Equal(t, "ru", c.Locale)
	require.Equal(t, "RUB", c.Currency)

	advance, err := c.Advance()
	require.NoError(t, err)
	require.True(t, advance.Equal(decimal.NewFromInt(20000)))
}

func TestLoad_SuperAdminIDs(t *testing.T) {
	t.Setenv("SUPERADMIN_IDS", "111,222")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, []int64{111, 222}, c.SuperAdminIDs)
	require.True(t, c.IsSuperAdmin(222))
	require.False(t, c.IsSuperAdmin(333))
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]struct{ key, value string }{
		"store":   {"CONVERSATION_STORE", "disk"},
		"retries": {"DIALOGUE_MAX_RETRIES", "0"},
		"advance": {"ADVANCE_AMOUNT", "-5"},
		"limiter": {"RATE_LIMIT_STORAGE", "file"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLogrusLogLevel(t *testing.T) {
	require.Equal(t, logrus.DebugLevel, Configuration{LogLevel: "debug"}.LogrusLogLevel())
	require.Equal(t, logrus.ErrorLevel, Configuration{LogLevel: "nonsense"}.LogrusLogLevel())
}
