package configuration

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/payroll-bot/pkg/logging"
)

const Production = "production"

const (
	ConversationStoreMemory = "memory"
	ConversationStoreRedis  = "redis"
)

// LoadEnv loads the env files that exist and reports how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

type DatabaseOptions struct {
	Name     string `env:"DB_NAME" envDefault:"payroll"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
}

func (d DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type TelegramOptions struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AppID    int    `env:"TELEGRAM_APP_ID"`
	AppHash  string `env:"TELEGRAM_APP_HASH"`
	// SessionPath persists the MTProto session between restarts. Empty keeps it in memory.
	SessionPath string `env:"TELEGRAM_SESSION_PATH" envDefault:""`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string `env:"OTEL_EXPORTER_ENDPOINT" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"payroll-bot"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	// PerMinute is the number of inbound messages one user may send per minute.
	PerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
}

func (r RateLimitOptions) Validate() error {
	if r.PerMinute <= 0 {
		return fmt.Errorf("rate limit PerMinute must be positive, got %d", r.PerMinute)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	return nil
}

type DialogueOptions struct {
	MaxRetries      int           `env:"DIALOGUE_MAX_RETRIES" envDefault:"5"`
	HistoryLimit    int           `env:"HISTORY_LIMIT" envDefault:"20"`
	CardHistory     int           `env:"CARD_HISTORY" envDefault:"5"`
	ConversationTTL time.Duration `env:"CONVERSATION_TTL" envDefault:"24h"`
	Store           string        `env:"CONVERSATION_STORE" envDefault:"memory"` // memory or redis
}

// Configuration is loaded once at startup and passed by value to constructors.
type Configuration struct {
	Database      DatabaseOptions
	Telegram      TelegramOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions
	Dialogue      DialogueOptions

	SuperAdminIDs []int64 `env:"SUPERADMIN_IDS" envSeparator:","`
	Locale        string  `env:"BOT_LOCALE" envDefault:"ru"`
	Currency      string  `env:"CURRENCY" envDefault:"RUB"`
	AdvanceAmount string  `env:"ADVANCE_AMOUNT" envDefault:"20000"`

	RedisURL         string `env:"REDIS_URL" envDefault:"localhost:6379"`
	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath          string `env:"LOG_PATH" envDefault:""`
}

// Load reads envFiles (missing ones are skipped) and the process environment.
func Load(envFiles ...string) (Configuration, error) {
	var c Configuration
	if _, err := LoadEnv(envFiles); err != nil {
		return c, err
	}
	if err := env.Parse(&c); err != nil {
		return c, err
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Configuration) validate() error {
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	switch c.Dialogue.Store {
	case ConversationStoreMemory, ConversationStoreRedis:
	default:
		return fmt.Errorf("invalid CONVERSATION_STORE=%q (expected memory|redis)", c.Dialogue.Store)
	}
	if c.Dialogue.MaxRetries <= 0 {
		return fmt.Errorf("DIALOGUE_MAX_RETRIES must be positive, got %d", c.Dialogue.MaxRetries)
	}
	if c.Dialogue.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.Dialogue.HistoryLimit)
	}
	amount, err := c.Advance()
	if err != nil {
		return fmt.Errorf("invalid ADVANCE_AMOUNT=%q: %w", c.AdvanceAmount, err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("ADVANCE_AMOUNT must be positive, got %s", c.AdvanceAmount)
	}
	if strings.TrimSpace(c.Currency) == "" {
		return fmt.Errorf("CURRENCY must not be empty")
	}
	return nil
}

func (c Configuration) Advance() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(c.AdvanceAmount))
}

// IsSuperAdmin reports whether externalID is on the configured allow-list.
func (c Configuration) IsSuperAdmin(externalID int64) bool {
	for _, id := range c.SuperAdminIDs {
		if id == externalID {
			return true
		}
	}
	return false
}

func (c Configuration) SocketAddress() string {
	if c.GoAppEnvironment == Production {
		return fmt.Sprintf(":%d", c.ServerPort)
	}
	return fmt.Sprintf("localhost:%d", c.ServerPort)
}

func (c Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

// Logger builds the process logger. With LOG_PATH set, output is also written
// to a rotated file released by the returned closer.
func (c Configuration) Logger() (*logrus.Logger, io.Closer, error) {
	if c.LogPath == "" {
		return logging.ConsoleLogger(c.LogrusLogLevel()), io.NopCloser(nil), nil
	}
	closer, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return nil, nil, err
	}
	return logger, closer, nil
}
