package constants

type ContextKey string

const (
	TxKey       ContextKey = "tx"
	PoolKey     ContextKey = "pool"
	LoggerKey   ContextKey = "logger"
	InMemoryKey ContextKey = "in_memory"
)
