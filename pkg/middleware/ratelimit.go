package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const storePrefix = "payroll:ratelimit"

func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          storePrefix,
		CleanUpInterval: time.Minute,
	})
}

func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: storePrefix,
	})
}

// UserLimiter caps how many inbound messages one chat user may send per period.
type UserLimiter struct {
	limiter *limiter.Limiter
}

func NewUserLimiter(store limiter.Store, perMinute int) *UserLimiter {
	return &UserLimiter{
		limiter: limiter.New(store, limiter.Rate{
			Period: time.Minute,
			Limit:  int64(perMinute),
		}),
	}
}

// Allow consumes one token for userID and reports whether the message may proceed.
func (l *UserLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	res, err := l.limiter.Get(ctx, "user:"+strconv.FormatInt(userID, 10))
	if err != nil {
		return false, err
	}
	return !res.Reached, nil
}

// RateLimit limits HTTP requests per client IP.
func RateLimit(store limiter.Store, perMinute int) mux.MiddlewareFunc {
	l := limiter.New(store, limiter.Rate{Period: time.Minute, Limit: int64(perMinute)})
	mw := stdlib.NewMiddleware(l)
	return func(next http.Handler) http.Handler {
		return mw.Handler(next)
	}
}
