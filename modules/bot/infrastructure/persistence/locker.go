package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/payroll-bot/modules/bot/domain/conversation"
)

type userLock struct {
	sem  chan struct{}
	refs int
}

// DefaultLockWait matches how long RedisLocker retries before giving up.
const DefaultLockWait = lockRetry * lockAttempts

// MemoryLocker is a keyed mutex. Entries are dropped once no turn holds or waits on them.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]*userLock
	wait  time.Duration
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]*userLock), wait: DefaultLockWait}
}

// WithWait sets how long Lock waits for a busy user before returning conversation.ErrBusy.
func (l *MemoryLocker) WithWait(d time.Duration) *MemoryLocker {
	l.wait = d
	return l
}

// Lock waits for the user's previous turn. It gives up with conversation.ErrBusy after
// the configured wait, or with ctx.Err() when ctx is done first.
func (l *MemoryLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{sem: make(chan struct{}, 1)}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case ul.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, ul)
		return nil, ctx.Err()
	case <-timer.C:
		l.release(userID, ul)
		return nil, conversation.ErrBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ul.sem
			l.release(userID, ul)
		})
	}, nil
}

func (l *MemoryLocker) release(userID int64, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, userID)
	}
}

const (
	lockPrefix   = "payroll:conversation-lock"
	lockTTL      = 30 * time.Second
	lockRetry    = 50 * time.Millisecond
	lockAttempts = 200
)

// RedisLocker serialises turns across replicas with a redislock per user.
type RedisLocker struct {
	client *redislock.Client
	logger *logrus.Entry
}

func NewRedisLocker(client *redis.Client, logger *logrus.Logger) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		logger: logger.WithField("component", "conversation-lock"),
	}
}

func (l *RedisLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	key := fmt.Sprintf("%s:%d", lockPrefix, userID)
	lock, err := l.client.Obtain(ctx, key, lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetry), lockAttempts),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, conversation.ErrBusy
	}
	if err != nil {
		return nil, errors.Wrap(err, "obtain conversation lock")
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.logger.WithError(err).WithField("user_id", userID).Warn("release conversation lock")
			}
		})
	}, nil
}
