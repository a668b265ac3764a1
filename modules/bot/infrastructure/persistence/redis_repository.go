package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/iota-uz/payroll-bot/modules/bot/domain/conversation"
)

const conversationPrefix = "payroll:conversation"

// RedisRepository stores one JSON document per user with a sliding TTL.
type RedisRepository struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{redis: client, prefix: conversationPrefix, ttl: ttl}
}

func (r *RedisRepository) key(userID int64) string {
	return fmt.Sprintf("%s:%d", r.prefix, userID)
}

func (r *RedisRepository) Get(ctx context.Context, userID int64) (*conversation.Context, error) {
	data, err := r.redis.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return conversation.New(userID), nil
		}
		return nil, errors.Wrap(err, "redis get conversation")
	}
	return decode(data)
}

func (r *RedisRepository) Save(ctx context.Context, c *conversation.Context) error {
	c.UpdatedAt = time.Now().UTC()
	data, err := encode(c)
	if err != nil {
		return err
	}
	if err := r.redis.Set(ctx, r.key(c.UserID), data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set conversation")
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.redis.Del(ctx, r.key(userID)).Err(); err != nil {
		return errors.Wrap(err, "redis del conversation")
	}
	return nil
}
