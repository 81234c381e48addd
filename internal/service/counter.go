package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tgo/chariott/internal/pkg/redis"
	"github.com/tgo/chariott/internal/repository"
)

// InteractionCounter tracks how many times a user touched the API.
type InteractionCounter interface {
	Increment(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID string) (int64, error)
}

// DBCounter keeps the counter on the users row.
type DBCounter struct {
	users *repository.UserRepository
}

func NewDBCounter(users *repository.UserRepository) *DBCounter {
	return &DBCounter{users: users}
}

func (c *DBCounter) Increment(ctx context.Context, userID string) (int64, error) {
	v, err := c.users.IncrementCounter(ctx, userID)
	if err != nil {
		return 0, lookup("user", userID, err)
	}
	return v, nil
}

func (c *DBCounter) Get(ctx context.Context, userID string) (int64, error) {
	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return 0, lookup("user", userID, err)
	}
	return user.InteractionCounter, nil
}

// RedisCounter increments in Redis and writes the value back to the users
// row. A missing key is seeded from the row first.
type RedisCounter struct {
	client *redis.Client
	users  *repository.UserRepository
	logger *slog.Logger
}

func NewRedisCounter(client *redis.Client, users *repository.UserRepository) *RedisCounter {
	return &RedisCounter{
		client: client,
		users:  users,
		logger: slog.Default().With("service", "counter"),
	}
}

func counterKey(userID string) string {
	return fmt.Sprintf("chariott:interactions:%s", userID)
}

func (c *RedisCounter) Increment(ctx context.Context, userID string) (int64, error) {
	if err := c.seed(ctx, userID); err != nil {
		return 0, err
	}
	v, err := c.client.Incr(ctx, counterKey(userID))
	if err != nil {
		return 0, upstream("redis incr", err)
	}
	if err := c.users.SetCounter(ctx, userID, v); err != nil {
		c.logger.Warn("failed to persist interaction counter", "user_id", userID, "error", err)
	}
	return v, nil
}

func (c *RedisCounter) Get(ctx context.Context, userID string) (int64, error) {
	if err := c.seed(ctx, userID); err != nil {
		return 0, err
	}
	v, err := c.client.GetInt(ctx, counterKey(userID))
	if err != nil {
		return 0, upstream("redis get", err)
	}
	return v, nil
}

func (c *RedisCounter) seed(ctx context.Context, userID string) error {
	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return lookup("user", userID, err)
	}
	if _, err := c.client.SetNX(ctx, counterKey(userID), user.InteractionCounter); err != nil {
		return upstream("redis seed", err)
	}
	return nil
}
