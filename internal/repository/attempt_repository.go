package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptRepository counts login attempts in Redis using fixed windows.
type AttemptRepository struct {
	client *redis.Client
}

// NewAttemptRepository constructs an attempt counter. A nil client disables counting.
func NewAttemptRepository(client *redis.Client) *AttemptRepository {
	return &AttemptRepository{client: client}
}

// Enabled reports whether a Redis client backs the repository.
func (r *AttemptRepository) Enabled() bool {
	return r != nil && r.client != nil
}

// Count returns the attempts recorded under key in the current window.
func (r *AttemptRepository) Count(ctx context.Context, key string) (int64, error) {
	if !r.Enabled() {
		return 0, nil
	}
	count, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return count, nil
}

// Increment bumps the counter for key, starting the window on the first hit.
func (r *AttemptRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	if !r.Enabled() {
		return 0, nil
	}
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return count, nil
}

// Reset clears the counter for key.
func (r *AttemptRepository) Reset(ctx context.Context, key string) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
