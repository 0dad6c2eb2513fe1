package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const loginAttemptsKeyPrefix = "login_attempts"

type attemptStore interface {
	Enabled() bool
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Reset(ctx context.Context, key string) error
}

// LoginThrottle limits failed logins per email and client IP within a fixed window.
type LoginThrottle struct {
	store       attemptStore
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginThrottle builds a throttle. It is inert when store has no backend.
func NewLoginThrottle(store attemptStore, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginThrottle {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil || !store.Enabled() {
		logger.Warn("login throttling disabled: redis not configured")
	}
	return &LoginThrottle{store: store, maxAttempts: maxAttempts, window: window, logger: logger}
}

func (t *LoginThrottle) active() bool {
	return t != nil && t.store != nil && t.store.Enabled() && t.maxAttempts > 0
}

func attemptKey(email, ip string) string {
	return loginAttemptsKeyPrefix + ":" + strings.ToLower(strings.TrimSpace(email)) + ":" + ip
}

// Allowed reports whether another login attempt may proceed. Store errors allow the attempt.
func (t *LoginThrottle) Allowed(ctx context.Context, email, ip string) bool {
	if !t.active() {
		return true
	}
	count, err := t.store.Count(ctx, attemptKey(email, ip))
	if err != nil {
		t.logger.Warn("read login attempts", zap.Error(err))
		return true
	}
	return count < int64(t.maxAttempts)
}

// RecordFailure counts a failed attempt.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email, ip string) {
	if !t.active() {
		return
	}
	if _, err := t.store.Increment(ctx, attemptKey(email, ip), t.window); err != nil {
		t.logger.Warn("record login attempt", zap.Error(err))
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email, ip string) {
	if !t.active() {
		return
	}
	if err := t.store.Reset(ctx, attemptKey(email, ip)); err != nil {
		t.logger.Warn("reset login attempts", zap.Error(err))
	}
}
