package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/duoqueue/matchmaker/pkg/errors"
)

// DistributedLock serializes a critical section across API replicas via
// Redis SETNX, so two processes calling the same façade-backed matchmaker
// never interleave a queue mutation with a round-formation trigger.
type DistributedLock struct {
	cache *Cache
}

// NewDistributedLock wraps a Cache as a lock backend.
func NewDistributedLock(cache *Cache) *DistributedLock {
	return &DistributedLock{cache: cache}
}

// Lock attempts to acquire the lock once.
func (dl *DistributedLock) Lock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}

	lockKey := fmt.Sprintf("lock:%s", key)
	acquired, err := dl.cache.SetNX(ctx, lockKey, token, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return "", errors.ErrConflict.WithMessage("lock already held")
	}
	return token, nil
}

// TryLock retries acquisition up to maxAttempts, waiting retryDelay
// between attempts.
func (dl *DistributedLock) TryLock(ctx context.Context, key string, ttl time.Duration, maxAttempts int, retryDelay time.Duration) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		token, err := dl.Lock(ctx, key, ttl)
		if err == nil {
			return token, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return "", fmt.Errorf("failed to acquire lock after %d attempts: %w", maxAttempts, lastErr)
}

// Unlock releases the lock, refusing to clear a token it didn't set.
func (dl *DistributedLock) Unlock(ctx context.Context, key string, token string) error {
	lockKey := fmt.Sprintf("lock:%s", key)

	currentToken, err := dl.cache.Get(ctx, lockKey)
	if err != nil {
		return fmt.Errorf("failed to get lock token: %w", err)
	}
	if currentToken == "" {
		return nil
	}
	if currentToken != token {
		return errors.ErrConflict.WithMessage("lock token mismatch")
	}
	if err := dl.cache.Del(ctx, lockKey); err != nil {
		return fmt.Errorf("failed to delete lock: %w", err)
	}
	return nil
}

// WithLock runs fn under the named lock, always releasing it afterward.
func (dl *DistributedLock) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	token, err := dl.TryLock(ctx, key, ttl, 3, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = dl.Unlock(unlockCtx, key, token)
	}()
	return fn(ctx)
}

// IsLocked reports whether key is currently held.
func (dl *DistributedLock) IsLocked(ctx context.Context, key string) (bool, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	return dl.cache.Exists(ctx, lockKey)
}

func generateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
