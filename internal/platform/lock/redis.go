// Package lock serialises CSV imports across API replicas with a Redis lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
	"github.com/carojasb94/collection-agency/internal/platform/config"
)

const importLockKey = "lock:debt-import"

// RedisImportLocker hands out a single cluster-wide import lock.
type RedisImportLocker struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient returns nil when no address is configured.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

const defaultLockTTL = 5 * time.Minute

func NewRedisImportLocker(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisImportLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisImportLocker{
		locker: redislock.New(rdb),
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire obtains the import lock without waiting. It returns
// domain.ErrImportBusy when another import holds it. The lock is refreshed
// every ttl/2 until the returned release func is called.
func (l *RedisImportLocker) Acquire(ctx context.Context) (func(), error) {
	lk, err := l.locker.Obtain(ctx, importLockKey, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrImportBusy
	}
	if err != nil {
		return nil, fmt.Errorf("obtaining import lock: %w", err)
	}
	return l.hold(lk), nil
}

// lease is the part of *redislock.Lock the keep-alive loop needs.
type lease interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

func (l *RedisImportLocker) hold(lk lease) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.ttl / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := lk.Refresh(ctx, l.ttl, nil)
				if err == nil || ctx.Err() != nil {
					continue
				}
				l.logger.Warn("failed to refresh import lock", zap.Error(err))
				if errors.Is(err, redislock.ErrNotObtained) {
					// Expired and possibly taken by another import.
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
			// The request context may already be cancelled here.
			if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.logger.Warn("failed to release import lock", zap.Error(err))
			}
		})
	}
}
