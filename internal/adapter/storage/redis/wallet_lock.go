package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrLockTimeout is returned when the lock stays held past the wait budget.
var ErrLockTimeout = errors.New("wallet lock: wait budget exhausted")

// releaseIfOwner deletes the lock only when it still holds our token, so an
// expired-and-retaken lock is never released by the previous owner.
var releaseIfOwner = goredis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// renewIfOwner extends the lease only while it still holds our token.
var renewIfOwner = goredis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`)

const lockRetryInterval = 50 * time.Millisecond

// WalletLocker implements ports.WalletLocker with SET NX PX. A held lease
// is renewed every renewEvery until released, so a holder waiting on slow
// confirmations keeps the wallet; a crashed holder still frees it after ttl.
type WalletLocker struct {
	client     *goredis.Client
	prefix     string
	ttl        time.Duration
	renewEvery time.Duration
	wait       time.Duration
	log        zerolog.Logger
}

// NewWalletLocker creates a Redis-backed per-wallet lock. ttl bounds how
// long a crashed holder can block the wallet; wait bounds acquisition.
func NewWalletLocker(client *goredis.Client, ttl, wait time.Duration, log zerolog.Logger) *WalletLocker {
	return &WalletLocker{
		client:     client,
		prefix:     "lock:",
		ttl:        ttl,
		renewEvery: ttl / 3,
		wait:       wait,
		log:        log,
	}
}

// Lock blocks until key is acquired, the wait budget runs out, or ctx ends.
func (l *WalletLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.tryAcquire(ctx, redisKey, token)
		if err != nil {
			return nil, err
		}
		if ok {
			stop := make(chan struct{})
			done := make(chan struct{})
			go l.keepAlive(redisKey, token, stop, done)
			return l.releaser(redisKey, token, stop, done), nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%s: %w", key, ErrLockTimeout)
		}

		timer := time.NewTimer(lockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *WalletLocker) tryAcquire(ctx context.Context, key, token string) (bool, error) {
	result, err := l.client.SetArgs(ctx, key, token, goredis.SetArgs{
		Mode: "NX",
		TTL:  l.ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis lock acquire: %w", err)
	}
	return result == "OK", nil
}

// keepAlive renews the lease until stop closes or the lease is lost.
func (l *WalletLocker) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if l.renewEvery <= 0 {
		<-stop
		return
	}

	ticker := time.NewTicker(l.renewEvery)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.renewEvery)
		renewed, err := renewIfOwner.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int64()
		cancel()
		if err != nil {
			l.log.Warn().Err(err).Str("lock", key).Msg("wallet lock renewal failed; retrying")
			continue
		}
		if renewed == 0 {
			l.log.Error().Str("lock", key).Msg("wallet lock lease lost before release")
			return
		}
	}
}

func (l *WalletLocker) releaser(key, token string, stop chan<- struct{}, done <-chan struct{}) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// Release must survive a cancelled request context.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseIfOwner.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				l.log.Warn().Err(err).Str("lock", key).Msg("wallet lock release failed; it will expire on its own")
			}
		})
	}
}
