package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"agent-chain-wallet/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// setIfCurrent writes the entry only while the tag generation still equals
// the one the caller observed before reading the chain.
var setIfCurrent = goredis.NewScript(`
local gen = tonumber(redis.call('GET', KEYS[2]) or '0')
if gen ~= tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

type balanceEntry struct {
	Balance    string    `json:"balance"`
	Generation int64     `json:"generation"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// BalanceCache implements ports.BalanceCache. Entries live under
// balance:{handle}; the tag generation under gen:balance-{handle}.
type BalanceCache struct {
	client *goredis.Client
	prefix string
}

// NewBalanceCache creates a Redis-backed balance cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

func (c *BalanceCache) entryKey(handle string) string { return c.prefix + handle }

func (c *BalanceCache) genKey(handle string) string { return "gen:" + domain.BalanceTag(handle) }

// Get returns the cached entry (nil on miss) and the tag's current generation.
func (c *BalanceCache) Get(ctx context.Context, handle string) (*domain.CachedBalance, int64, error) {
	vals, err := c.client.MGet(ctx, c.entryKey(handle), c.genKey(handle)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("redis balance get: %w", err)
	}

	var gen int64
	if s, ok := vals[1].(string); ok {
		gen, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("redis balance generation %q: %w", s, err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var e balanceEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, gen, fmt.Errorf("redis balance decode: %w", err)
	}
	bal, ok := new(big.Int).SetString(e.Balance, 10)
	if !ok {
		return nil, gen, fmt.Errorf("redis balance decode: malformed balance %q", e.Balance)
	}
	return &domain.CachedBalance{
		Handle:     handle,
		Balance:    bal,
		Generation: e.Generation,
		ExpiresAt:  e.ExpiresAt,
	}, gen, nil
}

// Set stores the entry until its ExpiresAt. A write carrying a generation
// older than the tag's current one is dropped.
func (c *BalanceCache) Set(ctx context.Context, entry domain.CachedBalance) error {
	if entry.Balance == nil {
		return errors.New("redis balance set: nil balance")
	}
	ttlMS := time.Until(entry.ExpiresAt).Milliseconds()
	if ttlMS <= 0 {
		return nil
	}
	payload, err := json.Marshal(balanceEntry{
		Balance:    entry.Balance.String(),
		Generation: entry.Generation,
		ExpiresAt:  entry.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("redis balance encode: %w", err)
	}

	err = setIfCurrent.Run(ctx, c.client,
		[]string{c.entryKey(entry.Handle), c.genKey(entry.Handle)},
		payload, entry.Generation, ttlMS,
	).Err()
	if err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}

// Invalidate bumps the tag generation and drops the entry atomically.
func (c *BalanceCache) Invalidate(ctx context.Context, handle string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(handle))
		pipe.Del(ctx, c.entryKey(handle))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis balance invalidate: %w", err)
	}
	return nil
}
