package domain

import (
	"math/big"
	"time"
)

// BalanceTag is the invalidation tag for a handle's cached balance.
func BalanceTag(handle string) string {
	return "balance-" + handle
}

// CachedBalance is the last observed token balance for a handle.
type CachedBalance struct {
	Handle     string
	Balance    *big.Int
	Generation int64 // tag generation observed before the chain read
	ExpiresAt  time.Time
}

// Fresh reports whether the entry may still be served at now.
func (c *CachedBalance) Fresh(now time.Time) bool {
	return c != nil && c.Balance != nil && now.Before(c.ExpiresAt)
}
