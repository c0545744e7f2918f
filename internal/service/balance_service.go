package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/apperror"

	"github.com/rs/zerolog"
)

// BalanceServiceImpl implements ports.BalanceService as a read-through cache
// over the token's balanceOf.
type BalanceServiceImpl struct {
	wallets ports.WalletRepository
	chain   ports.ChainClient
	cache   ports.BalanceCache
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewBalanceService creates a balance service whose entries live for ttl.
func NewBalanceService(
	wallets ports.WalletRepository,
	chain ports.ChainClient,
	cache ports.BalanceCache,
	ttl time.Duration,
	log zerolog.Logger,
) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		wallets: wallets,
		chain:   chain,
		cache:   cache,
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

// Read returns the balance of handle's wallet in the token's smallest unit.
// A handle without a wallet, or a node-less deployment, reads as zero.
func (s *BalanceServiceImpl) Read(ctx context.Context, handle string) (*big.Int, error) {
	handle = domain.NormalizeHandle(handle)
	if !domain.ValidHandle(handle) {
		return nil, apperror.ErrInvalidHandle()
	}

	cacheUsable := true
	entry, generation, err := s.cache.Get(ctx, handle)
	if err != nil {
		s.log.Warn().Err(err).Str("handle", handle).Msg("balance cache read failed, querying chain")
		cacheUsable = false
	}
	if cacheUsable && entry.Fresh(s.now()) && entry.Generation == generation {
		return new(big.Int).Set(entry.Balance), nil
	}

	wallet, err := s.wallets.GetByHandle(ctx, handle)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup wallet: %w", err))
	}
	if wallet == nil || !s.chain.Available() {
		return new(big.Int), nil
	}

	balance, err := s.chain.TokenBalance(ctx, wallet.Address)
	if err != nil {
		return nil, apperror.ErrChainReadFailed(fmt.Errorf("balanceOf %s: %w", wallet.Address.Hex(), err))
	}

	if cacheUsable {
		err := s.cache.Set(ctx, domain.CachedBalance{
			Handle:     handle,
			Balance:    balance,
			Generation: generation,
			ExpiresAt:  s.now().Add(s.ttl),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("handle", handle).Msg("balance cache write failed")
		}
	}

	return new(big.Int).Set(balance), nil
}
