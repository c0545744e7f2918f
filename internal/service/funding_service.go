package service

import (
	"context"
	"fmt"
	"math/big"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// FundingServiceImpl implements ports.FundingService with a fixed seed amount
// sent from the treasury.
type FundingServiceImpl struct {
	chain  ports.ChainClient
	cache  ports.BalanceCache
	events ports.EventSink
	seed   *big.Int
	log    zerolog.Logger
}

// NewFundingService creates a funding service. seedAmount is a decimal
// string in the token's smallest unit.
func NewFundingService(
	chain ports.ChainClient,
	cache ports.BalanceCache,
	events ports.EventSink,
	seedAmount string,
	log zerolog.Logger,
) (*FundingServiceImpl, error) {
	seed, ok := domain.ParseAmount(seedAmount)
	if !ok {
		return nil, fmt.Errorf("invalid seed amount %q", seedAmount)
	}
	return &FundingServiceImpl{
		chain:  chain,
		cache:  cache,
		events: events,
		seed:   seed,
		log:    log,
	}, nil
}

// Fund sends the seed amount to req.Address and waits for confirmation.
// Without chain connectivity nothing is submitted and the result is Skipped.
func (s *FundingServiceImpl) Fund(ctx context.Context, req ports.FundRequest) (*domain.FundingResult, error) {
	if req.Address == (common.Address{}) {
		return nil, apperror.ErrInvalidDestination()
	}

	result := &domain.FundingResult{
		Address: req.Address,
		Amount:  new(big.Int).Set(s.seed),
	}

	if !s.chain.Available() {
		s.log.Info().Str("address", req.Address.Hex()).Msg("chain offline, seed funding skipped")
		result.Skipped = true
		return result, nil
	}

	txHash, err := s.chain.Transfer(ctx, req.Address, s.seed)
	if err != nil {
		return nil, reportFailure(ctx, s.events, "fund_wallet", req.Handle,
			apperror.ErrChainTxFailed(fmt.Errorf("seed transfer to %s: %w", req.Address.Hex(), err)))
	}
	result.TxHash = &txHash

	if req.Handle != "" {
		if err := s.cache.Invalidate(ctx, req.Handle); err != nil {
			s.log.Warn().Err(err).Str("handle", req.Handle).Msg("balance invalidation failed after funding")
		}
	}

	s.log.Info().
		Str("handle", req.Handle).
		Str("address", req.Address.Hex()).
		Str("amount", s.seed.String()).
		Str("tx_hash", txHash.Hex()).
		Msg("wallet funded")

	s.events.Emit(ctx, domain.NewEvent(domain.EventWalletFunded, req.Handle, map[string]string{
		"address": req.Address.Hex(),
		"amount":  s.seed.String(),
		"tx_hash": txHash.Hex(),
	}))

	return result, nil
}
