package service

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

const maxNFTTitleLen = 200

// NFTServiceImpl implements ports.NFTService.
type NFTServiceImpl struct {
	wallets ports.WalletRepository
	chain   ports.ChainClient
	events  ports.EventSink
	log     zerolog.Logger
}

// NewNFTService creates a new NFTServiceImpl.
func NewNFTService(wallets ports.WalletRepository, chain ports.ChainClient, events ports.EventSink, log zerolog.Logger) *NFTServiceImpl {
	return &NFTServiceImpl{
		wallets: wallets,
		chain:   chain,
		events:  events,
		log:     log,
	}
}

// Mint mints one NFT to the agent's wallet and returns the confirmed tx hash.
// Minting never creates a wallet.
func (s *NFTServiceImpl) Mint(ctx context.Context, req ports.MintRequest) (common.Hash, error) {
	handle := domain.NormalizeHandle(req.Handle)
	if !domain.ValidHandle(handle) {
		return common.Hash{}, apperror.ErrInvalidHandle()
	}
	if err := validateArtwork(req.ArtworkURL, req.Title); err != nil {
		return common.Hash{}, err
	}
	if !s.chain.Available() {
		return common.Hash{}, apperror.ErrChainUnavailable()
	}

	wallet, err := s.wallets.GetByHandle(ctx, handle)
	if err != nil {
		return common.Hash{}, apperror.ErrDatabaseError(fmt.Errorf("lookup wallet: %w", err))
	}
	if wallet == nil {
		return common.Hash{}, apperror.ErrWalletNotFound(handle)
	}

	txHash, err := s.chain.MintNFT(ctx, wallet.Address, req.ArtworkURL, strings.TrimSpace(req.Title))
	if err != nil {
		return common.Hash{}, reportFailure(ctx, s.events, "mint_nft", handle,
			apperror.ErrChainTxFailed(fmt.Errorf("mint to %s: %w", wallet.Address.Hex(), err)))
	}

	s.log.Info().Str("handle", handle).Str("address", wallet.Address.Hex()).Str("tx_hash", txHash.Hex()).Msg("nft minted")

	s.events.Emit(ctx, domain.NewEvent(domain.EventNFTMinted, handle, map[string]string{
		"address": wallet.Address.Hex(),
		"title":   strings.TrimSpace(req.Title),
		"tx_hash": txHash.Hex(),
	}))

	return txHash, nil
}

// OwnedCount is display-only: any failure reads as zero.
func (s *NFTServiceImpl) OwnedCount(ctx context.Context, handle string) (*big.Int, error) {
	handle = domain.NormalizeHandle(handle)
	if !domain.ValidHandle(handle) {
		return nil, apperror.ErrInvalidHandle()
	}

	wallet, err := s.wallets.GetByHandle(ctx, handle)
	if err != nil {
		s.log.Warn().Err(err).Str("handle", handle).Msg("wallet lookup failed for nft count")
		return new(big.Int), nil
	}
	if wallet == nil || !s.chain.Available() {
		return new(big.Int), nil
	}

	count, err := s.chain.NFTBalance(ctx, wallet.Address)
	if err != nil {
		s.log.Warn().Err(err).Str("handle", handle).Msg("nft balance query failed")
		return new(big.Int), nil
	}
	return count, nil
}

func validateArtwork(artworkURL, title string) error {
	u, err := url.Parse(artworkURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http" && u.Scheme != "ipfs") || u.Host == "" {
		return apperror.Validation("artwork_url must be an absolute http(s) or ipfs URL")
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxNFTTitleLen {
		return apperror.Validation(fmt.Sprintf("title must be 1-%d characters", maxNFTTitleLen))
	}
	return nil
}
