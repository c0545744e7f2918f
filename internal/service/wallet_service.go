package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/apperror"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService: one custodial wallet per handle.
type WalletServiceImpl struct {
	repo    ports.WalletRepository
	vault   ports.KeyVault
	signer  ports.PermitSigner
	chain   ports.ChainClient
	funding ports.FundingService
	cache   ports.BalanceCache
	events  ports.EventSink
	log     zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	repo ports.WalletRepository,
	vault ports.KeyVault,
	signer ports.PermitSigner,
	chain ports.ChainClient,
	funding ports.FundingService,
	cache ports.BalanceCache,
	events ports.EventSink,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		repo:    repo,
		vault:   vault,
		signer:  signer,
		chain:   chain,
		funding: funding,
		cache:   cache,
		events:  events,
		log:     log,
	}
}

// Provision creates the wallet and seeds it from the treasury. A funding
// failure leaves the wallet in place; the result still carries it.
func (s *WalletServiceImpl) Provision(ctx context.Context, handle string) (*ports.ProvisionResult, error) {
	wallet, err := s.CreateWallet(ctx, handle)
	if err != nil {
		return nil, err
	}

	funding, err := s.funding.Fund(ctx, ports.FundRequest{Handle: wallet.Handle, Address: wallet.Address})
	if err != nil {
		s.log.Error().Err(err).Str("handle", wallet.Handle).Msg("wallet created but seed funding failed")
		return &ports.ProvisionResult{Wallet: wallet}, err
	}

	return &ports.ProvisionResult{Wallet: wallet, Funding: funding}, nil
}

// CreateWallet generates a keypair for handle, attempts a best-effort permit
// for the treasury operator and persists the sealed key.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, handle string) (*domain.AgentWallet, error) {
	handle = domain.NormalizeHandle(handle)
	if !domain.ValidHandle(handle) {
		return nil, apperror.ErrInvalidHandle()
	}

	existing, err := s.repo.GetByHandle(ctx, handle)
	if err != nil {
		return nil, reportFailure(ctx, s.events, "create_wallet", handle,
			apperror.ErrDatabaseError(fmt.Errorf("lookup wallet: %w", err)))
	}
	if existing != nil {
		return nil, apperror.ErrWalletExists(handle)
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate key: %w", err))
	}

	sealed, err := s.vault.Seal(handle, key)
	if err != nil {
		return nil, reportFailure(ctx, s.events, "create_wallet", handle,
			apperror.ErrEncryptionFailure(fmt.Errorf("seal key: %w", err)))
	}

	now := time.Now().UTC()
	wallet := &domain.AgentWallet{
		Handle:              handle,
		Address:             crypto.PubkeyToAddress(key.PublicKey),
		EncryptedPrivateKey: sealed,
		PermitSignature:     s.initialPermit(ctx, handle, key),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, wallet); err != nil {
		if errors.Is(err, ports.ErrDuplicateWallet) {
			return nil, apperror.ErrWalletExists(handle)
		}
		return nil, reportFailure(ctx, s.events, "create_wallet", handle,
			apperror.ErrDatabaseError(fmt.Errorf("persist wallet: %w", err)))
	}

	s.log.Info().
		Str("handle", handle).
		Str("address", wallet.Address.Hex()).
		Bool("permit_signed", wallet.PermitSignature.Present()).
		Msg("agent wallet created")

	s.events.Emit(ctx, domain.NewEvent(domain.EventWalletCreated, handle, map[string]string{
		"address":       wallet.Address.Hex(),
		"permit_status": wallet.View().PermitStatus,
	}))

	return wallet, nil
}

// initialPermit never fails: without a chain or on signing errors the wallet
// is stored with an explicit absence.
func (s *WalletServiceImpl) initialPermit(ctx context.Context, handle string, key *ecdsa.PrivateKey) domain.PermitSignature {
	if !s.chain.Available() {
		return domain.SignatureNone(domain.SignatureReasonNoChain)
	}

	sig, err := s.signer.SignPermit(ctx, key, s.chain.TreasuryAddress(), nil, nil)
	if err != nil {
		if errors.Is(err, ErrNoChainProvider) {
			return domain.SignatureNone(domain.SignatureReasonNoChain)
		}
		s.log.Warn().Err(err).Str("handle", handle).Msg("permit signature failed, storing wallet without one")
		return domain.SignatureNone(domain.SignatureReasonSignFailed)
	}
	return sig
}

// GetWallet returns WAL_001 when handle has no wallet.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, handle string) (*domain.AgentWallet, error) {
	handle = domain.NormalizeHandle(handle)
	if !domain.ValidHandle(handle) {
		return nil, apperror.ErrInvalidHandle()
	}

	wallet, err := s.repo.GetByHandle(ctx, handle)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(handle)
	}
	return wallet, nil
}

// DeleteWallet removes the wallet as part of whole-agent deletion.
func (s *WalletServiceImpl) DeleteWallet(ctx context.Context, handle string) error {
	wallet, err := s.GetWallet(ctx, handle)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, wallet.Handle); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("delete wallet: %w", err))
	}
	if err := s.cache.Invalidate(ctx, wallet.Handle); err != nil {
		s.log.Warn().Err(err).Str("handle", wallet.Handle).Msg("balance invalidation failed after wallet deletion")
	}

	s.log.Info().Str("handle", wallet.Handle).Str("address", wallet.Address.Hex()).Msg("agent wallet deleted")
	return nil
}
