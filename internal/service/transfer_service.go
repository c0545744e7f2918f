package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// TransferServiceImpl implements ports.TransferService. Agent-sourced
// transfers run permit then transferFrom with the treasury as relayer;
// treasury-sourced transfers use a plain transfer.
type TransferServiceImpl struct {
	wallets   ports.WalletRepository
	transfers ports.TransferRepository
	vault     ports.KeyVault
	signer    ports.PermitSigner
	chain     ports.ChainClient
	locker    ports.WalletLocker
	cache     ports.BalanceCache
	events    ports.EventSink
	log       zerolog.Logger
}

// NewTransferService creates a new TransferServiceImpl.
func NewTransferService(
	wallets ports.WalletRepository,
	transfers ports.TransferRepository,
	vault ports.KeyVault,
	signer ports.PermitSigner,
	chain ports.ChainClient,
	locker ports.WalletLocker,
	cache ports.BalanceCache,
	events ports.EventSink,
	log zerolog.Logger,
) *TransferServiceImpl {
	return &TransferServiceImpl{
		wallets:   wallets,
		transfers: transfers,
		vault:     vault,
		signer:    signer,
		chain:     chain,
		locker:    locker,
		cache:     cache,
		events:    events,
		log:       log,
	}
}

// party is one resolved side of a transfer. wallet is nil for the treasury
// and for bare destination addresses.
type party struct {
	handle  string
	address common.Address
	wallet  *domain.AgentWallet
}

// Transfer moves intent.Amount from the source to the destination and returns
// the confirmed ledger record. Any failure aborts the sequence; a permit that
// already landed is not revoked. A token movement that was broadcast but not
// confirmed in time is returned as SUBMITTED with its hash, never as FAILED.
func (s *TransferServiceImpl) Transfer(ctx context.Context, intent domain.TransferIntent) (*domain.TransferRecord, error) {
	if intent.Amount == nil || intent.Amount.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if intent.Deadline != nil && intent.Deadline.Cmp(big.NewInt(time.Now().Unix())) <= 0 {
		return nil, apperror.Validation("deadline must be in the future")
	}
	intent.FromHandle = domain.NormalizeHandle(intent.FromHandle)
	intent.ToHandle = domain.NormalizeHandle(intent.ToHandle)

	if !s.chain.Available() {
		return nil, apperror.ErrChainUnavailable()
	}

	if intent.ReferenceID != "" {
		prior, err := s.transfers.GetByReference(ctx, intent.ReferenceID)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup reference: %w", err))
		}
		if prior != nil {
			if prior.Status == domain.TransferStatusConfirmed || prior.Status == domain.TransferStatusSubmitted {
				return prior, nil
			}
			return nil, apperror.ErrDuplicateTransfer()
		}
	}

	src, err := s.resolveSource(ctx, intent.FromHandle)
	if err != nil {
		return nil, err
	}
	dst, err := s.resolveDestination(ctx, intent)
	if err != nil {
		return nil, err
	}
	if src.address == dst.address {
		return nil, apperror.ErrInvalidDestination()
	}

	if src.wallet != nil {
		release, err := s.locker.Lock(ctx, "wallet:"+src.address.Hex())
		if err != nil {
			return nil, reportFailure(ctx, s.events, "transfer", src.handle,
				apperror.ErrLockTimeout(fmt.Errorf("lock %s: %w", src.address.Hex(), err)))
		}
		defer release()
	}

	record := newTransferRecord(intent, src, dst)
	if err := s.transfers.Create(ctx, record); err != nil {
		if errors.Is(err, ports.ErrDuplicateReference) {
			return nil, apperror.ErrDuplicateTransfer()
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create transfer record: %w", err))
	}

	var txHash common.Hash
	if src.wallet == nil {
		txHash, err = s.chain.Transfer(ctx, dst.address, intent.Amount)
		if unconfirmed(txHash, err) {
			return s.submitted(ctx, record, src, dst, txHash, err), nil
		}
		if err != nil {
			return nil, s.fail(ctx, record, apperror.ErrChainTxFailed(fmt.Errorf("treasury transfer: %w", err)))
		}
	} else {
		if err := s.permit(ctx, record, src, intent.Deadline); err != nil {
			return nil, s.fail(ctx, record, err)
		}
		txHash, err = s.chain.TransferFrom(ctx, src.address, dst.address, intent.Amount)
		if unconfirmed(txHash, err) {
			return s.submitted(ctx, record, src, dst, txHash, err), nil
		}
		if err != nil {
			return nil, s.fail(ctx, record, apperror.ErrChainTxFailed(fmt.Errorf("transferFrom: %w", err)))
		}
	}

	record.Status = domain.TransferStatusConfirmed
	record.TransferTxHash = &txHash
	record.UpdatedAt = time.Now().UTC()
	if err := s.transfers.MarkConfirmed(ctx, record.ID, txHash); err != nil {
		// Funds already moved on-chain; the caller still gets the confirmed result.
		s.log.Error().Err(err).Str("transfer_id", record.ID.String()).Str("tx_hash", txHash.Hex()).
			Msg("failed to mark transfer confirmed")
	}

	s.invalidate(ctx, src, dst)

	s.log.Info().
		Str("transfer_id", record.ID.String()).
		Str("from", src.address.Hex()).
		Str("to", dst.address.Hex()).
		Str("amount", intent.Amount.String()).
		Str("tx_hash", txHash.Hex()).
		Msg("transfer confirmed")

	s.events.Emit(ctx, domain.NewEvent(domain.EventTransferCompleted, src.handle, map[string]string{
		"from":    src.address.Hex(),
		"to":      dst.address.Hex(),
		"amount":  intent.Amount.String(),
		"tx_hash": txHash.Hex(),
	}))

	return record, nil
}

// unconfirmed reports a broadcast transaction whose outcome is unknown.
func unconfirmed(txHash common.Hash, err error) bool {
	return err != nil && errors.Is(err, ports.ErrTxUnconfirmed) && txHash != (common.Hash{})
}

// submitted parks the record as SUBMITTED. The transaction may still be mined,
// so the source stays charged in the ledger and a retry under the same
// reference returns this record instead of sending the funds again.
func (s *TransferServiceImpl) submitted(ctx context.Context, record *domain.TransferRecord, src, dst party, txHash common.Hash, cause error) *domain.TransferRecord {
	record.Status = domain.TransferStatusSubmitted
	record.TransferTxHash = &txHash
	record.UpdatedAt = time.Now().UTC()
	if err := s.transfers.MarkSubmitted(ctx, record.ID, txHash); err != nil {
		s.log.Error().Err(err).Str("transfer_id", record.ID.String()).Str("tx_hash", txHash.Hex()).
			Msg("failed to mark transfer submitted")
	}

	s.invalidate(ctx, src, dst)

	s.log.Warn().Err(cause).
		Str("transfer_id", record.ID.String()).
		Str("from", src.address.Hex()).
		Str("to", dst.address.Hex()).
		Str("tx_hash", txHash.Hex()).
		Msg("transfer submitted without confirmation")

	s.events.Emit(ctx, domain.NewEvent(domain.EventTransferSubmitted, src.handle, map[string]string{
		"from":    src.address.Hex(),
		"to":      dst.address.Hex(),
		"amount":  record.Amount.String(),
		"tx_hash": txHash.Hex(),
	}))
	return record
}

func (s *TransferServiceImpl) invalidate(ctx context.Context, parties ...party) {
	for _, p := range parties {
		if p.wallet == nil {
			continue
		}
		if err := s.cache.Invalidate(ctx, p.handle); err != nil {
			s.log.Warn().Err(err).Str("handle", p.handle).Msg("balance invalidation failed after transfer")
		}
	}
}

// permit signs a fresh authorization with the source key and relays it.
// It returns only after the permit transaction is mined.
func (s *TransferServiceImpl) permit(ctx context.Context, record *domain.TransferRecord, src party, deadline *big.Int) error {
	key, err := s.vault.Open(src.handle, src.wallet.EncryptedPrivateKey)
	if err != nil {
		return apperror.ErrEncryptionFailure(fmt.Errorf("open key: %w", err))
	}

	if deadline == nil {
		deadline = math.MaxBig256
	}
	operator := s.chain.TreasuryAddress()

	sig, err := s.signer.SignPermit(ctx, key, operator, math.MaxBig256, deadline)
	if err != nil {
		return apperror.ErrSignatureFailed(err)
	}
	split, err := sig.Split()
	if err != nil {
		return apperror.ErrSignatureFailed(err)
	}

	if err := s.wallets.UpdatePermitSignature(ctx, src.handle, sig); err != nil {
		s.log.Warn().Err(err).Str("handle", src.handle).Msg("failed to store latest permit signature")
	}

	permitTx, err := s.chain.Permit(ctx, ports.PermitCall{
		Owner:     src.address,
		Spender:   operator,
		Value:     math.MaxBig256,
		Deadline:  deadline,
		Signature: split,
	})
	if err != nil {
		return apperror.ErrChainTxFailed(fmt.Errorf("permit: %w", err))
	}

	record.Status = domain.TransferStatusPermitted
	record.PermitTxHash = &permitTx
	if err := s.transfers.MarkPermitted(ctx, record.ID, permitTx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("mark permitted: %w", err))
	}

	s.log.Debug().Str("transfer_id", record.ID.String()).Str("tx_hash", permitTx.Hex()).Msg("permit confirmed")
	return nil
}

func (s *TransferServiceImpl) fail(ctx context.Context, record *domain.TransferRecord, err error) error {
	reason := err.Error()
	record.Status = domain.TransferStatusFailed
	record.FailureReason = &reason
	if mErr := s.transfers.MarkFailed(ctx, record.ID, reason); mErr != nil {
		s.log.Error().Err(mErr).Str("transfer_id", record.ID.String()).Msg("failed to mark transfer failed")
	}
	s.log.Error().Err(err).Str("transfer_id", record.ID.String()).Str("from", record.FromHandle).Msg("transfer failed")
	return reportFailure(ctx, s.events, "transfer", record.FromHandle, err)
}

func (s *TransferServiceImpl) resolveSource(ctx context.Context, handle string) (party, error) {
	if handle == domain.TreasuryHandle {
		return party{handle: handle, address: s.chain.TreasuryAddress()}, nil
	}
	if !domain.ValidHandle(handle) {
		return party{}, apperror.ErrInvalidHandle()
	}
	wallet, err := s.wallets.GetByHandle(ctx, handle)
	if err != nil {
		return party{}, apperror.ErrDatabaseError(fmt.Errorf("lookup source wallet: %w", err))
	}
	if wallet == nil {
		return party{}, apperror.ErrWalletNotFound(handle)
	}
	return party{handle: handle, address: wallet.Address, wallet: wallet}, nil
}

func (s *TransferServiceImpl) resolveDestination(ctx context.Context, intent domain.TransferIntent) (party, error) {
	switch {
	case intent.ToHandle == domain.TreasuryHandle:
		return party{handle: intent.ToHandle, address: s.chain.TreasuryAddress()}, nil
	case intent.ToHandle != "":
		if !domain.ValidHandle(intent.ToHandle) {
			return party{}, apperror.ErrInvalidHandle()
		}
		wallet, err := s.wallets.GetByHandle(ctx, intent.ToHandle)
		if err != nil {
			return party{}, apperror.ErrDatabaseError(fmt.Errorf("lookup destination wallet: %w", err))
		}
		if wallet == nil {
			return party{}, apperror.ErrWalletNotFound(intent.ToHandle)
		}
		if intent.ToAddress != (common.Address{}) && intent.ToAddress != wallet.Address {
			return party{}, apperror.ErrInvalidDestination()
		}
		return party{handle: intent.ToHandle, address: wallet.Address, wallet: wallet}, nil
	case intent.ToAddress != (common.Address{}):
		return party{address: intent.ToAddress}, nil
	default:
		return party{}, apperror.ErrInvalidDestination()
	}
}

func newTransferRecord(intent domain.TransferIntent, src, dst party) *domain.TransferRecord {
	now := time.Now().UTC()
	record := &domain.TransferRecord{
		ID:          uuid.New(),
		FromHandle:  src.handle,
		FromAddress: src.address,
		ToAddress:   dst.address,
		Amount:      new(big.Int).Set(intent.Amount),
		Status:      domain.TransferStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if intent.ReferenceID != "" {
		ref := intent.ReferenceID
		record.ReferenceID = &ref
	}
	if dst.handle != "" {
		to := dst.handle
		record.ToHandle = &to
	}
	return record
}

// History lists the ledger rows where handle is source or destination, newest first.
func (s *TransferServiceImpl) History(ctx context.Context, handle string, limit int) ([]domain.TransferRecord, error) {
	handle = domain.NormalizeHandle(handle)
	if handle != domain.TreasuryHandle && !domain.ValidHandle(handle) {
		return nil, apperror.ErrInvalidHandle()
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.transfers.ListByHandle(ctx, handle, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list transfers: %w", err))
	}
	return records, nil
}
