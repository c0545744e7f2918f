package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet. A handle that already owns a row yields
// ports.ErrDuplicateWallet.
func (r *WalletRepo) Create(ctx context.Context, w *domain.AgentWallet) error {
	query := `INSERT INTO agent_wallets (handle, address, encrypted_private_key, permit_signature,
		permit_signature_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	sig, reason := signatureColumns(w.PermitSignature)
	_, err := r.pool.Exec(ctx, query,
		w.Handle, w.Address.Hex(), w.EncryptedPrivateKey, sig, reason,
		w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicateWallet
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByHandle fetches a wallet by its owner's handle; nil, nil when absent.
func (r *WalletRepo) GetByHandle(ctx context.Context, handle string) (*domain.AgentWallet, error) {
	query := `SELECT handle, address, encrypted_private_key, permit_signature, permit_signature_reason,
		created_at, updated_at
		FROM agent_wallets WHERE handle = $1`

	var (
		w       domain.AgentWallet
		address string
		sig     *string
		reason  *string
	)
	err := r.pool.QueryRow(ctx, query, handle).Scan(
		&w.Handle, &address, &w.EncryptedPrivateKey, &sig, &reason,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by handle: %w", err)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("wallet %s: stored address %q is malformed", handle, address)
	}
	w.Address = common.HexToAddress(address)

	var why string
	if reason != nil {
		why = *reason
	}
	w.PermitSignature, err = domain.ParsePermitSignature(sig, why)
	if err != nil {
		return nil, fmt.Errorf("wallet %s: decoding permit signature: %w", handle, err)
	}
	return &w, nil
}

// UpdatePermitSignature replaces the stored permit authorization.
func (r *WalletRepo) UpdatePermitSignature(ctx context.Context, handle string, s domain.PermitSignature) error {
	query := `UPDATE agent_wallets SET permit_signature = $1, permit_signature_reason = $2, updated_at = $3
		WHERE handle = $4`

	sig, reason := signatureColumns(s)
	tag, err := r.pool.Exec(ctx, query, sig, reason, time.Now().UTC(), handle)
	if err != nil {
		return fmt.Errorf("update permit signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", handle)
	}
	return nil
}

// Delete removes the wallet row. Deleting a missing handle is not an error.
func (r *WalletRepo) Delete(ctx context.Context, handle string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM agent_wallets WHERE handle = $1`, handle); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

func signatureColumns(s domain.PermitSignature) (sig, reason *string) {
	if s.Present() {
		h := s.Hex()
		return &h, nil
	}
	why := s.Reason()
	return nil, &why
}
