package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transferColumns = `id, reference_id, from_handle, from_address, to_handle, to_address, amount::text,
	status, permit_tx_hash, transfer_tx_hash, failure_reason, created_at, updated_at`

// TransferRepo implements ports.TransferRepository.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

// Create inserts a PENDING ledger row. A reused reference_id yields
// ports.ErrDuplicateReference.
func (r *TransferRepo) Create(ctx context.Context, t *domain.TransferRecord) error {
	query := `INSERT INTO wallet_transfers (id, reference_id, from_handle, from_address, to_handle, to_address,
		amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.ReferenceID, t.FromHandle, t.FromAddress.Hex(), t.ToHandle, t.ToAddress.Hex(),
		t.Amount.String(), string(t.Status), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicateReference
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByReference fetches a transfer by caller reference; nil, nil when absent.
func (r *TransferRepo) GetByReference(ctx context.Context, referenceID string) (*domain.TransferRecord, error) {
	query := `SELECT ` + transferColumns + ` FROM wallet_transfers WHERE reference_id = $1`

	t, err := scanTransfer(r.pool.QueryRow(ctx, query, referenceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer by reference: %w", err)
	}
	return t, nil
}

// MarkPermitted records the confirmed permit transaction.
func (r *TransferRepo) MarkPermitted(ctx context.Context, id uuid.UUID, permitTx common.Hash) error {
	query := `UPDATE wallet_transfers SET status = $1, permit_tx_hash = $2, updated_at = $3 WHERE id = $4`
	return r.update(ctx, "mark transfer permitted", query,
		string(domain.TransferStatusPermitted), permitTx.Hex(), time.Now().UTC(), id)
}

// MarkSubmitted records a broadcast token movement whose receipt did not
// arrive in time. The hash is kept so the outcome can be looked up later.
func (r *TransferRepo) MarkSubmitted(ctx context.Context, id uuid.UUID, transferTx common.Hash) error {
	query := `UPDATE wallet_transfers SET status = $1, transfer_tx_hash = $2, updated_at = $3 WHERE id = $4`
	return r.update(ctx, "mark transfer submitted", query,
		string(domain.TransferStatusSubmitted), transferTx.Hex(), time.Now().UTC(), id)
}

// MarkConfirmed records the confirmed token movement.
func (r *TransferRepo) MarkConfirmed(ctx context.Context, id uuid.UUID, transferTx common.Hash) error {
	query := `UPDATE wallet_transfers SET status = $1, transfer_tx_hash = $2, updated_at = $3 WHERE id = $4`
	return r.update(ctx, "mark transfer confirmed", query,
		string(domain.TransferStatusConfirmed), transferTx.Hex(), time.Now().UTC(), id)
}

// MarkFailed moves the row to FAILED, keeping any permit hash already written.
func (r *TransferRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `UPDATE wallet_transfers SET status = $1, failure_reason = $2, updated_at = $3 WHERE id = $4`
	return r.update(ctx, "mark transfer failed", query,
		string(domain.TransferStatusFailed), reason, time.Now().UTC(), id)
}

// ListByHandle returns transfers sent or received by handle, newest first.
func (r *TransferRepo) ListByHandle(ctx context.Context, handle string, limit int) ([]domain.TransferRecord, error) {
	query := `SELECT ` + transferColumns + ` FROM wallet_transfers
		WHERE from_handle = $1 OR to_handle = $1
		ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, handle, limit)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var out []domain.TransferRecord
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer rows: %w", err)
	}
	return out, nil
}

func (r *TransferRepo) update(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: transfer not found: %v", op, args[len(args)-1])
	}
	return nil
}

func scanTransfer(row pgx.Row) (*domain.TransferRecord, error) {
	var (
		t                      domain.TransferRecord
		fromAddr, toAddr       string
		amount, status         string
		permitHash, transferTx *string
	)
	err := row.Scan(
		&t.ID, &t.ReferenceID, &t.FromHandle, &fromAddr, &t.ToHandle, &toAddr, &amount,
		&status, &permitHash, &transferTx, &t.FailureReason, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.FromAddress = common.HexToAddress(fromAddr)
	t.ToAddress = common.HexToAddress(toAddr)
	t.Status = domain.TransferStatus(status)
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("transfer %s: malformed amount %q", t.ID, amount)
	}
	t.Amount = v
	t.PermitTxHash = optionalHash(permitHash)
	t.TransferTxHash = optionalHash(transferTx)
	return &t, nil
}

func optionalHash(s *string) *common.Hash {
	if s == nil || *s == "" {
		return nil
	}
	h := common.HexToHash(*s)
	return &h
}
