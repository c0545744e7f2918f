package domain

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// TransferStatus tracks a transfer through the permit-then-transferFrom sequence.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusPermitted TransferStatus = "PERMITTED" // permit confirmed, transferFrom not yet
	TransferStatusSubmitted TransferStatus = "SUBMITTED" // token movement broadcast, receipt outstanding
	TransferStatusConfirmed TransferStatus = "CONFIRMED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// TransferIntent asks to move Amount of the token from a source wallet to a
// destination. Handles are optional and only used for cache invalidation.
type TransferIntent struct {
	ReferenceID string
	FromHandle  string
	ToHandle    string
	ToAddress   common.Address
	Amount      *big.Int
	Deadline    *big.Int // nil = non-expiring permit
}

// FromTreasury reports whether the treasury itself is the source.
func (t TransferIntent) FromTreasury() bool {
	return t.FromHandle == TreasuryHandle
}

// TransferRecord is the ledger row written for every orchestrated transfer.
type TransferRecord struct {
	ID             uuid.UUID      `json:"id"`
	ReferenceID    *string        `json:"reference_id,omitempty"`
	FromHandle     string         `json:"from_handle"`
	FromAddress    common.Address `json:"from_address"`
	ToHandle       *string        `json:"to_handle,omitempty"`
	ToAddress      common.Address `json:"to_address"`
	Amount         *big.Int       `json:"amount"`
	Status         TransferStatus `json:"status"`
	PermitTxHash   *common.Hash   `json:"permit_tx_hash,omitempty"`
	TransferTxHash *common.Hash   `json:"transfer_tx_hash,omitempty"`
	FailureReason  *string        `json:"failure_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsTerminal returns true once the transfer can no longer change state.
func (r *TransferRecord) IsTerminal() bool {
	return r.Status == TransferStatusConfirmed || r.Status == TransferStatusFailed
}

// FundingResult describes the outcome of seeding a new wallet.
type FundingResult struct {
	Address common.Address `json:"address"`
	Amount  *big.Int       `json:"amount"`
	TxHash  *common.Hash   `json:"tx_hash,omitempty"`
	Skipped bool           `json:"skipped"` // true in degraded mode: nothing was submitted
}

// ParseAmount parses a positive integer amount in the token's smallest unit.
// Amounts are carried as decimal strings so values above 2^53 survive JSON.
func ParseAmount(s string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || v.Sign() <= 0 {
		return nil, false
	}
	return v, true
}
