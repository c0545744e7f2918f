package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"

	"agent-chain-wallet/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ErrDuplicateWallet is returned by WalletRepository.Create when the handle
// already owns a wallet. Handles are unique at the storage layer.
var ErrDuplicateWallet = errors.New("wallet already exists for handle")

// ErrDuplicateReference is returned by TransferRepository.Create when the
// reference_id was already used.
var ErrDuplicateReference = errors.New("transfer reference already exists")

// WalletRepository persists custodial agent wallets keyed by handle.
// Lookups return nil, nil when no wallet exists.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.AgentWallet) error
	GetByHandle(ctx context.Context, handle string) (*domain.AgentWallet, error)
	UpdatePermitSignature(ctx context.Context, handle string, sig domain.PermitSignature) error
	Delete(ctx context.Context, handle string) error
}

// TransferRepository is the ledger of orchestrated transfers.
type TransferRepository interface {
	Create(ctx context.Context, record *domain.TransferRecord) error
	GetByReference(ctx context.Context, referenceID string) (*domain.TransferRecord, error)
	MarkPermitted(ctx context.Context, id uuid.UUID, permitTx common.Hash) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, transferTx common.Hash) error
	MarkConfirmed(ctx context.Context, id uuid.UUID, transferTx common.Hash) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	ListByHandle(ctx context.Context, handle string, limit int) ([]domain.TransferRecord, error)
}
