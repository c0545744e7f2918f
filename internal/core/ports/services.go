package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"agent-chain-wallet/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// KeyVault seals custodial private keys at rest. A sealed key is bound to
// its handle and cannot be opened under any other handle.
type KeyVault interface {
	Seal(handle string, key *ecdsa.PrivateKey) (string, error)
	Open(handle string, sealed string) (*ecdsa.PrivateKey, error)
}

// TokenService issues and validates API bearer tokens.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// BalanceCache stores per-handle balances under the balance-{handle} tag.
// Get returns the entry (nil on miss or after invalidation) together with the
// tag's current generation; a Set carrying an older generation is ignored
// by later reads.
type BalanceCache interface {
	Get(ctx context.Context, handle string) (*domain.CachedBalance, int64, error)
	Set(ctx context.Context, entry domain.CachedBalance) error
	Invalidate(ctx context.Context, handle string) error
}

// WalletLocker serialises permit-then-spend sequences per source wallet.
// The returned release func must be called exactly once.
type WalletLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// EventSink receives operational events. Emit never blocks on delivery and
// has no error result.
type EventSink interface {
	Emit(ctx context.Context, event domain.WalletEvent)
}

// --- Service Ports (Business Logic) ---

// WalletService provisions and looks up custodial wallets.
type WalletService interface {
	Provision(ctx context.Context, handle string) (*ProvisionResult, error)
	CreateWallet(ctx context.Context, handle string) (*domain.AgentWallet, error)
	GetWallet(ctx context.Context, handle string) (*domain.AgentWallet, error)
	DeleteWallet(ctx context.Context, handle string) error
}

// ProvisionResult is a created wallet plus its seed funding outcome.
type ProvisionResult struct {
	Wallet  *domain.AgentWallet
	Funding *domain.FundingResult
}

// FundingService seeds new wallets from the treasury.
type FundingService interface {
	Fund(ctx context.Context, req FundRequest) (*domain.FundingResult, error)
}

// FundRequest names the destination; Handle is optional and only used to
// invalidate the cached balance.
type FundRequest struct {
	Handle  string
	Address common.Address
}

// TransferService runs permit-then-transferFrom transfers.
type TransferService interface {
	Transfer(ctx context.Context, intent domain.TransferIntent) (*domain.TransferRecord, error)
	History(ctx context.Context, handle string, limit int) ([]domain.TransferRecord, error)
}

// BalanceService serves cached token balances.
type BalanceService interface {
	Read(ctx context.Context, handle string) (*big.Int, error)
}

// NFTService mints commemorative NFTs to agent wallets.
type NFTService interface {
	Mint(ctx context.Context, req MintRequest) (common.Hash, error)
	OwnedCount(ctx context.Context, handle string) (*big.Int, error)
}

// MintRequest holds validated input for a mint.
type MintRequest struct {
	Handle     string
	ArtworkURL string
	Title      string
}
