package ports

//go:generate mockgen -source=chain.go -destination=mocks/mock_chain.go -package=mocks

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"

	"agent-chain-wallet/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
)

// ErrTxUnconfirmed means a transaction was broadcast but no receipt arrived
// before the confirm timeout. The accompanying hash identifies it; it may
// still be mined.
var ErrTxUnconfirmed = errors.New("chain: transaction submitted but unconfirmed")

// PermitCall carries the arguments of an ERC-2612 permit submission.
type PermitCall struct {
	Owner     common.Address
	Spender   common.Address
	Value     *big.Int
	Deadline  *big.Int
	Signature domain.SplitSignature
}

// ChainClient is the single process-wide handle on the chain. Every write is
// signed by the treasury (which pays gas) and returns only after the
// transaction is mined; a reverted receipt is an error. A write whose receipt
// does not arrive in time returns its hash together with ErrTxUnconfirmed.
type ChainClient interface {
	// Available is false in degraded mode (no RPC endpoint configured).
	Available() bool
	ChainID(ctx context.Context) (*big.Int, error)
	TreasuryAddress() common.Address
	TokenAddress() common.Address

	TokenName(ctx context.Context) (string, error)
	TokenNonce(ctx context.Context, owner common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error)

	Permit(ctx context.Context, call PermitCall) (common.Hash, error)
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (common.Hash, error)
	Transfer(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error)

	MintNFT(ctx context.Context, to common.Address, artworkURL, title string) (common.Hash, error)
	NFTBalance(ctx context.Context, owner common.Address) (*big.Int, error)
}

// PermitSigner produces the typed-data authorization letting spender move
// up to value of the token out of owner's wallet until deadline.
type PermitSigner interface {
	SignPermit(ctx context.Context, owner *ecdsa.PrivateKey, spender common.Address, value, deadline *big.Int) (domain.PermitSignature, error)
}
