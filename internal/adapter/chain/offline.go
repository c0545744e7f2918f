package chain

import (
	"context"
	"math/big"

	"agent-chain-wallet/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
)

// Offline is the degraded-mode client used when no RPC endpoint is
// configured. Available is false and every call returns ErrUnavailable.
type Offline struct{}

var _ ports.ChainClient = Offline{}

func (Offline) Available() bool { return false }

func (Offline) ChainID(context.Context) (*big.Int, error) { return nil, ErrUnavailable }

func (Offline) TreasuryAddress() common.Address { return common.Address{} }

func (Offline) TokenAddress() common.Address { return common.Address{} }

func (Offline) TokenName(context.Context) (string, error) { return "", ErrUnavailable }

func (Offline) TokenNonce(context.Context, common.Address) (*big.Int, error) {
	return nil, ErrUnavailable
}

func (Offline) TokenBalance(context.Context, common.Address) (*big.Int, error) {
	return nil, ErrUnavailable
}

func (Offline) Permit(context.Context, ports.PermitCall) (common.Hash, error) {
	return common.Hash{}, ErrUnavailable
}

func (Offline) TransferFrom(context.Context, common.Address, common.Address, *big.Int) (common.Hash, error) {
	return common.Hash{}, ErrUnavailable
}

func (Offline) Transfer(context.Context, common.Address, *big.Int) (common.Hash, error) {
	return common.Hash{}, ErrUnavailable
}

func (Offline) MintNFT(context.Context, common.Address, string, string) (common.Hash, error) {
	return common.Hash{}, ErrUnavailable
}

func (Offline) NFTBalance(context.Context, common.Address) (*big.Int, error) {
	return nil, ErrUnavailable
}
