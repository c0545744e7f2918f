package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"agent-chain-wallet/internal/core/ports"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable is returned by every chain operation in degraded mode.
	ErrUnavailable = errors.New("chain: no rpc endpoint configured")
	// ErrReverted means the transaction was mined with a failed status.
	ErrReverted = errors.New("chain: transaction reverted")
	// ErrNFTNotConfigured is returned by NFT calls when no collection address is set.
	ErrNFTNotConfigured = errors.New("chain: nft contract not configured")
)

// Backend is the node interface the client needs; *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Options configures a Client.
type Options struct {
	ChainID        *big.Int
	TreasuryKey    *ecdsa.PrivateKey
	TokenAddress   common.Address
	NFTAddress     common.Address // zero disables minting
	ConfirmTimeout time.Duration
}

// Client implements ports.ChainClient over go-ethereum bound contracts. The
// treasury key signs every write.
type Client struct {
	backend        Backend
	chainID        *big.Int
	treasury       *bind.TransactOpts
	tokenAddr      common.Address
	token          *bind.BoundContract
	nft            *bind.BoundContract
	confirmTimeout time.Duration
	log            zerolog.Logger

	// mu serialises treasury submissions so account nonces are assigned in order.
	mu sync.Mutex
}

var _ ports.ChainClient = (*Client)(nil)

// New binds the token and NFT contracts on backend.
func New(backend Backend, opts Options, log zerolog.Logger) (*Client, error) {
	if opts.TreasuryKey == nil {
		return nil, errors.New("treasury key is required")
	}
	if opts.ChainID == nil || opts.ChainID.Sign() <= 0 {
		return nil, errors.New("chain id is required")
	}
	if opts.TokenAddress == (common.Address{}) {
		return nil, errors.New("token address is required")
	}

	treasury, err := bind.NewKeyedTransactorWithChainID(opts.TreasuryKey, opts.ChainID)
	if err != nil {
		return nil, fmt.Errorf("creating treasury transactor: %w", err)
	}

	timeout := opts.ConfirmTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	c := &Client{
		backend:        backend,
		chainID:        new(big.Int).Set(opts.ChainID),
		treasury:       treasury,
		tokenAddr:      opts.TokenAddress,
		token:          bind.NewBoundContract(opts.TokenAddress, tokenContractABI, backend, backend, backend),
		confirmTimeout: timeout,
		log:            log,
	}
	if opts.NFTAddress != (common.Address{}) {
		c.nft = bind.NewBoundContract(opts.NFTAddress, nftContractABI, backend, backend, backend)
	}
	return c, nil
}

// Close releases the underlying connection when the backend holds one.
func (c *Client) Close() {
	if closer, ok := c.backend.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (c *Client) Available() bool { return true }

func (c *Client) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

func (c *Client) TreasuryAddress() common.Address { return c.treasury.From }

func (c *Client) TokenAddress() common.Address { return c.tokenAddr }

func (c *Client) TokenName(ctx context.Context) (string, error) {
	out, err := c.call(ctx, c.token, "name")
	if err != nil {
		return "", err
	}
	name, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("name: unexpected result type %T", out[0])
	}
	return name, nil
}

func (c *Client) TokenNonce(ctx context.Context, owner common.Address) (*big.Int, error) {
	return c.callUint(ctx, c.token, "nonces", owner)
}

func (c *Client) TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return c.callUint(ctx, c.token, "balanceOf", owner)
}

// Permit relays an owner-signed ERC-2612 permit, paying gas from the treasury.
func (c *Client) Permit(ctx context.Context, call ports.PermitCall) (common.Hash, error) {
	return c.transact(ctx, c.token, "permit",
		call.Owner, call.Spender, call.Value, call.Deadline,
		call.Signature.V, call.Signature.R, call.Signature.S,
	)
}

// TransferFrom spends the treasury's allowance over from.
func (c *Client) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (common.Hash, error) {
	return c.transact(ctx, c.token, "transferFrom", from, to, amount)
}

// Transfer sends tokens out of the treasury's own balance.
func (c *Client) Transfer(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	return c.transact(ctx, c.token, "transfer", to, amount)
}

func (c *Client) MintNFT(ctx context.Context, to common.Address, artworkURL, title string) (common.Hash, error) {
	if c.nft == nil {
		return common.Hash{}, ErrNFTNotConfigured
	}
	return c.transact(ctx, c.nft, "mint", to, artworkURL, title)
}

func (c *Client) NFTBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	if c.nft == nil {
		return nil, ErrNFTNotConfigured
	}
	return c.callUint(ctx, c.nft, "balanceOf", owner)
}

func (c *Client) call(ctx context.Context, contract *bind.BoundContract, method string, args ...any) ([]any, error) {
	var out []any
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}

func (c *Client) callUint(ctx context.Context, contract *bind.BoundContract, method string, args ...any) (*big.Int, error) {
	out, err := c.call(ctx, contract, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}

// transact submits a treasury-signed call and blocks until it is mined or
// the confirm timeout elapses. A failed receipt is ErrReverted; a missing
// one is ports.ErrTxUnconfirmed. Once broadcast, the wait ignores caller
// cancellation so the outcome is not abandoned with the request.
func (c *Client) transact(ctx context.Context, contract *bind.BoundContract, method string, args ...any) (common.Hash, error) {
	c.mu.Lock()
	opts := *c.treasury
	opts.Context = ctx
	tx, err := contract.Transact(&opts, method, args...)
	c.mu.Unlock()
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s: submit: %w", method, err)
	}

	c.log.Debug().Str("method", method).Str("tx_hash", tx.Hash().Hex()).Uint64("nonce", tx.Nonce()).Msg("transaction submitted")

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("tx_hash", tx.Hash().Hex()).Msg("no receipt before confirm timeout")
		return tx.Hash(), fmt.Errorf("%s: waiting for %s: %w: %w", method, tx.Hash().Hex(), ports.ErrTxUnconfirmed, err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return tx.Hash(), fmt.Errorf("%s %s: %w", method, tx.Hash().Hex(), ErrReverted)
	}

	c.log.Info().
		Str("method", method).
		Str("tx_hash", tx.Hash().Hex()).
		Uint64("block", receipt.BlockNumber.Uint64()).
		Uint64("gas_used", receipt.GasUsed).
		Msg("transaction confirmed")

	return tx.Hash(), nil
}

// treasuryAddress derives the treasury address from its key.
func treasuryAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
