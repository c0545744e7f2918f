package service

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ErrNoChainProvider is returned by SignPermit when no RPC endpoint is bound,
// since the domain name and owner nonce can only be read from the token.
var ErrNoChainProvider = errors.New("permit signer: no chain provider")

var permitTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Permit": {
		{Name: "owner", Type: "address"},
		{Name: "spender", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	},
}

// PermitDomain is the EIP-712 domain of the token contract.
type PermitDomain struct {
	Name     string
	Version  string
	ChainID  *big.Int
	Contract common.Address
}

// PermitMessage is the structured Permit payload.
type PermitMessage struct {
	Owner    common.Address
	Spender  common.Address
	Value    *big.Int
	Nonce    *big.Int
	Deadline *big.Int
}

// PermitDigest returns the EIP-712 hash a permit signature commits to.
func PermitDigest(d PermitDomain, m PermitMessage) ([]byte, error) {
	td := apitypes.TypedData{
		Types:       permitTypes,
		PrimaryType: "Permit",
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           d.Version,
			ChainId:           (*math.HexOrDecimal256)(d.ChainID),
			VerifyingContract: d.Contract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"owner":    m.Owner.Hex(),
			"spender":  m.Spender.Hex(),
			"value":    (*math.HexOrDecimal256)(m.Value),
			"nonce":    (*math.HexOrDecimal256)(m.Nonce),
			"deadline": (*math.HexOrDecimal256)(m.Deadline),
		},
	}
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, fmt.Errorf("hashing typed data: %w", err)
	}
	return hash, nil
}

// TypedDataPermitSigner implements ports.PermitSigner. The domain name and
// owner nonce are read live from the token on every call.
type TypedDataPermitSigner struct {
	chain   ports.ChainClient
	version string
}

// NewTypedDataPermitSigner creates a signer for the configured token.
// version is the EIP-712 domain version, "1" for OpenZeppelin ERC20Permit.
func NewTypedDataPermitSigner(chain ports.ChainClient, version string) *TypedDataPermitSigner {
	if version == "" {
		version = "1"
	}
	return &TypedDataPermitSigner{chain: chain, version: version}
}

// SignPermit signs Permit(owner, spender, value, nonce, deadline) with the
// owner's key. Nil value or deadline means the maximum uint256.
// The returned signature is r || s || v with v in {27, 28}.
func (s *TypedDataPermitSigner) SignPermit(ctx context.Context, owner *ecdsa.PrivateKey, spender common.Address, value, deadline *big.Int) (domain.PermitSignature, error) {
	if owner == nil {
		return domain.PermitSignature{}, errors.New("permit signer: nil owner key")
	}
	if !s.chain.Available() {
		return domain.PermitSignature{}, ErrNoChainProvider
	}
	if value == nil {
		value = math.MaxBig256
	}
	if deadline == nil {
		deadline = math.MaxBig256
	}

	ownerAddr := crypto.PubkeyToAddress(owner.PublicKey)

	chainID, err := s.chain.ChainID(ctx)
	if err != nil {
		return domain.PermitSignature{}, fmt.Errorf("reading chain id: %w", err)
	}
	name, err := s.chain.TokenName(ctx)
	if err != nil {
		return domain.PermitSignature{}, fmt.Errorf("reading token name: %w", err)
	}
	nonce, err := s.chain.TokenNonce(ctx, ownerAddr)
	if err != nil {
		return domain.PermitSignature{}, fmt.Errorf("reading permit nonce: %w", err)
	}

	digest, err := PermitDigest(
		PermitDomain{Name: name, Version: s.version, ChainID: chainID, Contract: s.chain.TokenAddress()},
		PermitMessage{Owner: ownerAddr, Spender: spender, Value: value, Nonce: nonce, Deadline: deadline},
	)
	if err != nil {
		return domain.PermitSignature{}, err
	}

	sig, err := crypto.Sign(digest, owner)
	if err != nil {
		return domain.PermitSignature{}, fmt.Errorf("signing digest: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return domain.SignaturePresent(sig), nil
}
