package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"agent-chain-wallet/config"
	"agent-chain-wallet/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// Dial builds the process-wide chain client. With no RPC URL it returns
// Offline; otherwise the treasury key and token address are mandatory.
func Dial(ctx context.Context, cfg config.ChainConfig, log zerolog.Logger) (ports.ChainClient, error) {
	if cfg.Offline() {
		log.Warn().Msg("chain.rpc_url not set, running in degraded mode: wallets are created unsigned and unfunded")
		return Offline{}, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.TreasuryPrivateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing treasury private key: %w", err)
	}
	tokenAddr, err := parseAddress("token_address", cfg.TokenAddress, true)
	if err != nil {
		return nil, err
	}
	nftAddr, err := parseAddress("nft_address", cfg.NFTAddress, false)
	if err != nil {
		return nil, err
	}

	eth, err := ethclient.DialContext(ctx, strings.TrimSpace(cfg.RPCURL))
	if err != nil {
		return nil, fmt.Errorf("dialing rpc: %w", err)
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		chainID, err = eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("reading chain id: %w", err)
		}
	}

	client, err := New(eth, Options{
		ChainID:        chainID,
		TreasuryKey:    key,
		TokenAddress:   tokenAddr,
		NFTAddress:     nftAddr,
		ConfirmTimeout: cfg.ConfirmTimeout,
	}, log)
	if err != nil {
		eth.Close()
		return nil, err
	}

	log.Info().
		Str("chain_id", chainID.String()).
		Str("treasury", treasuryAddress(key).Hex()).
		Str("token", tokenAddr.Hex()).
		Bool("nft_enabled", nftAddr != (common.Address{})).
		Msg("chain client connected")

	return client, nil
}

func parseAddress(field, value string, required bool) (common.Address, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return common.Address{}, fmt.Errorf("chain.%s is required when rpc_url is set", field)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("chain.%s %q is not a hex address", field, value)
	}
	return common.HexToAddress(value), nil
}
