package service

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/internal/core/ports/mocks"
	"agent-chain-wallet/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewFundingService_InvalidSeed(t *testing.T) {
	for _, seed := range []string{"", "0", "-1", "1e18"} {
		_, err := NewFundingService(nil, nil, nil, seed, zerolog.Nop())
		assert.Error(t, err, seed)
	}
}

func TestFundingService_Fund_SubmitsAndInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	chain := mocks.NewMockChainClient(ctrl)
	cache := mocks.NewMockBalanceCache(ctrl)
	events := mocks.NewMockEventSink(ctrl)
	ctx := context.Background()

	svc, err := NewFundingService(chain, cache, events, "1000000000000000000000", zerolog.Nop())
	require.NoError(t, err)

	dest := common.HexToAddress("0x1234")
	seed, _ := new(big.Int).SetString("1000000000000000000000", 10)
	txHash := common.HexToHash("0xabc")

	chain.EXPECT().Available().Return(true)
	chain.EXPECT().Transfer(ctx, dest, seed).Return(txHash, nil)
	cache.EXPECT().Invalidate(ctx, "alice").Return(nil)
	events.EXPECT().Emit(ctx, gomock.Any()).Do(func(_ context.Context, ev domain.WalletEvent) {
		assert.Equal(t, domain.EventWalletFunded, ev.Kind)
		assert.Equal(t, txHash.Hex(), ev.Attributes["tx_hash"])
	})

	result, err := svc.Fund(ctx, ports.FundRequest{Handle: "alice", Address: dest})
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, txHash, *result.TxHash)
	assert.Equal(t, 0, seed.Cmp(result.Amount))
}

func TestFundingService_Fund_WithoutHandleSkipsInvalidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	chain := mocks.NewMockChainClient(ctrl)
	events := mocks.NewMockEventSink(ctrl)
	ctx := context.Background()

	svc, err := NewFundingService(chain, mocks.NewMockBalanceCache(ctrl), events, "10", zerolog.Nop())
	require.NoError(t, err)

	chain.EXPECT().Available().Return(true)
	chain.EXPECT().Transfer(ctx, gomock.Any(), big.NewInt(10)).Return(common.HexToHash("0x1"), nil)
	events.EXPECT().Emit(ctx, gomock.Any())

	_, err = svc.Fund(ctx, ports.FundRequest{Address: common.HexToAddress("0x99")})
	require.NoError(t, err)
}

func TestFundingService_Fund_RevertIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	chain := mocks.NewMockChainClient(ctrl)
	events := mocks.NewMockEventSink(ctrl)
	ctx := context.Background()

	svc, err := NewFundingService(chain, mocks.NewMockBalanceCache(ctrl), events, "10", zerolog.Nop())
	require.NoError(t, err)

	chain.EXPECT().Available().Return(true)
	chain.EXPECT().Transfer(ctx, gomock.Any(), gomock.Any()).Return(common.Hash{}, errReverted)
	events.EXPECT().Emit(ctx, gomock.Any()).Do(func(_ context.Context, ev domain.WalletEvent) {
		assert.Equal(t, domain.EventOperationFailed, ev.Kind)
		assert.Equal(t, "fund_wallet", ev.Operation)
	})

	result, err := svc.Fund(ctx, ports.FundRequest{Handle: "alice", Address: common.HexToAddress("0x99")})
	assert.Nil(t, result)
	assert.True(t, apperror.HasCode(err, "CHN_002"))
	assert.True(t, errors.Is(err, errReverted))
}

func TestFundingService_Fund_ZeroAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, err := NewFundingService(mocks.NewMockChainClient(ctrl), mocks.NewMockBalanceCache(ctrl), mocks.NewMockEventSink(ctrl), "10", zerolog.Nop())
	require.NoError(t, err)

	_, err = svc.Fund(context.Background(), ports.FundRequest{})
	assert.True(t, apperror.HasCode(err, "TRF_003"))
}
