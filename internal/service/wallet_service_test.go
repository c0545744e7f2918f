package service

import (
	"context"
	"errors"
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

type walletTestDeps struct {
	svc     *WalletServiceImpl
	repo    *mocks.MockWalletRepository
	vault   *mocks.MockKeyVault
	signer  *mocks.MockPermitSigner
	chain   *mocks.MockChainClient
	funding *mocks.MockFundingService
	cache   *mocks.MockBalanceCache
	events  *mocks.MockEventSink
	ctrl    *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		repo:    mocks.NewMockWalletRepository(ctrl),
		vault:   mocks.NewMockKeyVault(ctrl),
		signer:  mocks.NewMockPermitSigner(ctrl),
		chain:   mocks.NewMockChainClient(ctrl),
		funding: mocks.NewMockFundingService(ctrl),
		cache:   mocks.NewMockBalanceCache(ctrl),
		events:  mocks.NewMockEventSink(ctrl),
		ctrl:    ctrl,
	}
	d.svc = NewWalletService(d.repo, d.vault, d.signer, d.chain, d.funding, d.cache, d.events, zerolog.Nop())
	return d
}

// ==================== CreateWallet Tests ====================

func TestWalletService_CreateWallet_SignsPermitForTreasury(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	treasury := common.HexToAddress("0xfe")
	sig := domain.SignaturePresent(make([]byte, 65))

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(nil, nil)
	d.vault.EXPECT().Seal("alice", gomock.Any()).Return("sealed", nil)
	d.chain.EXPECT().Available().Return(true)
	d.chain.EXPECT().TreasuryAddress().Return(treasury)
	d.signer.EXPECT().SignPermit(ctx, gomock.Any(), treasury, gomock.Nil(), gomock.Nil()).Return(sig, nil)
	d.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, w *domain.AgentWallet) error {
		assert.Equal(t, "alice", w.Handle)
		assert.Equal(t, "sealed", w.EncryptedPrivateKey)
		assert.True(t, w.PermitSignature.Present())
		assert.NotEqual(t, common.Address{}, w.Address)
		return nil
	})
	d.events.EXPECT().Emit(ctx, gomock.Any()).Do(func(_ context.Context, ev domain.WalletEvent) {
		assert.Equal(t, domain.EventWalletCreated, ev.Kind)
		assert.Equal(t, "present", ev.Attributes["permit_status"])
	})

	wallet, err := d.svc.CreateWallet(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", wallet.Handle)
}

func TestWalletService_CreateWallet_SigningFailureStillPersists(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(nil, nil)
	d.vault.EXPECT().Seal("alice", gomock.Any()).Return("sealed", nil)
	d.chain.EXPECT().Available().Return(true)
	d.chain.EXPECT().TreasuryAddress().Return(common.HexToAddress("0xfe"))
	d.signer.EXPECT().SignPermit(ctx, gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Nil()).
		Return(domain.PermitSignature{}, errors.New("nonces(): execution reverted"))
	d.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, w *domain.AgentWallet) error {
		assert.False(t, w.PermitSignature.Present())
		assert.Equal(t, domain.SignatureReasonSignFailed, w.PermitSignature.Reason())
		return nil
	})
	d.events.EXPECT().Emit(ctx, gomock.Any())

	_, err := d.svc.CreateWallet(ctx, "alice")
	require.NoError(t, err)
}

func TestWalletService_CreateWallet_NoProviderMeansNoChainReason(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(nil, nil)
	d.vault.EXPECT().Seal("alice", gomock.Any()).Return("sealed", nil)
	d.chain.EXPECT().Available().Return(true)
	d.chain.EXPECT().TreasuryAddress().Return(common.HexToAddress("0xfe"))
	d.signer.EXPECT().SignPermit(ctx, gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Nil()).
		Return(domain.PermitSignature{}, ErrNoChainProvider)
	d.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, w *domain.AgentWallet) error {
		assert.Equal(t, domain.SignatureReasonNoChain, w.PermitSignature.Reason())
		return nil
	})
	d.events.EXPECT().Emit(ctx, gomock.Any())

	_, err := d.svc.CreateWallet(ctx, "alice")
	require.NoError(t, err)
}

func TestWalletService_CreateWallet_InvalidHandle(t *testing.T) {
	d := setupWalletService(t)

	for _, h := range []string{"", "   ", "has space", "treasury", "@"} {
		_, err := d.svc.CreateWallet(context.Background(), h)
		assert.True(t, apperror.HasCode(err, "WAL_003"), h)
	}
}

func TestWalletService_CreateWallet_AlreadyExists(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(&domain.AgentWallet{Handle: "alice"}, nil)

	_, err := d.svc.CreateWallet(ctx, "alice")
	assert.True(t, apperror.HasCode(err, "WAL_002"))
}

func TestWalletService_CreateWallet_UniqueViolationRace(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(nil, nil)
	d.vault.EXPECT().Seal("alice", gomock.Any()).Return("sealed", nil)
	d.chain.EXPECT().Available().Return(false)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(ports.ErrDuplicateWallet)

	_, err := d.svc.CreateWallet(ctx, "alice")
	assert.True(t, apperror.HasCode(err, "WAL_002"))
}

func TestWalletService_CreateWallet_PersistenceFailure(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(nil, nil)
	d.vault.EXPECT().Seal("alice", gomock.Any()).Return("sealed", nil)
	d.chain.EXPECT().Available().Return(false)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(dbErr)
	d.events.EXPECT().Emit(ctx, gomock.Any()).Do(func(_ context.Context, ev domain.WalletEvent) {
		assert.Equal(t, domain.EventOperationFailed, ev.Kind)
		assert.Equal(t, "create_wallet", ev.Operation)
	})

	wallet, err := d.svc.CreateWallet(ctx, "alice")
	assert.Nil(t, wallet)
	assert.True(t, apperror.HasCode(err, "SYS_001"))
	assert.ErrorIs(t, err, dbErr)
}

func TestWalletService_CreateWallet_SealFailure(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(nil, nil)
	d.vault.EXPECT().Seal("alice", gomock.Any()).Return("", errors.New("rng exhausted"))
	d.events.EXPECT().Emit(ctx, gomock.Any())

	_, err := d.svc.CreateWallet(ctx, "alice")
	assert.True(t, apperror.HasCode(err, "SYS_003"))
}

func TestWalletService_CreateWallet_LookupFailure(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(nil, errors.New("timeout"))
	d.events.EXPECT().Emit(ctx, gomock.Any())

	_, err := d.svc.CreateWallet(ctx, "alice")
	assert.True(t, apperror.HasCode(err, "SYS_001"))
}

// ==================== Provision Tests ====================

func TestWalletService_Provision_FundsNewWallet(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "bob").Return(nil, nil)
	d.vault.EXPECT().Seal("bob", gomock.Any()).Return("sealed", nil)
	d.chain.EXPECT().Available().Return(false)
	d.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.events.EXPECT().Emit(ctx, gomock.Any())
	d.funding.EXPECT().Fund(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, req ports.FundRequest) (*domain.FundingResult, error) {
		assert.Equal(t, "bob", req.Handle)
		return &domain.FundingResult{Address: req.Address, Skipped: true}, nil
	})

	result, err := d.svc.Provision(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, result.Funding.Skipped)
	assert.Equal(t, result.Wallet.Address, result.Funding.Address)
}

func TestWalletService_Provision_CreateFailureSkipsFunding(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "bob").Return(&domain.AgentWallet{Handle: "bob"}, nil)

	result, err := d.svc.Provision(ctx, "bob")
	assert.Nil(t, result)
	assert.True(t, apperror.HasCode(err, "WAL_002"))
}

// ==================== Get/Delete Tests ====================

func TestWalletService_GetWallet(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(&domain.AgentWallet{Handle: "alice"}, nil)
	w, err := d.svc.GetWallet(ctx, "@alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", w.Handle)

	d.repo.EXPECT().GetByHandle(ctx, "ghost").Return(nil, nil)
	_, err = d.svc.GetWallet(ctx, "ghost")
	assert.True(t, apperror.HasCode(err, "WAL_001"))
}

func TestWalletService_DeleteWallet(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "alice").Return(&domain.AgentWallet{Handle: "alice"}, nil)
	d.repo.EXPECT().Delete(ctx, "alice").Return(nil)
	d.cache.EXPECT().Invalidate(ctx, "alice").Return(errors.New("redis down"))

	assert.NoError(t, d.svc.DeleteWallet(ctx, "alice"))
}

func TestWalletService_DeleteWallet_NotFound(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	d.repo.EXPECT().GetByHandle(ctx, "ghost").Return(nil, nil)

	err := d.svc.DeleteWallet(ctx, "ghost")
	assert.True(t, apperror.HasCode(err, "WAL_001"))
}
