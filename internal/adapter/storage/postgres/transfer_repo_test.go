package postgres

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	aliceAddr = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bobAddr   = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func newTestTransfer() *domain.TransferRecord {
	now := time.Now().UTC().Truncate(time.Microsecond)
	amount, _ := new(big.Int).SetString("100000000000000000000", 10)
	return &domain.TransferRecord{
		ID:          uuid.New(),
		ReferenceID: strPtr("ref-001"),
		FromHandle:  "alice",
		FromAddress: aliceAddr,
		ToHandle:    strPtr("bob"),
		ToAddress:   bobAddr,
		Amount:      amount,
		Status:      domain.TransferStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func transferColumnNames() []string {
	return []string{"id", "reference_id", "from_handle", "from_address", "to_handle", "to_address", "amount",
		"status", "permit_tx_hash", "transfer_tx_hash", "failure_reason", "created_at", "updated_at"}
}

func transferRow(rows *pgxmock.Rows, t *domain.TransferRecord, permit, transfer *string) *pgxmock.Rows {
	return rows.AddRow(
		t.ID, t.ReferenceID, t.FromHandle, t.FromAddress.Hex(), t.ToHandle, t.ToAddress.Hex(),
		t.Amount.String(), string(t.Status), permit, transfer, t.FailureReason, t.CreatedAt, t.UpdatedAt,
	)
}

func TestTransferRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	tr := newTestTransfer()

	mock.ExpectExec("INSERT INTO wallet_transfers").
		WithArgs(tr.ID, tr.ReferenceID, "alice", aliceAddr.Hex(), tr.ToHandle, bobAddr.Hex(),
			"100000000000000000000", "PENDING", tr.CreatedAt, tr.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), tr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepo_Create_DuplicateReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	mock.ExpectExec("INSERT INTO wallet_transfers").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "wallet_transfers_reference_id_key"})

	err = repo.Create(context.Background(), newTestTransfer())
	assert.ErrorIs(t, err, ports.ErrDuplicateReference)
}

func TestTransferRepo_GetByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	tr := newTestTransfer()
	tr.Status = domain.TransferStatusConfirmed
	permit := common.HexToHash("0x01").Hex()
	transfer := common.HexToHash("0x02").Hex()

	mock.ExpectQuery("SELECT .+ FROM wallet_transfers WHERE reference_id").
		WithArgs("ref-001").
		WillReturnRows(transferRow(pgxmock.NewRows(transferColumnNames()), tr, &permit, &transfer))

	got, err := repo.GetByReference(context.Background(), "ref-001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tr.ID, got.ID)
	assert.Equal(t, 0, tr.Amount.Cmp(got.Amount))
	assert.Equal(t, aliceAddr, got.FromAddress)
	assert.Equal(t, bobAddr, got.ToAddress)
	assert.Equal(t, domain.TransferStatusConfirmed, got.Status)
	require.NotNil(t, got.PermitTxHash)
	assert.Equal(t, common.HexToHash("0x01"), *got.PermitTxHash)
	require.NotNil(t, got.TransferTxHash)
	assert.Equal(t, common.HexToHash("0x02"), *got.TransferTxHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepo_GetByReference_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	mock.ExpectQuery("SELECT .+ FROM wallet_transfers").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(transferColumnNames()))

	got, err := repo.GetByReference(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransferRepo_StatusTransitions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	id := uuid.New()
	permitTx := common.HexToHash("0xaa")
	transferTx := common.HexToHash("0xbb")
	ctx := context.Background()

	mock.ExpectExec("UPDATE wallet_transfers SET status = \\$1, permit_tx_hash").
		WithArgs("PERMITTED", permitTx.Hex(), pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE wallet_transfers SET status = \\$1, transfer_tx_hash").
		WithArgs("CONFIRMED", transferTx.Hex(), pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkPermitted(ctx, id, permitTx))
	require.NoError(t, repo.MarkConfirmed(ctx, id, transferTx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepo_MarkFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE wallet_transfers SET status = \\$1, failure_reason").
		WithArgs("FAILED", "transferFrom reverted", pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkFailed(context.Background(), id, "transferFrom reverted"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepo_MarkSubmitted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	id := uuid.New()
	transferTx := common.HexToHash("0xcc")

	mock.ExpectExec("UPDATE wallet_transfers SET status = \\$1, transfer_tx_hash").
		WithArgs("SUBMITTED", transferTx.Hex(), pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkSubmitted(context.Background(), id, transferTx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepo_Mark_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	mock.ExpectExec("UPDATE wallet_transfers").WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.MarkConfirmed(context.Background(), uuid.New(), common.HexToHash("0x01"))
	assert.ErrorContains(t, err, "transfer not found")
}

func TestTransferRepo_ListByHandle(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	first := newTestTransfer()
	second := newTestTransfer()
	second.ReferenceID = nil
	second.ToHandle = nil
	second.Status = domain.TransferStatusFailed
	second.FailureReason = strPtr("execution reverted")

	rows := pgxmock.NewRows(transferColumnNames())
	transferRow(rows, first, nil, nil)
	transferRow(rows, second, nil, nil)

	mock.ExpectQuery("SELECT .+ FROM wallet_transfers\\s+WHERE from_handle = \\$1 OR to_handle = \\$1").
		WithArgs("alice", 20).
		WillReturnRows(rows)

	got, err := repo.ListByHandle(context.Background(), "alice", 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Nil(t, got[1].ToHandle)
	assert.Equal(t, domain.TransferStatusFailed, got[1].Status)
	require.NotNil(t, got[1].FailureReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferRepo_ListByHandle_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransferRepo(mock)
	mock.ExpectQuery("SELECT").WillReturnError(fmt.Errorf("timeout"))

	_, err = repo.ListByHandle(context.Background(), "alice", 20)
	assert.ErrorContains(t, err, "list transfers")
}
