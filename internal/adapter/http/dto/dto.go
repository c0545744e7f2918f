package dto

import (
	"time"

	"agent-chain-wallet/internal/core/domain"
)

// Amounts are decimal strings in the token's smallest unit so that values
// above 2^53 survive JSON clients.

// WalletResponse is the public view of an agent wallet.
type WalletResponse struct {
	Handle           string `json:"handle"`
	Address          string `json:"address"`
	PermitStatus     string `json:"permit_status"`
	PermitNoneReason string `json:"permit_none_reason,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// FundingResponse describes the seed funding of a new wallet.
type FundingResponse struct {
	Status string  `json:"status"` // funded, skipped
	Amount string  `json:"amount,omitempty"`
	TxHash *string `json:"tx_hash,omitempty"`
}

// ProvisionResponse is returned by POST /agents/:handle/wallet.
type ProvisionResponse struct {
	Wallet  WalletResponse   `json:"wallet"`
	Funding *FundingResponse `json:"funding,omitempty"`
}

// BalanceResponse is returned by GET /agents/:handle/balance.
type BalanceResponse struct {
	Handle  string `json:"handle"`
	Balance string `json:"balance"`
}

// TransferRequest is the request body for POST /transfers.
type TransferRequest struct {
	FromHandle  string  `json:"from_handle" binding:"required,max=65"`
	ToHandle    string  `json:"to_handle,omitempty" binding:"max=65"`
	ToAddress   string  `json:"to_address,omitempty" binding:"omitempty,eth_address"`
	Amount      string  `json:"amount" binding:"required,max=78"`
	Deadline    *int64  `json:"deadline,omitempty" binding:"omitempty,gt=0"` // unix seconds
	ReferenceID *string `json:"reference_id,omitempty" binding:"omitempty,max=100,safe_id"`
}

// TransferResponse is the ledger row of an orchestrated transfer.
type TransferResponse struct {
	ID             string  `json:"id"`
	ReferenceID    *string `json:"reference_id,omitempty"`
	FromHandle     string  `json:"from_handle"`
	FromAddress    string  `json:"from_address"`
	ToHandle       *string `json:"to_handle,omitempty"`
	ToAddress      string  `json:"to_address"`
	Amount         string  `json:"amount"`
	Status         string  `json:"status"`
	PermitTxHash   *string `json:"permit_tx_hash,omitempty"`
	TransferTxHash *string `json:"transfer_tx_hash,omitempty"`
	FailureReason  *string `json:"failure_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// TransferListResponse wraps a handle's transfer history.
type TransferListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

// MintRequest is the request body for POST /agents/:handle/nfts.
type MintRequest struct {
	ArtworkURL string `json:"artwork_url" binding:"required,max=2048,artwork_url"`
	Title      string `json:"title" binding:"required,max=200"`
}

// MintResponse carries the mint transaction hash.
type MintResponse struct {
	TxHash string `json:"tx_hash"`
}

// NFTCountResponse is returned by GET /agents/:handle/nfts.
type NFTCountResponse struct {
	Handle string `json:"handle"`
	Owned  string `json:"owned"`
}

// ToWalletResponse projects a wallet without custody material.
func ToWalletResponse(w *domain.AgentWallet) WalletResponse {
	v := w.View()
	return WalletResponse{
		Handle:           v.Handle,
		Address:          v.Address,
		PermitStatus:     v.PermitStatus,
		PermitNoneReason: v.PermitNoneCause,
		CreatedAt:        v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToFundingResponse maps a funding outcome; nil stays nil.
func ToFundingResponse(f *domain.FundingResult) *FundingResponse {
	if f == nil {
		return nil
	}
	if f.Skipped {
		return &FundingResponse{Status: "skipped"}
	}
	resp := &FundingResponse{Status: "funded"}
	if f.Amount != nil {
		resp.Amount = f.Amount.String()
	}
	if f.TxHash != nil {
		h := f.TxHash.Hex()
		resp.TxHash = &h
	}
	return resp
}

// ToTransferResponse maps a ledger row.
func ToTransferResponse(r *domain.TransferRecord) TransferResponse {
	resp := TransferResponse{
		ID:            r.ID.String(),
		ReferenceID:   r.ReferenceID,
		FromHandle:    r.FromHandle,
		FromAddress:   r.FromAddress.Hex(),
		ToHandle:      r.ToHandle,
		ToAddress:     r.ToAddress.Hex(),
		Status:        string(r.Status),
		FailureReason: r.FailureReason,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.Amount != nil {
		resp.Amount = r.Amount.String()
	}
	if r.PermitTxHash != nil {
		h := r.PermitTxHash.Hex()
		resp.PermitTxHash = &h
	}
	if r.TransferTxHash != nil {
		h := r.TransferTxHash.Hex()
		resp.TransferTxHash = &h
	}
	return resp
}
