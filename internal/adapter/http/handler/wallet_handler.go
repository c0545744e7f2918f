package handler

import (
	"agent-chain-wallet/internal/adapter/http/dto"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles agent wallet endpoints.
type WalletHandler struct {
	walletSvc  ports.WalletService
	balanceSvc ports.BalanceService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, balanceSvc ports.BalanceService) *WalletHandler {
	return &WalletHandler{
		walletSvc:  walletSvc,
		balanceSvc: balanceSvc,
	}
}

// Provision handles POST /api/v1/agents/:handle/wallet.
func (h *WalletHandler) Provision(c *gin.Context) {
	result, err := h.walletSvc.Provision(c.Request.Context(), c.Param("handle"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ProvisionResponse{
		Wallet:  dto.ToWalletResponse(result.Wallet),
		Funding: dto.ToFundingResponse(result.Funding),
	})
}

// Get handles GET /api/v1/agents/:handle/wallet.
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), c.Param("handle"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ToWalletResponse(wallet))
}

// Delete handles DELETE /api/v1/agents/:handle/wallet.
func (h *WalletHandler) Delete(c *gin.Context) {
	if err := h.walletSvc.DeleteWallet(c.Request.Context(), c.Param("handle")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetBalance handles GET /api/v1/agents/:handle/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	handle := c.Param("handle")
	balance, err := h.balanceSvc.Read(c.Request.Context(), handle)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Handle:  handle,
		Balance: balance.String(),
	})
}
