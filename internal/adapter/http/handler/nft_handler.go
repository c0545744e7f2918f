package handler

import (
	"strings"

	"agent-chain-wallet/internal/adapter/http/dto"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/apperror"
	"agent-chain-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// NFTHandler handles commemorative NFT endpoints.
type NFTHandler struct {
	nftSvc ports.NFTService
}

// NewNFTHandler creates a new NFTHandler.
func NewNFTHandler(nftSvc ports.NFTService) *NFTHandler {
	return &NFTHandler{nftSvc: nftSvc}
}

// Mint handles POST /api/v1/agents/:handle/nfts.
func (h *NFTHandler) Mint(c *gin.Context) {
	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	// Title is stored on chain verbatim, so it is trimmed but not escaped.
	txHash, err := h.nftSvc.Mint(c.Request.Context(), ports.MintRequest{
		Handle:     c.Param("handle"),
		ArtworkURL: strings.TrimSpace(req.ArtworkURL),
		Title:      strings.TrimSpace(req.Title),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.MintResponse{TxHash: txHash.Hex()})
}

// Count handles GET /api/v1/agents/:handle/nfts.
func (h *NFTHandler) Count(c *gin.Context) {
	handle := c.Param("handle")
	n, err := h.nftSvc.OwnedCount(c.Request.Context(), handle)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NFTCountResponse{Handle: handle, Owned: n.String()})
}
