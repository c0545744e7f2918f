package handler

import (
	"math/big"
	"strconv"
	"strings"

	"agent-chain-wallet/internal/adapter/http/dto"
	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/pkg/apperror"
	"agent-chain-wallet/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// TransferHandler handles orchestrated token transfers.
type TransferHandler struct {
	transferSvc ports.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferSvc ports.TransferService) *TransferHandler {
	return &TransferHandler{transferSvc: transferSvc}
}

// Transfer handles POST /api/v1/transfers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, ok := domain.ParseAmount(req.Amount)
	if !ok {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	intent := domain.TransferIntent{
		FromHandle: req.FromHandle,
		ToHandle:   req.ToHandle,
		Amount:     amount,
	}
	if req.ToAddress != "" {
		intent.ToAddress = common.HexToAddress(req.ToAddress)
	}
	if req.Deadline != nil {
		intent.Deadline = big.NewInt(*req.Deadline)
	}
	if req.ReferenceID != nil {
		intent.ReferenceID = *req.ReferenceID
	}

	record, err := h.transferSvc.Transfer(c.Request.Context(), intent)
	if err != nil {
		response.Error(c, err)
		return
	}
	if record.Status == domain.TransferStatusSubmitted {
		response.Accepted(c, dto.ToTransferResponse(record))
		return
	}
	response.OK(c, dto.ToTransferResponse(record))
}

// History handles GET /api/v1/agents/:handle/transfers.
func (h *TransferHandler) History(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(c, apperror.Validation("limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.transferSvc.History(c.Request.Context(), c.Param("handle"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := dto.TransferListResponse{Transfers: make([]dto.TransferResponse, 0, len(records))}
	for i := range records {
		out.Transfers = append(out.Transfers, dto.ToTransferResponse(&records[i]))
	}
	response.OK(c, out)
}
