package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"horizon-api/models"
	"horizon-api/services"
	"horizon-api/store"
	"horizon-api/utils"
)

// TransferHandler exposes the transfer engine and the per-bank transfer
// ledger.
type TransferHandler struct {
	Transfers *services.TransferService
	WS        *WSHandler
}

func NewTransferHandler(s store.Store, ws *WSHandler) *TransferHandler {
	return &TransferHandler{
		Transfers: services.NewTransferService(s),
		WS:        ws,
	}
}

// CreateTransfer validates and executes a transfer between two bank
// links, then notifies both parties' websocket channels.
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transfer, err := h.Transfers.Transfer(c.Request.Context(), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	utils.LogTransfer(transfer.ID, transfer.SenderBankID, transfer.ReceiverBankID, transfer.Amount.String())
	if h.WS != nil {
		h.WS.BroadcastTransfer(transfer)
	}

	c.JSON(http.StatusCreated, transfer)
}

// GetTransfersByBank lists the transfers a bank link participated in,
// newest first.
func (h *TransferHandler) GetTransfersByBank(c *gin.Context) {
	transfers, err := h.Transfers.ListByBank(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if transfers == nil {
		transfers = []models.Transfer{}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(transfers),
		"transfers": transfers,
	})
}
