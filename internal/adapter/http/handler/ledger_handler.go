package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles balance-mutating endpoints. Ownership of the named
// wallet is checked here so the ledger engine itself receives only plain,
// pre-authorized commands.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
	walletSvc ports.WalletService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService, walletSvc ports.WalletService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, walletSvc: walletSvc}
}

// Fund handles POST /api/v1/wallets/:id/fund.
func (h *LedgerHandler) Fund(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	walletID, err := walletIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.walletSvc.VerifyOwnership(c.Request.Context(), walletID, userID); err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.ledgerSvc.Fund(c.Request.Context(), ports.FundRequest{
		WalletID:       walletID,
		Amount:         decimal.NewFromFloat(req.Amount).Round(2),
		IdempotencyKey: req.IdempotencyKey,
		Description:    req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

// Withdraw handles POST /api/v1/wallets/:id/withdraw.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	walletID, err := walletIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.walletSvc.VerifyOwnership(c.Request.Context(), walletID, userID); err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		WalletID:       walletID,
		Amount:         decimal.NewFromFloat(req.Amount).Round(2),
		IdempotencyKey: req.IdempotencyKey,
		Description:    req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

// Transfer handles POST /api/v1/wallets/transfer. The caller must own the
// sending wallet; the receiving wallet may belong to anyone.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	fromID, err := uuid.Parse(req.FromWalletID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid from_wallet_id"))
		return
	}
	toID, err := uuid.Parse(req.ToWalletID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid to_wallet_id"))
		return
	}

	if err := h.walletSvc.VerifyOwnership(c.Request.Context(), fromID, userID); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		FromWalletID:   fromID,
		ToWalletID:     toID,
		Amount:         decimal.NewFromFloat(req.Amount).Round(2),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransferResponse(result))
}
