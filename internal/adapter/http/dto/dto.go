package dto

import (
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateWalletRequest is the request body for opening a wallet.
type CreateWalletRequest struct {
	Currency string `json:"currency" binding:"required,currency"`
}

// FundRequest is the request body for crediting a wallet.
type FundRequest struct {
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	IdempotencyKey *string `json:"idempotency_key,omitempty" binding:"omitempty,min=1,max=100"`
	Description    string  `json:"description,omitempty" binding:"max=255"`
}

// WithdrawRequest is the request body for debiting a wallet.
type WithdrawRequest struct {
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	IdempotencyKey *string `json:"idempotency_key,omitempty" binding:"omitempty,min=1,max=100"`
	Description    string  `json:"description,omitempty" binding:"max=255"`
}

// TransferRequest is the request body for a wallet-to-wallet transfer.
type TransferRequest struct {
	FromWalletID   string  `json:"from_wallet_id" binding:"required,uuid"`
	ToWalletID     string  `json:"to_wallet_id" binding:"required,uuid"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	IdempotencyKey *string `json:"idempotency_key,omitempty" binding:"omitempty,min=1,max=100"`
}

// WalletResponse is the wire shape of a wallet.
type WalletResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TransactionResponse is the wire shape of a ledger entry.
type TransactionResponse struct {
	ID              string  `json:"id"`
	WalletID        string  `json:"wallet_id"`
	Amount          string  `json:"amount"`
	BalanceAfter    string  `json:"balance_after"`
	Type            string  `json:"type"`
	Reference       string  `json:"reference"`
	RelatedWalletID *string `json:"related_wallet_id,omitempty"`
	Description     string  `json:"description,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// WalletDetailResponse is a wallet with its recent ledger entries.
type WalletDetailResponse struct {
	Wallet       WalletResponse        `json:"wallet"`
	Transactions []TransactionResponse `json:"transactions"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	WalletID string `json:"wallet_id"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// TransferResponse carries both post-transfer wallet states.
type TransferResponse struct {
	SenderWallet   WalletResponse `json:"sender_wallet"`
	ReceiverWallet WalletResponse `json:"receiver_wallet"`
}

// NewWalletResponse maps a domain wallet to its wire shape. Balances are
// fixed to two decimal places.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Currency:  w.Currency,
		Balance:   w.Balance.StringFixed(2),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
		UpdatedAt: w.UpdatedAt.Format(time.RFC3339),
	}
}

// NewTransactionResponse maps a ledger entry to its wire shape.
func NewTransactionResponse(e *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           e.ID.String(),
		WalletID:     e.WalletID.String(),
		Amount:       e.Amount.StringFixed(2),
		BalanceAfter: e.BalanceAfter.StringFixed(2),
		Type:         string(e.Type),
		Reference:    e.Reference,
		Description:  e.Description,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
	if e.RelatedWalletID != nil {
		related := e.RelatedWalletID.String()
		resp.RelatedWalletID = &related
	}
	return resp
}

// NewTransactionListResponse maps a slice of ledger entries.
func NewTransactionListResponse(entries []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(entries))
	for i := range entries {
		out = append(out, NewTransactionResponse(&entries[i]))
	}
	return out
}

// NewWalletDetailResponse maps a wallet detail aggregate.
func NewWalletDetailResponse(d *ports.WalletDetail) WalletDetailResponse {
	return WalletDetailResponse{
		Wallet:       NewWalletResponse(d.Wallet),
		Transactions: NewTransactionListResponse(d.Transactions),
	}
}

// NewTransferResponse maps a transfer result.
func NewTransferResponse(r *ports.TransferResult) TransferResponse {
	return TransferResponse{
		SenderWallet:   NewWalletResponse(r.SenderWallet),
		ReceiverWallet: NewWalletResponse(r.ReceiverWallet),
	}
}
