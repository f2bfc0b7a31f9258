package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of balance movement recorded by an entry.
type TransactionType string

const (
	TransactionTypeFund        TransactionType = "FUND"
	TransactionTypeWithdraw    TransactionType = "WITHDRAW"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
)

// Transaction is an immutable, append-only ledger entry posted against one
// wallet. Amount is signed: positive credits the wallet, negative debits it.
// BalanceAfter is a point-in-time snapshot taken when the entry was applied
// and is never recomputed.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	WalletID        uuid.UUID       `json:"wallet_id"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Type            TransactionType `json:"type"`
	Reference       string          `json:"reference"`
	RelatedWalletID *uuid.UUID      `json:"related_wallet_id,omitempty"`
	IdempotencyKey  *string         `json:"idempotency_key,omitempty"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// IsCredit reports whether the entry increases the wallet balance.
func (t *Transaction) IsCredit() bool {
	return t.Amount.GreaterThan(decimal.Zero)
}

// IsTransfer reports whether the entry is one leg of a two-wallet transfer.
func (t *Transaction) IsTransfer() bool {
	return t.Type == TransactionTypeTransferOut || t.Type == TransactionTypeTransferIn
}
