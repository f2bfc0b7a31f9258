package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyCache is the Redis-layer idempotency fast path. It only
// short-circuits lookups; the unique index on the transaction log is the
// actual correctness guarantee.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached entry JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (uuid.UUID, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService applies balance-mutating operations to wallets and derives
// the append-only transaction log.
type LedgerService interface {
	Fund(ctx context.Context, req FundRequest) (*domain.Wallet, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Wallet, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

// FundRequest holds validated input for crediting a wallet from an external
// source.
type FundRequest struct {
	WalletID       uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey *string
	Reference      string // optional; generated when empty
	Description    string // optional
}

// WithdrawRequest holds validated input for debiting a wallet to an external
// destination.
type WithdrawRequest struct {
	WalletID       uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey *string
	Description    string // optional
}

// TransferRequest holds validated input for moving value between two wallets
// of the same currency.
type TransferRequest struct {
	FromWalletID   uuid.UUID
	ToWalletID     uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey *string
}

// TransferResult carries the post-transfer state of both wallets.
type TransferResult struct {
	SenderWallet   *domain.Wallet
	ReceiverWallet *domain.Wallet
}

// WalletService covers wallet lifecycle and read-side queries.
type WalletService interface {
	CreateWallet(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error)
	GetWallet(ctx context.Context, walletID uuid.UUID) (*WalletDetail, error)
	GetUserWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error)
	GetWalletBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, string, error)
	GetWalletTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
	// VerifyOwnership confirms the wallet belongs to the given user. Returns
	// NotFound both for missing wallets and wallets owned by someone else so
	// callers cannot probe for foreign wallet ids.
	VerifyOwnership(ctx context.Context, walletID, userID uuid.UUID) error
}

// WalletDetail is a wallet with its most recent ledger entries, newest first.
type WalletDetail struct {
	Wallet       *domain.Wallet
	Transactions []domain.Transaction
}

// AuthService defines authentication business logic for wallet owners.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}
