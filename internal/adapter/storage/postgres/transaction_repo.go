package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. The transactions
// table is append-only; there are no update or delete operations.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction. A violation
// of the unique index on idempotency_key is returned as
// apperror.ErrDuplicateIdempotencyKey so the engine can recover by
// re-reading the existing entry.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, amount, balance_after, type,
		reference, related_wallet_id, idempotency_key, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Amount, t.BalanceAfter, t.Type,
		t.Reference, t.RelatedWalletID, t.IdempotencyKey, t.Description, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrDuplicateIdempotencyKey()
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByIdempotencyKey fetches the ledger entry carrying the given key.
// Returns nil, nil when no entry holds the key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT id, wallet_id, amount, balance_after, type,
		reference, related_wallet_id, idempotency_key, description, created_at
		FROM transactions WHERE idempotency_key = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, key))
}

// ListByWallet fetches a wallet's most recent entries, newest first.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `SELECT id, wallet_id, amount, balance_after, type,
		reference, related_wallet_id, idempotency_key, description, created_at
		FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.WalletID, &t.Amount, &t.BalanceAfter, &t.Type,
			&t.Reference, &t.RelatedWalletID, &t.IdempotencyKey, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		entries = append(entries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return entries, nil
}

// scanTransaction scans a single row into a Transaction. Returns nil, nil
// when the row does not exist.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.WalletID, &t.Amount, &t.BalanceAfter, &t.Type,
		&t.Reference, &t.RelatedWalletID, &t.IdempotencyKey, &t.Description, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
