package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// LedgerServiceImpl implements ports.LedgerService with pessimistic row
// locking. All balance mutations and their ledger entries commit in one
// database transaction.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	idempCache ports.IdempotencyCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		idempCache: idempCache,
		transactor: transactor,
		log:        log,
	}
}

// Fund credits a wallet from an external source.
func (s *LedgerServiceImpl) Fund(ctx context.Context, req ports.FundRequest) (*domain.Wallet, error) {
	if req.IdempotencyKey != nil {
		entry, err := s.lookupEntry(ctx, *req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return s.currentWallet(ctx, entry.WalletID)
		}
	}

	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.lockWallet(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, err
	}

	newBalance := wallet.Balance.Add(req.Amount)

	reference := req.Reference
	if reference == "" {
		reference = GenerateReference(refPrefixFund)
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Funded wallet with %s %s", req.Amount.StringFixed(2), wallet.Currency)
	}

	entry := &domain.Transaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		Amount:         req.Amount,
		BalanceAfter:   newBalance,
		Type:           domain.TransactionTypeFund,
		Reference:      reference,
		IdempotencyKey: req.IdempotencyKey,
		Description:    description,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
		// Lost the unique-index race to a concurrent retry carrying the
		// same key. The committed entry is the authoritative outcome.
		if apperror.IsCode(err, apperror.CodeDuplicateIdempotency) && req.IdempotencyKey != nil {
			dbTx.Rollback(ctx) //nolint:errcheck
			return s.replaySingle(ctx, *req.IdempotencyKey)
		}
		return nil, apperror.InternalError(fmt.Errorf("create entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheEntry(ctx, entry)

	s.log.Info().
		Str("entry_id", entry.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Str("amount", req.Amount.StringFixed(2)).
		Str("reference", reference).
		Msg("wallet funded")

	wallet.Balance = newBalance
	return wallet, nil
}

// Withdraw debits a wallet to an external destination.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.Wallet, error) {
	if req.IdempotencyKey != nil {
		entry, err := s.lookupEntry(ctx, *req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return s.currentWallet(ctx, entry.WalletID)
		}
	}

	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.lockWallet(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, err
	}

	if !wallet.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	newBalance := wallet.Balance.Sub(req.Amount)

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Withdrew %s %s from wallet", req.Amount.StringFixed(2), wallet.Currency)
	}

	entry := &domain.Transaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		Amount:         req.Amount.Neg(),
		BalanceAfter:   newBalance,
		Type:           domain.TransactionTypeWithdraw,
		Reference:      GenerateReference(refPrefixWithdraw),
		IdempotencyKey: req.IdempotencyKey,
		Description:    description,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
		if apperror.IsCode(err, apperror.CodeDuplicateIdempotency) && req.IdempotencyKey != nil {
			dbTx.Rollback(ctx) //nolint:errcheck
			return s.replaySingle(ctx, *req.IdempotencyKey)
		}
		return nil, apperror.InternalError(fmt.Errorf("create entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheEntry(ctx, entry)

	s.log.Info().
		Str("entry_id", entry.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("wallet withdrawal processed")

	wallet.Balance = newBalance
	return wallet, nil
}

// Transfer atomically moves value between two wallets of the same currency.
// Two ledger entries are written, one per wallet, sharing a reference.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	if req.IdempotencyKey != nil {
		entry, err := s.lookupEntry(ctx, *req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return s.replayTransferEntry(ctx, entry)
		}
	}

	if req.FromWalletID == req.ToWalletID {
		return nil, apperror.ErrSameWallet()
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, storeError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both rows in a canonical order so two opposite-direction
	// transfers can never hold one lock each and wait on the other.
	first, second := req.FromWalletID, req.ToWalletID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	lockedFirst, err := s.lockWallet(ctx, dbTx, first)
	if err != nil {
		return nil, err
	}
	lockedSecond, err := s.lockWallet(ctx, dbTx, second)
	if err != nil {
		return nil, err
	}

	sender, receiver := lockedFirst, lockedSecond
	if sender.ID != req.FromWalletID {
		sender, receiver = lockedSecond, lockedFirst
	}

	if sender.Currency != receiver.Currency {
		return nil, apperror.ErrCurrencyMismatch(sender.Currency, receiver.Currency)
	}
	if !sender.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	senderBalance := sender.Balance.Sub(req.Amount)
	receiverBalance := receiver.Balance.Add(req.Amount)

	now := time.Now().UTC()
	reference := GenerateReference(refPrefixTransfer)

	// The idempotency key rides on the debit leg only; the unique index
	// permits a single row per key.
	outEntry := &domain.Transaction{
		ID:              uuid.New(),
		WalletID:        sender.ID,
		Amount:          req.Amount.Neg(),
		BalanceAfter:    senderBalance,
		Type:            domain.TransactionTypeTransferOut,
		Reference:       reference,
		RelatedWalletID: &receiver.ID,
		IdempotencyKey:  req.IdempotencyKey,
		Description:     fmt.Sprintf("Transferred %s %s to wallet %s", req.Amount.StringFixed(2), sender.Currency, receiver.ID),
		CreatedAt:       now,
	}
	inEntry := &domain.Transaction{
		ID:              uuid.New(),
		WalletID:        receiver.ID,
		Amount:          req.Amount,
		BalanceAfter:    receiverBalance,
		Type:            domain.TransactionTypeTransferIn,
		Reference:       reference,
		RelatedWalletID: &sender.ID,
		Description:     fmt.Sprintf("Received %s %s from wallet %s", req.Amount.StringFixed(2), sender.Currency, sender.ID),
		CreatedAt:       now,
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, sender.ID, senderBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update sender balance: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, receiver.ID, receiverBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update receiver balance: %w", err))
	}

	if err := s.txRepo.Create(ctx, dbTx, outEntry); err != nil {
		if apperror.IsCode(err, apperror.CodeDuplicateIdempotency) && req.IdempotencyKey != nil {
			dbTx.Rollback(ctx) //nolint:errcheck
			return s.replayTransfer(ctx, *req.IdempotencyKey)
		}
		return nil, apperror.InternalError(fmt.Errorf("create debit entry: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, inEntry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create credit entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStoreUnavailable(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheEntry(ctx, outEntry)

	s.log.Info().
		Str("reference", reference).
		Str("from_wallet", sender.ID.String()).
		Str("to_wallet", receiver.ID.String()).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("transfer processed")

	sender.Balance = senderBalance
	receiver.Balance = receiverBalance
	return &ports.TransferResult{
		SenderWallet:   sender,
		ReceiverWallet: receiver,
	}, nil
}

// lockWallet takes a pessimistic lock on the wallet row for the duration of
// the transaction.
func (s *LedgerServiceImpl) lockWallet(ctx context.Context, dbTx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}

// lookupEntry checks the cache first, then the transaction log, for an entry
// already recorded under the idempotency key. Returns nil, nil if the key is
// unused.
func (s *LedgerServiceImpl) lookupEntry(ctx context.Context, key string) (*domain.Transaction, error) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		entry := &domain.Transaction{}
		if err := json.Unmarshal(cached, entry); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("unmarshal cached entry: %w", err))
		}
		return entry, nil
	}

	entry, err := s.txRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	return entry, nil
}

// replaySingle resolves a duplicate-key race on fund or withdraw by reading
// back the committed entry and returning the wallet's current state.
func (s *LedgerServiceImpl) replaySingle(ctx context.Context, key string) (*domain.Wallet, error) {
	entry, err := s.txRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reread entry: %w", err))
	}
	if entry == nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency key %q conflicted but no entry found", key))
	}
	return s.currentWallet(ctx, entry.WalletID)
}

// replayTransfer resolves a duplicate-key race on transfer the same way.
func (s *LedgerServiceImpl) replayTransfer(ctx context.Context, key string) (*ports.TransferResult, error) {
	entry, err := s.txRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reread entry: %w", err))
	}
	if entry == nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency key %q conflicted but no entry found", key))
	}
	return s.replayTransferEntry(ctx, entry)
}

// replayTransferEntry reconstructs a transfer result from its recorded debit
// leg, returning both wallets at their current state.
func (s *LedgerServiceImpl) replayTransferEntry(ctx context.Context, entry *domain.Transaction) (*ports.TransferResult, error) {
	if entry.RelatedWalletID == nil {
		return nil, apperror.InternalError(fmt.Errorf("entry %s is not a transfer leg", entry.ID))
	}

	senderID, receiverID := entry.WalletID, *entry.RelatedWalletID
	if entry.Type == domain.TransactionTypeTransferIn {
		senderID, receiverID = receiverID, senderID
	}

	sender, err := s.currentWallet(ctx, senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.currentWallet(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	return &ports.TransferResult{
		SenderWallet:   sender,
		ReceiverWallet: receiver,
	}, nil
}

// currentWallet fetches a wallet outside any transaction. Replays return
// present balances, not a snapshot from the original call.
func (s *LedgerServiceImpl) currentWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}

// cacheEntry stores the committed entry under its idempotency key,
// best-effort.
func (s *LedgerServiceImpl) cacheEntry(ctx context.Context, entry *domain.Transaction) {
	if entry.IdempotencyKey == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to marshal entry for idempotency cache")
		return
	}
	if err := s.idempCache.Set(ctx, *entry.IdempotencyKey, data, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", *entry.IdempotencyKey).Msg("failed to cache idempotency in redis")
	}
}

// storeError classifies transaction-begin failures as store unavailability
// unless already typed.
func storeError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrStoreUnavailable(err)
}
