package service

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo   ports.WalletRepository
	txRepo       ports.TransactionRepository
	userRepo     ports.UserRepository
	historyLimit int
	log          zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl. historyLimit bounds how
// many ledger entries GetWallet and GetWalletTransactions return.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	userRepo ports.UserRepository,
	historyLimit int,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:   walletRepo,
		txRepo:       txRepo,
		userRepo:     userRepo,
		historyLimit: historyLimit,
		log:          log,
	}
}

// CreateWallet opens a zero-balance wallet for the user in the given
// currency. One wallet per (user, currency) pair.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	if !domain.IsSupportedCurrency(currency) {
		return nil, apperror.Validation(fmt.Sprintf("unsupported currency: %s", currency))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}

	existing, err := s.walletRepo.GetByOwnerAndCurrency(ctx, userID, currency)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check existing wallet: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrWalletExists(currency)
	}

	wallet := domain.NewWallet(userID, currency)

	// The (user_id, currency) unique index still backstops concurrent
	// creations.
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		if apperror.IsCode(err, apperror.CodeWalletExists) {
			return nil, err
		}
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("user_id", userID.String()).
		Str("currency", currency).
		Msg("wallet created")

	return wallet, nil
}

// GetWallet returns a wallet with its most recent ledger entries.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, walletID uuid.UUID) (*ports.WalletDetail, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	entries, err := s.txRepo.ListByWallet(ctx, walletID, s.historyLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list entries: %w", err))
	}

	return &ports.WalletDetail{
		Wallet:       wallet,
		Transactions: entries,
	}, nil
}

// GetUserWallets returns all wallets owned by the user.
func (s *WalletServiceImpl) GetUserWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}

	wallets, err := s.walletRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}
	return wallets, nil
}

// GetWalletBalance returns the current balance and currency of a wallet.
func (s *WalletServiceImpl) GetWalletBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, string, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return decimal.Zero, "", apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, "", apperror.ErrNotFound("wallet")
	}
	return wallet.Balance, wallet.Currency, nil
}

// GetWalletTransactions returns the wallet's most recent ledger entries,
// newest first.
func (s *WalletServiceImpl) GetWalletTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	entries, err := s.txRepo.ListByWallet(ctx, walletID, s.historyLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list entries: %w", err))
	}
	return entries, nil
}

// VerifyOwnership confirms the wallet belongs to the given user. A wallet
// owned by someone else is reported as NotFound, same as a missing one.
func (s *WalletServiceImpl) VerifyOwnership(ctx context.Context, walletID, userID uuid.UUID) error {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find wallet: %w", err))
	}
	if wallet == nil || wallet.UserID != userID {
		return apperror.ErrNotFound("wallet")
	}
	return nil
}
