package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	walletRepo *mocks.MockWalletRepository
	txRepo     *mocks.MockTransactionRepository
	idempCache *mocks.MockIdempotencyCache
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	ctrl := gomock.NewController(t)
	d := &ledgerTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		idempCache: mocks.NewMockIdempotencyCache(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewLedgerService(d.walletRepo, d.txRepo, d.idempCache, d.transactor, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct {
	pgx.Tx
	commitErr error
}

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return m.commitErr }

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

// decimalEq matches decimal.Decimal arguments by numeric value.
type decimalMatcher struct{ want decimal.Decimal }

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "decimal equal to " + m.want.String()
}

func decimalEq(s string) gomock.Matcher {
	return decimalMatcher{want: decimal.RequireFromString(s)}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func usdWallet(balance string) *domain.Wallet {
	w := domain.NewWallet(uuid.New(), "USD")
	w.Balance = dec(balance)
	return w
}

// ==================== Fund ====================

func TestLedgerService_Fund_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("0")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, wallet.ID, decimalEq("100.50")).Return(nil)

	var created *domain.Transaction
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, e *domain.Transaction) error {
			created = e
			return nil
		})

	result, err := d.svc.Fund(ctx, ports.FundRequest{
		WalletID: wallet.ID,
		Amount:   dec("100.50"),
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Balance.Equal(dec("100.50")))

	require.NotNil(t, created)
	assert.Equal(t, domain.TransactionTypeFund, created.Type)
	assert.True(t, created.Amount.Equal(dec("100.50")))
	assert.True(t, created.BalanceAfter.Equal(dec("100.50")))
	assert.Contains(t, created.Reference, "FUND_")
	assert.Equal(t, "Funded wallet with 100.50 USD", created.Description)
	assert.Nil(t, created.IdempotencyKey)
}

func TestLedgerService_Fund_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	for _, amount := range []string{"0", "-5.00"} {
		result, err := d.svc.Fund(context.Background(), ports.FundRequest{
			WalletID: uuid.New(),
			Amount:   dec(amount),
		})
		assert.Nil(t, result)
		assertAppError(t, err, apperror.CodeInvalidAmount)
	}
}

func TestLedgerService_Fund_WalletNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).Return(nil, nil)

	result, err := d.svc.Fund(ctx, ports.FundRequest{WalletID: walletID, Amount: dec("10.00")})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeNotFound)
}

func TestLedgerService_Fund_ReplayFromCache(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("250.00")
	key := "fund-key-1"

	entry := &domain.Transaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		Amount:         dec("100.50"),
		Type:           domain.TransactionTypeFund,
		IdempotencyKey: &key,
	}
	cached, err := json.Marshal(entry)
	require.NoError(t, err)

	d.idempCache.EXPECT().Get(ctx, key).Return(cached, nil)
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	result, err := d.svc.Fund(ctx, ports.FundRequest{
		WalletID:       wallet.ID,
		Amount:         dec("100.50"),
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	// Replay returns current state, without applying the amount again.
	assert.True(t, result.Balance.Equal(dec("250.00")))
}

func TestLedgerService_Fund_ReplayFromDB(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("300.00")
	key := "fund-key-2"

	d.idempCache.EXPECT().Get(ctx, key).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, key).Return(&domain.Transaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		Type:           domain.TransactionTypeFund,
		IdempotencyKey: &key,
	}, nil)
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	result, err := d.svc.Fund(ctx, ports.FundRequest{
		WalletID:       wallet.ID,
		Amount:         dec("50.00"),
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(dec("300.00")))
}

func TestLedgerService_Fund_CachesEntryWithKey(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("0")
	key := "fund-key-3"
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, key).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, key).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, wallet.ID, decimalEq("25.00")).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.idempCache.EXPECT().Set(ctx, key, gomock.Any(), idempotencyTTL).Return(nil)

	result, err := d.svc.Fund(ctx, ports.FundRequest{
		WalletID:       wallet.ID,
		Amount:         dec("25.00"),
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(dec("25.00")))
}

func TestLedgerService_Fund_DuplicateKeyRace(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("100.50")
	key := "fund-key-4"
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, key).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, key).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(usdWallet("0"), nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, gomock.Any(), gomock.Any()).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(apperror.ErrDuplicateIdempotencyKey())

	// Recovery path: read the entry committed by the concurrent retry.
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, key).Return(&domain.Transaction{
		ID:             uuid.New(),
		WalletID:       wallet.ID,
		IdempotencyKey: &key,
	}, nil)
	d.walletRepo.EXPECT().GetByID(ctx, wallet.ID).Return(wallet, nil)

	result, err := d.svc.Fund(ctx, ports.FundRequest{
		WalletID:       wallet.ID,
		Amount:         dec("100.50"),
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(dec("100.50")))
}

func TestLedgerService_Fund_LockTimeout(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, walletID).
		Return(nil, apperror.ErrLockTimeout(errors.New("lock not available")))

	result, err := d.svc.Fund(ctx, ports.FundRequest{WalletID: walletID, Amount: dec("10.00")})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeLockTimeout)
}

func TestLedgerService_Fund_CommitFailure(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("0")
	tx := &mockTx{commitErr: errors.New("connection lost")}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, gomock.Any(), gomock.Any()).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Fund(ctx, ports.FundRequest{WalletID: wallet.ID, Amount: dec("10.00")})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeStoreUnavailable)
}

// ==================== Withdraw ====================

func TestLedgerService_Withdraw_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("100.00")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, wallet.ID, decimalEq("59.25")).Return(nil)

	var created *domain.Transaction
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, e *domain.Transaction) error {
			created = e
			return nil
		})

	result, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		WalletID: wallet.ID,
		Amount:   dec("40.75"),
	})
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(dec("59.25")))

	require.NotNil(t, created)
	assert.Equal(t, domain.TransactionTypeWithdraw, created.Type)
	assert.True(t, created.Amount.Equal(dec("-40.75")), "debit entries carry a negative amount")
	assert.True(t, created.BalanceAfter.Equal(dec("59.25")))
	assert.Contains(t, created.Reference, "WTH_")
}

func TestLedgerService_Withdraw_InsufficientBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("10.00")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)

	result, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		WalletID: wallet.ID,
		Amount:   dec("10.01"),
	})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeInsufficientBalance)
}

func TestLedgerService_Withdraw_ExactBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	wallet := usdWallet("10.00")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, wallet.ID).Return(wallet, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, wallet.ID, decimalEq("0")).Return(nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)

	result, err := d.svc.Withdraw(ctx, ports.WithdrawRequest{
		WalletID: wallet.ID,
		Amount:   dec("10.00"),
	})
	require.NoError(t, err)
	assert.True(t, result.Balance.IsZero())
}

func TestLedgerService_Withdraw_InvalidAmount(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	result, err := d.svc.Withdraw(context.Background(), ports.WithdrawRequest{
		WalletID: uuid.New(),
		Amount:   dec("-1.00"),
	})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeInvalidAmount)
}

// ==================== Transfer ====================

func TestLedgerService_Transfer_Success(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := usdWallet("100.50")
	receiver := usdWallet("0")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, sender.ID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, receiver.ID).Return(receiver, nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, sender.ID, decimalEq("49.75")).Return(nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, receiver.ID, decimalEq("50.75")).Return(nil)

	var entries []*domain.Transaction
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, e *domain.Transaction) error {
			entries = append(entries, e)
			return nil
		}).Times(2)

	result, err := d.svc.Transfer(ctx, ports.TransferRequest{
		FromWalletID: sender.ID,
		ToWalletID:   receiver.ID,
		Amount:       dec("50.75"),
	})
	require.NoError(t, err)
	assert.True(t, result.SenderWallet.Balance.Equal(dec("49.75")))
	assert.True(t, result.ReceiverWallet.Balance.Equal(dec("50.75")))

	require.Len(t, entries, 2)
	out, in := entries[0], entries[1]
	assert.Equal(t, domain.TransactionTypeTransferOut, out.Type)
	assert.Equal(t, domain.TransactionTypeTransferIn, in.Type)
	assert.Equal(t, out.Reference, in.Reference, "both legs share one reference")
	assert.Equal(t, sender.ID, out.WalletID)
	assert.Equal(t, receiver.ID, in.WalletID)
	require.NotNil(t, out.RelatedWalletID)
	require.NotNil(t, in.RelatedWalletID)
	assert.Equal(t, receiver.ID, *out.RelatedWalletID)
	assert.Equal(t, sender.ID, *in.RelatedWalletID)
	assert.True(t, out.Amount.Equal(dec("-50.75")))
	assert.True(t, in.Amount.Equal(dec("50.75")))
	assert.True(t, out.Amount.Add(in.Amount).IsZero(), "the two legs net to zero")
	assert.True(t, out.BalanceAfter.Equal(dec("49.75")))
	assert.True(t, in.BalanceAfter.Equal(dec("50.75")))
}

func TestLedgerService_Transfer_CanonicalLockOrder(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := usdWallet("100.00")
	receiver := usdWallet("0")
	tx := &mockTx{}

	// Work out which wallet sorts first by raw UUID bytes.
	low, high := sender, receiver
	if string(high.ID[:]) < string(low.ID[:]) {
		low, high = high, low
	}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	gomock.InOrder(
		d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, low.ID).Return(low, nil),
		d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, high.ID).Return(high, nil),
	)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil).Times(2)

	_, err := d.svc.Transfer(ctx, ports.TransferRequest{
		FromWalletID: sender.ID,
		ToWalletID:   receiver.ID,
		Amount:       dec("10.00"),
	})
	require.NoError(t, err)
}

func TestLedgerService_Transfer_SameWallet(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	id := uuid.New()
	result, err := d.svc.Transfer(context.Background(), ports.TransferRequest{
		FromWalletID: id,
		ToWalletID:   id,
		Amount:       dec("10.00"),
	})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeSameWallet)
}

func TestLedgerService_Transfer_CurrencyMismatch(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := usdWallet("100.00")
	receiver := domain.NewWallet(uuid.New(), "EUR")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, gomock.Any()).Return(sender, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, gomock.Any()).Return(receiver, nil)

	result, err := d.svc.Transfer(ctx, ports.TransferRequest{
		FromWalletID: sender.ID,
		ToWalletID:   receiver.ID,
		Amount:       dec("10.00"),
	})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeCurrencyMismatch)
}

func TestLedgerService_Transfer_InsufficientBalance(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := usdWallet("5.00")
	receiver := usdWallet("0")
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, gomock.Any()).Return(sender, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, gomock.Any()).Return(receiver, nil)

	result, err := d.svc.Transfer(ctx, ports.TransferRequest{
		FromWalletID: sender.ID,
		ToWalletID:   receiver.ID,
		Amount:       dec("10.00"),
	})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeInsufficientBalance)
}

func TestLedgerService_Transfer_ReceiverNotFound(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := usdWallet("100.00")
	missingID := uuid.New()
	tx := &mockTx{}

	// Depending on byte order either lock can be attempted first; the
	// missing wallet fails the operation either way.
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, sender.ID).Return(sender, nil).MaxTimes(1)
	d.walletRepo.EXPECT().GetByIDForUpdate(ctx, tx, missingID).Return(nil, nil)

	result, err := d.svc.Transfer(ctx, ports.TransferRequest{
		FromWalletID: sender.ID,
		ToWalletID:   missingID,
		Amount:       dec("10.00"),
	})
	assert.Nil(t, result)
	assertAppError(t, err, apperror.CodeNotFound)
}

func TestLedgerService_Transfer_ReplayFromCache(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := usdWallet("49.75")
	receiver := usdWallet("50.75")
	key := "transfer-key-1"

	outEntry := &domain.Transaction{
		ID:              uuid.New(),
		WalletID:        sender.ID,
		RelatedWalletID: &receiver.ID,
		Amount:          dec("50.75"),
		Type:            domain.TransactionTypeTransferOut,
		IdempotencyKey:  &key,
	}
	cached, err := json.Marshal(outEntry)
	require.NoError(t, err)

	d.idempCache.EXPECT().Get(ctx, key).Return(cached, nil)
	d.walletRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByID(ctx, receiver.ID).Return(receiver, nil)

	result, err := d.svc.Transfer(ctx, ports.TransferRequest{
		FromWalletID:   sender.ID,
		ToWalletID:     receiver.ID,
		Amount:         dec("50.75"),
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.True(t, result.SenderWallet.Balance.Equal(dec("49.75")))
	assert.True(t, result.ReceiverWallet.Balance.Equal(dec("50.75")))
}

func TestLedgerService_Transfer_ReplayForwardsFallThrough(t *testing.T) {
	d := setupLedgerService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	sender := usdWallet("0")
	receiver := usdWallet("75.00")
	key := "transfer-key-2"

	// Cache errors are tolerated; the transaction log is authoritative.
	d.idempCache.EXPECT().Get(ctx, key).Return(nil, errors.New("redis down"))
	d.txRepo.EXPECT().GetByIdempotencyKey(ctx, key).Return(&domain.Transaction{
		ID:              uuid.New(),
		WalletID:        sender.ID,
		RelatedWalletID: &receiver.ID,
		Type:            domain.TransactionTypeTransferOut,
		IdempotencyKey:  &key,
	}, nil)
	d.walletRepo.EXPECT().GetByID(ctx, sender.ID).Return(sender, nil)
	d.walletRepo.EXPECT().GetByID(ctx, receiver.ID).Return(receiver, nil)

	result, err := d.svc.Transfer(ctx, ports.TransferRequest{
		FromWalletID:   sender.ID,
		ToWalletID:     receiver.ID,
		Amount:         dec("75.00"),
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.True(t, result.ReceiverWallet.Balance.Equal(dec("75.00")))
}
