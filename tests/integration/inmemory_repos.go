package integration

import (
	"context"
	"sort"
	"sync"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// memStore is the shared in-memory backing store. It mimics the PostgreSQL
// schema closely enough to exercise the ledger end-to-end: per-wallet row
// locks held until commit, buffered writes applied atomically, and the
// unique constraints the real schema enforces.
type memStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*domain.User
	wallets map[uuid.UUID]*domain.Wallet
	entries []*domain.Transaction

	lockMu   sync.Mutex
	rowLocks map[uuid.UUID]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*domain.User),
		wallets:  make(map[uuid.UUID]*domain.Wallet),
		rowLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *memStore) rowLock(id uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	return l
}

// memTx buffers writes until Commit, like a real database transaction.
// Wallet row locks acquired through GetByIDForUpdate are held until the
// transaction ends.
type memTx struct {
	noopTx
	store *memStore

	mu              sync.Mutex
	held            map[uuid.UUID]*sync.Mutex
	pendingBalances map[uuid.UUID]decimal.Decimal
	pendingEntries  []*domain.Transaction
	done            bool
}

func (t *memTx) lockWallet(id uuid.UUID) {
	t.mu.Lock()
	if _, ok := t.held[id]; ok {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	l := t.store.rowLock(id)
	l.Lock()

	t.mu.Lock()
	t.held[id] = l
	t.mu.Unlock()
}

func (t *memTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true

	t.store.mu.Lock()
	for id, balance := range t.pendingBalances {
		if w, ok := t.store.wallets[id]; ok {
			w.Balance = balance
		}
	}
	t.store.entries = append(t.store.entries, t.pendingEntries...)
	t.store.mu.Unlock()

	t.release()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func (t *memTx) release() {
	for _, l := range t.held {
		l.Unlock()
	}
	t.held = make(map[uuid.UUID]*sync.Mutex)
}

// --- Transactor ---

type memTransactor struct {
	store *memStore
}

func newMemTransactor(store *memStore) *memTransactor {
	return &memTransactor{store: store}
}

func (tr *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{
		store:           tr.store,
		held:            make(map[uuid.UUID]*sync.Mutex),
		pendingBalances: make(map[uuid.UUID]decimal.Decimal),
	}, nil
}

// --- User Repo ---

type memUserRepo struct {
	store *memStore
}

func newMemUserRepo(store *memStore) *memUserRepo {
	return &memUserRepo{store: store}
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Username == u.Username {
			return apperror.ErrUsernameExists()
		}
	}
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- Wallet Repo ---

type memWalletRepo struct {
	store *memStore
}

func newMemWalletRepo(store *memStore) *memWalletRepo {
	return &memWalletRepo{store: store}
}

func (r *memWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.wallets {
		if existing.UserID == w.UserID && existing.Currency == w.Currency {
			return apperror.ErrWalletExists(w.Currency)
		}
	}
	cp := *w
	r.store.wallets[w.ID] = &cp
	return nil
}

func (r *memWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) GetByOwnerAndCurrency(ctx context.Context, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, w := range r.store.wallets {
		if w.UserID == userID && w.Currency == currency {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memWalletRepo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.Wallet
	for _, w := range r.store.wallets {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetByIDForUpdate takes the wallet's row lock, held until tx commit or
// rollback, matching SELECT ... FOR UPDATE semantics.
func (r *memWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	mt := tx.(*memTx)

	r.store.mu.RLock()
	_, exists := r.store.wallets[id]
	r.store.mu.RUnlock()
	if !exists {
		return nil, nil
	}

	mt.lockWallet(id)
	return r.GetByID(ctx, id)
}

func (r *memWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	mt := tx.(*memTx)
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.pendingBalances[walletID] = balance
	return nil
}

// --- Transaction Repo ---

type memTransactionRepo struct {
	store *memStore
}

func newMemTransactionRepo(store *memStore) *memTransactionRepo {
	return &memTransactionRepo{store: store}
}

func (r *memTransactionRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.Transaction) error {
	mt := tx.(*memTx)

	if entry.IdempotencyKey != nil {
		r.store.mu.RLock()
		for _, e := range r.store.entries {
			if e.IdempotencyKey != nil && *e.IdempotencyKey == *entry.IdempotencyKey {
				r.store.mu.RUnlock()
				return apperror.ErrDuplicateIdempotencyKey()
			}
		}
		r.store.mu.RUnlock()
	}

	cp := *entry
	mt.mu.Lock()
	mt.pendingEntries = append(mt.pendingEntries, &cp)
	mt.mu.Unlock()
	return nil
}

func (r *memTransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, e := range r.store.entries {
		if e.IdempotencyKey != nil && *e.IdempotencyKey == key {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.Transaction
	for _, e := range r.store.entries {
		if e.WalletID == walletID {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// allEntries returns a snapshot of every committed ledger entry.
func (s *memStore) allEntries() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	return out
}

// walletBalance reads a committed balance directly from the store.
func (s *memStore) walletBalance(id uuid.UUID) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.wallets[id]; ok {
		return w.Balance
	}
	return decimal.Zero
}

// noopTx satisfies the parts of pgx.Tx the repos never touch in memory.
type noopTx struct{}

func (t noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (t noopTx) Commit(ctx context.Context) error          { return nil }
func (t noopTx) Rollback(ctx context.Context) error        { return nil }
func (t noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t noopTx) Conn() *pgx.Conn { return nil }
