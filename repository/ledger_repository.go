package repository

import (
	"context"
	"sync"

	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/storage"
)

// ILedgerRepository is the transactional boundary for ledger mutations.
// Update is the only way any caller changes balances or transactions, so
// coupled writes (balance delta + log append) either land together or not
// at all.
type ILedgerRepository interface {
	Update(ctx context.Context, ownerID string, fn func(*model.Ledger) error) error
	View(ctx context.Context, ownerID string, fn func(*model.Ledger) error) error
}

// LedgerRepository serializes access per owner. The store contract is
// get-whole/put-whole, so holding the owner's lock across load-mutate-save
// makes the whole mutation one critical section: a failed mutation function
// means the blob is never written, and a reader can never observe a ledger
// with only half of a transfer applied.
type LedgerRepository struct {
	store storage.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLedgerRepository(store storage.Store) *LedgerRepository {
	return &LedgerRepository{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *LedgerRepository) ownerLock(ownerID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[ownerID] = lock
	}
	return lock
}

// Update loads the owner's ledger, applies fn, and saves the result only
// when fn returns nil. Any error from fn aborts without writing.
func (r *LedgerRepository) Update(ctx context.Context, ownerID string, fn func(*model.Ledger) error) error {
	lock := r.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := r.store.Load(ctx, ownerID)
	if err != nil {
		logger.Log.WithField("owner_id", ownerID).WithError(err).Error("Failed to load ledger for update")
		return err
	}

	if err := fn(ledger); err != nil {
		return err
	}

	if err := r.store.Save(ctx, ownerID, ledger); err != nil {
		logger.Log.WithField("owner_id", ownerID).WithError(err).Error("Failed to save updated ledger")
		return err
	}
	return nil
}

// View runs fn against the owner's ledger without writing anything back.
// fn must not retain or mutate the ledger it is handed.
func (r *LedgerRepository) View(ctx context.Context, ownerID string, fn func(*model.Ledger) error) error {
	lock := r.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := r.store.Load(ctx, ownerID)
	if err != nil {
		logger.Log.WithField("owner_id", ownerID).WithError(err).Error("Failed to load ledger for view")
		return err
	}
	return fn(ledger)
}
