package ledger

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// DefaultReorderPoint applies to items that carry no reorder point of their own.
const DefaultReorderPoint = 5

// Options configures a Store. A nil DefaultReorderPoint means
// DefaultReorderPoint; an explicit 0 disables the low-stock band for items
// without their own reorder point.
type Options struct {
	Clock               clock.Clock
	DefaultReorderPoint *int
}

// Store is the single owner of inventory, sales and withdrawals, plus the
// read-only investor and financial reference data. Every mutation takes the
// write lock for its whole duration; reads take the read lock and return copies.
type Store struct {
	mu    sync.RWMutex
	clock clock.Clock

	defaultReorderPoint int

	items     map[string]*models.InventoryItem
	itemOrder []string

	sales     []models.SaleRecord
	saleIndex map[string]int

	withdrawals     map[string]*models.WithdrawalRecord
	withdrawalOrder []string

	investors     map[string]models.Investor
	investorOrder []string
	financials    []models.FinancialRecord
}

// New returns an empty store.
func New(opts Options) *Store {
	reorder := DefaultReorderPoint
	if opts.DefaultReorderPoint != nil && *opts.DefaultReorderPoint >= 0 {
		reorder = *opts.DefaultReorderPoint
	}
	return &Store{
		clock:               clock.OrSystem(opts.Clock),
		defaultReorderPoint: reorder,
		items:               make(map[string]*models.InventoryItem),
		saleIndex:           make(map[string]int),
		withdrawals:         make(map[string]*models.WithdrawalRecord),
		investors:           make(map[string]models.Investor),
	}
}

// Clock exposes the store's time source so collaborators stamp records consistently.
func (s *Store) Clock() clock.Clock {
	return s.clock
}

// DefaultReorderPoint returns the fallback low-stock threshold.
func (s *Store) DefaultReorderPoint() int {
	return s.defaultReorderPoint
}

// WithTx runs fn while holding the write lock. fn sees and mutates the live
// collections through tx; nothing outside fn can observe intermediate state.
// fn is responsible for compensating its own partial work before returning an error.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	if fn == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction function required")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transaction aborted")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{s: s}
	defer tx.close()
	return fn(tx)
}

// View runs fn under the read lock against a consistent view.
func (s *Store) View(fn func(tx *ReadTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&ReadTx{s: s})
}

// Snapshot is a point-in-time copy of every collection.
type Snapshot struct {
	Inventory        []models.InventoryItem
	Sales            []models.SaleRecord
	Withdrawals      []models.WithdrawalRecord
	Investors        []models.Investor
	FinancialRecords []models.FinancialRecord
}

// Snapshot copies all collections under a single read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Inventory:        s.inventoryLocked(),
		Sales:            s.salesLocked(),
		Withdrawals:      s.withdrawalsLocked(),
		Investors:        s.investorsLocked(),
		FinancialRecords: s.financialsLocked(),
	}
}

// Inventory returns all items in insertion order.
func (s *Store) Inventory() []models.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventoryLocked()
}

// Item returns a copy of a single item.
func (s *Store) Item(id string) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemLocked(id)
}

// UpsertInventoryItem inserts or replaces an item by id. Status is re-derived.
func (s *Store) UpsertInventoryItem(item models.InventoryItem) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertItemLocked(item)
}

// RemoveInventoryItem hard-deletes an item. Existing sales keep their snapshots.
func (s *Store) RemoveInventoryItem(id string) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeItemLocked(id)
}

// Sales returns all sale records in commit order.
func (s *Store) Sales() []models.SaleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.salesLocked()
}

// Sale returns a copy of one sale record.
func (s *Store) Sale(id string) (*models.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saleLocked(id)
}

// AppendSaleRecord validates and appends a sale record.
func (s *Store) AppendSaleRecord(record models.SaleRecord) (*models.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendSaleLocked(record)
}

// UpdateSaleStatus moves a sale from pending to completed. The bool reports
// whether anything changed.
func (s *Store) UpdateSaleStatus(id string, status enums.SaleStatus) (*models.SaleRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateSaleStatusLocked(id, status)
}

// Withdrawals returns all withdrawal records in request order.
func (s *Store) Withdrawals() []models.WithdrawalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withdrawalsLocked()
}

// Withdrawal returns a copy of one withdrawal record.
func (s *Store) Withdrawal(id string) (*models.WithdrawalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withdrawalLocked(id)
}

// AppendWithdrawalRecord stores a new withdrawal record.
func (s *Store) AppendWithdrawalRecord(record models.WithdrawalRecord) (*models.WithdrawalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendWithdrawalLocked(record)
}

// UpdateWithdrawalRecord applies mutate to a copy of the record and persists it
// when only Status, ApprovalDate or CompletionDate changed and the status did
// not move backward.
func (s *Store) UpdateWithdrawalRecord(id string, mutate func(*models.WithdrawalRecord)) (*models.WithdrawalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateWithdrawalLocked(id, mutate)
}

// DeleteWithdrawalRecord removes a withdrawal that is still pending.
func (s *Store) DeleteWithdrawalRecord(id string) (*models.WithdrawalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteWithdrawalLocked(id)
}

// Investors returns the seeded investors.
func (s *Store) Investors() []models.Investor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.investorsLocked()
}

// Investor returns one seeded investor.
func (s *Store) Investor(id string) (*models.Investor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.investorLocked(id)
}

// FinancialRecords returns the seeded period results.
func (s *Store) FinancialRecords() []models.FinancialRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.financialsLocked()
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
