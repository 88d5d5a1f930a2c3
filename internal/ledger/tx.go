package ledger

import (
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

var errTxClosed = pkgerrors.New(pkgerrors.CodeInternal, "ledger transaction already closed")

// Tx is the mutation surface handed to WithTx callbacks. It is only valid
// inside the callback; using it afterwards returns an internal error.
type Tx struct {
	s *Store
}

func (t *Tx) close() {
	t.s = nil
}

func (t *Tx) store() (*Store, error) {
	if t == nil || t.s == nil {
		return nil, errTxClosed
	}
	return t.s, nil
}

// DefaultReorderPoint mirrors Store.DefaultReorderPoint.
func (t *Tx) DefaultReorderPoint() int {
	if t == nil || t.s == nil {
		return DefaultReorderPoint
	}
	return t.s.defaultReorderPoint
}

func (t *Tx) Inventory() []models.InventoryItem {
	s, err := t.store()
	if err != nil {
		return nil
	}
	return s.inventoryLocked()
}

func (t *Tx) Item(id string) (*models.InventoryItem, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.itemLocked(id)
}

func (t *Tx) UpsertInventoryItem(item models.InventoryItem) (*models.InventoryItem, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.upsertItemLocked(item)
}

func (t *Tx) RemoveInventoryItem(id string) (*models.InventoryItem, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.removeItemLocked(id)
}

func (t *Tx) Sale(id string) (*models.SaleRecord, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.saleLocked(id)
}

func (t *Tx) AppendSaleRecord(record models.SaleRecord) (*models.SaleRecord, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.appendSaleLocked(record)
}

// UpdateSaleStatus reports whether the status actually changed.
func (t *Tx) UpdateSaleStatus(id string, status enums.SaleStatus) (*models.SaleRecord, bool, error) {
	s, err := t.store()
	if err != nil {
		return nil, false, err
	}
	return s.updateSaleStatusLocked(id, status)
}

func (t *Tx) Withdrawals() []models.WithdrawalRecord {
	s, err := t.store()
	if err != nil {
		return nil
	}
	return s.withdrawalsLocked()
}

func (t *Tx) Withdrawal(id string) (*models.WithdrawalRecord, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.withdrawalLocked(id)
}

func (t *Tx) AppendWithdrawalRecord(record models.WithdrawalRecord) (*models.WithdrawalRecord, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.appendWithdrawalLocked(record)
}

func (t *Tx) UpdateWithdrawalRecord(id string, mutate func(*models.WithdrawalRecord)) (*models.WithdrawalRecord, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.updateWithdrawalLocked(id, mutate)
}

// DeleteWithdrawalRecord removes a pending withdrawal.
func (t *Tx) DeleteWithdrawalRecord(id string) (*models.WithdrawalRecord, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.deleteWithdrawalLocked(id)
}

func (t *Tx) Investor(id string) (*models.Investor, error) {
	s, err := t.store()
	if err != nil {
		return nil, err
	}
	return s.investorLocked(id)
}

func (t *Tx) FinancialRecords() []models.FinancialRecord {
	s, err := t.store()
	if err != nil {
		return nil
	}
	return s.financialsLocked()
}

// ReadTx exposes consistent reads across collections under one read lock.
type ReadTx struct {
	s *Store
}

func (r *ReadTx) Inventory() []models.InventoryItem {
	return r.s.inventoryLocked()
}

func (r *ReadTx) Sales() []models.SaleRecord {
	return r.s.salesLocked()
}

func (r *ReadTx) Withdrawals() []models.WithdrawalRecord {
	return r.s.withdrawalsLocked()
}

func (r *ReadTx) Investors() []models.Investor {
	return r.s.investorsLocked()
}

func (r *ReadTx) FinancialRecords() []models.FinancialRecord {
	return r.s.financialsLocked()
}

func (r *ReadTx) Investor(id string) (*models.Investor, error) {
	return r.s.investorLocked(id)
}
