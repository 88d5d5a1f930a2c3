package ledger

import (
	"github.com/angelmondragon/backoffice/pkg/checkout"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// The *Locked helpers assume the caller holds s.mu (read or write as appropriate).

func (s *Store) inventoryLocked() []models.InventoryItem {
	out := make([]models.InventoryItem, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		out = append(out, s.items[id].Clone())
	}
	return out
}

func (s *Store) itemLocked(id string) (*models.InventoryItem, error) {
	item, ok := s.items[normalizeID(id)]
	if !ok {
		return nil, itemNotFound(id)
	}
	clone := item.Clone()
	return &clone, nil
}

func (s *Store) upsertItemLocked(item models.InventoryItem) (*models.InventoryItem, error) {
	item.ID = normalizeID(item.ID)
	if err := validateItem(item); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	stored := item.Clone()
	stored.Status = models.DeriveInventoryStatus(stored.Quantity, stored.EffectiveReorderPoint(s.defaultReorderPoint))
	stored.UpdatedAt = now

	if existing, ok := s.items[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		s.itemOrder = append(s.itemOrder, stored.ID)
	}
	s.items[stored.ID] = &stored

	out := stored.Clone()
	return &out, nil
}

func (s *Store) removeItemLocked(id string) (*models.InventoryItem, error) {
	key := normalizeID(id)
	item, ok := s.items[key]
	if !ok {
		return nil, itemNotFound(id)
	}
	delete(s.items, key)
	for i, candidate := range s.itemOrder {
		if candidate == key {
			s.itemOrder = append(s.itemOrder[:i], s.itemOrder[i+1:]...)
			break
		}
	}
	removed := item.Clone()
	return &removed, nil
}

func validateItem(item models.InventoryItem) error {
	if item.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	details := map[string]any{"item_id": item.ID}
	switch {
	case item.Quantity < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative").WithDetails(details)
	case item.Sold < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "sold must not be negative").WithDetails(details)
	case item.WholesalePrice.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "wholesale price must not be negative").WithDetails(details)
	case item.SellingPrice.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "selling price must not be negative").WithDetails(details)
	case item.ReorderPoint != nil && *item.ReorderPoint < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "reorder point must not be negative").WithDetails(details)
	}
	return nil
}

func itemNotFound(id string) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "inventory item %q not found", id).WithDetails(map[string]any{"item_id": id})
}

func (s *Store) salesLocked() []models.SaleRecord {
	out := make([]models.SaleRecord, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, sale.Clone())
	}
	return out
}

func (s *Store) saleLocked(id string) (*models.SaleRecord, error) {
	idx, ok := s.saleIndex[normalizeID(id)]
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "sale %q not found", id)
	}
	sale := s.sales[idx].Clone()
	return &sale, nil
}

func (s *Store) appendSaleLocked(record models.SaleRecord) (*models.SaleRecord, error) {
	record.ID = normalizeID(record.ID)
	if record.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}
	if _, exists := s.saleIndex[record.ID]; exists {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "sale %q already recorded", record.ID)
	}
	if !record.PaymentMethod.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", record.PaymentMethod)
	}
	if !record.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid sale status %q", record.Status)
	}
	if record.SoldBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sold by is required")
	}

	totals, err := checkout.ComputeTotals(record.Lines, record.DiscountPercent)
	if err != nil {
		return nil, err
	}
	if !record.Total.Equal(totals.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale total does not match line items").WithDetails(map[string]any{
			"expected_total": totals.Total.String(),
			"provided_total": record.Total.String(),
		})
	}
	record.Subtotal = totals.Subtotal
	record.DiscountAmount = totals.DiscountAmount
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.clock.Now()
	}
	if record.Status == enums.SaleStatusCompleted && record.CompletedAt == nil {
		at := record.CreatedAt
		record.CompletedAt = &at
	}

	stored := record.Clone()
	s.saleIndex[stored.ID] = len(s.sales)
	s.sales = append(s.sales, stored)

	out := stored.Clone()
	return &out, nil
}

// updateSaleStatusLocked only allows pending -> completed. Repeating the
// current status is reported as unchanged.
func (s *Store) updateSaleStatusLocked(id string, status enums.SaleStatus) (*models.SaleRecord, bool, error) {
	idx, ok := s.saleIndex[normalizeID(id)]
	if !ok {
		return nil, false, pkgerrors.Newf(pkgerrors.CodeNotFound, "sale %q not found", id)
	}
	if !status.IsValid() {
		return nil, false, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid sale status %q", status)
	}
	current := &s.sales[idx]
	if current.Status == status {
		out := current.Clone()
		return &out, false, nil
	}
	if current.Status != enums.SaleStatusPending || status != enums.SaleStatusCompleted {
		return nil, false, pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "sale cannot move from %s to %s", current.Status, status).WithDetails(map[string]any{
			"sale_id": current.ID,
			"from":    current.Status,
			"to":      status,
		})
	}
	now := s.clock.Now()
	current.Status = status
	current.CompletedAt = &now
	out := current.Clone()
	return &out, true, nil
}

func (s *Store) withdrawalsLocked() []models.WithdrawalRecord {
	out := make([]models.WithdrawalRecord, 0, len(s.withdrawalOrder))
	for _, id := range s.withdrawalOrder {
		out = append(out, s.withdrawals[id].Clone())
	}
	return out
}

func (s *Store) withdrawalLocked(id string) (*models.WithdrawalRecord, error) {
	record, ok := s.withdrawals[normalizeID(id)]
	if !ok {
		return nil, withdrawalNotFound(id)
	}
	out := record.Clone()
	return &out, nil
}

func (s *Store) appendWithdrawalLocked(record models.WithdrawalRecord) (*models.WithdrawalRecord, error) {
	record.ID = normalizeID(record.ID)
	if record.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal id is required")
	}
	if _, exists := s.withdrawals[record.ID]; exists {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "withdrawal %q already recorded", record.ID)
	}
	if _, ok := s.investors[record.InvestorID]; !ok {
		return nil, investorNotFound(record.InvestorID)
	}
	if !record.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be positive")
	}
	if record.Status == "" {
		record.Status = enums.WithdrawalStatusPending
	}
	if record.Status != enums.WithdrawalStatusPending {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "new withdrawals must be pending, got %q", record.Status)
	}
	if record.RequestDate.IsZero() {
		record.RequestDate = s.clock.Now()
	}

	stored := record.Clone()
	s.withdrawals[stored.ID] = &stored
	s.withdrawalOrder = append(s.withdrawalOrder, stored.ID)

	out := stored.Clone()
	return &out, nil
}

func (s *Store) updateWithdrawalLocked(id string, mutate func(*models.WithdrawalRecord)) (*models.WithdrawalRecord, error) {
	current, ok := s.withdrawals[normalizeID(id)]
	if !ok {
		return nil, withdrawalNotFound(id)
	}
	if mutate == nil {
		out := current.Clone()
		return &out, nil
	}

	next := current.Clone()
	mutate(&next)

	if field := changedImmutableField(*current, next); field != "" {
		return nil, pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "withdrawal field %s cannot be changed", field).WithDetails(map[string]any{
			"withdrawal_id": current.ID,
			"field":         field,
		})
	}
	if !next.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "invalid withdrawal status %q", next.Status)
	}
	from, to := models.WithdrawalStage(current.Status), models.WithdrawalStage(next.Status)
	if to != from && to != from+1 {
		return nil, pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "withdrawal cannot move from %s to %s", current.Status, next.Status).WithDetails(map[string]any{
			"withdrawal_id": current.ID,
			"from":          current.Status,
			"to":            next.Status,
		})
	}
	if next.Status == enums.WithdrawalStatusApproved && next.ApprovalDate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approved withdrawal requires an approval date").WithDetails(map[string]any{
			"withdrawal_id": current.ID,
		})
	}
	if next.Status == enums.WithdrawalStatusCompleted && next.CompletionDate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "completed withdrawal requires a completion date").WithDetails(map[string]any{
			"withdrawal_id": current.ID,
		})
	}

	stored := next.Clone()
	s.withdrawals[stored.ID] = &stored
	out := stored.Clone()
	return &out, nil
}

func changedImmutableField(before, after models.WithdrawalRecord) string {
	switch {
	case before.ID != after.ID:
		return "id"
	case before.InvestorID != after.InvestorID:
		return "investor_id"
	case !before.Amount.Equal(after.Amount):
		return "amount"
	case before.Month != after.Month:
		return "month"
	case !before.RequestDate.Equal(after.RequestDate):
		return "request_date"
	}
	return ""
}

func (s *Store) deleteWithdrawalLocked(id string) (*models.WithdrawalRecord, error) {
	key := normalizeID(id)
	record, ok := s.withdrawals[key]
	if !ok {
		return nil, withdrawalNotFound(id)
	}
	if record.Status != enums.WithdrawalStatusPending {
		return nil, pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "only pending withdrawals can be cancelled, got %s", record.Status).WithDetails(map[string]any{
			"withdrawal_id": record.ID,
			"status":        record.Status,
		})
	}
	delete(s.withdrawals, key)
	for i, candidate := range s.withdrawalOrder {
		if candidate == key {
			s.withdrawalOrder = append(s.withdrawalOrder[:i], s.withdrawalOrder[i+1:]...)
			break
		}
	}
	out := record.Clone()
	return &out, nil
}

func withdrawalNotFound(id string) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "withdrawal %q not found", id).WithDetails(map[string]any{"withdrawal_id": id})
}
