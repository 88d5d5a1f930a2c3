package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/pkg/checkout"
	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// Repository is the ledger surface the inventory rules run against. It must
// already be held under the ledger's writer lock; *ledger.Tx satisfies it.
type Repository interface {
	Item(id string) (*models.InventoryItem, error)
	UpsertInventoryItem(item models.InventoryItem) (*models.InventoryItem, error)
	RemoveInventoryItem(id string) (*models.InventoryItem, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *ledger.Tx) error) error
}

// Change describes the effect of a single-item mutation.
type Change struct {
	Item             models.InventoryItem
	PreviousQuantity int
	PreviousStatus   enums.InventoryStatus
	// Created is set by AddItem when the id was not in the ledger before.
	Created bool
}

// StatusChanged reports whether the derived stock status moved.
func (c Change) StatusChanged() bool {
	return c.PreviousStatus != c.Item.Status
}

// Delta is the signed quantity change.
func (c Change) Delta() int {
	return c.Item.Quantity - c.PreviousQuantity
}

// PriceChange is the result of SetPrice. NegativeMargin is a warning, not an error.
type PriceChange struct {
	Item           models.InventoryItem
	NegativeMargin bool
}

// NewItemInput carries the caller-settable fields of an item. Status is derived.
type NewItemInput struct {
	ID             string
	Name           string
	Category       string
	Image          string
	WholesalePrice decimal.Decimal
	SellingPrice   decimal.Decimal
	Quantity       int
	Confirmed      bool
	SKU            *string
	Supplier       *string
	ReorderPoint   *int
}

// Controller owns the stock rules for single items. Every public method runs
// in its own ledger transaction; WithTx binds the same rules to a caller's tx.
type Controller struct {
	runner txRunner
	clock  clock.Clock
}

// NewController builds a controller over the ledger.
func NewController(runner txRunner, clk clock.Clock) (*Controller, error) {
	if runner == nil {
		return nil, fmt.Errorf("ledger tx runner required")
	}
	return &Controller{runner: runner, clock: clock.OrSystem(clk)}, nil
}

// WithTx returns the inventory rules bound to an open ledger transaction.
func (c *Controller) WithTx(repo Repository) *TxController {
	return &TxController{repo: repo, clock: c.clock}
}

// DeriveStatus is the pure stock status rule.
func DeriveStatus(quantity, reorderPoint int) enums.InventoryStatus {
	return models.DeriveInventoryStatus(quantity, reorderPoint)
}

func (c *Controller) Decrement(ctx context.Context, itemID string, qty int) (*Change, error) {
	var out *Change
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = c.WithTx(tx).Decrement(itemID, qty)
		return err
	})
	return out, err
}

func (c *Controller) Increment(ctx context.Context, itemID string, qty int, isReturn bool) (*Change, error) {
	var out *Change
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = c.WithTx(tx).Increment(itemID, qty, isReturn)
		return err
	})
	return out, err
}

func (c *Controller) Restock(ctx context.Context, itemID string, qty int) (*Change, error) {
	var out *Change
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = c.WithTx(tx).Restock(itemID, qty)
		return err
	})
	return out, err
}

func (c *Controller) Adjust(ctx context.Context, itemID string, delta int, reason enums.AdjustmentReason) (*Change, error) {
	var out *Change
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = c.WithTx(tx).Adjust(itemID, delta, reason)
		return err
	})
	return out, err
}

func (c *Controller) SetPrice(ctx context.Context, itemID string, wholesale, selling *decimal.Decimal) (*PriceChange, error) {
	var out *PriceChange
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = c.WithTx(tx).SetPrice(itemID, wholesale, selling)
		return err
	})
	return out, err
}

func (c *Controller) AddItem(ctx context.Context, input NewItemInput) (*Change, error) {
	var out *Change
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = c.WithTx(tx).AddItem(input)
		return err
	})
	return out, err
}

func (c *Controller) RemoveItem(ctx context.Context, itemID string) (*models.InventoryItem, error) {
	var out *models.InventoryItem
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = c.WithTx(tx).RemoveItem(itemID)
		return err
	})
	return out, err
}

// TxController applies inventory rules through a repository the caller
// already holds exclusively. Each method touches exactly one item.
type TxController struct {
	repo  Repository
	clock clock.Clock
}

// Decrement sells qty units: quantity falls and sold rises by qty.
func (t *TxController) Decrement(itemID string, qty int) (*Change, error) {
	return t.remove(itemID, qty, true)
}

// Increment adds qty units. Returns also roll back sold, floored at zero.
func (t *TxController) Increment(itemID string, qty int, isReturn bool) (*Change, error) {
	return t.add(itemID, qty, isReturn, false)
}

// Restock adds qty units and stamps LastRestocked.
func (t *TxController) Restock(itemID string, qty int) (*Change, error) {
	return t.add(itemID, qty, false, true)
}

// Adjust applies a signed delta under a reason. Restock and return only add,
// damage and sale only remove, correction goes either way.
func (t *TxController) Adjust(itemID string, delta int, reason enums.AdjustmentReason) (*Change, error) {
	if !reason.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid adjustment reason %q", reason)
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta must not be zero")
	}

	switch reason {
	case enums.AdjustmentReasonRestock, enums.AdjustmentReasonReturn:
		if delta < 0 {
			return nil, invalidDirection(reason, delta)
		}
	case enums.AdjustmentReasonDamage, enums.AdjustmentReasonSale:
		if delta > 0 {
			return nil, invalidDirection(reason, delta)
		}
	}

	switch {
	case reason == enums.AdjustmentReasonRestock:
		return t.Restock(itemID, delta)
	case reason == enums.AdjustmentReasonReturn:
		return t.Increment(itemID, delta, true)
	case reason == enums.AdjustmentReasonSale:
		return t.Decrement(itemID, -delta)
	case delta > 0:
		return t.add(itemID, delta, false, false)
	default:
		return t.remove(itemID, -delta, false)
	}
}

func invalidDirection(reason enums.AdjustmentReason, delta int) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "delta %d not allowed for reason %s", delta, reason).WithDetails(map[string]any{
		"reason": reason,
		"delta":  delta,
	})
}

// SetPrice updates either or both prices. A selling price below wholesale is
// reported through NegativeMargin and still applied.
func (t *TxController) SetPrice(itemID string, wholesale, selling *decimal.Decimal) (*PriceChange, error) {
	if wholesale == nil && selling == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one price is required")
	}
	if wholesale != nil && wholesale.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wholesale price must not be negative")
	}
	if selling != nil && selling.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selling price must not be negative")
	}

	item, err := t.repo.Item(itemID)
	if err != nil {
		return nil, err
	}
	if wholesale != nil {
		item.WholesalePrice = *wholesale
	}
	if selling != nil {
		item.SellingPrice = *selling
	}
	stored, err := t.repo.UpsertInventoryItem(*item)
	if err != nil {
		return nil, err
	}
	return &PriceChange{
		Item:           *stored,
		NegativeMargin: stored.SellingPrice.LessThan(stored.WholesalePrice),
	}, nil
}

// AddItem inserts a new item or replaces an existing one by id. A missing id
// is generated. New items with stock are stamped as restocked.
func (t *TxController) AddItem(input NewItemInput) (*Change, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}

	previousQty := 0
	previousStatus := enums.InventoryStatusOutOfStock
	item := models.InventoryItem{}
	existing, err := t.repo.Item(id)
	switch {
	case err == nil:
		item = *existing
		previousQty = existing.Quantity
		previousStatus = existing.Status
	case !pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return nil, err
	}

	item.ID = id
	item.Name = strings.TrimSpace(input.Name)
	item.Category = input.Category
	item.Image = input.Image
	item.WholesalePrice = input.WholesalePrice
	item.SellingPrice = input.SellingPrice
	item.Quantity = input.Quantity
	item.Confirmed = input.Confirmed
	item.SKU = input.SKU
	item.Supplier = input.Supplier
	item.ReorderPoint = input.ReorderPoint
	if existing == nil && input.Quantity > 0 {
		now := t.clock.Now()
		item.LastRestocked = &now
	}

	stored, err := t.repo.UpsertInventoryItem(item)
	if err != nil {
		return nil, err
	}
	return &Change{Item: *stored, PreviousQuantity: previousQty, PreviousStatus: previousStatus, Created: existing == nil}, nil
}

// RemoveItem hard-deletes an item; historical sales keep their line snapshots.
func (t *TxController) RemoveItem(itemID string) (*models.InventoryItem, error) {
	return t.repo.RemoveInventoryItem(itemID)
}

func (t *TxController) add(itemID string, qty int, isReturn, restock bool) (*Change, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").WithDetails(map[string]any{"item_id": itemID})
	}
	item, err := t.repo.Item(itemID)
	if err != nil {
		return nil, err
	}
	change := Change{PreviousQuantity: item.Quantity, PreviousStatus: item.Status}

	item.Quantity += qty
	if isReturn {
		item.Sold -= qty
		if item.Sold < 0 {
			item.Sold = 0
		}
	}
	if restock {
		now := t.clock.Now()
		item.LastRestocked = &now
	}

	stored, err := t.repo.UpsertInventoryItem(*item)
	if err != nil {
		return nil, err
	}
	change.Item = *stored
	return &change, nil
}

func (t *TxController) remove(itemID string, qty int, countAsSold bool) (*Change, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").WithDetails(map[string]any{"item_id": itemID})
	}
	item, err := t.repo.Item(itemID)
	if err != nil {
		return nil, err
	}
	if err := checkout.ValidateAvailability([]checkout.AvailabilityInput{{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Requested: qty,
		Available: item.Quantity,
	}}); err != nil {
		return nil, err
	}
	change := Change{PreviousQuantity: item.Quantity, PreviousStatus: item.Status}

	item.Quantity -= qty
	if countAsSold {
		item.Sold += qty
	}

	stored, err := t.repo.UpsertInventoryItem(*item)
	if err != nil {
		return nil, err
	}
	change.Item = *stored
	return &change, nil
}
