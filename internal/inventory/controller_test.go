package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

var now = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func newController(t *testing.T, items ...models.InventoryItem) (*Controller, *ledger.Store) {
	t.Helper()
	clk := clock.NewFixed(now)
	store := ledger.New(ledger.Options{Clock: clk})
	for _, item := range items {
		_, err := store.UpsertInventoryItem(item)
		require.NoError(t, err)
	}
	ctrl, err := NewController(store, clk)
	require.NoError(t, err)
	return ctrl, store
}

func item(id string, qty int) models.InventoryItem {
	return models.InventoryItem{
		ID:             id,
		Name:           "Item " + id,
		WholesalePrice: decimal.NewFromInt(500),
		SellingPrice:   decimal.NewFromInt(1000),
		Quantity:       qty,
	}
}

func intPtr(v int) *int { return &v }

func TestDecrement_ToZeroIsOutOfStock(t *testing.T) {
	x := item("X", 5)
	x.ReorderPoint = intPtr(5)
	ctrl, store := newController(t, x)

	change, err := ctrl.Decrement(context.Background(), "X", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, change.Item.Quantity)
	assert.Equal(t, 5, change.Item.Sold)
	assert.Equal(t, enums.InventoryStatusOutOfStock, change.Item.Status)
	assert.Equal(t, enums.InventoryStatusLowStock, change.PreviousStatus)
	assert.True(t, change.StatusChanged())
	assert.Equal(t, -5, change.Delta())

	stored, err := store.Item("X")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
}

func TestDecrement_InsufficientStockLeavesItemUntouched(t *testing.T) {
	ctrl, store := newController(t, item("X", 5))

	_, err := ctrl.Decrement(context.Background(), "X", 6)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))

	stored, err := store.Item("X")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Quantity)
	assert.Equal(t, 0, stored.Sold)
}

func TestDecrement_Validation(t *testing.T) {
	ctrl, _ := newController(t, item("X", 5))

	_, err := ctrl.Decrement(context.Background(), "X", 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ctrl.Decrement(context.Background(), "missing", 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestIncrement_ReturnFloorsSoldAtZero(t *testing.T) {
	x := item("X", 2)
	x.Sold = 1
	ctrl, _ := newController(t, x)

	change, err := ctrl.Increment(context.Background(), "X", 3, true)
	require.NoError(t, err)
	assert.Equal(t, 5, change.Item.Quantity)
	assert.Equal(t, 0, change.Item.Sold)

	change, err = ctrl.Increment(context.Background(), "X", 4, false)
	require.NoError(t, err)
	assert.Equal(t, 9, change.Item.Quantity)
	assert.Equal(t, enums.InventoryStatusInStock, change.Item.Status)
}

func TestRestock_StampsLastRestocked(t *testing.T) {
	ctrl, _ := newController(t, item("X", 0))

	change, err := ctrl.Restock(context.Background(), "X", 10)
	require.NoError(t, err)
	require.NotNil(t, change.Item.LastRestocked)
	assert.True(t, change.Item.LastRestocked.Equal(now))
	assert.Equal(t, enums.InventoryStatusInStock, change.Item.Status)
}

func TestAdjust_ReasonRules(t *testing.T) {
	tests := []struct {
		name     string
		delta    int
		reason   enums.AdjustmentReason
		wantCode pkgerrors.Code
		wantQty  int
		wantSold int
	}{
		{name: "restock adds", delta: 4, reason: enums.AdjustmentReasonRestock, wantQty: 14, wantSold: 3},
		{name: "restock cannot remove", delta: -1, reason: enums.AdjustmentReasonRestock, wantCode: pkgerrors.CodeValidation},
		{name: "return adds and rolls back sold", delta: 2, reason: enums.AdjustmentReasonReturn, wantQty: 12, wantSold: 1},
		{name: "damage removes without selling", delta: -3, reason: enums.AdjustmentReasonDamage, wantQty: 7, wantSold: 3},
		{name: "damage cannot add", delta: 3, reason: enums.AdjustmentReasonDamage, wantCode: pkgerrors.CodeValidation},
		{name: "sale removes and sells", delta: -2, reason: enums.AdjustmentReasonSale, wantQty: 8, wantSold: 5},
		{name: "correction up", delta: 1, reason: enums.AdjustmentReasonCorrection, wantQty: 11, wantSold: 3},
		{name: "correction down", delta: -1, reason: enums.AdjustmentReasonCorrection, wantQty: 9, wantSold: 3},
		{name: "correction beyond stock", delta: -11, reason: enums.AdjustmentReasonCorrection, wantCode: pkgerrors.CodeInsufficientStock},
		{name: "zero delta", delta: 0, reason: enums.AdjustmentReasonCorrection, wantCode: pkgerrors.CodeValidation},
		{name: "unknown reason", delta: 1, reason: enums.AdjustmentReason("gift"), wantCode: pkgerrors.CodeValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x := item("X", 10)
			x.Sold = 3
			ctrl, store := newController(t, x)

			change, err := ctrl.Adjust(context.Background(), "X", tc.delta, tc.reason)
			if tc.wantCode != "" {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsCode(err, tc.wantCode), "got %v", err)
				stored, getErr := store.Item("X")
				require.NoError(t, getErr)
				assert.Equal(t, 10, stored.Quantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantQty, change.Item.Quantity)
			assert.Equal(t, tc.wantSold, change.Item.Sold)
		})
	}
}

func TestSetPrice_NegativeMarginIsWarning(t *testing.T) {
	ctrl, _ := newController(t, item("X", 10))

	selling := decimal.NewFromInt(400)
	change, err := ctrl.SetPrice(context.Background(), "X", nil, &selling)
	require.NoError(t, err)
	assert.True(t, change.NegativeMargin)
	assert.True(t, change.Item.SellingPrice.Equal(selling))
	assert.True(t, change.Item.WholesalePrice.Equal(decimal.NewFromInt(500)))

	wholesale := decimal.NewFromInt(300)
	change, err = ctrl.SetPrice(context.Background(), "X", &wholesale, nil)
	require.NoError(t, err)
	assert.False(t, change.NegativeMargin)
}

func TestSetPrice_Validation(t *testing.T) {
	ctrl, _ := newController(t, item("X", 10))

	_, err := ctrl.SetPrice(context.Background(), "X", nil, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	negative := decimal.NewFromInt(-1)
	_, err = ctrl.SetPrice(context.Background(), "X", &negative, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAddItem_GeneratesIDAndDerivesStatus(t *testing.T) {
	ctrl, store := newController(t)

	change, err := ctrl.AddItem(context.Background(), NewItemInput{
		Name:           "Silk scarf",
		Category:       "accessories",
		WholesalePrice: decimal.NewFromInt(200),
		SellingPrice:   decimal.NewFromInt(450),
		Quantity:       3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, change.Item.ID)
	assert.True(t, change.Created)
	assert.Equal(t, enums.InventoryStatusLowStock, change.Item.Status)
	require.NotNil(t, change.Item.LastRestocked)

	_, err = ctrl.AddItem(context.Background(), NewItemInput{ID: "nameless"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	removed, err := ctrl.RemoveItem(context.Background(), change.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Silk scarf", removed.Name)
	assert.Empty(t, store.Inventory())
}

func TestAddItem_ReplacesExisting(t *testing.T) {
	ctrl, store := newController(t, item("X", 10))

	change, err := ctrl.AddItem(context.Background(), NewItemInput{ID: "X", Name: "Renamed", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 10, change.PreviousQuantity)
	assert.False(t, change.Created)
	assert.Equal(t, enums.InventoryStatusLowStock, change.Item.Status)
	assert.Len(t, store.Inventory(), 1)
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, enums.InventoryStatusOutOfStock, DeriveStatus(0, 5))
	assert.Equal(t, enums.InventoryStatusLowStock, DeriveStatus(5, 5))
	assert.Equal(t, enums.InventoryStatusInStock, DeriveStatus(6, 5))
	assert.Equal(t, enums.InventoryStatusOutOfStock, DeriveStatus(0, 0))
	assert.Equal(t, enums.InventoryStatusInStock, DeriveStatus(1, 0))
}
