package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(Options{Clock: clock.NewFixed(testNow)})
	if err := store.SeedReferenceData(ReferenceData{
		Investors: []models.Investor{{
			ID:                  "inv-1",
			Name:                "Ana",
			InvestmentAmount:    decimal.NewFromInt(500000),
			PercentageOwnership: decimal.RequireFromString("0.25"),
		}},
		FinancialRecords: []models.FinancialRecord{{Period: "2026-01", TotalProfit: decimal.NewFromInt(180000)}},
	}); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	return store
}

func testItem(id string, qty int) models.InventoryItem {
	return models.InventoryItem{
		ID:             id,
		Name:           "Item " + id,
		WholesalePrice: decimal.NewFromInt(400),
		SellingPrice:   decimal.NewFromInt(900),
		Quantity:       qty,
	}
}

func TestUpsertInventoryItem_DerivesStatus(t *testing.T) {
	store := newTestStore(t)

	cases := []struct {
		qty  int
		want enums.InventoryStatus
	}{
		{0, enums.InventoryStatusOutOfStock},
		{1, enums.InventoryStatusLowStock},
		{5, enums.InventoryStatusLowStock},
		{6, enums.InventoryStatusInStock},
	}
	for _, tc := range cases {
		item := testItem("a", tc.qty)
		item.Status = enums.InventoryStatusInStock
		got, err := store.UpsertInventoryItem(item)
		if err != nil {
			t.Fatalf("upsert qty=%d: %v", tc.qty, err)
		}
		if got.Status != tc.want {
			t.Fatalf("qty=%d: expected %s got %s", tc.qty, tc.want, got.Status)
		}
	}
	if n := len(store.Inventory()); n != 1 {
		t.Fatalf("expected upsert to replace, got %d items", n)
	}
}

func TestNew_ReorderPointFallback(t *testing.T) {
	unset := New(Options{Clock: clock.NewFixed(testNow)})
	if got := unset.DefaultReorderPoint(); got != DefaultReorderPoint {
		t.Fatalf("expected unset reorder point to fall back to %d, got %d", DefaultReorderPoint, got)
	}
	item, err := unset.UpsertInventoryItem(testItem("a", 3))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if item.Status != enums.InventoryStatusLowStock {
		t.Fatalf("expected qty 3 to be low-stock with the fallback, got %s", item.Status)
	}

	zero := 0
	disabled := New(Options{Clock: clock.NewFixed(testNow), DefaultReorderPoint: &zero})
	item, err = disabled.UpsertInventoryItem(testItem("a", 3))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if disabled.DefaultReorderPoint() != 0 || item.Status != enums.InventoryStatusInStock {
		t.Fatalf("expected explicit zero to disable the band, got %d / %s", disabled.DefaultReorderPoint(), item.Status)
	}

	negative := -3
	if got := New(Options{DefaultReorderPoint: &negative}).DefaultReorderPoint(); got != DefaultReorderPoint {
		t.Fatalf("expected negative reorder point to fall back, got %d", got)
	}
}

func TestUpsertInventoryItem_RejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	bad := []models.InventoryItem{
		{ID: "", Name: "x"},
		func() models.InventoryItem { i := testItem("a", -1); return i }(),
		func() models.InventoryItem { i := testItem("a", 1); i.Sold = -1; return i }(),
		func() models.InventoryItem { i := testItem("a", 1); i.SellingPrice = decimal.NewFromInt(-1); return i }(),
		func() models.InventoryItem { i := testItem("a", 1); i.WholesalePrice = decimal.NewFromInt(-1); return i }(),
	}
	for i, item := range bad {
		if _, err := store.UpsertInventoryItem(item); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
	if len(store.Inventory()) != 0 {
		t.Fatalf("expected no items after rejected writes")
	}
}

func TestInventory_ReturnsCopies(t *testing.T) {
	store := newTestStore(t)
	sku := "SKU-1"
	item := testItem("a", 10)
	item.SKU = &sku
	if _, err := store.UpsertInventoryItem(item); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	snapshot := store.Inventory()
	snapshot[0].Quantity = 0
	*snapshot[0].SKU = "mutated"

	got, err := store.Item("a")
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if got.Quantity != 10 || *got.SKU != "SKU-1" {
		t.Fatalf("store state leaked through snapshot: %+v", got)
	}
}

func TestRemoveInventoryItem(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.RemoveInventoryItem("missing"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.UpsertInventoryItem(testItem(id, 3)); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}
	if _, err := store.RemoveInventoryItem("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items := store.Inventory()
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Fatalf("unexpected inventory order after remove: %+v", items)
	}
}

func TestAppendSaleRecord_RecomputesTotals(t *testing.T) {
	store := newTestStore(t)
	record := models.SaleRecord{
		ID: "sale-1",
		Lines: []models.SaleLine{
			{ItemID: "a", Name: "A", Quantity: 2, UnitPriceCharged: decimal.NewFromInt(1000)},
			{ItemID: "b", Name: "B", Quantity: 1, UnitPriceCharged: decimal.NewFromInt(1000)},
		},
		DiscountPercent: decimal.NewFromInt(10),
		Total:           decimal.NewFromInt(2700),
		PaymentMethod:   enums.PaymentMethodCash,
		SoldBy:          "clerk",
		Status:          enums.SaleStatusCompleted,
	}

	got, err := store.AppendSaleRecord(record)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !got.Subtotal.Equal(decimal.NewFromInt(3000)) || !got.DiscountAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected totals %s / %s", got.Subtotal, got.DiscountAmount)
	}
	if !got.CreatedAt.Equal(testNow) || got.CompletedAt == nil {
		t.Fatalf("expected timestamps from clock, got %+v", got)
	}

	record.ID = "sale-2"
	record.Total = decimal.NewFromInt(3000)
	if _, err := store.AppendSaleRecord(record); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected total mismatch to fail validation, got %v", err)
	}

	record.ID = "sale-1"
	record.Total = decimal.NewFromInt(2700)
	if _, err := store.AppendSaleRecord(record); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected duplicate id conflict, got %v", err)
	}
	if n := len(store.Sales()); n != 1 {
		t.Fatalf("expected 1 sale, got %d", n)
	}
}

func TestUpdateSaleStatus(t *testing.T) {
	store := newTestStore(t)
	record := models.SaleRecord{
		ID:            "layaway",
		Lines:         []models.SaleLine{{ItemID: "a", Quantity: 1, UnitPriceCharged: decimal.NewFromInt(50)}},
		Total:         decimal.NewFromInt(50),
		PaymentMethod: enums.PaymentMethodCard,
		SoldBy:        "clerk",
		Status:        enums.SaleStatusPending,
	}
	if _, err := store.AppendSaleRecord(record); err != nil {
		t.Fatalf("append: %v", err)
	}

	sale, changed, err := store.UpdateSaleStatus("layaway", enums.SaleStatusCompleted)
	if err != nil || !changed {
		t.Fatalf("expected completion, changed=%v err=%v", changed, err)
	}
	if sale.CompletedAt == nil {
		t.Fatalf("expected completion timestamp")
	}

	if _, changed, err := store.UpdateSaleStatus("layaway", enums.SaleStatusCompleted); err != nil || changed {
		t.Fatalf("expected no-op, changed=%v err=%v", changed, err)
	}
	if _, _, err := store.UpdateSaleStatus("layaway", enums.SaleStatusPending); !pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestWithdrawalRecords_OnlyStatusFieldsMutable(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.AppendWithdrawalRecord(models.WithdrawalRecord{
		ID:         "w-1",
		InvestorID: "inv-1",
		Amount:     decimal.NewFromInt(10000),
		Month:      "2026-03",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	_, err := store.UpdateWithdrawalRecord("w-1", func(w *models.WithdrawalRecord) {
		w.Amount = decimal.NewFromInt(99999)
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected amount change to be rejected, got %v", err)
	}

	approvedAt := testNow.Add(time.Hour)
	updated, err := store.UpdateWithdrawalRecord("w-1", func(w *models.WithdrawalRecord) {
		w.Status = enums.WithdrawalStatusApproved
		w.ApprovalDate = &approvedAt
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != enums.WithdrawalStatusApproved || !updated.Amount.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("unexpected record %+v", updated)
	}

	_, err = store.UpdateWithdrawalRecord("w-1", func(w *models.WithdrawalRecord) {
		w.Status = enums.WithdrawalStatusPending
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected backward transition to be rejected, got %v", err)
	}

	if _, err := store.DeleteWithdrawalRecord("w-1"); !pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected approved withdrawal to be undeletable, got %v", err)
	}
}

func TestWithdrawalRecords_StagesCannotBeSkipped(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.AppendWithdrawalRecord(models.WithdrawalRecord{
		ID:         "w-2",
		InvestorID: "inv-1",
		Amount:     decimal.NewFromInt(500),
		Month:      "Jan",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	completedAt := testNow.Add(time.Hour)
	_, err := store.UpdateWithdrawalRecord("w-2", func(w *models.WithdrawalRecord) {
		w.Status = enums.WithdrawalStatusCompleted
		w.CompletionDate = &completedAt
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition) {
		t.Fatalf("expected pending -> completed to be rejected, got %v", err)
	}

	_, err = store.UpdateWithdrawalRecord("w-2", func(w *models.WithdrawalRecord) {
		w.Status = enums.WithdrawalStatusApproved
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected approval without a date to be rejected, got %v", err)
	}

	current, err := store.Withdrawal("w-2")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if current.Status != enums.WithdrawalStatusPending || current.ApprovalDate != nil || current.CompletionDate != nil {
		t.Fatalf("rejected updates must leave the record untouched, got %+v", current)
	}
}

func TestAppendWithdrawalRecord_Validation(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.AppendWithdrawalRecord(models.WithdrawalRecord{ID: "w", InvestorID: "ghost", Amount: decimal.NewFromInt(1)}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected unknown investor, got %v", err)
	}
	if _, err := store.AppendWithdrawalRecord(models.WithdrawalRecord{ID: "w", InvestorID: "inv-1", Amount: decimal.Zero}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected zero amount rejected, got %v", err)
	}
	if _, err := store.AppendWithdrawalRecord(models.WithdrawalRecord{ID: "w", InvestorID: "inv-1", Amount: decimal.NewFromInt(1), Status: enums.WithdrawalStatusApproved}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected non-pending creation rejected, got %v", err)
	}
	rec, err := store.AppendWithdrawalRecord(models.WithdrawalRecord{ID: "w", InvestorID: "inv-1", Amount: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if rec.Status != enums.WithdrawalStatusPending || !rec.RequestDate.Equal(testNow) {
		t.Fatalf("unexpected defaults %+v", rec)
	}
	if _, err := store.DeleteWithdrawalRecord("w"); err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if len(store.Withdrawals()) != 0 {
		t.Fatalf("expected withdrawal removed")
	}
}

func TestSeedReferenceData_Validation(t *testing.T) {
	store := New(Options{})

	cases := map[string][]models.Investor{
		"zero investment": {{ID: "a", InvestmentAmount: decimal.Zero, PercentageOwnership: decimal.RequireFromString("0.1")}},
		"ownership > 1":   {{ID: "a", InvestmentAmount: decimal.NewFromInt(1), PercentageOwnership: decimal.RequireFromString("1.1")}},
		"aggregate > 1": {
			{ID: "a", InvestmentAmount: decimal.NewFromInt(1), PercentageOwnership: decimal.RequireFromString("0.6")},
			{ID: "b", InvestmentAmount: decimal.NewFromInt(1), PercentageOwnership: decimal.RequireFromString("0.5")},
		},
		"duplicate": {
			{ID: "a", InvestmentAmount: decimal.NewFromInt(1), PercentageOwnership: decimal.RequireFromString("0.1")},
			{ID: "a", InvestmentAmount: decimal.NewFromInt(1), PercentageOwnership: decimal.RequireFromString("0.1")},
		},
	}
	for name, investors := range cases {
		if err := store.SeedReferenceData(ReferenceData{Investors: investors}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
	if len(store.Investors()) != 0 {
		t.Fatalf("rejected seed must not leave partial state")
	}
}

func TestWithTx_ClosedAfterReturn(t *testing.T) {
	store := newTestStore(t)
	var leaked *Tx
	if err := store.WithTx(context.Background(), func(tx *Tx) error {
		leaked = tx
		_, err := tx.UpsertInventoryItem(testItem("a", 1))
		return err
	}); err != nil {
		t.Fatalf("tx: %v", err)
	}
	if _, err := leaked.UpsertInventoryItem(testItem("b", 1)); !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected closed tx error, got %v", err)
	}
}

func TestWithTx_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := store.WithTx(ctx, func(tx *Tx) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("expected cancelled context to skip fn, err=%v called=%v", err, called)
	}
}

func TestWithTx_SerializesWriters(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.UpsertInventoryItem(testItem("a", 0)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = store.WithTx(context.Background(), func(tx *Tx) error {
				item, err := tx.Item("a")
				if err != nil {
					return err
				}
				item.Quantity++
				_, err = tx.UpsertInventoryItem(*item)
				return err
			})
		}()
	}
	wg.Wait()

	item, err := store.Item("a")
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Quantity != workers {
		t.Fatalf("expected %d increments, got %d", workers, item.Quantity)
	}
}

func TestSnapshot_ConsistentAcrossCollections(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.UpsertInventoryItem(testItem("a", 7)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	snap := store.Snapshot()
	if len(snap.Inventory) != 1 || len(snap.Investors) != 1 || len(snap.FinancialRecords) != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	err := store.View(func(tx *ReadTx) error {
		if len(tx.Inventory()) != 1 {
			t.Fatalf("view saw %d items", len(tx.Inventory()))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
