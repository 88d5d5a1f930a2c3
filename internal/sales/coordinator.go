package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/internal/inventory"
	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/pkg/checkout"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *ledger.Tx) error) error
}

// stockMutator is the slice of inventory rules a commit needs.
type stockMutator interface {
	Decrement(itemID string, qty int) (*inventory.Change, error)
	Increment(itemID string, qty int, isReturn bool) (*inventory.Change, error)
}

type stockBinder func(tx *ledger.Tx) stockMutator

// LineInput is one cart line as submitted at the register.
type LineInput struct {
	ItemID           string
	Quantity         int
	UnitPriceCharged decimal.Decimal
}

// CommitInput captures a cart at checkout.
type CommitInput struct {
	Lines           []LineInput
	DiscountPercent decimal.Decimal
	PaymentMethod   enums.PaymentMethod
	SoldBy          string
	// Pending marks a layaway sale. Stock is still taken at commit.
	Pending bool
}

// CommitResult is the committed sale plus the per-item inventory effect.
type CommitResult struct {
	Sale    models.SaleRecord
	Changes []inventory.Change
}

// StatusChanges returns the items whose derived status moved during the commit.
func (r CommitResult) StatusChanges() []inventory.Change {
	var out []inventory.Change
	for _, change := range r.Changes {
		if change.StatusChanged() {
			out = append(out, change)
		}
	}
	return out
}

// Coordinator commits sales atomically against the ledger.
type Coordinator struct {
	runner txRunner
	bind   stockBinder
	newID  func() string
}

// NewCoordinator wires a coordinator. The inventory controller supplies the
// per-item stock rules applied inside the commit transaction.
func NewCoordinator(runner txRunner, controller *inventory.Controller) (*Coordinator, error) {
	if runner == nil {
		return nil, fmt.Errorf("ledger tx runner required")
	}
	if controller == nil {
		return nil, fmt.Errorf("inventory controller required")
	}
	return &Coordinator{
		runner: runner,
		bind: func(tx *ledger.Tx) stockMutator {
			return controller.WithTx(tx)
		},
		newID: uuid.NewString,
	}, nil
}

// CommitSale validates the cart against live stock, decrements every line in
// ascending item id order and appends the sale record, all under one ledger
// transaction. Any failure after the first decrement is compensated before
// the error is returned.
func (c *Coordinator) CommitSale(ctx context.Context, input CommitInput) (*CommitResult, error) {
	lines := make([]models.SaleLine, len(input.Lines))
	for i, line := range input.Lines {
		lines[i] = models.SaleLine{
			ItemID:           strings.TrimSpace(line.ItemID),
			Quantity:         line.Quantity,
			UnitPriceCharged: line.UnitPriceCharged,
		}
	}
	if err := checkout.ValidateLines(lines); err != nil {
		return nil, err
	}
	if err := checkout.ValidateDiscountPercent(input.DiscountPercent); err != nil {
		return nil, err
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", input.PaymentMethod)
	}
	soldBy := strings.TrimSpace(input.SoldBy)
	if soldBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sold by is required")
	}

	status := enums.SaleStatusCompleted
	if input.Pending {
		status = enums.SaleStatusPending
	}

	var result *CommitResult
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		names, err := validateStock(tx, lines)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].Name = names[lines[i].ItemID]
		}

		totals, err := checkout.ComputeTotals(lines, input.DiscountPercent)
		if err != nil {
			return err
		}

		stock := c.bind(tx)
		changes, err := decrementAll(stock, lines)
		if err != nil {
			return err
		}

		sale, err := tx.AppendSaleRecord(models.SaleRecord{
			ID:              c.newID(),
			Lines:           lines,
			DiscountPercent: totals.DiscountPercent,
			Total:           totals.Total,
			PaymentMethod:   input.PaymentMethod,
			SoldBy:          soldBy,
			Status:          status,
		})
		if err != nil {
			if compErr := compensate(stock, sortedLines(lines), len(lines)); compErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, compErr, "sale compensation failed")
			}
			return err
		}

		result = &CommitResult{Sale: *sale, Changes: changes}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteSale settles a pending sale. Completing an already completed sale
// returns it unchanged; the bool reports whether anything moved.
func (c *Coordinator) CompleteSale(ctx context.Context, saleID string) (*models.SaleRecord, bool, error) {
	if strings.TrimSpace(saleID) == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "sale id is required")
	}
	var (
		sale    *models.SaleRecord
		changed bool
	)
	err := c.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		sale, changed, err = tx.UpdateSaleStatus(saleID, enums.SaleStatusCompleted)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return sale, changed, nil
}

// validateStock checks the aggregated cart against current quantities and
// reports every shortfall at once. It returns the live item names.
func validateStock(tx *ledger.Tx, lines []models.SaleLine) (map[string]string, error) {
	requested := checkout.RequestedByItem(lines)
	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	names := make(map[string]string, len(ids))
	inputs := make([]checkout.AvailabilityInput, 0, len(ids))
	for _, id := range ids {
		item, err := tx.Item(id)
		if err != nil {
			return nil, err
		}
		names[id] = item.Name
		inputs = append(inputs, checkout.AvailabilityInput{
			ItemID:    id,
			ItemName:  item.Name,
			Requested: requested[id],
			Available: item.Quantity,
		})
	}
	if err := checkout.ValidateAvailability(inputs); err != nil {
		return nil, err
	}
	return names, nil
}

// decrementAll applies lines in ascending item id order. Lines for the same
// item keep their cart order. On failure the applied prefix is compensated.
func decrementAll(stock stockMutator, lines []models.SaleLine) ([]inventory.Change, error) {
	ordered := sortedLines(lines)

	first := make(map[string]inventory.Change)
	last := make(map[string]models.InventoryItem)
	var order []string

	for i, line := range ordered {
		change, err := stock.Decrement(line.ItemID, line.Quantity)
		if err != nil {
			if compErr := compensate(stock, ordered, i); compErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, compErr, "sale compensation failed")
			}
			return nil, err
		}
		if _, seen := first[line.ItemID]; !seen {
			first[line.ItemID] = *change
			order = append(order, line.ItemID)
		}
		last[line.ItemID] = change.Item
	}

	changes := make([]inventory.Change, 0, len(order))
	for _, id := range order {
		change := first[id]
		change.Item = last[id]
		changes = append(changes, change)
	}
	return changes, nil
}

// compensate returns the first n of the ordered lines to stock, newest first.
func compensate(stock stockMutator, ordered []models.SaleLine, n int) error {
	for i := n - 1; i >= 0; i-- {
		if _, err := stock.Increment(ordered[i].ItemID, ordered[i].Quantity, true); err != nil {
			return err
		}
	}
	return nil
}

func sortedLines(lines []models.SaleLine) []models.SaleLine {
	out := append([]models.SaleLine(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}
