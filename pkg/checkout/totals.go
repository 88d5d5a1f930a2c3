package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// MoneyPlaces is the precision money amounts are rounded to.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Totals captures the computed amounts for a sale.
type Totals struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
}

// ValidateDiscountPercent rejects values outside [0,100].
func ValidateDiscountPercent(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100").WithDetails(map[string]any{
			"discount_percent": percent.String(),
		})
	}
	return nil
}

// ValidateLines checks the shape of each line independent of stock.
func ValidateLines(lines []models.SaleLine) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	for i, line := range lines {
		if strings.TrimSpace(line.ItemID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item id is required").WithDetails(map[string]any{"line": i})
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").WithDetails(map[string]any{"line": i, "item_id": line.ItemID})
		}
		if line.UnitPriceCharged.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative").WithDetails(map[string]any{"line": i, "item_id": line.ItemID})
		}
	}
	return nil
}

// ComputeTotals derives subtotal, discount and total from the lines. The
// discount is rounded to MoneyPlaces; total = subtotal - discount.
func ComputeTotals(lines []models.SaleLine, discountPercent decimal.Decimal) (Totals, error) {
	if err := ValidateLines(lines); err != nil {
		return Totals{}, err
	}
	if err := ValidateDiscountPercent(discountPercent); err != nil {
		return Totals{}, err
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	discount := subtotal.Mul(discountPercent).Div(hundred).Round(MoneyPlaces)

	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discount,
		Total:           subtotal.Sub(discount),
	}, nil
}

// RequestedByItem sums line quantities per item id.
func RequestedByItem(lines []models.SaleLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, line := range lines {
		out[line.ItemID] += line.Quantity
	}
	return out
}
