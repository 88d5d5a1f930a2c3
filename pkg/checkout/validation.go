package checkout

import (
	"fmt"
	"sort"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// AvailabilityInput pairs the total requested quantity for an item with the
// quantity the ledger currently holds.
type AvailabilityInput struct {
	ItemID    string
	ItemName  string
	Requested int
	Available int
}

// StockShortfallDetail is returned to callers when a cart cannot be covered.
type StockShortfallDetail struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name,omitempty"`
	RequestedQty int    `json:"requested_qty"`
	AvailableQty int    `json:"available_qty"`
}

// ValidateAvailability ensures every requested quantity fits the available stock.
// All shortfalls are reported together, ordered by item id.
func ValidateAvailability(items []AvailabilityInput) error {
	var shortfalls []StockShortfallDetail
	for _, item := range items {
		if item.Requested <= item.Available {
			continue
		}
		shortfalls = append(shortfalls, StockShortfallDetail{
			ItemID:       item.ItemID,
			ItemName:     item.ItemName,
			RequestedQty: item.Requested,
			AvailableQty: item.Available,
		})
	}
	if len(shortfalls) == 0 {
		return nil
	}
	sort.Slice(shortfalls, func(i, j int) bool { return shortfalls[i].ItemID < shortfalls[j].ItemID })
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %d item(s)", len(shortfalls))).WithDetails(map[string]any{
		"shortfalls": shortfalls,
	})
}

// ShortfallItemIDs extracts the failing item ids from an insufficient stock error.
func ShortfallItemIDs(err error) []string {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		return nil
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return nil
	}
	shortfalls, ok := details["shortfalls"].([]StockShortfallDetail)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(shortfalls))
	for _, s := range shortfalls {
		ids = append(ids, s.ItemID)
	}
	return ids
}
