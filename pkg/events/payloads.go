package events

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/enums"
)

// ItemEvent describes an item added or removed.
type ItemEvent struct {
	ItemID   string                `json:"item_id"`
	Name     string                `json:"name"`
	Quantity int                   `json:"quantity"`
	Status   enums.InventoryStatus `json:"status"`
}

// StockAdjustedEvent is emitted for every quantity change outside a sale.
type StockAdjustedEvent struct {
	ItemID           string                 `json:"item_id"`
	Name             string                 `json:"name"`
	Reason           enums.AdjustmentReason `json:"reason"`
	Delta            int                    `json:"delta"`
	PreviousQuantity int                    `json:"previous_quantity"`
	Quantity         int                    `json:"quantity"`
}

// StockStatusChangedEvent fires when the derived stock status moves.
type StockStatusChangedEvent struct {
	ItemID         string                `json:"item_id"`
	Name           string                `json:"name"`
	PreviousStatus enums.InventoryStatus `json:"previous_status"`
	Status         enums.InventoryStatus `json:"status"`
	Quantity       int                   `json:"quantity"`
}

// PriceChangedEvent carries the new prices. NegativeMargin mirrors the warning
// returned to the caller.
type PriceChangedEvent struct {
	ItemID         string          `json:"item_id"`
	Name           string          `json:"name"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	NegativeMargin bool            `json:"negative_margin"`
}

// SaleEvent summarises a committed or completed sale.
type SaleEvent struct {
	SaleID        string              `json:"sale_id"`
	Total         decimal.Decimal     `json:"total"`
	ItemCount     int                 `json:"item_count"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	SoldBy        string              `json:"sold_by"`
	Status        enums.SaleStatus    `json:"status"`
}

// WithdrawalEvent is emitted on every withdrawal lifecycle step.
type WithdrawalEvent struct {
	WithdrawalID string                 `json:"withdrawal_id"`
	InvestorID   string                 `json:"investor_id"`
	Amount       decimal.Decimal        `json:"amount"`
	Month        string                 `json:"month"`
	Status       enums.WithdrawalStatus `json:"status"`
}

// StockAlertDigestEvent is the periodic reorder summary built by the
// housekeeping loop.
type StockAlertDigestEvent struct {
	LowStock   int      `json:"low_stock"`
	OutOfStock int      `json:"out_of_stock"`
	ItemIDs    []string `json:"item_ids"`
}
