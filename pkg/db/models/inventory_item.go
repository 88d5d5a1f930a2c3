package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/enums"
)

// InventoryItem is a sellable stock line. Status is derived from Quantity and
// ReorderPoint and is never written by callers.
type InventoryItem struct {
	ID             string                `gorm:"column:id;primaryKey" json:"id"`
	Name           string                `gorm:"column:name;not null" json:"name"`
	Category       string                `gorm:"column:category" json:"category"`
	Image          string                `gorm:"column:image" json:"image,omitempty"`
	WholesalePrice decimal.Decimal       `gorm:"column:wholesale_price;type:numeric(14,2);not null" json:"wholesale_price"`
	SellingPrice   decimal.Decimal       `gorm:"column:selling_price;type:numeric(14,2);not null" json:"selling_price"`
	Quantity       int                   `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Sold           int                   `gorm:"column:sold;not null;default:0" json:"sold"`
	Status         enums.InventoryStatus `gorm:"-" json:"status"`
	Confirmed      bool                  `gorm:"column:confirmed;not null;default:false" json:"confirmed"`
	SKU            *string               `gorm:"column:sku" json:"sku,omitempty"`
	Supplier       *string               `gorm:"column:supplier" json:"supplier,omitempty"`
	ReorderPoint   *int                  `gorm:"column:reorder_point" json:"reorder_point,omitempty"`
	LastRestocked  *time.Time            `gorm:"column:last_restocked" json:"last_restocked,omitempty"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// EffectiveReorderPoint returns the item's reorder point or fallback when unset.
func (i InventoryItem) EffectiveReorderPoint(fallback int) int {
	if i.ReorderPoint != nil {
		return *i.ReorderPoint
	}
	return fallback
}

// DeriveInventoryStatus maps a quantity and reorder point to a stock status.
func DeriveInventoryStatus(quantity, reorderPoint int) enums.InventoryStatus {
	switch {
	case quantity <= 0:
		return enums.InventoryStatusOutOfStock
	case quantity <= reorderPoint:
		return enums.InventoryStatusLowStock
	default:
		return enums.InventoryStatusInStock
	}
}

// Clone returns a deep copy so callers never alias ledger-owned pointers.
func (i InventoryItem) Clone() InventoryItem {
	out := i
	if i.SKU != nil {
		v := *i.SKU
		out.SKU = &v
	}
	if i.Supplier != nil {
		v := *i.Supplier
		out.Supplier = &v
	}
	if i.ReorderPoint != nil {
		v := *i.ReorderPoint
		out.ReorderPoint = &v
	}
	if i.LastRestocked != nil {
		v := *i.LastRestocked
		out.LastRestocked = &v
	}
	return out
}
