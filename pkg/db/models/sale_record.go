package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/enums"
)

// SaleLine snapshots what was sold; Name survives later item removal.
type SaleLine struct {
	ItemID           string          `json:"item_id"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	UnitPriceCharged decimal.Decimal `json:"unit_price_charged"`
}

// LineTotal is Quantity x UnitPriceCharged.
func (l SaleLine) LineTotal() decimal.Decimal {
	return l.UnitPriceCharged.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SaleRecord is an append-only sale entry. Only Status may change after creation.
type SaleRecord struct {
	ID              string              `gorm:"column:id;primaryKey" json:"id"`
	Lines           []SaleLine          `gorm:"column:lines;serializer:json" json:"lines"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(14,2)" json:"subtotal"`
	DiscountPercent decimal.Decimal     `gorm:"column:discount_percent;type:numeric(5,2)" json:"discount_percent"`
	DiscountAmount  decimal.Decimal     `gorm:"column:discount_amount;type:numeric(14,2)" json:"discount_amount"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(14,2)" json:"total"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method" json:"payment_method"`
	SoldBy          string              `gorm:"column:sold_by" json:"sold_by"`
	Status          enums.SaleStatus    `gorm:"column:status" json:"status"`
	CreatedAt       time.Time           `gorm:"column:created_at" json:"created_at"`
	CompletedAt     *time.Time          `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (SaleRecord) TableName() string {
	return "sale_records"
}

// ItemCount sums line quantities.
func (s SaleRecord) ItemCount() int {
	total := 0
	for _, line := range s.Lines {
		total += line.Quantity
	}
	return total
}

func (s SaleRecord) Clone() SaleRecord {
	out := s
	out.Lines = append([]SaleLine(nil), s.Lines...)
	if s.CompletedAt != nil {
		v := *s.CompletedAt
		out.CompletedAt = &v
	}
	return out
}
