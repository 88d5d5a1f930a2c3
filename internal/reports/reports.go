package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
)

// SalesFilter narrows the sales summary. Zero values mean unbounded.
type SalesFilter struct {
	From   time.Time
	To     time.Time
	SoldBy string
	Status enums.SaleStatus
}

func (f SalesFilter) match(sale models.SaleRecord) bool {
	if !f.From.IsZero() && sale.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !sale.CreatedAt.Before(f.To) {
		return false
	}
	if f.SoldBy != "" && sale.SoldBy != f.SoldBy {
		return false
	}
	if f.Status != "" && sale.Status != f.Status {
		return false
	}
	return true
}

// Bucket is a count and net amount for one grouping key.
type Bucket struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// SalesSummary aggregates sale records.
type SalesSummary struct {
	SaleCount       int             `json:"sale_count"`
	ItemsSold       int             `json:"items_sold"`
	PendingCount    int             `json:"pending_count"`
	Gross           decimal.Decimal `json:"gross"`
	Discounts       decimal.Decimal `json:"discounts"`
	Net             decimal.Decimal `json:"net"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	ByPaymentMethod []Bucket        `json:"by_payment_method"`
	BySeller        []Bucket        `json:"by_seller"`
}

// SummarizeSales totals the sales matching filter.
func SummarizeSales(sales []models.SaleRecord, filter SalesFilter) SalesSummary {
	out := SalesSummary{
		Gross:         decimal.Zero,
		Discounts:     decimal.Zero,
		Net:           decimal.Zero,
		AverageTicket: decimal.Zero,
	}
	byMethod := map[string]*Bucket{}
	bySeller := map[string]*Bucket{}

	for _, sale := range sales {
		if !filter.match(sale) {
			continue
		}
		out.SaleCount++
		out.ItemsSold += sale.ItemCount()
		if sale.Status == enums.SaleStatusPending {
			out.PendingCount++
		}
		out.Gross = out.Gross.Add(sale.Subtotal)
		out.Discounts = out.Discounts.Add(sale.DiscountAmount)
		out.Net = out.Net.Add(sale.Total)
		addToBucket(byMethod, string(sale.PaymentMethod), sale.Total)
		addToBucket(bySeller, sale.SoldBy, sale.Total)
	}
	if out.SaleCount > 0 {
		out.AverageTicket = out.Net.Div(decimal.NewFromInt(int64(out.SaleCount))).Round(2)
	}
	out.ByPaymentMethod = sortedBuckets(byMethod)
	out.BySeller = sortedBuckets(bySeller)
	return out
}

func addToBucket(buckets map[string]*Bucket, key string, amount decimal.Decimal) {
	b, ok := buckets[key]
	if !ok {
		b = &Bucket{Key: key, Total: decimal.Zero}
		buckets[key] = b
	}
	b.Count++
	b.Total = b.Total.Add(amount)
}

func sortedBuckets(buckets map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// StockAlert is one item at or below its reorder point.
type StockAlert struct {
	ItemID       string                `json:"item_id"`
	Name         string                `json:"name"`
	Category     string                `json:"category"`
	Quantity     int                   `json:"quantity"`
	ReorderPoint int                   `json:"reorder_point"`
	Status       enums.InventoryStatus `json:"status"`
}

// StockAlerts lists out-of-stock items first, then low-stock, each by quantity.
func StockAlerts(items []models.InventoryItem, defaultReorderPoint int) []StockAlert {
	var out []StockAlert
	for _, item := range items {
		if item.Status == enums.InventoryStatusInStock {
			continue
		}
		out = append(out, StockAlert{
			ItemID:       item.ID,
			Name:         item.Name,
			Category:     item.Category,
			Quantity:     item.Quantity,
			ReorderPoint: item.EffectiveReorderPoint(defaultReorderPoint),
			Status:       item.Status,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status == enums.InventoryStatusOutOfStock
		}
		return out[i].Quantity < out[j].Quantity
	})
	return out
}

// CategoryValuation is stock value for one category.
type CategoryValuation struct {
	Category       string          `json:"category"`
	Units          int             `json:"units"`
	WholesaleValue decimal.Decimal `json:"wholesale_value"`
	RetailValue    decimal.Decimal `json:"retail_value"`
}

// Valuation is the value of stock on hand.
type Valuation struct {
	ItemCount       int                 `json:"item_count"`
	Units           int                 `json:"units"`
	WholesaleValue  decimal.Decimal     `json:"wholesale_value"`
	RetailValue     decimal.Decimal     `json:"retail_value"`
	PotentialMargin decimal.Decimal     `json:"potential_margin"`
	NegativeMargin  []string            `json:"negative_margin_item_ids"`
	ByCategory      []CategoryValuation `json:"by_category"`
}

// ValueInventory prices on-hand stock at wholesale and retail.
func ValueInventory(items []models.InventoryItem) Valuation {
	out := Valuation{
		WholesaleValue:  decimal.Zero,
		RetailValue:     decimal.Zero,
		PotentialMargin: decimal.Zero,
	}
	categories := map[string]*CategoryValuation{}

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		wholesale := item.WholesalePrice.Mul(qty)
		retail := item.SellingPrice.Mul(qty)

		out.ItemCount++
		out.Units += item.Quantity
		out.WholesaleValue = out.WholesaleValue.Add(wholesale)
		out.RetailValue = out.RetailValue.Add(retail)
		if item.SellingPrice.LessThan(item.WholesalePrice) {
			out.NegativeMargin = append(out.NegativeMargin, item.ID)
		}

		c, ok := categories[item.Category]
		if !ok {
			c = &CategoryValuation{Category: item.Category, WholesaleValue: decimal.Zero, RetailValue: decimal.Zero}
			categories[item.Category] = c
		}
		c.Units += item.Quantity
		c.WholesaleValue = c.WholesaleValue.Add(wholesale)
		c.RetailValue = c.RetailValue.Add(retail)
	}
	out.PotentialMargin = out.RetailValue.Sub(out.WholesaleValue)

	out.ByCategory = make([]CategoryValuation, 0, len(categories))
	for _, c := range categories {
		out.ByCategory = append(out.ByCategory, *c)
	}
	sort.Slice(out.ByCategory, func(i, j int) bool { return out.ByCategory[i].Category < out.ByCategory[j].Category })
	return out
}
