package backoffice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/internal/sales"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/angelmondragon/backoffice/pkg/events"
)

// ListSales returns the sales log in commit order.
func (s *Service) ListSales(_ context.Context) []models.SaleRecord {
	return s.store.Sales()
}

// CommitSale records a completed sale and takes its stock atomically.
func (s *Service) CommitSale(ctx context.Context, lines []sales.LineInput, discountPercent decimal.Decimal, soldBy string, paymentMethod enums.PaymentMethod) (*models.SaleRecord, error) {
	return s.commit(ctx, sales.CommitInput{
		Lines:           lines,
		DiscountPercent: discountPercent,
		PaymentMethod:   paymentMethod,
		SoldBy:          soldBy,
	})
}

// CommitLayaway records a pending sale. Stock is reserved at once; the sale
// is settled later through CompleteSale.
func (s *Service) CommitLayaway(ctx context.Context, lines []sales.LineInput, discountPercent decimal.Decimal, soldBy string, paymentMethod enums.PaymentMethod) (*models.SaleRecord, error) {
	return s.commit(ctx, sales.CommitInput{
		Lines:           lines,
		DiscountPercent: discountPercent,
		PaymentMethod:   paymentMethod,
		SoldBy:          soldBy,
		Pending:         true,
	})
}

func (s *Service) commit(ctx context.Context, input sales.CommitInput) (*models.SaleRecord, error) {
	started := time.Now()
	result, err := s.sales.CommitSale(ctx, input)
	if err = s.finish(ctx, "commit_sale", started, err); err != nil {
		return nil, err
	}

	sale := result.Sale
	s.metrics.RecordSale(string(sale.PaymentMethod), sale.Total.InexactFloat64(), sale.ItemCount())
	s.publishSale(ctx, enums.EventSaleCommitted, sale)
	for _, change := range result.StatusChanges() {
		s.publishStatusChange(ctx, change)
	}
	s.refreshStockLevels()
	s.committed(ctx, "commit_sale", map[string]any{
		"sale_id": sale.ID,
		"total":   sale.Total.StringFixed(2),
		"items":   sale.ItemCount(),
		"status":  sale.Status,
	})
	return &sale, nil
}

// CompleteSale settles a pending sale. Completing twice is a no-op.
func (s *Service) CompleteSale(ctx context.Context, saleID string) (*models.SaleRecord, error) {
	started := time.Now()
	sale, changed, err := s.sales.CompleteSale(ctx, saleID)
	if err = s.finish(ctx, "complete_sale", started, err); err != nil {
		return nil, err
	}
	if changed {
		s.publishSale(ctx, enums.EventSaleCompleted, *sale)
		s.committed(ctx, "complete_sale", map[string]any{"sale_id": sale.ID})
	}
	return sale, nil
}

func (s *Service) publishSale(ctx context.Context, eventType enums.EventType, sale models.SaleRecord) {
	s.publish(ctx, events.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Data: events.SaleEvent{
			SaleID:        sale.ID,
			Total:         sale.Total,
			ItemCount:     sale.ItemCount(),
			PaymentMethod: sale.PaymentMethod,
			SoldBy:        sale.SoldBy,
			Status:        sale.Status,
		},
	})
}
