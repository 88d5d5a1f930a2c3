package backoffice

import (
	"context"

	"github.com/angelmondragon/backoffice/internal/investors"
	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/internal/reports"
	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/angelmondragon/backoffice/pkg/events"
)

// GetInvestorSummary computes an investor's profit, value and pending
// withdrawals from one consistent view of the ledger.
func (s *Service) GetInvestorSummary(_ context.Context, investorID string) (*investors.Summary, error) {
	var out investors.Summary
	err := s.store.View(func(tx *ledger.ReadTx) error {
		investor, err := tx.Investor(investorID)
		if err != nil {
			return err
		}
		out = investors.Summarize(*investor, tx.FinancialRecords(), tx.Withdrawals())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InvestorOverview summarises every investor plus fleet totals.
func (s *Service) InvestorOverview(_ context.Context) investors.Overview {
	snap := s.store.Snapshot()
	return investors.BuildOverview(snap.Investors, snap.FinancialRecords, snap.Withdrawals)
}

// SalesReport totals the sales log under filter.
func (s *Service) SalesReport(_ context.Context, filter reports.SalesFilter) reports.SalesSummary {
	return reports.SummarizeSales(s.store.Sales(), filter)
}

// StockAlerts lists items at or below their reorder point.
func (s *Service) StockAlerts(_ context.Context) []reports.StockAlert {
	return reports.StockAlerts(s.store.Inventory(), s.store.DefaultReorderPoint())
}

// InventoryValuation prices on-hand stock.
func (s *Service) InventoryValuation(_ context.Context) reports.Valuation {
	return reports.ValueInventory(s.store.Inventory())
}

// PublishStockDigest refreshes the stock gauges and, when any item needs
// reordering, publishes one digest event for the notification feed.
func (s *Service) PublishStockDigest(ctx context.Context) []reports.StockAlert {
	s.refreshStockLevels()
	alerts := s.StockAlerts(ctx)
	if len(alerts) == 0 {
		return alerts
	}
	digest := events.StockAlertDigestEvent{ItemIDs: make([]string, 0, len(alerts))}
	for _, alert := range alerts {
		if alert.Status == enums.InventoryStatusOutOfStock {
			digest.OutOfStock++
		} else {
			digest.LowStock++
		}
		digest.ItemIDs = append(digest.ItemIDs, alert.ItemID)
	}
	s.publish(ctx, events.DomainEvent{
		EventType:     enums.EventStockAlertDigest,
		AggregateType: enums.AggregateInventory,
		Data:          digest,
	})
	return alerts
}
