package backoffice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/internal/inventory"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/angelmondragon/backoffice/pkg/events"
)

// ListInventory returns every item in insertion order.
func (s *Service) ListInventory(_ context.Context) []models.InventoryItem {
	return s.store.Inventory()
}

// AddItem inserts or replaces an item.
func (s *Service) AddItem(ctx context.Context, input inventory.NewItemInput) (*models.InventoryItem, error) {
	started := time.Now()
	change, err := s.inventory.AddItem(ctx, input)
	if err = s.finish(ctx, "add_item", started, err); err != nil {
		return nil, err
	}

	item := change.Item
	s.publish(ctx, events.DomainEvent{
		EventType:     enums.EventItemAdded,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   item.ID,
		Data: events.ItemEvent{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Status:   item.Status,
		},
	})
	if !change.Created {
		s.publishStatusChange(ctx, *change)
	}
	if item.SellingPrice.LessThan(item.WholesalePrice) {
		s.publishPrice(ctx, enums.EventNegativeMargin, item, true)
	}
	s.refreshStockLevels()
	s.committed(ctx, "add_item", map[string]any{"item_id": item.ID, "created": change.Created})
	return &item, nil
}

// RemoveItem hard-deletes an item.
func (s *Service) RemoveItem(ctx context.Context, itemID string) (*models.InventoryItem, error) {
	started := time.Now()
	item, err := s.inventory.RemoveItem(ctx, itemID)
	if err = s.finish(ctx, "remove_item", started, err); err != nil {
		return nil, err
	}
	s.publish(ctx, events.DomainEvent{
		EventType:     enums.EventItemRemoved,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   item.ID,
		Data: events.ItemEvent{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Status:   item.Status,
		},
	})
	s.refreshStockLevels()
	s.committed(ctx, "remove_item", map[string]any{"item_id": item.ID})
	return item, nil
}

// AdjustInventory applies a signed quantity change under reason.
func (s *Service) AdjustInventory(ctx context.Context, itemID string, delta int, reason enums.AdjustmentReason) (*models.InventoryItem, error) {
	started := time.Now()
	change, err := s.inventory.Adjust(ctx, itemID, delta, reason)
	if err = s.finish(ctx, "adjust_inventory", started, err); err != nil {
		return nil, err
	}

	item := change.Item
	s.publish(ctx, events.DomainEvent{
		EventType:     enums.EventStockAdjusted,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   item.ID,
		Data: events.StockAdjustedEvent{
			ItemID:           item.ID,
			Name:             item.Name,
			Reason:           reason,
			Delta:            change.Delta(),
			PreviousQuantity: change.PreviousQuantity,
			Quantity:         item.Quantity,
		},
	})
	s.publishStatusChange(ctx, *change)
	s.refreshStockLevels()
	s.committed(ctx, "adjust_inventory", map[string]any{
		"item_id":  item.ID,
		"delta":    delta,
		"reason":   reason,
		"quantity": item.Quantity,
	})
	return &item, nil
}

// SetPrice updates wholesale and/or selling price. The returned bool is the
// negative-margin warning.
func (s *Service) SetPrice(ctx context.Context, itemID string, wholesale, selling *decimal.Decimal) (*models.InventoryItem, bool, error) {
	started := time.Now()
	change, err := s.inventory.SetPrice(ctx, itemID, wholesale, selling)
	if err = s.finish(ctx, "set_price", started, err); err != nil {
		return nil, false, err
	}

	item := change.Item
	s.publishPrice(ctx, enums.EventPriceChanged, item, change.NegativeMargin)
	if change.NegativeMargin {
		s.publishPrice(ctx, enums.EventNegativeMargin, item, true)
	}
	s.committed(ctx, "set_price", map[string]any{"item_id": item.ID, "negative_margin": change.NegativeMargin})
	return &item, change.NegativeMargin, nil
}

func (s *Service) publishPrice(ctx context.Context, eventType enums.EventType, item models.InventoryItem, negative bool) {
	s.publish(ctx, events.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   item.ID,
		Data: events.PriceChangedEvent{
			ItemID:         item.ID,
			Name:           item.Name,
			WholesalePrice: item.WholesalePrice,
			SellingPrice:   item.SellingPrice,
			NegativeMargin: negative,
		},
	})
}

func (s *Service) publishStatusChange(ctx context.Context, change inventory.Change) {
	if !change.StatusChanged() {
		return
	}
	s.publish(ctx, events.DomainEvent{
		EventType:     enums.EventStockStatusChanged,
		AggregateType: enums.AggregateInventoryItem,
		AggregateID:   change.Item.ID,
		Data: events.StockStatusChangedEvent{
			ItemID:         change.Item.ID,
			Name:           change.Item.Name,
			PreviousStatus: change.PreviousStatus,
			Status:         change.Item.Status,
			Quantity:       change.Item.Quantity,
		},
	})
}
