package notifications

import (
	"context"
	"fmt"

	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/angelmondragon/backoffice/pkg/events"
)

// Consume turns a domain event into a feed entry. It is registered with
// events.Bus.Subscribe.
func (s *Feed) Consume(_ context.Context, event events.Event) {
	title, message, severity, ok := render(event)
	if !ok {
		return
	}
	if event.Message != "" {
		message = event.Message
	}
	n := Notification{
		ID:            event.Envelope.EventID,
		EventType:     event.Type,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Title:         title,
		Message:       message,
		Severity:      severity,
		CreatedAt:     event.Envelope.OccurredAt,
	}
	if event.Envelope.Actor != nil {
		n.ActorID = event.Envelope.Actor.ID
	}
	s.repo.Create(n)
}

func render(event events.Event) (title, message string, severity Severity, ok bool) {
	switch event.Type {
	case enums.EventItemAdded:
		var p events.ItemEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		return "Item added", fmt.Sprintf("%s added with %d in stock.", p.Name, p.Quantity), SeverityInfo, true
	case enums.EventItemRemoved:
		var p events.ItemEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		return "Item removed", fmt.Sprintf("%s was removed from inventory.", p.Name), SeverityInfo, true
	case enums.EventStockAdjusted:
		var p events.StockAdjustedEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		return "Stock adjusted", fmt.Sprintf("%s: %+d (%s), now %d.", p.Name, p.Delta, p.Reason, p.Quantity), SeverityInfo, true
	case enums.EventStockStatusChanged:
		var p events.StockStatusChangedEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		severity := SeverityInfo
		if p.Status != enums.InventoryStatusInStock {
			severity = SeverityWarning
		}
		return "Stock status changed", fmt.Sprintf("%s is now %s (%d left).", p.Name, p.Status, p.Quantity), severity, true
	case enums.EventPriceChanged:
		var p events.PriceChangedEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		return "Price updated", fmt.Sprintf("%s now sells for %s.", p.Name, p.SellingPrice.StringFixed(2)), SeverityInfo, true
	case enums.EventNegativeMargin:
		var p events.PriceChangedEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		return "Negative margin", fmt.Sprintf("%s sells for %s, below its wholesale price of %s.", p.Name, p.SellingPrice.StringFixed(2), p.WholesalePrice.StringFixed(2)), SeverityWarning, true
	case enums.EventSaleCommitted, enums.EventSaleCompleted:
		var p events.SaleEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		title := "Sale recorded"
		if event.Type == enums.EventSaleCompleted {
			title = "Sale completed"
		} else if p.Status == enums.SaleStatusPending {
			title = "Layaway recorded"
		}
		return title, fmt.Sprintf("%d item(s) for %s paid by %s.", p.ItemCount, p.Total.StringFixed(2), p.PaymentMethod), SeverityInfo, true
	case enums.EventWithdrawalRequested, enums.EventWithdrawalApproved, enums.EventWithdrawalCompleted, enums.EventWithdrawalCancelled:
		var p events.WithdrawalEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		return withdrawalTitle(event.Type), fmt.Sprintf("Withdrawal of %s for %s (%s).", p.Amount.StringFixed(2), p.InvestorID, p.Month), SeverityInfo, true
	case enums.EventStockAlertDigest:
		var p events.StockAlertDigestEvent
		if event.Decode(&p) != nil {
			return "", "", "", false
		}
		return "Reorder needed", fmt.Sprintf("%d item(s) low on stock, %d out of stock.", p.LowStock, p.OutOfStock), SeverityWarning, true
	}
	return "", "", "", false
}

func withdrawalTitle(t enums.EventType) string {
	switch t {
	case enums.EventWithdrawalRequested:
		return "Withdrawal requested"
	case enums.EventWithdrawalApproved:
		return "Withdrawal approved"
	case enums.EventWithdrawalCompleted:
		return "Withdrawal completed"
	default:
		return "Withdrawal cancelled"
	}
}
