package enums

// AggregateType names the ledger collection an event refers to.
type AggregateType string

const (
	AggregateInventory     AggregateType = "inventory"
	AggregateInventoryItem AggregateType = "inventory_item"
	AggregateSale          AggregateType = "sale"
	AggregateWithdrawal    AggregateType = "withdrawal"
)

var validAggregateTypes = []AggregateType{
	AggregateInventory,
	AggregateInventoryItem,
	AggregateSale,
	AggregateWithdrawal,
}

// IsValid reports whether the value is a known aggregate type.
func (a AggregateType) IsValid() bool {
	return isKnown(a, validAggregateTypes)
}

// ParseAggregateType converts raw input into AggregateType.
func ParseAggregateType(value string) (AggregateType, error) {
	return parseEnum(value, "aggregate type", validAggregateTypes)
}

// EventType describes what changed in the ledger.
type EventType string

const (
	EventItemAdded           EventType = "item_added"
	EventItemRemoved         EventType = "item_removed"
	EventStockAdjusted       EventType = "stock_adjusted"
	EventStockStatusChanged  EventType = "stock_status_changed"
	EventPriceChanged        EventType = "price_changed"
	EventNegativeMargin      EventType = "negative_margin"
	EventSaleCommitted       EventType = "sale_committed"
	EventSaleCompleted       EventType = "sale_completed"
	EventWithdrawalRequested EventType = "withdrawal_requested"
	EventWithdrawalApproved  EventType = "withdrawal_approved"
	EventWithdrawalCompleted EventType = "withdrawal_completed"
	EventWithdrawalCancelled EventType = "withdrawal_cancelled"
	EventStockAlertDigest    EventType = "stock_alert_digest"
)

var validEventTypes = []EventType{
	EventItemAdded,
	EventItemRemoved,
	EventStockAdjusted,
	EventStockStatusChanged,
	EventPriceChanged,
	EventNegativeMargin,
	EventSaleCommitted,
	EventSaleCompleted,
	EventWithdrawalRequested,
	EventWithdrawalApproved,
	EventWithdrawalCompleted,
	EventWithdrawalCancelled,
	EventStockAlertDigest,
}

// IsValid reports whether the value is a known event type.
func (e EventType) IsValid() bool {
	return isKnown(e, validEventTypes)
}

// ParseEventType converts raw input into EventType.
func ParseEventType(value string) (EventType, error) {
	return parseEnum(value, "event type", validEventTypes)
}
