package enums

// InventoryStatus is derived from an item's quantity and reorder point.
type InventoryStatus string

const (
	InventoryStatusInStock    InventoryStatus = "in-stock"
	InventoryStatusLowStock   InventoryStatus = "low-stock"
	InventoryStatusOutOfStock InventoryStatus = "out-of-stock"
)

var validInventoryStatuses = []InventoryStatus{
	InventoryStatusInStock,
	InventoryStatusLowStock,
	InventoryStatusOutOfStock,
}

func (s InventoryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InventoryStatus.
func (s InventoryStatus) IsValid() bool {
	return isKnown(s, validInventoryStatuses)
}

// ParseInventoryStatus converts raw input into an InventoryStatus.
func ParseInventoryStatus(value string) (InventoryStatus, error) {
	return parseEnum(value, "inventory status", validInventoryStatuses)
}
