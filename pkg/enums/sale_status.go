package enums

// SaleStatus tracks whether a sale has settled.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusPending   SaleStatus = "pending"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusCompleted,
	SaleStatusPending,
}

func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	return isKnown(s, validSaleStatuses)
}

// ParseSaleStatus accepts any casing of a known value.
func ParseSaleStatus(value string) (SaleStatus, error) {
	return parseEnum(value, "sale status", validSaleStatuses)
}
