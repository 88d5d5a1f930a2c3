package enums

// AdjustmentReason explains a manual stock movement.
type AdjustmentReason string

const (
	AdjustmentReasonRestock    AdjustmentReason = "restock"
	AdjustmentReasonReturn     AdjustmentReason = "return"
	AdjustmentReasonCorrection AdjustmentReason = "correction"
	AdjustmentReasonDamage     AdjustmentReason = "damage"
	AdjustmentReasonSale       AdjustmentReason = "sale"
)

var validAdjustmentReasons = []AdjustmentReason{
	AdjustmentReasonRestock,
	AdjustmentReasonReturn,
	AdjustmentReasonCorrection,
	AdjustmentReasonDamage,
	AdjustmentReasonSale,
}

func (a AdjustmentReason) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdjustmentReason.
func (a AdjustmentReason) IsValid() bool {
	return isKnown(a, validAdjustmentReasons)
}

// ParseAdjustmentReason converts raw input into an AdjustmentReason.
func ParseAdjustmentReason(value string) (AdjustmentReason, error) {
	return parseEnum(value, "adjustment reason", validAdjustmentReasons)
}
