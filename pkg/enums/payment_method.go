package enums

// PaymentMethod describes how a customer settled a sale.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodTransfer,
}

func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	return isKnown(p, validPaymentMethods)
}

// ParsePaymentMethod accepts any casing of a known value.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parseEnum(value, "payment method", validPaymentMethods)
}
