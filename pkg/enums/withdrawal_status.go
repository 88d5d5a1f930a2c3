package enums

// WithdrawalStatus is the lifecycle state of an investor withdrawal.
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusApproved  WithdrawalStatus = "approved"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
)

var validWithdrawalStatuses = []WithdrawalStatus{
	WithdrawalStatusPending,
	WithdrawalStatusApproved,
	WithdrawalStatusCompleted,
}

func (w WithdrawalStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WithdrawalStatus.
func (w WithdrawalStatus) IsValid() bool {
	return isKnown(w, validWithdrawalStatuses)
}

// ParseWithdrawalStatus accepts any casing of a known value.
func ParseWithdrawalStatus(value string) (WithdrawalStatus, error) {
	return parseEnum(value, "withdrawal status", validWithdrawalStatuses)
}
