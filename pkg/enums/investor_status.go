package enums

// InvestorStatus marks whether an investor still holds an active stake.
type InvestorStatus string

const (
	InvestorStatusActive   InvestorStatus = "active"
	InvestorStatusInactive InvestorStatus = "inactive"
)

var validInvestorStatuses = []InvestorStatus{
	InvestorStatusActive,
	InvestorStatusInactive,
}

func (i InvestorStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvestorStatus.
func (i InvestorStatus) IsValid() bool {
	return isKnown(i, validInvestorStatuses)
}

// ParseInvestorStatus converts raw input into an InvestorStatus.
func ParseInvestorStatus(value string) (InvestorStatus, error) {
	return parseEnum(value, "investor status", validInvestorStatuses)
}
