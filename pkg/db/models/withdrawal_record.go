package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/enums"
)

// WithdrawalRecord is an investor profit withdrawal moving pending -> approved -> completed.
type WithdrawalRecord struct {
	ID             string                 `gorm:"column:id;primaryKey" json:"id"`
	InvestorID     string                 `gorm:"column:investor_id;not null" json:"investor_id"`
	Amount         decimal.Decimal        `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Month          string                 `gorm:"column:month" json:"month"`
	RequestDate    time.Time              `gorm:"column:request_date" json:"request_date"`
	ApprovalDate   *time.Time             `gorm:"column:approval_date" json:"approval_date,omitempty"`
	CompletionDate *time.Time             `gorm:"column:completion_date" json:"completion_date,omitempty"`
	Status         enums.WithdrawalStatus `gorm:"column:status;not null" json:"status"`
}

func (WithdrawalRecord) TableName() string {
	return "withdrawal_records"
}

func (w WithdrawalRecord) Clone() WithdrawalRecord {
	out := w
	if w.ApprovalDate != nil {
		v := *w.ApprovalDate
		out.ApprovalDate = &v
	}
	if w.CompletionDate != nil {
		v := *w.CompletionDate
		out.CompletionDate = &v
	}
	return out
}

// WithdrawalStage orders statuses so transitions can be checked for direction.
func WithdrawalStage(status enums.WithdrawalStatus) int {
	switch status {
	case enums.WithdrawalStatusPending:
		return 0
	case enums.WithdrawalStatusApproved:
		return 1
	case enums.WithdrawalStatusCompleted:
		return 2
	}
	return -1
}
