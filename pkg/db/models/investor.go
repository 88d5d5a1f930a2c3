package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/enums"
)

// Investor is externally seeded reference data.
type Investor struct {
	ID                  string               `gorm:"column:id;primaryKey" json:"id"`
	Name                string               `gorm:"column:name;not null" json:"name"`
	Email               string               `gorm:"column:email" json:"email"`
	InvestmentAmount    decimal.Decimal      `gorm:"column:investment_amount;type:numeric(14,2);not null" json:"investment_amount"`
	PercentageOwnership decimal.Decimal      `gorm:"column:percentage_ownership;type:numeric(7,6);not null" json:"percentage_ownership"`
	DateInvested        time.Time            `gorm:"column:date_invested" json:"date_invested"`
	Status              enums.InvestorStatus `gorm:"column:status;not null;default:active" json:"status"`
}

func (Investor) TableName() string {
	return "investors"
}

// FinancialRecord is one period's business result.
type FinancialRecord struct {
	Period      string          `gorm:"column:period;primaryKey" json:"period"`
	TotalProfit decimal.Decimal `gorm:"column:total_profit;type:numeric(14,2);not null" json:"total_profit"`
}

func (FinancialRecord) TableName() string {
	return "financial_records"
}
