package investors

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/checkout"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// TotalProfitAccrued is the investor's ownership share of every period's profit.
func TotalProfitAccrued(investor models.Investor, records []models.FinancialRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.TotalProfit.Mul(investor.PercentageOwnership))
	}
	return total
}

// ProfitPercentage is accrued profit as a percentage of the amount invested.
// A zero investment yields zero rather than dividing by zero.
func ProfitPercentage(investor models.Investor, accrued decimal.Decimal) decimal.Decimal {
	if investor.InvestmentAmount.IsZero() {
		return decimal.Zero
	}
	return accrued.Div(investor.InvestmentAmount).Mul(hundred)
}

// CurrentValue is the original investment plus accrued profit.
func CurrentValue(investor models.Investor, accrued decimal.Decimal) decimal.Decimal {
	return investor.InvestmentAmount.Add(accrued)
}

// PendingWithdrawals returns the investor's withdrawals still awaiting approval.
func PendingWithdrawals(investorID string, withdrawals []models.WithdrawalRecord) []models.WithdrawalRecord {
	out := make([]models.WithdrawalRecord, 0)
	for _, w := range withdrawals {
		if w.InvestorID == investorID && w.Status == enums.WithdrawalStatusPending {
			out = append(out, w)
		}
	}
	return out
}

// CommittedWithdrawals sums pending, approved and completed withdrawals for
// the investor. This is the amount already claimed against accrued profit.
func CommittedWithdrawals(investorID string, withdrawals []models.WithdrawalRecord) decimal.Decimal {
	total := decimal.Zero
	for _, w := range withdrawals {
		if w.InvestorID != investorID || models.WithdrawalStage(w.Status) < 0 {
			continue
		}
		total = total.Add(w.Amount)
	}
	return total
}

// WithdrawableBalance is accrued profit minus everything already claimed. It
// can be negative when profit figures were revised downward after approval.
func WithdrawableBalance(investor models.Investor, records []models.FinancialRecord, withdrawals []models.WithdrawalRecord) decimal.Decimal {
	return TotalProfitAccrued(investor, records).Sub(CommittedWithdrawals(investor.ID, withdrawals))
}

// Summary is the per-investor read model.
type Summary struct {
	InvestorID          string                    `json:"investor_id"`
	Name                string                    `json:"name"`
	Status              enums.InvestorStatus      `json:"status"`
	InvestmentAmount    decimal.Decimal           `json:"investment_amount"`
	PercentageOwnership decimal.Decimal           `json:"percentage_ownership"`
	TotalProfit         decimal.Decimal           `json:"total_profit"`
	ProfitPercentage    decimal.Decimal           `json:"profit_percentage"`
	CurrentValue        decimal.Decimal           `json:"current_value"`
	WithdrawnAmount     decimal.Decimal           `json:"withdrawn_amount"`
	AvailableBalance    decimal.Decimal           `json:"available_balance"`
	PendingAmount       decimal.Decimal           `json:"pending_amount"`
	PendingWithdrawals  []models.WithdrawalRecord `json:"pending_withdrawals"`
}

// Summarize builds the read model for one investor.
func Summarize(investor models.Investor, records []models.FinancialRecord, withdrawals []models.WithdrawalRecord) Summary {
	accrued := TotalProfitAccrued(investor, records)
	pending := PendingWithdrawals(investor.ID, withdrawals)
	pendingAmount := decimal.Zero
	for _, w := range pending {
		pendingAmount = pendingAmount.Add(w.Amount)
	}
	withdrawn := decimal.Zero
	for _, w := range withdrawals {
		if w.InvestorID == investor.ID && w.Status == enums.WithdrawalStatusCompleted {
			withdrawn = withdrawn.Add(w.Amount)
		}
	}
	committed := CommittedWithdrawals(investor.ID, withdrawals)

	return Summary{
		InvestorID:          investor.ID,
		Name:                investor.Name,
		Status:              investor.Status,
		InvestmentAmount:    investor.InvestmentAmount,
		PercentageOwnership: investor.PercentageOwnership,
		TotalProfit:         accrued.Round(checkout.MoneyPlaces),
		ProfitPercentage:    ProfitPercentage(investor, accrued).Round(checkout.MoneyPlaces),
		CurrentValue:        CurrentValue(investor, accrued).Round(checkout.MoneyPlaces),
		WithdrawnAmount:     withdrawn,
		AvailableBalance:    accrued.Sub(committed).Round(checkout.MoneyPlaces),
		PendingAmount:       pendingAmount,
		PendingWithdrawals:  pending,
	}
}

// Overview aggregates every investor for fleet-level reporting.
type Overview struct {
	Investors            []Summary       `json:"investors"`
	ActiveInvestors      int             `json:"active_investors"`
	TotalInvested        decimal.Decimal `json:"total_invested"`
	TotalOwnership       decimal.Decimal `json:"total_ownership"`
	TotalProfitAccrued   decimal.Decimal `json:"total_profit_accrued"`
	TotalCurrentValue    decimal.Decimal `json:"total_current_value"`
	TotalWithdrawn       decimal.Decimal `json:"total_withdrawn"`
	TotalPending         decimal.Decimal `json:"total_pending"`
	AverageProfitPercent decimal.Decimal `json:"average_profit_percent"`
	BusinessProfitToDate decimal.Decimal `json:"business_profit_to_date"`
}

// BuildOverview summarises every investor in input order.
func BuildOverview(investors []models.Investor, records []models.FinancialRecord, withdrawals []models.WithdrawalRecord) Overview {
	out := Overview{
		Investors:            make([]Summary, 0, len(investors)),
		TotalInvested:        decimal.Zero,
		TotalOwnership:       decimal.Zero,
		TotalProfitAccrued:   decimal.Zero,
		TotalCurrentValue:    decimal.Zero,
		TotalWithdrawn:       decimal.Zero,
		TotalPending:         decimal.Zero,
		AverageProfitPercent: decimal.Zero,
		BusinessProfitToDate: decimal.Zero,
	}
	for _, rec := range records {
		out.BusinessProfitToDate = out.BusinessProfitToDate.Add(rec.TotalProfit)
	}

	for _, inv := range investors {
		summary := Summarize(inv, records, withdrawals)
		out.Investors = append(out.Investors, summary)
		if inv.Status == enums.InvestorStatusActive {
			out.ActiveInvestors++
		}
		out.TotalInvested = out.TotalInvested.Add(inv.InvestmentAmount)
		out.TotalOwnership = out.TotalOwnership.Add(inv.PercentageOwnership)
		out.TotalProfitAccrued = out.TotalProfitAccrued.Add(summary.TotalProfit)
		out.TotalCurrentValue = out.TotalCurrentValue.Add(summary.CurrentValue)
		out.TotalWithdrawn = out.TotalWithdrawn.Add(summary.WithdrawnAmount)
		out.TotalPending = out.TotalPending.Add(summary.PendingAmount)
	}
	if !out.TotalInvested.IsZero() {
		out.AverageProfitPercent = out.TotalProfitAccrued.Div(out.TotalInvested).Mul(hundred).Round(checkout.MoneyPlaces)
	}
	return out
}
