package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// ReferenceData is the externally owned, read-only input the ledger needs
// before it can answer investor questions.
type ReferenceData struct {
	Investors        []models.Investor
	FinancialRecords []models.FinancialRecord
}

// SeedReferenceData replaces investors and financial records after validating
// them. Withdrawals referencing investors that disappear are left untouched.
func (s *Store) SeedReferenceData(data ReferenceData) error {
	investors, order, err := validateInvestors(data.Investors)
	if err != nil {
		return err
	}
	financials, err := validateFinancials(data.FinancialRecords)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.investors = investors
	s.investorOrder = order
	s.financials = financials
	return nil
}

var one = decimal.NewFromInt(1)

func validateInvestors(in []models.Investor) (map[string]models.Investor, []string, error) {
	out := make(map[string]models.Investor, len(in))
	order := make([]string, 0, len(in))
	total := decimal.Zero

	for _, inv := range in {
		inv.ID = normalizeID(inv.ID)
		details := map[string]any{"investor_id": inv.ID}
		if inv.ID == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "investor id is required")
		}
		if _, dup := out[inv.ID]; dup {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "duplicate investor %q", inv.ID).WithDetails(details)
		}
		if !inv.InvestmentAmount.IsPositive() {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "investment amount must be positive").WithDetails(details)
		}
		if !inv.PercentageOwnership.IsPositive() || inv.PercentageOwnership.GreaterThan(one) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage ownership must be in (0, 1]").WithDetails(details)
		}
		if inv.Status == "" {
			inv.Status = enums.InvestorStatusActive
		}
		if !inv.Status.IsValid() {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid investor status %q", inv.Status).WithDetails(details)
		}
		total = total.Add(inv.PercentageOwnership)
		out[inv.ID] = inv
		order = append(order, inv.ID)
	}

	if total.GreaterThan(one) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "aggregate ownership exceeds 100%").WithDetails(map[string]any{
			"total_ownership": total.String(),
		})
	}
	return out, order, nil
}

func validateFinancials(in []models.FinancialRecord) ([]models.FinancialRecord, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.FinancialRecord, 0, len(in))
	for _, rec := range in {
		if rec.Period == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "financial record period is required")
		}
		if _, dup := seen[rec.Period]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "duplicate financial period %q", rec.Period)
		}
		seen[rec.Period] = struct{}{}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) investorsLocked() []models.Investor {
	out := make([]models.Investor, 0, len(s.investorOrder))
	for _, id := range s.investorOrder {
		out = append(out, s.investors[id])
	}
	return out
}

func (s *Store) investorLocked(id string) (*models.Investor, error) {
	inv, ok := s.investors[normalizeID(id)]
	if !ok {
		return nil, investorNotFound(id)
	}
	return &inv, nil
}

func (s *Store) financialsLocked() []models.FinancialRecord {
	return append([]models.FinancialRecord(nil), s.financials...)
}

func investorNotFound(id string) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "investor %q not found", id).WithDetails(map[string]any{"investor_id": id})
}
