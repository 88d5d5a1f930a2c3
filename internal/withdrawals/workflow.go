package withdrawals

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/internal/investors"
	"github.com/angelmondragon/backoffice/internal/ledger"
	"github.com/angelmondragon/backoffice/pkg/clock"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
)

// MonthLayout is the label applied when a request names no month.
const MonthLayout = "2006-01"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *ledger.Tx) error) error
	View(fn func(tx *ledger.ReadTx) error) error
}

// Workflow drives withdrawals through pending -> approved -> completed.
// Repeating a transition that already happened is a successful no-op.
type Workflow struct {
	runner txRunner
	clock  clock.Clock
	newID  func() string
}

func NewWorkflow(runner txRunner, clk clock.Clock) (*Workflow, error) {
	if runner == nil {
		return nil, fmt.Errorf("ledger tx runner required")
	}
	return &Workflow{runner: runner, clock: clock.OrSystem(clk), newID: uuid.NewString}, nil
}

// Transition is the outcome of Approve or Complete. Changed is false when the
// record was already in the target state.
type Transition struct {
	Withdrawal models.WithdrawalRecord
	Changed    bool
}

// Request creates a pending withdrawal when amount fits the investor's
// withdrawable balance at this moment. Later profit revisions never
// invalidate it.
func (w *Workflow) Request(ctx context.Context, investorID string, amount decimal.Decimal, month string) (*models.WithdrawalRecord, error) {
	investorID = strings.TrimSpace(investorID)
	if investorID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "investor id is required")
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be positive").WithDetails(map[string]any{
			"amount": amount.String(),
		})
	}
	month = strings.TrimSpace(month)
	if month == "" {
		month = w.clock.Now().Format(MonthLayout)
	}

	var out *models.WithdrawalRecord
	err := w.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		investor, err := tx.Investor(investorID)
		if err != nil {
			return err
		}
		available := investors.WithdrawableBalance(*investor, tx.FinancialRecords(), tx.Withdrawals())
		if amount.GreaterThan(available) {
			return pkgerrors.New(pkgerrors.CodeOverWithdrawal, "withdrawal exceeds available balance").WithDetails(map[string]any{
				"investor_id": investorID,
				"requested":   amount.String(),
				"available":   decimal.Max(available, decimal.Zero).String(),
			})
		}
		out, err = tx.AppendWithdrawalRecord(models.WithdrawalRecord{
			ID:          w.newID(),
			InvestorID:  investorID,
			Amount:      amount,
			Month:       month,
			RequestDate: w.clock.Now(),
			Status:      enums.WithdrawalStatusPending,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Approve moves pending -> approved and stamps the approval date.
func (w *Workflow) Approve(ctx context.Context, id string) (*Transition, error) {
	return w.advance(ctx, id, enums.WithdrawalStatusApproved)
}

// Complete moves approved -> completed and stamps the completion date.
func (w *Workflow) Complete(ctx context.Context, id string) (*Transition, error) {
	return w.advance(ctx, id, enums.WithdrawalStatusCompleted)
}

// Cancel deletes a withdrawal that has not been approved yet.
func (w *Workflow) Cancel(ctx context.Context, id string) (*models.WithdrawalRecord, error) {
	var out *models.WithdrawalRecord
	err := w.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = tx.DeleteWithdrawalRecord(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithdrawableBalance reports what the investor could request right now.
func (w *Workflow) WithdrawableBalance(investorID string) (decimal.Decimal, error) {
	balance := decimal.Zero
	err := w.runner.View(func(tx *ledger.ReadTx) error {
		investor, err := tx.Investor(investorID)
		if err != nil {
			return err
		}
		balance = investors.WithdrawableBalance(*investor, tx.FinancialRecords(), tx.Withdrawals())
		return nil
	})
	return balance, err
}

func (w *Workflow) advance(ctx context.Context, id string, target enums.WithdrawalStatus) (*Transition, error) {
	var out *Transition
	err := w.runner.WithTx(ctx, func(tx *ledger.Tx) error {
		current, err := tx.Withdrawal(id)
		if err != nil {
			return err
		}

		from := models.WithdrawalStage(current.Status)
		to := models.WithdrawalStage(target)
		switch {
		case from == to:
			out = &Transition{Withdrawal: *current}
			return nil
		case to != from+1:
			return pkgerrors.Newf(pkgerrors.CodeInvalidTransition, "withdrawal cannot move from %s to %s", current.Status, target).WithDetails(map[string]any{
				"withdrawal_id": current.ID,
				"from":          current.Status,
				"to":            target,
			})
		}

		now := w.clock.Now()
		updated, err := tx.UpdateWithdrawalRecord(id, func(rec *models.WithdrawalRecord) {
			rec.Status = target
			switch target {
			case enums.WithdrawalStatusApproved:
				rec.ApprovalDate = &now
			case enums.WithdrawalStatusCompleted:
				rec.CompletionDate = &now
			}
		})
		if err != nil {
			return err
		}
		out = &Transition{Withdrawal: *updated, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
