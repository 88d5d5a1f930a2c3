package backoffice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/internal/withdrawals"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/angelmondragon/backoffice/pkg/events"
)

// ListWithdrawals returns every withdrawal in request order.
func (s *Service) ListWithdrawals(_ context.Context) []models.WithdrawalRecord {
	return s.store.Withdrawals()
}

// RequestWithdrawal files a pending withdrawal. An empty month defaults to the
// current one.
func (s *Service) RequestWithdrawal(ctx context.Context, investorID string, amount decimal.Decimal, month string) (*models.WithdrawalRecord, error) {
	started := time.Now()
	record, err := s.withdrawals.Request(ctx, investorID, amount, month)
	if err = s.finish(ctx, "request_withdrawal", started, err); err != nil {
		return nil, err
	}
	s.afterWithdrawal(ctx, enums.EventWithdrawalRequested, *record)
	return record, nil
}

// ApproveWithdrawal moves a pending withdrawal to approved.
func (s *Service) ApproveWithdrawal(ctx context.Context, id string) (*models.WithdrawalRecord, error) {
	return s.transition(ctx, "approve_withdrawal", enums.EventWithdrawalApproved, id, s.withdrawals.Approve)
}

// CompleteWithdrawal moves an approved withdrawal to completed.
func (s *Service) CompleteWithdrawal(ctx context.Context, id string) (*models.WithdrawalRecord, error) {
	return s.transition(ctx, "complete_withdrawal", enums.EventWithdrawalCompleted, id, s.withdrawals.Complete)
}

// CancelWithdrawal deletes a withdrawal that is still pending.
func (s *Service) CancelWithdrawal(ctx context.Context, id string) (*models.WithdrawalRecord, error) {
	started := time.Now()
	record, err := s.withdrawals.Cancel(ctx, id)
	if err = s.finish(ctx, "cancel_withdrawal", started, err); err != nil {
		return nil, err
	}
	s.afterWithdrawal(ctx, enums.EventWithdrawalCancelled, *record)
	return record, nil
}

// WithdrawableBalance is what the investor could request right now.
func (s *Service) WithdrawableBalance(_ context.Context, investorID string) (decimal.Decimal, error) {
	return s.withdrawals.WithdrawableBalance(investorID)
}

func (s *Service) transition(ctx context.Context, operation string, eventType enums.EventType, id string, step func(context.Context, string) (*withdrawals.Transition, error)) (*models.WithdrawalRecord, error) {
	started := time.Now()
	result, err := step(ctx, id)
	if err = s.finish(ctx, operation, started, err); err != nil {
		return nil, err
	}
	record := result.Withdrawal
	if result.Changed {
		s.afterWithdrawal(ctx, eventType, record)
	}
	return &record, nil
}

func (s *Service) afterWithdrawal(ctx context.Context, eventType enums.EventType, record models.WithdrawalRecord) {
	s.metrics.RecordWithdrawal(string(eventType))
	s.publish(ctx, events.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateWithdrawal,
		AggregateID:   record.ID,
		Data: events.WithdrawalEvent{
			WithdrawalID: record.ID,
			InvestorID:   record.InvestorID,
			Amount:       record.Amount,
			Month:        record.Month,
			Status:       record.Status,
		},
	})
	s.committed(ctx, string(eventType), map[string]any{
		"withdrawal_id": record.ID,
		"investor_id":   record.InvestorID,
		"amount":        record.Amount.StringFixed(2),
	})
}
