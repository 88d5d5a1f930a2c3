package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/api/validators"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/pagination"
)

// WithdrawalsService drives the investor withdrawal workflow.
type WithdrawalsService interface {
	ListWithdrawals(ctx context.Context) []models.WithdrawalRecord
	RequestWithdrawal(ctx context.Context, investorID string, amount decimal.Decimal, month string) (*models.WithdrawalRecord, error)
	ApproveWithdrawal(ctx context.Context, id string) (*models.WithdrawalRecord, error)
	CompleteWithdrawal(ctx context.Context, id string) (*models.WithdrawalRecord, error)
	CancelWithdrawal(ctx context.Context, id string) (*models.WithdrawalRecord, error)
}

type withdrawalRequest struct {
	InvestorID string          `json:"investor_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	Month      string          `json:"month" validate:"max=32"`
}

func ListWithdrawals(svc WithdrawalsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := pagination.Paginate(svc.ListWithdrawals(r.Context()), params, func(rec models.WithdrawalRecord) string { return rec.ID })
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func RequestWithdrawal(svc WithdrawalsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body withdrawalRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RequestWithdrawal(r.Context(), strings.TrimSpace(body.InvestorID), body.Amount, strings.TrimSpace(body.Month))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

type withdrawalStep func(ctx context.Context, id string) (*models.WithdrawalRecord, error)

func ApproveWithdrawal(svc WithdrawalsService, logg *logger.Logger) http.HandlerFunc {
	return withdrawalTransition(svc.ApproveWithdrawal, logg)
}

func CompleteWithdrawal(svc WithdrawalsService, logg *logger.Logger) http.HandlerFunc {
	return withdrawalTransition(svc.CompleteWithdrawal, logg)
}

func CancelWithdrawal(svc WithdrawalsService, logg *logger.Logger) http.HandlerFunc {
	return withdrawalTransition(svc.CancelWithdrawal, logg)
}

func withdrawalTransition(step withdrawalStep, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := step(r.Context(), chi.URLParam(r, "withdrawalId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
