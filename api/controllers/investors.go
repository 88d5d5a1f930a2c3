package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/internal/investors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// InvestorsService serves the investor read models.
type InvestorsService interface {
	GetInvestorSummary(ctx context.Context, investorID string) (*investors.Summary, error)
	InvestorOverview(ctx context.Context) investors.Overview
}

func InvestorOverview(svc InvestorsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.InvestorOverview(r.Context()))
	}
}

func InvestorSummary(svc InvestorsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.GetInvestorSummary(r.Context(), chi.URLParam(r, "investorId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
