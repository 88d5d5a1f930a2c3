package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/api/validators"
	"github.com/angelmondragon/backoffice/internal/reports"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// ReportsService computes the read-only dashboards.
type ReportsService interface {
	SalesReport(ctx context.Context, filter reports.SalesFilter) reports.SalesSummary
	StockAlerts(ctx context.Context) []reports.StockAlert
	InventoryValuation(ctx context.Context) reports.Valuation
}

// SalesReport accepts from/to (inclusive/exclusive), sold_by and status filters.
func SalesReport(svc ReportsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !from.IsZero() && !to.IsZero() && !to.After(from) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "to must be after from"))
			return
		}

		filter := reports.SalesFilter{
			From:   from,
			To:     to,
			SoldBy: validators.SanitizeString(r.URL.Query().Get("sold_by"), 128),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseSaleStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale status"))
				return
			}
			filter.Status = status
		}

		responses.WriteSuccess(w, svc.SalesReport(r.Context(), filter))
	}
}

func StockAlerts(svc ReportsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.StockAlerts(r.Context()))
	}
}

func InventoryValuation(svc ReportsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.InventoryValuation(r.Context()))
	}
}
