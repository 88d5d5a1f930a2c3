package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/api/validators"
	"github.com/angelmondragon/backoffice/internal/backoffice"
	"github.com/angelmondragon/backoffice/internal/sales"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/pagination"
)

// SalesService commits and settles sales.
type SalesService interface {
	ListSales(ctx context.Context) []models.SaleRecord
	CommitSale(ctx context.Context, lines []sales.LineInput, discountPercent decimal.Decimal, soldBy string, paymentMethod enums.PaymentMethod) (*models.SaleRecord, error)
	CommitLayaway(ctx context.Context, lines []sales.LineInput, discountPercent decimal.Decimal, soldBy string, paymentMethod enums.PaymentMethod) (*models.SaleRecord, error)
	CompleteSale(ctx context.Context, saleID string) (*models.SaleRecord, error)
}

type saleLineRequest struct {
	ItemID           string          `json:"item_id" validate:"required"`
	Quantity         int             `json:"quantity" validate:"gt=0"`
	UnitPriceCharged decimal.Decimal `json:"unit_price_charged" validate:"gte=0"`
}

type commitSaleRequest struct {
	Lines           []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
	DiscountPercent decimal.Decimal   `json:"discount_percent" validate:"gte=0,lte=100"`
	PaymentMethod   string            `json:"payment_method" validate:"required"`
	SoldBy          string            `json:"sold_by" validate:"max=128"`
	Layaway         bool              `json:"layaway"`
}

func ListSales(svc SalesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := pagination.Paginate(svc.ListSales(r.Context()), params, func(rec models.SaleRecord) string { return rec.ID })
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CommitSale records a cart. The seller defaults to the acting user when the
// body leaves sold_by empty.
func CommitSale(svc SalesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body commitSaleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(body.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		soldBy := validators.SanitizeString(body.SoldBy, 128)
		if soldBy == "" {
			soldBy = backoffice.ActorFrom(r.Context())
		}
		if soldBy == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sold_by is required").WithDetails(map[string]string{"sold_by": "is required"}))
			return
		}

		lines := make([]sales.LineInput, 0, len(body.Lines))
		for _, line := range body.Lines {
			lines = append(lines, sales.LineInput{
				ItemID:           strings.TrimSpace(line.ItemID),
				Quantity:         line.Quantity,
				UnitPriceCharged: line.UnitPriceCharged,
			})
		}

		commit := svc.CommitSale
		if body.Layaway {
			commit = svc.CommitLayaway
		}
		sale, err := commit(r.Context(), lines, body.DiscountPercent, soldBy, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func CompleteSale(svc SalesService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sale, err := svc.CompleteSale(r.Context(), chi.URLParam(r, "saleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}
