package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/backoffice/api/responses"
	"github.com/angelmondragon/backoffice/api/validators"
	"github.com/angelmondragon/backoffice/internal/inventory"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/angelmondragon/backoffice/pkg/logger"
)

// InventoryService is the catalogue surface of the back office.
type InventoryService interface {
	ListInventory(ctx context.Context) []models.InventoryItem
	AddItem(ctx context.Context, input inventory.NewItemInput) (*models.InventoryItem, error)
	RemoveItem(ctx context.Context, itemID string) (*models.InventoryItem, error)
	AdjustInventory(ctx context.Context, itemID string, delta int, reason enums.AdjustmentReason) (*models.InventoryItem, error)
	SetPrice(ctx context.Context, itemID string, wholesale, selling *decimal.Decimal) (*models.InventoryItem, bool, error)
}

type addItemRequest struct {
	ID             string          `json:"id" validate:"max=64"`
	Name           string          `json:"name" validate:"required,max=200"`
	Category       string          `json:"category" validate:"max=100"`
	Image          string          `json:"image" validate:"max=2048"`
	WholesalePrice decimal.Decimal `json:"wholesale_price" validate:"gte=0"`
	SellingPrice   decimal.Decimal `json:"selling_price" validate:"gte=0"`
	Quantity       int             `json:"quantity" validate:"gte=0"`
	Confirmed      bool            `json:"confirmed"`
	SKU            *string         `json:"sku" validate:"omitempty,max=64"`
	Supplier       *string         `json:"supplier" validate:"omitempty,max=200"`
	ReorderPoint   *int            `json:"reorder_point" validate:"omitempty,gte=0"`
}

type adjustRequest struct {
	Delta  int    `json:"delta" validate:"ne=0"`
	Reason string `json:"reason" validate:"required"`
}

type priceRequest struct {
	WholesalePrice *decimal.Decimal `json:"wholesale_price"`
	SellingPrice   *decimal.Decimal `json:"selling_price"`
}

type priceResponse struct {
	Item           *models.InventoryItem `json:"item"`
	NegativeMargin bool                  `json:"negative_margin"`
}

func ListInventory(svc InventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.ListInventory(r.Context()))
	}
}

func AddInventoryItem(svc InventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), inventory.NewItemInput{
			ID:             strings.TrimSpace(body.ID),
			Name:           validators.SanitizeString(body.Name, 200),
			Category:       validators.SanitizeString(body.Category, 100),
			Image:          strings.TrimSpace(body.Image),
			WholesalePrice: body.WholesalePrice,
			SellingPrice:   body.SellingPrice,
			Quantity:       body.Quantity,
			Confirmed:      body.Confirmed,
			SKU:            body.SKU,
			Supplier:       body.Supplier,
			ReorderPoint:   body.ReorderPoint,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func RemoveInventoryItem(svc InventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.RemoveItem(r.Context(), chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func AdjustInventoryItem(svc InventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body adjustRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := enums.ParseAdjustmentReason(strings.TrimSpace(body.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid adjustment reason"))
			return
		}

		item, err := svc.AdjustInventory(r.Context(), chi.URLParam(r, "itemId"), body.Delta, reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func SetInventoryPrice(svc InventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body priceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.WholesalePrice == nil && body.SellingPrice == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "wholesale_price or selling_price is required"))
			return
		}

		item, negative, err := svc.SetPrice(r.Context(), chi.URLParam(r, "itemId"), body.WholesalePrice, body.SellingPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, priceResponse{Item: item, NegativeMargin: negative})
	}
}
