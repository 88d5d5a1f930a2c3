package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/backoffice/api/controllers"
	"github.com/angelmondragon/backoffice/api/middleware"
	"github.com/angelmondragon/backoffice/internal/backoffice"
	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
	pkgredis "github.com/angelmondragon/backoffice/pkg/redis"
)

// Deps carries the optional infrastructure the router exposes. Leave a field
// nil (not a typed nil) to disable the feature behind it.
type Deps struct {
	Idempotency pkgredis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	Readiness   map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svc *backoffice.Service, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Use(middleware.Idempotency(deps.Idempotency, cfg.Idempotency, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventory(svc, logg))
			r.Post("/", controllers.AddInventoryItem(svc, logg))
			r.Delete("/{itemId}", controllers.RemoveInventoryItem(svc, logg))
			r.Post("/{itemId}/adjust", controllers.AdjustInventoryItem(svc, logg))
			r.Patch("/{itemId}/price", controllers.SetInventoryPrice(svc, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(svc, logg))
			r.Post("/", controllers.CommitSale(svc, logg))
			r.Post("/{saleId}/complete", controllers.CompleteSale(svc, logg))
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", controllers.ListWithdrawals(svc, logg))
			r.Post("/", controllers.RequestWithdrawal(svc, logg))
			r.Post("/{withdrawalId}/approve", controllers.ApproveWithdrawal(svc, logg))
			r.Post("/{withdrawalId}/complete", controllers.CompleteWithdrawal(svc, logg))
			r.Post("/{withdrawalId}/cancel", controllers.CancelWithdrawal(svc, logg))
		})

		r.Route("/investors", func(r chi.Router) {
			r.Get("/overview", controllers.InvestorOverview(svc, logg))
			r.Get("/{investorId}/summary", controllers.InvestorSummary(svc, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", controllers.SalesReport(svc, logg))
			r.Get("/stock-alerts", controllers.StockAlerts(svc, logg))
			r.Get("/valuation", controllers.InventoryValuation(svc, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svc.Notifications(), logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svc.Notifications(), logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications(), logg))
		})
	})

	return r
}
