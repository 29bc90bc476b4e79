package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mandibazaar/mandi-backend/api/controllers"
	"github.com/mandibazaar/mandi-backend/api/middleware"
	"github.com/mandibazaar/mandi-backend/internal/ledger"
	"github.com/mandibazaar/mandi-backend/internal/orders"
	"github.com/mandibazaar/mandi-backend/internal/payments"
	"github.com/mandibazaar/mandi-backend/internal/pricing"
	"github.com/mandibazaar/mandi-backend/internal/rbac"
	"github.com/mandibazaar/mandi-backend/internal/windows"
	"github.com/mandibazaar/mandi-backend/pkg/config"
	"github.com/mandibazaar/mandi-backend/pkg/db"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
	"github.com/mandibazaar/mandi-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Registry    prometheus.Gatherer
	Permissions rbac.Checker
	Pricing     pricing.Service
	Ledger      ledger.Service
	Orders      orders.Service
	Windows     windows.Service
	Payments    payments.Service
	Settlement  *windows.SettlementEngine
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	permissions := deps.Permissions
	if permissions == nil {
		permissions = rbac.NewStaticChecker()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	paymentPolicy := middleware.NewRateLimitPolicy("payments", cfg.RateLimit.Window, cfg.RateLimit.IPLimit, cfg.RateLimit.AccountLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.AccountContext(logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/{productId}/quote", controllers.QuoteProduct(deps.Pricing, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.With(middleware.RequirePermission(permissions, rbac.ResourceOrders, rbac.ActionCreate, logg)).
				Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/pending-payments", controllers.PendingPayments(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.With(middleware.RequirePermission(permissions, rbac.ResourceOrders, rbac.ActionPay, logg)).
				Post("/{orderId}/pay", controllers.PayPendingOrder(deps.Orders, logg))
		})

		r.Route("/windows", func(r chi.Router) {
			r.Get("/", controllers.ListWindows(deps.Windows, logg))
			r.With(middleware.RequirePermission(permissions, rbac.ResourceWindows, rbac.ActionCreate, logg)).
				Post("/", controllers.CreateWindow(deps.Windows, logg))
			r.Get("/{windowId}", controllers.WindowDetail(deps.Windows, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.RateLimit(paymentPolicy, deps.Redis, logg))
			r.Get("/", controllers.PaymentHistory(deps.Payments, logg))
			r.Post("/", controllers.InitiatePayment(deps.Payments, logg))
			r.Post("/verify", controllers.VerifyPayment(deps.Payments, logg))
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/balance", controllers.Balance(deps.Ledger, logg))
			r.Get("/entries", controllers.LedgerEntries(deps.Ledger, logg))
		})
	})

	r.Route("/internal/v1", func(r chi.Router) {
		r.Post("/sweep", controllers.TriggerSweep(cfg.Sweep, deps.Settlement, logg))
	})

	return r
}
