package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendorahq/vendora-backend/api/controllers"
	"github.com/vendorahq/vendora-backend/api/middleware"
	"github.com/vendorahq/vendora-backend/internal/cart"
	"github.com/vendorahq/vendora-backend/internal/catalog"
	checkoutsvc "github.com/vendorahq/vendora-backend/internal/checkout"
	"github.com/vendorahq/vendora-backend/internal/notifications"
	"github.com/vendorahq/vendora-backend/internal/orders"
	"github.com/vendorahq/vendora-backend/internal/promotions"
	"github.com/vendorahq/vendora-backend/pkg/config"
	"github.com/vendorahq/vendora-backend/pkg/db"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	"github.com/vendorahq/vendora-backend/pkg/logger"
	"github.com/vendorahq/vendora-backend/pkg/metrics"
	"github.com/vendorahq/vendora-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface. Authorization beyond role gating
// lives in the services; middleware here only authenticates, throttles, and
// deduplicates writes.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	dbP db.Pinger,
	redisClient *redis.Client,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	catalogService catalog.Service,
	promotionsService promotions.Service,
	ordersService orders.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutUserLimit,
	)

	var cachePinger redis.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}

	r.Route("/healthz", func(r chi.Router) {
		r.Get("/", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePinger))
	})

	// Public catalog and anonymous cart validation.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Get("/{productID}", controllers.GetProduct(catalogService, logg))
	})
	r.Post("/api/v1/cart/validate", controllers.CartValidate(cartService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/cart", func(r chi.Router) {
			r.Post("/summary", controllers.CartSummary(cartService, logg))
			r.Put("/", controllers.CartSave(cartService, logg))
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		if redisClient != nil {
			r.With(middleware.RateLimit(checkoutPolicy, redisClient, logg)).
				Post("/checkout", controllers.Checkout(checkoutService, logg))
		} else {
			r.Post("/checkout", controllers.Checkout(checkoutService, logg))
		}

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(ordersService, logg))
			r.Get("/{orderID}", controllers.GetOrder(ordersService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.NotificationUnreadCount(notificationsService, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, string(enums.UserRoleVendor), string(enums.UserRoleAdmin)))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.VendorListOrders(ordersService, logg))
				r.Post("/bulk-status", controllers.VendorBulkUpdateStatus(ordersService, logg))
				r.Post("/{orderID}/status", controllers.VendorUpdateOrderStatus(ordersService, logg))
				r.Post("/{orderID}/driver", controllers.VendorAssignDriver(ordersService, logg))
				r.Post("/{orderID}/cash-collection", controllers.VendorCollectCash(ordersService, logg))
			})
			r.Get("/cash-collections", controllers.VendorListCashCollections(ordersService, logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.VendorCreateProduct(catalogService, logg))
				r.Get("/", controllers.VendorListProducts(catalogService, logg))
				r.Get("/{productID}", controllers.VendorGetProduct(catalogService, logg))
				r.Patch("/{productID}", controllers.VendorUpdateProduct(catalogService, logg))
				r.Post("/{productID}/stock", controllers.VendorSetStock(catalogService, logg))
				r.Post("/{productID}/activate", controllers.VendorSetProductActive(catalogService, logg, true))
				r.Post("/{productID}/deactivate", controllers.VendorSetProductActive(catalogService, logg, false))
			})

			r.Route("/delivery-zones", func(r chi.Router) {
				r.Get("/", controllers.VendorListDeliveryZones(catalogService, logg))
				r.Put("/", controllers.VendorUpsertDeliveryZones(catalogService, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, string(enums.UserRoleAdmin)))

			r.Route("/promotions", func(r chi.Router) {
				r.Post("/", controllers.AdminCreatePromotion(promotionsService, logg))
				r.Get("/", controllers.AdminListPromotions(promotionsService, logg))
				r.Get("/{promotionID}", controllers.AdminGetPromotion(promotionsService, logg))
				r.Patch("/{promotionID}", controllers.AdminUpdatePromotion(promotionsService, logg))
				r.Post("/{promotionID}/activate", controllers.AdminSetPromotionActive(promotionsService, logg, true))
				r.Post("/{promotionID}/deactivate", controllers.AdminSetPromotionActive(promotionsService, logg, false))
			})
		})
	})

	return r
}
