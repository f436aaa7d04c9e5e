package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vendorahq/vendora-backend/internal/cart"
	"github.com/vendorahq/vendora-backend/internal/catalog"
	checkoutsvc "github.com/vendorahq/vendora-backend/internal/checkout"
	"github.com/vendorahq/vendora-backend/internal/notifications"
	"github.com/vendorahq/vendora-backend/internal/orders"
	"github.com/vendorahq/vendora-backend/internal/promotions"
	pkgAuth "github.com/vendorahq/vendora-backend/pkg/auth"
	"github.com/vendorahq/vendora-backend/pkg/config"
	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	"github.com/vendorahq/vendora-backend/pkg/logger"
	"github.com/vendorahq/vendora-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubCartService struct{}

func (stubCartService) Validate(context.Context, []cart.ItemInput, string) (*cart.ValidationResult, error) {
	return &cart.ValidationResult{Valid: true}, nil
}

func (stubCartService) Quote(context.Context, []cart.ItemInput, string, bool) (*cart.QuoteResult, error) {
	return &cart.QuoteResult{
		Validation: &cart.ValidationResult{Valid: true},
		Summary:    cart.Summary{TotalItems: 1, SubtotalCents: 1500, GrandTotalCents: 1500},
	}, nil
}

func (stubCartService) SaveCart(context.Context, uuid.UUID, []cart.ItemInput) (*models.CartRecord, error) {
	return &models.CartRecord{}, nil
}

func (stubCartService) GetCart(context.Context, uuid.UUID) (*models.CartRecord, error) {
	return &models.CartRecord{}, nil
}

func (stubCartService) ClearCart(context.Context, uuid.UUID) error { return nil }

type stubCheckoutService struct{}

func (stubCheckoutService) Checkout(context.Context, checkoutsvc.CheckoutInput) (*checkoutsvc.CheckoutResult, error) {
	return &checkoutsvc.CheckoutResult{OrderCount: 1}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(context.Context, catalog.Actor, catalog.CreateProductInput) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubCatalogService) UpdateProduct(context.Context, catalog.Actor, uuid.UUID, catalog.UpdateProductInput) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubCatalogService) SetStock(context.Context, catalog.Actor, uuid.UUID, int) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubCatalogService) SetProductActive(context.Context, catalog.Actor, uuid.UUID, bool) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubCatalogService) GetProduct(context.Context, uuid.UUID) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubCatalogService) ListPublicProducts(context.Context, catalog.ListProductsParams) (*catalog.ProductList, error) {
	return &catalog.ProductList{}, nil
}

func (stubCatalogService) ListVendorProducts(context.Context, catalog.Actor, catalog.ListProductsParams) (*catalog.ProductList, error) {
	return &catalog.ProductList{}, nil
}

func (stubCatalogService) UpsertDeliveryZone(context.Context, catalog.Actor, catalog.UpsertDeliveryZoneInput) (*models.DeliveryZone, error) {
	return &models.DeliveryZone{}, nil
}

func (stubCatalogService) ListDeliveryZones(context.Context, catalog.Actor) ([]models.DeliveryZone, error) {
	return nil, nil
}

func (stubCatalogService) Lines(context.Context, []uuid.UUID) (map[uuid.UUID]catalog.Line, error) {
	return nil, nil
}

func (stubCatalogService) Companies(context.Context, []uuid.UUID) (map[uuid.UUID]catalog.CompanySummary, error) {
	return nil, nil
}

func (stubCatalogService) DeliveryTermsFor(context.Context, uuid.UUID, string) (catalog.DeliveryTerms, error) {
	return catalog.DeliveryTerms{}, nil
}

type stubPromotionsService struct{}

func (stubPromotionsService) Evaluate(context.Context, promotions.LineInput) (promotions.LineResult, error) {
	return promotions.LineResult{}, nil
}

func (stubPromotionsService) EvaluateBundles(context.Context, []promotions.BundleLine, int64, string) ([]promotions.BundleResult, error) {
	return nil, nil
}

func (stubPromotionsService) CreatePromotion(context.Context, promotions.Actor, promotions.CreatePromotionInput) (*models.Promotion, error) {
	return &models.Promotion{}, nil
}

func (stubPromotionsService) UpdatePromotion(context.Context, promotions.Actor, uuid.UUID, promotions.UpdatePromotionInput) (*models.Promotion, error) {
	return &models.Promotion{}, nil
}

func (stubPromotionsService) GetPromotion(context.Context, promotions.Actor, uuid.UUID) (*models.Promotion, error) {
	return &models.Promotion{}, nil
}

func (stubPromotionsService) ListPromotions(context.Context, promotions.Actor, promotions.ListPromotionsParams) (*promotions.PromotionList, error) {
	return &promotions.PromotionList{}, nil
}

func (stubPromotionsService) SetPromotionActive(context.Context, promotions.Actor, uuid.UUID, bool) (*models.Promotion, error) {
	return &models.Promotion{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) UpdateStatus(context.Context, orders.UpdateStatusInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrdersService) BulkUpdateStatus(context.Context, orders.BulkUpdateStatusInput) (*orders.BulkUpdateResult, error) {
	return &orders.BulkUpdateResult{}, nil
}

func (stubOrdersService) AssignDriver(context.Context, orders.AssignDriverInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrdersService) CollectCash(context.Context, orders.CollectCashInput) (*models.CashCollection, error) {
	return &models.CashCollection{}, nil
}

func (stubOrdersService) GetOrder(context.Context, orders.Actor, uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrdersService) ListBuyerOrders(context.Context, uuid.UUID, orders.ListOrdersParams) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) ListVendorOrders(context.Context, orders.Actor, orders.ListOrdersParams) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) ListCashCollections(context.Context, orders.Actor, orders.ListOrdersParams) (*orders.CashCollectionList, error) {
	return &orders.CashCollectionList{}, nil
}

func (stubOrdersService) CancelStalePending(context.Context, time.Time) (int, error) {
	return 0, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(context.Context, uuid.UUID, notifications.ListParams) (*notifications.NotificationList, error) {
	return &notifications.NotificationList{}, nil
}

func (stubNotificationsService) UnreadCount(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubNotificationsService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) PruneRead(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func routerTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{
		Secret:            "router-test-secret",
		Issuer:            "vendora-test",
		ExpirationMinutes: 15,
	}
	cfg.RateLimit = config.RateLimitConfig{
		CheckoutWindow:    time.Minute,
		CheckoutUserLimit: 10,
		CheckoutIPLimit:   30,
	}
	return cfg
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		metrics.NewHTTPMetrics(prometheus.NewRegistry()),
		stubPinger{},
		nil,
		stubCartService{},
		stubCheckoutService{},
		stubCatalogService{},
		stubPromotionsService{},
		stubOrdersService{},
		stubNotificationsService{},
	)
}

func mintToken(t *testing.T, cfg *config.Config, role enums.UserRole, companyID *uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:    uuid.New(),
		Role:      role,
		CompanyID: companyID,
		Zone:      "north",
	})
	require.NoError(t, err)
	return token
}

func TestRouterPublicSurface(t *testing.T) {
	cfg := routerTestConfig()
	router := newTestRouter(t, cfg)

	for _, tc := range []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/healthz/ready", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products", "", http.StatusOK},
		{http.MethodGet, "/api/v1/products/" + uuid.NewString(), "", http.StatusOK},
		{http.MethodPost, "/api/v1/cart/validate", `{"items":[{"productId":"` + uuid.NewString() + `","quantity":1}]}`, http.StatusOK},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCartValidateReturnsSummary(t *testing.T) {
	cfg := routerTestConfig()
	router := newTestRouter(t, cfg)

	body := `{"items":[{"productId":"` + uuid.NewString() + `","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Valid   bool `json:"valid"`
			Summary struct {
				TotalItems      int   `json:"totalItems"`
				GrandTotalCents int64 `json:"grandTotalCents"`
			} `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Data.Valid)
	require.Equal(t, 1, envelope.Data.Summary.TotalItems)
	require.Equal(t, int64(1500), envelope.Data.Summary.GrandTotalCents)
}

func TestRouterRequiresAuth(t *testing.T) {
	cfg := routerTestConfig()
	router := newTestRouter(t, cfg)

	for _, path := range []string{
		"/api/v1/orders",
		"/api/v1/cart",
		"/api/v1/notifications",
		"/api/v1/vendor/orders",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouterRoleGates(t *testing.T) {
	cfg := routerTestConfig()
	router := newTestRouter(t, cfg)

	companyID := uuid.New()
	customer := mintToken(t, cfg, enums.UserRoleCustomer, nil)
	vendor := mintToken(t, cfg, enums.UserRoleVendor, &companyID)
	admin := mintToken(t, cfg, enums.UserRoleAdmin, nil)

	cases := []struct {
		name  string
		token string
		path  string
		want  int
	}{
		{"customer blocked from vendor surface", customer, "/api/v1/vendor/orders", http.StatusForbidden},
		{"vendor allowed on vendor surface", vendor, "/api/v1/vendor/orders", http.StatusOK},
		{"admin allowed on vendor surface", admin, "/api/v1/vendor/orders", http.StatusOK},
		{"vendor blocked from admin surface", vendor, "/api/v1/admin/promotions", http.StatusForbidden},
		{"admin allowed on admin surface", admin, "/api/v1/admin/promotions", http.StatusOK},
		{"customer reads own orders", customer, "/api/v1/orders", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+tc.token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, tc.want, rec.Code, tc.name)
	}
}

func TestRouterCheckoutReturnsCreated(t *testing.T) {
	cfg := routerTestConfig()
	router := newTestRouter(t, cfg)

	token := mintToken(t, cfg, enums.UserRoleCustomer, nil)
	body := `{"items":[{"productId":"` + uuid.NewString() + `","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}
