package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tommiesfashion/storefront-backend/internal/analytics"
	"github.com/tommiesfashion/storefront-backend/internal/auth"
	"github.com/tommiesfashion/storefront-backend/internal/cart"
	"github.com/tommiesfashion/storefront-backend/internal/notifications"
	"github.com/tommiesfashion/storefront-backend/internal/orders"
	"github.com/tommiesfashion/storefront-backend/internal/payments"
	"github.com/tommiesfashion/storefront-backend/internal/products"
	"github.com/tommiesfashion/storefront-backend/internal/users"
	pkgAuth "github.com/tommiesfashion/storefront-backend/pkg/auth"
	"github.com/tommiesfashion/storefront-backend/pkg/auth/session"
	"github.com/tommiesfashion/storefront-backend/pkg/config"
	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	"github.com/tommiesfashion/storefront-backend/pkg/enums"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
	"github.com/tommiesfashion/storefront-backend/pkg/mailer"
	"github.com/tommiesfashion/storefront-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubProductService struct{}

func (stubProductService) List(ctx context.Context, input products.ListInput) (*products.ListResult, error) {
	return &products.ListResult{}, nil
}

func (stubProductService) Get(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: id}, nil
}

func (stubProductService) Categories(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (stubProductService) Create(ctx context.Context, input products.CreateProductDTO) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) Update(ctx context.Context, id uuid.UUID, input products.UpdateProductDTO) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	return &cart.View{Total: decimal.Zero}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cart.View, error) {
	panic("unimplemented")
}

func (stubCartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cart.View, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*cart.View, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubPaymentService struct{}

func (stubPaymentService) Initiate(ctx context.Context, userID uuid.UUID, lines []cart.Line) (*payments.Intent, error) {
	panic("unimplemented")
}

type stubOrderService struct{}

func (stubOrderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.ListResult, error) {
	return &orders.ListResult{}, nil
}

func (stubOrderService) Get(ctx context.Context, orderID uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) List(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*orders.ListResult, error) {
	return &orders.ListResult{}, nil
}

func (stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

type stubCounter struct{}

func (stubCounter) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

type stubCatalog struct{}

func (stubCatalog) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (stubCatalog) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubAggregator struct{}

func (stubAggregator) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (stubAggregator) SumRevenue(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubAggregator) CountByStatus(ctx context.Context) ([]orders.StatusCount, error) {
	return nil, nil
}

func (stubAggregator) TopProducts(ctx context.Context, limit int) ([]orders.ProductSales, error) {
	return nil, nil
}

type stubSender struct{}

func (stubSender) Send(ctx context.Context, msg mailer.Message) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	notifier, err := notifications.NewService(stubSender{}, logg, nil)
	if err != nil {
		t.Fatalf("build notifier: %v", err)
	}
	analyticsService, err := analytics.NewService(stubCounter{}, stubCatalog{}, stubAggregator{})
	if err != nil {
		t.Fatalf("build analytics service: %v", err)
	}

	return NewRouter(Deps{
		Config:           cfg,
		Logger:           logg,
		DB:               stubPinger{},
		Redis:            nil,
		SessionManager:   stubSessionChecker{},
		AuthService:      stubAuthService{},
		RegisterService:  stubRegisterService{},
		ProductService:   stubProductService{},
		CartService:      stubCartService{},
		PaymentService:   stubPaymentService{},
		Notifier:         notifier,
		OrderService:     stubOrderService{},
		AnalyticsService: analyticsService,
		UserRepo:         users.NewRepository(nil),
	})
}

func TestHealthLiveAlwaysResponds(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestCatalogIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestCartRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed cart got %d", resp.Code)
	}
}

func TestOrdersRejectMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/metrics", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/metrics", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminOrderListRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer order list got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin order list got %d", resp.Code)
	}
}

func TestLoginRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "shopper@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
