package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tommiesfashion/storefront-backend/api/controllers"
	"github.com/tommiesfashion/storefront-backend/api/middleware"
	"github.com/tommiesfashion/storefront-backend/internal/analytics"
	"github.com/tommiesfashion/storefront-backend/internal/auth"
	cartsvc "github.com/tommiesfashion/storefront-backend/internal/cart"
	"github.com/tommiesfashion/storefront-backend/internal/notifications"
	ordersvc "github.com/tommiesfashion/storefront-backend/internal/orders"
	"github.com/tommiesfashion/storefront-backend/internal/payments"
	productsvc "github.com/tommiesfashion/storefront-backend/internal/products"
	usersvc "github.com/tommiesfashion/storefront-backend/internal/users"
	"github.com/tommiesfashion/storefront-backend/pkg/auth/session"
	"github.com/tommiesfashion/storefront-backend/pkg/config"
	"github.com/tommiesfashion/storefront-backend/pkg/db"
	"github.com/tommiesfashion/storefront-backend/pkg/enums"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
	"github.com/tommiesfashion/storefront-backend/pkg/metrics"
	"github.com/tommiesfashion/storefront-backend/pkg/redis"
)

type redisPinger interface {
	Ping(ctx context.Context) error
}

type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Deps bundles everything the router hands to its controllers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager session.AccessSessionChecker
	Metrics        *metrics.StorefrontMetrics

	AuthService      auth.Service
	RegisterService  auth.RegisterService
	ProductService   productsvc.Service
	CartService      cartsvc.Service
	PaymentService   payments.Service
	Notifier         *notifications.Service
	OrderService     ordersvc.Service
	AnalyticsService *analytics.Service
	UserRepo         *usersvc.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisOrNil(deps.Redis)))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterOrNil(deps.Redis), logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limiterOrNil(deps.Redis), logg)).
			Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionManager, logg)).
			Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterOrNil(deps.Redis), logg)).
			Post("/login", controllers.AdminAuthLogin(deps.AuthService, logg))
	})

	// Catalog browsing is public.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.ProductService, logg))
		r.Get("/categories", controllers.ProductCategories(deps.ProductService, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.ProductService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(deps.CartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.PaymentService, deps.CartService, deps.Notifier, deps.UserRepo, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.MyOrders(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.MyOrderDetail(deps.OrderService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(deps.UserRepo, logg))
			r.Get("/{userId}", controllers.AdminGetUser(deps.UserRepo, logg))
			r.Put("/{userId}", controllers.AdminUpdateUser(deps.UserRepo, logg))
			r.Delete("/{userId}", controllers.AdminDeleteUser(deps.UserRepo, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.ProductService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(deps.ProductService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.ProductService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.OrderService, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.OrderService, logg))
		})

		r.Get("/metrics", controllers.AdminMetrics(deps.AnalyticsService, logg))
	})

	return r
}

func redisOrNil(client *redis.Client) redisPinger {
	if client == nil {
		return nil
	}
	return client
}

func limiterOrNil(client *redis.Client) rateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}
