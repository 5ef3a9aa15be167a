package payments

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/tommiesfashion/storefront-backend/internal/cart"
	"github.com/tommiesfashion/storefront-backend/internal/orders"
	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/flutterwave"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
	"github.com/tommiesfashion/storefront-backend/pkg/metrics"
)

// Intent is a placed order together with the provider checkout link for it.
type Intent struct {
	Order       *orders.OrderDTO `json:"order"`
	TxRef       string           `json:"tx_ref"`
	PaymentLink string           `json:"payment_link"`
}

// Service drives the pay-for-cart flow end to end.
type Service interface {
	// Initiate places the order first, then asks the provider for a hosted
	// checkout link. If the provider call fails the order is rolled back so
	// no unpaid pending order survives.
	Initiate(ctx context.Context, userID uuid.UUID, lines []cart.Line) (*Intent, error)
}

type orderPlacer interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, lines []cart.Line) (*orders.OrderDTO, error)
}

type orderRemover interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

type stockRestorer interface {
	RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type paymentProvider interface {
	InitiatePayment(ctx context.Context, req flutterwave.PaymentRequest) (*flutterwave.PaymentLink, error)
	RedirectURL() string
	Currency() string
}

type service struct {
	checkout orderPlacer
	orders   orderRemover
	stock    stockRestorer
	users    userFinder
	provider paymentProvider
	logger   *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

// ServiceParams bundles the dependencies required to build a payments service.
type ServiceParams struct {
	Checkout orderPlacer
	Orders   orderRemover
	Stock    stockRestorer
	Users    userFinder
	Provider paymentProvider
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout service is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order remover is required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock restorer is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder is required")
	}
	if params.Provider == nil {
		return nil, fmt.Errorf("payment provider is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		checkout: params.Checkout,
		orders:   params.Orders,
		stock:    params.Stock,
		users:    params.Users,
		provider: params.Provider,
		logger:   params.Logger,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) Initiate(ctx context.Context, userID uuid.UUID, lines []cart.Line) (*Intent, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	order, err := s.checkout.PlaceOrder(ctx, userID, lines)
	if err != nil {
		return nil, err
	}

	txRef := flutterwave.NewTxRef()
	logCtx := s.logger.WithOrderID(ctx, order.ID.String())
	logCtx = s.logger.WithTxRef(logCtx, txRef)

	redirect, err := callbackURL(s.provider.RedirectURL(), txRef, order.ID)
	if err != nil {
		return nil, s.rollback(logCtx, order, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build redirect url"))
	}

	link, err := s.provider.InitiatePayment(ctx, flutterwave.PaymentRequest{
		TxRef:       txRef,
		Amount:      order.TotalAmount,
		Currency:    s.provider.Currency(),
		RedirectURL: redirect,
		Customer: flutterwave.Customer{
			Email: user.Email,
			Name:  user.FullName,
		},
		Customizations: flutterwave.Customizations{
			Title:       "Tommies Fashion",
			Description: fmt.Sprintf("Payment for order %s", order.ID),
		},
	})
	if err != nil {
		s.metrics.IncPaymentFailures()
		return nil, s.rollback(logCtx, order, err)
	}

	s.logger.Info(logCtx, "payment link issued")
	return &Intent{
		Order:       order,
		TxRef:       txRef,
		PaymentLink: link.Link,
	}, nil
}

// rollback undoes the just-placed order after a failed provider call: the
// header and items are deleted, and each line's stock is put back.
func (s *service) rollback(ctx context.Context, order *orders.OrderDTO, cause error) error {
	var cleanup error
	for _, item := range order.Items {
		if err := s.stock.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			cleanup = multierr.Append(cleanup, fmt.Errorf("restore stock for %s: %w", item.ProductID, err))
		}
	}
	if err := s.orders.Delete(ctx, order.ID); err != nil {
		cleanup = multierr.Append(cleanup, fmt.Errorf("delete order: %w", err))
	}

	s.metrics.IncOrdersRolledBack()
	if cleanup != nil {
		s.logger.Error(ctx, "order rollback incomplete", cleanup)
	} else {
		s.logger.Warn(ctx, "order rolled back after payment failure")
	}
	return cause
}

func callbackURL(base, txRef string, orderID uuid.UUID) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("tx_ref", txRef)
	query.Set("order_id", orderID.String())
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
