package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tommiesfashion/storefront-backend/internal/cart"
	"github.com/tommiesfashion/storefront-backend/internal/orders"
	"github.com/tommiesfashion/storefront-backend/internal/products"
	"github.com/tommiesfashion/storefront-backend/pkg/db"
	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	"github.com/tommiesfashion/storefront-backend/pkg/enums"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
	"github.com/tommiesfashion/storefront-backend/pkg/metrics"
)

// Service turns a cart snapshot into a persisted pending order.
type Service interface {
	// PlaceOrder writes the order header, its item snapshots, and the stock
	// decrements in one transaction. Either everything lands or nothing does.
	PlaceOrder(ctx context.Context, userID uuid.UUID, lines []cart.Line) (*orders.OrderDTO, error)
}

type service struct {
	db       *db.Client
	orders   *orders.Repository
	products *products.Repository
	logger   *logger.Logger
	metrics  *metrics.StorefrontMetrics
}

// ServiceParams bundles the dependencies required to build a checkout service.
type ServiceParams struct {
	DB          *db.Client
	OrderRepo   *orders.Repository
	ProductRepo *products.Repository
	Logger      *logger.Logger
	Metrics     *metrics.StorefrontMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:       params.DB,
		orders:   params.OrderRepo,
		products: params.ProductRepo,
		logger:   params.Logger,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []cart.Line) (*orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
	}

	order := &models.Order{
		UserID:      userID,
		TotalAmount: totalOf(lines),
		Status:      enums.OrderStatusPending,
		Items:       itemsOf(lines),
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		productRepo := s.products.WithTx(tx)
		for _, line := range lines {
			applied, err := productRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !applied {
				return pkgerrors.New(
					pkgerrors.CodeConflict,
					fmt.Sprintf("insufficient stock for %s", line.ProductName),
				).WithDetails(map[string]any{"product_id": line.ProductID.String()})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logger.WithOrderID(ctx, order.ID.String())
	logCtx = s.logger.WithUserID(logCtx, userID.String())
	s.logger.Info(logCtx, "order placed")
	s.metrics.IncOrdersPlaced()

	return orders.FromModel(order), nil
}

func totalOf(lines []cart.Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func itemsOf(lines []cart.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.UnitPrice,
		})
	}
	return items
}
