package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tommiesfashion/storefront-backend/internal/orders"
	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
)

// TopProduct is one best seller with its display name resolved.
type TopProduct struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Units       int64     `json:"units"`
}

// Snapshot is the admin dashboard aggregate.
type Snapshot struct {
	TotalUsers     int64                `json:"total_users"`
	TotalProducts  int64                `json:"total_products"`
	TotalOrders    int64                `json:"total_orders"`
	Revenue        decimal.Decimal      `json:"revenue"`
	OrdersByStatus []orders.StatusCount `json:"orders_by_status"`
	TopProducts    []TopProduct         `json:"top_products"`
}

type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

type productCatalog interface {
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type orderAggregator interface {
	Count(ctx context.Context) (int64, error)
	SumRevenue(ctx context.Context) (decimal.Decimal, error)
	CountByStatus(ctx context.Context) ([]orders.StatusCount, error)
	TopProducts(ctx context.Context, limit int) ([]orders.ProductSales, error)
}

// Service assembles storefront-wide aggregates for the admin dashboard.
type Service struct {
	users    userCounter
	products productCatalog
	orders   orderAggregator
}

func NewService(users userCounter, products productCatalog, orderRepo orderAggregator) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user counter is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product catalog is required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order aggregator is required")
	}
	return &Service{users: users, products: products, orders: orderRepo}, nil
}

const topProductLimit = 5

func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{Revenue: decimal.Zero}

	var err error
	if snapshot.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	if snapshot.TotalProducts, err = s.products.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	if snapshot.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	if snapshot.Revenue, err = s.orders.SumRevenue(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}
	if snapshot.OrdersByStatus, err = s.orders.CountByStatus(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "orders by status")
	}

	sales, err := s.orders.TopProducts(ctx, topProductLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "top products")
	}
	for _, sale := range sales {
		top := TopProduct{ProductID: sale.ProductID, Units: sale.Units}
		// A product deleted after being sold still counts, just without a name.
		if product, err := s.products.FindByID(ctx, sale.ProductID); err == nil {
			top.ProductName = product.ProductName
		}
		snapshot.TopProducts = append(snapshot.TopProducts, top)
	}

	return snapshot, nil
}
