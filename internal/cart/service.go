package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type cartStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, userID uuid.UUID, cart *Cart) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// View is the cart transport shape with the derived total.
type View struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// Service exposes per-user cart operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store    cartStore
	products productLoader
}

// NewService constructs a cart service with the provided dependencies.
func NewService(store cartStore, products productLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	line := Line{
		ProductID:     product.ID,
		ProductName:   product.ProductName,
		Size:          product.Size,
		UnitPrice:     product.Price,
		StockSnapshot: product.StockQuantity,
		Quantity:      quantity,
	}
	if err := cart.Add(line); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

func (s *service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Remove(productID)
	if err := s.store.Save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return viewOf(cart), nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return s.store.Clear(ctx, userID)
}

func viewOf(cart *Cart) *View {
	return &View{
		Lines: append([]Line(nil), cart.Lines...),
		Total: cart.Total(),
	}
}
