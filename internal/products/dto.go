package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	"github.com/tommiesfashion/storefront-backend/pkg/pagination"
)

// ProductDTO is the transport shape for catalog listings.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	ProductName   string          `json:"product_name"`
	Category      string          `json:"category"`
	Size          string          `json:"size"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURLs     []string        `json:"image_urls"`
	Description   *string         `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateProductDTO holds the fields needed to persist a new listing.
type CreateProductDTO struct {
	ProductName   string
	Category      string
	Size          string
	Price         decimal.Decimal
	StockQuantity int
	ImageURLs     []string
	Description   *string
}

// UpdateProductDTO carries the admin-editable listing fields.
type UpdateProductDTO struct {
	ProductName   *string
	Category      *string
	Size          *string
	Price         *decimal.Decimal
	StockQuantity *int
	ImageURLs     []string
	Description   *string
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Category    string           `json:"category,omitempty"`
	Size        string           `json:"size,omitempty"`
	PriceMin    *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax    *decimal.Decimal `json:"price_max,omitempty"`
	InStockOnly bool             `json:"in_stock_only,omitempty"`
	Query       string           `json:"q,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter the catalog.
type ListInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ListResult bundles a catalog page with its continuation cursor.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:            p.ID,
		ProductName:   p.ProductName,
		Category:      p.Category,
		Size:          p.Size,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURLs:     append([]string(nil), p.ImageURLs...),
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (c CreateProductDTO) ToModel() *models.Product {
	return &models.Product{
		ProductName:   c.ProductName,
		Category:      c.Category,
		Size:          c.Size,
		Price:         c.Price,
		StockQuantity: c.StockQuantity,
		ImageURLs:     append([]string(nil), c.ImageURLs...),
		Description:   c.Description,
	}
}
