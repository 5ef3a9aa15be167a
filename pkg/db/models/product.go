package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Stock is only mutated by the order
// pipeline's conditional decrement or by administrator edits.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductName   string          `gorm:"column:product_name;not null"`
	Category      string          `gorm:"column:category;not null"`
	Size          string          `gorm:"column:size;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	ImageURLs     pq.StringArray  `gorm:"column:image_urls;type:text[]"`
	Description   *string         `gorm:"column:description"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
