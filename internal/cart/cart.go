package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
)

// Line is one product entry in the cart. UnitPrice and StockSnapshot are
// captured at add time so totals stay stable through checkout.
type Line struct {
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Size          string          `json:"size"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockSnapshot int             `json:"stock_snapshot"`
	Quantity      int             `json:"quantity"`
}

// Subtotal returns unit price times quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the ordered cart lines for one session. At most one line
// exists per product id.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add merges the quantity into an existing line or appends a new one.
// A new line must fit within the stock snapshot. Re-adds are capped at
// the snapshot; an add that cannot change the cart because the line is
// already at the cap is a conflict.
func (c *Cart) Add(line Line) error {
	if line.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if line.StockSnapshot <= 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock")
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID != line.ProductID {
			continue
		}
		merged := c.Lines[i].Quantity + line.Quantity
		if merged > c.Lines[i].StockSnapshot {
			merged = c.Lines[i].StockSnapshot
		}
		if merged == c.Lines[i].Quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart already holds the available stock")
		}
		c.Lines[i].Quantity = merged
		return nil
	}

	if line.Quantity > line.StockSnapshot {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity out of range")
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// SetQuantity replaces the quantity of an existing line. The quantity must
// be within [1, stock snapshot].
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if quantity < 1 || quantity > c.Lines[i].StockSnapshot {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity out of range")
		}
		c.Lines[i].Quantity = quantity
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
}

// Remove deletes the line if present. Removing an absent product is a no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Total sums unit price times quantity across all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
