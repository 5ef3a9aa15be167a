package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
)

func testLine(productID uuid.UUID, price int64, stock, qty int) Line {
	return Line{
		ProductID:     productID,
		ProductName:   "Test Item",
		Size:          "M",
		UnitPrice:     decimal.NewFromInt(price),
		StockSnapshot: stock,
		Quantity:      qty,
	}
}

func TestTotalSumsLines(t *testing.T) {
	cart := &Cart{}
	if err := cart.Add(testLine(uuid.New(), 12000, 3, 2)); err != nil {
		t.Fatalf("add first line: %v", err)
	}
	if err := cart.Add(testLine(uuid.New(), 500, 10, 3)); err != nil {
		t.Fatalf("add second line: %v", err)
	}

	want := decimal.NewFromInt(12000*2 + 500*3)
	if !cart.Total().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, cart.Total())
	}
}

func TestAddMergesAndCapsAtStock(t *testing.T) {
	productID := uuid.New()
	cart := &Cart{}

	if err := cart.Add(testLine(productID, 100, 5, 3)); err != nil {
		t.Fatalf("initial add: %v", err)
	}
	if err := cart.Add(testLine(productID, 100, 5, 4)); err != nil {
		t.Fatalf("merge add: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected single merged line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("expected quantity capped at stock 5, got %d", cart.Lines[0].Quantity)
	}

	err := cart.Add(testLine(productID, 100, 5, 1))
	if err == nil {
		t.Fatal("expected conflict when already at stock cap")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("capped add must not mutate, got %d", cart.Lines[0].Quantity)
	}
}

func TestAddRejectsInvalidQuantity(t *testing.T) {
	cart := &Cart{}
	for _, qty := range []int{0, -1} {
		err := cart.Add(testLine(uuid.New(), 100, 5, qty))
		if err == nil {
			t.Fatalf("expected validation error for qty %d", qty)
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("unexpected error for qty %d: %v", qty, err)
		}
	}
	err := cart.Add(testLine(uuid.New(), 100, 3, 5))
	if err == nil {
		t.Fatal("expected validation error for qty above stock")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error for qty above stock: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("invalid adds must not mutate the cart")
	}
}

func TestAddRejectsOutOfStockProduct(t *testing.T) {
	cart := &Cart{}
	err := cart.Add(testLine(uuid.New(), 100, 0, 1))
	if err == nil {
		t.Fatal("expected conflict for out-of-stock product")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetQuantityBounds(t *testing.T) {
	productID := uuid.New()
	cart := &Cart{}
	if err := cart.Add(testLine(productID, 100, 4, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := cart.SetQuantity(productID, 4); err != nil {
		t.Fatalf("set to stock cap: %v", err)
	}
	if cart.Lines[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", cart.Lines[0].Quantity)
	}

	for _, qty := range []int{0, 5} {
		if err := cart.SetQuantity(productID, qty); err == nil {
			t.Fatalf("expected range error for qty %d", qty)
		}
	}

	if err := cart.SetQuantity(uuid.New(), 1); err == nil {
		t.Fatal("expected not found for absent product")
	}
}

func TestRemoveAndClear(t *testing.T) {
	productID := uuid.New()
	cart := &Cart{}
	if err := cart.Add(testLine(productID, 100, 3, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.Add(testLine(uuid.New(), 200, 3, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart.Remove(productID)
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line after remove, got %d", len(cart.Lines))
	}

	// removing an absent product is a no-op
	cart.Remove(uuid.New())
	if len(cart.Lines) != 1 {
		t.Fatalf("remove of absent product must not mutate")
	}

	cart.Clear()
	if !cart.IsEmpty() {
		t.Fatal("expected empty cart after clear")
	}
	if !cart.Total().Equal(decimal.Zero) {
		t.Fatalf("expected zero total, got %s", cart.Total())
	}
}
