package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tommiesfashion/storefront-backend/api/middleware"
	cartsvc "github.com/tommiesfashion/storefront-backend/internal/cart"
	"github.com/tommiesfashion/storefront-backend/internal/notifications"
	"github.com/tommiesfashion/storefront-backend/internal/orders"
	"github.com/tommiesfashion/storefront-backend/internal/payments"
	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	"github.com/tommiesfashion/storefront-backend/pkg/enums"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
	"github.com/tommiesfashion/storefront-backend/pkg/mailer"
)

type stubPaymentService struct {
	intent *payments.Intent
	err    error
}

func (s stubPaymentService) Initiate(ctx context.Context, userID uuid.UUID, lines []cartsvc.Line) (*payments.Intent, error) {
	return s.intent, s.err
}

type stubUserFinder struct {
	user *models.User
	err  error
}

func (s stubUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

type recordingSender struct {
	sent []mailer.Message
}

func (s *recordingSender) Send(ctx context.Context, msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func testIntent(userID uuid.UUID) *payments.Intent {
	return &payments.Intent{
		Order: &orders.OrderDTO{
			ID:          uuid.New(),
			UserID:      userID,
			TotalAmount: decimal.NewFromInt(24000),
			Status:      enums.OrderStatusPending,
		},
		TxRef:       "tommies-tx-ref",
		PaymentLink: "https://checkout.flutterwave.com/pay/abc",
	}
}

func TestCheckoutReturnsPaymentLink(t *testing.T) {
	userID := uuid.New()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
	sender := &recordingSender{}
	notifier, err := notifications.NewService(sender, logg, nil)
	if err != nil {
		t.Fatalf("build notifier: %v", err)
	}

	cart := &stubCartService{view: testCartView()}
	handler := Checkout(
		stubPaymentService{intent: testIntent(userID)},
		cart,
		notifier,
		stubUserFinder{user: &models.User{ID: userID, Email: "shopper@example.com", FullName: "Ada Shopper"}},
		logg,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data payments.Intent `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PaymentLink == "" || envelope.Data.TxRef != "tommies-tx-ref" {
		t.Fatalf("unexpected intent: %+v", envelope.Data)
	}

	if cart.clearCalls != 1 {
		t.Fatalf("expected cart cleared once got %d", cart.clearCalls)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one confirmation email got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Body, "Ankara Gown") {
		t.Fatalf("confirmation body missing product name: %s", sender.sent[0].Body)
	}
}

func TestCheckoutProviderFailureLeavesCartIntact(t *testing.T) {
	userID := uuid.New()
	cart := &stubCartService{view: testCartView()}
	handler := Checkout(
		stubPaymentService{err: pkgerrors.New(pkgerrors.CodeDependency, "payment provider unavailable")},
		cart,
		nil,
		stubUserFinder{},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if cart.clearCalls != 0 {
		t.Fatalf("cart must survive a failed checkout, cleared %d times", cart.clearCalls)
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	userID := uuid.New()
	cart := &stubCartService{view: &cartsvc.View{Total: decimal.Zero}}
	handler := Checkout(
		stubPaymentService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")},
		cart,
		nil,
		stubUserFinder{},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
