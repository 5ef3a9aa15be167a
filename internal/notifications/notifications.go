package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/tommiesfashion/storefront-backend/internal/cart"
	"github.com/tommiesfashion/storefront-backend/internal/orders"
	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
	"github.com/tommiesfashion/storefront-backend/pkg/mailer"
	"github.com/tommiesfashion/storefront-backend/pkg/metrics"
)

// Service sends customer-facing notifications. Every send is best effort:
// a failed email is logged and counted, never returned to the caller.
type Service struct {
	sender  mailer.Sender
	logger  *logger.Logger
	metrics *metrics.StorefrontMetrics
}

func NewService(sender mailer.Sender, logg *logger.Logger, m *metrics.StorefrontMetrics) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{sender: sender, logger: logg, metrics: m}, nil
}

// SendOrderConfirmation emails the customer a summary of their new order.
// The cart lines supply the human-readable product names for the body.
func (s *Service) SendOrderConfirmation(ctx context.Context, user *models.User, order *orders.OrderDTO, lines []cart.Line) {
	if user == nil || order == nil {
		return
	}

	msg := mailer.Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Your Tommies Fashion order %s", shortID(order.ID.String())),
		Body:    confirmationBody(user, order, lines),
	}

	logCtx := s.logger.WithOrderID(ctx, order.ID.String())
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.IncEmailFailures()
		s.logger.Error(logCtx, "order confirmation email failed", err)
		return
	}
	s.logger.Info(logCtx, "order confirmation email sent")
}

func confirmationBody(user *models.User, order *orders.OrderDTO, lines []cart.Line) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.FullName)
	fmt.Fprintf(&b, "Thank you for shopping with Tommies Fashion. We received your order %s.\n\n", order.ID)
	for _, line := range lines {
		fmt.Fprintf(&b, "  - %d x %s at %s\n", line.Quantity, line.ProductName, line.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", order.TotalAmount.StringFixed(2))
	b.WriteString("\nWe will email you again once your order is confirmed.\n")
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
