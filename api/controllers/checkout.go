package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tommiesfashion/storefront-backend/api/middleware"
	"github.com/tommiesfashion/storefront-backend/api/responses"
	cartsvc "github.com/tommiesfashion/storefront-backend/internal/cart"
	"github.com/tommiesfashion/storefront-backend/internal/notifications"
	"github.com/tommiesfashion/storefront-backend/internal/payments"
	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
)

type checkoutUserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Checkout turns the caller's cart into a pending order and hands back the
// provider payment link. The cart is cleared and the confirmation email sent
// only after the order and link both exist.
func Checkout(
	paymentSvc payments.Service,
	cartSvc cartsvc.Service,
	notifier *notifications.Service,
	userRepo checkoutUserFinder,
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if paymentSvc == nil || cartSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		view, err := cartSvc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := paymentSvc.Initiate(r.Context(), userID, view.Lines)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := cartSvc.Clear(r.Context(), userID); err != nil && logg != nil {
			logg.Error(logg.WithOrderID(r.Context(), intent.Order.ID.String()), "clear cart after checkout", err)
		}

		if notifier != nil && userRepo != nil {
			if user, err := userRepo.FindByID(r.Context(), userID); err == nil {
				notifier.SendOrderConfirmation(r.Context(), user, intent.Order, view.Lines)
			}
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}
