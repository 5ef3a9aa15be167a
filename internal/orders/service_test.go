package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tommiesfashion/storefront-backend/pkg/db/models"
	"github.com/tommiesfashion/storefront-backend/pkg/enums"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate orders: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}

func mustCreateOrder(t *testing.T, repo *Repository, mutate func(o *models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:      uuid.New(),
		TotalAmount: decimal.NewFromInt(24000),
		Status:      enums.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Quantity: 2, PriceAtPurchase: decimal.NewFromInt(12000)},
		},
	}
	if mutate != nil {
		mutate(order)
	}
	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestGetForUserHidesForeignOrders(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, newTestDB(t))
	order := mustCreateOrder(t, repo, nil)
	ctx := context.Background()

	got, err := svc.GetForUser(ctx, order.UserID, order.ID)
	if err != nil {
		t.Fatalf("get own order: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}

	_, err = svc.GetForUser(ctx, uuid.New(), order.ID)
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign order: expected not found, got %v", err)
	}
}

func TestListForUserPaginates(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, newTestDB(t))
	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		created := base.Add(time.Duration(i) * time.Minute)
		mustCreateOrder(t, repo, func(o *models.Order) {
			o.UserID = userID
			o.CreatedAt = created
		})
	}
	mustCreateOrder(t, repo, nil) // someone else's order

	ctx := context.Background()
	seen := map[uuid.UUID]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := svc.ListForUser(ctx, userID, pagination.Params{Limit: 2, Cursor: cursor})
		if err != nil {
			t.Fatalf("page %d: %v", pages, err)
		}
		for _, o := range page.Orders {
			if o.UserID != userID {
				t.Fatalf("leaked foreign order %s", o.ID)
			}
			if seen[o.ID] {
				t.Fatalf("order %s repeated across pages", o.ID)
			}
			seen[o.ID] = true
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	if len(seen) != 5 {
		t.Fatalf("saw %d orders, want 5", len(seen))
	}
	if pages != 3 {
		t.Fatalf("pages = %d, want 3", pages)
	}
}

func TestUpdateStatusEnforcesProgression(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, newTestDB(t))
	order := mustCreateOrder(t, repo, nil)
	ctx := context.Background()

	updated, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if updated.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", updated.Status)
	}

	// No going back.
	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusPending)
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("regression: expected state conflict, got %v", err)
	}

	// Cancel is reachable from any non-terminal state.
	if _, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusShipping)
	domainErr = pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("post-cancel: expected state conflict, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, newTestDB(t))
	order := mustCreateOrder(t, repo, nil)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatus("returned"))
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAggregates(t *testing.T) {
	t.Parallel()

	_, repo := newTestService(t, newTestDB(t))
	ctx := context.Background()

	popular := uuid.New()
	mustCreateOrder(t, repo, func(o *models.Order) {
		o.TotalAmount = decimal.NewFromInt(10000)
		o.Items = []models.OrderItem{{ProductID: popular, Quantity: 3, PriceAtPurchase: decimal.NewFromInt(2000)}}
	})
	mustCreateOrder(t, repo, func(o *models.Order) {
		o.TotalAmount = decimal.NewFromInt(5000)
		o.Status = enums.OrderStatusDelivered
	})
	mustCreateOrder(t, repo, func(o *models.Order) {
		o.TotalAmount = decimal.NewFromInt(99999)
		o.Status = enums.OrderStatusCancelled
	})

	revenue, err := repo.SumRevenue(ctx)
	if err != nil {
		t.Fatalf("sum revenue: %v", err)
	}
	if !revenue.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("revenue = %s, want 15000 (cancelled excluded)", revenue)
	}

	byStatus, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	counts := map[enums.OrderStatus]int64{}
	for _, row := range byStatus {
		counts[row.Status] = row.Count
	}
	if counts[enums.OrderStatusPending] != 1 || counts[enums.OrderStatusDelivered] != 1 || counts[enums.OrderStatusCancelled] != 1 {
		t.Fatalf("unexpected status counts: %v", counts)
	}

	top, err := repo.TopProducts(ctx, 1)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}
	if len(top) != 1 || top[0].ProductID != popular || top[0].Units != 3 {
		t.Fatalf("unexpected top products: %+v", top)
	}
}
