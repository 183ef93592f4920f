package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

func orderModels() []any {
	return []any{&domain.Provider{}, &domain.Order{}, &domain.OrderItem{}}
}

func seedOrder(t *testing.T, db *gorm.DB, userID string, items []domain.OrderItem) *domain.Order {
	t.Helper()
	o, err := CreateOrder(context.Background(), db, &domain.Order{
		UserID:        userID,
		ProviderID:    "prov-1",
		TotalAmount:   1250.50,
		Currency:      "ARS",
		PaymentMethod: "transferencia",
	}, items)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}

func TestCreateOrder_PersistsAggregateWithPositions(t *testing.T) {
	db := newRepoDB(t, orderModels()...)

	o := seedOrder(t, db, "u1", []domain.OrderItem{
		{Product: "Guantes Nitrilo M", Quantity: 2, Unit: "caja"},
		{Product: "Alcohol 96", Quantity: 6, Unit: "litro"},
	})
	if o.ID == "" || o.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected order: %+v", o)
	}

	got, err := GetOrder(context.Background(), db, o.ID, "u1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Position != 0 || got.Items[0].Product != "Guantes Nitrilo M" {
		t.Fatalf("item order not stable: %+v", got.Items)
	}
	if got.Items[1].Position != 1 || got.Items[1].Product != "Alcohol 96" {
		t.Fatalf("item order not stable: %+v", got.Items)
	}
}

func TestGetOrder_ScopedToOwner(t *testing.T) {
	db := newRepoDB(t, orderModels()...)
	o := seedOrder(t, db, "owner", nil)

	if _, err := GetOrder(context.Background(), db, o.ID, "stranger"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if _, err := GetOrderByID(context.Background(), db, o.ID); err != nil {
		t.Fatalf("GetOrderByID should ignore ownership: %v", err)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := newRepoDB(t, orderModels()...)
	o := seedOrder(t, db, "u1", nil)

	if err := UpdateOrderStatus(context.Background(), db, o.ID, domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	got, err := GetOrderByID(context.Background(), db, o.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.OrderStatusConfirmed {
		t.Fatalf("status not updated: %s", got.Status)
	}

	if err := UpdateOrderStatus(context.Background(), db, "missing", domain.OrderStatusPaid); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOrdersPage_NewestFirst(t *testing.T) {
	db := newRepoDB(t, orderModels()...)

	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{t1, t1.Add(time.Hour), t1.Add(2 * time.Hour)} {
		o := domain.Order{
			ID: string(rune('a' + i)), UserID: "u1", ProviderID: "p",
			PaymentMethod: "efectivo", Status: domain.OrderStatusPending, CreatedAt: ts,
		}
		if err := db.Create(&o).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	total, err := CountOrders(context.Background(), db, "u1")
	if err != nil || total != 3 {
		t.Fatalf("CountOrders: total=%d err=%v", total, err)
	}

	page, err := ListOrdersPage(context.Background(), db, "u1", 0, 2)
	if err != nil {
		t.Fatalf("ListOrdersPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("unexpected page: %+v", page)
	}
}
