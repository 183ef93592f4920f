package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
	"github.com/gastropedido/go-orders-backend/internal/repo"
)

// newServiceDB opens a throwaway sqlite database with the full schema.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// fakeSender records outbound sends and lets tests inject failures.
type fakeSender struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	To   string
	Body string
}

func (f *fakeSender) SendText(_ context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return "wamid.fake." + to, nil
}

func seedProvider(t *testing.T, db *gorm.DB, userID, name, phone string) *domain.Provider {
	t.Helper()
	p, err := repo.CreateProvider(context.Background(), db, userID, name, phone)
	if err != nil {
		t.Fatalf("CreateProvider: %v", err)
	}
	return p
}

func TestOrderService_Create(t *testing.T) {
	db := newServiceDB(t)
	svc := NewOrderService(db, &fakeSender{})
	p := seedProvider(t, db, "u1", "Distribuidora Sur", "5491155550001")

	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	o, err := svc.Create(context.Background(), "u1", CreateOrderInput{
		ProviderID: p.ID,
		Items: []OrderItemInput{
			{Product: "Guantes Nitrilo M", Quantity: 2, Unit: "caja", UnitPrice: 500},
			{Product: "Alcohol 96", Quantity: 6.5, Unit: "litro", UnitPrice: 38.54},
		},
		DeliveryDate:  &date,
		DeliveryTimes: []string{"15:00", " 18:00 "},
		PaymentMethod: "transferencia",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.Status != domain.OrderStatusPending {
		t.Fatalf("status = %q, want pending", o.Status)
	}
	if o.Currency != "ARS" {
		t.Fatalf("currency = %q, want default ARS", o.Currency)
	}
	wantTotal := 2*500 + 6.5*38.54
	if o.TotalAmount != wantTotal {
		t.Fatalf("total = %v, want %v", o.TotalAmount, wantTotal)
	}
	if o.DeliveryTimes != "15:00,18:00" {
		t.Fatalf("delivery times = %q", o.DeliveryTimes)
	}

	got, err := svc.Get(context.Background(), "u1", o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Product != "Guantes Nitrilo M" {
		t.Fatalf("items not preloaded in order: %+v", got.Items)
	}
}

func TestOrderService_Create_Validation(t *testing.T) {
	db := newServiceDB(t)
	svc := NewOrderService(db, &fakeSender{})
	p := seedProvider(t, db, "u1", "Distribuidora Sur", "5491155550001")

	_, err := svc.Create(context.Background(), "u1", CreateOrderInput{ProviderID: p.ID})
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("empty items: err = %v, want ErrNoItems", err)
	}

	_, err = svc.Create(context.Background(), "u1", CreateOrderInput{
		ProviderID: "missing",
		Items:      []OrderItemInput{{Product: "Azucar", Quantity: 1}},
	})
	if !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("unknown provider: err = %v, want ErrProviderNotFound", err)
	}

	// Provider owned by another user is not visible.
	_, err = svc.Create(context.Background(), "u2", CreateOrderInput{
		ProviderID: p.ID,
		Items:      []OrderItemInput{{Product: "Azucar", Quantity: 1}},
	})
	if !errors.Is(err, ErrProviderNotFound) {
		t.Fatalf("foreign provider: err = %v, want ErrProviderNotFound", err)
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	db := newServiceDB(t)
	svc := NewOrderService(db, &fakeSender{})
	p := seedProvider(t, db, "u1", "Distribuidora Sur", "5491155550001")
	o, err := svc.Create(context.Background(), "u1", CreateOrderInput{
		ProviderID: p.ID,
		Items:      []OrderItemInput{{Product: "Azucar", Quantity: 1, Unit: "kg"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.UpdateStatus(context.Background(), "u1", o.ID, "shipped"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status: err = %v, want ErrInvalidStatus", err)
	}
	if err := svc.UpdateStatus(context.Background(), "u2", o.ID, domain.OrderStatusPaid); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign order: err = %v, want ErrOrderNotFound", err)
	}
	if err := svc.UpdateStatus(context.Background(), "u1", o.ID, domain.OrderStatusPaid); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := svc.Get(context.Background(), "u1", o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.OrderStatusPaid {
		t.Fatalf("status = %q, want paid", got.Status)
	}
}

func TestOrderService_SendConfirmation(t *testing.T) {
	db := newServiceDB(t)
	sender := &fakeSender{}
	svc := NewOrderService(db, sender)
	p := seedProvider(t, db, "u1", "Distribuidora Sur", "5491155550001")
	o, err := svc.Create(context.Background(), "u1", CreateOrderInput{
		ProviderID: p.ID,
		Items:      []OrderItemInput{{Product: "Azucar", Quantity: 1, Unit: "kg", UnitPrice: 900}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.SendConfirmation(context.Background(), "u1", o.ID); err != nil {
		t.Fatalf("SendConfirmation: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != p.Phone {
		t.Fatalf("sent = %+v, want one message to %s", sender.sent, p.Phone)
	}

	pending, err := repo.FindPendingByPhone(context.Background(), db, p.Phone)
	if err != nil {
		t.Fatalf("FindPendingByPhone: %v", err)
	}
	if pending.OrderID != o.ID {
		t.Fatalf("pending order = %s, want %s", pending.OrderID, o.ID)
	}

	n, err := repo.CountMessagesByPhone(context.Background(), db, p.Phone)
	if err != nil {
		t.Fatalf("CountMessagesByPhone: %v", err)
	}
	if n != 1 {
		t.Fatalf("message log count = %d, want 1", n)
	}
}

func TestOrderService_SendConfirmation_Resend(t *testing.T) {
	db := newServiceDB(t)
	sender := &fakeSender{}
	svc := NewOrderService(db, sender)
	p := seedProvider(t, db, "u1", "Distribuidora Sur", "5491155550001")
	o, err := svc.Create(context.Background(), "u1", CreateOrderInput{
		ProviderID: p.ID,
		Items:      []OrderItemInput{{Product: "Azucar", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.SendConfirmation(context.Background(), "u1", o.ID); err != nil {
			t.Fatalf("SendConfirmation #%d: %v", i+1, err)
		}
	}

	var count int64
	if err := db.Model(&domain.PendingConfirmation{}).
		Where("order_id = ?", o.ID).Count(&count).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if count != 1 {
		t.Fatalf("pending rows = %d, want 1 after resend", count)
	}
}

func TestOrderService_SendConfirmation_Failure(t *testing.T) {
	db := newServiceDB(t)
	sender := &fakeSender{err: errors.New("gateway down")}
	svc := NewOrderService(db, sender)
	p := seedProvider(t, db, "u1", "Distribuidora Sur", "5491155550001")
	o, err := svc.Create(context.Background(), "u1", CreateOrderInput{
		ProviderID: p.ID,
		Items:      []OrderItemInput{{Product: "Azucar", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = svc.SendConfirmation(context.Background(), "u1", o.ID)
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("err = %v, want ErrSendFailed", err)
	}

	// The pending row created before the send must be compensated away.
	if _, err := repo.FindPendingByPhone(context.Background(), db, p.Phone); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("pending after failed send: err = %v, want ErrNotFound", err)
	}
}

func TestOrderService_SendConfirmation_NotPending(t *testing.T) {
	db := newServiceDB(t)
	svc := NewOrderService(db, &fakeSender{})
	p := seedProvider(t, db, "u1", "Distribuidora Sur", "5491155550001")
	o, err := svc.Create(context.Background(), "u1", CreateOrderInput{
		ProviderID: p.ID,
		Items:      []OrderItemInput{{Product: "Azucar", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateOrderStatus(context.Background(), db, o.ID, domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}

	if err := svc.SendConfirmation(context.Background(), "u1", o.ID); !errors.Is(err, ErrNotPending) {
		t.Fatalf("err = %v, want ErrNotPending", err)
	}
	if err := svc.SendConfirmation(context.Background(), "u1", "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}
