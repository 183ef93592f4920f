// Package services – OrderService
//
// This file implements OrderService, the application-level component that
// owns the purchase-order lifecycle on the business-user side: creating an
// order with its line items, listing and fetching orders, changing status,
// and dispatching the WhatsApp confirmation request that arms the
// pending-confirmation index.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// order/user identifiers.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
	"github.com/gastropedido/go-orders-backend/internal/repo"
	"github.com/gastropedido/go-orders-backend/internal/whatsapp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// defaultCurrency is used when an order is created without one.
const defaultCurrency = "ARS"

// OrderItemInput is one order line as submitted by the API.
type OrderItemInput struct {
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
}

// CreateOrderInput is the payload for creating an order.
type CreateOrderInput struct {
	ProviderID    string           `json:"provider_id"`
	Items         []OrderItemInput `json:"items"`
	Currency      string           `json:"currency"`
	DeliveryDate  *time.Time       `json:"delivery_date"`
	DeliveryTimes []string         `json:"delivery_times"`
	PaymentMethod string           `json:"payment_method"`
}

// OrderService coordinates order persistence and the outbound half of the
// confirmation flow.
type OrderService struct {
	DB     *gorm.DB
	Sender whatsapp.Sender
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, sender whatsapp.Sender) *OrderService {
	return &OrderService{DB: db, Sender: sender}
}

// Create validates the input, verifies provider ownership, computes the
// total from the line items, and persists the aggregate.
func (s *OrderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	if _, err := repo.GetProvider(ctx, s.DB, in.ProviderID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	total := 0.0
	for _, it := range in.Items {
		if it.Product == "" || it.Quantity <= 0 {
			return nil, ErrNoItems
		}
		items = append(items, domain.OrderItem{
			Product:   it.Product,
			Quantity:  it.Quantity,
			Unit:      it.Unit,
			UnitPrice: it.UnitPrice,
		})
		total += it.Quantity * it.UnitPrice
	}

	currency := in.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	o := &domain.Order{
		UserID:        userID,
		ProviderID:    in.ProviderID,
		TotalAmount:   total,
		Currency:      currency,
		DeliveryDate:  in.DeliveryDate,
		DeliveryTimes: JoinDeliveryTimes(in.DeliveryTimes),
		PaymentMethod: in.PaymentMethod,
		Status:        domain.OrderStatusPending,
	}
	return repo.CreateOrder(ctx, s.DB, o, items)
}

// Get fetches an order by ID, ensuring it belongs to the user.
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	o, err := repo.GetOrder(ctx, s.DB, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// ListPage returns a page of the user's orders and the total count.
func (s *OrderService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountOrders(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Order{}, 0, nil
	}

	items, err := repo.ListOrdersPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// UpdateStatus sets an order's status from the API side (e.g. marking it
// paid once a receipt is linked). Only known status values are accepted.
func (s *OrderService) UpdateStatus(ctx context.Context, userID, orderID, status string) error {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusConfirmed,
		domain.OrderStatusRejected, domain.OrderStatusPaid:
	default:
		return ErrInvalidStatus
	}

	if _, err := repo.GetOrder(ctx, s.DB, orderID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return repo.UpdateOrderStatus(ctx, s.DB, orderID, status)
}

// SendConfirmation dispatches the WhatsApp confirmation request for a
// pending order and arms the pending-confirmation index.
//
// The pending row is created before the send so it is already visible when
// the provider's reply arrives; if the gateway rejects the message the row
// is removed again (compensating action) and ErrSendFailed is returned.
// Re-sending for the same order replaces the previous pending row.
func (s *OrderService) SendConfirmation(ctx context.Context, userID, orderID string) error {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "SendConfirmation",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	o, err := repo.GetOrder(ctx, s.DB, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if o.Status != domain.OrderStatusPending {
		return ErrNotPending
	}

	p, err := repo.GetProvider(ctx, s.DB, o.ProviderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProviderNotFound
		}
		return err
	}

	pending, err := repo.CreatePendingConfirmation(ctx, s.DB, o.ID, p.ID, p.Phone)
	if err != nil {
		return err
	}

	body := RenderConfirmationRequest(p.Name, o)
	waID, err := s.Sender.SendText(ctx, p.Phone, body)
	if err != nil {
		outboundSends.WithLabelValues("failed").Inc()
		_ = repo.RemovePendingConfirmation(ctx, s.DB, pending.ID)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	outboundSends.WithLabelValues("sent").Inc()

	_, err = repo.AppendMessage(ctx, s.DB, &domain.WhatsAppMessage{
		WAMessageID: waID,
		Direction:   domain.DirectionOutbound,
		Phone:       p.Phone,
		Content:     body,
		Status:      domain.MessageStatusSent,
	})
	return err
}
