// Order HTTP handlers.
//
// This file exposes the purchase-order endpoints:
//   - POST /orders              (create with line items)
//   - GET  /orders              (list, paginated)
//   - GET  /orders/{id}         (fetch with items)
//   - PUT  /orders/{id}/status  (manual status change, e.g. paid)
//   - POST /orders/{id}/send    (dispatch the WhatsApp confirmation request)
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gastropedido/go-orders-backend/internal/domain"
	"github.com/gastropedido/go-orders-backend/internal/services"
)

//
// DTOs
//

// CreateOrderRequest is the JSON payload for creating an order.
type CreateOrderRequest struct {
	ProviderID    string             `json:"provider_id" binding:"required"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Currency      string             `json:"currency"`
	DeliveryDate  string             `json:"delivery_date"` // "2026-09-15"
	DeliveryTimes []string           `json:"delivery_times"`
	PaymentMethod string             `json:"payment_method"`
}

// OrderItemRequest is one line item in a CreateOrderRequest.
type OrderItemRequest struct {
	Product   string  `json:"product" binding:"required,min=1"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price" binding:"gte=0"`
}

// UpdateOrderStatusRequest is the JSON payload for a manual status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListOrdersResponse wraps a page of orders and pagination information.
type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// deliveryDateLayout is the accepted wire format for delivery_date.
const deliveryDateLayout = "2006-01-02"

//
// Handlers
//

// CreateOrder handles POST /orders.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provider_id and at least one item required")
		return
	}
	if _, err := uuid.Parse(req.ProviderID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provider_id must be a UUID")
		return
	}

	var deliveryDate *time.Time
	if req.DeliveryDate != "" {
		d, err := time.Parse(deliveryDateLayout, req.DeliveryDate)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "delivery_date must be YYYY-MM-DD")
			return
		}
		deliveryDate = &d
	}

	items := make([]services.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.OrderItemInput{
			Product:   it.Product,
			Quantity:  it.Quantity,
			Unit:      it.Unit,
			UnitPrice: it.UnitPrice,
		})
	}

	o, err := h.orderSvc.Create(c.Request.Context(), userID(c), services.CreateOrderInput{
		ProviderID:    req.ProviderID,
		Items:         items,
		Currency:      req.Currency,
		DeliveryDate:  deliveryDate,
		DeliveryTimes: req.DeliveryTimes,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProviderNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "provider not found")
		case isValidationErr(err):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create order")
		}
		return
	}

	ok(c, http.StatusCreated, o)
}

// ListOrders handles GET /orders.
func (h *Handlers) ListOrders(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.orderSvc.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list orders")
		return
	}

	ok(c, http.StatusOK, ListOrdersResponse{
		Orders:     items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetOrder handles GET /orders/:id.
func (h *Handlers) GetOrder(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	o, err := h.orderSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not fetch order")
		return
	}

	ok(c, http.StatusOK, o)
}

// UpdateOrderStatus handles PUT /orders/:id/status.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}

	if err := h.orderSvc.UpdateStatus(c.Request.Context(), userID(c), id, req.Status); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
		case errors.Is(err, services.ErrInvalidStatus):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown status")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update order")
		}
		return
	}

	noContent(c)
}

// SendOrderConfirmation handles POST /orders/:id/send. It dispatches the
// WhatsApp confirmation request to the order's provider and arms the
// pending-confirmation index.
func (h *Handlers) SendOrderConfirmation(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "order id must be a UUID")
		return
	}

	if err := h.orderSvc.SendConfirmation(c.Request.Context(), userID(c), id); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "order not found")
		case errors.Is(err, services.ErrProviderNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "provider not found")
		case errors.Is(err, services.ErrNotPending):
			fail(c, http.StatusConflict, ErrCodeConflict, "order is not pending")
		case errors.Is(err, services.ErrSendFailed):
			fail(c, http.StatusBadGateway, ErrCodeSendFailed, "whatsapp gateway rejected the message")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not send confirmation")
		}
		return
	}

	ok(c, http.StatusAccepted, gin.H{"status": "sent"})
}
