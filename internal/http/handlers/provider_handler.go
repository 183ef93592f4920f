// Provider HTTP handlers.
//
// This file wires the supplier-contact endpoints:
//   - POST   /providers        (create)
//   - GET    /providers        (list, paginated)
//   - GET    /providers/{id}   (fetch)
//   - PUT    /providers/{id}   (rename / change phone)
//   - DELETE /providers/{id}   (soft delete)
//
// It also hosts the Handlers aggregate and the service contracts consumed by
// the whole handler package. Handlers are transport-thin: validate input,
// call the application services, translate sentinel errors into HTTP
// responses.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gastropedido/go-orders-backend/internal/domain"
	"github.com/gastropedido/go-orders-backend/internal/services"
	"github.com/gastropedido/go-orders-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ProviderService defines the supplier-contact operations consumed by the
// HTTP layer. Implementations must be safe for concurrent use and honor the
// provided context.
type ProviderService interface {
	Create(ctx context.Context, userID, name, phone string) (*domain.Provider, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Provider, int64, error)
	Get(ctx context.Context, userID, id string) (*domain.Provider, error)
	Update(ctx context.Context, userID, id, name, phone string) error
	Delete(ctx context.Context, userID, id string) error
}

// OrderService defines the order lifecycle operations consumed by the HTTP
// layer, including dispatch of the WhatsApp confirmation request.
type OrderService interface {
	Create(ctx context.Context, userID string, in services.CreateOrderInput) (*domain.Order, error)
	Get(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, userID, orderID, status string) error
	SendConfirmation(ctx context.Context, userID, orderID string) error
}

// InboundProcessor handles webhook deliveries: provider replies and message
// delivery receipts.
type InboundProcessor interface {
	HandleInbound(ctx context.Context, in services.InboundText) (services.InboundResult, error)
	HandleReceipt(ctx context.Context, waMessageID, status string) error
}

// MessageLog exposes the stored WhatsApp conversation history.
type MessageLog interface {
	ListByPhonePage(ctx context.Context, phone string, page, pageSize int) ([]domain.WhatsAppMessage, int64, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for providers, orders, messages, and
// the WhatsApp webhook. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	providerSvc ProviderService
	orderSvc    OrderService
	inbound     InboundProcessor
	messages    MessageLog

	// verifyToken is matched against hub.verify_token on the webhook
	// subscription handshake.
	verifyToken string
}

// New constructs a Handlers instance bound to the given services.
func New(providerSvc ProviderService, orderSvc OrderService, inbound InboundProcessor, messages MessageLog, verifyToken string) *Handlers {
	return &Handlers{
		providerSvc: providerSvc,
		orderSvc:    orderSvc,
		inbound:     inbound,
		messages:    messages,
		verifyToken: verifyToken,
	}
}

// userID extracts the authenticated user id from Gin context (set by
// upstream middleware). If absent, it falls back to the "X-User-ID" header,
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// ProviderRequest is the JSON payload for creating or updating a provider.
type ProviderRequest struct {
	// Name identifies the supplier ("Distribuidora Sur").
	Name string `json:"name" binding:"required,min=1,max=255"`
	// Phone is the WhatsApp number; stored digits-only.
	Phone string `json:"phone" binding:"required,min=8"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListProvidersResponse wraps a page of providers and pagination information.
type ListProvidersResponse struct {
	Providers  []domain.Provider `json:"providers"`
	Pagination Pagination        `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses page/page_size query params, applies defaults and
// caps, and returns the validated pair.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginationMeta computes the metadata block for a list response.
func paginationMeta(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// CreateProvider handles POST /providers.
func (h *Handlers) CreateProvider(c *gin.Context) {
	var req ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and phone required")
		return
	}

	p, err := h.providerSvc.Create(c.Request.Context(), userID(c), req.Name, req.Phone)
	if err != nil {
		switch {
		case isValidationErr(err):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create provider")
		}
		return
	}

	ok(c, http.StatusCreated, p)
}

// ListProviders handles GET /providers.
func (h *Handlers) ListProviders(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.providerSvc.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list providers")
		return
	}

	ok(c, http.StatusOK, ListProvidersResponse{
		Providers:  items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetProvider handles GET /providers/:id.
func (h *Handlers) GetProvider(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provider id must be a UUID")
		return
	}

	p, err := h.providerSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		if err == services.ErrProviderNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "provider not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not fetch provider")
		return
	}

	ok(c, http.StatusOK, p)
}

// UpdateProvider handles PUT /providers/:id.
func (h *Handlers) UpdateProvider(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provider id must be a UUID")
		return
	}

	var req ProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and phone required")
		return
	}

	if err := h.providerSvc.Update(c.Request.Context(), userID(c), id, req.Name, req.Phone); err != nil {
		switch {
		case err == services.ErrProviderNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "provider not found")
		case isValidationErr(err):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update provider")
		}
		return
	}

	noContent(c)
}

// DeleteProvider handles DELETE /providers/:id.
func (h *Handlers) DeleteProvider(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "provider id must be a UUID")
		return
	}

	if err := h.providerSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		if err == services.ErrProviderNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "provider not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not delete provider")
		return
	}

	noContent(c)
}

// isValidationErr reports whether err is one of the input-shaped service
// sentinels that map to 400.
func isValidationErr(err error) bool {
	switch err {
	case services.ErrInvalidPhone, services.ErrEmptyName, services.ErrNoItems, services.ErrInvalidStatus:
		return true
	}
	return false
}
