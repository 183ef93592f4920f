// Message log HTTP handler.
//
// GET /messages?phone=...  returns the stored WhatsApp conversation with a
// phone number, paginated, oldest first. This is the audit view the webhook
// and the outbound senders write into.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

// ListMessagesResponse wraps a page of logged messages.
type ListMessagesResponse struct {
	Messages   []domain.WhatsAppMessage `json:"messages"`
	Pagination Pagination               `json:"pagination"`
}

// ListMessages handles GET /messages.
func (h *Handlers) ListMessages(c *gin.Context) {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "phone query parameter required")
		return
	}

	page, pageSize := clampPagination(c)

	items, total, err := h.messages.ListByPhonePage(c.Request.Context(), phone, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list messages")
		return
	}

	ok(c, http.StatusOK, ListMessagesResponse{
		Messages:   items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}
