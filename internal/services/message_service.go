package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
	"github.com/gastropedido/go-orders-backend/internal/repo"
)

// MessageService exposes the stored WhatsApp conversation log for the API.
// Writes to the log happen inside OrderService and ConfirmationService; this
// service is read-only.
type MessageService struct {
	DB *gorm.DB
}

// NewMessageService constructs a MessageService.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{DB: db}
}

// ListByPhonePage returns a page of the conversation with a phone number in
// chronological order, plus the total count. The phone is normalized the
// same way providers and inbound senders are, so any formatting works.
func (s *MessageService) ListByPhonePage(ctx context.Context, phone string, page, pageSize int) ([]domain.WhatsAppMessage, int64, error) {
	if normalized, err := NormalizePhone(phone); err == nil {
		phone = normalized
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMessagesByPhone(ctx, s.DB, phone)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.WhatsAppMessage{}, 0, nil
	}

	items, err := repo.ListMessagesByPhonePage(ctx, s.DB, phone, offset, pageSize)
	return items, total, err
}
