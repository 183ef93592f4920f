// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the append-only
// WhatsApp message log.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

// AppendMessage inserts a message-log row. The log is append-only; rows are
// never deleted and only Status is updated afterwards (delivery receipts).
func AppendMessage(ctx context.Context, db *gorm.DB, m *domain.WhatsAppMessage) (*domain.WhatsAppMessage, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Status == "" {
		if m.Direction == domain.DirectionInbound {
			m.Status = domain.MessageStatusReceived
		} else {
			m.Status = domain.MessageStatusSent
		}
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMessageStatus updates the delivery status of an outbound message by
// its WhatsApp message id. A receipt for an unknown id is ignored: Meta can
// deliver receipts for messages sent before this log existed.
func UpdateMessageStatus(ctx context.Context, db *gorm.DB, waMessageID, status string) error {
	return db.WithContext(ctx).
		Model(&domain.WhatsAppMessage{}).
		Where("wa_message_id = ?", waMessageID).
		Update("status", status).Error
}

// CountMessagesByPhone returns the number of logged messages exchanged with
// a phone number.
func CountMessagesByPhone(ctx context.Context, db *gorm.DB, phone string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.WhatsAppMessage{}).
		Where("phone = ?", phone).
		Count(&total).Error
	return total, err
}

// ListMessagesByPhonePage returns a page of the message log for a phone,
// oldest first so conversations read top to bottom.
func ListMessagesByPhonePage(ctx context.Context, db *gorm.DB, phone string, offset, limit int) ([]domain.WhatsAppMessage, error) {
	var out []domain.WhatsAppMessage
	err := db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
