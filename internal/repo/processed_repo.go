// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// ProcessedMessage model used to deduplicate redelivered webhook payloads.
package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

// MarkProcessed claims a WhatsApp message id for processing. The first call
// for a given id succeeds; any later call returns ErrDuplicate, which the
// webhook pipeline treats as "already handled, do nothing".
//
// The claim works against a transaction handle too, so it can be part of the
// same atomic write as the order-status transition it guards.
func MarkProcessed(ctx context.Context, db *gorm.DB, waMessageID string) (*domain.ProcessedMessage, error) {
	rec := &domain.ProcessedMessage{
		ID:          uuid.NewString(),
		WAMessageID: waMessageID,
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// IsProcessed reports whether a WhatsApp message id was already claimed.
func IsProcessed(ctx context.Context, db *gorm.DB, waMessageID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ProcessedMessage{}).
		Where("wa_message_id = ?", waMessageID).
		Count(&n).Error
	return n > 0, err
}
