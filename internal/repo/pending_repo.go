// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// PendingConfirmation model, the side table correlating an outbound order
// notification with the provider phone expected to reply to it.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

// ErrDuplicate indicates a unique-constraint violation on insert.
var ErrDuplicate = errors.New("duplicate")

// CreatePendingConfirmation inserts a pending row for (orderID, providerID).
// A previous row for the same pair is replaced first, so re-sending an order
// notification always leaves exactly one pending row (last wins).
func CreatePendingConfirmation(ctx context.Context, db *gorm.DB, orderID, providerID, phone string) (*domain.PendingConfirmation, error) {
	rec := &domain.PendingConfirmation{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		ProviderID: providerID,
		Phone:      phone,
		CreatedAt:  time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ? AND provider_id = ?", orderID, providerID).
			Delete(&domain.PendingConfirmation{}).Error; err != nil {
			return err
		}
		if err := tx.Create(rec).Error; err != nil {
			// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
			low := strings.ToLower(err.Error())
			if errors.Is(err, gorm.ErrDuplicatedKey) ||
				strings.Contains(low, "unique constraint failed") ||
				strings.Contains(low, "constraint failed: unique") {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindPendingByPhone returns the most recent pending confirmation for a
// phone number, or gorm.ErrRecordNotFound. When two orders were sent to the
// same provider before either was answered, resolution is "most recent wins".
func FindPendingByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.PendingConfirmation, error) {
	var rec domain.PendingConfirmation
	err := db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at desc").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RemovePendingConfirmation deletes a pending row by primary key. Deleting a
// row that is already gone is not an error, which keeps removal idempotent.
func RemovePendingConfirmation(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.PendingConfirmation{}).Error
}
