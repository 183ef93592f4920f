// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Provider
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a provider is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateProvider inserts a new Provider row owned by userID. The provider ID
// is a randomly generated UUID (string) and CreatedAt is set to UTC.
func CreateProvider(ctx context.Context, db *gorm.DB, userID, name, phone string) (*domain.Provider, error) {
	p := &domain.Provider{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// ListProviders returns all providers belonging to userID, ordered by name.
// It returns an empty slice if the user has no providers.
func ListProviders(ctx context.Context, db *gorm.DB, userID string) ([]domain.Provider, error) {
	var out []domain.Provider
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// CountProviders returns the total number of providers owned by userID.
func CountProviders(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Provider{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListProvidersPage returns a paginated slice of providers for userID,
// ordered by name. Use CountProviders to obtain the total for pagination
// metadata.
func ListProvidersPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Provider, error) {
	var out []domain.Provider
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetProvider fetches a single provider by its ID and owner (userID). If the
// record does not exist, it returns gorm.ErrRecordNotFound.
func GetProvider(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Provider, error) {
	var p domain.Provider
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProviderByPhone resolves a normalized phone number to a provider.
// This is the correlation lookup used by the webhook pipeline, so it is not
// scoped to a user: the phone is the only identity an inbound message has.
// When several providers share a phone, the most recently created one wins.
func GetProviderByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.Provider, error) {
	var p domain.Provider
	err := db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at desc").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProvider updates the name and phone of a provider identified by id
// and owned by userID. If no rows are affected (provider missing or not
// owned by userID), it returns gorm.ErrRecordNotFound.
func UpdateProvider(ctx context.Context, db *gorm.DB, id, userID, name, phone string) error {
	res := db.WithContext(ctx).
		Model(&domain.Provider{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"name": name, "phone": phone})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProvider soft-deletes a provider owned by userID. Returns
// gorm.ErrRecordNotFound when nothing matched.
func DeleteProvider(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Provider{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
