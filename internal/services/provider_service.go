// Package services – ProviderService
//
// This file implements the ProviderService, which manages supplier contacts.
// It normalizes phone numbers into the digits-only form used as the webhook
// correlation key, enforces ownership rules, and coordinates repository
// operations for creating, listing (with pagination), updating, and deleting
// providers.
//
// Service-level errors (e.g., ErrProviderNotFound, ErrInvalidPhone) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
	"github.com/gastropedido/go-orders-backend/internal/repo"
)

// minPhoneDigits is the minimum digit count accepted for a provider phone.
const minPhoneDigits = 8

// ProviderService provides supplier-contact operations. It enforces name and
// phone rules and ensures ownership constraints.
type ProviderService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewProviderService constructs a ProviderService.
func NewProviderService(db *gorm.DB) *ProviderService {
	return &ProviderService{DB: db}
}

// Create inserts a new provider owned by userID. The phone is normalized to
// digits only before storage; names are trimmed.
func (s *ProviderService) Create(ctx context.Context, userID, name, phone string) (*domain.Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	return repo.CreateProvider(ctx, s.DB, userID, name, normalized)
}

// ListPage returns a page of providers for a user with the total count.
// It applies defaults for invalid page/pageSize.
func (s *ProviderService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Provider, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountProviders(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Provider{}, 0, nil
	}

	items, err := repo.ListProvidersPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// Get fetches a provider by ID, ensuring it belongs to the user.
func (s *ProviderService) Get(ctx context.Context, userID, id string) (*domain.Provider, error) {
	p, err := repo.GetProvider(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update renames a provider and/or changes its phone, enforcing the same
// validation as Create.
func (s *ProviderService) Update(ctx context.Context, userID, id, name, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return err
	}
	if err := repo.UpdateProvider(ctx, s.DB, id, userID, name, normalized); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProviderNotFound
		}
		return err
	}
	return nil
}

// Delete soft-deletes a provider owned by userID.
func (s *ProviderService) Delete(ctx context.Context, userID, id string) error {
	if err := repo.DeleteProvider(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProviderNotFound
		}
		return err
	}
	return nil
}

// NormalizePhone reduces a phone number to its digits ("+54 9 11 5555-0001"
// → "5491155550001"). The same normalization is applied to the `from` field
// of inbound webhooks, so both sides of the correlation agree on the key.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < minPhoneDigits {
		return "", ErrInvalidPhone
	}
	return digits, nil
}
