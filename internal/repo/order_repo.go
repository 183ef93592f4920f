// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order model
// and its line items.
//
// Orders are aggregates: CreateOrder persists the order row together with its
// items, and GetOrder preloads items in stable Position order so rendered
// detail messages are deterministic.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastropedido/go-orders-backend/internal/domain"
)

// CreateOrder inserts an Order row plus its items in a single transaction.
// Item IDs are generated here and Position is assigned from slice order.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(o).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = uuid.NewString()
			items[i].OrderID = o.ID
			items[i].Position = i
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// GetOrder fetches a single order by ID and owner, preloading items in
// Position order. Returns gorm.ErrRecordNotFound when missing.
func GetOrder(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		Where("id = ? AND user_id = ?", id, userID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrderByID fetches an order by primary key only, items preloaded.
// The webhook pipeline uses this form because an inbound reply carries no
// user identity; ownership was established when the notification was sent.
func GetOrderByID(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CountOrders returns the total number of orders owned by userID.
func CountOrders(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListOrdersPage returns a paginated slice of orders for userID, most recent
// first, items preloaded.
func ListOrdersPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateOrderStatus sets the status of an order by primary key. If no rows
// are affected, it returns gorm.ErrRecordNotFound. Status validity is the
// service layer's concern.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
