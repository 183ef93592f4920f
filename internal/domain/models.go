// Package domain defines the persistence models for providers, purchase
// orders, pending order confirmations, and the WhatsApp message log. These
// types are mapped with GORM and form the core data layer of the application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Order status values. Orders are never hard-deleted; their lifecycle is
// expressed through this field (plus GORM soft deletion for audit safety).
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusRejected  = "rejected"
	OrderStatusPaid      = "paid"
)

// Message directions and statuses for the WhatsApp message log.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"

	MessageStatusReceived  = "received"
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusFailed    = "failed"
)

// Provider represents a supplier contact reachable over WhatsApp. The phone
// number is stored in normalized form (digits only) and is the correlation
// key used to resolve inbound webhook messages back to a provider.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owning business user; indexed.
//   - Name: display name of the supplier.
//   - Phone: normalized phone number; indexed for webhook lookups.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type Provider struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_providers"`
	Name      string         `json:"name"       gorm:"type:varchar(255);not null"`
	Phone     string         `json:"phone"      gorm:"type:varchar(32);not null;index:idx_provider_phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Provider.
func (Provider) TableName() string { return "providers" }

// Order represents a purchase request from a business user to a provider.
// Line items are kept in a child table so the detail message can render them
// in a stable order. DeliveryTimes is persisted as a comma-joined column and
// exposed as a slice through the service layer.
type Order struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	UserID        string         `json:"user_id"        gorm:"type:varchar(64);not null;index:idx_user_orders"`
	ProviderID    string         `json:"provider_id"    gorm:"type:char(36);not null;index"`
	TotalAmount   float64        `json:"total_amount"   gorm:"not null"`
	Currency      string         `json:"currency"       gorm:"type:varchar(8);not null;default:'ARS'"`
	DeliveryDate  *time.Time     `json:"delivery_date,omitempty"`
	DeliveryTimes string         `json:"-"              gorm:"type:text;not null;default:''"`
	PaymentMethod string         `json:"payment_method" gorm:"type:varchar(64);not null"`
	Status        string         `json:"status"         gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','confirmed','rejected','paid')"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`

	// Provider is the supplier this order was sent to.
	Provider Provider `json:"-" gorm:"foreignKey:ProviderID;references:ID;constraint:OnUpdate:CASCADE"`

	// Items are the order lines, rendered in Position order.
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// OrderItem is a single order line. Position preserves the order in which
// lines were entered so rendered messages are deterministic.
type OrderItem struct {
	ID        string  `json:"id"         gorm:"type:char(36);primaryKey"`
	OrderID   string  `json:"order_id"   gorm:"type:char(36);not null;index:idx_order_items,priority:1"`
	Product   string  `json:"product"    gorm:"type:varchar(255);not null"`
	Quantity  float64 `json:"quantity"   gorm:"not null"`
	Unit      string  `json:"unit"       gorm:"type:varchar(32);not null"`
	UnitPrice float64 `json:"unit_price"`
	Position  int     `json:"position"   gorm:"not null;index:idx_order_items,priority:2"`
}

// TableName returns the database table name for OrderItem.
func (OrderItem) TableName() string { return "order_items" }

// PendingConfirmation links an outbound order notification to the provider
// phone expected to answer it. It is created when the notification is sent
// and removed once a reply has been classified and processed.
//
// At most one row may exist per (order_id, provider_id) pair; re-sending a
// notification replaces the previous row (last wins).
type PendingConfirmation struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	OrderID    string    `json:"order_id"    gorm:"type:char(36);not null;uniqueIndex:ux_pending_order_provider,priority:1"`
	ProviderID string    `json:"provider_id" gorm:"type:char(36);not null;uniqueIndex:ux_pending_order_provider,priority:2"`
	Phone      string    `json:"phone"       gorm:"type:varchar(32);not null;index:idx_pending_phone"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for PendingConfirmation.
func (PendingConfirmation) TableName() string { return "pending_confirmations" }

// WhatsAppMessage is an append-only log entry for every inbound and outbound
// message. Rows are never deleted; delivery receipts update Status in place.
type WhatsAppMessage struct {
	ID          string    `json:"id"            gorm:"type:char(36);primaryKey"`
	WAMessageID string    `json:"wa_message_id" gorm:"type:varchar(128);index:idx_wa_message_id"`
	Direction   string    `json:"direction"     gorm:"type:varchar(16);not null;check:direction IN ('inbound','outbound')"`
	Phone       string    `json:"phone"         gorm:"type:varchar(32);not null;index:idx_message_phone"`
	Content     string    `json:"content"       gorm:"type:text;not null"`
	MediaURL    string    `json:"media_url,omitempty" gorm:"type:text"`
	Status      string    `json:"status"        gorm:"type:varchar(16);not null;default:'received'"`
	CreatedAt   time.Time `json:"created_at"    gorm:"index"`
}

// TableName returns the database table name for WhatsAppMessage.
func (WhatsAppMessage) TableName() string { return "whatsapp_messages" }
