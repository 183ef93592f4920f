// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// ProcessedMessage records a WhatsApp message id that the webhook pipeline
// has already handled. The unique index on WAMessageID makes reprocessing a
// redelivered webhook a detectable no-op, so the same inbound message can
// never trigger two outbound detail sends.
type ProcessedMessage struct {
	ID          string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	WAMessageID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_processed_wa_id"`
	CreatedAt   time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
}

// TableName implements the GORM tabler interface.
func (ProcessedMessage) TableName() string { return "processed_messages" }
