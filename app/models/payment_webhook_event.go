package models

import "time"

// PaymentWebhookEvent stores every inbound gateway webhook with
// deduplication metadata. The unique index on StripeEventID short-circuits
// redelivered events before any business logic runs; ProcessedAt and
// ProcessingError form the audit trail that external alerting reads.
type PaymentWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	StripeEventID   string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_payment_webhook_events_event" json:"stripe_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null;index" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
