package models

import "time"

// CheckoutAttempt is the append-only rate-limit ledger. Rows are only ever
// inserted, counted over a sliding window, and pruned by retention.
type CheckoutAttempt struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Identifier string    `gorm:"type:varchar(191);not null;index:idx_checkout_attempts_ident_created,priority:1" json:"identifier"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_checkout_attempts_ident_created,priority:2" json:"created_at"`
}
