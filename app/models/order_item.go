package models

import "time"

// OrderItem captures a purchased line at its historical price. ItemID is
// nullable: reconciliation keeps lines it cannot map back to the catalog
// (the tip line, or a since-deleted item) instead of dropping them.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   string    `gorm:"type:char(36);not null;index" json:"order_id"`
	ItemID    *string   `gorm:"type:char(36);default:null;index" json:"item_id,omitempty"`
	Name      string    `gorm:"type:varchar(191);not null" json:"name"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
