package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ORDER_STATUS_PENDING   = "pending"
	ORDER_STATUS_PAID      = "paid"
	ORDER_STATUS_PREPARING = "preparing"
	ORDER_STATUS_SERVED    = "served"
	ORDER_STATUS_COMPLETED = "completed"
	ORDER_STATUS_CANCELLED = "cancelled"
)

// Order is created exclusively by the webhook reconciliation engine when a
// checkout session completes, never by the client-facing checkout endpoint.
// StripeSessionID is the durable idempotency key: the unique index on it is
// what keeps a redelivered checkout.session.completed event from
// materializing a second order.
type Order struct {
	ID                   string      `gorm:"type:char(36);primaryKey" json:"id"`
	RestaurantID         string      `gorm:"type:char(36);not null;index" json:"restaurant_id"`
	TableID              *string     `gorm:"type:char(36);default:null;index" json:"table_id,omitempty"`
	StripeSessionID      string      `gorm:"type:varchar(191);not null;uniqueIndex:ux_orders_stripe_session" json:"stripe_session_id"`
	Status               string      `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	TotalPrice           float64     `gorm:"type:decimal(10,2);not null" json:"total_price"`
	ApplicationFeeAmount float64     `gorm:"type:decimal(10,2);not null;default:0" json:"application_fee_amount"`
	Items                []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt            time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt            time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// orderTransitions encodes the forward-only kitchen lifecycle. Terminal
// states have no successors.
var orderTransitions = map[string][]string{
	ORDER_STATUS_PENDING:   {ORDER_STATUS_PAID, ORDER_STATUS_CANCELLED},
	ORDER_STATUS_PAID:      {ORDER_STATUS_PREPARING, ORDER_STATUS_CANCELLED},
	ORDER_STATUS_PREPARING: {ORDER_STATUS_SERVED, ORDER_STATUS_CANCELLED},
	ORDER_STATUS_SERVED:    {ORDER_STATUS_COMPLETED},
	ORDER_STATUS_COMPLETED: {},
	ORDER_STATUS_CANCELLED: {},
}

// CanTransitionOrderStatus reports whether a staff workflow may move an
// order from one status to another.
func CanTransitionOrderStatus(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsOrderStatus reports whether s is a known order status.
func IsOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}
