package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SUBSCRIPTION_TRIAL    = "trial"
	SUBSCRIPTION_ACTIVE   = "active"
	SUBSCRIPTION_PAST_DUE = "past_due"
	SUBSCRIPTION_CANCELED = "canceled"
)

const (
	PLAN_FREE            = "free"
	PLAN_BISTRO          = "bistro"
	PLAN_BUSINESS_LOUNGE = "business_lounge"
	PLAN_GRANDE_RESERVE  = "grande_reserve"
)

// Restaurant is the tenant of the platform: the unit of billing and data
// isolation. Payment fields are only ever written by the payment core;
// PaymentsEnabled in particular is set exclusively after the gateway has
// confirmed charges_enabled and details_submitted.
type Restaurant struct {
	ID                 string     `gorm:"type:char(36);primaryKey" json:"id"`
	Name               string     `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Slug               string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"slug" validate:"required,min=2,max=150"`
	Email              string     `gorm:"type:varchar(200)" json:"email" validate:"omitempty,email"`
	StripeConnectID    string     `gorm:"type:varchar(191);default:null;index" json:"stripe_connect_id,omitempty"`
	PaymentsEnabled    bool       `gorm:"default:false" json:"payments_enabled"`
	StripeCustomerID   string     `gorm:"type:varchar(191);default:null;index" json:"-"`
	SubscriptionStatus string     `gorm:"type:varchar(32);not null;default:'trial'" json:"subscription_status"`
	PlanType           string     `gorm:"type:varchar(50);not null;default:'free'" json:"plan_type"`
	CurrentPeriodEnd   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *Restaurant) Validate() error {
	v := validator.New()

	return v.Struct(r)
}
