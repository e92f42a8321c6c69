package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuItem is a catalog entry. Its Price is the only price the checkout
// layer ever trusts; client-submitted prices are discarded.
type MenuItem struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	RestaurantID string    `gorm:"type:char(36);not null;index" json:"restaurant_id" validate:"required"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=1,max=150"`
	Description  string    `gorm:"type:text" json:"description" validate:"max=2000"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	ImageURL     string    `gorm:"type:varchar(255)" json:"image_url" validate:"omitempty,max=255"`
	ModelURL     string    `gorm:"type:varchar(255)" json:"model_url" validate:"omitempty,max=255"` // AR asset, opaque to the backend
	IsAvailable  bool      `gorm:"default:true" json:"is_available"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *MenuItem) Validate() error {
	v := validator.New()

	return v.Struct(m)
}
