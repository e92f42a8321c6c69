package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table is a physical table a diner scans to open the menu. QRToken is what
// the printed code encodes; rendering the code itself happens elsewhere.
type Table struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	RestaurantID string    `gorm:"type:char(36);not null;index" json:"restaurant_id"`
	Label        string    `gorm:"type:varchar(100);not null" json:"label"`
	QRToken      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"qr_token"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.QRToken == "" {
		token, err := generateToken(16)
		if err != nil {
			return err
		}
		t.QRToken = token
	}
	return nil
}

func generateToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
