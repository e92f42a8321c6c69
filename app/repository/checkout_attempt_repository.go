package repository

import (
	"time"

	"github.com/tablo-app/tablo/app/models"
	"gorm.io/gorm"
)

// checkoutAttemptRepository implements the CheckoutAttemptRepository interface
type checkoutAttemptRepository struct {
	db *gorm.DB
}

// NewCheckoutAttemptRepository creates a new checkout attempt repository instance
func NewCheckoutAttemptRepository(db *gorm.DB) CheckoutAttemptRepository {
	return &checkoutAttemptRepository{db: db}
}

func (r *checkoutAttemptRepository) Record(identifier string) error {
	return r.db.Create(&models.CheckoutAttempt{Identifier: identifier}).Error
}

func (r *checkoutAttemptRepository) CountSince(identifier string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.CheckoutAttempt{}).
		Where("identifier = ? AND created_at >= ?", identifier, since).
		Count(&count).Error
	return count, err
}

func (r *checkoutAttemptRepository) DeleteBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&models.CheckoutAttempt{})
	return res.RowsAffected, res.Error
}
