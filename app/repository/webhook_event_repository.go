package repository

import (
	"time"

	"github.com/tablo-app/tablo/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository implements the WebhookEventRepository interface
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository instance
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// CreateIfNotExists inserts the event unless its Stripe event id was already
// recorded, and returns the stored row either way.
func (r *webhookEventRepository) CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("stripe_event_id = ?", event.StripeEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *webhookEventRepository) MarkProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *webhookEventRepository) ListProcessedBefore(cutoff time.Time, limit int) ([]models.PaymentWebhookEvent, error) {
	var events []models.PaymentWebhookEvent
	q := r.db.Where("processed_at IS NOT NULL AND processed_at < ?", cutoff).
		Order("processed_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&events).Error
	return events, err
}

func (r *webhookEventRepository) DeleteByIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&models.PaymentWebhookEvent{}).Error
}
