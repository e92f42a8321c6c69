package repository

import (
	"time"

	"github.com/tablo-app/tablo/app/models"
	"gorm.io/gorm"
)

// restaurantRepository implements the RestaurantRepository interface
type restaurantRepository struct {
	db *gorm.DB
}

// NewRestaurantRepository creates a new restaurant repository instance
func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(restaurant *models.Restaurant) error {
	return r.db.Create(restaurant).Error
}

func (r *restaurantRepository) GetByID(id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.Where("id = ?", id).First(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) GetBySlug(slug string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.Where("slug = ?", slug).First(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *restaurantRepository) List() ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := r.db.Find(&restaurants).Error
	return restaurants, err
}

// SetConnectID persists the connected-account id. It is written exactly once,
// right after account creation, so a crash cannot orphan the account.
func (r *restaurantRepository) SetConnectID(id, connectID string) error {
	return r.db.Model(&models.Restaurant{}).
		Where("id = ? AND (stripe_connect_id IS NULL OR stripe_connect_id = '')", id).
		Update("stripe_connect_id", connectID).Error
}

// EnablePayments flips payments_enabled to true. There is deliberately no
// counterpart that sets it back to false.
func (r *restaurantRepository) EnablePayments(id string) error {
	return r.db.Model(&models.Restaurant{}).
		Where("id = ?", id).
		Update("payments_enabled", true).Error
}

func (r *restaurantRepository) EnablePaymentsByConnectID(connectID string) error {
	return r.db.Model(&models.Restaurant{}).
		Where("stripe_connect_id = ?", connectID).
		Update("payments_enabled", true).Error
}

func (r *restaurantRepository) ActivateSubscription(id, customerID, planType string) error {
	return r.db.Model(&models.Restaurant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"subscription_status": models.SUBSCRIPTION_ACTIVE,
			"stripe_customer_id":  customerID,
			"plan_type":           planType,
		}).Error
}

func (r *restaurantRepository) CancelSubscriptionByCustomerID(customerID string) error {
	return r.db.Model(&models.Restaurant{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(map[string]interface{}{
			"subscription_status": models.SUBSCRIPTION_CANCELED,
			"plan_type":           models.PLAN_FREE,
		}).Error
}

func (r *restaurantRepository) UpdateSubscription(id, status, customerID, planType string, currentPeriodEnd *time.Time) error {
	updates := map[string]interface{}{
		"subscription_status": status,
		"current_period_end":  currentPeriodEnd,
	}
	if customerID != "" {
		updates["stripe_customer_id"] = customerID
	}
	if planType != "" {
		updates["plan_type"] = planType
	}
	return r.db.Model(&models.Restaurant{}).Where("id = ?", id).Updates(updates).Error
}
