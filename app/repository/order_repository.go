package repository

import (
	"time"

	"github.com/tablo-app/tablo/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithItems inserts an order and its lines in one transaction, gated
// by the unique index on stripe_session_id. A redelivered webhook event for
// the same session conflicts on insert, nothing is written, and created is
// reported as false.
func (r *orderRepository) CreateWithItems(order *models.Order, items []models.OrderItem) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_session_id"}},
			DoNothing: true,
		}).Create(order)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return created, err
}

func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid confirms payment for a pending order. Orders that already moved
// past paid are left alone so a late payment_intent.succeeded cannot roll
// back the kitchen workflow.
func (r *orderRepository) MarkPaid(id string) error {
	return r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.ORDER_STATUS_PENDING).
		Update("status", models.ORDER_STATUS_PAID).Error
}

func (r *orderRepository) UpdateStatus(id, status string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) ListByRestaurant(restaurantID string, limit int) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.Preload("Items").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (r *orderRepository) SumTotalsSince(since time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&models.Order{}).
		Where("created_at >= ? AND status <> ?", since, models.ORDER_STATUS_CANCELLED).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	return total, err
}
