package repository

import (
	"github.com/tablo-app/tablo/app/models"
	"gorm.io/gorm"
)

// tableRepository implements the TableRepository interface
type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new table repository instance
func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(table *models.Table) error {
	return r.db.Create(table).Error
}

func (r *tableRepository) GetByID(id string) (*models.Table, error) {
	var table models.Table
	err := r.db.Where("id = ?", id).First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) ListByRestaurant(restaurantID string) ([]models.Table, error) {
	var tables []models.Table
	err := r.db.Where("restaurant_id = ?", restaurantID).Order("label ASC").Find(&tables).Error
	return tables, err
}

func (r *tableRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Table{}).Error
}
