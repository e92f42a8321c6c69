package repository

import (
	"github.com/tablo-app/tablo/app/models"
	"gorm.io/gorm"
)

// menuItemRepository implements the MenuItemRepository interface
type menuItemRepository struct {
	db *gorm.DB
}

// NewMenuItemRepository creates a new menu item repository instance
func NewMenuItemRepository(db *gorm.DB) MenuItemRepository {
	return &menuItemRepository{db: db}
}

func (r *menuItemRepository) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

func (r *menuItemRepository) GetByID(id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDs resolves a set of catalog ids. Ids that no longer exist are
// simply absent from the result; the caller decides how to treat them.
func (r *menuItemRepository) GetByIDs(ids []string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *menuItemRepository) ListByRestaurant(restaurantID string, onlyAvailable bool) ([]models.MenuItem, error) {
	var items []models.MenuItem
	q := r.db.Where("restaurant_id = ?", restaurantID)
	if onlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	err := q.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *menuItemRepository) Update(item *models.MenuItem) error {
	return r.db.Save(item).Error
}

func (r *menuItemRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.MenuItem{}).Error
}
