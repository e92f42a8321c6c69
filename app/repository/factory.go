package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetRestaurantRepository returns the restaurant repository instance
func (f *Factory) GetRestaurantRepository() RestaurantRepository {
	return f.GetRepositories().Restaurant
}

// GetMenuItemRepository returns the menu item repository instance
func (f *Factory) GetMenuItemRepository() MenuItemRepository {
	return f.GetRepositories().MenuItem
}

// GetTableRepository returns the table repository instance
func (f *Factory) GetTableRepository() TableRepository {
	return f.GetRepositories().Table
}

// GetOrderRepository returns the order repository instance
func (f *Factory) GetOrderRepository() OrderRepository {
	return f.GetRepositories().Order
}

// GetCheckoutAttemptRepository returns the checkout attempt repository instance
func (f *Factory) GetCheckoutAttemptRepository() CheckoutAttemptRepository {
	return f.GetRepositories().CheckoutAttempt
}

// GetWebhookEventRepository returns the webhook event repository instance
func (f *Factory) GetWebhookEventRepository() WebhookEventRepository {
	return f.GetRepositories().WebhookEvent
}
