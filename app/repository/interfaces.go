package repository

import (
	"time"

	"github.com/tablo-app/tablo/app/models"
	"gorm.io/gorm"
)

// RestaurantRepository defines the interface for tenant database operations.
// The subscription and payment setters express exactly the mutations the
// webhook reconciliation engine is allowed to make.
type RestaurantRepository interface {
	Create(restaurant *models.Restaurant) error
	GetByID(id string) (*models.Restaurant, error)
	GetBySlug(slug string) (*models.Restaurant, error)
	List() ([]models.Restaurant, error)
	SetConnectID(id, connectID string) error
	EnablePayments(id string) error
	EnablePaymentsByConnectID(connectID string) error
	ActivateSubscription(id, customerID, planType string) error
	CancelSubscriptionByCustomerID(customerID string) error
	UpdateSubscription(id, status, customerID, planType string, currentPeriodEnd *time.Time) error
}

// MenuItemRepository defines the interface for catalog database operations.
type MenuItemRepository interface {
	Create(item *models.MenuItem) error
	GetByID(id string) (*models.MenuItem, error)
	GetByIDs(ids []string) ([]models.MenuItem, error)
	ListByRestaurant(restaurantID string, onlyAvailable bool) ([]models.MenuItem, error)
	Update(item *models.MenuItem) error
	Delete(id string) error
}

// TableRepository defines the interface for table database operations.
type TableRepository interface {
	Create(table *models.Table) error
	GetByID(id string) (*models.Table, error)
	ListByRestaurant(restaurantID string) ([]models.Table, error)
	Delete(id string) error
}

// OrderRepository defines the interface for order database operations.
// CreateWithItems is the idempotency gate: it inserts the order and its
// lines in one transaction and reports created=false when the session id
// already exists.
type OrderRepository interface {
	CreateWithItems(order *models.Order, items []models.OrderItem) (bool, error)
	GetByID(id string) (*models.Order, error)
	MarkPaid(id string) error
	UpdateStatus(id, status string) error
	ListByRestaurant(restaurantID string, limit int) ([]models.Order, error)
	SumTotalsSince(since time.Time) (float64, error)
}

// CheckoutAttemptRepository defines the append-only rate-limit ledger.
type CheckoutAttemptRepository interface {
	Record(identifier string) error
	CountSince(identifier string, since time.Time) (int64, error)
	DeleteBefore(cutoff time.Time) (int64, error)
}

// WebhookEventRepository defines the webhook dedup and audit store.
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
	ListProcessedBefore(cutoff time.Time, limit int) ([]models.PaymentWebhookEvent, error)
	DeleteByIDs(ids []uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Restaurant      RestaurantRepository
	MenuItem        MenuItemRepository
	Table           TableRepository
	Order           OrderRepository
	CheckoutAttempt CheckoutAttemptRepository
	WebhookEvent    WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Restaurant:      NewRestaurantRepository(db),
		MenuItem:        NewMenuItemRepository(db),
		Table:           NewTableRepository(db),
		Order:           NewOrderRepository(db),
		CheckoutAttempt: NewCheckoutAttemptRepository(db),
		WebhookEvent:    NewWebhookEventRepository(db),
	}
}
