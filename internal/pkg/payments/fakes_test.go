package payments

import (
	"errors"
	"time"

	"github.com/stripe/stripe-go/v81"
	"gorm.io/gorm"

	"github.com/tablo-app/tablo/app/models"
)

// fakeGateway records every call and answers from canned fields. Methods
// not configured return zero values so each test only sets what it needs.
type fakeGateway struct {
	account         *stripe.Account
	accountErr      error
	createdAccounts int

	onboardingLink *stripe.AccountLink
	loginLink      *stripe.LoginLink

	session          *stripe.CheckoutSession
	sessionErr       error
	lastParams       *stripe.CheckoutSessionParams
	expandedSession  *stripe.CheckoutSession
	expandedErr      error
	portalSession    *stripe.BillingPortalSession
	customers        []*stripe.Customer
	balance          *stripe.Balance
	balanceErr       error
	fees             []*stripe.ApplicationFee
	feesErr          error
	verifyEvent      *stripe.Event
	verifyErr        error
	verifiedPayloads [][]byte
}

func (g *fakeGateway) CreateConnectAccount(email, restaurantID string) (*stripe.Account, error) {
	g.createdAccounts++
	if g.account == nil {
		return nil, errors.New("no account configured")
	}
	return g.account, nil
}

func (g *fakeGateway) GetConnectAccount(accountID string) (*stripe.Account, error) {
	return g.account, g.accountErr
}

func (g *fakeGateway) CreateOnboardingLink(accountID, refreshURL, returnURL string) (*stripe.AccountLink, error) {
	if g.onboardingLink == nil {
		return nil, errors.New("no onboarding link configured")
	}
	return g.onboardingLink, nil
}

func (g *fakeGateway) CreateLoginLink(accountID string) (*stripe.LoginLink, error) {
	if g.loginLink == nil {
		return nil, errors.New("no login link configured")
	}
	return g.loginLink, nil
}

func (g *fakeGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.lastParams = params
	return g.session, g.sessionErr
}

func (g *fakeGateway) GetCheckoutSessionWithLineItems(sessionID string) (*stripe.CheckoutSession, error) {
	return g.expandedSession, g.expandedErr
}

func (g *fakeGateway) CreatePortalSession(customerID, returnURL string) (*stripe.BillingPortalSession, error) {
	return g.portalSession, nil
}

func (g *fakeGateway) ListCustomersByEmail(email string, limit int64) ([]*stripe.Customer, error) {
	return g.customers, nil
}

func (g *fakeGateway) GetBalance() (*stripe.Balance, error) {
	if g.balance == nil && g.balanceErr == nil {
		return &stripe.Balance{}, nil
	}
	return g.balance, g.balanceErr
}

func (g *fakeGateway) ListApplicationFees(createdSince int64, pageSize int64) ([]*stripe.ApplicationFee, error) {
	return g.fees, g.feesErr
}

func (g *fakeGateway) VerifyWebhookSignature(payload []byte, signatureHeader string) (*stripe.Event, error) {
	g.verifiedPayloads = append(g.verifiedPayloads, payload)
	return g.verifyEvent, g.verifyErr
}

// fakeRestaurantRepo is an in-memory RestaurantRepository.
type fakeRestaurantRepo struct {
	restaurants map[string]*models.Restaurant
	listErr     error
}

func newFakeRestaurantRepo(restaurants ...*models.Restaurant) *fakeRestaurantRepo {
	r := &fakeRestaurantRepo{restaurants: map[string]*models.Restaurant{}}
	for _, restaurant := range restaurants {
		r.restaurants[restaurant.ID] = restaurant
	}
	return r
}

func (r *fakeRestaurantRepo) Create(restaurant *models.Restaurant) error {
	r.restaurants[restaurant.ID] = restaurant
	return nil
}

func (r *fakeRestaurantRepo) GetByID(id string) (*models.Restaurant, error) {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return restaurant, nil
}

func (r *fakeRestaurantRepo) GetBySlug(slug string) (*models.Restaurant, error) {
	for _, restaurant := range r.restaurants {
		if restaurant.Slug == slug {
			return restaurant, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRestaurantRepo) List() ([]models.Restaurant, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Restaurant
	for _, restaurant := range r.restaurants {
		out = append(out, *restaurant)
	}
	return out, nil
}

func (r *fakeRestaurantRepo) SetConnectID(id, connectID string) error {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if restaurant.StripeConnectID == "" {
		restaurant.StripeConnectID = connectID
	}
	return nil
}

func (r *fakeRestaurantRepo) EnablePayments(id string) error {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	restaurant.PaymentsEnabled = true
	return nil
}

func (r *fakeRestaurantRepo) EnablePaymentsByConnectID(connectID string) error {
	for _, restaurant := range r.restaurants {
		if restaurant.StripeConnectID == connectID {
			restaurant.PaymentsEnabled = true
			return nil
		}
	}
	return nil
}

func (r *fakeRestaurantRepo) ActivateSubscription(id, customerID, planType string) error {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	restaurant.SubscriptionStatus = models.SUBSCRIPTION_ACTIVE
	restaurant.StripeCustomerID = customerID
	restaurant.PlanType = planType
	return nil
}

func (r *fakeRestaurantRepo) CancelSubscriptionByCustomerID(customerID string) error {
	for _, restaurant := range r.restaurants {
		if restaurant.StripeCustomerID == customerID {
			restaurant.SubscriptionStatus = models.SUBSCRIPTION_CANCELED
			restaurant.PlanType = models.PLAN_FREE
		}
	}
	return nil
}

func (r *fakeRestaurantRepo) UpdateSubscription(id, status, customerID, planType string, currentPeriodEnd *time.Time) error {
	restaurant, ok := r.restaurants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	restaurant.SubscriptionStatus = status
	restaurant.StripeCustomerID = customerID
	if planType != "" {
		restaurant.PlanType = planType
	}
	restaurant.CurrentPeriodEnd = currentPeriodEnd
	return nil
}

// fakeMenuItemRepo serves a fixed catalog.
type fakeMenuItemRepo struct {
	items map[string]models.MenuItem
}

func newFakeMenuItemRepo(items ...models.MenuItem) *fakeMenuItemRepo {
	r := &fakeMenuItemRepo{items: map[string]models.MenuItem{}}
	for _, item := range items {
		r.items[item.ID] = item
	}
	return r
}

func (r *fakeMenuItemRepo) Create(item *models.MenuItem) error {
	r.items[item.ID] = *item
	return nil
}

func (r *fakeMenuItemRepo) GetByID(id string) (*models.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *fakeMenuItemRepo) GetByIDs(ids []string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeMenuItemRepo) ListByRestaurant(restaurantID string, onlyAvailable bool) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, item := range r.items {
		if item.RestaurantID == restaurantID && (!onlyAvailable || item.IsAvailable) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeMenuItemRepo) Update(item *models.MenuItem) error {
	r.items[item.ID] = *item
	return nil
}

func (r *fakeMenuItemRepo) Delete(id string) error {
	delete(r.items, id)
	return nil
}

// fakeOrderRepo keys orders by session id the way the real unique index
// does.
type fakeOrderRepo struct {
	bySession map[string]*models.Order
	byID      map[string]*models.Order
	sumTotal  float64
	sumErr    error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		bySession: map[string]*models.Order{},
		byID:      map[string]*models.Order{},
	}
}

func (r *fakeOrderRepo) CreateWithItems(order *models.Order, items []models.OrderItem) (bool, error) {
	if _, exists := r.bySession[order.StripeSessionID]; exists {
		return false, nil
	}
	if order.ID == "" {
		order.ID = "ord_" + order.StripeSessionID
	}
	order.Items = items
	r.bySession[order.StripeSessionID] = order
	r.byID[order.ID] = order
	return true, nil
}

func (r *fakeOrderRepo) GetByID(id string) (*models.Order, error) {
	order, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) MarkPaid(id string) error {
	order, ok := r.byID[id]
	if !ok {
		return nil
	}
	if order.Status == models.ORDER_STATUS_PENDING {
		order.Status = models.ORDER_STATUS_PAID
	}
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(id, status string) error {
	order, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (r *fakeOrderRepo) ListByRestaurant(restaurantID string, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.byID {
		if order.RestaurantID == restaurantID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) SumTotalsSince(since time.Time) (float64, error) {
	return r.sumTotal, r.sumErr
}

// fakeAttemptRepo is an in-memory attempt ledger.
type fakeAttemptRepo struct {
	attempts []attemptRow
	countErr error
}

type attemptRow struct {
	identifier string
	createdAt  time.Time
}

func (r *fakeAttemptRepo) Record(identifier string) error {
	r.attempts = append(r.attempts, attemptRow{identifier: identifier, createdAt: time.Now()})
	return nil
}

func (r *fakeAttemptRepo) recordAt(identifier string, at time.Time) {
	r.attempts = append(r.attempts, attemptRow{identifier: identifier, createdAt: at})
}

func (r *fakeAttemptRepo) CountSince(identifier string, since time.Time) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var count int64
	for _, a := range r.attempts {
		if a.identifier == identifier && a.createdAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) DeleteBefore(cutoff time.Time) (int64, error) {
	var kept []attemptRow
	var deleted int64
	for _, a := range r.attempts {
		if a.createdAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.attempts = kept
	return deleted, nil
}

// fakeEventRepo is an in-memory webhook event store with event-id dedup.
type fakeEventRepo struct {
	byEventID map[string]*models.PaymentWebhookEvent
	nextID    uint
	createErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byEventID: map[string]*models.PaymentWebhookEvent{}}
}

func (r *fakeEventRepo) CreateIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	if r.createErr != nil {
		return false, nil, r.createErr
	}
	if existing, ok := r.byEventID[event.StripeEventID]; ok {
		return false, existing, nil
	}
	r.nextID++
	event.ID = r.nextID
	r.byEventID[event.StripeEventID] = event
	return true, event, nil
}

func (r *fakeEventRepo) MarkProcessed(id uint, processingError string) error {
	for _, event := range r.byEventID {
		if event.ID == id {
			now := time.Now()
			event.ProcessedAt = &now
			event.ProcessingError = processingError
		}
	}
	return nil
}

func (r *fakeEventRepo) ListProcessedBefore(cutoff time.Time, limit int) ([]models.PaymentWebhookEvent, error) {
	var out []models.PaymentWebhookEvent
	for _, event := range r.byEventID {
		if event.ProcessedAt != nil && event.ProcessedAt.Before(cutoff) {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) DeleteByIDs(ids []uint) error {
	for _, id := range ids {
		for key, event := range r.byEventID {
			if event.ID == id {
				delete(r.byEventID, key)
			}
		}
	}
	return nil
}
