package payments

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v81"

	"github.com/tablo-app/tablo/app/models"
	"github.com/tablo-app/tablo/app/repository"
)

// EventHandler processes one authenticated gateway event. Handlers must be
// idempotent and independently correct: the gateway redelivers events and
// guarantees no ordering across event types.
type EventHandler func(event *stripe.Event) error

// WebhookEngine is the reconciliation state machine. It holds no state of
// its own; every mutation lands in the ledger through a repository, gated
// by the event-level dedup table and, for orders, the unique session id.
type WebhookEngine struct {
	gateway     Gateway
	restaurants repository.RestaurantRepository
	orders      repository.OrderRepository
	events      repository.WebhookEventRepository
	handlers    map[string]EventHandler
}

// NewWebhookEngine creates the engine with the built-in dispatch table.
func NewWebhookEngine(
	gateway Gateway,
	restaurants repository.RestaurantRepository,
	orders repository.OrderRepository,
	events repository.WebhookEventRepository,
) *WebhookEngine {
	e := &WebhookEngine{
		gateway:     gateway,
		restaurants: restaurants,
		orders:      orders,
		events:      events,
	}
	e.handlers = map[string]EventHandler{
		"checkout.session.completed":    e.handleCheckoutSessionCompleted,
		"customer.subscription.deleted": e.handleSubscriptionDeleted,
		"account.updated":               e.handleAccountUpdated,
		"payment_intent.succeeded":      e.handlePaymentIntentSucceeded,
	}
	return e
}

// RegisterHandler adds or replaces the handler for an event type. New event
// types are supported by registering a handler, not by editing Process.
func (e *WebhookEngine) RegisterHandler(eventType string, handler EventHandler) {
	e.handlers[eventType] = handler
}

// Process authenticates and reconciles one inbound delivery. The only error
// it ever returns is the 400 signature failure; once the payload is
// authenticated the answer is success no matter what the handler did,
// because a non-200 would make the gateway redeliver forever without
// fixing anything. Failed reconciliations are recorded on the event row
// and logged for external alerting.
func (e *WebhookEngine) Process(payload []byte, signatureHeader string) error {
	event, err := e.gateway.VerifyWebhookSignature(payload, signatureHeader)
	if err != nil {
		return badRequest(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	created, stored, recordErr := e.events.CreateIfNotExists(&models.PaymentWebhookEvent{
		StripeEventID:  event.ID,
		EventType:      string(event.Type),
		PayloadJSON:    string(payload),
		SignatureValid: true,
	})
	if recordErr != nil {
		// Dedup is an optimization layered over idempotent handlers; if the
		// ledger cannot record the event we still process it.
		log.Printf("webhook: failed to record event %s: %v", event.ID, recordErr)
	} else if !created {
		log.Printf("webhook: duplicate delivery of %s (%s), skipping", event.ID, event.Type)
		return nil
	}

	handler, ok := e.handlers[string(event.Type)]
	if !ok {
		// Unknown event types are ignored, which keeps the endpoint
		// forward-compatible with events we do not yet understand.
		e.markProcessed(stored, nil)
		return nil
	}

	handlerErr := handler(event)
	if handlerErr != nil {
		log.Printf("webhook: handling %s (%s) failed: %v", event.ID, event.Type, handlerErr)
	}
	e.markProcessed(stored, handlerErr)
	return nil
}

func (e *WebhookEngine) markProcessed(stored *models.PaymentWebhookEvent, handlerErr error) {
	if stored == nil {
		return
	}
	errMsg := ""
	if handlerErr != nil {
		errMsg = handlerErr.Error()
	}
	if err := e.events.MarkProcessed(stored.ID, errMsg); err != nil {
		log.Printf("webhook: failed to mark event %d processed: %v", stored.ID, err)
	}
}

// handleCheckoutSessionCompleted routes a completed session by its metadata
// type tag: a SaaS subscription upgrade by the owner, or a diner order.
func (e *WebhookEngine) handleCheckoutSessionCompleted(event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("unmarshal checkout session: %w", err)
	}

	switch session.Metadata["type"] {
	case "subscription_upgrade":
		return e.applySubscriptionUpgrade(&session)
	case "client_order":
		return e.materializeOrder(&session)
	default:
		// Sessions created outside this platform carry no type tag.
		return nil
	}
}

// applySubscriptionUpgrade activates the restaurant's subscription.
// Re-applying is a no-op because the target state is the same.
func (e *WebhookEngine) applySubscriptionUpgrade(session *stripe.CheckoutSession) error {
	restaurantID := session.Metadata["restaurantId"]
	if restaurantID == "" {
		return fmt.Errorf("subscription_upgrade session %s has no restaurantId", session.ID)
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	planType := session.Metadata["planType"]
	if planType == "" {
		planType = models.PLAN_BISTRO
	}

	return e.restaurants.ActivateSubscription(restaurantID, customerID, planType)
}

// materializeOrder creates the order and its lines from a completed diner
// checkout. The session is re-fetched with expanded line items because the
// webhook payload does not include them, and the session is the only
// durable record connecting the payment to the products. Insertion is
// gated by the unique session id, so replays cannot double-create.
func (e *WebhookEngine) materializeOrder(session *stripe.CheckoutSession) error {
	restaurantID := session.Metadata["restaurantId"]
	if restaurantID == "" {
		return fmt.Errorf("client_order session %s has no restaurantId", session.ID)
	}

	full, err := e.gateway.GetCheckoutSessionWithLineItems(session.ID)
	if err != nil {
		return fmt.Errorf("retrieve session %s: %w", session.ID, err)
	}

	var items []models.OrderItem
	var productSubtotalCents int64
	if full.LineItems != nil {
		for _, li := range full.LineItems.Data {
			var itemID *string
			var unitAmountCents int64
			if li.Price != nil {
				unitAmountCents = li.Price.UnitAmount
				if li.Price.Product != nil {
					if id := li.Price.Product.Metadata["itemId"]; id != "" {
						itemID = &id
					}
				}
			}
			// Lines without a catalog id (the tip, or a since-deleted item)
			// are kept with a NULL item reference for audit completeness.
			if itemID != nil {
				productSubtotalCents += unitAmountCents * li.Quantity
			}
			items = append(items, models.OrderItem{
				ItemID:    itemID,
				Name:      li.Description,
				Quantity:  li.Quantity,
				UnitPrice: float64(unitAmountCents) / 100,
			})
		}
	}

	var tableID *string
	if t := session.Metadata["tableId"]; t != "" {
		tableID = &t
	}

	order := &models.Order{
		RestaurantID:    restaurantID,
		TableID:         tableID,
		StripeSessionID: session.ID,
		Status:          models.ORDER_STATUS_PAID, // prepaid at creation
		TotalPrice:      float64(full.AmountTotal) / 100,
		// The fee lives on the payment intent, not the session; it is
		// recomputed from the product subtotal with the same rule checkout
		// construction used.
		ApplicationFeeAmount: float64(CommissionCents(productSubtotalCents)) / 100,
	}

	created, err := e.orders.CreateWithItems(order, items)
	if err != nil {
		return fmt.Errorf("create order for session %s: %w", session.ID, err)
	}
	if !created {
		log.Printf("webhook: order for session %s already exists, replay ignored", session.ID)
	}
	return nil
}

// handleSubscriptionDeleted downgrades the restaurant identified by the
// gateway customer id. Already-canceled tenants are a no-op.
func (e *WebhookEngine) handleSubscriptionDeleted(event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("unmarshal subscription: %w", err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}
	return e.restaurants.CancelSubscriptionByCustomerID(sub.Customer.ID)
}

// handleAccountUpdated enables payments once the gateway confirms the
// connected account can charge. The flag is monotonic: no account state
// ever turns it back off.
func (e *WebhookEngine) handleAccountUpdated(event *stripe.Event) error {
	var account stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
		return fmt.Errorf("unmarshal account: %w", err)
	}
	if account.ChargesEnabled && account.DetailsSubmitted {
		return e.restaurants.EnablePaymentsByConnectID(account.ID)
	}
	return nil
}

// handlePaymentIntentSucceeded confirms payment on the referenced order.
// Arrival order relative to checkout.session.completed is not guaranteed;
// MarkPaid only moves pending orders so nothing regresses.
func (e *WebhookEngine) handlePaymentIntentSucceeded(event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("unmarshal payment intent: %w", err)
	}
	orderID := intent.Metadata["orderId"]
	if orderID == "" {
		return nil
	}
	return e.orders.MarkPaid(orderID)
}
