package payments

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v81"
	"gorm.io/gorm"

	"github.com/tablo-app/tablo/app/models"
	"github.com/tablo-app/tablo/app/repository"
)

// Commission is exactly 1% of the product subtotal, rounded half up to the
// cent, and never applies to the tip line.
const commissionRate = 0.01

// minimumChargeCents is the processor's minimum charge floor (0.50 EUR).
const minimumChargeCents = 50

// CheckoutService validates a cart against server-held prices and builds a
// destination-charge checkout session for the restaurant's connected
// account. It never writes orders; the webhook engine materializes the
// order once the session completes.
type CheckoutService struct {
	restaurants repository.RestaurantRepository
	items       repository.MenuItemRepository
	limiter     *RateLimiter
	gateway     Gateway
	appURL      string
	validate    *validator.Validate
}

// NewCheckoutService creates the checkout construction service.
func NewCheckoutService(
	restaurants repository.RestaurantRepository,
	items repository.MenuItemRepository,
	limiter *RateLimiter,
	gateway Gateway,
	appURL string,
) *CheckoutService {
	return &CheckoutService{
		restaurants: restaurants,
		items:       items,
		limiter:     limiter,
		gateway:     gateway,
		appURL:      appURL,
		validate:    validator.New(),
	}
}

// CreateSession runs the full checkout construction: rate limit, input
// validation, server-side re-pricing, commission and tip computation, and
// session creation. It returns the hosted checkout URL.
func (s *CheckoutService) CreateSession(req CheckoutRequest, clientAddress string) (string, error) {
	// The window check and the attempt record happen before any catalog or
	// gateway call.
	if err := s.limiter.Allow(AttemptIdentifier(clientAddress, req.TableID)); err != nil {
		return "", err
	}

	if err := s.validate.Struct(req); err != nil {
		return "", badRequest("Missing cart or restaurantId")
	}

	restaurant, err := s.restaurants.GetByID(req.RestaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", badRequest(MsgPaymentsNotEnabled)
		}
		return "", err
	}
	if restaurant.StripeConnectID == "" {
		return "", badRequest(MsgPaymentsNotEnabled)
	}

	lineItems, subtotalCents, err := s.priceCart(req.Cart)
	if err != nil {
		return "", err
	}

	if subtotalCents < minimumChargeCents {
		return "", badRequest(MsgMinimumAmount)
	}

	// Commission on products only, before the tip line is appended.
	applicationFeeCents := CommissionCents(subtotalCents)

	if req.TipAmount > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyEUR)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String("Pourboire Équipe (Tip)"),
					Description: stripe.String("Merci pour votre soutien !"),
				},
				UnitAmount: stripe.Int64(int64(math.Round(req.TipAmount * 100))),
			},
			Quantity: stripe.Int64(1),
		})
	}

	slug := req.Slug
	if slug == "" {
		slug = "menu"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:      stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: lineItems,
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(applicationFeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(restaurant.StripeConnectID),
			},
		},
		InvoiceCreation: &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/order-success?session_id={CHECKOUT_SESSION_ID}&restaurantId=%s", s.appURL, req.RestaurantID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/m/%s?canceled=true", s.appURL, slug)),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	// The metadata is the only durable link between the eventual payment
	// and this restaurant/table; the webhook has nothing else to go on.
	params.AddMetadata("type", "client_order")
	params.AddMetadata("restaurantId", req.RestaurantID)
	params.AddMetadata("tableId", req.TableID)

	session, err := s.gateway.CreateCheckoutSession(params)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// priceCart resolves every cart id against the catalog and prices the cart
// exclusively from server-held prices. Unknown ids are dropped; if nothing
// survives, the cart is rejected. Every surviving line carries its catalog
// id in product metadata: the id is the key the catalog row was matched
// under, so a line without one cannot be built. Reconciliation depends on
// that metadata to map the payment back to the catalog.
func (s *CheckoutService) priceCart(cart []CartItem) ([]*stripe.CheckoutSessionLineItemParams, int64, error) {
	ids := make([]string, 0, len(cart))
	for _, ci := range cart {
		ids = append(ids, ci.ID)
	}

	dbItems, err := s.items.GetByIDs(ids)
	if err != nil {
		return nil, 0, err
	}
	if len(dbItems) == 0 {
		return nil, 0, badRequest(MsgItemsGone)
	}

	itemsByID := make(map[string]models.MenuItem, len(dbItems))
	for _, item := range dbItems {
		itemsByID[item.ID] = item
	}

	var lineItems []*stripe.CheckoutSessionLineItemParams
	var subtotalCents int64

	for _, ci := range cart {
		item, ok := itemsByID[ci.ID]
		if !ok || ci.Quantity <= 0 {
			continue
		}

		unitAmount := int64(math.Round(item.Price * 100))
		subtotalCents += unitAmount * ci.Quantity

		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
			Metadata: map[string]string{
				"itemId": item.ID, // the webhook maps lines back through this
			},
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyEUR)),
				ProductData: productData,
				UnitAmount:  stripe.Int64(unitAmount),
			},
			Quantity: stripe.Int64(ci.Quantity),
		})
	}

	if len(lineItems) == 0 {
		return nil, 0, badRequest(MsgItemsGone)
	}
	return lineItems, subtotalCents, nil
}

// CommissionCents computes the platform fee for a product subtotal:
// round-half-up of 1%.
func CommissionCents(subtotalCents int64) int64 {
	return int64(math.Round(float64(subtotalCents) * commissionRate))
}
