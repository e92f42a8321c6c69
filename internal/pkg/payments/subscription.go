package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"gorm.io/gorm"

	"github.com/tablo-app/tablo/app/models"
	"github.com/tablo-app/tablo/app/repository"
)

// SubscriptionService builds SaaS subscription checkout sessions and
// billing-portal sessions for restaurant owners, and can repair local
// subscription state from the gateway when a webhook was missed.
type SubscriptionService struct {
	restaurants repository.RestaurantRepository
	gateway     Gateway
	appURL      string
}

// NewSubscriptionService creates the subscription service.
func NewSubscriptionService(restaurants repository.RestaurantRepository, gateway Gateway, appURL string) *SubscriptionService {
	return &SubscriptionService{
		restaurants: restaurants,
		gateway:     gateway,
		appURL:      appURL,
	}
}

// CreateCheckout builds a subscription-mode checkout session. The metadata
// type tag is what routes the eventual completion event to the
// subscription-upgrade branch of the webhook engine.
func (s *SubscriptionService) CreateCheckout(req SubscriptionCheckoutRequest) (string, error) {
	if req.PriceID == "" || req.RestaurantID == "" {
		return "", badRequest("Missing parameters")
	}

	planType := req.PlanType
	if planType == "" {
		planType = models.PLAN_BISTRO
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = fmt.Sprintf("%s/admin/settings?success=true", s.appURL)
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = fmt.Sprintf("%s/admin/settings?canceled=true", s.appURL)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.AddMetadata("type", "subscription_upgrade")
	params.AddMetadata("restaurantId", req.RestaurantID)
	params.AddMetadata("planType", planType)

	session, err := s.gateway.CreateCheckoutSession(params)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// PortalURL creates a billing-portal session for a subscribed restaurant.
func (s *SubscriptionService) PortalURL(restaurantID, returnURL string) (string, error) {
	if restaurantID == "" {
		return "", badRequest("Missing restaurantId")
	}

	restaurant, err := s.restaurants.GetByID(restaurantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", notFound("No subscription found for this restaurant")
		}
		return "", err
	}
	if restaurant.StripeCustomerID == "" {
		return "", notFound("No subscription found for this restaurant")
	}

	if returnURL == "" {
		returnURL = fmt.Sprintf("%s/admin/settings", s.appURL)
	}
	session, err := s.gateway.CreatePortalSession(restaurant.StripeCustomerID, returnURL)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}

// SyncFromGateway looks the owner up by email on the gateway and repairs
// the local subscription fields from the first live subscription found.
// This is the manual recovery path for a missed or failed webhook.
func (s *SubscriptionService) SyncFromGateway(restaurantID, email string) (string, error) {
	if restaurantID == "" || email == "" {
		return "", badRequest("Missing restaurantId or email")
	}

	customers, err := s.gateway.ListCustomersByEmail(email, 5)
	if err != nil {
		return "", err
	}
	if len(customers) == 0 {
		return "", notFound(MsgNoCustomerFound)
	}

	for _, customer := range customers {
		if customer.Subscriptions == nil {
			continue
		}
		for _, sub := range customer.Subscriptions.Data {
			if sub.Status != stripe.SubscriptionStatusActive && sub.Status != stripe.SubscriptionStatusTrialing {
				continue
			}

			planType := sub.Metadata["planType"]
			var periodEnd *time.Time
			if sub.CurrentPeriodEnd > 0 {
				t := time.Unix(sub.CurrentPeriodEnd, 0)
				periodEnd = &t
			}
			if err := s.restaurants.UpdateSubscription(
				restaurantID,
				string(sub.Status),
				customer.ID,
				planType,
				periodEnd,
			); err != nil {
				return "", err
			}
			return string(sub.Status), nil
		}
	}

	return "", notFound(MsgNoCustomerFound)
}
