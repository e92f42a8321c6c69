package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"

	"github.com/tablo-app/tablo/app/models"
)

func TestSubscriptionCreateCheckout(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{session: &stripe.CheckoutSession{URL: "https://checkout.stripe.com/s/sub"}}
	svc := NewSubscriptionService(newFakeRestaurantRepo(), gw, "https://tablo.example")

	url, err := svc.CreateCheckout(SubscriptionCheckoutRequest{
		PriceID:      "price_bistro",
		RestaurantID: "rest-1",
		PlanType:     models.PLAN_BUSINESS_LOUNGE,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/s/sub", url)

	params := gw.lastParams
	require.NotNil(t, params)
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), *params.Mode)
	assert.Equal(t, "subscription_upgrade", params.Metadata["type"])
	assert.Equal(t, "rest-1", params.Metadata["restaurantId"])
	assert.Equal(t, models.PLAN_BUSINESS_LOUNGE, params.Metadata["planType"])
	require.Len(t, params.LineItems, 1)
	assert.Equal(t, "price_bistro", *params.LineItems[0].Price)
}

func TestSubscriptionCreateCheckoutDefaultsPlan(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{session: &stripe.CheckoutSession{URL: "u"}}
	svc := NewSubscriptionService(newFakeRestaurantRepo(), gw, "https://tablo.example")

	_, err := svc.CreateCheckout(SubscriptionCheckoutRequest{PriceID: "price_x", RestaurantID: "rest-1"})
	require.NoError(t, err)
	assert.Equal(t, models.PLAN_BISTRO, gw.lastParams.Metadata["planType"])
}

func TestSubscriptionCreateCheckoutValidation(t *testing.T) {
	t.Parallel()

	svc := NewSubscriptionService(newFakeRestaurantRepo(), &fakeGateway{}, "https://tablo.example")

	_, err := svc.CreateCheckout(SubscriptionCheckoutRequest{PriceID: "price_x"})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 400, reqErr.Status)
}

func TestPortalURLRequiresCustomer(t *testing.T) {
	t.Parallel()

	restaurants := newFakeRestaurantRepo(&models.Restaurant{ID: "rest-1"})
	svc := NewSubscriptionService(restaurants, &fakeGateway{}, "https://tablo.example")

	_, err := svc.PortalURL("rest-1", "")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 404, reqErr.Status)
}

func TestPortalURL(t *testing.T) {
	t.Parallel()

	restaurants := newFakeRestaurantRepo(&models.Restaurant{ID: "rest-1", StripeCustomerID: "cus_42"})
	gw := &fakeGateway{portalSession: &stripe.BillingPortalSession{URL: "https://billing.stripe.com/p/x"}}
	svc := NewSubscriptionService(restaurants, gw, "https://tablo.example")

	url, err := svc.PortalURL("rest-1", "")
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.com/p/x", url)
}

func TestSyncFromGateway(t *testing.T) {
	t.Parallel()

	periodEnd := time.Now().Add(20 * 24 * time.Hour).Unix()
	restaurants := newFakeRestaurantRepo(&models.Restaurant{ID: "rest-1"})
	gw := &fakeGateway{customers: []*stripe.Customer{
		{
			ID: "cus_stale",
			Subscriptions: &stripe.SubscriptionList{Data: []*stripe.Subscription{
				{ID: "sub_old", Status: stripe.SubscriptionStatusCanceled},
			}},
		},
		{
			ID: "cus_live",
			Subscriptions: &stripe.SubscriptionList{Data: []*stripe.Subscription{
				{
					ID:               "sub_live",
					Status:           stripe.SubscriptionStatusActive,
					CurrentPeriodEnd: periodEnd,
					Metadata:         map[string]string{"planType": models.PLAN_GRANDE_RESERVE},
				},
			}},
		},
	}}
	svc := NewSubscriptionService(restaurants, gw, "https://tablo.example")

	status, err := svc.SyncFromGateway("rest-1", "owner@chez-test.fr")
	require.NoError(t, err)
	assert.Equal(t, string(stripe.SubscriptionStatusActive), status)

	restaurant := restaurants.restaurants["rest-1"]
	assert.Equal(t, "cus_live", restaurant.StripeCustomerID)
	assert.Equal(t, models.PLAN_GRANDE_RESERVE, restaurant.PlanType)
	require.NotNil(t, restaurant.CurrentPeriodEnd)
	assert.Equal(t, periodEnd, restaurant.CurrentPeriodEnd.Unix())
}

func TestSyncFromGatewayNoLiveSubscription(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{customers: []*stripe.Customer{{ID: "cus_1"}}}
	svc := NewSubscriptionService(newFakeRestaurantRepo(&models.Restaurant{ID: "rest-1"}), gw, "https://tablo.example")

	_, err := svc.SyncFromGateway("rest-1", "owner@chez-test.fr")
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 404, reqErr.Status)
	assert.Equal(t, MsgNoCustomerFound, reqErr.Message)
}
