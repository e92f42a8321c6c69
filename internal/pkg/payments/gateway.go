package payments

import (
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// Gateway abstracts the payment processor operations the platform uses. It
// is stateless and never touches the database; services receive it as a
// constructor argument so tests can substitute a fake.
type Gateway interface {
	CreateConnectAccount(email, restaurantID string) (*stripe.Account, error)
	GetConnectAccount(accountID string) (*stripe.Account, error)
	CreateOnboardingLink(accountID, refreshURL, returnURL string) (*stripe.AccountLink, error)
	CreateLoginLink(accountID string) (*stripe.LoginLink, error)
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSessionWithLineItems(sessionID string) (*stripe.CheckoutSession, error)
	CreatePortalSession(customerID, returnURL string) (*stripe.BillingPortalSession, error)
	ListCustomersByEmail(email string, limit int64) ([]*stripe.Customer, error)
	GetBalance() (*stripe.Balance, error)
	ListApplicationFees(createdSince int64, pageSize int64) ([]*stripe.ApplicationFee, error)
	VerifyWebhookSignature(payload []byte, signatureHeader string) (*stripe.Event, error)
}

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates the gateway adapter from a secret key and the
// webhook signing secret.
func NewStripeGateway(apiKey, webhookSecret string) *StripeGateway {
	return &StripeGateway{
		api:           client.New(apiKey, nil),
		webhookSecret: webhookSecret,
	}
}

// CreateConnectAccount creates an Express connected account with card
// payments and transfers requested.
func (g *StripeGateway) CreateConnectAccount(email, restaurantID string) (*stripe.Account, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	params.AddMetadata("restaurantId", restaurantID)

	return g.api.Accounts.New(params)
}

func (g *StripeGateway) GetConnectAccount(accountID string) (*stripe.Account, error) {
	return g.api.Accounts.GetByID(accountID, nil)
}

func (g *StripeGateway) CreateOnboardingLink(accountID, refreshURL, returnURL string) (*stripe.AccountLink, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	return g.api.AccountLinks.New(params)
}

func (g *StripeGateway) CreateLoginLink(accountID string) (*stripe.LoginLink, error) {
	params := &stripe.LoginLinkParams{
		Account: stripe.String(accountID),
	}
	return g.api.LoginLinks.New(params)
}

func (g *StripeGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return g.api.CheckoutSessions.New(params)
}

// GetCheckoutSessionWithLineItems re-fetches a session with its line items
// and their products expanded, so reconciliation can map each line back to
// a catalog id via product metadata.
func (g *StripeGateway) GetCheckoutSessionWithLineItems(sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("line_items")
	params.AddExpand("line_items.data.price.product")
	return g.api.CheckoutSessions.Get(sessionID, params)
}

func (g *StripeGateway) CreatePortalSession(customerID, returnURL string) (*stripe.BillingPortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	return g.api.BillingPortalSessions.New(params)
}

func (g *StripeGateway) ListCustomersByEmail(email string, limit int64) ([]*stripe.Customer, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Limit = stripe.Int64(limit)
	params.AddExpand("data.subscriptions")

	var customers []*stripe.Customer
	iter := g.api.Customers.List(params)
	for iter.Next() {
		customers = append(customers, iter.Customer())
	}
	return customers, iter.Err()
}

func (g *StripeGateway) GetBalance() (*stripe.Balance, error) {
	return g.api.Balance.Get(&stripe.BalanceParams{})
}

// ListApplicationFees returns every application fee created at or after
// createdSince. The iterator follows has_more across pages, so pageSize
// only tunes how many fees each API call fetches.
func (g *StripeGateway) ListApplicationFees(createdSince int64, pageSize int64) ([]*stripe.ApplicationFee, error) {
	params := &stripe.ApplicationFeeListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: createdSince,
		},
	}
	params.Limit = stripe.Int64(pageSize)

	var fees []*stripe.ApplicationFee
	iter := g.api.ApplicationFees.List(params)
	for iter.Next() {
		fees = append(fees, iter.ApplicationFee())
	}
	return fees, iter.Err()
}

// VerifyWebhookSignature authenticates a raw webhook payload against the
// signing secret before anything parses it. The API-version mismatch is
// ignored so CLI-forwarded test events still verify.
func (g *StripeGateway) VerifyWebhookSignature(payload []byte, signatureHeader string) (*stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}
