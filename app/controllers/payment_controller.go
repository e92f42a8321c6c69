package controllers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tablo-app/tablo/internal/pkg/payments"
)

// PaymentController exposes the Stripe-facing HTTP surface: Connect
// onboarding, checkout construction, subscription management, the webhook
// receiver and the financial report.
type PaymentController struct {
	onboarding    *payments.OnboardingService
	checkout      *payments.CheckoutService
	subscriptions *payments.SubscriptionService
	webhooks      *payments.WebhookEngine
	financials    *payments.FinancialsService
}

func NewPaymentController(
	onboarding *payments.OnboardingService,
	checkout *payments.CheckoutService,
	subscriptions *payments.SubscriptionService,
	webhooks *payments.WebhookEngine,
	financials *payments.FinancialsService,
) *PaymentController {
	return &PaymentController{
		onboarding:    onboarding,
		checkout:      checkout,
		subscriptions: subscriptions,
		webhooks:      webhooks,
		financials:    financials,
	}
}

type connectOnboardingRequest struct {
	RestaurantID string `json:"restaurantId"`
	Email        string `json:"email"`
}

// HandleConnectOnboarding creates (or resumes) Stripe Connect onboarding
// for a restaurant and returns the URL the browser should follow.
func (pc *PaymentController) HandleConnectOnboarding(c *fiber.Ctx) error {
	var req connectOnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.RestaurantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "restaurantId is required"})
	}

	url, err := pc.onboarding.EnsureOnboarded(req.RestaurantID, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

type connectStatusRequest struct {
	RestaurantID string `json:"restaurantId"`
}

// HandleConnectStatus reports the live Connect account state for a
// restaurant and flips payments on once the account is fully ready.
func (pc *PaymentController) HandleConnectStatus(c *fiber.Ctx) error {
	var req connectStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	status, err := pc.onboarding.CheckStatus(req.RestaurantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// HandleCreateCheckout builds a Stripe Checkout session for a diner's cart
// and returns its redirect URL.
func (pc *PaymentController) HandleCreateCheckout(c *fiber.Ctx) error {
	var req payments.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	url, err := pc.checkout.CreateSession(req, clientAddress(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleSubscriptionCheckout starts a platform subscription upgrade.
func (pc *PaymentController) HandleSubscriptionCheckout(c *fiber.Ctx) error {
	var req payments.SubscriptionCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	url, err := pc.subscriptions.CreateCheckout(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

type subscriptionSyncRequest struct {
	RestaurantID string `json:"restaurantId"`
	Email        string `json:"email"`
}

// HandleSubscriptionSync reconciles a restaurant's subscription state from
// the gateway when webhooks were missed.
func (pc *PaymentController) HandleSubscriptionSync(c *fiber.Ctx) error {
	var req subscriptionSyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.RestaurantID == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "restaurantId and email are required"})
	}

	status, err := pc.subscriptions.SyncFromGateway(req.RestaurantID, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

type portalRequest struct {
	RestaurantID string `json:"restaurantId"`
	ReturnURL    string `json:"returnUrl"`
}

// HandlePortal returns a Stripe billing portal URL for the restaurant's
// customer record.
func (pc *PaymentController) HandlePortal(c *fiber.Ctx) error {
	var req portalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	url, err := pc.subscriptions.PortalURL(req.RestaurantID, req.ReturnURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleWebhook receives Stripe events. Only a signature failure answers
// non-200; once the event is authenticated we always acknowledge so Stripe
// stops retrying, and failures are kept in the event store for replay.
func (pc *PaymentController) HandleWebhook(c *fiber.Ctx) error {
	// Fiber reuses its buffers between requests; the engine keeps the
	// payload past the handler's lifetime, so copy it out.
	payload := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	if err := pc.webhooks.Process(payload, signature); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}

// HandleFinancials returns the aggregated financial report for the
// platform dashboard.
func (pc *PaymentController) HandleFinancials(c *fiber.Ctx) error {
	report, err := pc.financials.Report()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// respondError maps service errors to HTTP answers. RequestError carries
// its own status and a user-facing message; anything else is a 500.
func respondError(c *fiber.Ctx, err error) error {
	var reqErr *payments.RequestError
	if errors.As(err, &reqErr) {
		return c.Status(reqErr.Status).JSON(fiber.Map{"error": reqErr.Message})
	}
	log.Printf("[API] Internal error on %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// clientAddress resolves the caller's address for rate limiting, honoring
// the first hop of X-Forwarded-For when running behind the proxy.
func clientAddress(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.IP()
}
