package payments

// User-facing error strings on the money path are French by product
// decision; internal detail goes to the log, not to the diner.
const (
	MsgTooManyAttempts    = "Trop de tentatives de paiement. Veuillez patienter une minute."
	MsgPaymentsNotEnabled = "Ce restaurant n'accepte pas encore les paiements en ligne."
	MsgItemsGone          = "Certains articles n'existent plus."
	MsgMinimumAmount      = "Le montant minimum est de 0.50€"
	MsgNoCustomerFound    = "Aucun client Stripe trouvé avec cet email."
)

// RequestError carries the HTTP status a handler should answer with. Every
// other error maps to a 500 with the upstream message passed through.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func badRequest(message string) *RequestError {
	return &RequestError{Status: 400, Message: message}
}

func notFound(message string) *RequestError {
	return &RequestError{Status: 404, Message: message}
}

// CartItem is a client-submitted cart line. Only ID and Quantity are
// trusted; any price or name the client sends is discarded and re-resolved
// against the catalog.
type CartItem struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

// CheckoutRequest is the body of POST /api/v1/checkout.
type CheckoutRequest struct {
	Cart          []CartItem `json:"cart" validate:"required,min=1"`
	RestaurantID  string     `json:"restaurantId" validate:"required"`
	TableID       string     `json:"tableId"`
	TipAmount     float64    `json:"tipAmount" validate:"gte=0"`
	Slug          string     `json:"slug"`
	CustomerEmail string     `json:"customerEmail" validate:"omitempty,email"`
}

// SubscriptionCheckoutRequest is the body of POST /api/v1/subscription/checkout.
type SubscriptionCheckoutRequest struct {
	PriceID      string `json:"priceId" validate:"required"`
	RestaurantID string `json:"restaurantId" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	SuccessURL   string `json:"successUrl"`
	CancelURL    string `json:"cancelUrl"`
	PlanType     string `json:"planType"`
}

// ConnectStatus reports the live gateway state of a connected account.
type ConnectStatus struct {
	AccountID        string `json:"accountId"`
	IsReady          bool   `json:"isReady"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}
