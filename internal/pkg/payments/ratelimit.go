package payments

import (
	"log"
	"time"

	"github.com/tablo-app/tablo/app/repository"
)

const (
	checkoutAttemptLimit  = 5
	checkoutAttemptWindow = 60 * time.Second
)

// RateLimiter guards the checkout entry point with a sliding 60-second
// window over the checkout_attempts ledger. There is no cross-request
// locking, so concurrent requests can slip past the count; this is an abuse
// deterrent, not a security boundary.
type RateLimiter struct {
	attempts repository.CheckoutAttemptRepository
	limit    int64
	window   time.Duration
}

// NewRateLimiter creates a limiter over the attempt ledger.
func NewRateLimiter(attempts repository.CheckoutAttemptRepository) *RateLimiter {
	return &RateLimiter{
		attempts: attempts,
		limit:    checkoutAttemptLimit,
		window:   checkoutAttemptWindow,
	}
}

// AttemptIdentifier keys the window by client address and table.
func AttemptIdentifier(clientAddress, tableID string) string {
	if tableID == "" {
		tableID = "no-table"
	}
	return clientAddress + "-" + tableID
}

// Allow checks the window and records the attempt immediately, before the
// caller does any catalog or gateway work, so worst-case load stays bounded
// even under repeated failures. A failing count query is logged and lets
// the request through rather than blocking checkouts on the ledger.
func (l *RateLimiter) Allow(identifier string) error {
	count, err := l.attempts.CountSince(identifier, time.Now().Add(-l.window))
	if err != nil {
		log.Printf("rate limit check error for %s: %v", identifier, err)
	} else if count >= l.limit {
		return &RequestError{Status: 429, Message: MsgTooManyAttempts}
	}

	if err := l.attempts.Record(identifier); err != nil {
		log.Printf("failed to record checkout attempt for %s: %v", identifier, err)
	}
	return nil
}
