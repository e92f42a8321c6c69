package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptIdentifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "10.0.0.1-table-3", AttemptIdentifier("10.0.0.1", "table-3"))
	assert.Equal(t, "10.0.0.1-no-table", AttemptIdentifier("10.0.0.1", ""))
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	t.Parallel()

	attempts := &fakeAttemptRepo{}
	limiter := NewRateLimiter(attempts)
	ident := AttemptIdentifier("10.0.0.1", "table-3")

	for i := 0; i < 5; i++ {
		assert.NoError(t, limiter.Allow(ident), "attempt %d should pass", i+1)
	}

	err := limiter.Allow(ident)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 429, reqErr.Status)
	assert.Equal(t, MsgTooManyAttempts, reqErr.Message)
}

func TestRateLimiterWindowSlides(t *testing.T) {
	t.Parallel()

	attempts := &fakeAttemptRepo{}
	limiter := NewRateLimiter(attempts)
	ident := AttemptIdentifier("10.0.0.1", "table-3")

	// Five attempts just outside the 60s window do not count.
	for i := 0; i < 5; i++ {
		attempts.recordAt(ident, time.Now().Add(-61*time.Second))
	}
	assert.NoError(t, limiter.Allow(ident))
}

func TestRateLimiterScopesByIdentifier(t *testing.T) {
	t.Parallel()

	attempts := &fakeAttemptRepo{}
	limiter := NewRateLimiter(attempts)

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Allow(AttemptIdentifier("10.0.0.1", "table-3")))
	}

	// Same address, different table: independent window.
	assert.NoError(t, limiter.Allow(AttemptIdentifier("10.0.0.1", "table-4")))
	// Different address, same table.
	assert.NoError(t, limiter.Allow(AttemptIdentifier("10.0.0.2", "table-3")))
}

func TestRateLimiterFailsOpenOnLedgerError(t *testing.T) {
	t.Parallel()

	attempts := &fakeAttemptRepo{countErr: assert.AnError}
	limiter := NewRateLimiter(attempts)

	assert.NoError(t, limiter.Allow(AttemptIdentifier("10.0.0.1", "")))
}

func TestRateLimiterDoesNotRecordRejectedAttempts(t *testing.T) {
	t.Parallel()

	attempts := &fakeAttemptRepo{}
	limiter := NewRateLimiter(attempts)
	ident := AttemptIdentifier("10.0.0.1", "table-3")

	for i := 0; i < 7; i++ {
		_ = limiter.Allow(ident)
	}
	// Rejected attempts never reach the ledger, so hammering the endpoint
	// does not extend the lockout past the original window.
	assert.Len(t, attempts.attempts, 5)
}
