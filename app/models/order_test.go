package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrderStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from string
		to   string
		want bool
	}{
		{ORDER_STATUS_PENDING, ORDER_STATUS_PAID, true},
		{ORDER_STATUS_PENDING, ORDER_STATUS_CANCELLED, true},
		{ORDER_STATUS_PENDING, ORDER_STATUS_SERVED, false},
		{ORDER_STATUS_PAID, ORDER_STATUS_PREPARING, true},
		{ORDER_STATUS_PAID, ORDER_STATUS_PENDING, false},
		{ORDER_STATUS_PREPARING, ORDER_STATUS_SERVED, true},
		{ORDER_STATUS_PREPARING, ORDER_STATUS_COMPLETED, false},
		{ORDER_STATUS_SERVED, ORDER_STATUS_COMPLETED, true},
		{ORDER_STATUS_SERVED, ORDER_STATUS_CANCELLED, false},
		{ORDER_STATUS_COMPLETED, ORDER_STATUS_CANCELLED, false},
		{ORDER_STATUS_CANCELLED, ORDER_STATUS_PENDING, false},
		{"bogus", ORDER_STATUS_PAID, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+" to "+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionOrderStatus(tt.from, tt.to))
		})
	}
}

func TestIsOrderStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		ORDER_STATUS_PENDING, ORDER_STATUS_PAID, ORDER_STATUS_PREPARING,
		ORDER_STATUS_SERVED, ORDER_STATUS_COMPLETED, ORDER_STATUS_CANCELLED,
	} {
		assert.True(t, IsOrderStatus(s), s)
	}
	assert.False(t, IsOrderStatus("shipped"))
	assert.False(t, IsOrderStatus(""))
}
