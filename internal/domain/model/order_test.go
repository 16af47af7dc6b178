package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanCancelByUser(t *testing.T) {
	cases := []struct {
		name    string
		status  OrderStatus
		payment PaymentStatus
		want    bool
	}{
		{"pending unpaid", OrderStatusPending, PaymentStatusPending, true},
		{"pending but paid", OrderStatusPending, PaymentStatusPaid, false},
		{"processing", OrderStatusProcessing, PaymentStatusPaid, false},
		{"shipped", OrderStatusShipped, PaymentStatusPaid, false},
		{"cancelled", OrderStatusCancelled, PaymentStatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Order{Status: tc.status, PaymentStatus: tc.payment}
			assert.Equal(t, tc.want, o.CanCancelByUser())
		})
	}
}

func TestCanAdminTransition(t *testing.T) {
	cases := []struct {
		name    string
		status  OrderStatus
		payment PaymentStatus
		to      OrderStatus
		want    bool
	}{
		{"pending to cancelled unpaid", OrderStatusPending, PaymentStatusPending, OrderStatusCancelled, true},
		{"pending to cancelled paid", OrderStatusPending, PaymentStatusPaid, OrderStatusCancelled, false},
		{"pending cannot ship", OrderStatusPending, PaymentStatusPending, OrderStatusShipped, false},
		{"processing to shipped", OrderStatusProcessing, PaymentStatusPaid, OrderStatusShipped, true},
		{"processing cannot deliver directly", OrderStatusProcessing, PaymentStatusPaid, OrderStatusDelivered, false},
		{"processing cannot go back", OrderStatusProcessing, PaymentStatusPaid, OrderStatusPending, false},
		{"shipped to delivered", OrderStatusShipped, PaymentStatusPaid, OrderStatusDelivered, true},
		{"shipped cannot cancel", OrderStatusShipped, PaymentStatusPaid, OrderStatusCancelled, false},
		{"delivered is terminal", OrderStatusDelivered, PaymentStatusPaid, OrderStatusShipped, false},
		{"cancelled is terminal", OrderStatusCancelled, PaymentStatusPending, OrderStatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Order{Status: tc.status, PaymentStatus: tc.payment}
			assert.Equal(t, tc.want, o.CanAdminTransition(tc.to))
		})
	}
}

func TestCanSettle(t *testing.T) {
	assert.True(t, Order{Status: OrderStatusPending, PaymentStatus: PaymentStatusPending}.CanSettle())
	assert.True(t, Order{Status: OrderStatusProcessing, PaymentStatus: PaymentStatusPending}.CanSettle())
	assert.False(t, Order{Status: OrderStatusCancelled, PaymentStatus: PaymentStatusPending}.CanSettle())
	assert.False(t, Order{Status: OrderStatusProcessing, PaymentStatus: PaymentStatusPaid}.CanSettle())
}
