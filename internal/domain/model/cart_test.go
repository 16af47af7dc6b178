package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalsFromSubtotal(t *testing.T) {
	cases := []struct {
		name     string
		subtotal int64
		want     Totals
	}{
		{
			name:     "tax and flat shipping",
			subtotal: 2500,
			want:     Totals{Subtotal: 2500, Tax: 200, Shipping: 999, Total: 3699},
		},
		{
			name:     "above threshold ships free",
			subtotal: 6000,
			want:     Totals{Subtotal: 6000, Tax: 480, Shipping: 0, Total: 6480},
		},
		{
			name:     "exactly at threshold still pays shipping",
			subtotal: 5000,
			want:     Totals{Subtotal: 5000, Tax: 400, Shipping: 999, Total: 6399},
		},
		{
			name:     "tax rounds down",
			subtotal: 99,
			want:     Totals{Subtotal: 99, Tax: 7, Shipping: 999, Total: 1105},
		},
		{
			name:     "empty",
			subtotal: 0,
			want:     Totals{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TotalsFromSubtotal(tc.subtotal))
		})
	}
}

func TestComputeTotals(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, Quantity: 2, UnitPriceSnapshot: 1000},
		{ProductID: 2, Quantity: 1, UnitPriceSnapshot: 500},
	}

	got := ComputeTotals(items)

	assert.Equal(t, int64(2500), got.Subtotal)
	assert.Equal(t, int64(200), got.Tax)
	assert.Equal(t, int64(999), got.Shipping)
	assert.Equal(t, int64(3699), got.Total)

	assert.Equal(t, int64(3), ItemCount(items))
}

func TestComputeTotals_Empty(t *testing.T) {
	assert.Equal(t, Totals{}, ComputeTotals(nil))
	assert.Equal(t, int64(0), ItemCount(nil))
}
