package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceBreakdown(t *testing.T) {
	tests := []struct {
		total   string
		wantNet string
		wantTax string
	}{
		{"424.80", "360.00", "64.80"},
		{"11859.00", "10050.00", "1809.00"},
		{"100.00", "84.75", "15.25"},
		{"0.00", "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			net, tax := PriceBreakdown(total)

			assert.True(t, net.Equal(decimal.RequireFromString(tt.wantNet)), "net = %s", net)
			assert.True(t, tax.Equal(decimal.RequireFromString(tt.wantTax)), "tax = %s", tax)
			assert.True(t, net.Add(tax).Equal(total), "net + tax must equal the total")
		})
	}
}

func TestTrackingHistoryAppend(t *testing.T) {
	var h TrackingHistory
	now := time.Now().UTC()

	h.Append(StatusPendingPayment, now, "Mumbai", "Shipment created. Awaiting payment confirmation.")
	h.Append(StatusInTransit, now.Add(time.Hour), "Delhi", "Departed hub")

	require.Len(t, h, 2)
	assert.Equal(t, "Pending Payment", h[0].Stage)
	assert.Equal(t, "In Transit", h[1].Stage)
	assert.Equal(t, "Delhi", h[1].Location)
}

func TestTrackingHistoryConfirmPayment(t *testing.T) {
	t.Run("rewrites the pending entry in place", func(t *testing.T) {
		created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
		confirmed := created.Add(2 * time.Hour)

		var h TrackingHistory
		h.Append(StatusPendingPayment, created, "Mumbai", "Shipment created. Awaiting payment confirmation.")

		h.ConfirmPayment(confirmed, "Mumbai")

		require.Len(t, h, 1)
		assert.Equal(t, "Booked", h[0].Stage)
		assert.Equal(t, confirmed, h[0].Date)
		assert.Equal(t, "Mumbai", h[0].Location)
		assert.Equal(t, "Shipment booked and payment confirmed.", h[0].Activity)
	})

	t.Run("prepends when no pending entry exists", func(t *testing.T) {
		now := time.Now().UTC()

		var h TrackingHistory
		h.Append(StatusInTransit, now, "Delhi", "Departed hub")

		h.ConfirmPayment(now, "Mumbai")

		require.Len(t, h, 2)
		assert.Equal(t, "Booked", h[0].Stage)
		assert.Equal(t, "In Transit", h[1].Stage)
	})
}

func TestTrackingHistoryJSONRoundTrip(t *testing.T) {
	var h TrackingHistory
	h.Append(StatusBooked, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), "Mumbai", "Booked")

	value, err := h.Value()
	require.NoError(t, err)

	var decoded TrackingHistory
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	assert.Equal(t, h[0], decoded[0])
}

func TestGoodsDetailsValueNeverNull(t *testing.T) {
	var g GoodsDetails

	value, err := g.Value()
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(value.([]byte)))
}

func TestIsAdminStatus(t *testing.T) {
	assert.True(t, IsAdminStatus(StatusBooked))
	assert.True(t, IsAdminStatus(StatusCancelled))
	assert.False(t, IsAdminStatus(StatusPendingPayment))
	assert.False(t, IsAdminStatus(ShipmentStatus("Teleported")))
}

func TestPublicIDFormats(t *testing.T) {
	id := NewShipmentPublicID()
	assert.Len(t, id, 15)
	assert.Equal(t, "SBC", id[:3])

	code := NewBalanceCode()
	assert.Len(t, code, 14)
	assert.Equal(t, "TOPUP-", code[:6])

	// IDs are random; two draws colliding would be astronomically unlikely
	assert.NotEqual(t, NewShipmentPublicID(), NewShipmentPublicID())
}

func TestShipmentJSONFieldNames(t *testing.T) {
	s := Shipment{
		PublicID:     "SBCABCDEF123456",
		TaxAmount:    decimal.RequireFromString("64.80"),
		TotalWithTax: decimal.RequireFromString("424.80"),
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Contains(t, fields, "shipment_id_str")
	assert.Contains(t, fields, "tax_amount_18_percent")
	assert.Contains(t, fields, "total_with_tax_18_percent")
	assert.NotContains(t, fields, "user_id")
}
