package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentStatus defines the possible statuses for a shipment
type ShipmentStatus string

const (
	StatusPendingPayment ShipmentStatus = "Pending Payment"
	StatusBooked         ShipmentStatus = "Booked"
	StatusInTransit      ShipmentStatus = "In Transit"
	StatusOutForDelivery ShipmentStatus = "Out for Delivery"
	StatusDelivered      ShipmentStatus = "Delivered"
	StatusCancelled      ShipmentStatus = "Cancelled"
)

// adminStatuses are the statuses an admin may move a shipment to.
// Pending Payment is only ever set at creation.
var adminStatuses = map[ShipmentStatus]bool{
	StatusBooked:         true,
	StatusInTransit:      true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusCancelled:      true,
}

// IsAdminStatus reports whether s is a valid target for an admin status update
func IsAdminStatus(s ShipmentStatus) bool {
	return adminStatuses[s]
}

// TrackingEvent is a single milestone in a shipment's tracking history
type TrackingEvent struct {
	Stage    string    `json:"stage"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Activity string    `json:"activity"`
}

// TrackingHistory is the ordered, append-only list of tracking milestones.
// The only permitted in-place edit is the payment confirmation rewrite.
type TrackingHistory []TrackingEvent

// Append adds a new milestone at the end of the history
func (h *TrackingHistory) Append(stage ShipmentStatus, at time.Time, location, activity string) {
	*h = append(*h, TrackingEvent{
		Stage:    string(stage),
		Date:     at,
		Location: location,
		Activity: activity,
	})
}

// ConfirmPayment rewrites the Pending Payment milestone in place once payment
// is approved, instead of appending a duplicate booking entry. If no such
// milestone exists, a Booked entry is prepended.
func (h *TrackingHistory) ConfirmPayment(at time.Time, location string) {
	const activity = "Shipment booked and payment confirmed."

	for i := range *h {
		if (*h)[i].Stage == string(StatusPendingPayment) {
			(*h)[i].Stage = string(StatusBooked)
			(*h)[i].Date = at
			(*h)[i].Activity = activity
			return
		}
	}

	entry := TrackingEvent{
		Stage:    string(StatusBooked),
		Date:     at,
		Location: location,
		Activity: activity,
	}
	*h = append(TrackingHistory{entry}, *h...)
}

// Value implements driver.Valuer for JSONB storage
func (h TrackingHistory) Value() (driver.Value, error) {
	if h == nil {
		h = TrackingHistory{}
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner for JSONB storage
func (h *TrackingHistory) Scan(src interface{}) error {
	return scanJSON(src, h)
}

// GoodsItem is one declared line item inside a shipment
type GoodsItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	HSNCode     string  `json:"hsn_code,omitempty"`
	Value       float64 `json:"value"`
}

// GoodsDetails is the declared goods manifest of a shipment
type GoodsDetails []GoodsItem

// Value implements driver.Valuer for JSONB storage
func (g GoodsDetails) Value() (driver.Value, error) {
	if g == nil {
		g = GoodsDetails{}
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSONB storage
func (g *GoodsDetails) Scan(src interface{}) error {
	return scanJSON(src, g)
}

func scanJSON(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}

// Address is one address block of a shipment
type Address struct {
	Name    string
	Street  string
	City    string
	State   string
	Pincode string
	Country string
	Phone   string
}

// Shipment represents a booked consignment
type Shipment struct {
	ID          int64  `db:"id" json:"id"`
	UserID      int64  `db:"user_id" json:"-"`
	UserEmail   string `db:"user_email" json:"user_email"`
	PublicID    string `db:"shipment_id" json:"shipment_id_str"`

	SenderName    string `db:"sender_name" json:"sender_name"`
	SenderStreet  string `db:"sender_address_street" json:"sender_address_street"`
	SenderCity    string `db:"sender_address_city" json:"sender_address_city"`
	SenderState   string `db:"sender_address_state" json:"sender_address_state"`
	SenderPincode string `db:"sender_address_pincode" json:"sender_address_pincode"`
	SenderCountry string `db:"sender_address_country" json:"sender_address_country"`
	SenderPhone   string `db:"sender_phone" json:"sender_phone"`

	ReceiverName    string `db:"receiver_name" json:"receiver_name"`
	ReceiverStreet  string `db:"receiver_address_street" json:"receiver_address_street"`
	ReceiverCity    string `db:"receiver_address_city" json:"receiver_address_city"`
	ReceiverState   string `db:"receiver_address_state" json:"receiver_address_state"`
	ReceiverPincode string `db:"receiver_address_pincode" json:"receiver_address_pincode"`
	ReceiverCountry string `db:"receiver_address_country" json:"receiver_address_country"`
	ReceiverPhone   string `db:"receiver_phone" json:"receiver_phone"`

	WeightKg decimal.Decimal `db:"package_weight_kg" json:"package_weight_kg"`
	LengthCm decimal.Decimal `db:"package_length_cm" json:"package_length_cm"`
	WidthCm  decimal.Decimal `db:"package_width_cm" json:"package_width_cm"`
	HeightCm decimal.Decimal `db:"package_height_cm" json:"package_height_cm"`

	Goods GoodsDetails `db:"goods_details" json:"goods_details"`

	PickupDate  time.Time      `db:"pickup_date" json:"pickup_date"`
	ServiceType string         `db:"service_type" json:"service_type"`
	BookingDate time.Time      `db:"booking_date" json:"booking_date"`
	Status      ShipmentStatus `db:"status" json:"status"`

	PriceWithoutTax decimal.Decimal `db:"price_without_tax" json:"price_without_tax"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"tax_amount_18_percent"`
	TotalWithTax    decimal.Decimal `db:"total_with_tax" json:"total_with_tax_18_percent"`

	TrackingHistory TrackingHistory `db:"tracking_history" json:"tracking_history"`
}

var taxDivisor = decimal.NewFromFloat(1.18)

// PriceBreakdown splits a tax-inclusive total into net price and the 18% tax
// component so that net + tax always equals the total exactly.
func PriceBreakdown(total decimal.Decimal) (net, tax decimal.Decimal) {
	net = total.Div(taxDivisor).Round(2)
	tax = total.Sub(net)
	return net, tax
}
