package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus defines the review outcome of a payment request
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusApproved PaymentStatus = "Approved"
	PaymentStatusRejected PaymentStatus = "Rejected"
)

// PaymentRequest links a shipment to a submitted payment reference (UTR)
// awaiting admin review.
type PaymentRequest struct {
	ID         int64           `db:"id" json:"id"`
	UserID     int64           `db:"user_id" json:"-"`
	ShipmentID int64           `db:"shipment_id" json:"-"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	UTR        string          `db:"utr" json:"utr"`
	Status     PaymentStatus   `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// NewPaymentRequest creates a pending payment request for a shipment
func NewPaymentRequest(userID, shipmentID int64, amount decimal.Decimal, utr string) *PaymentRequest {
	return &PaymentRequest{
		UserID:     userID,
		ShipmentID: shipmentID,
		Amount:     amount,
		UTR:        utr,
		Status:     PaymentStatusPending,
		CreatedAt:  GetCurrentTime(),
	}
}
