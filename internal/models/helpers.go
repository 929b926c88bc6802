package models

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(length int) string {
	var b strings.Builder
	b.Grow(length)

	for i := 0; i < length; i++ {
		b.WriteByte(idCharset[rand.Intn(len(idCharset))])
	}

	return b.String()
}

// NewShipmentPublicID generates a public shipment ID like SBC1A2B3C4D5E6.
// Uniqueness is enforced by the database; callers regenerate on collision.
func NewShipmentPublicID() string {
	return "SBC" + randomString(12)
}

// NewBalanceCode generates a redeemable top-up code like TOPUP-9X2K4M7Q
func NewBalanceCode() string {
	return "TOPUP-" + randomString(8)
}

// NewRequestID generates a unique ID for request tracing
func NewRequestID() string {
	return uuid.New().String()
}

// GetCurrentTime returns the current time in UTC
func GetCurrentTime() time.Time {
	return time.Now().UTC()
}
