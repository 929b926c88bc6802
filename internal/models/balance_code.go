package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceCode is a redeemable top-up token for employee balances.
// is_redeemed flips false to true exactly once and never back.
type BalanceCode struct {
	ID               int64           `db:"id" json:"id"`
	Code             string          `db:"code" json:"code"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	IsRedeemed       bool            `db:"is_redeemed" json:"is_redeemed"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	RedeemedAt       *time.Time      `db:"redeemed_at" json:"redeemed_at,omitempty"`
	RedeemedByUserID *int64          `db:"redeemed_by_user_id" json:"-"`
}

// NewBalanceCodeRecord creates an unredeemed balance code with a fresh token
func NewBalanceCodeRecord(amount decimal.Decimal) *BalanceCode {
	return &BalanceCode{
		Code:      NewBalanceCode(),
		Amount:    amount,
		CreatedAt: GetCurrentTime(),
	}
}
