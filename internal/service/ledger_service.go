package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// balanceCodeAttempts bounds the regenerate-on-collision loop for code tokens
const balanceCodeAttempts = 5

// LedgerService manages employee balance top-ups via redeemable codes
type LedgerService struct {
	db     *database.Database
	codes  *repository.BalanceCodeRepository
	users  *repository.UserRepository
	logger logger.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	db *database.Database,
	codes *repository.BalanceCodeRepository,
	users *repository.UserRepository,
	logger logger.Logger,
) *LedgerService {
	return &LedgerService{
		db:     db,
		codes:  codes,
		users:  users,
		logger: logger,
	}
}

// RedeemResult reports the credited amount and the balance after redemption
type RedeemResult struct {
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
}

// Redeem credits a user's balance with a top-up code. The code lookup, the
// redeemed flip and the credit happen in one transaction; a code redeems
// exactly once.
func (s *LedgerService) Redeem(ctx context.Context, code, email string) (*RedeemResult, error) {
	if code == "" || email == "" {
		return nil, apperrors.NewValidationError("Code and email are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, err
	}

	var result RedeemResult
	err = s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		balanceCode, err := s.codes.GetByCodeInTx(tx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFoundError("Invalid code")
			}
			return err
		}

		if balanceCode.IsRedeemed {
			return apperrors.NewConflictError("This code has already been redeemed")
		}

		if err := s.codes.MarkRedeemedInTx(tx, balanceCode.ID, user.ID, models.GetCurrentTime()); err != nil {
			return err
		}

		if err := s.users.CreditBalanceInTx(tx, user.ID, balanceCode.Amount); err != nil {
			return err
		}

		newBalance, err := s.users.GetBalanceInTx(tx, user.ID)
		if err != nil {
			return err
		}

		result = RedeemResult{Amount: balanceCode.Amount, NewBalance: newBalance}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Balance code redeemed", "code", code, "user", email, "amount", result.Amount)
	return &result, nil
}

// CreateCode mints a new balance code worth the given amount
func (s *LedgerService) CreateCode(ctx context.Context, amount decimal.Decimal) (*models.BalanceCode, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("Valid, positive amount is required")
	}

	code := models.NewBalanceCodeRecord(amount)

	for attempt := 0; attempt < balanceCodeAttempts; attempt++ {
		err := s.codes.Create(ctx, code)
		if err == nil {
			s.logger.Info("Balance code created", "code", code.Code, "amount", amount)
			return code, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		code.Code = models.NewBalanceCode()
	}

	return nil, fmt.Errorf("could not allocate a unique balance code after %d attempts", balanceCodeAttempts)
}

// ListCodes retrieves balance codes, optionally filtered to active or redeemed
func (s *LedgerService) ListCodes(ctx context.Context, status string) ([]*repository.BalanceCodeRow, error) {
	var redeemed *bool

	switch status {
	case "active":
		v := false
		redeemed = &v
	case "redeemed":
		v := true
		redeemed = &v
	}

	return s.codes.List(ctx, redeemed)
}

// DeleteCode removes an unredeemed balance code
func (s *LedgerService) DeleteCode(ctx context.Context, id int64) error {
	code, err := s.codes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundError("Code not found")
		}
		return err
	}

	if code.IsRedeemed {
		return apperrors.NewConflictError("Cannot delete a redeemed code")
	}

	return s.codes.Delete(ctx, id)
}
