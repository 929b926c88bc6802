package service

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// utrLength is the fixed length of a bank UTR reference
const utrLength = 12

// PaymentService handles payment submission and admin review
type PaymentService struct {
	db        *database.Database
	payments  *repository.PaymentRepository
	shipments *repository.ShipmentRepository
	users     *repository.UserRepository
	logger    logger.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	db *database.Database,
	payments *repository.PaymentRepository,
	shipments *repository.ShipmentRepository,
	users *repository.UserRepository,
	logger logger.Logger,
) *PaymentService {
	return &PaymentService{
		db:        db,
		payments:  payments,
		shipments: shipments,
		users:     users,
		logger:    logger,
	}
}

// SubmitPaymentInput is a customer's payment proof submission
type SubmitPaymentInput struct {
	ShipmentPublicID string
	UTR              string
	Amount           decimal.Decimal
}

// SubmitPayment records a payment reference for a shipment awaiting payment.
// Shipments past Pending Payment refuse new submissions, and a UTR may be
// submitted at most once per shipment.
func (s *PaymentService) SubmitPayment(ctx context.Context, input SubmitPaymentInput) (*models.PaymentRequest, error) {
	if input.ShipmentPublicID == "" {
		return nil, apperrors.NewValidationError("shipment_id_str is a required field")
	}
	if len(input.UTR) != utrLength {
		return nil, apperrors.NewValidationError("UTR must be 12 digits.")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount must be positive")
	}

	shipment, err := s.shipments.GetByPublicID(ctx, input.ShipmentPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Shipment not found")
		}
		return nil, err
	}

	if shipment.Status != models.StatusPendingPayment {
		return nil, apperrors.NewConflictError("Payment has already been processed for this shipment")
	}

	payment := models.NewPaymentRequest(shipment.UserID, shipment.ID, input.Amount, input.UTR)

	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflictError("This UTR has already been submitted for this shipment")
		}
		return nil, err
	}

	s.logger.Info("Payment submitted for review",
		"paymentID", payment.ID, "shipmentID", shipment.PublicID)

	return payment, nil
}

// ReviewPayment applies an admin's review outcome to a pending payment.
// Approval moves the shipment to Booked and rewrites the Pending Payment
// tracking milestone in place; rejection leaves the shipment untouched.
// A payment can be processed exactly once.
func (s *PaymentService) ReviewPayment(ctx context.Context, paymentID int64, outcome models.PaymentStatus) error {
	if outcome != models.PaymentStatusApproved && outcome != models.PaymentStatusRejected {
		return apperrors.NewValidationError("Invalid status")
	}

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		payment, err := s.payments.GetByIDInTx(tx, paymentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFoundError("Payment not found")
			}
			return err
		}

		if payment.Status != models.PaymentStatusPending {
			return apperrors.NewConflictError("Payment has already been processed")
		}

		if err := s.payments.UpdateStatusInTx(tx, payment.ID, outcome); err != nil {
			return err
		}

		if outcome != models.PaymentStatusApproved {
			return nil
		}

		shipment, err := s.shipments.GetByIDInTx(tx, payment.ShipmentID)
		if err != nil {
			return err
		}

		shipment.Status = models.StatusBooked
		shipment.TrackingHistory.ConfirmPayment(models.GetCurrentTime(), shipment.SenderCity)

		return s.shipments.UpdateStatusInTx(tx, shipment.ID, shipment.Status, shipment.TrackingHistory)
	})
}

// ListUserPayments retrieves a user's payment submissions, newest first
func (s *PaymentService) ListUserPayments(ctx context.Context, email string) ([]*repository.PaymentListRow, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, err
	}

	return s.payments.ListByUserID(ctx, user.ID)
}

// ListAllPayments retrieves every payment request for admin review
func (s *PaymentService) ListAllPayments(ctx context.Context) ([]*repository.PaymentReviewRow, error) {
	return s.payments.ListAll(ctx)
}
