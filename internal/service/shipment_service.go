package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// publicIDAttempts bounds the regenerate-on-collision loop for shipment IDs
const publicIDAttempts = 5

// ShipmentService manages the shipment lifecycle: booking, status
// transitions and tracking history.
type ShipmentService struct {
	db        *database.Database
	shipments *repository.ShipmentRepository
	users     *repository.UserRepository
	payments  *repository.PaymentRepository
	logger    logger.Logger
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	db *database.Database,
	shipments *repository.ShipmentRepository,
	users *repository.UserRepository,
	payments *repository.PaymentRepository,
	logger logger.Logger,
) *ShipmentService {
	return &ShipmentService{
		db:        db,
		shipments: shipments,
		users:     users,
		payments:  payments,
		logger:    logger,
	}
}

// BookingInput is a booking request for a new shipment
type BookingInput struct {
	UserEmail         string
	Sender            models.Address
	Receiver          models.Address
	WeightKg          float64
	LengthCm          float64
	WidthCm           float64
	HeightCm          float64
	Goods             models.GoodsDetails
	PickupDate        time.Time
	ServiceType       string
	FinalTotalWithTax decimal.Decimal
}

// Validate checks the booking payload and reports the first missing field
func (in *BookingInput) Validate() error {
	if in.UserEmail == "" {
		return apperrors.NewValidationError("user_email is a required field")
	}
	if !in.FinalTotalWithTax.IsPositive() {
		return apperrors.NewValidationError("Valid final_total_price_with_tax is required")
	}

	required := map[string]string{
		"sender_name":            in.Sender.Name,
		"sender_address_street":  in.Sender.Street,
		"sender_address_city":    in.Sender.City,
		"sender_address_state":   in.Sender.State,
		"sender_address_pincode": in.Sender.Pincode,
		"sender_phone":           in.Sender.Phone,
		"receiver_name":          in.Receiver.Name,
		"receiver_address_street": in.Receiver.Street,
		"receiver_address_city":  in.Receiver.City,
		"receiver_address_state": in.Receiver.State,
		"receiver_address_pincode": in.Receiver.Pincode,
		"receiver_address_country": in.Receiver.Country,
		"receiver_phone":         in.Receiver.Phone,
		"service_type":           in.ServiceType,
	}
	for field, value := range required {
		if value == "" {
			return apperrors.NewValidationError(fmt.Sprintf("%s is a required field", field))
		}
	}

	if in.WeightKg <= 0 {
		return apperrors.NewValidationError("package_weight_kg must be positive")
	}
	if in.PickupDate.IsZero() {
		return apperrors.NewValidationError("pickup_date is a required field")
	}
	if len(in.Goods) == 0 {
		return apperrors.NewValidationError("goods is a required field")
	}

	return nil
}

// CreateShipment books a new shipment. Customer bookings start in Pending
// Payment; employee bookings debit the prepaid balance and start Booked.
// The debit and the insert commit or roll back together.
func (s *ShipmentService) CreateShipment(ctx context.Context, input BookingInput) (*models.Shipment, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.UserEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, err
	}

	net, tax := models.PriceBreakdown(input.FinalTotalWithTax)

	status := models.StatusPendingPayment
	activity := "Shipment created. Awaiting payment confirmation."
	if user.IsEmployee() {
		status = models.StatusBooked
		activity = "Shipment booked and paid with employee balance."
	}

	now := models.GetCurrentTime()
	shipment := &models.Shipment{
		UserID:          user.ID,
		UserEmail:       user.Email,
		SenderName:      input.Sender.Name,
		SenderStreet:    input.Sender.Street,
		SenderCity:      input.Sender.City,
		SenderState:     input.Sender.State,
		SenderPincode:   input.Sender.Pincode,
		SenderCountry:   input.Sender.Country,
		SenderPhone:     input.Sender.Phone,
		ReceiverName:    input.Receiver.Name,
		ReceiverStreet:  input.Receiver.Street,
		ReceiverCity:    input.Receiver.City,
		ReceiverState:   input.Receiver.State,
		ReceiverPincode: input.Receiver.Pincode,
		ReceiverCountry: input.Receiver.Country,
		ReceiverPhone:   input.Receiver.Phone,
		WeightKg:        decimal.NewFromFloat(input.WeightKg),
		LengthCm:        decimal.NewFromFloat(input.LengthCm),
		WidthCm:         decimal.NewFromFloat(input.WidthCm),
		HeightCm:        decimal.NewFromFloat(input.HeightCm),
		Goods:           input.Goods,
		PickupDate:      input.PickupDate,
		ServiceType:     input.ServiceType,
		BookingDate:     now,
		Status:          status,
		PriceWithoutTax: net,
		TaxAmount:       tax,
		TotalWithTax:    input.FinalTotalWithTax,
	}
	shipment.TrackingHistory.Append(status, now, input.Sender.City, activity)

	err = s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if user.IsEmployee() {
			if err := s.users.DebitBalanceInTx(tx, user.ID, input.FinalTotalWithTax); err != nil {
				if errors.Is(err, repository.ErrInsufficientBalance) {
					return apperrors.NewInsufficientFundsError("Insufficient balance to book shipment.")
				}
				return err
			}
		}

		return insertWithFreshPublicID(tx, s.shipments, shipment)
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Shipment created",
		"shipmentID", shipment.PublicID, "status", shipment.Status, "user", user.Email)

	return shipment, nil
}

// insertWithFreshPublicID inserts a shipment, regenerating its public ID on
// collision until the unique constraint accepts it.
func insertWithFreshPublicID(tx *sqlx.Tx, repo *repository.ShipmentRepository, s *models.Shipment) error {
	for attempt := 0; attempt < publicIDAttempts; attempt++ {
		s.PublicID = models.NewShipmentPublicID()

		err := repo.CreateInTx(tx, s)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
	}

	return fmt.Errorf("could not allocate a unique shipment ID after %d attempts", publicIDAttempts)
}

// ShipmentDetail is a shipment with its latest payment review status
type ShipmentDetail struct {
	*models.Shipment
	PaymentStatus *models.PaymentStatus
}

// GetShipmentDetail retrieves a shipment by public ID with payment status
func (s *ShipmentService) GetShipmentDetail(ctx context.Context, publicID string) (*ShipmentDetail, error) {
	shipment, err := s.shipments.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Shipment not found")
		}
		return nil, err
	}

	detail := &ShipmentDetail{Shipment: shipment}

	payment, err := s.payments.GetLatestByShipmentID(ctx, shipment.ID)
	if err == nil {
		detail.PaymentStatus = &payment.Status
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return detail, nil
}

// ListUserShipments retrieves a user's shipments with optional filters
func (s *ShipmentService) ListUserShipments(ctx context.Context, email string, filter repository.UserShipmentFilter) ([]*models.Shipment, error) {
	if email == "" {
		return nil, apperrors.NewValidationError("Missing email parameter")
	}

	return s.shipments.ListByUserEmail(ctx, email, filter)
}

// UpdateStatus applies an admin status change to one shipment, appending a
// tracking milestone. Prior milestones are never edited.
func (s *ShipmentService) UpdateStatus(ctx context.Context, publicID string, status models.ShipmentStatus, location, activity string) (*models.Shipment, error) {
	if !models.IsAdminStatus(status) {
		return nil, apperrors.NewValidationError("Invalid or missing status")
	}

	if activity == "" {
		activity = fmt.Sprintf("Status updated to %s", status)
	}

	var updated *models.Shipment
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		shipment, err := s.shipments.GetByPublicIDInTx(tx, publicID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFoundError("Shipment not found")
			}
			return err
		}

		shipment.Status = status
		shipment.TrackingHistory.Append(status, models.GetCurrentTime(), location, activity)

		if err := s.shipments.UpdateStatusInTx(tx, shipment.ID, status, shipment.TrackingHistory); err != nil {
			return err
		}

		updated = shipment
		return nil
	})

	if err != nil {
		return nil, err
	}

	return updated, nil
}

// BulkUpdateStatus applies an admin status change to many shipments at once,
// appending one tracking milestone to each. Returns the updated count.
func (s *ShipmentService) BulkUpdateStatus(ctx context.Context, ids []int64, status models.ShipmentStatus) (int, error) {
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("shipment_ids must be a non-empty list.")
	}
	if !models.IsAdminStatus(status) {
		return 0, apperrors.NewValidationError("Invalid payload: shipment_ids and a valid status are required.")
	}

	activity := fmt.Sprintf("Status updated to %s via bulk action.", status)
	now := models.GetCurrentTime()

	var updated int
	err := s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		shipments, err := s.shipments.ListByIDsInTx(tx, ids)
		if err != nil {
			return err
		}

		for _, shipment := range shipments {
			shipment.Status = status
			shipment.TrackingHistory.Append(status, now, "", activity)

			if err := s.shipments.UpdateStatusInTx(tx, shipment.ID, status, shipment.TrackingHistory); err != nil {
				return err
			}
			updated++
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	s.logger.Info("Bulk status update applied", "count", updated, "status", status)
	return updated, nil
}

// DayEndStats summarises an employee's bookings and remaining balance
type DayEndStats struct {
	CurrentBalance      decimal.Decimal
	TotalShipmentsCount int
	TotalShipmentsValue decimal.Decimal
	AllShipments        []*models.Shipment
}

// GetDayEndStats builds the day-end summary for an employee account
func (s *ShipmentService) GetDayEndStats(ctx context.Context, email string) (*DayEndStats, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewForbiddenError("Employee not found or not authorized")
		}
		return nil, err
	}
	if !user.IsEmployee() {
		return nil, apperrors.NewForbiddenError("Employee not found or not authorized")
	}

	count, total, err := s.shipments.StatsByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	shipments, err := s.shipments.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &DayEndStats{
		CurrentBalance:      user.Balance,
		TotalShipmentsCount: count,
		TotalShipmentsValue: total,
		AllShipments:        shipments,
	}, nil
}
