package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/pkg/logger"
)

// PaymentRepository handles database operations for payment requests
type PaymentRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *database.Database, logger logger.Logger) *PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new payment request and fills in the generated ID.
// A duplicate (shipment, UTR) pair surfaces as ErrDuplicate.
func (r *PaymentRepository) Create(ctx context.Context, p *models.PaymentRequest) error {
	query := `
		INSERT INTO payment_requests (user_id, shipment_id, amount, utr, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.DB.QueryRowContext(
		ctx,
		query,
		p.UserID,
		p.ShipmentID,
		p.Amount,
		p.UTR,
		p.Status,
		p.CreatedAt,
	).Scan(&p.ID)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create payment request", "error", err, "shipmentID", p.ShipmentID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByIDInTx retrieves and row-locks a payment request within a transaction
func (r *PaymentRepository) GetByIDInTx(tx *sqlx.Tx, id int64) (*models.PaymentRequest, error) {
	query := `
		SELECT id, user_id, shipment_id, amount, utr, status, created_at
		FROM payment_requests
		WHERE id = $1
		FOR UPDATE
	`

	var p models.PaymentRequest
	err := tx.Get(&p, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &p, nil
}

// UpdateStatusInTx sets a payment request's review outcome within a transaction
func (r *PaymentRepository) UpdateStatusInTx(tx *sqlx.Tx, id int64, status models.PaymentStatus) error {
	result, err := tx.Exec(`UPDATE payment_requests SET status = $1 WHERE id = $2`, status, id)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetLatestByShipmentID retrieves the most recent payment request for a shipment
func (r *PaymentRepository) GetLatestByShipmentID(ctx context.Context, shipmentID int64) (*models.PaymentRequest, error) {
	query := `
		SELECT id, user_id, shipment_id, amount, utr, status, created_at
		FROM payment_requests
		WHERE shipment_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var p models.PaymentRequest
	err := r.db.DB.GetContext(ctx, &p, query, shipmentID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get payment by shipment ID", "error", err, "shipmentID", shipmentID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &p, nil
}

// PaymentListRow is a payment request joined with its shipment's public ID
type PaymentListRow struct {
	models.PaymentRequest
	ShipmentPublicID string `db:"shipment_public_id"`
}

// ListByUserID retrieves a user's payment requests, newest first
func (r *PaymentRepository) ListByUserID(ctx context.Context, userID int64) ([]*PaymentListRow, error) {
	query := `
		SELECT p.id, p.user_id, p.shipment_id, p.amount, p.utr, p.status, p.created_at,
			s.shipment_id AS shipment_public_id
		FROM payment_requests p
		JOIN shipments s ON p.shipment_id = s.id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`

	var rows []*PaymentListRow
	if err := r.db.DB.SelectContext(ctx, &rows, query, userID); err != nil {
		r.logger.Error("Failed to list payments by user", "error", err, "userID", userID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rows, nil
}

// PaymentReviewRow is a payment request joined with submitter and shipment info
type PaymentReviewRow struct {
	models.PaymentRequest
	FirstName        string `db:"first_name"`
	LastName         string `db:"last_name"`
	ShipmentPublicID string `db:"shipment_public_id"`
}

// ListAll retrieves every payment request for admin review, newest first
func (r *PaymentRepository) ListAll(ctx context.Context) ([]*PaymentReviewRow, error) {
	query := `
		SELECT p.id, p.user_id, p.shipment_id, p.amount, p.utr, p.status, p.created_at,
			u.first_name, u.last_name, s.shipment_id AS shipment_public_id
		FROM payment_requests p
		JOIN users u ON p.user_id = u.id
		JOIN shipments s ON p.shipment_id = s.id
		ORDER BY p.created_at DESC
	`

	var rows []*PaymentReviewRow
	if err := r.db.DB.SelectContext(ctx, &rows, query); err != nil {
		r.logger.Error("Failed to list payment requests", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rows, nil
}
