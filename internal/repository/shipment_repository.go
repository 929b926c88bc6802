package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ShipmentRepository handles database operations for shipments
type ShipmentRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewShipmentRepository creates a new ShipmentRepository
func NewShipmentRepository(db *database.Database, logger logger.Logger) *ShipmentRepository {
	return &ShipmentRepository{
		db:     db,
		logger: logger,
	}
}

const shipmentColumns = `
	id, user_id, user_email, shipment_id,
	sender_name, sender_address_street, sender_address_city, sender_address_state,
	sender_address_pincode, sender_address_country, sender_phone,
	receiver_name, receiver_address_street, receiver_address_city, receiver_address_state,
	receiver_address_pincode, receiver_address_country, receiver_phone,
	package_weight_kg, package_length_cm, package_width_cm, package_height_cm,
	goods_details, pickup_date, service_type, booking_date, status,
	price_without_tax, tax_amount, total_with_tax, tracking_history`

// CreateInTx inserts a new shipment within a transaction and fills in the
// generated ID. A public ID collision surfaces as ErrDuplicate so the caller
// can regenerate and retry.
func (r *ShipmentRepository) CreateInTx(tx *sqlx.Tx, s *models.Shipment) error {
	query := `
		INSERT INTO shipments (
			user_id, user_email, shipment_id,
			sender_name, sender_address_street, sender_address_city, sender_address_state,
			sender_address_pincode, sender_address_country, sender_phone,
			receiver_name, receiver_address_street, receiver_address_city, receiver_address_state,
			receiver_address_pincode, receiver_address_country, receiver_phone,
			package_weight_kg, package_length_cm, package_width_cm, package_height_cm,
			goods_details, pickup_date, service_type, booking_date, status,
			price_without_tax, tax_amount, total_with_tax, tracking_history
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30
		)
		RETURNING id
	`

	err := tx.QueryRowx(
		query,
		s.UserID, s.UserEmail, s.PublicID,
		s.SenderName, s.SenderStreet, s.SenderCity, s.SenderState,
		s.SenderPincode, s.SenderCountry, s.SenderPhone,
		s.ReceiverName, s.ReceiverStreet, s.ReceiverCity, s.ReceiverState,
		s.ReceiverPincode, s.ReceiverCountry, s.ReceiverPhone,
		s.WeightKg, s.LengthCm, s.WidthCm, s.HeightCm,
		s.Goods, s.PickupDate, s.ServiceType, s.BookingDate, s.Status,
		s.PriceWithoutTax, s.TaxAmount, s.TotalWithTax, s.TrackingHistory,
	).Scan(&s.ID)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByPublicID retrieves a shipment by its public tracking ID
func (r *ShipmentRepository) GetByPublicID(ctx context.Context, publicID string) (*models.Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE shipment_id = $1`, shipmentColumns)

	var s models.Shipment
	err := r.db.DB.GetContext(ctx, &s, query, publicID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get shipment", "error", err, "shipmentID", publicID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &s, nil
}

// GetByIDInTx retrieves and row-locks a shipment by internal ID within a transaction
func (r *ShipmentRepository) GetByIDInTx(tx *sqlx.Tx, id int64) (*models.Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE id = $1 FOR UPDATE`, shipmentColumns)

	var s models.Shipment
	err := tx.Get(&s, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &s, nil
}

// GetByPublicIDInTx retrieves and row-locks a shipment by public ID within a transaction
func (r *ShipmentRepository) GetByPublicIDInTx(tx *sqlx.Tx, publicID string) (*models.Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE shipment_id = $1 FOR UPDATE`, shipmentColumns)

	var s models.Shipment
	err := tx.Get(&s, query, publicID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &s, nil
}

// ListByIDsInTx retrieves and row-locks shipments by internal IDs within a transaction
func (r *ShipmentRepository) ListByIDsInTx(tx *sqlx.Tx, ids []int64) ([]*models.Shipment, error) {
	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s FROM shipments WHERE id IN (?) FOR UPDATE`, shipmentColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	var shipments []*models.Shipment
	if err := tx.Select(&shipments, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return shipments, nil
}

// UpdateStatusInTx writes a shipment's status and full tracking history
// within a transaction
func (r *ShipmentRepository) UpdateStatusInTx(tx *sqlx.Tx, id int64, status models.ShipmentStatus, history models.TrackingHistory) error {
	result, err := tx.Exec(
		`UPDATE shipments SET status = $1, tracking_history = $2 WHERE id = $3`,
		status, history, id,
	)

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

// UserShipmentFilter narrows a user's shipment listing
type UserShipmentFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Status   string
}

// ListByUserEmail retrieves a user's shipments, newest first
func (r *ShipmentRepository) ListByUserEmail(ctx context.Context, email string, filter UserShipmentFilter) ([]*models.Shipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE user_email = $1`, shipmentColumns)
	args := []interface{}{email}

	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += fmt.Sprintf(` AND booking_date >= $%d`, len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += fmt.Sprintf(` AND booking_date <= $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	query += ` ORDER BY booking_date DESC`

	var shipments []*models.Shipment
	if err := r.db.DB.SelectContext(ctx, &shipments, query, args...); err != nil {
		r.logger.Error("Failed to list shipments by email", "error", err, "email", email)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return shipments, nil
}

// ListByUserID retrieves all shipments booked by one user, newest first
func (r *ShipmentRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Shipment, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM shipments WHERE user_id = $1 ORDER BY booking_date DESC`, shipmentColumns)

	var shipments []*models.Shipment
	if err := r.db.DB.SelectContext(ctx, &shipments, query, userID); err != nil {
		r.logger.Error("Failed to list shipments by user ID", "error", err, "userID", userID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return shipments, nil
}

// AdminShipmentFilter narrows the admin shipment listing
type AdminShipmentFilter struct {
	Status string
	Query  string
	Limit  int
	Offset int
}

// AdminShipmentRow is a shipment joined with the booking account's role
type AdminShipmentRow struct {
	models.Shipment
	UserRole models.Role `db:"user_role"`
}

// ListAdmin retrieves shipments for the admin back-office with search and
// pagination. Without an explicit status filter, shipments still awaiting
// payment are hidden.
func (r *ShipmentRepository) ListAdmin(ctx context.Context, filter AdminShipmentFilter) ([]*AdminShipmentRow, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}

	if filter.Status == "" {
		where += fmt.Sprintf(` AND s.status != '%s'`, models.StatusPendingPayment)
	} else {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND s.status = $%d`, len(args))
	}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(
			` AND (s.shipment_id ILIKE $%d OR s.sender_name ILIKE $%d OR s.receiver_name ILIKE $%d OR u.email ILIKE $%d)`,
			n, n, n, n)
	}

	countQuery := `SELECT COUNT(*) FROM shipments s JOIN users u ON s.user_id = u.id ` + where

	var total int
	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		r.logger.Error("Failed to count admin shipments", "error", err)
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	query := fmt.Sprintf(`
		SELECT s.*, u.role AS user_role
		FROM shipments s
		JOIN users u ON s.user_id = u.id
		%s
		ORDER BY s.booking_date DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	var rows []*AdminShipmentRow
	if err := r.db.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list admin shipments", "error", err)
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rows, total, nil
}

// StatsByUserID returns the shipment count and total booked value for one user
func (r *ShipmentRepository) StatsByUserID(ctx context.Context, userID int64) (int, decimal.Decimal, error) {
	var stats struct {
		Count int             `db:"count"`
		Total decimal.Decimal `db:"total"`
	}

	query := `
		SELECT COUNT(*) AS count, COALESCE(SUM(total_with_tax), 0) AS total
		FROM shipments
		WHERE user_id = $1
	`

	if err := r.db.DB.GetContext(ctx, &stats, query, userID); err != nil {
		r.logger.Error("Failed to get shipment stats", "error", err, "userID", userID)
		return 0, decimal.Zero, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return stats.Count, stats.Total, nil
}

// GlobalStats returns the overall shipment count and revenue
func (r *ShipmentRepository) GlobalStats(ctx context.Context) (int, decimal.Decimal, error) {
	var stats struct {
		Count int             `db:"count"`
		Total decimal.Decimal `db:"total"`
	}

	query := `SELECT COUNT(*) AS count, COALESCE(SUM(total_with_tax), 0) AS total FROM shipments`

	if err := r.db.DB.GetContext(ctx, &stats, query); err != nil {
		r.logger.Error("Failed to get global shipment stats", "error", err)
		return 0, decimal.Zero, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return stats.Count, stats.Total, nil
}
