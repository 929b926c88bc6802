package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/pkg/logger"
)

// AddressRepository handles database operations for saved addresses
type AddressRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewAddressRepository creates a new AddressRepository
func NewAddressRepository(db *database.Database, logger logger.Logger) *AddressRepository {
	return &AddressRepository{
		db:     db,
		logger: logger,
	}
}

const addressColumns = `id, user_id, address_type, nickname, name, address_street,
	address_city, address_state, address_pincode, address_country, phone`

// Create inserts a new saved address and fills in the generated ID.
// A duplicate (user, nickname, type) surfaces as ErrDuplicate.
func (r *AddressRepository) Create(ctx context.Context, a *models.SavedAddress) error {
	query := `
		INSERT INTO saved_addresses (
			user_id, address_type, nickname, name, address_street,
			address_city, address_state, address_pincode, address_country, phone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.db.DB.QueryRowContext(
		ctx,
		query,
		a.UserID, a.Type, a.Nickname, a.Name, a.Street,
		a.City, a.State, a.Pincode, a.Country, a.Phone,
	).Scan(&a.ID)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create saved address", "error", err, "userID", a.UserID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// ListByUser retrieves a user's saved addresses ordered by nickname,
// optionally filtered by address type.
func (r *AddressRepository) ListByUser(ctx context.Context, userID int64, addressType models.AddressType) ([]*models.SavedAddress, error) {
	query := fmt.Sprintf(`SELECT %s FROM saved_addresses WHERE user_id = $1`, addressColumns)
	args := []interface{}{userID}

	if addressType != "" {
		args = append(args, addressType)
		query += fmt.Sprintf(` AND address_type = $%d`, len(args))
	}

	query += ` ORDER BY nickname`

	var addresses []*models.SavedAddress
	if err := r.db.DB.SelectContext(ctx, &addresses, query, args...); err != nil {
		r.logger.Error("Failed to list saved addresses", "error", err, "userID", userID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return addresses, nil
}

// GetByIDAndUser retrieves a saved address only if it belongs to the user
func (r *AddressRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.SavedAddress, error) {
	query := fmt.Sprintf(`SELECT %s FROM saved_addresses WHERE id = $1 AND user_id = $2`, addressColumns)

	var a models.SavedAddress
	err := r.db.DB.GetContext(ctx, &a, query, id, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get saved address", "error", err, "addressID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &a, nil
}

// Update rewrites a saved address's fields
func (r *AddressRepository) Update(ctx context.Context, a *models.SavedAddress) error {
	query := `
		UPDATE saved_addresses
		SET address_type = $1, nickname = $2, name = $3, address_street = $4,
			address_city = $5, address_state = $6, address_pincode = $7,
			address_country = $8, phone = $9
		WHERE id = $10 AND user_id = $11
	`

	result, err := r.db.DB.ExecContext(
		ctx,
		query,
		a.Type, a.Nickname, a.Name, a.Street,
		a.City, a.State, a.Pincode, a.Country, a.Phone,
		a.ID, a.UserID,
	)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to update saved address", "error", err, "addressID", a.ID)
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

// Delete removes a saved address only if it belongs to the user
func (r *AddressRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.db.DB.ExecContext(
		ctx, `DELETE FROM saved_addresses WHERE id = $1 AND user_id = $2`, id, userID)

	if err != nil {
		r.logger.Error("Failed to delete saved address", "error", err, "addressID", id)
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
