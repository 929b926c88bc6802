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
	"github.com/shopspring/decimal"
)

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *database.Database, logger logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, email, password_hash, first_name, last_name, role, balance, created_at`

// Create inserts a new user and fills in the generated ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, role, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.DB.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.Balance,
		user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create user", "error", err, "email", user.Email)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	var user models.User
	err := r.db.DB.GetContext(ctx, &user, query, email)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get user by email", "error", err, "email", email)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &user, nil
}

// GetByID retrieves a user by its ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	var user models.User
	err := r.db.DB.GetContext(ctx, &user, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get user by ID", "error", err, "userID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &user, nil
}

// UpdateProfile updates an account's name, email and password hash
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, password_hash = $4
		WHERE id = $5
	`

	result, err := r.db.DB.ExecContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.ID,
	)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to update user", "error", err, "userID", user.ID)
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

// Delete deletes a user by its ID
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)

	if err != nil {
		r.logger.Error("Failed to delete user", "error", err, "userID", id)
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

// UserListRow is a user joined with its shipment count, for admin listings
type UserListRow struct {
	models.User
	ShipmentCount int `db:"shipment_count"`
}

// ListByRole retrieves users of one role with an optional name/email search,
// newest first, along with the total match count for pagination.
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role, q string, limit, offset int) ([]*UserListRow, int, error) {
	where := `WHERE u.role = $1`
	args := []interface{}{role}

	if q != "" {
		where += ` AND (u.first_name ILIKE $2 OR u.last_name ILIKE $2 OR u.email ILIKE $2)`
		args = append(args, "%"+q+"%")
	}

	countQuery := `SELECT COUNT(*) FROM users u ` + where

	var total int
	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		r.logger.Error("Failed to count users", "error", err, "role", role)
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	query := fmt.Sprintf(`
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name, u.role, u.balance, u.created_at,
			COUNT(s.id) AS shipment_count
		FROM users u
		LEFT JOIN shipments s ON s.user_id = u.id
		%s
		GROUP BY u.id
		ORDER BY u.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var rows []*UserListRow
	if err := r.db.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list users", "error", err, "role", role)
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rows, total, nil
}

// CountByRole counts users of one role
func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var count int
	err := r.db.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = $1`, role)

	if err != nil {
		r.logger.Error("Failed to count users by role", "error", err, "role", role)
		return 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return count, nil
}

// CreditBalanceInTx adds amount to a user's prepaid balance within a transaction
func (r *UserRepository) CreditBalanceInTx(tx *sqlx.Tx, userID int64, amount decimal.Decimal) error {
	result, err := tx.Exec(`UPDATE users SET balance = balance + $1 WHERE id = $2`, amount, userID)

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

// DebitBalanceInTx subtracts amount from a user's prepaid balance within a
// transaction. The guarded update fails without touching the row when the
// balance does not cover the amount.
func (r *UserRepository) DebitBalanceInTx(tx *sqlx.Tx, userID int64, amount decimal.Decimal) error {
	result, err := tx.Exec(
		`UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1`,
		amount, userID,
	)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return nil
}

// GetBalanceInTx reads a user's balance within a transaction
func (r *UserRepository) GetBalanceInTx(tx *sqlx.Tx, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowx(`SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return balance, nil
}
