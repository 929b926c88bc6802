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
)

// BalanceCodeRepository handles database operations for balance codes
type BalanceCodeRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewBalanceCodeRepository creates a new BalanceCodeRepository
func NewBalanceCodeRepository(db *database.Database, logger logger.Logger) *BalanceCodeRepository {
	return &BalanceCodeRepository{
		db:     db,
		logger: logger,
	}
}

const balanceCodeColumns = `id, code, amount, is_redeemed, created_at, redeemed_at, redeemed_by_user_id`

// Create inserts a new balance code and fills in the generated ID.
// A code collision surfaces as ErrDuplicate so the caller can regenerate.
func (r *BalanceCodeRepository) Create(ctx context.Context, c *models.BalanceCode) error {
	query := `
		INSERT INTO balance_codes (code, amount, is_redeemed, created_at)
		VALUES ($1, $2, FALSE, $3)
		RETURNING id
	`

	err := r.db.DB.QueryRowContext(ctx, query, c.Code, c.Amount, c.CreatedAt).Scan(&c.ID)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create balance code", "error", err)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByCodeInTx retrieves and row-locks a balance code within a transaction
func (r *BalanceCodeRepository) GetByCodeInTx(tx *sqlx.Tx, code string) (*models.BalanceCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM balance_codes WHERE code = $1 FOR UPDATE`, balanceCodeColumns)

	var c models.BalanceCode
	err := tx.Get(&c, query, code)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &c, nil
}

// MarkRedeemedInTx flips a code to redeemed within a transaction, recording
// redeemer and timestamp. The guarded update refuses codes already redeemed.
func (r *BalanceCodeRepository) MarkRedeemedInTx(tx *sqlx.Tx, codeID, userID int64, at time.Time) error {
	result, err := tx.Exec(
		`UPDATE balance_codes
		 SET is_redeemed = TRUE, redeemed_at = $1, redeemed_by_user_id = $2
		 WHERE id = $3 AND is_redeemed = FALSE`,
		at, userID, codeID,
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

// GetByID retrieves a balance code by its ID
func (r *BalanceCodeRepository) GetByID(ctx context.Context, id int64) (*models.BalanceCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM balance_codes WHERE id = $1`, balanceCodeColumns)

	var c models.BalanceCode
	err := r.db.DB.GetContext(ctx, &c, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get balance code", "error", err, "codeID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &c, nil
}

// Delete deletes a balance code by its ID
func (r *BalanceCodeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM balance_codes WHERE id = $1`, id)

	if err != nil {
		r.logger.Error("Failed to delete balance code", "error", err, "codeID", id)
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

// BalanceCodeRow is a balance code joined with the redeemer's email
type BalanceCodeRow struct {
	models.BalanceCode
	RedeemedBy *string `db:"redeemed_by"`
}

// List retrieves balance codes, newest first. The redeemed filter accepts
// nil (all), true (redeemed only) or false (active only).
func (r *BalanceCodeRepository) List(ctx context.Context, redeemed *bool) ([]*BalanceCodeRow, error) {
	query := `
		SELECT c.id, c.code, c.amount, c.is_redeemed, c.created_at, c.redeemed_at,
			c.redeemed_by_user_id, u.email AS redeemed_by
		FROM balance_codes c
		LEFT JOIN users u ON c.redeemed_by_user_id = u.id
	`
	args := []interface{}{}

	if redeemed != nil {
		query += ` WHERE c.is_redeemed = $1`
		args = append(args, *redeemed)
	}

	query += ` ORDER BY c.created_at DESC`

	var rows []*BalanceCodeRow
	if err := r.db.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list balance codes", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rows, nil
}
