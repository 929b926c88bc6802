package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/logistix/courier-api/internal/config"
	"github.com/logistix/courier-api/pkg/logger"
)

// Database represents a database connection
type Database struct {
	DB     *sqlx.DB
	logger logger.Logger
}

// New creates a new database connection
func New(cfg *config.Config, logger logger.Logger) (*Database, error) {
	db, err := sqlx.Connect("postgres", cfg.GetDBConnString())

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("Connected to database", "host", cfg.DB.Host, "database", cfg.DB.Name)

	return &Database{
		DB:     db,
		logger: logger,
	}, nil
}

// NewWithDB wraps an existing sqlx handle, used by tests
func NewWithDB(db *sqlx.DB, logger logger.Logger) *Database {
	return &Database{
		DB:     db,
		logger: logger,
	}
}

// Ping checks the database connection
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.DB.Close()
}

// RunMigrations creates the schema if it does not exist yet
func (d *Database) RunMigrations() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'customer',
		balance DECIMAL(10, 2) NOT NULL DEFAULT 0.00 CHECK (balance >= 0),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

	CREATE TABLE IF NOT EXISTS shipments (
		id SERIAL PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_email VARCHAR(255) NOT NULL,
		shipment_id VARCHAR(20) NOT NULL UNIQUE,
		sender_name VARCHAR(255) NOT NULL,
		sender_address_street VARCHAR(255) NOT NULL,
		sender_address_city VARCHAR(100) NOT NULL,
		sender_address_state VARCHAR(100) NOT NULL,
		sender_address_pincode VARCHAR(10) NOT NULL,
		sender_address_country VARCHAR(100) NOT NULL,
		sender_phone VARCHAR(30) NOT NULL,
		receiver_name VARCHAR(255) NOT NULL,
		receiver_address_street VARCHAR(255) NOT NULL,
		receiver_address_city VARCHAR(100) NOT NULL,
		receiver_address_state VARCHAR(100) NOT NULL,
		receiver_address_pincode VARCHAR(10) NOT NULL,
		receiver_address_country VARCHAR(100) NOT NULL,
		receiver_phone VARCHAR(30) NOT NULL,
		package_weight_kg DECIMAL(10, 2) NOT NULL,
		package_length_cm DECIMAL(10, 2) NOT NULL,
		package_width_cm DECIMAL(10, 2) NOT NULL,
		package_height_cm DECIMAL(10, 2) NOT NULL,
		goods_details JSONB NOT NULL DEFAULT '[]',
		pickup_date DATE NOT NULL,
		service_type VARCHAR(50) NOT NULL,
		booking_date TIMESTAMP NOT NULL DEFAULT NOW(),
		status VARCHAR(50) NOT NULL DEFAULT 'Pending Payment',
		price_without_tax DECIMAL(10, 2) NOT NULL,
		tax_amount DECIMAL(10, 2) NOT NULL,
		total_with_tax DECIMAL(10, 2) NOT NULL,
		tracking_history JSONB NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_shipments_user_email ON shipments(user_email);
	CREATE INDEX IF NOT EXISTS idx_shipments_status ON shipments(status);

	CREATE TABLE IF NOT EXISTS payment_requests (
		id SERIAL PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users(id),
		shipment_id INT NOT NULL REFERENCES shipments(id),
		amount DECIMAL(10, 2) NOT NULL,
		utr VARCHAR(64) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE (shipment_id, utr)
	);

	CREATE TABLE IF NOT EXISTS balance_codes (
		id SERIAL PRIMARY KEY,
		code VARCHAR(20) NOT NULL UNIQUE,
		amount DECIMAL(10, 2) NOT NULL,
		is_redeemed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		redeemed_at TIMESTAMP,
		redeemed_by_user_id INT REFERENCES users(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS saved_addresses (
		id SERIAL PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		address_type VARCHAR(50) NOT NULL,
		nickname VARCHAR(100) NOT NULL,
		name VARCHAR(255) NOT NULL,
		address_street VARCHAR(255) NOT NULL,
		address_city VARCHAR(100) NOT NULL,
		address_state VARCHAR(100) NOT NULL,
		address_pincode VARCHAR(10) NOT NULL,
		address_country VARCHAR(100) NOT NULL,
		phone VARCHAR(30) NOT NULL,
		UNIQUE (user_id, nickname, address_type)
	);
	`

	_, err := d.DB.Exec(schema)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}
