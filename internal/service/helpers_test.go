package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/pkg/logger"
)

// testEnv bundles a mocked database with the repositories under test
type testEnv struct {
	db        *database.Database
	mock      sqlmock.Sqlmock
	users     *repository.UserRepository
	shipments *repository.ShipmentRepository
	payments  *repository.PaymentRepository
	codes     *repository.BalanceCodeRepository
	addresses *repository.AddressRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewWithDB(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNopLogger())
	nop := logger.NewNopLogger()

	return &testEnv{
		db:        db,
		mock:      mock,
		users:     repository.NewUserRepository(db, nop),
		shipments: repository.NewShipmentRepository(db, nop),
		payments:  repository.NewPaymentRepository(db, nop),
		codes:     repository.NewBalanceCodeRepository(db, nop),
		addresses: repository.NewAddressRepository(db, nop),
	}
}

func (e *testEnv) expectationsMet(t *testing.T) {
	t.Helper()
	if err := e.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var userCols = []string{
	"id", "email", "password_hash", "first_name", "last_name", "role", "balance", "created_at",
}

func userRow(id int64, email, hash string, role models.Role, balance string) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(id, email, hash, "Test", "User", string(role), balance, time.Now().UTC())
}

var shipmentCols = []string{
	"id", "user_id", "user_email", "shipment_id",
	"sender_name", "sender_address_street", "sender_address_city", "sender_address_state",
	"sender_address_pincode", "sender_address_country", "sender_phone",
	"receiver_name", "receiver_address_street", "receiver_address_city", "receiver_address_state",
	"receiver_address_pincode", "receiver_address_country", "receiver_phone",
	"package_weight_kg", "package_length_cm", "package_width_cm", "package_height_cm",
	"goods_details", "pickup_date", "service_type", "booking_date", "status",
	"price_without_tax", "tax_amount", "total_with_tax", "tracking_history",
}

func shipmentRows() *sqlmock.Rows {
	return sqlmock.NewRows(shipmentCols)
}

func addShipmentRow(rows *sqlmock.Rows, id int64, publicID string, status models.ShipmentStatus, history models.TrackingHistory) *sqlmock.Rows {
	historyJSON, _ := history.Value()
	now := time.Now().UTC()

	return rows.AddRow(
		id, int64(1), "customer@example.com", publicID,
		"Asha Rao", "12 MG Road", "Mumbai", "Maharashtra",
		"400001", "India", "+911234567890",
		"Vikram Shah", "4 Park Street", "Delhi", "Delhi",
		"110001", "India", "+919876543210",
		"2.50", "10", "10", "10",
		[]byte(`[{"description":"Documents","quantity":1,"value":100}]`),
		now, "Express", now, string(status),
		"360.00", "64.80", "424.80", historyJSON,
	)
}

var paymentCols = []string{
	"id", "user_id", "shipment_id", "amount", "utr", "status", "created_at",
}

func paymentRow(id, userID, shipmentID int64, status models.PaymentStatus) *sqlmock.Rows {
	return sqlmock.NewRows(paymentCols).
		AddRow(id, userID, shipmentID, "424.80", "UTR123456789", string(status), time.Now().UTC())
}

var balanceCodeCols = []string{
	"id", "code", "amount", "is_redeemed", "created_at", "redeemed_at", "redeemed_by_user_id",
}

func balanceCodeRow(id int64, code, amount string, redeemed bool) *sqlmock.Rows {
	return sqlmock.NewRows(balanceCodeCols).
		AddRow(id, code, amount, redeemed, time.Now().UTC(), nil, nil)
}
