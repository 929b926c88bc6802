package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShipmentService(env *testEnv) *ShipmentService {
	return NewShipmentService(env.db, env.shipments, env.users, env.payments, logger.NewNopLogger())
}

func validBooking(email string) BookingInput {
	return BookingInput{
		UserEmail: email,
		Sender: models.Address{
			Name: "Asha Rao", Street: "12 MG Road", City: "Mumbai", State: "Maharashtra",
			Pincode: "400001", Country: "India", Phone: "+911234567890",
		},
		Receiver: models.Address{
			Name: "Vikram Shah", Street: "4 Park Street", City: "Delhi", State: "Delhi",
			Pincode: "110001", Country: "India", Phone: "+919876543210",
		},
		WeightKg:          2.5,
		Goods:             models.GoodsDetails{{Description: "Documents", Quantity: 1, Value: 100}},
		PickupDate:        time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		ServiceType:       "Express",
		FinalTotalWithTax: decimal.RequireFromString("424.80"),
	}
}

func TestCreateShipmentCustomerAwaitsPayment(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	env.mock.ExpectQuery("FROM users WHERE email").
		WithArgs("customer@example.com").
		WillReturnRows(userRow(1, "customer@example.com", "hash", "customer", "0.00"))

	env.mock.ExpectBegin()
	env.mock.ExpectQuery("INSERT INTO shipments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	env.mock.ExpectCommit()

	shipment, err := svc.CreateShipment(context.Background(), validBooking("customer@example.com"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingPayment, shipment.Status)
	assert.True(t, shipment.PriceWithoutTax.Equal(decimal.RequireFromString("360.00")))
	assert.True(t, shipment.TaxAmount.Equal(decimal.RequireFromString("64.80")))
	require.Len(t, shipment.TrackingHistory, 1)
	assert.Equal(t, "Shipment created. Awaiting payment confirmation.", shipment.TrackingHistory[0].Activity)

	env.expectationsMet(t)
}

func TestCreateShipmentEmployeeDebitsBalance(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	env.mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(userRow(7, "emp@example.com", "hash", "employee", "1000.00"))

	env.mock.ExpectBegin()
	env.mock.ExpectExec("UPDATE users SET balance = balance -").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectQuery("INSERT INTO shipments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
	env.mock.ExpectCommit()

	shipment, err := svc.CreateShipment(context.Background(), validBooking("emp@example.com"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusBooked, shipment.Status)
	require.Len(t, shipment.TrackingHistory, 1)
	assert.Equal(t, "Shipment booked and paid with employee balance.", shipment.TrackingHistory[0].Activity)

	env.expectationsMet(t)
}

func TestCreateShipmentInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	env.mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(userRow(7, "emp@example.com", "hash", "employee", "10.00"))

	env.mock.ExpectBegin()
	env.mock.ExpectExec("UPDATE users SET balance = balance -").
		WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectRollback()

	_, err := svc.CreateShipment(context.Background(), validBooking("emp@example.com"))
	require.Error(t, err)
	assert.Equal(t, http.StatusPaymentRequired, apperrors.StatusCode(err))
	assert.Contains(t, err.Error(), "Insufficient balance")

	env.expectationsMet(t)
}

func TestCreateShipmentRegeneratesPublicID(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	env.mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(userRow(1, "customer@example.com", "hash", "customer", "0.00"))

	env.mock.ExpectBegin()
	env.mock.ExpectQuery("INSERT INTO shipments").
		WillReturnError(&pq.Error{Code: "23505"})
	env.mock.ExpectQuery("INSERT INTO shipments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	env.mock.ExpectCommit()

	shipment, err := svc.CreateShipment(context.Background(), validBooking("customer@example.com"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), shipment.ID)
	assert.Len(t, shipment.PublicID, 15)

	env.expectationsMet(t)
}

func TestBookingInputValidate(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		in := validBooking("")
		err := in.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user_email")
	})

	t.Run("non-positive total", func(t *testing.T) {
		in := validBooking("customer@example.com")
		in.FinalTotalWithTax = decimal.Zero
		err := in.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "final_total_price_with_tax")
	})

	t.Run("zero weight", func(t *testing.T) {
		in := validBooking("customer@example.com")
		in.WeightKg = 0
		require.Error(t, in.Validate())
	})

	t.Run("empty goods", func(t *testing.T) {
		in := validBooking("customer@example.com")
		in.Goods = nil
		require.Error(t, in.Validate())
	})
}

func TestUpdateStatusAppendsMilestone(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery("FROM shipments WHERE shipment_id").
		WillReturnRows(addShipmentRow(shipmentRows(), 5, "SBCABCDEF123456", models.StatusBooked, pendingHistory()))
	env.mock.ExpectExec("UPDATE shipments SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	updated, err := svc.UpdateStatus(context.Background(), "SBCABCDEF123456", models.StatusInTransit, "Delhi", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusInTransit, updated.Status)
	require.Len(t, updated.TrackingHistory, 2)
	assert.Equal(t, "In Transit", updated.TrackingHistory[1].Stage)
	assert.Equal(t, "Status updated to In Transit", updated.TrackingHistory[1].Activity)

	env.expectationsMet(t)
}

func TestUpdateStatusRejectsPendingPayment(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	_, err := svc.UpdateStatus(context.Background(), "SBCABCDEF123456", models.StatusPendingPayment, "", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
}

func TestBulkUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	rows := addShipmentRow(shipmentRows(), 5, "SBCAAAAAA111111", models.StatusBooked, nil)
	rows = addShipmentRow(rows, 6, "SBCBBBBBB222222", models.StatusBooked, nil)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery("FROM shipments WHERE id IN").
		WillReturnRows(rows)
	env.mock.ExpectExec("UPDATE shipments SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec("UPDATE shipments SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	count, err := svc.BulkUpdateStatus(context.Background(), []int64{5, 6}, models.StatusOutForDelivery)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	env.expectationsMet(t)
}

func TestBulkUpdateStatusRequiresIDs(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	_, err := svc.BulkUpdateStatus(context.Background(), nil, models.StatusBooked)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
}

func TestGetDayEndStatsRequiresEmployee(t *testing.T) {
	env := newTestEnv(t)
	svc := newShipmentService(env)

	env.mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(userRow(1, "customer@example.com", "hash", "customer", "0.00"))

	_, err := svc.GetDayEndStats(context.Background(), "customer@example.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperrors.StatusCode(err))

	env.expectationsMet(t)
}
