package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminEmail = "admin@logistix.com"

func newReconciliationService(env *testEnv) *ReconciliationService {
	return NewReconciliationService(env.db, env.shipments, env.users, testAdminEmail, logger.NewNopLogger())
}

func validInvoiceInput() InvoiceInput {
	return InvoiceInput{
		Transaction: BankTransaction{
			Amount: decimal.RequireFromString("1180.00"),
			Weight: decimal.RequireFromString("5"),
			Date:   "2026-08-15",
			Type:   "NEFT",
			UTR:    "UTR987654321",
		},
		Sender: InvoiceParty{
			Name: "Asha Rao", AddressLine1: "12 MG Road", City: "Mumbai",
			State: "Maharashtra", Pincode: "400001", Country: "India", Phone: "+911234567890",
		},
		Receiver: InvoiceParty{
			Name: "Vikram Shah", AddressLine1: "4 Park Street", City: "Delhi",
			State: "Delhi", Pincode: "110001", Country: "India", Phone: "+919876543210",
		},
	}
}

func TestCreateInvoiceFromPayment(t *testing.T) {
	env := newTestEnv(t)
	svc := newReconciliationService(env)

	env.mock.ExpectQuery("FROM users WHERE email").
		WithArgs(testAdminEmail).
		WillReturnRows(userRow(2, testAdminEmail, "hash", "admin", "0.00"))

	env.mock.ExpectBegin()
	env.mock.ExpectQuery("INSERT INTO shipments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	env.mock.ExpectCommit()

	shipment, err := svc.CreateInvoiceFromPayment(context.Background(), validInvoiceInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusBooked, shipment.Status)
	assert.Equal(t, "Reconciled", shipment.ServiceType)
	assert.Equal(t, int64(2), shipment.UserID)
	assert.True(t, shipment.PriceWithoutTax.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, shipment.TaxAmount.Equal(decimal.RequireFromString("180.00")))

	require.Len(t, shipment.Goods, 1)
	assert.Contains(t, shipment.Goods[0].Description, "(5 kg)")
	assert.Equal(t, "996812", shipment.Goods[0].HSNCode)

	require.Len(t, shipment.TrackingHistory, 1)
	assert.Equal(t, "Shipment booked and paid via NEFT. UTR: UTR987654321",
		shipment.TrackingHistory[0].Activity)

	env.expectationsMet(t)
}

func TestCreateInvoiceValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := newReconciliationService(env)

	t.Run("non-positive amount", func(t *testing.T) {
		input := validInvoiceInput()
		input.Transaction.Amount = decimal.Zero

		_, err := svc.CreateInvoiceFromPayment(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
	})

	t.Run("missing party names", func(t *testing.T) {
		input := validInvoiceInput()
		input.Receiver.Name = ""

		_, err := svc.CreateInvoiceFromPayment(context.Background(), input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'sender' or 'receiver'")
	})

	t.Run("bad transaction date", func(t *testing.T) {
		env.mock.ExpectQuery("FROM users WHERE email").
			WillReturnRows(userRow(2, testAdminEmail, "hash", "admin", "0.00"))

		input := validInvoiceInput()
		input.Transaction.Date = "15/08/2026"

		_, err := svc.CreateInvoiceFromPayment(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
	})
}

func TestCreateInvoiceMissingAdminAccount(t *testing.T) {
	env := newTestEnv(t)
	svc := newReconciliationService(env)

	env.mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := svc.CreateInvoiceFromPayment(context.Background(), validInvoiceInput())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.StatusCode(err))
	assert.Contains(t, err.Error(), testAdminEmail)

	env.expectationsMet(t)
}

func TestFindDestinations(t *testing.T) {
	env := newTestEnv(t)
	svc := newReconciliationService(env)

	tests := []struct {
		name     string
		amount   string
		wantType string
	}{
		{"low range is domestic", "500", "Domestic"},
		{"mid range is domestic", "1200", "Domestic"},
		{"upper domestic boundary", "3000", "Domestic"},
		{"above threshold is international", "3001", "International"},
		{"large amount is international", "15000", "International"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)

			suggestion, err := svc.FindDestinations(context.Background(), amount)
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, suggestion.Type)
			assert.Len(t, suggestion.Destinations, 1)
			assert.NotEmpty(t, suggestion.Mode)
			assert.NotEmpty(t, suggestion.WeightSuggestion)
			assert.True(t, suggestion.TotalWithTax.Equal(amount))
		})
	}
}

func TestFindDestinationsRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	svc := newReconciliationService(env)

	_, err := svc.FindDestinations(context.Background(), decimal.NewFromInt(-10))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))
}

func TestInvoicePartyStreet(t *testing.T) {
	assert.Equal(t, "12 MG Road Flat 3",
		InvoiceParty{AddressLine1: "12 MG Road", AddressLine2: "Flat 3"}.Street())
	assert.Equal(t, "12 MG Road",
		InvoiceParty{AddressLine1: " 12 MG Road "}.Street())
}
