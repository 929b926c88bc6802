package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/logistix/courier-api/internal/config"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/rates"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/internal/service"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testRateTables() *rates.Tables {
	return &rates.Tables{
		Zones: rates.DomesticZones{
			"A": {"Maharashtra", "Mumbai"},
		},
		Prices: rates.DomesticPrices{
			"A": {
				rates.ModeExpress: rates.BandTable{
					"1": decimal.NewFromInt(450), "2": decimal.NewFromInt(650),
					"3": decimal.NewFromInt(850), "4": decimal.NewFromInt(1050),
					"5": decimal.NewFromInt(1250),
				},
			},
		},
		Countries: []rates.CountryRate{
			{
				Country: "USA",
				Tiers: map[int]decimal.Decimal{
					1: decimal.NewFromInt(2900), 2: decimal.NewFromInt(3550),
				},
				PerKg:    decimal.NewFromInt(550),
				HasPerKg: true,
			},
		},
	}
}

// newTestServer wires a Server against a mocked database
func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	nop := logger.NewNopLogger()
	db := database.NewWithDB(sqlx.NewDb(mockDB, "sqlmock"), nop)

	userRepo := repository.NewUserRepository(db, nop)
	shipmentRepo := repository.NewShipmentRepository(db, nop)
	paymentRepo := repository.NewPaymentRepository(db, nop)
	balanceCodeRepo := repository.NewBalanceCodeRepository(db, nop)
	addressRepo := repository.NewAddressRepository(db, nop)

	server := &Server{
		router: mux.NewRouter(),
		logger: nop,
		config: &config.Config{ReconAdminEmail: "admin@logistix.com"},
		db:     db,

		quoteService:    service.NewQuoteService(testRateTables(), nop),
		userService:     service.NewUserService(userRepo, nop),
		shipmentService: service.NewShipmentService(db, shipmentRepo, userRepo, paymentRepo, nop),
		paymentService:  service.NewPaymentService(db, paymentRepo, shipmentRepo, userRepo, nop),
		ledgerService:   service.NewLedgerService(db, balanceCodeRepo, userRepo, nop),
		addressService:  service.NewAddressService(addressRepo, nop),
		adminService:    service.NewAdminService(userRepo, shipmentRepo, paymentRepo, nop),
		reconciliationService: service.NewReconciliationService(
			db, shipmentRepo, userRepo, "admin@logistix.com", nop),
	}
	server.setupRoutes()

	return server, mock
}

func doRequest(server *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var testUserCols = []string{
	"id", "email", "password_hash", "first_name", "last_name", "role", "balance", "created_at",
}

func testUserRow(id int64, email, role string) *sqlmock.Rows {
	return sqlmock.NewRows(testUserCols).
		AddRow(id, email, "hash", "Test", "User", role, "0.00", time.Now().UTC())
}

func TestHealthCheck(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/health", "",
		map[string]string{requestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = doRequest(server, http.MethodGet, "/api/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestDomesticQuoteEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodPost, "/api/domestic/price",
		`{"state": "Maharashtra", "mode": "Express", "weight": 2}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Maharashtra", body["destination_state"])
	assert.Equal(t, "767", body["total_price"])
}

func TestDomesticQuoteEndpointValidation(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodPost, "/api/domestic/price",
		`{"mode": "Teleport", "weight": 2}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["error"])
}

func TestInternationalQuoteEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodPost, "/api/international/price",
		`{"country": "USA", "weight": 1}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "USA", body["country"])
	assert.Equal(t, "3422", body["total_price"])
}

func TestInvalidJSONPayload(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodPost, "/api/domestic/price", `{not json`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON payload", decodeBody(t, rec)["error"])
}

func TestLoginEndpoint(t *testing.T) {
	server, mock := newTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(testUserCols).AddRow(
			int64(1), "asha@example.com", string(hash),
			"Asha", "Rao", "customer", "0.00", time.Now().UTC()))

	rec := doRequest(server, http.MethodPost, "/api/auth/login",
		`{"email": "asha@example.com", "password": "secret123"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Login successful", body["message"])

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Asha", user["firstName"])
	assert.Equal(t, false, user["isAdmin"])
}

func TestLoginEndpointWrongPassword(t *testing.T) {
	server, mock := newTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(testUserCols).AddRow(
			int64(1), "asha@example.com", string(hash),
			"Asha", "Rao", "customer", "0.00", time.Now().UTC()))

	rec := doRequest(server, http.MethodPost, "/api/auth/login",
		`{"email": "asha@example.com", "password": "wrong"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, rec)["error"])
}

func TestAdminRoutesRequireIdentityHeader(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/admin/shipments", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	server, mock := newTestServer(t)

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("customer@example.com").
		WillReturnRows(testUserRow(1, "customer@example.com", "customer"))

	rec := doRequest(server, http.MethodGet, "/api/admin/web_analytics", "",
		map[string]string{identityHeader: "customer@example.com"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: Admin access required", decodeBody(t, rec)["error"])
}

func TestAdminAnalyticsEndpoint(t *testing.T) {
	server, mock := newTestServer(t)

	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(testUserRow(2, "admin@logistix.com", "admin"))
	mock.ExpectQuery("FROM shipments").
		WillReturnRows(sqlmock.NewRows([]string{"count", "total"}).AddRow(2, "849.60"))
	mock.ExpectQuery("FROM users WHERE role").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	rec := doRequest(server, http.MethodGet, "/api/admin/web_analytics", "",
		map[string]string{identityHeader: "admin@logistix.com"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["total_orders"])
	assert.Equal(t, float64(5), body["total_users"])
	assert.Equal(t, "424.8", body["avg_revenue"])
}

func TestMissingShipmentReturns404(t *testing.T) {
	server, mock := newTestServer(t)

	mock.ExpectQuery("FROM shipments WHERE shipment_id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := doRequest(server, http.MethodGet, "/api/shipments/SBCMISSING00000", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Shipment not found", decodeBody(t, rec)["error"])
}
