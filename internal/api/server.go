package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/logistix/courier-api/internal/config"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/rates"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/internal/service"
	"github.com/logistix/courier-api/pkg/logger"
)

type Server struct {
	config     *config.Config
	logger     logger.Logger
	router     *mux.Router
	httpServer *http.Server
	db         *database.Database

	quoteService          *service.QuoteService
	userService           *service.UserService
	shipmentService       *service.ShipmentService
	paymentService        *service.PaymentService
	ledgerService         *service.LedgerService
	addressService        *service.AddressService
	adminService          *service.AdminService
	reconciliationService *service.ReconciliationService
}

// NewServer creates a new API server with the given configuration and logger.
func NewServer(cfg *config.Config, logger logger.Logger) (*Server, error) {
	r := mux.NewRouter()

	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	tables, err := rates.Load(cfg.RatesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate tables: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, logger)
	shipmentRepo := repository.NewShipmentRepository(db, logger)
	paymentRepo := repository.NewPaymentRepository(db, logger)
	balanceCodeRepo := repository.NewBalanceCodeRepository(db, logger)
	addressRepo := repository.NewAddressRepository(db, logger)

	server := &Server{
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		config: cfg,
		db:     db,

		quoteService:    service.NewQuoteService(tables, logger),
		userService:     service.NewUserService(userRepo, logger),
		shipmentService: service.NewShipmentService(db, shipmentRepo, userRepo, paymentRepo, logger),
		paymentService:  service.NewPaymentService(db, paymentRepo, shipmentRepo, userRepo, logger),
		ledgerService:   service.NewLedgerService(db, balanceCodeRepo, userRepo, logger),
		addressService:  service.NewAddressService(addressRepo, logger),
		adminService:    service.NewAdminService(userRepo, shipmentRepo, paymentRepo, logger),
		reconciliationService: service.NewReconciliationService(
			db, shipmentRepo, userRepo, cfg.ReconAdminEmail, logger),
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Error closing database connection", "error", err)
	}

	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all the routes for our API
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Health check endpoint
	api.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet)

	// Quotes
	api.HandleFunc("/domestic/price", s.domesticQuoteHandler).Methods(http.MethodPost)
	api.HandleFunc("/international/price", s.internationalQuoteHandler).Methods(http.MethodPost)

	// Accounts
	api.HandleFunc("/auth/signup", s.signupHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.loginHandler).Methods(http.MethodPost)

	// Shipments and payments
	api.HandleFunc("/shipments/domestic", s.createDomesticShipmentHandler).Methods(http.MethodPost)
	api.HandleFunc("/shipments/international", s.createInternationalShipmentHandler).Methods(http.MethodPost)
	api.HandleFunc("/shipments", s.getUserShipmentsHandler).Methods(http.MethodGet)
	api.HandleFunc("/shipments/{shipmentID}", s.getShipmentDetailHandler).Methods(http.MethodGet)
	api.HandleFunc("/payments", s.submitPaymentHandler).Methods(http.MethodPost)
	api.HandleFunc("/user/payments", s.getUserPaymentsHandler).Methods(http.MethodGet)

	// Employee endpoints
	api.HandleFunc("/employee/redeem-code", s.redeemBalanceCodeHandler).Methods(http.MethodPost)
	api.HandleFunc("/employee/day-end-stats", s.dayEndStatsHandler).Methods(http.MethodGet)
	api.HandleFunc("/employee/addresses", s.createAddressHandler).Methods(http.MethodPost)
	api.HandleFunc("/employee/addresses", s.listAddressesHandler).Methods(http.MethodGet)
	api.HandleFunc("/employee/addresses/{addressID}", s.updateAddressHandler).Methods(http.MethodPut)
	api.HandleFunc("/employee/addresses/{addressID}", s.deleteAddressHandler).Methods(http.MethodDelete)

	// Customer address book
	api.HandleFunc("/customer/addresses", s.createAddressHandler).Methods(http.MethodPost)
	api.HandleFunc("/customer/addresses", s.listAddressesHandler).Methods(http.MethodGet)
	api.HandleFunc("/customer/addresses/{addressID}", s.updateAddressHandler).Methods(http.MethodPut)
	api.HandleFunc("/customer/addresses/{addressID}", s.deleteAddressHandler).Methods(http.MethodDelete)

	// Reconciliation helpers
	api.HandleFunc("/reconciliation/find-destinations", s.findDestinationsHandler).Methods(http.MethodPost)

	// Admin back-office
	admin := s.router.PathPrefix("/api/admin").Subrouter()
	admin.HandleFunc("/shipments", s.adminRequired(s.adminShipmentsHandler)).Methods(http.MethodGet)
	admin.HandleFunc("/shipments/bulk-status-update", s.adminRequired(s.bulkStatusUpdateHandler)).Methods(http.MethodPost)
	admin.HandleFunc("/shipments/{shipmentID}/status", s.adminRequired(s.updateShipmentStatusHandler)).Methods(http.MethodPut)
	admin.HandleFunc("/payments", s.adminRequired(s.adminPaymentsHandler)).Methods(http.MethodGet)
	admin.HandleFunc("/payments/{paymentID}/status", s.adminRequired(s.reviewPaymentHandler)).Methods(http.MethodPut)
	admin.HandleFunc("/balance-codes", s.adminRequired(s.createBalanceCodeHandler)).Methods(http.MethodPost)
	admin.HandleFunc("/balance-codes", s.adminRequired(s.listBalanceCodesHandler)).Methods(http.MethodGet)
	admin.HandleFunc("/balance-codes/{codeID}", s.adminRequired(s.deleteBalanceCodeHandler)).Methods(http.MethodDelete)
	admin.HandleFunc("/users", s.adminRequired(s.adminUsersHandler)).Methods(http.MethodGet)
	admin.HandleFunc("/users/{userID}", s.adminRequired(s.adminUserDetailsHandler)).Methods(http.MethodGet)
	admin.HandleFunc("/employees", s.adminRequired(s.createEmployeeHandler)).Methods(http.MethodPost)
	admin.HandleFunc("/employees", s.adminRequired(s.adminEmployeesHandler)).Methods(http.MethodGet)
	admin.HandleFunc("/employees/{employeeID}", s.adminRequired(s.updateEmployeeHandler)).Methods(http.MethodPut)
	admin.HandleFunc("/employees/{employeeID}", s.adminRequired(s.deleteEmployeeHandler)).Methods(http.MethodDelete)
	admin.HandleFunc("/web_analytics", s.adminRequired(s.webAnalyticsHandler)).Methods(http.MethodGet)
	admin.HandleFunc("/create-invoice-from-payment", s.adminRequired(s.createInvoiceFromPaymentHandler)).Methods(http.MethodPost)
}

// Middleware for logging requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		s.logger.Info("Request processed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
			"requestID", r.Header.Get(requestIDHeader),
			"remoteAddr", r.RemoteAddr,
		)
	})
}

// requestIDHeader carries the per-request correlation ID
const requestIDHeader = "X-Request-ID"

// Middleware that assigns each request a correlation ID unless the caller
// already sent one
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			r.Header.Set(requestIDHeader, requestID)
		}
		w.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}
