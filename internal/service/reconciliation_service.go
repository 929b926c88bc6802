package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/logistix/courier-api/internal/database"
	"github.com/logistix/courier-api/internal/models"
	"github.com/logistix/courier-api/internal/repository"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ReconciliationService matches bank statement entries to shipments: it can
// suggest a likely destination for an unmatched amount and mint a paid,
// Booked shipment from a confirmed bank transaction.
type ReconciliationService struct {
	db         *database.Database
	shipments  *repository.ShipmentRepository
	users      *repository.UserRepository
	adminEmail string
	logger     logger.Logger
}

// NewReconciliationService creates a new ReconciliationService. adminEmail
// names the resident admin account that owns reconciled shipments.
func NewReconciliationService(
	db *database.Database,
	shipments *repository.ShipmentRepository,
	users *repository.UserRepository,
	adminEmail string,
	logger logger.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		db:         db,
		shipments:  shipments,
		users:      users,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// BankTransaction is one bank statement entry to reconcile
type BankTransaction struct {
	Amount decimal.Decimal `json:"amount"`
	Weight decimal.Decimal `json:"weight"`
	Date   string          `json:"date"`
	Type   string          `json:"type"`
	UTR    string          `json:"utr"`
}

// InvoiceParty is one side of a reconciled order
type InvoiceParty struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

// Street joins the address lines into a single street field
func (p InvoiceParty) Street() string {
	return strings.TrimSpace(strings.TrimSpace(p.AddressLine1) + " " + strings.TrimSpace(p.AddressLine2))
}

// InvoiceInput pairs a bank transaction with the order it paid for
type InvoiceInput struct {
	Transaction BankTransaction
	Sender      InvoiceParty
	Receiver    InvoiceParty
}

// goodsDescriptions are the generic goods lines used on reconciled invoices
var goodsDescriptions = []string{
	"Paper Goods",
	"Printed Material",
	"Sample Documents",
	"Commercial Sample",
	"Marketing Material",
}

// hsnCourierServices is the HSN code for courier services
const hsnCourierServices = "996812"

// CreateInvoiceFromPayment mints a paid shipment from a confirmed bank
// transaction. The shipment is owned by the resident admin account, starts
// Booked and records the payment type and UTR in its first tracking entry.
func (s *ReconciliationService) CreateInvoiceFromPayment(ctx context.Context, input InvoiceInput) (*models.Shipment, error) {
	if !input.Transaction.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("A valid, positive transaction amount is required.")
	}
	if input.Sender.Name == "" || input.Receiver.Name == "" {
		return nil, apperrors.NewValidationError("Missing 'sender' or 'receiver' data within the 'order' object")
	}

	admin, err := s.users.GetByEmail(ctx, s.adminEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf(
				"Default admin user '%s' not found.", s.adminEmail))
		}
		return nil, err
	}

	net, tax := models.PriceBreakdown(input.Transaction.Amount)
	now := models.GetCurrentTime()

	pickupDate := now
	if input.Transaction.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Transaction.Date)
		if err != nil {
			return nil, apperrors.NewValidationError("transaction date must be YYYY-MM-DD")
		}
		pickupDate = parsed
	}

	paymentType := input.Transaction.Type
	if paymentType == "" {
		paymentType = "N/A"
	}
	utr := input.Transaction.UTR
	if utr == "" {
		utr = "N/A"
	}

	description := fmt.Sprintf("%s (%s kg)",
		goodsDescriptions[rand.Intn(len(goodsDescriptions))], input.Transaction.Weight)
	netValue, _ := net.Float64()

	shipment := &models.Shipment{
		UserID:          admin.ID,
		UserEmail:       admin.Email,
		SenderName:      input.Sender.Name,
		SenderStreet:    input.Sender.Street(),
		SenderCity:      input.Sender.City,
		SenderState:     input.Sender.State,
		SenderPincode:   input.Sender.Pincode,
		SenderCountry:   input.Sender.Country,
		SenderPhone:     input.Sender.Phone,
		ReceiverName:    input.Receiver.Name,
		ReceiverStreet:  input.Receiver.Street(),
		ReceiverCity:    input.Receiver.City,
		ReceiverState:   input.Receiver.State,
		ReceiverPincode: input.Receiver.Pincode,
		ReceiverCountry: input.Receiver.Country,
		ReceiverPhone:   input.Receiver.Phone,
		WeightKg:        input.Transaction.Weight,
		LengthCm:        decimal.Zero,
		WidthCm:         decimal.Zero,
		HeightCm:        decimal.Zero,
		Goods: models.GoodsDetails{{
			Description: description,
			Quantity:    1,
			HSNCode:     hsnCourierServices,
			Value:       netValue,
		}},
		PickupDate:      pickupDate,
		ServiceType:     "Reconciled",
		BookingDate:     now,
		Status:          models.StatusBooked,
		PriceWithoutTax: net,
		TaxAmount:       tax,
		TotalWithTax:    input.Transaction.Amount,
	}

	location := input.Sender.City
	if location == "" {
		location = "N/A"
	}
	shipment.TrackingHistory.Append(models.StatusBooked, now, location,
		fmt.Sprintf("Shipment booked and paid via %s. UTR: %s", paymentType, utr))

	err = s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return insertWithFreshPublicID(tx, s.shipments, shipment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reconciled shipment created",
		"shipmentID", shipment.PublicID, "utr", utr, "amount", input.Transaction.Amount)

	return shipment, nil
}

// DestinationSuggestion is a likely shipment match for a bank amount
type DestinationSuggestion struct {
	Type             string          `json:"type"`
	Destinations     []string        `json:"destinations"`
	Mode             string          `json:"mode"`
	WeightSuggestion string          `json:"weight_suggestion"`
	TotalWithTax     decimal.Decimal `json:"total_price_with_tax"`
}

type suggestionCandidate struct {
	destination string
	weight      string
	mode        string
}

type suggestionBucket struct {
	min        decimal.Decimal
	max        decimal.Decimal // zero means open-ended
	candidates []suggestionCandidate
}

// suggestionBuckets maps amount ranges to plausible destinations. The table
// is deliberately static; varied entries read better than reverse-computing
// a single exact match from the rate cards.
var suggestionBuckets = []suggestionBucket{
	{
		min: decimal.Zero, max: decimal.NewFromInt(750),
		candidates: []suggestionCandidate{
			{"Mumbai", "1kg", "Express"},
			{"Delhi", "1.5kg", "Air"},
			{"Pune", "1kg", "Express"},
			{"Bangalore", "2kg", "Air"},
			{"Chennai", "1.5kg", "Surface"},
			{"Ahmedabad", "2kg", "Surface"},
			{"Jaipur", "1.5kg", "Surface"},
			{"Lucknow", "2kg", "Surface"},
			{"Surat", "1kg", "Express"},
			{"Nagpur", "1.5kg", "Surface"},
			{"Haryana", "0.5kg", "Express"},
			{"Punjab", "1kg", "Express"},
		},
	},
	{
		min: decimal.NewFromInt(751), max: decimal.NewFromInt(1500),
		candidates: []suggestionCandidate{
			{"Mumbai", "5kg", "Air"},
			{"Punjab", "6kg", "Surface"},
			{"Odisha", "2kg", "Air"},
			{"Delhi", "4kg", "Air"},
			{"Bangalore", "5.5kg", "Air"},
			{"Kerala", "3kg", "Air"},
			{"Rajasthan", "4.5kg", "Surface"},
			{"Gujarat", "5kg", "Surface"},
			{"Kolkata", "3.5kg", "Air"},
			{"Hyderabad", "4kg", "Air"},
		},
	},
	{
		min: decimal.NewFromInt(1501), max: decimal.NewFromInt(3000),
		candidates: []suggestionCandidate{
			{"Jammu & Kashmir", "8kg", "Surface"},
			{"Assam", "10kg", "Surface"},
			{"Mumbai", "12kg", "Surface"},
			{"Punjab", "15kg", "Surface"},
			{"Kerala", "9kg", "Air"},
			{"Goa", "8kg", "Air"},
			{"Port Blair", "7kg", "Air"},
			{"Delhi", "13kg", "Surface"},
			{"Bangalore", "11kg", "Air"},
			{"Kolkata", "10kg", "Air"},
		},
	},
	{
		min: decimal.NewFromInt(3001),
		candidates: []suggestionCandidate{
			{"UK", "2kg", "International"},
			{"USA", "1kg", "International"},
			{"Canada", "1kg", "International"},
			{"Australia", "1.5kg", "International"},
			{"Germany", "2.5kg", "International"},
			{"Singapore", "3kg", "International"},
			{"UAE", "4kg", "International"},
			{"South Africa", "1.5kg", "International"},
			{"New Zealand", "1kg", "International"},
		},
	},
}

// internationalThreshold separates domestic and international suggestions
var internationalThreshold = decimal.NewFromInt(3000)

// FindDestinations suggests a plausible shipment for a bank amount by
// picking from the static amount-range lookup table.
func (s *ReconciliationService) FindDestinations(ctx context.Context, amount decimal.Decimal) (*DestinationSuggestion, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("A valid, positive amount is required.")
	}

	for _, bucket := range suggestionBuckets {
		if amount.LessThan(bucket.min) {
			continue
		}
		if !bucket.max.IsZero() && amount.GreaterThan(bucket.max) {
			continue
		}

		pick := bucket.candidates[rand.Intn(len(bucket.candidates))]

		shipmentType := "Domestic"
		if amount.GreaterThan(internationalThreshold) {
			shipmentType = "International"
		}

		return &DestinationSuggestion{
			Type:             shipmentType,
			Destinations:     []string{pick.destination},
			Mode:             pick.mode,
			WeightSuggestion: pick.weight,
			TotalWithTax:     amount,
		}, nil
	}

	return nil, apperrors.NewNotFoundError("No potential shipment match found for this amount.")
}
