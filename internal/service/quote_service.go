package service

import (
	"github.com/logistix/courier-api/internal/rates"
	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/logistix/courier-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// QuoteService resolves shipping quotes against the static rate tables
type QuoteService struct {
	tables *rates.Tables
	logger logger.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(tables *rates.Tables, logger logger.Logger) *QuoteService {
	return &QuoteService{
		tables: tables,
		logger: logger,
	}
}

// DomesticQuoteInput is a domestic quote request
type DomesticQuoteInput struct {
	State     string
	City      string
	ModeLabel string
	WeightKg  float64
}

// DomesticQuoteResult is a priced domestic quote, tax included
type DomesticQuoteResult struct {
	DestinationState string          `json:"destination_state"`
	Mode             string          `json:"mode"`
	WeightKg         float64         `json:"weight_kg"`
	RoundedWeight    decimal.Decimal `json:"rounded_weight"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Zone             string          `json:"zone"`
}

// DomesticQuote prices a domestic shipment and applies the 18% GST
func (s *QuoteService) DomesticQuote(input DomesticQuoteInput) (*DomesticQuoteResult, error) {
	mode, ok := rates.ParseMode(input.ModeLabel)
	if !ok || input.WeightKg <= 0 || (input.City == "" && input.State == "") {
		return nil, apperrors.NewValidationError(
			"A destination (city or state), mode, and positive weight are required")
	}

	quote, err := rates.ResolveDomestic(s.tables, input.State, input.City, mode, input.WeightKg)
	if err != nil {
		return nil, err
	}

	state := input.State
	if state == "" {
		state = "N/A"
	}

	return &DomesticQuoteResult{
		DestinationState: state,
		Mode:             input.ModeLabel,
		WeightKg:         input.WeightKg,
		RoundedWeight:    quote.RoundedWeight,
		TotalPrice:       rates.ApplyGST(quote.Price),
		Zone:             quote.Zone,
	}, nil
}

// InternationalQuoteInput is an international quote request
type InternationalQuoteInput struct {
	Country  string
	WeightKg float64
}

// InternationalQuoteResult is a priced international quote, tax included
type InternationalQuoteResult struct {
	Country       string          `json:"country"`
	Zone          string          `json:"zone"`
	Mode          string          `json:"mode"`
	WeightKg      float64         `json:"weight_kg"`
	RoundedWeight int             `json:"rounded_weight"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// InternationalQuote prices an international shipment and applies the 18% GST
func (s *QuoteService) InternationalQuote(input InternationalQuoteInput) (*InternationalQuoteResult, error) {
	if input.Country == "" || input.WeightKg <= 0 {
		return nil, apperrors.NewValidationError("Country and positive weight are required")
	}

	quote, err := rates.ResolveInternational(s.tables, input.Country, input.WeightKg)
	if err != nil {
		return nil, err
	}

	return &InternationalQuoteResult{
		Country:       quote.Country,
		Zone:          "N/A",
		Mode:          "Express",
		WeightKg:      input.WeightKg,
		RoundedWeight: quote.RoundedWeight,
		PricePerKg:    quote.PerKgRate,
		TotalPrice:    rates.ApplyGST(quote.BasePrice),
	}, nil
}
