package rates

import (
	"fmt"
	"math"
	"strings"

	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/shopspring/decimal"
)

// tier weights run from 1 to 11 whole kg; above that pricing extends linearly
const maxTierWeightKg = 11

// InternationalQuote is the result of an international rate lookup, before tax
type InternationalQuote struct {
	Country       string
	BasePrice     decimal.Decimal
	RoundedWeight int
	PerKgRate     decimal.Decimal
}

// ResolveInternational maps a destination country and weight onto a pre-tax
// price. The country match is exact and case-insensitive. Weight rounds up to
// whole kg; sub-kilogram parcels are charged at the 1 kg tier.
func ResolveInternational(t *Tables, country string, weightKg float64) (*InternationalQuote, error) {
	if weightKg <= 0 {
		return nil, apperrors.NewValidationError("Weight must be a positive number.")
	}

	rate, ok := findCountry(t.Countries, country)
	if !ok {
		return nil, apperrors.NewNotFoundError(
			fmt.Sprintf("We do not offer services to %s at the moment.", country))
	}

	integerWeight := int(math.Ceil(weightKg))

	var basePrice decimal.Decimal
	switch {
	case integerWeight >= 1 && integerWeight <= maxTierWeightKg:
		price, ok := rate.Tiers[integerWeight]
		if !ok {
			return nil, apperrors.NewBusinessRuleError(
				fmt.Sprintf("Pricing not available for %dkg to %s.", integerWeight, rate.Country))
		}
		basePrice = price

	case integerWeight > maxTierWeightKg:
		priceAtTop, ok := rate.Tiers[maxTierWeightKg]
		if !ok || !rate.HasPerKg {
			return nil, apperrors.NewBusinessRuleError(
				fmt.Sprintf("Extended pricing not available for %s.", rate.Country))
		}
		extraKgs := int64(integerWeight - maxTierWeightKg)
		basePrice = priceAtTop.Add(rate.PerKg.Mul(decimal.NewFromInt(extraKgs)))

	default:
		price, ok := rate.Tiers[1]
		if !ok {
			return nil, apperrors.NewBusinessRuleError(
				fmt.Sprintf("Pricing not available for %dkg to %s.", integerWeight, rate.Country))
		}
		basePrice = price
	}

	return &InternationalQuote{
		Country:       rate.Country,
		BasePrice:     basePrice,
		RoundedWeight: integerWeight,
		PerKgRate:     rate.PerKg,
	}, nil
}

func findCountry(countries []CountryRate, target string) (*CountryRate, bool) {
	needle := strings.ToLower(strings.TrimSpace(target))

	for i := range countries {
		if strings.ToLower(countries[i].Country) == needle {
			return &countries[i], true
		}
	}

	return nil, false
}
