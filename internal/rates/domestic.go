package rates

import (
	"fmt"
	"math"
	"strings"

	"github.com/logistix/courier-api/pkg/apperrors"
	"github.com/shopspring/decimal"
)

// DomesticQuote is the result of a domestic rate lookup, before tax
type DomesticQuote struct {
	Price         decimal.Decimal
	Zone          string
	RoundedWeight decimal.Decimal
}

// minimum chargeable weights per mode
const (
	minAirWeightKg     = 3
	minSurfaceWeightKg = 5
)

// ResolveDomestic maps a destination, mode and weight onto a pre-tax price.
// The destination is matched against the zone city lists first, then the
// state lists; both matches are exact and case-insensitive.
func ResolveDomestic(t *Tables, state, city, mode string, weightKg float64) (*DomesticQuote, error) {
	zone, ok := findZone(t.Zones, city)
	if !ok {
		zone, ok = findZone(t.Zones, state)
	}
	if !ok {
		return nil, apperrors.NewBusinessRuleError(
			fmt.Sprintf("The destination '%s, %s' is not currently serviced.", city, state))
	}

	table, ok := t.Prices[zone][mode]
	if !ok {
		return nil, apperrors.NewBusinessRuleError(
			fmt.Sprintf("The '%s' service is not available for '%s'.", mode, state))
	}

	normalized := weightKg
	if mode == ModeAir && normalized < minAirWeightKg {
		normalized = minAirWeightKg
	} else if mode == ModeSurface && normalized < minSurfaceWeightKg {
		normalized = minSurfaceWeightKg
	}

	if mode == ModeExpress {
		return resolveExpress(table, zone, state, weightKg)
	}
	return resolvePerKg(table, zone, state, normalized)
}

func findZone(zones DomesticZones, destination string) (string, bool) {
	if destination == "" {
		return "", false
	}

	target := strings.ToLower(destination)
	for zone, locations := range zones {
		for _, loc := range locations {
			if strings.ToLower(loc) == target {
				return zone, true
			}
		}
	}

	return "", false
}

// resolveExpress charges a discrete band price by rounded-up whole kg.
// The top band is open-ended: anything above 4 kg falls into band "5".
func resolveExpress(table BandTable, zone, state string, weightKg float64) (*DomesticQuote, error) {
	rounded := int(math.Ceil(weightKg))

	var band string
	switch {
	case rounded <= 1:
		band = "1"
	case rounded <= 2:
		band = "2"
	case rounded <= 3:
		band = "3"
	case rounded <= 4:
		band = "4"
	default:
		band = "5"
	}

	price, ok := table[band]
	if !ok {
		return nil, apperrors.NewBusinessRuleError(
			fmt.Sprintf("Pricing not available for the calculated weight band in %s.", state))
	}

	return &DomesticQuote{
		Price:         price,
		Zone:          zone,
		RoundedWeight: decimal.NewFromInt(int64(rounded)),
	}, nil
}

// resolvePerKg charges rate x normalized weight for air and surface modes
func resolvePerKg(table BandTable, zone, state string, normalizedKg float64) (*DomesticQuote, error) {
	var band string
	switch {
	case normalizedKg < 5:
		band = "<5"
	case normalizedKg < 10:
		band = "<10"
	case normalizedKg < 25:
		band = "<25"
	case normalizedKg < 50:
		band = "<50"
	default:
		band = ">50"
	}

	rate, ok := table[band]
	if !ok {
		return nil, apperrors.NewBusinessRuleError(
			fmt.Sprintf("Pricing not available for the calculated weight band in %s.", state))
	}

	weight := decimal.NewFromFloat(normalizedKg)

	return &DomesticQuote{
		Price:         rate.Mul(weight),
		Zone:          zone,
		RoundedWeight: weight,
	}, nil
}
