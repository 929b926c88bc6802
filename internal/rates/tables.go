package rates

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
)

// Shipping modes for domestic quotes
const (
	ModeExpress = "express"
	ModeAir     = "air"
	ModeSurface = "surface"
)

// ParseMode maps the customer-facing service labels onto internal mode keys
func ParseMode(label string) (string, bool) {
	switch label {
	case "Express":
		return ModeExpress, true
	case "Air Cargo":
		return ModeAir, true
	case "Surface Cargo":
		return ModeSurface, true
	default:
		return "", false
	}
}

// BandTable maps a weight band to a fixed price (express) or per-kg rate
// (air/surface).
type BandTable map[string]decimal.Decimal

// DomesticZones maps a zone name to the cities and states it covers
type DomesticZones map[string][]string

// DomesticPrices maps zone -> mode -> band table
type DomesticPrices map[string]map[string]BandTable

// CountryRate holds the international price tiers for one destination country.
// Tiers cover 1 to 11 whole kg; weights above that extend at PerKg per extra kg.
type CountryRate struct {
	Country  string
	Tiers    map[int]decimal.Decimal
	PerKg    decimal.Decimal
	HasPerKg bool
}

// UnmarshalJSON decodes the flat table row shape, where tier prices are keyed
// by the stringified weight alongside "country" and "per_kg".
func (c *CountryRate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Tiers = make(map[int]decimal.Decimal)

	for key, value := range raw {
		switch key {
		case "country":
			if err := json.Unmarshal(value, &c.Country); err != nil {
				return fmt.Errorf("country: %w", err)
			}
		case "per_kg":
			if err := json.Unmarshal(value, &c.PerKg); err != nil {
				return fmt.Errorf("per_kg: %w", err)
			}
			c.HasPerKg = true
		default:
			tier, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			var price decimal.Decimal
			if err := json.Unmarshal(value, &price); err != nil {
				return fmt.Errorf("tier %s: %w", key, err)
			}
			c.Tiers[tier] = price
		}
	}

	return nil
}

// Tables holds all static rate data, loaded once at startup and read-only
// for the lifetime of the process.
type Tables struct {
	Zones     DomesticZones
	Prices    DomesticPrices
	Countries []CountryRate
}

// Load reads the rate tables from JSON files in dir
func Load(dir string) (*Tables, error) {
	var t Tables

	if err := loadJSON(filepath.Join(dir, "domestic_zones.json"), &t.Zones); err != nil {
		return nil, fmt.Errorf("domestic zones: %w", err)
	}
	if err := loadJSON(filepath.Join(dir, "domestic_prices.json"), &t.Prices); err != nil {
		return nil, fmt.Errorf("domestic prices: %w", err)
	}
	if err := loadJSON(filepath.Join(dir, "international.json"), &t.Countries); err != nil {
		return nil, fmt.Errorf("international rates: %w", err)
	}

	return &t, nil
}

func loadJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

var gstMultiplier = decimal.NewFromFloat(1.18)

// ApplyGST adds the uniform 18% tax to a base price, rounded to 2 decimals
func ApplyGST(price decimal.Decimal) decimal.Decimal {
	return price.Mul(gstMultiplier).Round(2)
}
