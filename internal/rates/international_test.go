package rates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intlTestTables() *Tables {
	return &Tables{
		Countries: []CountryRate{
			{
				Country: "USA",
				Tiers: map[int]decimal.Decimal{
					1: decimal.NewFromInt(2900), 2: decimal.NewFromInt(3550),
					3: decimal.NewFromInt(4200), 4: decimal.NewFromInt(4850),
					5: decimal.NewFromInt(5500), 6: decimal.NewFromInt(6150),
					7: decimal.NewFromInt(6800), 8: decimal.NewFromInt(7450),
					9: decimal.NewFromInt(8150), 10: decimal.NewFromInt(8800),
					11: decimal.NewFromInt(9500),
				},
				PerKg:    decimal.NewFromInt(550),
				HasPerKg: true,
			},
			{
				Country: "Nepal",
				Tiers: map[int]decimal.Decimal{
					1: decimal.NewFromInt(1500), 11: decimal.NewFromInt(4900),
				},
			},
		},
	}
}

func TestResolveInternational(t *testing.T) {
	tables := intlTestTables()

	tests := []struct {
		name       string
		country    string
		weight     float64
		wantPrice  int64
		wantWeight int
	}{
		{"tier price for whole weight", "USA", 5, 5500, 5},
		{"fractional weight rounds up", "USA", 4.2, 5500, 5},
		{"sub-kilogram charges the one kilogram tier", "USA", 0.5, 2900, 1},
		{"country match is case-insensitive", "usa", 1, 2900, 1},
		{"top tier", "USA", 11, 9500, 11},
		{"beyond top tier extends per kilogram", "USA", 12, 10050, 12},
		{"deep extension", "USA", 15, 11700, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ResolveInternational(tables, tt.country, tt.weight)
			require.NoError(t, err)
			assert.Equal(t, "USA", quote.Country)
			assert.Equal(t, tt.wantWeight, quote.RoundedWeight)
			assert.True(t, quote.BasePrice.Equal(decimal.NewFromInt(tt.wantPrice)),
				"base price = %s", quote.BasePrice)
		})
	}
}

func TestResolveInternationalErrors(t *testing.T) {
	tables := intlTestTables()

	t.Run("zero weight", func(t *testing.T) {
		_, err := ResolveInternational(tables, "USA", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "positive")
	})

	t.Run("unserviced country", func(t *testing.T) {
		_, err := ResolveInternational(tables, "Wakanda", 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "do not offer services")
	})

	t.Run("no extended pricing without per-kg rate", func(t *testing.T) {
		_, err := ResolveInternational(tables, "Nepal", 14)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Extended pricing not available")
	})
}

func TestResolveInternationalTaxedTotal(t *testing.T) {
	tables := intlTestTables()

	// 12 kg to the USA: 9500 + 550 = 10050, 11859.00 with tax
	quote, err := ResolveInternational(tables, "USA", 12)
	require.NoError(t, err)
	assert.True(t, ApplyGST(quote.BasePrice).Equal(decimal.RequireFromString("11859.00")),
		"taxed = %s", ApplyGST(quote.BasePrice))
}
