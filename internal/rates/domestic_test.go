package rates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTables() *Tables {
	return &Tables{
		Zones: DomesticZones{
			"A": {"Mumbai", "Delhi", "Pune"},
			"B": {"Maharashtra", "Gujarat"},
			"E": {"Assam", "Sikkim"},
		},
		Prices: DomesticPrices{
			"A": {
				ModeExpress: BandTable{
					"1": decimal.NewFromInt(450),
					"2": decimal.NewFromInt(650),
					"3": decimal.NewFromInt(850),
					"4": decimal.NewFromInt(1050),
					"5": decimal.NewFromInt(1250),
				},
				ModeAir: BandTable{
					"<5":  decimal.NewFromInt(120),
					"<10": decimal.NewFromInt(105),
					"<25": decimal.NewFromInt(90),
					"<50": decimal.NewFromInt(78),
					">50": decimal.NewFromInt(65),
				},
				ModeSurface: BandTable{
					"<5":  decimal.NewFromInt(80),
					"<10": decimal.NewFromInt(70),
					"<25": decimal.NewFromInt(58),
					"<50": decimal.NewFromInt(48),
					">50": decimal.NewFromInt(40),
				},
			},
			"B": {
				ModeExpress: BandTable{
					"1": decimal.NewFromInt(500),
					"2": decimal.NewFromInt(720),
				},
			},
			"E": {
				// no surface service in the remote zone
				ModeAir: BandTable{
					"<5": decimal.NewFromInt(190),
				},
			},
		},
	}
}

func TestResolveDomesticZoneMatching(t *testing.T) {
	tables := testTables()

	t.Run("city match", func(t *testing.T) {
		quote, err := ResolveDomestic(tables, "", "Mumbai", ModeExpress, 1)
		require.NoError(t, err)
		assert.Equal(t, "A", quote.Zone)
	})

	t.Run("city match is case-insensitive", func(t *testing.T) {
		quote, err := ResolveDomestic(tables, "", "mumbai", ModeExpress, 1)
		require.NoError(t, err)
		assert.Equal(t, "A", quote.Zone)
	})

	t.Run("falls back to state when city is unknown", func(t *testing.T) {
		quote, err := ResolveDomestic(tables, "Maharashtra", "Kolhapur", ModeExpress, 1)
		require.NoError(t, err)
		assert.Equal(t, "B", quote.Zone)
		assert.True(t, quote.Price.Equal(decimal.NewFromInt(500)))
	})

	t.Run("city match wins over state", func(t *testing.T) {
		quote, err := ResolveDomestic(tables, "Maharashtra", "Mumbai", ModeExpress, 1)
		require.NoError(t, err)
		assert.Equal(t, "A", quote.Zone)
	})

	t.Run("unserviced destination", func(t *testing.T) {
		_, err := ResolveDomestic(tables, "Atlantis", "Lost City", ModeExpress, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not currently serviced")
	})
}

func TestResolveDomesticExpressBands(t *testing.T) {
	tables := testTables()

	tests := []struct {
		name          string
		weight        float64
		wantPrice     int64
		wantRoundedKg int64
	}{
		{"sub-kilogram rounds to band 1", 0.4, 450, 1},
		{"exact band boundary", 2.0, 650, 2},
		{"fractional rounds up", 2.3, 850, 3},
		{"top fixed band", 4.0, 1050, 4},
		{"above four kilograms falls in open band", 4.5, 1250, 5},
		{"heavy parcels stay in open band", 19.0, 1250, 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ResolveDomestic(tables, "", "Mumbai", ModeExpress, tt.weight)
			require.NoError(t, err)
			assert.True(t, quote.Price.Equal(decimal.NewFromInt(tt.wantPrice)),
				"price = %s", quote.Price)
			assert.True(t, quote.RoundedWeight.Equal(decimal.NewFromInt(tt.wantRoundedKg)),
				"rounded weight = %s", quote.RoundedWeight)
		})
	}
}

func TestResolveDomesticPerKgModes(t *testing.T) {
	tables := testTables()

	tests := []struct {
		name       string
		mode       string
		weight     float64
		wantPrice  string
		wantWeight string
	}{
		{"air below minimum charges three kilograms", ModeAir, 2, "360", "3"},
		{"air at minimum", ModeAir, 3, "360", "3"},
		{"air in second band", ModeAir, 7, "735", "7"},
		{"surface below minimum charges five kilograms", ModeSurface, 1, "350", "5"},
		{"surface in third band", ModeSurface, 20, "1160", "20"},
		{"surface at heavy band", ModeSurface, 60, "2400", "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := ResolveDomestic(tables, "", "Mumbai", tt.mode, tt.weight)
			require.NoError(t, err)
			assert.True(t, quote.Price.Equal(decimal.RequireFromString(tt.wantPrice)),
				"price = %s", quote.Price)
			assert.True(t, quote.RoundedWeight.Equal(decimal.RequireFromString(tt.wantWeight)),
				"rounded weight = %s", quote.RoundedWeight)
		})
	}
}

func TestResolveDomesticModeUnavailable(t *testing.T) {
	tables := testTables()

	_, err := ResolveDomestic(tables, "Assam", "", ModeSurface, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestApplyGST(t *testing.T) {
	total := ApplyGST(decimal.NewFromInt(360))
	assert.True(t, total.Equal(decimal.RequireFromString("424.80")), "total = %s", total)
}

func TestLoadShippedTables(t *testing.T) {
	tables, err := Load("../../configs/rates")
	require.NoError(t, err)

	// Mumbai, air, 2 kg: below the 3 kg minimum, so 3 x 120 = 360, 424.80 taxed
	quote, err := ResolveDomestic(tables, "", "Mumbai", ModeAir, 2)
	require.NoError(t, err)
	assert.Equal(t, "A", quote.Zone)
	assert.True(t, ApplyGST(quote.Price).Equal(decimal.RequireFromString("424.80")))

	// the remote zone has no surface service
	_, err = ResolveDomestic(tables, "Assam", "", ModeSurface, 10)
	assert.Error(t, err)
}
