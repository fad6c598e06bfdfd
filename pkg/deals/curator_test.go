package deals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dealAt(price float64, strategy Strategy, hour int, airline string) Deal {
	return Deal{
		PriceUSD: price,
		Strategy: strategy,
		Itineraries: []Itinerary{{
			PriceUSD: price,
			Legs:     []Leg{{Airline: airline, FlightNumber: "F", DepartAt: depart(hour)}},
		}},
	}
}

func TestCurate_EmptyInput(t *testing.T) {
	assert.Empty(t, Curate(nil, DefaultConfig()))
}

func TestCurate_CheapestAlwaysPresent(t *testing.T) {
	deals := []Deal{
		dealAt(500, StrategyStandard, 10, "UA"),
		dealAt(50, StrategyStandard, 11, "UA"),
		dealAt(300, StrategyStandard, 12, "UA"),
	}
	curated := Curate(deals, DefaultConfig())
	require.NotEmpty(t, curated)
	assert.Equal(t, 50.0, curated[0].PriceUSD)
}

func TestCurate_SortedAscendingAndCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CurationMaxOutput = 3
	cfg.CurationBandTarget = 100
	var deals []Deal
	for i := 0; i < 50; i++ {
		deals = append(deals, dealAt(float64(1000-i*10), StrategyStandard, i%24, "UA"))
	}
	curated := Curate(deals, cfg)
	require.Len(t, curated, 3)
	for i := 1; i < len(curated); i++ {
		assert.LessOrEqual(t, curated[i-1].PriceUSD, curated[i].PriceUSD)
	}
}

func TestCurate_NoDuplicateDedupKeys(t *testing.T) {
	d := dealAt(120, StrategyHiddenCity, 10, "UA")
	deals := []Deal{d, d, d}
	curated := Curate(deals, DefaultConfig())
	assert.Len(t, curated, 1)
}

func TestCurate_SpecialDealsIncluded(t *testing.T) {
	deals := []Deal{
		dealAt(400, StrategyStandard, 10, "UA"),
		dealAt(410, StrategyHiddenCity, 11, "UA"),
	}
	curated := Curate(deals, DefaultConfig())
	var sawHiddenCity bool
	for _, d := range curated {
		if d.Strategy == StrategyHiddenCity {
			sawHiddenCity = true
		}
	}
	assert.True(t, sawHiddenCity)
}

func TestPriceBand(t *testing.T) {
	assert.Equal(t, 230.0, priceBand(237.5, 10))
	assert.Equal(t, 0.0, priceBand(9.99, 10))
}
