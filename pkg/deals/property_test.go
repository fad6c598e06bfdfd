package deals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// richSource simulates a route-rich provider so every strategy has
// something to act on, exercising the properties below against a
// realistic deal set rather than just the baseline.
func richSource() *MockSource {
	return NewMockSource(map[string][]Itinerary{
		"JFK-LAX": {
			{PriceUSD: 400, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "UA", FlightNumber: "100", DepartAt: depart(10)}}},
			{PriceUSD: 420, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "AA", FlightNumber: "101", DepartAt: depart(23)}}},
			{PriceUSD: 380, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "Spirit Airlines", FlightNumber: "102", DepartAt: depart(7)}}},
		},
		"EWR-LAX": {{PriceUSD: 260, Legs: []Leg{{Origin: "EWR", Destination: "LAX", Airline: "UA", FlightNumber: "200", DepartAt: depart(10)}}}},
		"LGA-LAX": {{PriceUSD: 390, Legs: []Leg{{Origin: "LGA", Destination: "LAX", Airline: "UA", FlightNumber: "201", DepartAt: depart(10)}}}},
		"JFK-BUR": {{PriceUSD: 250, Legs: []Leg{{Origin: "JFK", Destination: "BUR", Airline: "UA", FlightNumber: "202", DepartAt: depart(10)}}}},
		"JFK-ONT": {{PriceUSD: 395, Legs: []Leg{{Origin: "JFK", Destination: "ONT", Airline: "UA", FlightNumber: "203", DepartAt: depart(10)}}}},
		"JFK-LGB": {{PriceUSD: 398, Legs: []Leg{{Origin: "JFK", Destination: "LGB", Airline: "UA", FlightNumber: "204", DepartAt: depart(10)}}}},
		"JFK-SNA": {{PriceUSD: 399, Legs: []Leg{{Origin: "JFK", Destination: "SNA", Airline: "UA", FlightNumber: "205", DepartAt: depart(10)}}}},
		"JFK-DEN": {{PriceUSD: 150, Legs: []Leg{{Origin: "JFK", Destination: "DEN", Airline: "UA", FlightNumber: "300", DepartAt: depart(8)}}}},
		"DEN-LAX": {{PriceUSD: 180, Legs: []Leg{{Origin: "DEN", Destination: "LAX", Airline: "UA", FlightNumber: "301", DepartAt: depart(14)}}}},
		"JFK-FLL": {{PriceUSD: 120, Legs: []Leg{{Origin: "JFK", Destination: "FLL", Airline: "UA", FlightNumber: "400", DepartAt: depart(9)}}}},
		"FLL-LAX": {{PriceUSD: 140, Legs: []Leg{{Origin: "FLL", Destination: "LAX", Airline: "UA", FlightNumber: "401", DepartAt: depart(13)}}}},
		"JFK-MIA": {{PriceUSD: 130, Legs: []Leg{{Origin: "JFK", Destination: "MIA", Airline: "UA", FlightNumber: "402", DepartAt: depart(9)}}}},
		"MIA-LAX": {{PriceUSD: 150, Legs: []Leg{{Origin: "MIA", Destination: "LAX", Airline: "UA", FlightNumber: "403", DepartAt: depart(13)}}}},
		"JFK-SFO": {{PriceUSD: 220, Legs: []Leg{{
			Origin: "JFK", Destination: "SFO", Airline: "UA", FlightNumber: "500", DepartAt: depart(10),
			Layovers: []Layover{{Airport: "LAX", DurationMin: 90}},
		}}}},
		"JFK-HNL": {{PriceUSD: 230, Legs: []Leg{{
			Origin: "JFK", Destination: "HNL", Airline: "UA", FlightNumber: "501", DepartAt: depart(10),
			Layovers: []Layover{{Airport: "LAX", DurationMin: 100}},
		}}}},
	})
}

func runSearch(t *testing.T) Result {
	t.Helper()
	o := NewOrchestrator(richSource(), DefaultConfig(), nil)
	result, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	require.NoError(t, err)
	return result
}

// 1. calls_issued <= 15
func TestProperty_CallsIssuedNeverExceedsBudget(t *testing.T) {
	source := richSource()
	o := NewOrchestrator(source, DefaultConfig(), nil)
	_, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	require.NoError(t, err)
	assert.LessOrEqual(t, source.CallCount(), DefaultConfig().MaxCallsPerSearch)
}

// 2. every deal has a positive price, at least one leg, and a risk score in [0,100]
func TestProperty_DealInvariants(t *testing.T) {
	result := runSearch(t)
	require.NotEmpty(t, result.Deals)
	for _, d := range result.Deals {
		assert.Greater(t, d.PriceUSD, 0.0)
		require.NotEmpty(t, d.Itineraries)
		assert.NotEmpty(t, d.Itineraries[0].Legs)
		assert.GreaterOrEqual(t, d.RiskScore, 0)
		assert.LessOrEqual(t, d.RiskScore, 100)
	}
}

// 3. output sorted non-decreasing by price
func TestProperty_OutputSortedAscending(t *testing.T) {
	result := runSearch(t)
	for i := 1; i < len(result.Deals); i++ {
		assert.LessOrEqual(t, result.Deals[i-1].PriceUSD, result.Deals[i].PriceUSD)
	}
}

// 4. the globally cheapest baseline itinerary is present iff baseline is non-empty
func TestProperty_CheapestBaselinePresent(t *testing.T) {
	result := runSearch(t)
	var sawCheapest bool
	for _, d := range result.Deals {
		if d.PriceUSD == 380 && d.Itineraries[0].Legs[0].FlightNumber == "102" {
			sawCheapest = true
		}
	}
	assert.True(t, sawCheapest, "the cheapest baseline itinerary should survive curation")
}

// 5. no two output deals share a dedup key
func TestProperty_NoDuplicateDedupKeys(t *testing.T) {
	result := runSearch(t)
	seen := make(map[string]bool)
	for _, d := range result.Deals {
		key := d.dedupKey()
		require.False(t, seen[key], "duplicate dedup key %s", key)
		seen[key] = true
	}
}

// 6. output length <= 35
func TestProperty_OutputLengthBounded(t *testing.T) {
	result := runSearch(t)
	assert.LessOrEqual(t, len(result.Deals), 35)
}

// 7. nearby-airport deals are always direct
func TestProperty_NearbyAirportDealsAreDirect(t *testing.T) {
	result := runSearch(t)
	for _, d := range result.Deals {
		if d.Strategy == StrategyStandard && len(d.Itineraries) == 1 {
			origin := d.Itineraries[0].Legs[0].Origin
			if origin != "" && origin != "JFK" {
				assert.True(t, d.Itineraries[0].isDirect())
			}
		}
	}
}

// 8. hidden-city deals have a layover at the query destination and a
// final destination different from the query destination
func TestProperty_HiddenCityDealsLayoverAtDestination(t *testing.T) {
	result := runSearch(t)
	for _, d := range result.Deals {
		if d.Strategy != StrategyHiddenCity {
			continue
		}
		leg := d.Itineraries[0].Legs[0]
		assert.NotEqual(t, "LAX", leg.Destination)
		var foundLayover bool
		for _, lo := range leg.Layovers {
			if lo.Airport == "LAX" {
				foundLayover = true
			}
		}
		assert.True(t, foundLayover)
	}
}

// 9. idempotence: the same deterministic mock provider yields identical output
func TestProperty_Idempotence(t *testing.T) {
	first := runSearch(t)
	second := runSearch(t)
	require.Equal(t, len(first.Deals), len(second.Deals))
	for i := range first.Deals {
		assert.Equal(t, first.Deals[i].PriceUSD, second.Deals[i].PriceUSD)
		assert.Equal(t, first.Deals[i].Strategy, second.Deals[i].Strategy)
	}
}
