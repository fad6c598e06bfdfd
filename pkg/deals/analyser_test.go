package deals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyse_RedEyeAndEarlyBird(t *testing.T) {
	baseline := []Itinerary{
		{PriceUSD: 100, Legs: []Leg{{Airline: "UA", FlightNumber: "1", DepartAt: depart(23)}}},
		{PriceUSD: 120, Legs: []Leg{{Airline: "UA", FlightNumber: "2", DepartAt: depart(7)}}},
		{PriceUSD: 500, Legs: []Leg{{Airline: "UA", FlightNumber: "3", DepartAt: depart(14)}}},
		{PriceUSD: 510, Legs: []Leg{{Airline: "UA", FlightNumber: "4", DepartAt: depart(15)}}},
		{PriceUSD: 520, Legs: []Leg{{Airline: "UA", FlightNumber: "5", DepartAt: depart(16)}}},
		{PriceUSD: 530, Legs: []Leg{{Airline: "UA", FlightNumber: "6", DepartAt: depart(17)}}},
		{PriceUSD: 540, Legs: []Leg{{Airline: "UA", FlightNumber: "7", DepartAt: depart(18)}}},
	}
	result := analyse(baseline, DefaultConfig())
	require.Len(t, result.RedEye, 1)
	assert.Equal(t, 100.0, result.RedEye[0].PriceUSD)
	require.Len(t, result.EarlyBird, 1)
	assert.Equal(t, 120.0, result.EarlyBird[0].PriceUSD)
}

func TestAnalyse_LayoverDealMarksWorthItOnlyForShortConnectionAndSavings(t *testing.T) {
	baseline := []Itinerary{
		{PriceUSD: 300, Legs: []Leg{{Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}, // direct, cheapest
		{PriceUSD: 260, Legs: []Leg{{Airline: "UA", FlightNumber: "2", DepartAt: depart(11), Layovers: []Layover{{Airport: "ORD", DurationMin: 90}}}}},  // saves 40, short -> worth it
		{PriceUSD: 290, Legs: []Leg{{Airline: "UA", FlightNumber: "3", DepartAt: depart(12), Layovers: []Layover{{Airport: "ORD", DurationMin: 90}}}}},  // saves 10, too little
		{PriceUSD: 250, Legs: []Leg{{Airline: "UA", FlightNumber: "4", DepartAt: depart(13), Layovers: []Layover{{Airport: "ORD", DurationMin: 300}}}}}, // saves 50 but long layover
	}
	result := analyse(baseline, DefaultConfig())
	// Every itinerary with a layover surfaces a deal; only the one that's
	// both a short connection and a meaningful saving is marked worth it.
	require.Len(t, result.Layover, 3)

	byPrice := make(map[float64]Deal, len(result.Layover))
	for _, d := range result.Layover {
		byPrice[d.PriceUSD] = d
	}
	assert.Contains(t, byPrice[260.0].Explanation, "saves")
	assert.NotContains(t, byPrice[290.0].Explanation, "saves")
	assert.NotContains(t, byPrice[250.0].Explanation, "saves")
}

func TestAnalyse_BudgetCarrierDeal(t *testing.T) {
	baseline := []Itinerary{
		{PriceUSD: 80, Legs: []Leg{{Airline: "Spirit Airlines", FlightNumber: "1", DepartAt: depart(10)}}},
		{PriceUSD: 300, Legs: []Leg{{Airline: "United", FlightNumber: "2", DepartAt: depart(11)}}},
	}
	result := analyse(baseline, DefaultConfig())
	require.Len(t, result.BudgetCarrier, 1)
	assert.Equal(t, "Spirit Airlines", result.BudgetCarrier[0].Itineraries[0].Legs[0].Airline)
}

func TestDedupItineraries_CollapsesSameFlight(t *testing.T) {
	itins := []Itinerary{
		{PriceUSD: 100, Legs: []Leg{{Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}},
		{PriceUSD: 100, Legs: []Leg{{Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}},
	}
	assert.Len(t, dedupItineraries(itins), 1)
}
