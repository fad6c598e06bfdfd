package deals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depart(hour int) time.Time {
	return time.Date(2099, 8, 15, hour, 0, 0, 0, time.UTC)
}

func TestNearbyAirportStrategy_OnlyDirectAndCheaper(t *testing.T) {
	source := NewMockSource(map[string][]Itinerary{
		"EWR-LAX": {{PriceUSD: 240, Legs: []Leg{{Origin: "EWR", Destination: "LAX", Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}},
	})
	cfg := DefaultConfig()
	caller := NewBudgetedCaller(source, 15, nil)

	deals := nearbyAirportStrategy(context.Background(), Query{Origin: "JFK", Destination: "LAX", Departure: depart(10), Cabin: CabinEconomy, Adults: 1}, 300, caller, cfg)

	require.Len(t, deals, 1)
	assert.True(t, deals[0].Itineraries[0].isDirect())
	assert.Contains(t, deals[0].Explanation, "EWR")
	assert.Equal(t, 240.0, deals[0].PriceUSD)
}

func TestNearbyAirportStrategy_SkippedBelowThreshold(t *testing.T) {
	source := NewMockSource(map[string][]Itinerary{})
	cfg := DefaultConfig()
	caller := NewBudgetedCaller(source, 15, nil)

	deals := nearbyAirportStrategy(context.Background(), Query{Origin: "JFK", Destination: "LAX", Departure: depart(10), Cabin: CabinEconomy, Adults: 1}, 50, caller, cfg)
	assert.Nil(t, deals)
	assert.Equal(t, 0, source.CallCount())
}

func TestSplitTicketStrategy_CombinesTwoLegs(t *testing.T) {
	source := NewMockSource(map[string][]Itinerary{
		"JFK-DEN": {{PriceUSD: 150, Legs: []Leg{{Origin: "JFK", Destination: "DEN", Airline: "UA", FlightNumber: "100", DepartAt: depart(8)}}}},
		"DEN-LAX": {{PriceUSD: 180, Legs: []Leg{{Origin: "DEN", Destination: "LAX", Airline: "UA", FlightNumber: "200", DepartAt: depart(12)}}}},
	})
	cfg := DefaultConfig()
	caller := NewBudgetedCaller(source, 15, nil)

	deals := splitTicketStrategy(context.Background(), Query{Origin: "JFK", Destination: "LAX", Departure: depart(8), Cabin: CabinEconomy, Adults: 1}, 400, caller, cfg)

	require.Len(t, deals, 1)
	assert.Equal(t, 330.0, deals[0].PriceUSD)
	assert.Len(t, deals[0].Itineraries, 2)
	assert.Contains(t, deals[0].Explanation, "DEN")
}

func TestHiddenCityStrategy_RequiresLayoverAtDestination(t *testing.T) {
	source := NewMockSource(map[string][]Itinerary{
		"JFK-SFO": {{PriceUSD: 220, Legs: []Leg{{
			Origin: "JFK", Destination: "SFO", Airline: "UA", FlightNumber: "300", DepartAt: depart(9),
			Layovers: []Layover{{Airport: "LAX", DurationMin: 90}},
		}}}},
	})
	cfg := DefaultConfig()
	caller := NewBudgetedCaller(source, 15, nil)

	deals := hiddenCityStrategy(context.Background(), Query{Origin: "JFK", Destination: "LAX", Departure: depart(9), Cabin: CabinEconomy, Adults: 1}, 350, caller, cfg)

	require.Len(t, deals, 1)
	assert.Equal(t, StrategyHiddenCity, deals[0].Strategy)
	assert.GreaterOrEqual(t, deals[0].RiskScore, 60)
	assert.Equal(t, "SFO", deals[0].Itineraries[0].Legs[0].Destination)
}

func TestConnectingFlightExtractor_OnlyBeatsDirectByMargin(t *testing.T) {
	cfg := DefaultConfig()
	direct := Itinerary{PriceUSD: 300, Legs: []Leg{{Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}
	cheapConnection := Itinerary{PriceUSD: 200, Legs: []Leg{{Airline: "UA", FlightNumber: "2", DepartAt: depart(11), Layovers: []Layover{{Airport: "ORD", DurationMin: 60}}}}}
	pricierConnection := Itinerary{PriceUSD: 290, Legs: []Leg{{Airline: "UA", FlightNumber: "3", DepartAt: depart(12), Layovers: []Layover{{Airport: "ORD", DurationMin: 60}}}}}

	deals := connectingFlightExtractor([]Itinerary{direct, cheapConnection, pricierConnection}, cheapestDirect([]Itinerary{direct}), cfg)

	require.Len(t, deals, 1)
	assert.Equal(t, 200.0, deals[0].PriceUSD)
}

func TestBudgetAirlineFilter_FlagsKnownCarriers(t *testing.T) {
	itins := []Itinerary{
		{PriceUSD: 80, Legs: []Leg{{Airline: "Spirit Airlines", FlightNumber: "1", DepartAt: depart(10)}}},
		{PriceUSD: 300, Legs: []Leg{{Airline: "United", FlightNumber: "2", DepartAt: depart(11)}}},
	}
	deals := budgetAirlineFilter(itins, DefaultConfig())
	require.Len(t, deals, 1)
	assert.Equal(t, 80.0, deals[0].PriceUSD)
}
