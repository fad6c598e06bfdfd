package deals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseQuery(origin, destination string) Query {
	return Query{
		Origin:      origin,
		Destination: destination,
		Departure:   depart(10),
		Cabin:       CabinEconomy,
		Adults:      1,
	}
}

// S1: baseline only, no alternatives available anywhere.
func TestSearch_S1_BaselineOnly(t *testing.T) {
	source := NewMockSource(map[string][]Itinerary{
		"JFK-LAX": {{PriceUSD: 200, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}},
	})
	o := NewOrchestrator(source, DefaultConfig(), nil)

	result, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	require.NoError(t, err)
	require.Len(t, result.Deals, 1)
	assert.Equal(t, 200.0, result.Deals[0].PriceUSD)
	assert.Equal(t, StrategyStandard, result.Deals[0].Strategy)
}

// S2: nearby origin undercuts the baseline.
func TestSearch_S2_NearbyOrigin(t *testing.T) {
	source := NewMockSource(map[string][]Itinerary{
		"JFK-LAX": {{PriceUSD: 300, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}},
		"EWR-LAX": {{PriceUSD: 240, Legs: []Leg{{Origin: "EWR", Destination: "LAX", Airline: "UA", FlightNumber: "2", DepartAt: depart(10)}}}},
	})
	o := NewOrchestrator(source, DefaultConfig(), nil)

	result, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	require.NoError(t, err)

	var sawBaseline, sawNearby bool
	for _, d := range result.Deals {
		if d.PriceUSD == 300 {
			sawBaseline = true
		}
		if d.PriceUSD == 240 {
			sawNearby = true
			assert.Contains(t, d.Explanation, "EWR")
		}
	}
	assert.True(t, sawBaseline)
	assert.True(t, sawNearby)
	assert.LessOrEqual(t, source.CallCount(), 5)
}

// S3: split-ticket beats a direct baseline.
func TestSearch_S3_SplitTicket(t *testing.T) {
	source := NewMockSource(map[string][]Itinerary{
		"JFK-LAX": {{PriceUSD: 400, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}},
		"JFK-DEN": {{PriceUSD: 150, Legs: []Leg{{Origin: "JFK", Destination: "DEN", Airline: "UA", FlightNumber: "2", DepartAt: depart(10)}}}},
		"DEN-LAX": {{PriceUSD: 180, Legs: []Leg{{Origin: "DEN", Destination: "LAX", Airline: "UA", FlightNumber: "3", DepartAt: depart(14)}}}},
	})
	o := NewOrchestrator(source, DefaultConfig(), nil)

	result, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	require.NoError(t, err)

	var split *Deal
	for i, d := range result.Deals {
		if len(d.Itineraries) == 2 {
			split = &result.Deals[i]
		}
	}
	require.NotNil(t, split)
	assert.Equal(t, 330.0, split.PriceUSD)
	assert.Contains(t, split.Explanation, "DEN")
}

// S4: hidden-city via SFO beats the baseline, with a layover at the
// query destination.
func TestSearch_S4_HiddenCity(t *testing.T) {
	source := NewMockSource(map[string][]Itinerary{
		"JFK-LAX": {{PriceUSD: 350, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}},
		"JFK-SFO": {{PriceUSD: 220, Legs: []Leg{{
			Origin: "JFK", Destination: "SFO", Airline: "UA", FlightNumber: "2", DepartAt: depart(10),
			Layovers: []Layover{{Airport: "LAX", DurationMin: 90}},
		}}}},
	})
	o := NewOrchestrator(source, DefaultConfig(), nil)

	result, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	require.NoError(t, err)

	var hiddenCity *Deal
	for i, d := range result.Deals {
		if d.Strategy == StrategyHiddenCity {
			hiddenCity = &result.Deals[i]
		}
	}
	require.NotNil(t, hiddenCity)
	assert.GreaterOrEqual(t, hiddenCity.RiskScore, 60)
	assert.Equal(t, "SFO", hiddenCity.Itineraries[0].Legs[0].Destination)
}

// S5: a slow provider with many strategies gated on forces budget
// exhaustion; the search must still complete without a crash and cap
// calls issued at MaxCallsPerSearch.
func TestSearch_S5_BudgetExhaustion(t *testing.T) {
	source := &MockSource{
		Responses: map[string][]Itinerary{
			"JFK-LAX": {{PriceUSD: 350, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}},
		},
		Delay: 5 * time.Millisecond,
	}
	o := NewOrchestrator(source, DefaultConfig(), nil)

	result, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Deals)
	assert.LessOrEqual(t, source.CallCount(), DefaultConfig().MaxCallsPerSearch)
}

// S6: cancellation shortly after start still yields the baseline deal
// and does not panic.
func TestSearch_S6_Cancellation(t *testing.T) {
	source := &MockSource{
		Responses: map[string][]Itinerary{
			"JFK-LAX": {{PriceUSD: 350, Legs: []Leg{{Origin: "JFK", Destination: "LAX", Airline: "UA", FlightNumber: "1", DepartAt: depart(10)}}}},
		},
		// baseline returns instantly; every follow-up strategy route is
		// slow enough that cancellation lands while they're in flight.
		RouteDelays: map[string]time.Duration{"JFK-LAX": 0},
		Delay:       200 * time.Millisecond,
	}
	o := NewOrchestrator(source, DefaultConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	assert.NotPanics(t, func() {
		result, err := o.Search(ctx, baseQuery("JFK", "LAX"))
		require.NoError(t, err)
		assert.NotEmpty(t, result.Deals)
	})
}

func TestSearch_InvalidInput(t *testing.T) {
	source := NewMockSource(nil)
	o := NewOrchestrator(source, DefaultConfig(), nil)

	_, err := o.Search(context.Background(), Query{Origin: "jfk", Destination: "LAX", Departure: depart(10), Cabin: CabinEconomy, Adults: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSearch_PastDepartureRejected(t *testing.T) {
	source := NewMockSource(nil)
	o := NewOrchestrator(source, DefaultConfig(), nil)

	q := baseQuery("JFK", "LAX")
	q.Departure = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := o.Search(context.Background(), q)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSearch_ZeroBudget(t *testing.T) {
	source := NewMockSource(nil)
	cfg := DefaultConfig()
	cfg.MaxCallsPerSearch = 0
	o := NewOrchestrator(source, cfg, nil)

	_, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	assert.ErrorIs(t, err, ErrBudgetZero)
}

func TestSearch_EmptyBaselineReturnsEmptyResult(t *testing.T) {
	source := NewMockSource(nil)
	o := NewOrchestrator(source, DefaultConfig(), nil)

	result, err := o.Search(context.Background(), baseQuery("JFK", "LAX"))
	require.NoError(t, err)
	assert.Empty(t, result.Deals)
}
