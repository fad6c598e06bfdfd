package deals

import (
	"strings"
	"time"
)

// Config centralizes every threshold the strategies and curator use, so
// tests can drive edge cases (a strategy that never fires, a curation
// pipeline that never needs to truncate) without touching the logic.
type Config struct {
	// MaxCallsPerSearch is the hard ceiling on upstream provider calls a
	// single Search makes, including the baseline call.
	MaxCallsPerSearch int

	// ExcludedAirlines is a list of airline names the budget-carrier
	// checks (C5's filter and C6's BudgetCarrier category) should never
	// flag, even if they'd otherwise match a known budget carrier.
	ExcludedAirlines []string

	// Strategy gates: a strategy is not even scheduled below its price.
	NearbyAirportMinPrice    float64
	NearbyAirportDiscount    float64 // e.g. 0.85 means "15% cheaper or better"
	SplitTicketMinPrice      float64
	SplitTicketDiscount      float64
	PositioningMinPrice      float64
	PositioningDiscount      float64
	HiddenCityMinPrice      float64
	ConnectingMinSavingsPct float64 // e.g. 0.90 means "10% cheaper than cheapest direct"

	// HiddenCityMaxBeyondCities bounds how many beyond-city candidates
	// the hidden-city strategy probes per search.
	HiddenCityMaxBeyondCities int

	// CacheTTL is how long a provider response is cached before being
	// considered stale.
	CacheTTL time.Duration

	// Curation pipeline step targets (see pkg/deals/curator.go).
	CurationSpecialTarget int // step 2: stop adding special deals once total >= this
	CurationBucketTarget  int // step 3: stop adding time-bucket deals once total >= this
	CurationAirlineTarget int // step 4: stop adding per-airline deals once total >= this
	CurationBandTarget    int // step 5: stop adding price-band deals once total >= this
	CurationMaxOutput     int // final cap after ascending sort

	// DealsPerBucket / DealsPerAirline bound how many deals the curator
	// takes from a single time bucket or airline per pass.
	DealsPerBucket  int
	DealsPerAirline int

	// PriceBandWidth is the width (in dollars) of the price bands used
	// in curation step 5.
	PriceBandWidth float64
}

// excludesAirline reports whether airline matches one of cfg's
// ExcludedAirlines by case-insensitive substring, the same matching
// style macros.IsBudgetCarrier uses for its named-carrier list.
func (cfg Config) excludesAirline(airline string) bool {
	lower := strings.ToLower(airline)
	for _, name := range cfg.ExcludedAirlines {
		if strings.Contains(lower, strings.ToLower(name)) {
			return true
		}
	}
	return false
}

// DefaultConfig returns the thresholds the spec fixes for the core.
func DefaultConfig() Config {
	return Config{
		MaxCallsPerSearch: 15,

		NearbyAirportMinPrice: 70,
		NearbyAirportDiscount: 0.85,
		SplitTicketMinPrice:   90,
		SplitTicketDiscount:   0.85,
		PositioningMinPrice:   300,
		PositioningDiscount:   0.75,
		HiddenCityMinPrice:    100,

		ConnectingMinSavingsPct: 0.90,

		HiddenCityMaxBeyondCities: 5,

		CacheTTL: 5 * time.Minute,

		CurationSpecialTarget: 30,
		CurationBucketTarget:  40,
		CurationAirlineTarget: 40,
		CurationBandTarget:    35,
		CurationMaxOutput:     35,

		DealsPerBucket:  2,
		DealsPerAirline: 2,
		PriceBandWidth:  10,
	}
}
