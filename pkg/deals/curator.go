package deals

import (
	"math"
	"sort"
)

// timeOfDayBucket classifies a departure hour into one of four buckets
// used for curation's per-time-of-day grouping.
func timeOfDayBucket(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 24:
		return "evening"
	default:
		return "overnight"
	}
}

var timeOfDayOrder = []string{"morning", "afternoon", "evening", "overnight"}

// groupByTimeOfDay buckets deals by their primary leg's departure hour.
func groupByTimeOfDay(deals []Deal) map[string][]Deal {
	out := make(map[string][]Deal)
	for _, d := range deals {
		bucket := timeOfDayBucket(d.primaryLeg().DepartAt.Hour())
		out[bucket] = append(out[bucket], d)
	}
	for k := range out {
		out[k] = sortDealsByPrice(out[k])
	}
	return out
}

// groupByAirline buckets deals by their primary leg's operating airline.
func groupByAirline(deals []Deal) map[string][]Deal {
	out := make(map[string][]Deal)
	for _, d := range deals {
		airline := d.primaryLeg().Airline
		out[airline] = append(out[airline], d)
	}
	for k := range out {
		out[k] = sortDealsByPrice(out[k])
	}
	return out
}

// groupByStrategy buckets deals by strategy. This grouping is advisory —
// exposed for callers/tests that want a strategy breakdown — and isn't
// itself part of the selection pipeline below.
func groupByStrategy(deals []Deal) map[Strategy][]Deal {
	out := make(map[Strategy][]Deal)
	for _, d := range deals {
		out[d.Strategy] = append(out[d.Strategy], d)
	}
	for k := range out {
		out[k] = sortDealsByPrice(out[k])
	}
	return out
}

// priceBand returns the $10-wide band a price falls into, e.g. 237.50 -> 230.
func priceBand(price float64, width float64) float64 {
	if width <= 0 {
		width = 10
	}
	return math.Floor(price/width) * width
}

type curatorState struct {
	selected []Deal
	seen     map[string]bool
}

func newCuratorState() *curatorState {
	return &curatorState{seen: make(map[string]bool)}
}

func (s *curatorState) add(d Deal) bool {
	key := d.dedupKey()
	if s.seen[key] {
		return false
	}
	s.seen[key] = true
	s.selected = append(s.selected, d)
	return true
}

func (s *curatorState) count() int {
	return len(s.selected)
}

// Curate runs the fixed five-step selection pipeline over every deal
// surfaced by the strategies and analyser, producing a deduplicated,
// bounded, ascending-by-price deal list.
func Curate(deals []Deal, cfg Config) []Deal {
	if len(deals) == 0 {
		return []Deal{}
	}

	allSorted := sortDealsByPrice(deals)
	state := newCuratorState()

	// Step 1: the single globally cheapest deal always makes the cut.
	state.add(allSorted[0])

	// Step 2: every special (non-standard strategy) deal, cheapest
	// first, until the running total reaches the special-deal target.
	for _, d := range allSorted {
		if d.Strategy == StrategyStandard {
			continue
		}
		if state.count() >= cfg.CurationSpecialTarget {
			break
		}
		state.add(d)
	}

	// Step 3: up to DealsPerBucket cheapest deals per time-of-day
	// bucket, in a fixed bucket order, until the bucket target is hit.
	byBucket := groupByTimeOfDay(allSorted)
bucketLoop:
	for _, bucket := range timeOfDayOrder {
		for i, d := range byBucket[bucket] {
			if i >= cfg.DealsPerBucket {
				break
			}
			if state.count() >= cfg.CurationBucketTarget {
				break bucketLoop
			}
			state.add(d)
		}
	}

	// Step 4: up to DealsPerAirline cheapest deals per airline, airlines
	// visited in alphabetical order for determinism, until the airline
	// target is hit.
	byAirline := groupByAirline(allSorted)
	airlines := make([]string, 0, len(byAirline))
	for a := range byAirline {
		airlines = append(airlines, a)
	}
	sort.Strings(airlines)
airlineLoop:
	for _, airline := range airlines {
		for i, d := range byAirline[airline] {
			if i >= cfg.DealsPerAirline {
				break
			}
			if state.count() >= cfg.CurationAirlineTarget {
				break airlineLoop
			}
			state.add(d)
		}
	}

	// Step 5: walk the full ascending list once more, adding the first
	// deal seen in each previously-unseen $10 price band, until the band
	// target is hit.
	bandsSeen := make(map[float64]bool)
	for _, d := range allSorted {
		if state.count() >= cfg.CurationBandTarget {
			break
		}
		band := priceBand(d.PriceUSD, cfg.PriceBandWidth)
		if bandsSeen[band] {
			continue
		}
		bandsSeen[band] = true
		state.add(d)
	}

	final := sortDealsByPrice(state.selected)
	if len(final) > cfg.CurationMaxOutput {
		final = final[:cfg.CurationMaxOutput]
	}
	return final
}
