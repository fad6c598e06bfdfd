package deals

import (
	"fmt"
	"sort"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/pkg/macros"
)

// AnalyserResult groups the zero-cost deals the analyser finds by the
// heuristic that produced them. Each category is sorted ascending by
// price.
type AnalyserResult struct {
	RedEye        []Deal
	EarlyBird     []Deal
	Layover       []Deal
	BudgetCarrier []Deal
	Connecting    []Deal
}

// All flattens every category into a single slice, in category order.
func (r AnalyserResult) All() []Deal {
	out := make([]Deal, 0, len(r.RedEye)+len(r.EarlyBird)+len(r.Layover)+len(r.BudgetCarrier)+len(r.Connecting))
	out = append(out, r.RedEye...)
	out = append(out, r.EarlyBird...)
	out = append(out, r.Layover...)
	out = append(out, r.BudgetCarrier...)
	out = append(out, r.Connecting...)
	return out
}

func dedupItineraries(itins []Itinerary) []Itinerary {
	seen := make(map[string]bool, len(itins))
	out := make([]Itinerary, 0, len(itins))
	for _, it := range itins {
		if len(it.Legs) == 0 {
			continue
		}
		l := it.Legs[0]
		key := fmt.Sprintf("%s|%s|%s", l.Airline, l.FlightNumber, l.DepartAt.Format(time.RFC3339))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

// avgOfTopFiveByPrice returns the mean price of the 5 most expensive
// itineraries, used as a contrast ceiling for red-eye/early-bird savings
// explanations.
func avgOfTopFiveByPrice(itins []Itinerary) float64 {
	if len(itins) == 0 {
		return 0
	}
	sorted := append([]Itinerary(nil), itins...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PriceUSD > sorted[j].PriceUSD })
	n := 5
	if len(sorted) < n {
		n = len(sorted)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += sorted[i].PriceUSD
	}
	return sum / float64(n)
}

func totalLayoverMinutes(l Leg) int {
	total := 0
	for _, lo := range l.Layovers {
		total += lo.DurationMin
	}
	return total
}

// sortDealsByPrice returns deals sorted ascending by price. It uses a
// stable sort so that a canonical tie-break order established upstream
// (see orchestrator's deterministic ordering pass) survives repeated
// sorting throughout curation.
func sortDealsByPrice(deals []Deal) []Deal {
	sorted := append([]Deal(nil), deals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PriceUSD < sorted[j].PriceUSD })
	return sorted
}

// analyse performs a single O(n) pass over baseline (after dedup),
// surfacing red-eye, early-bird, layover, budget-carrier, and connecting
// deals without spending any additional provider calls.
func analyse(baseline []Itinerary, cfg Config) AnalyserResult {
	deduped := dedupItineraries(baseline)
	avgPrice := avgOfTopFiveByPrice(deduped)
	direct := cheapestDirect(deduped)

	var result AnalyserResult
	for _, it := range deduped {
		if len(it.Legs) == 0 {
			continue
		}
		first := it.Legs[0]
		hour := first.DepartAt.Hour()

		if hour >= 22 || hour <= 5 {
			explanation := "red-eye departure"
			if avgPrice-it.PriceUSD > 5 {
				explanation = fmt.Sprintf("red-eye departure saves $%.2f against the average fare", avgPrice-it.PriceUSD)
			}
			result.RedEye = append(result.RedEye, Deal{
				PriceUSD: it.PriceUSD, Strategy: StrategyStandard, RiskScore: 5,
				Explanation: explanation, Itineraries: []Itinerary{it},
			})
		}

		if hour >= 6 && hour <= 8 {
			result.EarlyBird = append(result.EarlyBird, Deal{
				PriceUSD: it.PriceUSD, Strategy: StrategyStandard, RiskScore: 5,
				Explanation: "early-morning departure", Itineraries: []Itinerary{it},
			})
		}

		if it.hasConnection() {
			layoverMin := totalLayoverMinutes(first)
			worthIt := direct-it.PriceUSD > 30 && layoverMin < 240
			airport := ""
			if len(first.Layovers) > 0 {
				airport = first.Layovers[0].Airport
			}
			explanation := fmt.Sprintf("connects via %s", airport)
			if worthIt {
				explanation = fmt.Sprintf("short connection via %s saves $%.2f over the cheapest direct fare", airport, direct-it.PriceUSD)
			}
			result.Layover = append(result.Layover, Deal{
				PriceUSD: it.PriceUSD, Strategy: StrategyStandard, RiskScore: 10,
				Explanation: explanation,
				Itineraries: []Itinerary{it},
			})
		}

		for _, leg := range it.Legs {
			if macros.IsBudgetCarrier(leg.Airline) && !cfg.excludesAirline(leg.Airline) {
				result.BudgetCarrier = append(result.BudgetCarrier, Deal{
					PriceUSD: it.PriceUSD, Strategy: StrategyStandard, RiskScore: 15,
					Explanation: fmt.Sprintf("operated by %s — check baggage and seat-selection fees before booking", leg.Airline),
					Itineraries: []Itinerary{it},
				})
				break
			}
		}

		if it.hasConnection() && direct-it.PriceUSD > 20 {
			result.Connecting = append(result.Connecting, Deal{
				PriceUSD: it.PriceUSD, Strategy: StrategyStandard, RiskScore: 10,
				Explanation: fmt.Sprintf("connecting itinerary saves $%.2f over the cheapest direct fare", direct-it.PriceUSD),
				Itineraries: []Itinerary{it},
			})
		}
	}

	result.RedEye = sortDealsByPrice(result.RedEye)
	result.EarlyBird = sortDealsByPrice(result.EarlyBird)
	result.Layover = sortDealsByPrice(result.Layover)
	result.BudgetCarrier = sortDealsByPrice(result.BudgetCarrier)
	result.Connecting = sortDealsByPrice(result.Connecting)
	return result
}
