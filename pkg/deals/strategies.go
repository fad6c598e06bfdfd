package deals

import (
	"context"
	"fmt"

	"github.com/RyanRana/reallycheapflightfinderbro/pkg/macros"
	"golang.org/x/sync/errgroup"
)

// nearbyAirportStrategy checks alternate origin and destination airports
// concurrently, looking for a direct itinerary materially cheaper than
// the base price.
func nearbyAirportStrategy(ctx context.Context, q Query, basePrice float64, caller *BudgetedCaller, cfg Config) []Deal {
	if basePrice < cfg.NearbyAirportMinPrice {
		return nil
	}

	type candidate struct {
		origin, destination string
	}
	var candidates []candidate
	for _, alt := range nearbyAlternatives(q.Origin, basePrice) {
		candidates = append(candidates, candidate{alt, q.Destination})
	}
	for _, alt := range nearbyAlternatives(q.Destination, basePrice) {
		candidates = append(candidates, candidate{q.Origin, alt})
	}
	if len(candidates) == 0 {
		return nil
	}

	deals := make([][]Deal, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			itins := caller.Call(gctx, c.origin, c.destination, q.Departure, q.Return, q.Cabin, "nearby-airport")
			if len(itins) == 0 {
				return nil
			}
			best := itins[0]
			if !best.isDirect() || best.PriceUSD >= basePrice*cfg.NearbyAirportDiscount {
				return nil
			}
			deals[i] = []Deal{{
				PriceUSD:    best.PriceUSD,
				Strategy:    StrategyStandard,
				RiskScore:   8,
				Explanation: fmt.Sprintf("flying %s to %s instead of %s to %s saves $%.2f", c.origin, c.destination, q.Origin, q.Destination, basePrice-best.PriceUSD),
				Itineraries: []Itinerary{best},
			}}
			return nil
		})
	}
	_ = g.Wait()

	var out []Deal
	for _, d := range deals {
		out = append(out, d...)
	}
	return out
}

// splitTicketStrategy checks whether booking two separate itineraries
// through a smart hub beats the direct fare.
func splitTicketStrategy(ctx context.Context, q Query, basePrice float64, caller *BudgetedCaller, cfg Config) []Deal {
	if basePrice < cfg.SplitTicketMinPrice {
		return nil
	}

	hubs := smartHubs(q.Origin, q.Destination, basePrice)
	deals := make([][]Deal, len(hubs))
	g, gctx := errgroup.WithContext(ctx)
	for i, hub := range hubs {
		i, hub := i, hub
		g.Go(func() error {
			var leg1, leg2 []Itinerary
			inner, innerCtx := errgroup.WithContext(gctx)
			inner.Go(func() error {
				leg1 = caller.Call(innerCtx, q.Origin, hub, q.Departure, nil, q.Cabin, "split-ticket-leg1")
				return nil
			})
			inner.Go(func() error {
				leg2 = caller.Call(innerCtx, hub, q.Destination, q.Departure, nil, q.Cabin, "split-ticket-leg2")
				return nil
			})
			_ = inner.Wait()

			if len(leg1) == 0 || len(leg2) == 0 {
				return nil
			}
			total := leg1[0].PriceUSD + leg2[0].PriceUSD
			if total >= basePrice*cfg.SplitTicketDiscount {
				return nil
			}
			deals[i] = []Deal{{
				PriceUSD:    total,
				Strategy:    StrategyStandard,
				RiskScore:   40,
				Explanation: fmt.Sprintf("split-ticket via %s saves $%.2f over a direct booking", hub, basePrice-total),
				Itineraries: []Itinerary{leg1[0], leg2[0]},
			}}
			return nil
		})
	}
	_ = g.Wait()

	var out []Deal
	for _, d := range deals {
		out = append(out, d...)
	}
	return out
}

// positioningFlightStrategy checks whether flying to a nearby positioning
// city first, then on to the destination, beats a direct booking. A
// missed connection on the positioning leg strands the traveler, hence
// its RiskScore above split-ticket's (hidden-city's is higher still).
func positioningFlightStrategy(ctx context.Context, q Query, basePrice float64, caller *BudgetedCaller, cfg Config) []Deal {
	if !shouldCheckPositioning(basePrice, cfg) {
		return nil
	}

	candidates := []string{"FLL", "MIA"}
	var filtered []string
	for _, c := range candidates {
		if c != q.Origin && c != q.Destination {
			filtered = append(filtered, c)
		}
	}

	deals := make([][]Deal, len(filtered))
	g, gctx := errgroup.WithContext(ctx)
	for i, city := range filtered {
		i, city := i, city
		g.Go(func() error {
			var positioning, main []Itinerary
			inner, innerCtx := errgroup.WithContext(gctx)
			inner.Go(func() error {
				positioning = caller.Call(innerCtx, q.Origin, city, q.Departure, nil, q.Cabin, "positioning-leg")
				return nil
			})
			inner.Go(func() error {
				main = caller.Call(innerCtx, city, q.Destination, q.Departure, nil, q.Cabin, "positioning-main")
				return nil
			})
			_ = inner.Wait()

			if len(positioning) == 0 || len(main) == 0 {
				return nil
			}
			total := positioning[0].PriceUSD + main[0].PriceUSD
			if total >= basePrice*cfg.PositioningDiscount {
				return nil
			}
			deals[i] = []Deal{{
				PriceUSD:    total,
				Strategy:    StrategyStandard,
				RiskScore:   50,
				Explanation: fmt.Sprintf("positioning through %s saves $%.2f but requires two separate bookings", city, basePrice-total),
				Itineraries: []Itinerary{positioning[0], main[0]},
			}}
			return nil
		})
	}
	_ = g.Wait()

	var out []Deal
	for _, d := range deals {
		out = append(out, d...)
	}
	return out
}

// hiddenCityStrategy looks for itineraries to a "beyond" city that
// connect through the actual destination, letting the traveler disembark
// at the connection and skip the final leg. Flagged with the highest
// RiskScore of any strategy since it violates airline ticketing terms.
func hiddenCityStrategy(ctx context.Context, q Query, basePrice float64, caller *BudgetedCaller, cfg Config) []Deal {
	if !shouldCheckHiddenCity(basePrice, cfg) {
		return nil
	}

	beyond := smartBeyondCities(q.Origin, q.Destination)
	if len(beyond) > cfg.HiddenCityMaxBeyondCities {
		beyond = beyond[:cfg.HiddenCityMaxBeyondCities]
	}

	deals := make([][]Deal, len(beyond))
	g, gctx := errgroup.WithContext(ctx)
	for i, city := range beyond {
		i, city := i, city
		g.Go(func() error {
			itins := caller.Call(gctx, q.Origin, city, q.Departure, q.Return, q.Cabin, "hidden-city")
			for _, it := range itins {
				for _, leg := range it.Legs {
					for _, lo := range leg.Layovers {
						if lo.Airport != q.Destination {
							continue
						}
						deals[i] = []Deal{{
							PriceUSD:    it.PriceUSD,
							Strategy:    StrategyHiddenCity,
							RiskScore:   65,
							Explanation: fmt.Sprintf("booked through to %s, disembark at the %s connection", city, q.Destination),
							Itineraries: []Itinerary{it},
						}}
						return nil
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []Deal
	for _, d := range deals {
		out = append(out, d...)
	}
	return out
}

// cheapestDirect returns the lowest price among direct itineraries in
// itins, falling back to the overall cheapest price if none are direct.
func cheapestDirect(itins []Itinerary) float64 {
	best := -1.0
	bestAny := -1.0
	for _, it := range itins {
		if bestAny < 0 || it.PriceUSD < bestAny {
			bestAny = it.PriceUSD
		}
		if it.isDirect() && (best < 0 || it.PriceUSD < best) {
			best = it.PriceUSD
		}
	}
	if best >= 0 {
		return best
	}
	return bestAny
}

// connectingFlightExtractor is a zero-cost strategy: it finds connecting
// itineraries in an already-fetched itinerary set that undercut the
// cheapest direct fare by the configured margin.
func connectingFlightExtractor(itins []Itinerary, cheapestDirectPrice float64, cfg Config) []Deal {
	if cheapestDirectPrice <= 0 {
		return nil
	}
	var out []Deal
	for _, it := range itins {
		if !it.hasConnection() {
			continue
		}
		if it.PriceUSD >= cheapestDirectPrice*cfg.ConnectingMinSavingsPct {
			continue
		}
		out = append(out, Deal{
			PriceUSD:    it.PriceUSD,
			Strategy:    StrategyStandard,
			RiskScore:   10,
			Explanation: fmt.Sprintf("connecting itinerary saves $%.2f over the cheapest direct fare", cheapestDirectPrice-it.PriceUSD),
			Itineraries: []Itinerary{it},
		})
	}
	return out
}

// budgetAirlineFilter is a zero-cost strategy: it flags itineraries
// operated by a known budget carrier, which often carry deep discounts
// but also baggage/seat fees worth calling out.
func budgetAirlineFilter(itins []Itinerary, cfg Config) []Deal {
	var out []Deal
	for _, it := range itins {
		for _, leg := range it.Legs {
			if !macros.IsBudgetCarrier(leg.Airline) || cfg.excludesAirline(leg.Airline) {
				continue
			}
			out = append(out, Deal{
				PriceUSD:    it.PriceUSD,
				Strategy:    StrategyStandard,
				RiskScore:   15,
				Explanation: fmt.Sprintf("operated by %s — check baggage and seat-selection fees before booking", leg.Airline),
				Itineraries: []Itinerary{it},
			})
			break
		}
	}
	return out
}
