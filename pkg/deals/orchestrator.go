package deals

import (
	"context"
	"sort"
	"sync"

	"github.com/RyanRana/reallycheapflightfinderbro/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Orchestrator is the entry point into the deal-search core: Search
// issues a baseline lookup, fans out the heuristic strategies under a
// shared call budget, runs the zero-cost analysis pass, and curates the
// combined results.
type Orchestrator struct {
	source FlightPriceSource
	cfg    Config
	log    *logger.Logger
}

// NewOrchestrator builds an Orchestrator around source.
func NewOrchestrator(source FlightPriceSource, cfg Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{source: source, cfg: cfg, log: log}
}

// Search runs one deal search for q and returns the curated result.
func (o *Orchestrator) Search(ctx context.Context, q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}
	if o.cfg.MaxCallsPerSearch < 1 {
		return Result{}, ErrBudgetZero
	}

	traceID := uuid.NewString()
	log := o.log
	if log != nil {
		log = log.WithField("trace_id", traceID).WithField("origin", q.Origin).WithField("destination", q.Destination)
	}

	caller := NewBudgetedCaller(o.source, o.cfg.MaxCallsPerSearch, log)

	baseline := caller.Call(ctx, q.Origin, q.Destination, q.Departure, q.Return, q.Cabin, "baseline")
	if len(baseline) == 0 {
		if log != nil {
			log.Info("baseline search returned no itineraries")
		}
		return Result{Deals: []Deal{}}, nil
	}
	// cheapestDirect is the cheapest direct fare, falling back to the
	// cheapest itinerary overall when the baseline has no direct option;
	// either way it doesn't depend on the order the provider returned
	// results in. A connecting itinerary may still be cheaper than it.
	basePrice := cheapestDirect(baseline)

	var (
		mu       sync.Mutex
		allDeals []Deal
	)
	addDeals := func(deals []Deal) {
		if len(deals) == 0 {
			return
		}
		mu.Lock()
		allDeals = append(allDeals, deals...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	dispatch := func(name string, fn func(context.Context) []Deal) {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if log != nil {
						log.Warn("strategy task recovered from panic", "strategy", name, "panic", r)
					}
				}
			}()
			addDeals(fn(gctx))
			return nil
		})
	}

	if basePrice >= o.cfg.NearbyAirportMinPrice {
		dispatch("nearby-airport", func(ctx context.Context) []Deal {
			return nearbyAirportStrategy(ctx, q, basePrice, caller, o.cfg)
		})
	}
	if basePrice >= o.cfg.SplitTicketMinPrice {
		dispatch("split-ticket", func(ctx context.Context) []Deal {
			return splitTicketStrategy(ctx, q, basePrice, caller, o.cfg)
		})
	}
	if shouldCheckPositioning(basePrice, o.cfg) {
		dispatch("positioning-flight", func(ctx context.Context) []Deal {
			return positioningFlightStrategy(ctx, q, basePrice, caller, o.cfg)
		})
	}
	if shouldCheckHiddenCity(basePrice, o.cfg) {
		dispatch("hidden-city", func(ctx context.Context) []Deal {
			return hiddenCityStrategy(ctx, q, basePrice, caller, o.cfg)
		})
	}
	// Zero-cost local analysis: the Data Analyser plus the two
	// zero-call C5 strategies, all run over the baseline itinerary list
	// without spending any provider calls.
	dispatch("local-analysis", func(ctx context.Context) []Deal {
		result := analyse(baseline, o.cfg)
		out := result.All()
		out = append(out, connectingFlightExtractor(baseline, basePrice, o.cfg)...)
		out = append(out, budgetAirlineFilter(baseline, o.cfg)...)
		return out
	})

	_ = g.Wait()

	// Strategy tasks complete in whatever order the scheduler happens to
	// run them; canonicalize the order here so curation (and therefore
	// the final output) doesn't depend on goroutine timing.
	sort.Slice(allDeals, func(i, j int) bool {
		if allDeals[i].PriceUSD != allDeals[j].PriceUSD {
			return allDeals[i].PriceUSD < allDeals[j].PriceUSD
		}
		return allDeals[i].dedupKey() < allDeals[j].dedupKey()
	})

	cheapestBaseline := baseline[0]
	for _, it := range baseline[1:] {
		if it.PriceUSD < cheapestBaseline.PriceUSD {
			cheapestBaseline = it
		}
	}
	standardDeal := Deal{
		PriceUSD:    cheapestBaseline.PriceUSD,
		Strategy:    StrategyStandard,
		RiskScore:   0,
		Explanation: "cheapest itinerary returned by the provider",
		Itineraries: []Itinerary{cheapestBaseline},
	}
	allDeals = append(allDeals, standardDeal)

	for i := range allDeals {
		allDeals[i].BookingLink = buildBookingLink(allDeals[i], q)
	}

	curated := Curate(allDeals, o.cfg)
	if log != nil {
		log.Info("search completed", "calls_used", caller.Used(), "candidates", len(allDeals), "curated", len(curated))
	}
	return Result{Deals: curated}, nil
}
