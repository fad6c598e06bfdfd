package deals

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/pkg/logger"
)

// BudgetedCaller wraps a FlightPriceSource with a shared, fetch-and-
// increment call counter so that many concurrent strategy tasks can
// share a single per-search budget without a mutex around the source
// itself. Once the counter passes max, every further call is a no-op —
// this gives a hard ceiling of exactly max calls for the whole search,
// never max+1.
type BudgetedCaller struct {
	source FlightPriceSource
	max    int32
	used   int32
	log    *logger.Logger
}

// NewBudgetedCaller wraps source with a budget of max calls.
func NewBudgetedCaller(source FlightPriceSource, max int, log *logger.Logger) *BudgetedCaller {
	return &BudgetedCaller{source: source, max: int32(max), log: log}
}

// Used returns how many calls have been issued (including calls that
// are in flight but haven't returned yet).
func (b *BudgetedCaller) Used() int {
	n := atomic.LoadInt32(&b.used)
	if n > b.max {
		// Attempts denied past the ceiling bump the counter but never
		// reach the source.
		n = b.max
	}
	return int(n)
}

// Call performs a budgeted provider lookup. reason is a short label used
// only for logging (e.g. "baseline", "nearby-airport"). A skipped or
// failed call returns an empty slice rather than an error: the caller's
// strategies are heuristics, and a denied or failed lookup simply yields
// no deal from that branch.
func (b *BudgetedCaller) Call(ctx context.Context, origin, destination string, departure time.Time, ret *time.Time, cabin CabinClass, reason string) []Itinerary {
	if ctx.Err() != nil {
		return nil
	}

	n := atomic.AddInt32(&b.used, 1)
	if n > b.max {
		if b.log != nil {
			b.log.Debug("call budget exhausted, skipping provider call", "reason", reason, "origin", origin, "destination", destination)
		}
		return nil
	}

	start := time.Now()
	itins, err := b.source.Search(ctx, origin, destination, departure, ret, cabin)
	if err != nil {
		if b.log != nil {
			b.log.Warn("provider call failed", "reason", reason, "origin", origin, "destination", destination, "error", err.Error())
		}
		return nil
	}
	if b.log != nil {
		b.log.Debug("provider call completed", "reason", reason, "origin", origin, "destination", destination, "results", len(itins), "elapsed_ms", time.Since(start).Milliseconds())
	}
	return itins
}
