package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/config"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/deals"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/logger"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/notify"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/worker_registry"
	"github.com/robfig/cron/v3"
)

// Scheduler periodically sweeps a fixed watchlist of routes through the
// deal orchestrator and notifies on finds. Only the leader instance
// should run it; callers gate Start behind a LeaderElector.
type Scheduler struct {
	orchestrator *deals.Orchestrator
	ntfy         *notify.NTFYClient
	routes       []config.WatchedRoute
	hotDiscount  float64
	cron         *cron.Cron
	entryID      cron.EntryID
	mutex        sync.Mutex
	log          *logger.Logger

	// lastPrice holds the best deal price from the most recent sweep of
	// each route, so a sweep can tell a merely-cheap fare from a fare that
	// just dropped sharply.
	lastPrice map[string]float64

	// registry, if set via SetRegistry, records a heartbeat for every
	// sweep so other instances (and /health-adjacent tooling) can see
	// which one last ran the watchlist.
	registry   *worker_registry.Registry
	instanceID string
	sweepsRun  int
}

// SetRegistry attaches a worker registry the scheduler publishes sweep
// heartbeats to, identified by instanceID. Safe to call with a nil
// registry to disable publishing.
func (s *Scheduler) SetRegistry(reg *worker_registry.Registry, instanceID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.registry = reg
	s.instanceID = instanceID
}

// NewScheduler creates a new scheduler over the given watchlist.
func NewScheduler(orchestrator *deals.Orchestrator, ntfy *notify.NTFYClient, cfg config.SchedulerConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		ntfy:         ntfy,
		routes:       cfg.WatchedRoutes,
		hotDiscount:  cfg.HotDealDiscountPct,
		cron:         cron.New(),
		lastPrice:    make(map[string]float64),
		log:          log,
	}
}

// Start registers the sweep job on cronExpr and starts the cron
// scheduler. It's a no-op (but not an error) if the watchlist is empty.
func (s *Scheduler) Start(cronExpr string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.routes) == 0 {
		if s.log != nil {
			s.log.Info("scheduler started with an empty watchlist, no sweeps will run")
		}
		s.cron.Start()
		return nil
	}

	entryID, err := s.cron.AddFunc(cronExpr, s.sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule watchlist sweep: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()
	if s.log != nil {
		s.log.Info("scheduler started", "routes", len(s.routes), "schedule", cronExpr)
	}
	return nil
}

// Stop stops the cron scheduler and waits for any in-flight sweep.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	if s.log != nil {
		s.log.Info("scheduler stopped")
	}
}

func (s *Scheduler) routeKey(origin, destination string) string {
	return origin + "-" + destination
}

// sweep runs one pass over the watchlist, searching each route a fixed
// number of days out and alerting on notable finds.
func (s *Scheduler) sweep() {
	start := time.Now()
	routes := s.routesSnapshot()

	dealsFound := 0
	errCount := 0

	for _, route := range routes {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		q := deals.Query{
			Origin:      route.Origin,
			Destination: route.Destination,
			Departure:   time.Now().Add(30 * 24 * time.Hour),
			Cabin:       deals.CabinEconomy,
			Adults:      1,
		}

		result, err := s.orchestrator.Search(ctx, q)
		cancel()
		if err != nil {
			errCount++
			if s.log != nil {
				s.log.Warn("watchlist sweep route failed", "origin", route.Origin, "destination", route.Destination, "error", err.Error())
			}
			if s.ntfy != nil {
				_ = s.ntfy.AlertWatchError(route.Origin, route.Destination, err)
			}
			continue
		}
		if len(result.Deals) == 0 {
			continue
		}

		dealsFound += len(result.Deals)
		s.notifyBestDeal(route, result.Deals)
	}

	if s.ntfy != nil {
		_ = s.ntfy.AlertSweepComplete(time.Since(start), len(routes), dealsFound, errCount)
	}
	if s.log != nil {
		s.log.Info("watchlist sweep completed", "routes", len(routes), "deals_found", dealsFound, "errors", errCount, "duration", time.Since(start).String())
	}
	s.publishHeartbeat(start)
}

// publishHeartbeat records that this instance just ran a sweep, if a
// registry was attached via SetRegistry.
func (s *Scheduler) publishHeartbeat(sweepStart time.Time) {
	s.mutex.Lock()
	reg := s.registry
	instanceID := s.instanceID
	s.sweepsRun++
	processed := s.sweepsRun
	s.mutex.Unlock()

	if reg == nil || instanceID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := reg.Publish(ctx, worker_registry.WorkerHeartbeat{
		ID:            instanceID,
		Status:        "active",
		CurrentJob:    "watchlist-sweep",
		ProcessedJobs: processed,
		StartedAt:     sweepStart,
		LastHeartbeat: time.Now(),
	}, 0)
	if err != nil && s.log != nil {
		s.log.Warn("failed to publish scheduler heartbeat", "error", err.Error())
	}
}

func (s *Scheduler) notifyBestDeal(route config.WatchedRoute, found []deals.Deal) {
	if s.ntfy == nil {
		return
	}
	best := found[0]
	for _, d := range found {
		if d.PriceUSD < best.PriceUSD {
			best = d
		}
	}

	key := s.routeKey(route.Origin, route.Destination)
	s.mutex.Lock()
	previous, seen := s.lastPrice[key]
	s.lastPrice[key] = best.PriceUSD
	s.mutex.Unlock()

	if seen && previous > 0 && best.PriceUSD <= previous*(1-s.hotDiscount) {
		_ = s.ntfy.AlertHotDeal(route.Origin, route.Destination, best.PriceUSD, previous, string(best.Strategy))
		return
	}
	_ = s.ntfy.AlertDealFound(route.Origin, route.Destination, best.PriceUSD, string(best.Strategy))
}

func (s *Scheduler) routesSnapshot() []config.WatchedRoute {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]config.WatchedRoute, len(s.routes))
	copy(out, s.routes)
	return out
}

// SweepNow triggers an out-of-band sweep, for admin-triggered runs.
func (s *Scheduler) SweepNow() {
	s.sweep()
}
