package health

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/pkg/deals"
	"github.com/redis/go-redis/v9"
)

// Status represents the health status of a component
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Check represents a single health check
type Check struct {
	Name      string            `json:"name"`
	Status    Status            `json:"status"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Duration  time.Duration     `json:"duration"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthReport represents the overall health of the application
type HealthReport struct {
	Status    Status           `json:"status"`
	Version   string           `json:"version"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    time.Duration    `json:"uptime"`
}

// Checker defines the interface for health checks
type Checker interface {
	Check(ctx context.Context) Check
}

// RedisChecker checks Redis connectivity
type RedisChecker struct {
	Client *redis.Client
	Name   string
}

func (c *RedisChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:      c.Name,
		Timestamp: start,
		Details:   make(map[string]string),
	}

	pong, err := c.Client.Ping(ctx).Result()
	duration := time.Since(start)
	check.Duration = duration

	if err != nil {
		check.Status = StatusDown
		check.Message = fmt.Sprintf("Redis connection failed: %v", err)
		check.Details["error"] = err.Error()
	} else {
		check.Status = StatusUp
		check.Message = "Redis connection successful"
		check.Details["response_time"] = duration.String()
		check.Details["ping_response"] = pong
	}

	return check
}

// ProviderChecker probes the upstream flight-price provider with a
// cheap, fixed-route search to confirm it's reachable and returning
// itineraries, without spending a real search's call budget.
type ProviderChecker struct {
	Source     deals.FlightPriceSource
	ProbeRoute [2]string // [origin, destination]
	Name       string
}

func (c *ProviderChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:      c.Name,
		Timestamp: start,
		Details:   make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	itins, err := c.Source.Search(ctx, c.ProbeRoute[0], c.ProbeRoute[1], time.Now().Add(30*24*time.Hour), nil, deals.CabinEconomy)
	duration := time.Since(start)
	check.Duration = duration

	if err != nil {
		check.Status = StatusDown
		check.Message = fmt.Sprintf("Provider probe failed: %v", err)
		check.Details["error"] = err.Error()
	} else {
		check.Status = StatusUp
		check.Message = "Provider reachable"
		check.Details["response_time"] = duration.String()
		check.Details["itineraries"] = fmt.Sprintf("%d", len(itins))
	}

	return check
}

// HealthChecker orchestrates multiple health checks
type HealthChecker struct {
	checkers  []Checker
	version   string
	startTime time.Time
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		checkers:  make([]Checker, 0),
		version:   version,
		startTime: time.Now(),
	}
}

// AddChecker adds a health checker
func (h *HealthChecker) AddChecker(checker Checker) {
	h.checkers = append(h.checkers, checker)
}

// CheckHealth performs all health checks
func (h *HealthChecker) CheckHealth(ctx context.Context) HealthReport {
	checks := make(map[string]Check)
	overallStatus := StatusUp

	for _, checker := range h.checkers {
		check := checker.Check(ctx)
		checks[check.Name] = check

		if check.Status == StatusDown {
			overallStatus = StatusDown
		}
	}

	return HealthReport{
		Status:    overallStatus,
		Version:   h.version,
		Timestamp: time.Now(),
		Checks:    checks,
		Uptime:    time.Since(h.startTime),
	}
}

// CheckReadiness performs readiness checks (subset of health checks) —
// only the checkers backing hard dependencies (cache, provider).
func (h *HealthChecker) CheckReadiness(ctx context.Context) HealthReport {
	readinessCheckers := make([]Checker, 0)
	for _, checker := range h.checkers {
		switch checker.(type) {
		case *RedisChecker, *ProviderChecker:
			readinessCheckers = append(readinessCheckers, checker)
		}
	}

	checks := make(map[string]Check)
	overallStatus := StatusUp

	for _, checker := range readinessCheckers {
		check := checker.Check(ctx)
		checks[check.Name] = check

		if check.Status == StatusDown {
			overallStatus = StatusDown
		}
	}

	return HealthReport{
		Status:    overallStatus,
		Version:   h.version,
		Timestamp: time.Now(),
		Checks:    checks,
		Uptime:    time.Since(h.startTime),
	}
}

// CheckLiveness performs liveness checks (basic application health)
func (h *HealthChecker) CheckLiveness(ctx context.Context) HealthReport {
	return HealthReport{
		Status:    StatusUp,
		Version:   h.version,
		Timestamp: time.Now(),
		Checks: map[string]Check{
			"application": {
				Name:      "application",
				Status:    StatusUp,
				Message:   "Application is running",
				Timestamp: time.Now(),
				Duration:  0,
			},
		},
		Uptime: time.Since(h.startTime),
	}
}
