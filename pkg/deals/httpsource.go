package deals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/pkg/logger"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// HTTPSource is the production FlightPriceSource: it calls a single
// upstream price-search endpoint over HTTP. The spec's no-retry
// invariant is enforced by setting RetryMax to 0 on the retryablehttp
// client — we still use the library for its request construction and
// structured-logging hooks, just without its retry behavior.
type HTTPSource struct {
	client      *retryablehttp.Client
	endpoint    string
	limiter     *rate.Limiter
	log         *logger.Logger
}

// HTTPSourceConfig configures HTTPSource.
type HTTPSourceConfig struct {
	Endpoint          string
	Timeout           time.Duration
	RateLimitPerSec   float64
	RateLimitBurst    int
}

// NewHTTPSource builds an HTTPSource against cfg.
func NewHTTPSource(cfg HTTPSourceConfig, log *logger.Logger) *HTTPSource {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	rl := rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	if cfg.RateLimitPerSec <= 0 {
		rl = rate.NewLimiter(rate.Inf, 1)
	}

	return &HTTPSource{
		client:   client,
		endpoint: cfg.Endpoint,
		limiter:  rl,
		log:      log,
	}
}

type providerSearchRequest struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Departure   string  `json:"departure"`
	Return      *string `json:"return,omitempty"`
	Cabin       string  `json:"cabin"`
}

type providerLayover struct {
	Airport     string `json:"airport"`
	DurationMin int    `json:"duration_min"`
}

type providerLeg struct {
	Origin       string            `json:"origin"`
	Destination  string            `json:"destination"`
	DepartAt     time.Time         `json:"depart_at"`
	ArriveAt     time.Time         `json:"arrive_at"`
	Airline      string            `json:"airline"`
	FlightNumber string            `json:"flight_number"`
	DurationMin  int               `json:"duration_min"`
	Layovers     []providerLayover `json:"layovers"`
}

type providerItinerary struct {
	Legs         []providerLeg `json:"legs"`
	PriceUSD     float64       `json:"price_usd"`
	BookingToken string        `json:"booking_token"`
}

type providerSearchResponse struct {
	Itineraries []providerItinerary `json:"itineraries"`
}

// Search implements FlightPriceSource by POSTing a search request to the
// configured endpoint and decoding the JSON itinerary list.
func (h *HTTPSource) Search(ctx context.Context, origin, destination string, departure time.Time, ret *time.Time, cabin CabinClass) ([]Itinerary, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := providerSearchRequest{
		Origin:      origin,
		Destination: destination,
		Departure:   departure.Format(time.RFC3339),
		Cabin:       string(cabin),
	}
	if ret != nil {
		s := ret.Format(time.RFC3339)
		reqBody.Return = &s
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal provider request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed providerSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	out := make([]Itinerary, 0, len(parsed.Itineraries))
	for _, pi := range parsed.Itineraries {
		it := Itinerary{PriceUSD: pi.PriceUSD, BookingToken: pi.BookingToken}
		for _, pl := range pi.Legs {
			leg := Leg{
				Origin:       pl.Origin,
				Destination:  pl.Destination,
				DepartAt:     pl.DepartAt,
				ArriveAt:     pl.ArriveAt,
				Airline:      pl.Airline,
				FlightNumber: pl.FlightNumber,
				DurationMin:  pl.DurationMin,
			}
			for _, pv := range pl.Layovers {
				leg.Layovers = append(leg.Layovers, Layover{Airport: pv.Airport, DurationMin: pv.DurationMin})
			}
			it.Legs = append(it.Legs, leg)
		}
		out = append(out, it)
	}
	return out, nil
}
