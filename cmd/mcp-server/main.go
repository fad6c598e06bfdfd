package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/config"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/cache"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/deals"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"
)

const dateLayout = "2006-01-02"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: cfg.LoggingConfig.Level, Format: cfg.LoggingConfig.Format})

	orchestrator, err := buildOrchestrator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing deal orchestrator: %v\n", err)
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"flight-deal-mcp",
		"1.0.0",
		server.WithLogging(),
	)

	searchDealsTool := mcp.NewTool("search_deals",
		mcp.WithDescription("Search for flight deals on a route, surfacing hidden-city, split-ticket, positioning-flight, and nearby-airport workarounds alongside the standard cheapest fare"),
		mcp.WithString("origin", mcp.Description("Origin airport code (e.g., JFK)"), mcp.Required()),
		mcp.WithString("destination", mcp.Description("Destination airport code (e.g., LAX)"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Departure date (YYYY-MM-DD)"), mcp.Required()),
		mcp.WithString("return_date", mcp.Description("Return date (YYYY-MM-DD) for round trips")),
		mcp.WithNumber("adults", mcp.Description("Number of adult passengers"), mcp.Required()),
		mcp.WithString("cabin", mcp.Description("Cabin class: economy, premium, business, first (default economy)")),
	)

	s.AddTool(searchDealsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("Invalid arguments format"), nil
		}

		origin, _ := argsMap["origin"].(string)
		destination, _ := argsMap["destination"].(string)
		dateStr, _ := argsMap["date"].(string)
		returnDateStr, _ := argsMap["return_date"].(string)
		cabinStr, _ := argsMap["cabin"].(string)

		adultsVal, _ := argsMap["adults"].(float64)
		adults := int(adultsVal)

		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid date format: %v", err)), nil
		}

		var returnDate *time.Time
		if returnDateStr != "" {
			parsed, err := time.Parse(dateLayout, returnDateStr)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid return_date format: %v", err)), nil
			}
			returnDate = &parsed
		}

		cabin := deals.CabinClass(cabinStr)
		if cabin == "" {
			cabin = deals.CabinEconomy
		}

		q := deals.Query{
			Origin:      origin,
			Destination: destination,
			Departure:   date,
			Return:      returnDate,
			Cabin:       cabin,
			Adults:      adults,
		}

		result, err := orchestrator.Search(ctx, q)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error searching deals: %v", err)), nil
		}

		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error marshaling response: %v", err)), nil
		}

		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func buildOrchestrator(cfg *config.Config) (*deals.Orchestrator, error) {
	dealsCfg := deals.DefaultConfig()
	if cfg.DealConfig.MaxCallsPerSearch > 0 {
		dealsCfg.MaxCallsPerSearch = cfg.DealConfig.MaxCallsPerSearch
	}
	dealsCfg.ExcludedAirlines = cfg.DealConfig.ExcludedAirlines
	dealsCfg.CacheTTL = cfg.CacheConfig.TTL

	log := logger.WithField("component", "mcp-server")

	var source deals.FlightPriceSource
	if cfg.ProviderConfig.UseMock {
		source = deals.NewMockSource(nil)
	} else {
		httpSource := deals.NewHTTPSource(deals.HTTPSourceConfig{
			Endpoint:        cfg.ProviderConfig.Endpoint,
			Timeout:         cfg.ProviderConfig.Timeout,
			RateLimitPerSec: cfg.ProviderConfig.RateLimitPerSec,
			RateLimitBurst:  cfg.ProviderConfig.RateLimitBurst,
		}, log)

		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Host + ":" + cfg.RedisConfig.Port,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		cacheManager := cache.NewCacheManager(cache.NewRedisCache(redisClient, "deals_mcp"))
		source = deals.NewCachedSource(httpSource, cacheManager, dealsCfg.CacheTTL, log)
	}

	return deals.NewOrchestrator(source, dealsCfg, log), nil
}
