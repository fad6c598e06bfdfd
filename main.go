package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RyanRana/reallycheapflightfinderbro/api"
	"github.com/RyanRana/reallycheapflightfinderbro/config"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/cache"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/deals"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/health"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/logger"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/notify"
	"github.com/RyanRana/reallycheapflightfinderbro/pkg/worker_registry"
	"github.com/RyanRana/reallycheapflightfinderbro/worker"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Handle health check flag before loading full config/logger
	for _, arg := range os.Args[1:] {
		if arg == "-health-check" {
			resp, err := http.Get("http://localhost:8080/health/ready")
			if err != nil || resp.StatusCode != http.StatusOK {
				os.Exit(1)
			}
			os.Exit(0)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err) // Can't use logger yet
	}

	logger.Init(logger.Config{
		Level:  cfg.LoggingConfig.Level,
		Format: cfg.LoggingConfig.Format,
	})

	logger.Info("Starting flight deal discovery server",
		"version", "1.0.0",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"api_enabled", cfg.APIEnabled,
		"scheduler_enabled", cfg.SchedulerEnabled,
		"watched_routes", len(cfg.SchedulerConfig.WatchedRoutes))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Host + ":" + cfg.RedisConfig.Port,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if _, err := redisClient.Ping(pingCtx).Result(); err != nil {
		logger.Warn("Redis not reachable at startup, continuing degraded", "error", err)
	}
	pingCancel()

	cacheManager := cache.NewCacheManager(cache.NewRedisCache(redisClient, "deals"))

	dealsCfg := deals.DefaultConfig()
	if cfg.DealConfig.MaxCallsPerSearch > 0 {
		dealsCfg.MaxCallsPerSearch = cfg.DealConfig.MaxCallsPerSearch
	}
	dealsCfg.ExcludedAirlines = cfg.DealConfig.ExcludedAirlines
	dealsCfg.CacheTTL = cfg.CacheConfig.TTL

	providerLog := logger.WithField("component", "provider")
	var source deals.FlightPriceSource
	if cfg.ProviderConfig.UseMock {
		logger.Warn("using mock flight-price source", "reason", "PROVIDER_USE_MOCK=true")
		source = deals.NewMockSource(nil)
	} else {
		httpSource := deals.NewHTTPSource(deals.HTTPSourceConfig{
			Endpoint:        cfg.ProviderConfig.Endpoint,
			Timeout:         cfg.ProviderConfig.Timeout,
			RateLimitPerSec: cfg.ProviderConfig.RateLimitPerSec,
			RateLimitBurst:  cfg.ProviderConfig.RateLimitBurst,
		}, providerLog)
		source = deals.NewCachedSource(httpSource, cacheManager, dealsCfg.CacheTTL, providerLog)
	}

	orchestratorLog := logger.WithField("component", "orchestrator")
	orchestrator := deals.NewOrchestrator(source, dealsCfg, orchestratorLog)

	healthChecker := health.NewHealthChecker("1.0.0")
	healthChecker.AddChecker(&health.RedisChecker{Client: redisClient, Name: "redis"})
	healthChecker.AddChecker(&health.ProviderChecker{
		Source:     source,
		ProbeRoute: [2]string{"JFK", "LAX"},
		Name:       "provider",
	})

	ntfyClient := notify.NewNTFYClient(notify.NTFYConfig{
		ServerURL:      cfg.NTFYConfig.ServerURL,
		Topic:          cfg.NTFYConfig.Topic,
		Username:       cfg.NTFYConfig.Username,
		Password:       cfg.NTFYConfig.Password,
		Enabled:        cfg.NTFYConfig.Enabled,
		ErrorThreshold: cfg.NTFYConfig.ErrorThreshold,
		ErrorWindow:    cfg.NTFYConfig.ErrorWindow,
	})

	var srv *http.Server
	if cfg.APIEnabled {
		router := gin.New()
		api.RegisterRoutes(router, orchestrator, healthChecker, cacheManager, cfg)

		addr := ":" + cfg.Port
		if cfg.HTTPBindAddr != "" {
			addr = cfg.HTTPBindAddr + ":" + cfg.Port
		}

		srv = &http.Server{
			Addr:    addr,
			Handler: router,
		}

		go func() {
			logger.Info("HTTP server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal(err, "Failed to start HTTP server")
			}
		}()
	} else {
		logger.Info("API server disabled", "api_enabled", cfg.APIEnabled)
	}

	var scheduler *worker.Scheduler
	var elector *worker.LeaderElector
	if cfg.SchedulerEnabled {
		schedulerLog := logger.WithField("component", "scheduler")
		scheduler = worker.NewScheduler(orchestrator, ntfyClient, cfg.SchedulerConfig, schedulerLog)

		registry := worker_registry.New(redisClient, "scheduler")
		hostname, _ := os.Hostname()
		scheduler.SetRegistry(registry, fmt.Sprintf("%s-%d", hostname, os.Getpid()))

		elector = worker.NewLeaderElector(
			redisClient,
			cfg.SchedulerConfig.LockKey,
			cfg.SchedulerConfig.LockTTL,
			cfg.SchedulerConfig.LockRenew,
			func() {
				if err := scheduler.Start(cfg.SchedulerConfig.CronSchedule); err != nil {
					logger.Error(err, "Failed to start watchlist scheduler")
				}
			},
			func() {
				scheduler.Stop()
			},
		)
		elector.Start()
		defer elector.Stop()
	} else {
		logger.Info("Watchlist scheduler disabled", "scheduler_enabled", cfg.SchedulerEnabled)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Fatal(err, "Server forced to shutdown")
		}
	}

	logger.Info("Process exited gracefully")
}
