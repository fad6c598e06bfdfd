package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port            string
	HTTPBindAddr    string
	APIEnabled      bool
	Environment     string
	LoggingConfig   LoggingConfig
	RedisConfig     RedisConfig
	CacheConfig     CacheConfig
	ProviderConfig  ProviderConfig
	DealConfig      DealSearchConfig
	SchedulerConfig SchedulerConfig
	NTFYConfig      NTFYConfig
	AdminAuthConfig AdminAuthConfig
	MCPConfig       MCPConfig
	SchedulerEnabled bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// RedisConfig holds Redis connection configuration, used both for
// response caching and scheduler leader election.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig holds deal-search response cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// ProviderConfig holds the upstream flight-price provider's HTTP
// transport configuration.
type ProviderConfig struct {
	Endpoint        string
	Timeout         time.Duration
	RateLimitPerSec float64
	RateLimitBurst  int
	UseMock         bool
}

// DealSearchConfig holds deal-search tunables layered on top of the
// package defaults (pkg/deals.DefaultConfig); zero values mean "use
// the package default".
type DealSearchConfig struct {
	MaxCallsPerSearch int
	ExcludedAirlines  []string // airline names excluded from budget-airline-filter results
}

// SchedulerConfig holds watchlist-sweep scheduling configuration
type SchedulerConfig struct {
	CronSchedule       string
	LockKey            string
	LockTTL            time.Duration
	LockRenew          time.Duration
	WatchedRoutes      []WatchedRoute
	HotDealDiscountPct float64 // fractional drop vs. the previous sweep's best price that triggers a "hot deal" alert
}

// WatchedRoute is one origin/destination pair swept on a schedule
type WatchedRoute struct {
	Origin      string
	Destination string
}

// NTFYConfig holds NTFY push notification configuration
type NTFYConfig struct {
	ServerURL      string
	Topic          string
	Username       string
	Password       string
	Enabled        bool
	ErrorThreshold int
	ErrorWindow    time.Duration
}

// AdminAuthConfig holds admin authentication configuration
type AdminAuthConfig struct {
	Enabled  bool
	Username string
	Password string
	Token    string // Alternative: Bearer token auth
}

// MCPConfig holds the MCP tool server's configuration
type MCPConfig struct {
	Enabled bool
	Port    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	port := getEnv("PORT", "8080")
	httpBindAddr := getEnv("HTTP_BIND_ADDR", "")
	environment := getEnv("ENVIRONMENT", "development")
	apiEnabled, _ := strconv.ParseBool(getEnv("API_ENABLED", "true"))
	schedulerEnabled, _ := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))

	loggingConfig := LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisConfig := RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		cacheTTL = 5 * time.Minute
	}
	cacheConfig := CacheConfig{TTL: cacheTTL}

	providerTimeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "10s"))
	if err != nil {
		providerTimeout = 10 * time.Second
	}
	rateLimitPerSec, _ := strconv.ParseFloat(getEnv("PROVIDER_RATE_LIMIT_PER_SEC", "5"), 64)
	rateLimitBurst, _ := strconv.Atoi(getEnv("PROVIDER_RATE_LIMIT_BURST", "10"))
	useMock, _ := strconv.ParseBool(getEnv("PROVIDER_USE_MOCK", "false"))
	providerConfig := ProviderConfig{
		Endpoint:        getEnv("PROVIDER_ENDPOINT", ""),
		Timeout:         providerTimeout,
		RateLimitPerSec: rateLimitPerSec,
		RateLimitBurst:  rateLimitBurst,
		UseMock:         useMock,
	}

	maxCalls, _ := strconv.Atoi(getEnv("DEAL_MAX_CALLS_PER_SEARCH", "0"))
	excludedAirlinesStr := getEnv("EXCLUDED_AIRLINES", "")
	var excludedAirlines []string
	if excludedAirlinesStr != "" {
		for _, name := range strings.Split(excludedAirlinesStr, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				excludedAirlines = append(excludedAirlines, name)
			}
		}
	}
	dealConfig := DealSearchConfig{
		MaxCallsPerSearch: maxCalls,
		ExcludedAirlines:  excludedAirlines,
	}

	schedulerLockTTL, _ := time.ParseDuration(getEnv("SCHEDULER_LOCK_TTL", "30s"))
	schedulerLockRenew, _ := time.ParseDuration(getEnv("SCHEDULER_LOCK_RENEW", "10s"))
	hotDealDiscountPct, _ := strconv.ParseFloat(getEnv("SCHEDULER_HOT_DEAL_DISCOUNT_PCT", "0.40"), 64)
	schedulerConfig := SchedulerConfig{
		CronSchedule:       getEnv("SCHEDULER_CRON", "0 */4 * * *"),
		LockKey:            getEnv("SCHEDULER_LOCK_KEY", "scheduler:leader"),
		LockTTL:            schedulerLockTTL,
		LockRenew:          schedulerLockRenew,
		WatchedRoutes:      parseWatchedRoutes(getEnv("SCHEDULER_WATCHED_ROUTES", "")),
		HotDealDiscountPct: hotDealDiscountPct,
	}

	// NTFY notification config
	ntfyEnabled, _ := strconv.ParseBool(getEnv("NTFY_ENABLED", "false"))
	ntfyErrorThreshold, _ := strconv.Atoi(getEnv("NTFY_ERROR_THRESHOLD", "10"))
	ntfyErrorWindow, _ := time.ParseDuration(getEnv("NTFY_ERROR_WINDOW", "5m"))

	ntfyConfig := NTFYConfig{
		ServerURL:      getEnv("NTFY_SERVER_URL", "https://ntfy.sh"),
		Topic:          getEnv("NTFY_TOPIC", ""),
		Username:       getEnv("NTFY_USERNAME", ""),
		Password:       getEnv("NTFY_PASSWORD", ""),
		Enabled:        ntfyEnabled,
		ErrorThreshold: ntfyErrorThreshold,
		ErrorWindow:    ntfyErrorWindow,
	}

	// Admin authentication config
	adminAuthEnabled, _ := strconv.ParseBool(getEnv("ADMIN_AUTH_ENABLED", "false"))
	adminAuthConfig := AdminAuthConfig{
		Enabled:  adminAuthEnabled,
		Username: getEnv("ADMIN_AUTH_USERNAME", ""),
		Password: getEnv("ADMIN_AUTH_PASSWORD", ""),
		Token:    getEnv("ADMIN_AUTH_TOKEN", ""),
	}

	mcpEnabled, _ := strconv.ParseBool(getEnv("MCP_ENABLED", "true"))
	mcpConfig := MCPConfig{
		Enabled: mcpEnabled,
		Port:    getEnv("MCP_PORT", "8081"),
	}

	return &Config{
		Port:             port,
		HTTPBindAddr:     httpBindAddr,
		APIEnabled:       apiEnabled,
		Environment:      environment,
		LoggingConfig:    loggingConfig,
		RedisConfig:      redisConfig,
		CacheConfig:      cacheConfig,
		ProviderConfig:   providerConfig,
		DealConfig:       dealConfig,
		SchedulerConfig:  schedulerConfig,
		NTFYConfig:       ntfyConfig,
		AdminAuthConfig:  adminAuthConfig,
		MCPConfig:        mcpConfig,
		SchedulerEnabled: schedulerEnabled,
	}, nil
}

// parseWatchedRoutes parses a comma-separated "ORIGIN-DEST,ORIGIN-DEST"
// string into WatchedRoute entries, skipping malformed pairs.
func parseWatchedRoutes(s string) []WatchedRoute {
	if s == "" {
		return nil
	}
	var routes []WatchedRoute
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "-", 2)
		if len(parts) != 2 {
			continue
		}
		origin := strings.ToUpper(strings.TrimSpace(parts[0]))
		destination := strings.ToUpper(strings.TrimSpace(parts[1]))
		if origin == "" || destination == "" {
			continue
		}
		routes = append(routes, WatchedRoute{Origin: origin, Destination: destination})
	}
	return routes
}

// TestConfig returns a default test configuration
func TestConfig() *Config {
	return &Config{
		Environment: "test",
		RedisConfig: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		CacheConfig:      CacheConfig{TTL: 5 * time.Minute},
		ProviderConfig:   ProviderConfig{UseMock: true, Timeout: 10 * time.Second},
		SchedulerEnabled: false,
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if len(strings.TrimSpace(value)) == 0 {
		return defaultValue
	}
	return strings.TrimSpace(value) // Trim whitespace before returning
}
