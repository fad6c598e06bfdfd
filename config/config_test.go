package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function which reads from environment variables.
func TestLoad(t *testing.T) {
	// Clear existing env vars that might interfere
	os.Clearenv()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "development", cfg.Environment)
		assert.True(t, cfg.APIEnabled)
		assert.True(t, cfg.SchedulerEnabled)
		assert.Equal(t, "redis", cfg.RedisConfig.Host)
		assert.Equal(t, "6379", cfg.RedisConfig.Port)
		assert.Equal(t, "", cfg.RedisConfig.Password)
		assert.Equal(t, 0, cfg.RedisConfig.DB)
		assert.Equal(t, 5*time.Minute, cfg.CacheConfig.TTL)
		assert.Equal(t, 10*time.Second, cfg.ProviderConfig.Timeout)
		assert.False(t, cfg.ProviderConfig.UseMock)
		assert.Equal(t, 0, cfg.DealConfig.MaxCallsPerSearch)
		assert.Equal(t, "0 */4 * * *", cfg.SchedulerConfig.CronSchedule)
		assert.Equal(t, "scheduler:leader", cfg.SchedulerConfig.LockKey)
		assert.Empty(t, cfg.SchedulerConfig.WatchedRoutes)
		assert.False(t, cfg.NTFYConfig.Enabled)
		assert.False(t, cfg.AdminAuthConfig.Enabled)
	})

	t.Run("environment variable override", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("REDIS_HOST", "cache.example.com")
		t.Setenv("PROVIDER_USE_MOCK", "true")
		t.Setenv("DEAL_MAX_CALLS_PER_SEARCH", "20")
		t.Setenv("SCHEDULER_ENABLED", "false")
		t.Setenv("SCHEDULER_WATCHED_ROUTES", "JFK-LAX, SFO-ORD")
		t.Setenv("EXCLUDED_AIRLINES", "Spirit, Frontier")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, "cache.example.com", cfg.RedisConfig.Host)
		assert.True(t, cfg.ProviderConfig.UseMock)
		assert.Equal(t, 20, cfg.DealConfig.MaxCallsPerSearch)
		assert.False(t, cfg.SchedulerEnabled)
		assert.Equal(t, []WatchedRoute{{Origin: "JFK", Destination: "LAX"}, {Origin: "SFO", Destination: "ORD"}}, cfg.SchedulerConfig.WatchedRoutes)
		assert.Equal(t, []string{"Spirit", "Frontier"}, cfg.DealConfig.ExcludedAirlines)
	})
}

// TestTestConfig tests the TestConfig helper function
func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "localhost", cfg.RedisConfig.Host)
	assert.Equal(t, "6379", cfg.RedisConfig.Port)
	assert.True(t, cfg.ProviderConfig.UseMock)
	assert.False(t, cfg.SchedulerEnabled)
}

func TestParseWatchedRoutes(t *testing.T) {
	assert.Nil(t, parseWatchedRoutes(""))
	assert.Equal(t, []WatchedRoute{{Origin: "JFK", Destination: "LAX"}}, parseWatchedRoutes("jfk-lax"))
	assert.Equal(t, []WatchedRoute{{Origin: "JFK", Destination: "LAX"}, {Origin: "SFO", Destination: "ORD"}}, parseWatchedRoutes("JFK-LAX,SFO-ORD"))
	assert.Nil(t, parseWatchedRoutes("malformed"))
}
