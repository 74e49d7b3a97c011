package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Exact path, "/prefix/" for prefix matching, or a pattern with "*" segments
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Tier limits for endpoints that call the completion provider
const (
	DefaultAILimit  = 30
	DefaultAIWindow = time.Hour
	DefaultAIBurst  = 5
)

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	ai := tier{
		limit:  getEnvInt("RATE_LIMIT_AI_LIMIT", DefaultAILimit),
		window: getEnvDuration("RATE_LIMIT_AI_WINDOW", DefaultAIWindow),
		burst:  getEnvInt("RATE_LIMIT_AI_BURST", DefaultAIBurst),
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: endpointConfigs(ai),
	}
}

type tier struct {
	limit  int
	window time.Duration
	burst  int
}

func (t tier) endpoint(method, path string) EndpointConfig {
	return EndpointConfig{Path: path, Method: method, Limit: t.limit, Window: t.window, Burst: t.burst}
}

// DefaultEndpointConfigs returns the endpoint tiers with default AI limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return endpointConfigs(tier{limit: DefaultAILimit, window: DefaultAIWindow, burst: DefaultAIBurst})
}

// endpointConfigs builds the endpoint tiers around the given AI tier.
func endpointConfigs(ai tier) []EndpointConfig {
	auth := tier{limit: 10, window: time.Minute, burst: 5}
	write := tier{limit: 100, window: time.Minute, burst: 10}

	return []EndpointConfig{
		// Tier 1: every request costs a completion call
		ai.endpoint("POST", "/ai/breakdown"),
		ai.endpoint("POST", "/ai/tags"),
		ai.endpoint("POST", "/projects"),
		ai.endpoint("POST", "/questions"),
		ai.endpoint("POST", "/challenges/*/attempts"),
		ai.endpoint("POST", "/questions/*/answer"),

		// Tier 2: credential guessing
		auth.endpoint("POST", "/auth/login"),
		auth.endpoint("POST", "/auth/register"),
		auth.endpoint("PUT", "/auth/password"),

		// Tier 3: plain writes
		write.endpoint("POST", "/challenges"),
		write.endpoint("POST", "/questions/*/comments"),
		write.endpoint("PUT", "/projects/*/status"),

		// Reads use the default limit; /health is unlimited
	}
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
