package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Pool      PoolConfig
	Workflow  WorkflowConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless. Carrier anti-bot
	// checks are friendlier to a headed browser, so the default is false.
	Headless bool // default: false

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// UserDataDir persists cache and cookies between runs.
	UserDataDir string // default: "./browser-cache"

	// UserAgent is applied to every tab before navigation.
	UserAgent string
}

// PoolConfig controls the session pool.
type PoolConfig struct {
	// RotationInterval is the focus-rotation tick. Each tick brings the next
	// open tab to the foreground round-robin.
	RotationInterval time.Duration // default: 500ms
}

// WorkflowConfig controls carrier workflow timeouts.
type WorkflowConfig struct {
	// NavigationTimeout bounds a full page navigation. Exceeding it is fatal
	// to the task.
	NavigationTimeout time.Duration // default: 120s

	// ControlTimeout bounds a wait for a single page control. Exceeding it
	// may be locally recoverable depending on the step.
	ControlTimeout time.Duration // default: 30s

	// ResultTimeout bounds a wait for a result grid after a search.
	ResultTimeout time.Duration // default: 10s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgent is the fixed Chrome UA pinned on every tab.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SEATRACK_HOST", "0.0.0.0"),
			Port: envIntOr("SEATRACK_PORT", 8080),
			Mode: envOr("SEATRACK_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:    envBoolOr("SEATRACK_HEADLESS", false),
			NoSandbox:   envBoolOr("SEATRACK_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("SEATRACK_BROWSER_BIN"),
			UserDataDir: envOr("SEATRACK_USER_DATA_DIR", "./browser-cache"),
			UserAgent:   envOr("SEATRACK_USER_AGENT", DefaultUserAgent),
		},
		Pool: PoolConfig{
			RotationInterval: envDurationOr("SEATRACK_ROTATION_INTERVAL", 500*time.Millisecond),
		},
		Workflow: WorkflowConfig{
			NavigationTimeout: envDurationOr("SEATRACK_NAV_TIMEOUT", 120*time.Second),
			ControlTimeout:    envDurationOr("SEATRACK_CONTROL_TIMEOUT", 30*time.Second),
			ResultTimeout:     envDurationOr("SEATRACK_RESULT_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SEATRACK_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SEATRACK_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SEATRACK_RATE_RPS", 5.0),
			Burst:             envIntOr("SEATRACK_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("SEATRACK_LOG_LEVEL", "info"),
			Format: envOr("SEATRACK_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
