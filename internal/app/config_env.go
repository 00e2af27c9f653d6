package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment keys read by ApplyEnvOverrides.
const (
	EnvWebhookURL   = "PAGESNAP_WEBHOOK_URL"
	EnvOutputDir    = "PAGESNAP_OUTPUT_DIR"
	EnvFont         = "PAGESNAP_FONT"
	EnvSelector     = "PAGESNAP_SELECTOR"
	EnvConcurrency  = "PAGESNAP_CONCURRENCY"
	EnvFetchTimeout = "PAGESNAP_FETCH_TIMEOUT"
	EnvVerbose      = "VERBOSE"
)

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// values coming from a config file; callers re-apply explicit flags afterwards
// to keep flags highest.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := os.Getenv(EnvWebhookURL); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(EnvFont); v != "" {
		cfg.FontPath = v
	}
	if v := os.Getenv(EnvSelector); v != "" {
		cfg.Selector = v
	}
	if n, ok := envInt(EnvConcurrency); ok {
		cfg.Concurrency = n
	}
	if d, ok := envDuration(EnvFetchTimeout); ok {
		cfg.FetchTimeout = d
	}
	if v, ok := envBool(EnvVerbose); ok {
		cfg.Verbose = v
	}
}

func envInt(key string) (int, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// envBool reports a recognised truthy or falsey value.
func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
