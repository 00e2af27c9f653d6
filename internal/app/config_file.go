package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/pagesnap/internal/extract"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Targets []Target `yaml:"targets" json:"targets"`
	Output  string   `yaml:"output" json:"output"`

	Webhook struct {
		URL     string        `yaml:"url" json:"url"`
		Timeout time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"webhook" json:"webhook"`

	Font     string `yaml:"font" json:"font"`
	Selector string `yaml:"selector" json:"selector"`

	Fetch struct {
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		Attempts     int           `yaml:"attempts" json:"attempts"`
		MaxRedirects int           `yaml:"maxRedirects" json:"maxRedirects"`
		UserAgent    string        `yaml:"userAgent" json:"userAgent"`
		InsecureTLS  bool          `yaml:"insecureTLS" json:"insecureTLS"`
	} `yaml:"fetch" json:"fetch"`

	Images struct {
		Timeout time.Duration `yaml:"timeout" json:"timeout"`
		Rate    float64       `yaml:"rate" json:"rate"`
	} `yaml:"images" json:"images"`

	Concurrency    int  `yaml:"concurrency" json:"concurrency"`
	DateCutoffHour *int `yaml:"dateCutoffHour" json:"dateCutoffHour"`
	Verbose        bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their default. Flags should already have
// been parsed; file config supplies defaults while preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if len(cfg.Targets) == 0 && len(fc.Targets) > 0 {
		cfg.Targets = append([]Target{}, fc.Targets...)
	}
	if (trim(cfg.OutputDir) == "" || cfg.OutputDir == DefaultOutputDir) && fc.Output != "" {
		cfg.OutputDir = fc.Output
	}
	if cfg.WebhookURL == "" && fc.Webhook.URL != "" {
		cfg.WebhookURL = fc.Webhook.URL
	}
	if (cfg.NotifyTimeout == 0 || cfg.NotifyTimeout == DefaultNotifyTimeout) && fc.Webhook.Timeout > 0 {
		cfg.NotifyTimeout = fc.Webhook.Timeout
	}
	if cfg.FontPath == "" && fc.Font != "" {
		cfg.FontPath = fc.Font
	}
	if (cfg.Selector == "" || cfg.Selector == extract.DefaultSelector) && fc.Selector != "" {
		cfg.Selector = fc.Selector
	}
	if (cfg.FetchTimeout == 0 || cfg.FetchTimeout == DefaultFetchTimeout) && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if (cfg.FetchAttempts == 0 || cfg.FetchAttempts == DefaultFetchAttempts) && fc.Fetch.Attempts > 0 {
		cfg.FetchAttempts = fc.Fetch.Attempts
	}
	if (cfg.MaxRedirects == 0 || cfg.MaxRedirects == DefaultMaxRedirects) && fc.Fetch.MaxRedirects > 0 {
		cfg.MaxRedirects = fc.Fetch.MaxRedirects
	}
	if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if !cfg.InsecureTLS && fc.Fetch.InsecureTLS {
		cfg.InsecureTLS = true
	}
	if (cfg.ImageTimeout == 0 || cfg.ImageTimeout == DefaultImageTimeout) && fc.Images.Timeout > 0 {
		cfg.ImageTimeout = fc.Images.Timeout
	}
	if cfg.ImageRate == 0 && fc.Images.Rate > 0 {
		cfg.ImageRate = fc.Images.Rate
	}
	if (cfg.Concurrency == 0 || cfg.Concurrency == DefaultConcurrency) && fc.Concurrency > 0 {
		cfg.Concurrency = fc.Concurrency
	}
	if cfg.DateCutoffHour == DefaultDateCutoffHour && fc.DateCutoffHour != nil {
		cfg.DateCutoffHour = *fc.DateCutoffHour
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if len(cfg.Targets) == 0 {
		return errors.New("config: at least one target is required")
	}
	seen := make(map[string]bool, len(cfg.Targets))
	for i, t := range cfg.Targets {
		name := trim(t.Name)
		if name == "" {
			return fmt.Errorf("config: target %d: name is required", i+1)
		}
		if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("config: target %q: name must be a single path element", name)
		}
		if seen[name] {
			return fmt.Errorf("config: target %q is listed twice", name)
		}
		seen[name] = true
		u, err := url.Parse(ExpandURL(t.URL, "2006-01-02"))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: target %q: url must be absolute http(s), got %q", name, t.URL)
		}
	}
	if cfg.DateCutoffHour < 0 || cfg.DateCutoffHour > 24 {
		return fmt.Errorf("config: dateCutoffHour must be within 0..24, got %d", cfg.DateCutoffHour)
	}
	if cfg.Concurrency < 0 || cfg.FetchAttempts < 0 || cfg.MaxRedirects < 0 || cfg.FetchTimeout < 0 || cfg.ImageTimeout < 0 || cfg.NotifyTimeout < 0 || cfg.ImageRate < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.WebhookURL != "" {
		if u, err := url.Parse(cfg.WebhookURL); err != nil || u.Host == "" {
			return fmt.Errorf("config: invalid webhook url %q", cfg.WebhookURL)
		}
	}
	if _, err := extract.NewContainer(cfg.Selector); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func trim(s string) string { return strings.TrimSpace(s) }
