package app

import "time"

// Target is one page to snapshot. URL may contain the {date} placeholder,
// which is replaced by the run's target date.
type Target struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Defaults applied by Config.withDefaults for unset fields.
const (
	DefaultOutputDir      = "output"
	DefaultFetchTimeout   = 30 * time.Second
	DefaultImageTimeout   = 15 * time.Second
	DefaultNotifyTimeout  = 30 * time.Second
	DefaultConcurrency    = 1
	DefaultFetchAttempts  = 1
	DefaultMaxRedirects   = 5
	DefaultDateCutoffHour = 22
)

// Config holds runtime configuration for the application.
type Config struct {
	Targets   []Target
	OutputDir string

	// Notification
	WebhookURL    string
	NotifyTimeout time.Duration

	// Extraction and rendering
	Selector string
	FontPath string

	// Network
	FetchTimeout time.Duration
	// FetchAttempts bounds page downloads, the first try included. Only 5xx
	// responses and timeouts are retried.
	FetchAttempts int
	MaxRedirects  int
	ImageTimeout  time.Duration
	// ImageRate paces image downloads across the batch, in requests per
	// second. Zero disables pacing.
	ImageRate   float64
	UserAgent   string
	InsecureTLS bool

	// Behavior
	Concurrency int
	// DateCutoffHour is the local hour at or after which {date} resolves to
	// today; before it, yesterday. 0 always selects today, 24 always yesterday.
	DateCutoffHour int
	Verbose        bool
}

// DefaultConfig returns a Config with every default filled in and no targets.
func DefaultConfig() Config {
	return Config{
		OutputDir:      DefaultOutputDir,
		NotifyTimeout:  DefaultNotifyTimeout,
		FetchTimeout:   DefaultFetchTimeout,
		FetchAttempts:  DefaultFetchAttempts,
		MaxRedirects:   DefaultMaxRedirects,
		ImageTimeout:   DefaultImageTimeout,
		Concurrency:    DefaultConcurrency,
		DateCutoffHour: DefaultDateCutoffHour,
	}
}

// withDefaults fills zero-valued limits. DateCutoffHour is left alone since
// zero is meaningful.
func (c Config) withDefaults() Config {
	if trim(c.OutputDir) == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = DefaultNotifyTimeout
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.FetchAttempts <= 0 {
		c.FetchAttempts = DefaultFetchAttempts
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	if c.ImageTimeout <= 0 {
		c.ImageTimeout = DefaultImageTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	return c
}
