package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagesnap/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		// Exit code policy: 2 when pages failed, 1 for configuration or startup errors.
		if errors.Is(err, app.ErrPagesFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong. Zero values mean
// "not set" so that config file and environment can supply them.
type CLI struct {
	Config       string        `short:"c" help:"YAML or JSON config file." type:"path"`
	EnvFile      []string      `name:"env-file" default:".env" sep:"none" help:"Dotenv files loaded before reading the environment."`
	Target       []string      `short:"t" sep:"none" placeholder:"NAME=URL" help:"Page to snapshot; URL may contain {date}. Repeatable."`
	Output       string        `short:"o" help:"Output directory (default ${default_output})."`
	Webhook      string        `help:"Webhook URL for notifications."`
	Font         string        `type:"path" help:"TrueType font used in PDF documents."`
	Selector     string        `help:"CSS selector of the content container (default main)."`
	FetchTimeout time.Duration `name:"fetch-timeout" help:"Timeout for each page download."`
	Attempts     int           `name:"fetch-attempts" help:"Page download attempts; 5xx and timeouts are retried (default 1)."`
	MaxRedirects int           `name:"max-redirects" help:"Redirects followed per download (default 5)."`
	ImageTimeout time.Duration `name:"image-timeout" help:"Timeout for each image download."`
	ImageRate    float64       `name:"image-rate" help:"Image downloads per second across the batch; 0 disables pacing."`
	Concurrency  int           `short:"j" help:"Pages processed in parallel (default 1)."`
	CutoffHour   int           `name:"cutoff-hour" default:"-1" help:"Local hour from which {date} means today instead of yesterday (default 22)."`
	UserAgent    string        `name:"user-agent" help:"Override the browser User-Agent."`
	InsecureTLS  bool          `name:"insecure-tls" help:"Skip TLS certificate verification."`
	Verbose      bool          `short:"v" help:"Verbose logging."`
	Version      bool          `help:"Print version information and exit."`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagesnap"),
		kong.Description("Snapshot the main content of web pages to JSON and PDF"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"default_output": app.DefaultOutputDir},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}
	if cli.Version {
		fmt.Fprintln(stdout, app.VersionString())
		return nil
	}

	setupLogging(stderr, cli.Verbose)

	if err := app.LoadEnvFiles(cli.EnvFile...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	cfg, err := cli.config()
	if err != nil {
		return err
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	reports, err := a.Run(ctx)
	if err != nil {
		return err
	}
	if app.Failed(reports) {
		return app.ErrPagesFailed
	}
	return nil
}

// config merges defaults, config file, environment and flags, in increasing
// precedence.
func (c *CLI) config() (app.Config, error) {
	cfg := app.DefaultConfig()
	if strings.TrimSpace(c.Config) != "" {
		fc, err := app.LoadConfigFile(c.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", c.Config, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	if len(c.Target) > 0 {
		targets, err := parseTargets(c.Target)
		if err != nil {
			return cfg, err
		}
		cfg.Targets = targets
	}
	setString(&cfg.OutputDir, c.Output)
	setString(&cfg.WebhookURL, c.Webhook)
	setString(&cfg.FontPath, c.Font)
	setString(&cfg.Selector, c.Selector)
	setString(&cfg.UserAgent, c.UserAgent)
	if c.FetchTimeout > 0 {
		cfg.FetchTimeout = c.FetchTimeout
	}
	if c.Attempts > 0 {
		cfg.FetchAttempts = c.Attempts
	}
	if c.MaxRedirects > 0 {
		cfg.MaxRedirects = c.MaxRedirects
	}
	if c.ImageTimeout > 0 {
		cfg.ImageTimeout = c.ImageTimeout
	}
	if c.ImageRate > 0 {
		cfg.ImageRate = c.ImageRate
	}
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}
	if c.CutoffHour >= 0 {
		cfg.DateCutoffHour = c.CutoffHour
	}
	if c.InsecureTLS {
		cfg.InsecureTLS = true
	}
	if c.Verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// parseTargets reads NAME=URL pairs. The URL may itself contain '='.
func parseTargets(specs []string) ([]app.Target, error) {
	out := make([]app.Target, 0, len(specs))
	for _, s := range specs {
		name, u, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(u) == "" {
			return nil, fmt.Errorf("invalid target %q: want NAME=URL", s)
		}
		out = append(out, app.Target{Name: strings.TrimSpace(name), URL: strings.TrimSpace(u)})
	}
	return out, nil
}

func setupLogging(w io.Writer, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
