package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/pagesnap/internal/extract"
	"github.com/hyperifyio/pagesnap/internal/fetch"
	"github.com/hyperifyio/pagesnap/internal/notify"
	"github.com/hyperifyio/pagesnap/internal/render/pdf"
)

// App runs the snapshot pipeline for every configured target.
type App struct {
	cfg        Config
	container  extract.Container
	extractor  extract.Extractor
	httpClient *http.Client
	pages      *fetch.Client
	images     *fetch.Client
	typeface   pdf.Typeface
	notifier   notify.Notifier
	now        func() time.Time
}

// Option customises an App.
type Option func(*App)

// WithNotifier replaces the webhook notifier built from Config.
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// WithHTTPClient replaces the client used for pages and images.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// WithClock replaces time.Now for target dates and artifact names.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New validates cfg and wires the pipeline collaborators.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	container, err := extract.NewContainer(cfg.Selector)
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:       cfg,
		container: container,
		extractor: extract.ContainerExtractor{Container: container},
		now:       time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	if a.httpClient == nil {
		a.httpClient = newHTTPClient(cfg.InsecureTLS)
	}
	if a.notifier == nil {
		w := notify.NewWebhook(cfg.WebhookURL, cfg.NotifyTimeout)
		w.HTTPClient = a.httpClient
		a.notifier = w
	}
	a.pages = &fetch.Client{
		HTTPClient:        a.httpClient,
		UserAgent:         a.userAgent(),
		Accept:            fetch.AcceptHTML,
		AllowedTypes:      fetch.HTMLTypes,
		MaxAttempts:       cfg.FetchAttempts,
		RedirectMaxHops:   cfg.MaxRedirects,
		PerRequestTimeout: cfg.FetchTimeout,
	}
	a.images = a.newImageClient()

	a.typeface = pdf.LoadTypeface(cfg.FontPath)
	if a.typeface.Available() {
		log.Debug().Str("font", cfg.FontPath).Msg("typeface loaded")
	} else if cfg.FontPath != "" {
		log.Warn().Err(a.typeface.Reason).Str("font", cfg.FontPath).Msg("typeface unavailable")
	}
	return a, nil
}

func (a *App) Close() {
	a.httpClient.CloseIdleConnections()
}

func (a *App) userAgent() string {
	if a.cfg.UserAgent != "" {
		return a.cfg.UserAgent
	}
	return fetch.BrowserUserAgent
}

// Run processes every target once. Page failures are reported through the
// notifier and in the returned reports; they never stop the batch. The error
// is non-nil only when ctx ends before the batch completes.
func (a *App) Run(ctx context.Context) ([]PageReport, error) {
	b := &batch{
		id:   uuid.NewString(),
		date: TargetDate(a.now(), a.cfg.DateCutoffHour).Format(DateLayout),
	}
	logger := log.With().Str("run", b.id).Str("date", b.date).Logger()
	logger.Info().Int("targets", len(a.cfg.Targets)).Int("concurrency", a.cfg.Concurrency).Msg("batch started")

	reports := make([]PageReport, len(a.cfg.Targets))
	var g errgroup.Group
	g.SetLimit(a.cfg.Concurrency)
	for i, t := range a.cfg.Targets {
		i, t := i, t
		g.Go(func() error {
			reports[i] = a.runPage(ctx, b, t)
			return nil
		})
	}
	_ = g.Wait()

	var ok, empty, failed int
	for _, r := range reports {
		switch {
		case r.Err != nil:
			failed++
		case r.Empty:
			empty++
		default:
			ok++
		}
	}
	logger.Info().Int("ok", ok).Int("empty", empty).Int("failed", failed).Msg("batch finished")
	if err := ctx.Err(); err != nil {
		return reports, fmt.Errorf("batch interrupted: %w", err)
	}
	return reports, nil
}

// Failed reports whether any page in reports ended with an error.
func Failed(reports []PageReport) bool {
	for _, r := range reports {
		if r.Err != nil {
			return true
		}
	}
	return false
}

func (a *App) notify(ctx context.Context, msg string, attachments []string) {
	if err := a.notifier.Notify(ctx, msg, attachments); err != nil {
		log.Warn().Err(err).Msg("notification failed")
	}
}
