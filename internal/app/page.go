package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagesnap/internal/extract"
	"github.com/hyperifyio/pagesnap/internal/notify"
	"github.com/hyperifyio/pagesnap/internal/render"
	"github.com/hyperifyio/pagesnap/internal/render/pdf"
	"github.com/hyperifyio/pagesnap/internal/render/record"
)

// PageReport is the outcome of one target in a batch.
type PageReport struct {
	Target Target
	URL    string
	Dir    string
	Title  string
	// Artifacts lists the files written, data record first.
	Artifacts []string
	Blocks    int
	Warnings  []pdf.Warning
	// Empty is set when the page had no designated container.
	Empty bool
	Err   error
}

// batch is the state shared by the pages of one Run.
type batch struct {
	id   string
	date string
	// defaultFont guards the single notice sent when no font is configured.
	defaultFont sync.Once
}

// runPage executes the pipeline for one target and reports every outcome
// through the notifier. It never panics.
func (a *App) runPage(ctx context.Context, b *batch, t Target) (rep PageReport) {
	rep = PageReport{
		Target: t,
		URL:    ExpandURL(t.URL, b.date),
		Dir:    pageDir(a.cfg.OutputDir, b.date, t.Name),
	}
	logger := log.With().Str("run", b.id).Str("target", t.Name).Str("url", rep.URL).Logger()

	defer func() {
		if r := recover(); r != nil {
			rep.Err = panicError{value: r}
			logger.Error().Err(rep.Err).Bytes("stack", debug.Stack()).Msg("page run panicked")
			a.notify(ctx, notify.UnexpectedMessage(rep.URL, rep.Err), nil)
		}
	}()

	if err := ctx.Err(); err != nil {
		rep.Err = err
		logger.Warn().Err(err).Msg("page skipped")
		return rep
	}

	logger.Info().Msg("page started")
	a.notify(ctx, notify.StartMessage(rep.URL), nil)

	err := a.processPage(ctx, b, &rep, logger)
	var fe *FetchError
	switch {
	case err == nil:
		logger.Info().Strs("artifacts", rep.Artifacts).Int("blocks", rep.Blocks).Msg("page finished")
		a.notify(ctx, notify.SuccessMessage(rep.URL, rep.Title), rep.Artifacts)
	case errors.Is(err, ErrShapeMismatch):
		rep.Empty = true
		logger.Warn().Str("selector", a.container.String()).Msg("container not found; nothing saved")
		a.notify(ctx, notify.EmptyMessage(rep.URL, a.container.String()), nil)
	case errors.As(err, &fe):
		rep.Err = err
		logger.Error().Err(fe.Err).Msg("fetch failed")
		a.notify(ctx, notify.FetchFailedMessage(rep.URL, fe.Err), nil)
	default:
		rep.Err = err
		logger.Error().Err(err).Msg("page failed")
		a.notify(ctx, notify.UnexpectedMessage(rep.URL, err), rep.Artifacts)
	}
	return rep
}

// processPage fetches, extracts and renders one page. Artifacts written before
// a later failure stay listed in rep.Artifacts.
func (a *App) processPage(ctx context.Context, b *batch, rep *PageReport, logger zerolog.Logger) error {
	body, contentType, err := a.pages.Get(ctx, rep.URL)
	if err != nil {
		return &FetchError{URL: rep.URL, Err: err}
	}
	logger.Debug().Int("bytes", len(body)).Str("content_type", contentType).Msg("page fetched")

	doc, err := extract.Parse(body, contentType)
	if err != nil {
		return err
	}
	base, err := url.Parse(rep.URL)
	if err != nil {
		return fmt.Errorf("parse page url: %w", err)
	}
	flat, ok := a.extractor.Flat(doc)
	if !ok {
		return ErrShapeMismatch
	}
	blocks, ok := a.extractor.Blocks(doc, base)
	if !ok {
		return ErrShapeMismatch
	}
	rep.Title = extract.Title(doc)
	rep.Blocks = len(blocks)

	paths := newArtifactPaths(rep.Dir, a.now())
	var entries []manifestEntry
	save := func(kind, path string, content []byte) error {
		if err := os.MkdirAll(rep.Dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", kind, err)
		}
		rep.Artifacts = append(rep.Artifacts, path)
		entries = append(entries, newManifestEntry(kind, path, content))
		logger.Info().Str("path", path).Msg("saved " + kind)
		return nil
	}

	data, err := record.Serialize(flat)
	switch {
	case errors.Is(err, render.ErrNoArtifact):
		logger.Warn().Msg("no text content; data record skipped")
	case err != nil:
		return fmt.Errorf("serialize record: %w", err)
	default:
		if err := save("record", paths.Data, data); err != nil {
			return err
		}
	}

	renderer := pdf.New(pdf.Options{
		Typeface: a.typeface,
		Images:   a.newImageFetcher(rep.URL),
		Title:    rep.Title,
	})
	res, err := renderer.Render(ctx, blocks)
	switch {
	case errors.Is(err, render.ErrNoArtifact):
		logger.Warn().Msg("no blocks; document skipped")
	case err != nil:
		return fmt.Errorf("render document: %w", err)
	default:
		rep.Warnings = res.Warnings
		if err := save("document", paths.Document, res.PDF); err != nil {
			return err
		}
		for _, w := range res.Warnings {
			if w.Kind != pdf.WarnFontFallback {
				continue
			}
			if a.cfg.FontPath != "" {
				a.notify(ctx, notify.FontFallbackMessage(rep.URL, w.Err), nil)
				continue
			}
			// Without a configured font every page falls back; say so once.
			b.defaultFont.Do(func() {
				a.notify(ctx, notify.FontFallbackMessage(rep.URL, w.Err), nil)
			})
		}
	}

	if len(entries) > 0 {
		meta := manifestMeta{
			RunID:          b.id,
			Target:         rep.Target.Name,
			URL:            rep.URL,
			Title:          rep.Title,
			Selector:       a.container.String(),
			Blocks:         rep.Blocks,
			Images:         res.Images,
			ImageFallbacks: res.Fallbacks,
			Version:        BuildVersion,
			GeneratedAt:    a.now().UTC(),
		}
		for _, w := range res.Warnings {
			meta.Warnings = append(meta.Warnings, w.String())
		}
		if err := writeManifest(paths.Manifest, meta, entries); err != nil {
			logger.Warn().Err(err).Msg("manifest not written")
		}
	}
	return nil
}
