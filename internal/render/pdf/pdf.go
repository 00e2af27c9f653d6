// Package pdf renders extracted content blocks as a paginated A4 document.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagesnap/internal/block"
	"github.com/hyperifyio/pagesnap/internal/render"
)

const (
	defaultFontSize = 12.0
	textLineHeight  = 10.0
	paragraphGap    = 5.0
	imageGap        = 3.0
	// tableLineFactor scales the font size (in user units) to a table row height.
	tableLineFactor = 2.5
)

// WarningKind classifies a recovered rendering problem.
type WarningKind int

const (
	WarnFontFallback WarningKind = iota + 1
	WarnImageUnresolved
)

func (k WarningKind) String() string {
	switch k {
	case WarnFontFallback:
		return "font-fallback"
	case WarnImageUnresolved:
		return "image-unresolved"
	}
	return "unknown"
}

// Warning describes a resource the renderer had to substitute.
type Warning struct {
	Kind   WarningKind
	Source string
	Err    error
}

func (w Warning) String() string {
	if w.Source == "" {
		return fmt.Sprintf("%s: %v", w.Kind, w.Err)
	}
	return fmt.Sprintf("%s %s: %v", w.Kind, w.Source, w.Err)
}

// Result is a rendered document plus the warnings produced on the way.
type Result struct {
	PDF      []byte
	Warnings []Warning
	// Images counts embedded images; Fallbacks counts images replaced by
	// their source line.
	Images    int
	Fallbacks int
}

// Options configures a Renderer.
type Options struct {
	// Typeface is the preferred UTF-8 font. Unavailable means fall back.
	Typeface Typeface
	// FontSize in points. Zero means 12.
	FontSize float64
	// Images retrieves remote images. Nil renders every image as its source line.
	Images ImageSource
	// Title is stored in the document metadata.
	Title string
	// Uncompressed leaves page streams readable, for debugging.
	Uncompressed bool
}

// Renderer turns a block sequence into PDF bytes. A Renderer holds no state
// between Render calls.
type Renderer struct {
	opts Options
}

// New returns a Renderer.
func New(opts Options) *Renderer {
	if opts.FontSize <= 0 {
		opts.FontSize = defaultFontSize
	}
	return &Renderer{opts: opts}
}

// Render lays out blocks in order. Images that cannot be fetched or embedded
// are replaced by a line naming their source; a missing typeface falls back to
// the core font. Both are reported in Result.Warnings. Empty input yields
// render.ErrNoArtifact.
func (r *Renderer) Render(ctx context.Context, blocks []block.Block) (Result, error) {
	if len(blocks) == 0 {
		return Result{}, render.ErrNoArtifact
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!r.opts.Uncompressed)
	pdf.SetCreator("pagesnap", true)
	if r.opts.Title != "" {
		pdf.SetTitle(r.opts.Title, true)
	}
	pdf.AddPage()

	d := &doc{pdf: pdf, images: r.opts.Images}
	tr, err := applyTypeface(pdf, r.opts.Typeface, r.opts.FontSize)
	if err != nil {
		log.Warn().Err(err).Msg("using fallback font")
		d.warn(Warning{Kind: WarnFontFallback, Source: r.opts.Typeface.Family, Err: err})
	}
	d.tr = tr
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	d.width = pageW - left - right
	d.left = left

	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		switch b.Kind {
		case block.KindText:
			d.text(b.Text)
		case block.KindTable:
			d.table(b)
		case block.KindImage:
			d.image(ctx, i, b.Source)
		}
		if pdf.Err() {
			return Result{}, fmt.Errorf("render block %d (%s): %w", i, b.Kind, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Result{}, fmt.Errorf("write pdf: %w", err)
	}
	d.res.PDF = buf.Bytes()
	return d.res, nil
}

// doc is the layout state of one Render call.
type doc struct {
	pdf    *gofpdf.Fpdf
	images ImageSource
	tr     func(string) string
	left   float64
	width  float64
	res    Result
}

func (d *doc) warn(w Warning) { d.res.Warnings = append(d.res.Warnings, w) }

// text writes each source line as its own wrapped paragraph.
func (d *doc) text(s string) {
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			d.pdf.Ln(textLineHeight)
			continue
		}
		d.pdf.MultiCell(d.width, textLineHeight, d.tr(line), "", "L", false)
		d.pdf.Ln(paragraphGap)
	}
}

// table draws a bordered grid whose column count comes from the first row.
// Short rows get empty trailing cells; extra cells are dropped.
func (d *doc) table(b block.Block) {
	cols := b.Columns()
	if cols == 0 {
		return
	}
	rows := b.Rows
	colW := d.width / float64(cols)
	_, fontH := d.pdf.GetFontSize()
	lineH := fontH * tableLineFactor
	for _, row := range rows {
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = d.fit(row[c], colW)
			}
			d.pdf.CellFormat(colW, lineH, cell, "1", 0, "L", false, 0, "")
		}
		d.pdf.Ln(lineH)
	}
	d.pdf.Ln(lineH)
}

// fit converts s for the current font and shortens it so it stays inside a
// cell of width w.
func (d *doc) fit(s string, w float64) string {
	limit := w - 2*d.pdf.GetCellMargin()
	if out := d.tr(s); d.pdf.GetStringWidth(out) <= limit {
		return out
	}
	const ellipsis = "..."
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if out := d.tr(string(runes) + ellipsis); d.pdf.GetStringWidth(out) <= limit {
			return out
		}
	}
	return ""
}

// image embeds src at the content width, or writes its source line when the
// image cannot be retrieved or embedded.
func (d *doc) image(ctx context.Context, idx int, src string) {
	err := d.embed(ctx, idx, src)
	if err == nil {
		d.res.Images++
		return
	}
	log.Warn().Err(err).Str("src", src).Msg("image not embedded")
	d.res.Fallbacks++
	d.warn(Warning{Kind: WarnImageUnresolved, Source: src, Err: err})
	d.sourceLine(src)
}

// sourceLine writes the fallback line for src. Long URLs wrap rather than
// being shortened, and the line links to src.
func (d *doc) sourceLine(src string) {
	page, y := d.pdf.PageNo(), d.pdf.GetY()
	d.pdf.MultiCell(d.width, textLineHeight, d.tr("Image SRC: "+src), "", "L", false)
	if h := d.pdf.GetY() - y; d.pdf.PageNo() == page && h > 0 {
		d.pdf.LinkString(d.left, y, d.width, h, src)
	}
}

func (d *doc) embed(ctx context.Context, idx int, src string) error {
	if d.images == nil {
		return errors.New("image retrieval disabled")
	}
	res := d.images.FetchImage(ctx, src)
	if !res.OK() {
		if res.Reason != nil {
			return res.Reason
		}
		return errors.New("empty image body")
	}
	img, err := prepareImage(res.Data)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("block-%d", idx)
	info, err := d.register(name, img)
	if err != nil && img.imageType != "PNG" {
		// Some JPEG/GIF variants are rejected by gofpdf; a PNG copy usually is not.
		if img, err = transcodePNG(res.Data); err == nil {
			name += "-png"
			info, err = d.register(name, img)
		}
	}
	if err != nil {
		return err
	}
	w, h := d.width, 0.0
	if info.Width() > 0 {
		h = d.width * info.Height() / info.Width()
	}
	// Keep tall images on a single page.
	_, pageH := d.pdf.GetPageSize()
	_, top, _, bottom := d.pdf.GetMargins()
	if maxH := pageH - top - bottom; h > maxH {
		w, h = w*maxH/h, maxH
	}
	d.pdf.ImageOptions(name, d.left, 0, w, h, true, gofpdf.ImageOptions{ImageType: img.imageType}, 0, "")
	if d.pdf.Err() {
		err := d.pdf.Error()
		d.pdf.ClearError()
		return err
	}
	d.pdf.Ln(imageGap)
	return nil
}

func (d *doc) register(name string, img embeddable) (*gofpdf.ImageInfoType, error) {
	info := d.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: img.imageType}, bytes.NewReader(img.data))
	if d.pdf.Err() {
		err := d.pdf.Error()
		d.pdf.ClearError()
		return nil, err
	}
	if info == nil {
		return nil, errors.New("image not registered")
	}
	return info, nil
}
