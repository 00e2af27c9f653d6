package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// FallbackFamily is the core font used when no UTF-8 typeface can be loaded.
// It only covers cp1252, so text outside that range degrades.
const FallbackFamily = "Helvetica"

// Typeface is the outcome of loading the preferred UTF-8 font: either the
// TrueType bytes, or the reason it is Unavailable.
type Typeface struct {
	Family string
	data   []byte
	Reason error
}

// Available reports whether the typeface can be registered.
func (t Typeface) Available() bool { return t.Reason == nil && len(t.data) > 0 }

// LoadTypeface reads a TrueType file. A missing path or unreadable file yields
// an unavailable Typeface rather than an error.
func LoadTypeface(path string) Typeface {
	path = strings.TrimSpace(path)
	if path == "" {
		return Typeface{Reason: errors.New("no font file configured")}
	}
	family := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := os.ReadFile(path)
	if err != nil {
		return Typeface{Family: family, Reason: err}
	}
	if len(data) == 0 {
		return Typeface{Family: family, Reason: fmt.Errorf("font file %s is empty", path)}
	}
	return Typeface{Family: family, data: data}
}

// applyTypeface registers t and selects it. When t is unavailable or gofpdf
// rejects it, the core fallback font is selected instead and the returned
// error explains why; the document stays usable either way. tr converts text
// for the selected font.
func applyTypeface(pdf *gofpdf.Fpdf, t Typeface, size float64) (tr func(string) string, err error) {
	identity := func(s string) string { return s }
	if t.Available() {
		if err = registerUTF8(pdf, t); err == nil {
			pdf.SetFont(t.Family, "", size)
			if !pdf.Err() {
				return identity, nil
			}
			err = pdf.Error()
			pdf.ClearError()
		}
	} else if err = t.Reason; err == nil {
		err = errors.New("no typeface")
	}
	pdf.SetFont(FallbackFamily, "", size)
	return pdf.UnicodeTranslatorFromDescriptor(""), fmt.Errorf("font %q unavailable: %w", t.Family, err)
}

func registerUTF8(pdf *gofpdf.Fpdf, t Typeface) (err error) {
	// The TrueType parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse font: %v", r)
		}
	}()
	pdf.AddUTF8FontFromBytes(t.Family, "", t.data)
	if pdf.Err() {
		err = pdf.Error()
		pdf.ClearError()
	}
	return err
}
