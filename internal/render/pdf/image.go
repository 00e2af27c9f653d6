package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageResult is the outcome of retrieving one image: either the bytes
// (OK) or the reason it could not be obtained (Unreachable).
type ImageResult struct {
	Data   []byte
	Reason error
}

// Fetched wraps retrieved bytes.
func Fetched(data []byte) ImageResult { return ImageResult{Data: data} }

// Unreachable records why an image could not be retrieved.
func Unreachable(reason error) ImageResult {
	if reason == nil {
		reason = errors.New("unreachable")
	}
	return ImageResult{Reason: reason}
}

// OK reports whether the image bytes are available.
func (r ImageResult) OK() bool { return r.Reason == nil && len(r.Data) > 0 }

// ImageSource retrieves image bytes for embedding. Each call must apply its
// own timeout so one slow image cannot stall the document.
type ImageSource interface {
	FetchImage(ctx context.Context, url string) ImageResult
}

// ImageSourceFunc adapts a function to ImageSource.
type ImageSourceFunc func(ctx context.Context, url string) ImageResult

func (f ImageSourceFunc) FetchImage(ctx context.Context, url string) ImageResult { return f(ctx, url) }

// embeddable is an image in a format gofpdf can register directly.
type embeddable struct {
	data      []byte
	imageType string
}

// prepareImage sniffs data and converts formats gofpdf cannot read natively
// (WebP, BMP, TIFF) to PNG.
func prepareImage(data []byte) (embeddable, error) {
	switch sniff(data) {
	case "PNG":
		return embeddable{data: data, imageType: "PNG"}, nil
	case "JPG":
		return embeddable{data: data, imageType: "JPG"}, nil
	case "GIF":
		return embeddable{data: data, imageType: "GIF"}, nil
	}
	return transcodePNG(data)
}

// transcodePNG decodes any registered image format and re-encodes it as a
// plain non-interlaced PNG.
func transcodePNG(data []byte) (embeddable, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return embeddable{}, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return embeddable{}, fmt.Errorf("re-encode %s as png: %w", format, err)
	}
	return embeddable{data: buf.Bytes(), imageType: "PNG"}, nil
}

func sniff(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	}
	return ""
}
