package app

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/hyperifyio/pagesnap/internal/fetch"
	"github.com/hyperifyio/pagesnap/internal/render/pdf"
)

// newImageClient builds the client shared by every page of a batch. Any
// Content-Type is accepted since the renderer sniffs the bytes itself. At most
// Concurrency downloads are in flight and ImageRate paces the whole batch.
func (a *App) newImageClient() *fetch.Client {
	c := &fetch.Client{
		HTTPClient:        a.httpClient,
		UserAgent:         a.userAgent(),
		Accept:            fetch.AcceptImage,
		AnyType:           true,
		MaxAttempts:       1,
		RedirectMaxHops:   a.cfg.MaxRedirects,
		MaxConcurrent:     a.cfg.Concurrency,
		PerRequestTimeout: a.cfg.ImageTimeout,
	}
	if a.cfg.ImageRate > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(a.cfg.ImageRate), 1)
	}
	return c
}

// imageFetcher retrieves images referenced by one page, sending that page as
// Referer.
type imageFetcher struct {
	client  *fetch.Client
	referer string
}

func (a *App) newImageFetcher(pageURL string) imageFetcher {
	return imageFetcher{client: a.images, referer: pageURL}
}

func (f imageFetcher) FetchImage(ctx context.Context, url string) pdf.ImageResult {
	h := http.Header{"Referer": []string{f.referer}}
	body, _, err := f.client.GetWithHeader(ctx, url, h)
	if err != nil {
		return pdf.Unreachable(err)
	}
	return pdf.Fetched(body)
}
