package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// BrowserUserAgent is a current desktop Chrome identifier. Some sites refuse
// requests that do not look like they come from a browser.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Accept headers for the two kinds of resources this client retrieves.
const (
	AcceptHTML  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	AcceptImage = "image/avif,image/webp,image/apng,image/png,image/jpeg,image/*;q=0.8,*/*;q=0.5"
)

// HTMLTypes are the Content-Type prefixes accepted when AllowedTypes is empty.
var HTMLTypes = []string{"text/html", "application/xhtml+xml"}

// DefaultMaxBodyBytes caps a response body when MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 20 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// Client wraps http.Client and provides timeouts, browser-like headers and
// optional bounded retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Accept is sent as the Accept header when non-empty.
	Accept string
	// Header holds extra request headers such as Referer.
	Header http.Header
	// AllowedTypes lists accepted Content-Type prefixes. Empty means HTMLTypes.
	// A response without Content-Type is always accepted.
	AllowedTypes []string
	// AnyType disables the Content-Type check; the caller inspects the body.
	AnyType bool
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// MaxBodyBytes caps the body size. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// RedirectMaxHops is the number of redirects followed before giving up.
	// Zero means default (5).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int
	// Limiter, when set, paces requests.
	Limiter *rate.Limiter

	// internal limiter initialized on first use when MaxConcurrent > 0
	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET with context, headers and bounded retry for transient
// errors. It returns the body and its Content-Type.
func (c *Client) Get(ctx context.Context, url string) ([]byte, string, error) {
	return c.GetWithHeader(ctx, url, nil)
}

// GetWithHeader is Get with extra request headers layered over c.Header.
func (c *Client) GetWithHeader(ctx context.Context, url string, h http.Header) ([]byte, string, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		body, ct, err := c.tryOnce(ctx, url, h)
		if err == nil {
			return body, ct, nil
		}
		if !isTransient(err) || i == attempts-1 {
			return nil, "", err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, "", lastErr
}

func (c *Client) tryOnce(ctx context.Context, url string, extra http.Header) ([]byte, string, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("rate limit: %w", err)
		}
	}
	// Concurrency gate per client instance
	c.acquire()
	defer c.release()

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PerRequestTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(req.URL) {
		return nil, "", fmt.Errorf("unsupported URL scheme: %q", req.URL.String())
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range extra {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Accept != "" {
		req.Header.Set("Accept", c.Accept)
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &StatusError{URL: url, Code: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !c.isAllowedContentType(contentType) {
		return nil, "", fmt.Errorf("unsupported content type: %s", contentType)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, "", fmt.Errorf("body exceeds %d bytes", limit)
	}
	return b, contentType, nil
}

// isTransient treats HTTP 5xx and per-attempt deadlines as worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func (c *Client) isAllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if c.AnyType || ct == "" {
		return true
	}
	allowed := c.AllowedTypes
	if len(allowed) == 0 {
		allowed = HTMLTypes
	}
	for _, prefix := range allowed {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
		// should not happen, but avoid blocking
	}
}
