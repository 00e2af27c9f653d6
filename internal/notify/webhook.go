package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultWebhookTimeout bounds a single delivery when Webhook.Timeout is zero.
const DefaultWebhookTimeout = 30 * time.Second

// Webhook posts messages to a chat webhook endpoint. Plain messages are sent
// as JSON {"content": msg}; messages with attachments are sent as a multipart
// form with a content field and one file0..fileN part per attachment.
//
// Deliveries are serialized so concurrent pages never interleave uploads.
type Webhook struct {
	URL        string
	HTTPClient *http.Client
	// Timeout bounds one delivery including uploads.
	Timeout time.Duration

	mu sync.Mutex
}

// NewWebhook returns a Webhook for url. An empty url yields a notifier that
// only logs.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{URL: strings.TrimSpace(url), Timeout: timeout}
}

// Configured reports whether deliveries leave the process.
func (w *Webhook) Configured() bool { return w != nil && strings.TrimSpace(w.URL) != "" }

// Notify delivers msg. When no webhook is configured the message is logged
// and nil is returned.
func (w *Webhook) Notify(ctx context.Context, msg string, attachments []string) error {
	if !w.Configured() {
		log.Info().Strs("attachments", attachments).Msg(msg)
		log.Debug().Msg("webhook not configured; notification not sent")
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, contentType, err := w.payload(msg, attachments)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, body)
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	client := w.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	log.Debug().Int("attachments", len(attachments)).Msg("notification delivered")
	return nil
}

func (w *Webhook) payload(msg string, attachments []string) (io.Reader, string, error) {
	files := existing(attachments)
	if len(files) == 0 {
		b, err := json.Marshal(map[string]string{"content": msg})
		if err != nil {
			return nil, "", fmt.Errorf("webhook: marshal: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("content", msg); err != nil {
		return nil, "", fmt.Errorf("webhook: write content: %w", err)
	}
	n := 0
	for _, path := range files {
		if err := attach(mw, fmt.Sprintf("file%d", n), path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("attachment skipped")
			continue
		}
		n++
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("webhook: close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// existing drops attachment paths that are empty or do not name a regular file.
func existing(paths []string) []string {
	var out []string
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		fi, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Warn().Str("path", p).Msg("attachment not found")
			} else {
				log.Warn().Err(err).Str("path", p).Msg("attachment not readable")
			}
			continue
		}
		if !fi.Mode().IsRegular() {
			log.Warn().Str("path", p).Msg("attachment is not a regular file")
			continue
		}
		out = append(out, p)
	}
	return out
}

func attach(mw *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
