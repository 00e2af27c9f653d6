package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	contentType string
	content     string
	files       map[string]string
}

func captureServer(t *testing.T, status int) (*httptest.Server, *[]captured, *sync.Mutex) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{contentType: r.Header.Get("Content-Type"), files: map[string]string{}}
		if r.Header.Get("Content-Type") == "application/json" {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			c.content = body["content"]
		} else {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				c.content = r.FormValue("content")
				for field, fhs := range r.MultipartForm.File {
					f, _ := fhs[0].Open()
					b, _ := io.ReadAll(f)
					_ = f.Close()
					c.files[field] = fhs[0].Filename + ":" + string(b)
				}
			}
		}
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got, &mu
}

func TestWebhook_PlainMessageIsJSON(t *testing.T) {
	t.Parallel()

	srv, got, _ := captureServer(t, http.StatusNoContent)
	w := NewWebhook(srv.URL, time.Second)

	require.NoError(t, w.Notify(context.Background(), "hello", nil))
	require.Len(t, *got, 1)
	assert.Equal(t, "application/json", (*got)[0].contentType)
	assert.Equal(t, "hello", (*got)[0].content)
}

func TestWebhook_AttachmentsAreMultipart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "data.json")
	b := filepath.Join(dir, "data.pdf")
	require.NoError(t, os.WriteFile(a, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("%PDF"), 0o644))

	srv, got, _ := captureServer(t, http.StatusOK)
	w := NewWebhook(srv.URL, time.Second)

	missing := filepath.Join(dir, "gone.pdf")
	require.NoError(t, w.Notify(context.Background(), "done", []string{a, missing, b, ""}))
	require.Len(t, *got, 1)
	c := (*got)[0]
	assert.Contains(t, c.contentType, "multipart/form-data")
	assert.Equal(t, "done", c.content)
	assert.Equal(t, map[string]string{
		"file0": "data.json:{}",
		"file1": "data.pdf:%PDF",
	}, c.files)
}

func TestWebhook_AllAttachmentsMissingFallsBackToJSON(t *testing.T) {
	t.Parallel()

	srv, got, _ := captureServer(t, http.StatusOK)
	w := NewWebhook(srv.URL, time.Second)

	require.NoError(t, w.Notify(context.Background(), "nothing to attach", []string{"/nonexistent/a.pdf"}))
	require.Len(t, *got, 1)
	assert.Equal(t, "application/json", (*got)[0].contentType)
}

func TestWebhook_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv, _, _ := captureServer(t, http.StatusBadRequest)
	err := NewWebhook(srv.URL, time.Second).Notify(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestWebhook_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	err := NewWebhook(srv.URL, 50*time.Millisecond).Notify(context.Background(), "slow", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestWebhook_UnconfiguredOnlyLogs(t *testing.T) {
	t.Parallel()

	w := NewWebhook("  ", 0)
	assert.False(t, w.Configured())
	assert.NoError(t, w.Notify(context.Background(), "logged", []string{"/nonexistent"}))

	var nilHook *Webhook
	assert.False(t, nilHook.Configured())
}

func TestWebhook_SerializesDeliveries(t *testing.T) {
	t.Parallel()

	var inFlight, maxInFlight int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}))
	t.Cleanup(srv.Close)

	w := NewWebhook(srv.URL, time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Notify(context.Background(), "concurrent", nil))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestFunc(t *testing.T) {
	t.Parallel()

	var seen []string
	var n Notifier = Func(func(_ context.Context, msg string, attachments []string) error {
		seen = append(seen, msg)
		seen = append(seen, attachments...)
		return nil
	})
	require.NoError(t, n.Notify(context.Background(), "m", []string{"a"}))
	assert.Equal(t, []string{"m", "a"}, seen)
}

func TestMessages(t *testing.T) {
	t.Parallel()

	u := "https://example.com/page"
	boom := errors.New("boom")
	assert.Contains(t, StartMessage(u), u)
	assert.Contains(t, FetchFailedMessage(u, boom), "boom")
	assert.Contains(t, FontFallbackMessage(u, boom), "fallback")
	assert.Contains(t, UnexpectedMessage(u, boom), "unexpected")
	assert.Contains(t, EmptyMessage(u, "main"), "main")
	assert.Contains(t, SuccessMessage(u, ""), u)
	assert.Contains(t, SuccessMessage(u, "Daily"), "(Daily)")
}
