package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/hyperifyio/pagesnap/cmd/pagesnap"
	"github.com/hyperifyio/pagesnap/internal/app"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := main.NewMain().Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func newServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu    sync.Mutex
		hooks []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><main><h1>Hello</h1><p>world</p></main></body></html>`))
	})
	mux.HandleFunc("/hook", func(w http.ResponseWriter, r *http.Request) {
		content := ""
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			content = body["content"]
		} else if err := r.ParseMultipartForm(8 << 20); err == nil {
			content = r.FormValue("content")
		}
		mu.Lock()
		hooks = append(hooks, content)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), hooks...)
	}
}

func noEnv(t *testing.T) string {
	t.Helper()
	for _, k := range []string{app.EnvWebhookURL, app.EnvOutputDir, app.EnvFont, app.EnvSelector, app.EnvConcurrency, app.EnvFetchTimeout, app.EnvVerbose} {
		t.Setenv(k, "")
	}
	return "--env-file=" + filepath.Join(t.TempDir(), "none.env")
}

func TestMain_Run_Help(t *testing.T) {
	stdout, _, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "--target")
	assert.Contains(t, stdout, "--webhook")
	assert.Contains(t, stdout, "--fetch-attempts")
	assert.Contains(t, stdout, "--max-redirects")
}

func TestMain_Run_Version(t *testing.T) {
	stdout, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, app.BuildVersion)
}

func TestMain_Run_RequiresTargets(t *testing.T) {
	_, _, err := run(t, noEnv(t), "--output", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one target")
}

func TestMain_Run_InvalidTarget(t *testing.T) {
	_, _, err := run(t, noEnv(t), "--target", "just-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NAME=URL")
}

func TestMain_Run_SnapshotsAndNotifies(t *testing.T) {
	envFlag := noEnv(t)
	srv, hooks := newServer(t)
	out := t.TempDir()

	_, stderr, err := run(t, envFlag,
		"--target", "greeting="+srv.URL+"/page?x=1",
		"--output", out,
		"--webhook", srv.URL+"/hook",
		"--cutoff-hour", "0",
	)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(out, "*", "greeting", "data_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"Hello\nworld"}`, string(raw))

	pdfs, _ := filepath.Glob(filepath.Join(out, "*", "greeting", "data_*.pdf"))
	assert.Len(t, pdfs, 1)

	got := hooks()
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "[crawl started]"))
	assert.True(t, strings.HasPrefix(got[1], "[pdf warning]"), "no font configured")
	assert.True(t, strings.HasPrefix(got[2], "[crawl succeeded]"))
	assert.Contains(t, stderr, "page finished")
}

func TestMain_Run_FlagsOverrideConfigFile(t *testing.T) {
	envFlag := noEnv(t)
	srv, _ := newServer(t)
	dir := t.TempDir()
	fromFile := filepath.Join(dir, "from-file")
	fromFlag := filepath.Join(dir, "from-flag")
	cfgPath := filepath.Join(dir, "pagesnap.yaml")
	cfg := "targets:\n  - name: greeting\n    url: " + srv.URL + "/page\noutput: " + fromFile + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, _, err := run(t, envFlag, "--config", cfgPath, "--output", fromFlag)
	require.NoError(t, err)

	_, err = os.Stat(fromFile)
	assert.True(t, os.IsNotExist(err), "config file output must be overridden")
	matches, _ := filepath.Glob(filepath.Join(fromFlag, "*", "greeting", "data_*.json"))
	assert.Len(t, matches, 1)
}

func TestMain_Run_EnvOverridesConfigFile(t *testing.T) {
	envFlag := noEnv(t)
	srv, _ := newServer(t)
	dir := t.TempDir()
	fromEnv := filepath.Join(dir, "from-env")
	cfgPath := filepath.Join(dir, "pagesnap.yaml")
	cfg := "targets:\n  - name: greeting\n    url: " + srv.URL + "/page\noutput: " + filepath.Join(dir, "from-file") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	t.Setenv(app.EnvOutputDir, fromEnv)

	_, _, err := run(t, envFlag, "--config", cfgPath)
	require.NoError(t, err)
	matches, _ := filepath.Glob(filepath.Join(fromEnv, "*", "greeting", "data_*.json"))
	assert.Len(t, matches, 1)
}

func TestMain_Run_FailedPageReturnsErrPagesFailed(t *testing.T) {
	envFlag := noEnv(t)
	srv, _ := newServer(t)

	_, _, err := run(t, envFlag,
		"--target", "gone="+srv.URL+"/missing",
		"--target", "ok="+srv.URL+"/page",
		"--output", t.TempDir(),
	)
	require.ErrorIs(t, err, app.ErrPagesFailed)
}
