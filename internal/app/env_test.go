package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// LoadEnvFiles reads KEY=VALUE pairs and populates os.Environ.
func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")
	t.Setenv("BAZ", "")
	t.Setenv("QUX", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nexport BAR=\"beta gamma\"\nBAZ=delta # trailing comment\nQUX='x # y'\nnot a pair\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := LoadEnvFiles(envPath); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}

	want := map[string]string{"FOO": "alpha", "BAR": "beta gamma", "BAZ": "delta", "QUX": "x # y"}
	for k, v := range want {
		if got := os.Getenv(k); got != v {
			t.Fatalf("%s=%q, want %q", k, got, v)
		}
	}
}

// Later files override earlier ones; missing files are skipped.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}

	if err := LoadEnvFiles(a, filepath.Join(dir, "missing"), "", b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestApplyEnvOverrides_ReplacesValues(t *testing.T) {
	t.Setenv(EnvOutputDir, "/env/out")
	t.Setenv(EnvConcurrency, "not-a-number")
	t.Setenv(EnvVerbose, "off")

	cfg := Config{OutputDir: "file/out", Concurrency: 4, Verbose: true}
	ApplyEnvOverrides(&cfg)
	if cfg.OutputDir != "/env/out" {
		t.Fatalf("OutputDir=%q", cfg.OutputDir)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("invalid env value must be ignored, got %d", cfg.Concurrency)
	}
	if cfg.Verbose {
		t.Fatalf("VERBOSE=off should disable verbose")
	}
}

func TestApplyEnvOverrides_AllKeys(t *testing.T) {
	t.Setenv(EnvWebhookURL, "https://hooks.example/abc")
	t.Setenv(EnvFont, "/fonts/Pretendard.ttf")
	t.Setenv(EnvSelector, "#content")
	t.Setenv(EnvConcurrency, "3")
	t.Setenv(EnvFetchTimeout, "45s")
	t.Setenv(EnvVerbose, "yes")
	t.Setenv(EnvOutputDir, "")

	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)
	if cfg.WebhookURL != "https://hooks.example/abc" || cfg.FontPath != "/fonts/Pretendard.ttf" || cfg.Selector != "#content" {
		t.Fatalf("unexpected webhook/font/selector: %+v", cfg)
	}
	if cfg.Concurrency != 3 || cfg.FetchTimeout != 45*time.Second || !cfg.Verbose {
		t.Fatalf("unexpected limits: %+v", cfg)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Fatalf("unset key must leave OutputDir alone, got %q", cfg.OutputDir)
	}
}

func TestLoadEnvFiles_FeedsOverrides(t *testing.T) {
	t.Setenv(EnvWebhookURL, "")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PAGESNAP_WEBHOOK_URL=https://hooks.example/from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadEnvFiles(path); err != nil {
		t.Fatalf("LoadEnvFiles: %v", err)
	}
	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)
	if cfg.WebhookURL != "https://hooks.example/from-file" {
		t.Fatalf("WebhookURL=%q", cfg.WebhookURL)
	}
}
