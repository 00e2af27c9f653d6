package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// manifestEntry records one artifact written by a page run.
type manifestEntry struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	SHA256 string `json:"sha256"`
	Bytes  int    `json:"bytes"`
}

// manifestMeta captures the details of one page run.
type manifestMeta struct {
	RunID          string    `json:"run_id"`
	Target         string    `json:"target"`
	URL            string    `json:"url"`
	Title          string    `json:"title,omitempty"`
	Selector       string    `json:"selector"`
	Blocks         int       `json:"blocks"`
	Images         int       `json:"images"`
	ImageFallbacks int       `json:"image_fallbacks"`
	Warnings       []string  `json:"warnings,omitempty"`
	Version        string    `json:"version"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of b.
func computeSHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func newManifestEntry(kind, path string, content []byte) manifestEntry {
	return manifestEntry{
		Kind:   kind,
		Name:   filepath.Base(path),
		SHA256: computeSHA256Hex(content),
		Bytes:  len(content),
	}
}

// marshalManifestJSON encodes the sidecar manifest.
func marshalManifestJSON(meta manifestMeta, entries []manifestEntry) ([]byte, error) {
	if entries == nil {
		entries = []manifestEntry{}
	}
	payload := struct {
		Meta      manifestMeta    `json:"meta"`
		Artifacts []manifestEntry `json:"artifacts"`
	}{Meta: meta, Artifacts: entries}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func writeManifest(path string, meta manifestMeta, entries []manifestEntry) error {
	b, err := marshalManifestJSON(meta, entries)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
