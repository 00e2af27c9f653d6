// Package record serializes the flattened page text as a JSON data record.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperifyio/pagesnap/internal/render"
)

// Record is the single-key data artifact.
type Record struct {
	Content string `json:"content"`
}

// Serialize wraps flat in a Record and encodes it as indented UTF-8 JSON with
// non-ASCII and HTML characters left unescaped. Whitespace-only input yields
// render.ErrNoArtifact.
func Serialize(flat string) ([]byte, error) {
	if strings.TrimSpace(flat) == "" {
		return nil, render.ErrNoArtifact
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(Record{Content: flat}); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse decodes a payload produced by Serialize.
func Parse(data []byte) (Record, error) {
	var r Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}
