// Package render holds what the artifact renderers share.
package render

import "errors"

// ErrNoArtifact is returned by a renderer whose input is absent or empty.
// Callers must not write a file in that case.
var ErrNoArtifact = errors.New("no artifact")
