package app

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// DateLayout formats the {date} placeholder and the dated output directory.
	DateLayout = "2006-01-02"
	// stampLayout names the artifacts of one run.
	stampLayout = "20060102_150405"
	// DatePlaceholder is replaced in target URLs.
	DatePlaceholder = "{date}"
)

// TargetDate returns the date a run at now refers to: today when the local
// hour is at or after cutoffHour, otherwise yesterday.
func TargetDate(now time.Time, cutoffHour int) time.Time {
	if now.Hour() >= cutoffHour {
		return now
	}
	return now.AddDate(0, 0, -1)
}

// ExpandURL substitutes every {date} in raw.
func ExpandURL(raw, date string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), DatePlaceholder, date)
}

// pageDir is the output directory of one target for one date.
func pageDir(outputDir, date, name string) string {
	return filepath.Join(outputDir, date, strings.TrimSpace(name))
}

// artifactPaths are the files a page run may produce.
type artifactPaths struct {
	Data     string
	Document string
	Manifest string
}

// newArtifactPaths names the files of a run started at t inside dir.
func newArtifactPaths(dir string, t time.Time) artifactPaths {
	stamp := t.Format(stampLayout)
	return artifactPaths{
		Data:     filepath.Join(dir, "data_"+stamp+".json"),
		Document: filepath.Join(dir, "data_"+stamp+".pdf"),
		Manifest: filepath.Join(dir, "manifest_"+stamp+".json"),
	}
}
