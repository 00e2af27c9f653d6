package app

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTargetDate_Cutoff(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	cases := []struct {
		name   string
		now    time.Time
		cutoff int
		want   string
	}{
		{"before cutoff uses yesterday", time.Date(2024, 3, 5, 21, 59, 0, 0, loc), 22, "2024-03-04"},
		{"at cutoff uses today", time.Date(2024, 3, 5, 22, 0, 0, 0, loc), 22, "2024-03-05"},
		{"after cutoff uses today", time.Date(2024, 3, 5, 23, 30, 0, 0, loc), 22, "2024-03-05"},
		{"month boundary", time.Date(2024, 3, 1, 8, 0, 0, 0, loc), 22, "2024-02-29"},
		{"zero cutoff always today", time.Date(2024, 3, 5, 0, 0, 0, 0, loc), 0, "2024-03-05"},
		{"cutoff 24 always yesterday", time.Date(2024, 3, 5, 23, 59, 0, 0, loc), 24, "2024-03-04"},
	}
	for _, tc := range cases {
		if got := TargetDate(tc.now, tc.cutoff).Format(DateLayout); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestExpandURL(t *testing.T) {
	got := ExpandURL(" https://example.com/news/{date}/today?d={date} ", "2024-03-05")
	if got != "https://example.com/news/2024-03-05/today?d=2024-03-05" {
		t.Fatalf("ExpandURL=%q", got)
	}
	if got := ExpandURL("https://example.com/static", "2024-03-05"); got != "https://example.com/static" {
		t.Fatalf("ExpandURL without placeholder=%q", got)
	}
}

func TestArtifactPaths(t *testing.T) {
	dir := pageDir("out", "2024-03-05", " news ")
	if dir != filepath.Join("out", "2024-03-05", "news") {
		t.Fatalf("pageDir=%q", dir)
	}
	p := newArtifactPaths(dir, time.Date(2024, 3, 5, 23, 4, 5, 0, time.UTC))
	if filepath.Base(p.Data) != "data_20240305_230405.json" {
		t.Fatalf("Data=%q", p.Data)
	}
	if filepath.Base(p.Document) != "data_20240305_230405.pdf" {
		t.Fatalf("Document=%q", p.Document)
	}
	if filepath.Dir(p.Manifest) != dir {
		t.Fatalf("Manifest=%q", p.Manifest)
	}
}
