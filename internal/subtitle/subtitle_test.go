package subtitle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"asia2tv/internal/httputil"
	"asia2tv/internal/media"
)

func TestFilter(t *testing.T) {
	subs := []media.Subtitle{
		{Language: "Arabic", Label: "Arabic"},
		{Language: "العربية", Label: "العربية - forced"},
		{Language: "ar", Label: "ar"},
		{Language: "English", Label: "English"},
		{Language: "Korean", Label: "Korean"},
		{Language: "", Label: "Bahasa"}, // "ar" inside a word is not Arabic
	}

	tests := []struct {
		lang     string
		expected int
	}{
		{"arabic", 3},
		{"Arabic", 3},
		{"english", 1},
		{"korean", 1},
		{"german", 0},
		{"", 6},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			got := Filter(subs, tt.lang)
			if len(got) != tt.expected {
				t.Errorf("Filter(%q) returned %d subs, want %d", tt.lang, len(got), tt.expected)
			}
		})
	}
}

func TestBestMatch(t *testing.T) {
	subs := []media.Subtitle{
		{Language: "Arabic", Label: "Arabic (forced)", URL: "https://example.com/forced.vtt"},
		{Language: "Arabic", Label: "العربية", URL: "https://example.com/ar.vtt"},
		{Language: "English", Label: "English - SDH", URL: "https://example.com/sdh.vtt"},
	}

	best := BestMatch(subs, "arabic")
	if best == nil {
		t.Fatal("BestMatch returned nil for arabic")
	}
	if best.URL != "https://example.com/ar.vtt" {
		t.Errorf("BestMatch preferred %q, want the full track", best.URL)
	}

	best = BestMatch(subs, "english")
	if best == nil || best.Label != "English - SDH" {
		t.Errorf("BestMatch should fall back to the only english track, got %v", best)
	}

	if best := BestMatch(subs, "japanese"); best != nil {
		t.Error("BestMatch should return nil for unmatched language")
	}
}

func TestTempDir(t *testing.T) {
	tmpDir, err := NewTempDir()
	if err != nil {
		t.Fatalf("NewTempDir() error: %v", err)
	}
	defer tmpDir.Cleanup()

	if tmpDir.path == "" {
		t.Error("temp dir path is empty")
	}
}

func TestDownload(t *testing.T) {
	var referer string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "text/vtt; charset=utf-8")
		fmt.Fprint(w, "WEBVTT\n\n00:00.000 --> 00:01.000\nمرحبا\n")
	}))
	defer srv.Close()

	tmpDir, err := NewTempDir()
	if err != nil {
		t.Fatal(err)
	}
	defer tmpDir.Cleanup()

	client := httputil.NewClient(httputil.Config{}).WithHTTPClient(srv.Client())
	local, err := tmpDir.Download(context.Background(), client,
		media.Subtitle{URL: srv.URL + "/subs/../ar.vtt?token=1"}, "https://vidbom.com/embed-1.html")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	if filepath.Dir(local) != tmpDir.path {
		t.Errorf("subtitle written outside temp dir: %s", local)
	}
	if filepath.Base(local) != "ar.vtt" {
		t.Errorf("filename = %q, want ar.vtt", filepath.Base(local))
	}
	if referer != "https://vidbom.com/embed-1.html" {
		t.Errorf("referer = %q", referer)
	}
	data, _ := os.ReadFile(local)
	if string(data) != "WEBVTT\n\n00:00.000 --> 00:01.000\nمرحبا\n" {
		t.Errorf("content = %q", data)
	}
}

func TestDownloadRejectsInsecureURL(t *testing.T) {
	tmpDir, err := NewTempDir()
	if err != nil {
		t.Fatal(err)
	}
	defer tmpDir.Cleanup()

	_, err = tmpDir.Download(context.Background(), httputil.NewClient(httputil.Config{}),
		media.Subtitle{URL: "http://example.com/ar.vtt"}, "")
	if err == nil {
		t.Error("Download() should reject plain http")
	}
}
