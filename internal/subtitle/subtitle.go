// Package subtitle picks caption tracks by language and stages them in a
// private temporary directory for the player.
package subtitle

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"asia2tv/internal/httputil"
	"asia2tv/internal/media"
)

// aliases maps a configured language to the spellings hosts use in labels.
var aliases = map[string][]string{
	"arabic":  {"arabic", "العربية", "عربي", "ar"},
	"english": {"english", "الإنجليزية", "انجليزي", "en"},
	"korean":  {"korean", "الكورية", "ko"},
	"chinese": {"chinese", "الصينية", "zh"},
}

func names(language string) []string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if a, ok := aliases[lang]; ok {
		return a
	}
	return []string{lang}
}

func matches(sub media.Subtitle, language string) bool {
	fields := []string{strings.ToLower(sub.Language), strings.ToLower(sub.Label)}
	for _, n := range names(language) {
		for _, f := range fields {
			// two-letter codes must match whole
			if len([]rune(n)) <= 2 {
				if f == n {
					return true
				}
				continue
			}
			if strings.Contains(f, n) {
				return true
			}
		}
	}
	return false
}

// Filter returns subtitles matching the preferred language (case-insensitive).
func Filter(subtitles []media.Subtitle, language string) []media.Subtitle {
	if language == "" {
		return subtitles
	}

	var matched []media.Subtitle
	for _, sub := range subtitles {
		if matches(sub, language) {
			matched = append(matched, sub)
		}
	}
	return matched
}

// BestMatch returns the best matching subtitle for the given language.
// Tracks without "SDH" or "forced" in the label are preferred.
func BestMatch(subtitles []media.Subtitle, language string) *media.Subtitle {
	filtered := Filter(subtitles, language)
	if len(filtered) == 0 {
		return nil
	}

	for _, sub := range filtered {
		label := strings.ToLower(sub.Label)
		if !strings.Contains(label, "sdh") && !strings.Contains(label, "forced") {
			return &sub
		}
	}
	return &filtered[0]
}

// TempDir manages a secure temporary directory for subtitle files.
type TempDir struct {
	path string
}

// NewTempDir creates a randomized temporary directory for subtitle files.
func NewTempDir() (*TempDir, error) {
	dir, err := os.MkdirTemp("", "asia2tv-subs-*")
	if err != nil {
		return nil, fmt.Errorf("creating subtitle temp dir: %w", err)
	}
	return &TempDir{path: dir}, nil
}

// Cleanup removes the temporary directory and all contents.
func (t *TempDir) Cleanup() {
	if t.path != "" {
		os.RemoveAll(t.path)
	}
}

// Download fetches a subtitle file into the temp directory and returns the local
// path. The body is decoded by its declared charset and written as UTF-8.
func (t *TempDir) Download(ctx context.Context, client *httputil.Client, sub media.Subtitle, referer string) (string, error) {
	if err := httputil.ValidateURL(sub.URL); err != nil {
		return "", fmt.Errorf("invalid subtitle URL: %w", err)
	}

	filename := "subtitle.vtt"
	if u, err := url.Parse(sub.URL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			filename = httputil.SanitizeFilename(base)
		}
	}
	localPath, err := httputil.SafeDownloadPath(t.path, filename)
	if err != nil {
		return "", err
	}

	headers := map[string]string{}
	if referer != "" {
		headers["Referer"] = referer
	}
	body, err := client.Text(ctx, sub.URL, headers)
	if err != nil {
		return "", fmt.Errorf("downloading subtitle: %w", err)
	}

	if err := os.WriteFile(localPath, []byte(body), 0600); err != nil {
		return "", fmt.Errorf("writing subtitle file: %w", err)
	}
	return localPath, nil
}
