// Package player launches external media players. Every invocation uses an
// explicit argument slice, so titles and URLs are never interpreted by a shell.
package player

import (
	"context"
	"fmt"
	"sort"

	"asia2tv/internal/media"
)

// Request describes one playback.
type Request struct {
	Stream    media.Stream
	Title     string
	Start     float64 // Resume position in seconds
	SubFile   string  // Local subtitle file, optional
	UserAgent string  // Sent with the stream requests, optional
}

// Player is the interface for media player implementations.
type Player interface {
	// Play starts playback and returns the last playback position.
	Play(ctx context.Context, req Request) (float64, error)

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	switch name {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: name}
	default:
		return &MPV{}
	}
}

// headerFields returns the stream headers other than Referer and User-Agent as
// "Key: Value" pairs in a stable order.
func headerFields(s media.Stream) []string {
	keys := make([]string, 0, len(s.Headers))
	for k := range s.Headers {
		if k == "Referer" || k == "User-Agent" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, k+": "+s.Headers[k])
	}
	return fields
}

// FormatPosition formats seconds as H:MM:SS or M:SS.
func FormatPosition(seconds float64) string {
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
