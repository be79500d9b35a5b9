// Package media defines shared types for the asia2tv application.
package media

import "strings"

// Kind represents whether a catalog item is a movie or a series.
type Kind int

const (
	Series Kind = iota
	Movie
)

func (k Kind) String() string {
	switch k {
	case Movie:
		return "movie"
	case Series:
		return "series"
	default:
		return "unknown"
	}
}

// ParseKind maps a stored kind name back to a Kind. Anything that is not
// "movie" is a series.
func ParseKind(s string) Kind {
	if s == "movie" {
		return Movie
	}
	return Series
}

// CatalogItem is one entry of a listing, search or related block.
type CatalogItem struct {
	Title     string // Display title
	DetailURL string // Absolute URL of the detail page, unique within one listing
	PosterURL string // Absolute poster URL, empty when the page has none
	Kind      Kind
}

// CatalogEntry is the full description of a detail page.
type CatalogEntry struct {
	CatalogItem

	Plot     string
	Year     int      // 0 when unknown
	Tags     []string // Genres, in page order
	Rating   *float64 // nil when the page carries no rating
	Related  []CatalogItem
	Episodes []Episode // Oldest first; always empty for movies
}

// Episode is one playable episode of a series.
type Episode struct {
	PlayURL string // Page holding the players for this episode
	Name    string
	Season  int // 0 when unknown
	Number  int // 0 when unknown
}

// Page is one page of a section listing.
type Page struct {
	Items   []CatalogItem
	HasMore bool
}

// Row is a titled block of items on the front page.
type Row struct {
	Title string
	Items []CatalogItem
}

// StreamCandidate is one discovered player reference on a playback page.
// Exactly one of EmbedURL and Token is set.
type StreamCandidate struct {
	Label    string // Server name shown on the page, may be empty
	EmbedURL string // Inline player URL found in the markup
	Token    string // Opaque server id that needs a follow-up request
}

// Inline reports whether the candidate can be resolved without a follow-up request.
func (c StreamCandidate) Inline() bool {
	return c.EmbedURL != ""
}

// Stream contains a resolved, playable stream.
type Stream struct {
	URL     string            // m3u8 or direct video URL
	Quality string            // e.g. "720p", empty when unknown
	Source  string            // Extractor or server that produced it
	Referer string            // Referer required by the host, if any
	Headers map[string]string // Extra request headers required for playback
}

// IsHLS reports whether the stream is an HLS playlist.
func (s Stream) IsHLS() bool {
	u := s.URL
	if i := strings.IndexAny(u, "?#"); i != -1 {
		u = u[:i]
	}
	return strings.HasSuffix(strings.ToLower(u), ".m3u8")
}

// Subtitle represents a subtitle track.
type Subtitle struct {
	Language string // e.g. "Arabic"
	Label    string // Display label
	URL      string // URL to the subtitle file (usually VTT or SRT)
}

// HistoryEntry represents a single entry in the watch history.
type HistoryEntry struct {
	DetailURL   string // Detail page of the movie or series
	Title       string
	Kind        Kind
	EpisodeURL  string // Play URL of the episode; equals DetailURL for movies
	EpisodeName string
	Season      int
	Episode     int
	Position    float64 // Last playback position in seconds
	Duration    float64 // Total duration in seconds
}
