// Package extract resolves third-party player URLs into playable streams.
// Extractors are keyed by URL pattern and held in a Registry; the site
// adapter hands every discovered player URL to the registry.
package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"asia2tv/internal/media"
)

var (
	// ErrUnsupported is returned when no extractor recognizes a URL.
	ErrUnsupported = errors.New("unsupported host")

	// ErrNoStream is returned when a player page holds no recognizable stream.
	ErrNoStream = errors.New("no stream found")
)

// Sink receives resolved streams and subtitle tracks.
// Implementations must be safe for concurrent use.
type Sink interface {
	AddStream(media.Stream)
	AddSubtitle(media.Subtitle)
}

// Extractor resolves player URLs of one family of hosts.
type Extractor interface {
	// Name identifies the extractor in logs and Stream.Source.
	Name() string

	// CanExtract reports whether the extractor handles embedURL.
	CanExtract(embedURL string) bool

	// Extract emits zero or more streams and subtitles for embedURL.
	// referer is the page the player was embedded in.
	Extract(ctx context.Context, embedURL, referer string, sink Sink) error
}

// Registry dispatches player URLs to the first extractor that accepts them.
type Registry struct {
	mu         sync.RWMutex
	extractors []Extractor
}

// NewRegistry creates a registry holding exts in priority order.
func NewRegistry(exts ...Extractor) *Registry {
	return &Registry{extractors: exts}
}

// Register appends an extractor with the lowest priority.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, e)
}

// Lookup returns the extractor responsible for embedURL.
func (r *Registry) Lookup(embedURL string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.extractors {
		if e.CanExtract(embedURL) {
			return e, true
		}
	}
	return nil, false
}

// Extract resolves embedURL with the matching extractor.
func (r *Registry) Extract(ctx context.Context, embedURL, referer string, sink Sink) error {
	e, ok := r.Lookup(embedURL)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupported, embedURL)
	}
	if err := e.Extract(ctx, embedURL, referer, sink); err != nil {
		return fmt.Errorf("%s: %w", e.Name(), err)
	}
	return nil
}

// Collector is an append-only Sink that keeps everything it receives.
type Collector struct {
	mu        sync.Mutex
	streams   []media.Stream
	subtitles []media.Subtitle
	seen      map[string]bool
}

// AddStream records s unless a stream with the same URL was already recorded.
func (c *Collector) AddStream(s media.Stream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[s.URL] {
		return
	}
	c.seen[s.URL] = true
	c.streams = append(c.streams, s)
}

// AddSubtitle records sub unless its URL was already recorded.
func (c *Collector) AddSubtitle(sub media.Subtitle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen["sub:"+sub.URL] {
		return
	}
	c.seen["sub:"+sub.URL] = true
	c.subtitles = append(c.subtitles, sub)
}

// Streams returns a copy of the recorded streams.
func (c *Collector) Streams() []media.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]media.Stream(nil), c.streams...)
}

// Subtitles returns a copy of the recorded subtitles.
func (c *Collector) Subtitles() []media.Subtitle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]media.Subtitle(nil), c.subtitles...)
}
