// Package provider adapts the site's pages into catalog records and resolves
// playback pages into streams.
package provider

import (
	"context"
	"errors"

	"asia2tv/internal/extract"
	"asia2tv/internal/media"
)

// ErrNotFound is returned when a detail page carries no recognizable title.
var ErrNotFound = errors.New("content not found")

// Provider is the interface that content providers must implement.
type Provider interface {
	// Sections returns the browsable listings of the site.
	Sections() []Section

	// Home returns the titled rows of the front page.
	Home(ctx context.Context) ([]media.Row, error)

	// ListPage returns one page of a section listing. Pages start at 1.
	ListPage(ctx context.Context, section string, page int) (*media.Page, error)

	// Search returns the items matching a free-text query.
	Search(ctx context.Context, query string) ([]media.CatalogItem, error)

	// LoadDetail returns the full description of a detail page.
	LoadDetail(ctx context.Context, detailURL string) (*media.CatalogEntry, error)

	// Candidates returns the player references found on a playback page.
	Candidates(ctx context.Context, pageURL string) ([]media.StreamCandidate, error)

	// LoadLinks resolves every candidate of a playback page into sink.
	LoadLinks(ctx context.Context, pageURL string, sink extract.Sink) error

	// ResolveLinks resolves a playback page and returns what was found.
	ResolveLinks(ctx context.Context, pageURL string) ([]media.Stream, []media.Subtitle, error)
}

// Resolver turns a player URL into streams. *extract.Registry implements it.
type Resolver interface {
	Extract(ctx context.Context, embedURL, referer string, sink extract.Sink) error
}
