package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"asia2tv/internal/httputil"
)

// maxEmbedDepth bounds wrapper pages nested inside wrapper pages.
const maxEmbedDepth = 3

type depthKey struct{}

// Embed follows wrapper pages that only host another player in an iframe.
type Embed struct {
	client   *httputil.Client
	registry *Registry
	hosts    []string
}

// NewEmbed creates a wrapper-page extractor that hands inner players back to registry.
func NewEmbed(client *httputil.Client, registry *Registry, hosts ...string) *Embed {
	return &Embed{client: client, registry: registry, hosts: hosts}
}

func (e *Embed) Name() string { return "embed" }

func (e *Embed) CanExtract(embedURL string) bool {
	return matchHost(embedURL, e.hosts)
}

// Extract resolves every iframe on the wrapper page through the registry.
func (e *Embed) Extract(ctx context.Context, embedURL, referer string, sink Sink) error {
	depth, _ := ctx.Value(depthKey{}).(int)
	if depth >= maxEmbedDepth {
		return fmt.Errorf("wrapper pages nested deeper than %d", maxEmbedDepth)
	}
	ctx = context.WithValue(ctx, depthKey{}, depth+1)

	headers := map[string]string{}
	if referer != "" {
		headers["Referer"] = referer
	}
	doc, err := e.client.Document(ctx, embedURL, headers)
	if err != nil {
		return fmt.Errorf("fetching wrapper page: %w", err)
	}

	var inner []string
	doc.Find("iframe[src], iframe[data-src]").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("data-src", "")
		if src == "" {
			src = s.AttrOr("src", "")
		}
		if u := httputil.FixURL(doc.Url, src); u != "" && u != embedURL {
			inner = append(inner, u)
		}
	})
	if len(inner) == 0 {
		return ErrNoStream
	}

	var errs []error
	for _, u := range inner {
		if err := e.registry.Extract(ctx, u, embedURL, sink); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(inner) {
		return errors.Join(errs...)
	}
	return nil
}
