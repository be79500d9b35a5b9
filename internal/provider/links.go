package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"asia2tv/internal/extract"
	"asia2tv/internal/httputil"
	"asia2tv/internal/media"
)

// playerSrcPattern finds the player URL in the markup returned for a server token.
var playerSrcPattern = regexp.MustCompile(`src=["'](.*?)["']`)

// playerResponse is the reply of the server-token endpoint.
type playerResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
}

// Candidates returns the player references of a playback page. Inline players
// are used when present; server tokens are only read from pages without any.
func (s *Site) Candidates(ctx context.Context, pageURL string) ([]media.StreamCandidate, error) {
	doc, err := s.fetch(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("getting playback page: %w", err)
	}
	return s.candidates(doc), nil
}

func (s *Site) candidates(doc *goquery.Document) []media.StreamCandidate {
	l := s.profile.Links
	var out []media.StreamCandidate
	seen := make(map[string]bool)

	if l.Inline != "" {
		doc.Find(l.Inline).Each(func(_ int, n *goquery.Selection) {
			src, ok := l.InlineSrc.Value(n)
			if !ok {
				return
			}
			u := httputil.FixURL(s.base, src)
			if u == "" || seen[u] {
				return
			}
			seen[u] = true
			label, _ := l.Label.Value(n)
			out = append(out, media.StreamCandidate{Label: label, EmbedURL: u})
		})
	}
	if len(out) > 0 || l.Server == "" {
		return out
	}

	doc.Find(l.Server).Each(func(_ int, n *goquery.Selection) {
		token, ok := l.Token.Value(n)
		if !ok || seen[token] {
			return
		}
		seen[token] = true
		label, _ := l.Label.Value(n)
		out = append(out, media.StreamCandidate{Label: label, Token: token})
	})
	return out
}

// LoadLinks resolves every candidate of pageURL into sink. Candidates are
// resolved concurrently and independently: one that fails is logged and
// skipped, and the others still contribute. An error is returned only when the
// playback page itself cannot be read.
func (s *Site) LoadLinks(ctx context.Context, pageURL string, sink extract.Sink) error {
	if s.resolver == nil {
		return errors.New("no stream resolver configured")
	}
	cands, err := s.Candidates(ctx, pageURL)
	if err != nil {
		return err
	}
	s.log.Debug("found players", "page", pageURL, "count", len(cands))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, c := range cands {
		c := c
		g.Go(func() error {
			if err := s.resolve(ctx, pageURL, c, sink); err != nil {
				s.log.Debug("player failed", "label", c.Label, "url", c.EmbedURL, "token", c.Token, "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Site) resolve(ctx context.Context, pageURL string, c media.StreamCandidate, sink extract.Sink) error {
	embedURL := c.EmbedURL
	if !c.Inline() {
		var err error
		if embedURL, err = s.tokenEmbed(ctx, pageURL, c.Token); err != nil {
			return err
		}
	}
	return s.resolver.Extract(ctx, embedURL, pageURL, sink)
}

// tokenEmbed asks the server-token endpoint for the player markup of token and
// returns the player URL it carries.
func (s *Site) tokenEmbed(ctx context.Context, pageURL, token string) (string, error) {
	if err := httputil.ValidateToken(token); err != nil {
		return "", fmt.Errorf("invalid server token: %w", err)
	}
	l := s.profile.Links
	form := url.Values{}
	form.Set("action", l.AjaxAction)
	form.Set(l.AjaxParam, token)

	body, err := s.client.PostForm(ctx, s.base.JoinPath(l.AjaxPath).String(), map[string]string{"Referer": pageURL}, form)
	if err != nil {
		return "", fmt.Errorf("requesting player %s: %w", token, err)
	}

	var resp playerResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", fmt.Errorf("parsing player response: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("player %s: endpoint reported failure", token)
	}
	m := playerSrcPattern.FindStringSubmatch(resp.Data)
	if m == nil {
		return "", fmt.Errorf("player %s: no src in response", token)
	}
	embedURL := httputil.FixURL(s.base, m[1])
	if embedURL == "" {
		return "", fmt.Errorf("player %s: unusable src %q", token, m[1])
	}
	return embedURL, nil
}

// ResolveLinks resolves pageURL and returns the collected streams and subtitles.
func (s *Site) ResolveLinks(ctx context.Context, pageURL string) ([]media.Stream, []media.Subtitle, error) {
	var c extract.Collector
	if err := s.LoadLinks(ctx, pageURL, &c); err != nil {
		return nil, nil, err
	}
	return c.Streams(), c.Subtitles(), nil
}
