package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"asia2tv/internal/httputil"
	"asia2tv/internal/media"
)

var (
	// objectPattern matches flat JS object literals such as {file:"..",label:".."}.
	objectPattern = regexp.MustCompile(`\{[^{}]*\}`)

	// sourceListPattern matches sources:["https://..."] arrays of plain strings.
	sourceListPattern = regexp.MustCompile(`sources\s*:\s*\[\s*["']([^"']+)["']`)

	// keyPatterns read individual properties out of an object literal.
	filePattern  = regexp.MustCompile(`["']?file["']?\s*:\s*["']([^"']+)["']`)
	labelPattern = regexp.MustCompile(`["']?label["']?\s*:\s*["']([^"']*)["']`)
	kindPattern  = regexp.MustCompile(`["']?kind["']?\s*:\s*["']([^"']*)["']`)
)

// Packed scrapes JW Player pages whose setup script may be packed.
type Packed struct {
	client *httputil.Client
	hosts  []string
}

// NewPacked creates an extractor for the given player domains.
func NewPacked(client *httputil.Client, hosts ...string) *Packed {
	return &Packed{client: client, hosts: hosts}
}

func (p *Packed) Name() string { return "packed" }

func (p *Packed) CanExtract(embedURL string) bool {
	return matchHost(embedURL, p.hosts)
}

// Extract fetches the player page and emits every source and caption track of its setup script.
func (p *Packed) Extract(ctx context.Context, embedURL, referer string, sink Sink) error {
	headers := map[string]string{}
	if referer != "" {
		headers["Referer"] = referer
	}
	html, err := p.client.Text(ctx, embedURL, headers)
	if err != nil {
		return fmt.Errorf("fetching player page: %w", err)
	}

	script := html
	if unpacked := UnpackAll(html); len(unpacked) > 0 {
		script = strings.Join(unpacked, "\n") + "\n" + html
	}

	streams, subs := scanPlayerSetup(script)
	if len(streams) == 0 {
		return ErrNoStream
	}

	page, _ := url.Parse(embedURL)
	for _, s := range streams {
		s.URL = httputil.FixURL(page, s.URL)
		if s.URL == "" {
			continue
		}
		s.Source = hostOf(embedURL)
		s.Referer = embedURL
		sink.AddStream(s)
	}
	for _, sub := range subs {
		sub.URL = httputil.FixURL(page, sub.URL)
		if sub.URL == "" {
			continue
		}
		sink.AddSubtitle(sub)
	}
	return nil
}

// scanPlayerSetup pulls stream sources and caption tracks out of a player setup script.
func scanPlayerSetup(script string) ([]media.Stream, []media.Subtitle) {
	var (
		streams []media.Stream
		subs    []media.Subtitle
		seen    = make(map[string]bool)
	)

	for _, obj := range objectPattern.FindAllString(script, -1) {
		fm := filePattern.FindStringSubmatch(obj)
		if fm == nil || seen[fm[1]] {
			continue
		}
		file := fm[1]
		label := submatch(labelPattern, obj)
		kind := strings.ToLower(submatch(kindPattern, obj))

		switch {
		case kind == "captions" || kind == "subtitles" || isSubtitleFile(file):
			seen[file] = true
			subs = append(subs, media.Subtitle{Language: label, Label: label, URL: file})
		case kind == "thumbnails" || isImageFile(file):
			// preview sprites, not playable
		default:
			seen[file] = true
			streams = append(streams, media.Stream{URL: file, Quality: label})
		}
	}

	for _, m := range sourceListPattern.FindAllStringSubmatch(script, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			streams = append(streams, media.Stream{URL: m[1]})
		}
	}

	return streams, subs
}

func submatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func isSubtitleFile(file string) bool {
	f := strings.ToLower(file)
	return strings.Contains(f, ".vtt") || strings.Contains(f, ".srt")
}

func isImageFile(file string) bool {
	f := strings.ToLower(file)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp"} {
		if strings.Contains(f, ext) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
