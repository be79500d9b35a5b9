package extract

import (
	"context"
	"net/url"
	"path"
	"strings"

	"asia2tv/internal/httputil"
	"asia2tv/internal/media"
)

// Hosts lists the player domains handled by the page-scraping extractors.
type Hosts struct {
	Packed []string `toml:"packed_hosts"`
	Embed  []string `toml:"embed_hosts"`
}

// DefaultHosts returns the player domains seen on the site.
func DefaultHosts() Hosts {
	return Hosts{
		Packed: []string{
			"vidbom.com", "vidbm.com", "vadbam.com",
			"vidshar.com", "viidshar.com",
			"govid.me", "uqload.com", "uqload.co",
			"streamwish.com", "filelions.to",
		},
		Embed: []string{"asia2tv.com"},
	}
}

// Default builds the registry used by the site adapter.
func Default(client *httputil.Client, hosts Hosts) *Registry {
	r := NewRegistry(Direct{}, NewPacked(client, hosts.Packed...))
	r.Register(NewEmbed(client, r, hosts.Embed...))
	return r
}

// matchHost reports whether the host of rawURL is one of hosts or a subdomain of one.
func matchHost(rawURL string, hosts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Direct passes through URLs that already point at a media file or playlist.
type Direct struct{}

func (Direct) Name() string { return "direct" }

func (Direct) CanExtract(embedURL string) bool {
	u, err := url.Parse(embedURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u8", ".mp4", ".mkv", ".webm":
		return true
	}
	return false
}

func (Direct) Extract(_ context.Context, embedURL, referer string, sink Sink) error {
	sink.AddStream(media.Stream{
		URL:     embedURL,
		Source:  "direct",
		Referer: referer,
	})
	return nil
}
