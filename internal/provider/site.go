package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"asia2tv/internal/httputil"
	"asia2tv/internal/markup"
	"asia2tv/internal/media"
)

// DefaultWorkers bounds concurrent candidate resolution when Options leaves it unset.
const DefaultWorkers = 4

// Options configures a Site.
type Options struct {
	Base     string         // Site root, e.g. "https://asia2tv.com"
	Profile  Profile        // Markup of the site revision being scraped
	Client   *httputil.Client
	Resolver Resolver       // Resolves player URLs; required by LoadLinks
	Logger   *log.Logger    // nil discards
	Workers  int            // Concurrent candidate resolutions
	NextPage NextPagePolicy // Meaning of a listing without a next-page link
}

// Site implements Provider for one configured revision of the site.
type Site struct {
	base     *url.URL
	profile  Profile
	client   *httputil.Client
	resolver Resolver
	log      *log.Logger
	workers  int
	nextPage NextPagePolicy
}

// NewSite validates opts and creates a Site.
func NewSite(opts Options) (*Site, error) {
	base := strings.TrimRight(opts.Base, "/")
	if err := httputil.ValidateURL(base); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if err := opts.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	s := &Site{
		base:     u,
		profile:  opts.Profile,
		client:   opts.Client,
		resolver: opts.Resolver,
		log:      opts.Logger,
		workers:  opts.Workers,
		nextPage: opts.NextPage,
	}
	if s.client == nil {
		s.client = httputil.NewClient(httputil.Config{})
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	if s.workers < 1 {
		s.workers = DefaultWorkers
	}
	if s.nextPage == "" {
		s.nextPage = NextPageEnd
	}
	if !s.nextPage.Valid() {
		return nil, fmt.Errorf("unknown next-page policy %q", s.nextPage)
	}
	return s, nil
}

// Base returns the site root.
func (s *Site) Base() string { return s.base.String() }

// Sections returns the configured listings.
func (s *Site) Sections() []Section {
	out := make([]Section, len(s.profile.Sections))
	copy(out, s.profile.Sections)
	return out
}

// Home returns the titled blocks of the front page. Blocks without items are dropped.
func (s *Site) Home(ctx context.Context) ([]media.Row, error) {
	doc, err := s.fetch(ctx, s.base.JoinPath("/").String(), nil)
	if err != nil {
		return nil, fmt.Errorf("getting home page: %w", err)
	}

	h := s.profile.Home
	if h.Block == "" {
		items := s.items(doc.Selection, s.profile.Listing)
		if len(items) == 0 {
			return nil, nil
		}
		return []media.Row{{Items: items}}, nil
	}

	var rows []media.Row
	doc.Find(h.Block).Each(func(_ int, block *goquery.Selection) {
		items := s.items(block, h.Items)
		if len(items) == 0 {
			return
		}
		title, _ := h.Title.Value(block)
		rows = append(rows, media.Row{Title: title, Items: items})
	})
	return rows, nil
}

// ListPage returns one page of a section. Page 1 is the bare section URL and
// page N is the section URL followed by page/N/.
func (s *Site) ListPage(ctx context.Context, section string, page int) (*media.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	pageURL := s.sectionURL(section, page)

	doc, err := s.fetch(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s page %d: %w", section, page, err)
	}

	items := s.items(doc.Selection, s.profile.Listing)
	return &media.Page{Items: items, HasMore: s.hasMore(doc, len(items))}, nil
}

func (s *Site) sectionURL(section string, page int) string {
	if !strings.HasPrefix(section, "/") {
		section = "/" + section
	}
	if page == 1 {
		return s.base.JoinPath(section).String()
	}
	return s.base.JoinPath(section, "page", strconv.Itoa(page)+"/").String()
}

func (s *Site) hasMore(doc *goquery.Document, count int) bool {
	if count == 0 {
		return false
	}
	if s.profile.NextPage != "" && doc.Find(s.profile.NextPage).Length() > 0 {
		return true
	}
	return s.nextPage == NextPageAssumeMore
}

// Search returns the items matching query. No matches is not an error.
func (s *Site) Search(ctx context.Context, query string) ([]media.CatalogItem, error) {
	q := httputil.EncodeQuery(query)
	if q == "" {
		return nil, errors.New("empty search query")
	}
	searchURL := strings.TrimRight(s.base.String(), "/") + s.profile.SearchPath + q

	doc, err := s.fetch(ctx, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	items := s.items(doc.Selection, s.profile.Listing)
	if items == nil {
		items = []media.CatalogItem{}
	}
	return items, nil
}

// LoadDetail reads a detail page. Only the title is required; every other
// field is read independently and left empty when the page lacks it.
func (s *Site) LoadDetail(ctx context.Context, detailURL string) (*media.CatalogEntry, error) {
	doc, err := s.fetch(ctx, detailURL, nil)
	if err != nil {
		return nil, fmt.Errorf("getting details: %w", err)
	}

	d := s.profile.Detail
	title, ok := d.Title.Value(doc.Selection)
	if !ok {
		return nil, fmt.Errorf("%s: %w", detailURL, ErrNotFound)
	}

	entry := &media.CatalogEntry{
		CatalogItem: media.CatalogItem{
			Title:     title,
			DetailURL: detailURL,
			Kind:      s.profile.Classifier.Kind(detailURL),
		},
		Tags: d.Tags.Values(doc.Selection),
	}
	if poster, ok := d.Poster.Value(doc.Selection); ok {
		entry.PosterURL = httputil.FixURL(s.base, poster)
	}
	if plot, ok := d.Plot.Value(doc.Selection); ok {
		entry.Plot = plot
	}
	if year, ok := d.Year.Value(doc.Selection); ok {
		entry.Year, _ = markup.Digits(year)
	}
	if rating, ok := d.Rating.Value(doc.Selection); ok {
		if v, ok := markup.Number(rating); ok {
			entry.Rating = &v
		}
	}
	if d.Related != "" {
		for _, it := range s.items(doc.Find(d.Related), s.profile.Listing) {
			if it.DetailURL != detailURL {
				entry.Related = append(entry.Related, it)
			}
		}
	}
	if entry.Kind == media.Series {
		entry.Episodes = s.episodes(doc)
	}

	return entry, nil
}

// episodes reads the episode list and returns it oldest first. The site lists
// the newest episode at the top.
func (s *Site) episodes(doc *goquery.Document) []media.Episode {
	m := s.profile.Episodes
	if m.Item == "" {
		return nil
	}

	var eps []media.Episode
	if m.Season == "" {
		doc.Find(m.Item).Each(func(_ int, n *goquery.Selection) {
			if ep, ok := s.episode(n, 0); ok {
				eps = append(eps, ep)
			}
		})
	} else {
		doc.Find(m.Season).Each(func(i int, block *goquery.Selection) {
			season := i + 1
			if name, ok := m.SeasonName.Value(block); ok {
				if n, ok := markup.Digits(name); ok {
					season = n
				}
			}
			block.Find(m.Item).Each(func(_ int, n *goquery.Selection) {
				if ep, ok := s.episode(n, season); ok {
					eps = append(eps, ep)
				}
			})
		})
	}

	for i, j := 0, len(eps)-1; i < j; i, j = i+1, j-1 {
		eps[i], eps[j] = eps[j], eps[i]
	}
	return eps
}

func (s *Site) episode(n *goquery.Selection, season int) (media.Episode, bool) {
	m := s.profile.Episodes
	link, ok := m.Link.Value(n)
	if !ok {
		return media.Episode{}, false
	}
	playURL := httputil.FixURL(s.base, link)
	if playURL == "" {
		return media.Episode{}, false
	}
	name, _ := m.Name.Value(n)
	num, _ := markup.Digits(name)
	return media.Episode{PlayURL: playURL, Name: name, Season: season, Number: num}, true
}

func (s *Site) items(root *goquery.Selection, m markup.ItemMap) []media.CatalogItem {
	return markup.Extract(root, m, s.base, s.profile.Classifier)
}

func (s *Site) fetch(ctx context.Context, rawURL string, headers map[string]string) (*goquery.Document, error) {
	s.log.Debug("fetching page", "url", rawURL)
	return s.client.Document(ctx, rawURL, headers)
}
