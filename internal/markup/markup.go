// Package markup turns parsed pages into catalog records using declarative
// field maps. Each field lists several selector strategies so that a change in
// the site's markup only needs a new strategy, not new code.
package markup

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"asia2tv/internal/httputil"
	"asia2tv/internal/media"
)

// Strategy reads one value from a node.
type Strategy struct {
	Selector string `toml:"selector"` // Empty selects the node itself
	Attr     string `toml:"attr"`     // Empty reads the trimmed text
}

// Field is an ordered list of strategies; the first non-blank value wins.
type Field []Strategy

// Value returns the first non-blank value produced by the strategies.
func (f Field) Value(s *goquery.Selection) (string, bool) {
	for _, st := range f {
		if v := st.first(s); v != "" {
			return v, true
		}
	}
	return "", false
}

// Values returns every non-blank value of the first strategy that yields any.
func (f Field) Values(s *goquery.Selection) []string {
	for _, st := range f {
		var out []string
		st.nodes(s).Each(func(_ int, n *goquery.Selection) {
			if v := st.read(n); v != "" {
				out = append(out, v)
			}
		})
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func (st Strategy) nodes(s *goquery.Selection) *goquery.Selection {
	if st.Selector == "" {
		return s
	}
	return s.Find(st.Selector)
}

func (st Strategy) first(s *goquery.Selection) string {
	var v string
	st.nodes(s).EachWithBreak(func(_ int, n *goquery.Selection) bool {
		v = st.read(n)
		return v == ""
	})
	return v
}

func (st Strategy) read(n *goquery.Selection) string {
	if st.Attr == "" {
		return strings.Join(strings.Fields(n.Text()), " ")
	}
	return strings.TrimSpace(n.AttrOr(st.Attr, ""))
}

// ItemMap describes how to read CatalogItems out of a listing.
type ItemMap struct {
	Item   string `toml:"item"` // Selector matching one node per item
	Link   Field  `toml:"link"`
	Title  Field  `toml:"title"`
	Poster Field  `toml:"poster"`
}

// Classifier decides the Kind of an item from its detail URL.
type Classifier struct {
	MovieMarkers  []string `toml:"movie_markers"`  // Path fragments such as "/movie/"
	SeriesMarkers []string `toml:"series_markers"` // Path fragments such as "/serie/"
}

// Kind returns Movie when the URL path carries a movie marker and Series when
// it carries a series marker. Unmarked URLs are Series, unless series markers
// are configured, in which case they are Movie.
func (c Classifier) Kind(detailURL string) media.Kind {
	p := detailURL
	if u, err := url.Parse(detailURL); err == nil {
		p = u.Path
	}
	if containsAny(p, c.MovieMarkers) {
		return media.Movie
	}
	if containsAny(p, c.SeriesMarkers) {
		return media.Series
	}
	if len(c.SeriesMarkers) > 0 {
		return media.Movie
	}
	return media.Series
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Extract reads CatalogItems from every node under root matching m.Item.
// Nodes without a usable link or title are skipped. The result keeps document
// order and holds each detail URL once.
func Extract(root *goquery.Selection, m ItemMap, base *url.URL, c Classifier) []media.CatalogItem {
	var items []media.CatalogItem
	seen := make(map[string]bool)

	root.Find(m.Item).Each(func(_ int, s *goquery.Selection) {
		item, ok := extractItem(s, m, base, c)
		if !ok || seen[item.DetailURL] {
			return
		}
		seen[item.DetailURL] = true
		items = append(items, item)
	})

	return items
}

func extractItem(s *goquery.Selection, m ItemMap, base *url.URL, c Classifier) (media.CatalogItem, bool) {
	href, ok := m.Link.Value(s)
	if !ok {
		return media.CatalogItem{}, false
	}
	detailURL := httputil.FixURL(base, href)
	title, ok := m.Title.Value(s)
	if detailURL == "" || !ok {
		return media.CatalogItem{}, false
	}

	item := media.CatalogItem{
		Title:     title,
		DetailURL: detailURL,
		Kind:      c.Kind(detailURL),
	}
	if poster, ok := m.Poster.Value(s); ok {
		item.PosterURL = httputil.FixURL(base, poster)
	}
	return item, true
}

// Digits returns the integer formed by the first run of digits in s.
// Arabic-Indic and Eastern Arabic-Indic digits are accepted.
func Digits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		d, ok := digit(r)
		if ok {
			b.WriteByte(byte('0' + d))
			continue
		}
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// Number returns the first decimal number in s, accepting "." or the Arabic
// decimal separator.
func Number(s string) (float64, bool) {
	var b strings.Builder
	dot := false
	for _, r := range s {
		if d, ok := digit(r); ok {
			b.WriteByte(byte('0' + d))
			continue
		}
		if (r == '.' || r == '٫') && b.Len() > 0 && !dot {
			dot = true
			b.WriteByte('.')
			continue
		}
		if b.Len() > 0 {
			break
		}
	}
	v := strings.TrimSuffix(b.String(), ".")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func digit(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= '٠' && r <= '٩':
		return int(r - '٠'), true
	case r >= '۰' && r <= '۹':
		return int(r - '۰'), true
	}
	return 0, false
}
