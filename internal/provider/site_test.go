package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asia2tv/internal/httputil"
	"asia2tv/internal/media"
)

func serveFixture(t *testing.T, name string) http.HandlerFunc {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err, "reading test fixture %s", name)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}
}

// newTestSite serves mux over TLS and returns a Site scraping it with the named profile.
func newTestSite(t *testing.T, mux *http.ServeMux, profile string, opts Options) (*Site, *httptest.Server) {
	t.Helper()
	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)

	p, ok := Builtin(profile)
	require.True(t, ok, "profile %s", profile)

	opts.Base = srv.URL
	opts.Profile = p
	opts.Client = httputil.NewClient(httputil.Config{}).WithHTTPClient(srv.Client())
	site, err := NewSite(opts)
	require.NoError(t, err)
	return site, srv
}

func catalogMux(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	search := serveFixture(t, "listing.html")
	noResults := serveFixture(t, "listing-empty.html")
	home := serveFixture(t, "home.html")
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Query().Has("s"):
			if r.URL.Query().Get("s") == "alpha beta" {
				search(w, r)
				return
			}
			noResults(w, r)
		case r.URL.Path == "/":
			home(w, r)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/movies", serveFixture(t, "listing.html"))
	mux.HandleFunc("/movies/page/2/", serveFixture(t, "listing-last.html"))
	mux.HandleFunc("/movies/page/3/", serveFixture(t, "listing-empty.html"))
	mux.HandleFunc("/series/beta/", serveFixture(t, "detail-series.html"))
	mux.HandleFunc("/series/zeta/", serveFixture(t, "detail-seasons.html"))
	mux.HandleFunc("/movie/alpha/", serveFixture(t, "detail-movie.html"))
	mux.HandleFunc("/series/gone/", serveFixture(t, "detail-missing.html"))
	return mux
}

func TestNewSiteValidation(t *testing.T) {
	p, _ := Builtin(DefaultProfile)

	_, err := NewSite(Options{Base: "http://asia2tv.com", Profile: p})
	assert.Error(t, err, "plain http base")

	_, err = NewSite(Options{Base: "https://asia2tv.com", Profile: Profile{}})
	assert.Error(t, err, "empty profile")

	_, err = NewSite(Options{Base: "https://asia2tv.com", Profile: p, NextPage: "sometimes"})
	assert.Error(t, err, "unknown policy")

	s, err := NewSite(Options{Base: "https://asia2tv.com/", Profile: p})
	require.NoError(t, err)
	assert.Equal(t, "https://asia2tv.com", s.Base())
	assert.Equal(t, DefaultWorkers, s.workers)
	assert.Equal(t, NextPageEnd, s.nextPage)
}

func TestBuiltinProfilesValid(t *testing.T) {
	names := BuiltinNames()
	assert.Equal(t, []string{"asia2tv", "asia2tv-blocks", "asia2tv-legacy"}, names)
	for _, n := range names {
		p, _ := Builtin(n)
		assert.NoError(t, p.Validate(), n)
		assert.Len(t, p.Sections, 6, n)
	}
}

func TestSectionURL(t *testing.T) {
	p, _ := Builtin(DefaultProfile)
	s, err := NewSite(Options{Base: "https://asia2tv.com", Profile: p})
	require.NoError(t, err)

	assert.Equal(t, "https://asia2tv.com/", s.sectionURL("/", 1))
	assert.Equal(t, "https://asia2tv.com/movies", s.sectionURL("/movies", 1))
	assert.Equal(t, "https://asia2tv.com/movies/page/2/", s.sectionURL("/movies", 2))
	assert.Equal(t, "https://asia2tv.com/status/live/page/3/", s.sectionURL("status/live", 3))
	assert.Equal(t, "https://asia2tv.com/page/2/", s.sectionURL("/", 2))
}

func TestSections(t *testing.T) {
	s, _ := newTestSite(t, catalogMux(t), DefaultProfile, Options{})
	sections := s.Sections()
	require.Len(t, sections, 6)
	assert.Equal(t, Section{Key: "/movies", Name: "الأفلام"}, sections[2])

	sections[0].Name = "changed"
	assert.NotEqual(t, "changed", s.Sections()[0].Name)
}

func TestListPage(t *testing.T) {
	s, srv := newTestSite(t, catalogMux(t), DefaultProfile, Options{})
	ctx := context.Background()

	page, err := s.ListPage(ctx, "/movies", 1)
	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, []media.CatalogItem{
		{Title: "Alpha", DetailURL: srv.URL + "/movie/alpha/", PosterURL: srv.URL + "/img/alpha.jpg", Kind: media.Movie},
		{Title: "مسلسل بيتا", DetailURL: srv.URL + "/series/beta/", PosterURL: srv.URL + "/img/beta.jpg", Kind: media.Series},
		{Title: "Gamma", DetailURL: "https://asia2tv.com/movie/gamma/", PosterURL: "https://asia2tv.com/img/gamma.jpg", Kind: media.Movie},
	}, page.Items)

	again, err := s.ListPage(ctx, "/movies", 1)
	require.NoError(t, err)
	assert.Equal(t, page, again, "listing the same page twice")

	last, err := s.ListPage(ctx, "/movies", 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "Delta", last.Items[0].Title)
	assert.False(t, last.HasMore)

	empty, err := s.ListPage(ctx, "/movies", 3)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.False(t, empty.HasMore, "an empty page never has more")

	_, err = s.ListPage(ctx, "/movies", 0)
	assert.Error(t, err)

	_, err = s.ListPage(ctx, "/missing", 1)
	assert.ErrorIs(t, err, httputil.ErrFetchFailed)
}

func TestListPageAssumeMore(t *testing.T) {
	s, _ := newTestSite(t, catalogMux(t), DefaultProfile, Options{NextPage: NextPageAssumeMore})
	ctx := context.Background()

	last, err := s.ListPage(ctx, "/movies", 2)
	require.NoError(t, err)
	assert.True(t, last.HasMore)

	empty, err := s.ListPage(ctx, "/movies", 3)
	require.NoError(t, err)
	assert.False(t, empty.HasMore)
}

func TestSearch(t *testing.T) {
	s, _ := newTestSite(t, catalogMux(t), DefaultProfile, Options{})
	ctx := context.Background()

	items, err := s.Search(ctx, "  alpha   beta ")
	require.NoError(t, err)
	assert.Len(t, items, 3)

	none, err := s.Search(ctx, "لا شيء")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = s.Search(ctx, "   ")
	assert.Error(t, err)
}

func TestHome(t *testing.T) {
	s, srv := newTestSite(t, catalogMux(t), DefaultProfile, Options{})

	rows, err := s.Home(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2, "blocks without items are dropped")

	assert.Equal(t, "أحدث الحلقات", rows[0].Title)
	require.Len(t, rows[0].Items, 2)
	assert.Equal(t, srv.URL+"/img/beta.jpg", rows[0].Items[0].PosterURL)
	assert.Equal(t, media.Series, rows[0].Items[1].Kind)

	assert.Equal(t, "الأفلام", rows[1].Title)
	assert.Equal(t, media.Movie, rows[1].Items[0].Kind)
}

func TestLoadDetailSeries(t *testing.T) {
	s, srv := newTestSite(t, catalogMux(t), DefaultProfile, Options{})

	entry, err := s.LoadDetail(context.Background(), srv.URL+"/series/beta/")
	require.NoError(t, err)

	assert.Equal(t, "مسلسل بيتا", entry.Title)
	assert.Equal(t, media.Series, entry.Kind)
	assert.Equal(t, srv.URL+"/img/beta-large.jpg", entry.PosterURL)
	assert.Equal(t, "قصة المسلسل", entry.Plot)
	assert.Equal(t, 2021, entry.Year)
	assert.Equal(t, []string{"دراما", "رومانسي"}, entry.Tags)
	require.NotNil(t, entry.Rating)
	assert.InDelta(t, 8.4, *entry.Rating, 0.001)

	require.Len(t, entry.Related, 1, "the page itself is not related to itself")
	assert.Equal(t, "Alpha", entry.Related[0].Title)

	assert.Equal(t, []media.Episode{
		{PlayURL: srv.URL + "/episode/beta-1/", Name: "الحلقة 1", Number: 1},
		{PlayURL: srv.URL + "/episode/beta-2/", Name: "الحلقة 2", Number: 2},
		{PlayURL: srv.URL + "/episode/beta-3/", Name: "الحلقة 3", Number: 3},
	}, entry.Episodes)
}

func TestLoadDetailMovieWithoutRating(t *testing.T) {
	s, srv := newTestSite(t, catalogMux(t), DefaultProfile, Options{})

	entry, err := s.LoadDetail(context.Background(), srv.URL+"/movie/alpha/")
	require.NoError(t, err)

	assert.Equal(t, "Alpha", entry.Title)
	assert.Equal(t, media.Movie, entry.Kind)
	assert.Nil(t, entry.Rating)
	assert.Equal(t, 2019, entry.Year)
	assert.Equal(t, "فيلم كوري.", entry.Plot)
	assert.Equal(t, []string{"أكشن"}, entry.Tags)
	assert.Equal(t, srv.URL+"/img/alpha-large.jpg", entry.PosterURL)
	assert.Empty(t, entry.Episodes, "movies carry no episodes")
	assert.Empty(t, entry.Related)
}

func TestLoadDetailSeasons(t *testing.T) {
	s, srv := newTestSite(t, catalogMux(t), "asia2tv-legacy", Options{})

	entry, err := s.LoadDetail(context.Background(), srv.URL+"/series/zeta/")
	require.NoError(t, err)

	assert.Equal(t, "Zeta", entry.Title)
	assert.Equal(t, []media.Episode{
		{PlayURL: srv.URL + "/episode/zeta-1-1/", Name: "الحلقة 1", Season: 1, Number: 1},
		{PlayURL: srv.URL + "/episode/zeta-2-1/", Name: "الحلقة 1", Season: 2, Number: 1},
		{PlayURL: srv.URL + "/episode/zeta-2-2/", Name: "الحلقة 2", Season: 2, Number: 2},
	}, entry.Episodes)
}

func TestLoadDetailNotFound(t *testing.T) {
	s, srv := newTestSite(t, catalogMux(t), DefaultProfile, Options{})

	_, err := s.LoadDetail(context.Background(), srv.URL+"/series/gone/")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LoadDetail(context.Background(), srv.URL+"/series/unknown/")
	assert.ErrorIs(t, err, httputil.ErrFetchFailed)
	assert.NotErrorIs(t, err, ErrNotFound)
}
