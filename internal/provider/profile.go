package provider

import (
	"fmt"
	"sort"

	"asia2tv/internal/markup"
)

// NextPagePolicy decides what a listing without a next-page link means.
type NextPagePolicy string

const (
	// NextPageEnd treats a missing next-page link as the end of the listing.
	NextPageEnd NextPagePolicy = "end"

	// NextPageAssumeMore keeps paging while pages still carry items.
	NextPageAssumeMore NextPagePolicy = "assume-more"
)

// Valid reports whether p is a known policy.
func (p NextPagePolicy) Valid() bool {
	return p == NextPageEnd || p == NextPageAssumeMore
}

// Section is one browsable listing of the site.
type Section struct {
	Key  string `toml:"key"`  // Path fragment, e.g. "/movies"
	Name string `toml:"name"` // Display name
}

// HomeMap describes the titled blocks of the front page.
type HomeMap struct {
	Block string         `toml:"block"`
	Title markup.Field   `toml:"title"`
	Items markup.ItemMap `toml:"items"`
}

// DetailMap describes the fields of a detail page.
type DetailMap struct {
	Title   markup.Field `toml:"title"`
	Poster  markup.Field `toml:"poster"`
	Plot    markup.Field `toml:"plot"`
	Year    markup.Field `toml:"year"`
	Tags    markup.Field `toml:"tags"`
	Rating  markup.Field `toml:"rating"`
	Related string       `toml:"related"` // Scope searched with the listing map
}

// EpisodeMap describes the episode list of a series page. When Season is set,
// episodes are read per season block; otherwise Item is matched page-wide.
type EpisodeMap struct {
	Season     string       `toml:"season"`
	SeasonName markup.Field `toml:"season_name"`
	Item       string       `toml:"item"`
	Link       markup.Field `toml:"link"`
	Name       markup.Field `toml:"name"`
}

// LinkMap describes how players are discovered on a playback page.
type LinkMap struct {
	Inline    string       `toml:"inline"`     // Inline player nodes, usually iframes
	InlineSrc markup.Field `toml:"inline_src"` // Player URL of an inline node
	Server    string       `toml:"server"`     // Server list entries carrying a token
	Token     markup.Field `toml:"token"`
	Label     markup.Field `toml:"label"`

	AjaxPath   string `toml:"ajax_path"`   // Endpoint resolving a token into player markup
	AjaxAction string `toml:"ajax_action"` // Value of the "action" form field
	AjaxParam  string `toml:"ajax_param"`  // Form field carrying the token
}

// Profile is the complete markup configuration of one revision of the site.
type Profile struct {
	Sections   []Section         `toml:"sections"`
	SearchPath string            `toml:"search_path"` // Query string is appended, e.g. "/?s="
	Listing    markup.ItemMap    `toml:"listing"`
	NextPage   string            `toml:"next_page"`
	Classifier markup.Classifier `toml:"classifier"`
	Home       HomeMap           `toml:"home"`
	Detail     DetailMap         `toml:"detail"`
	Episodes   EpisodeMap        `toml:"episodes"`
	Links      LinkMap           `toml:"links"`
}

// Validate checks that the selectors every operation depends on are present.
func (p Profile) Validate() error {
	switch {
	case p.Listing.Item == "":
		return fmt.Errorf("listing.item is required")
	case len(p.Listing.Link) == 0 || len(p.Listing.Title) == 0:
		return fmt.Errorf("listing.link and listing.title are required")
	case len(p.Detail.Title) == 0:
		return fmt.Errorf("detail.title is required")
	case p.SearchPath == "":
		return fmt.Errorf("search_path is required")
	case p.Links.Inline == "" && p.Links.Server == "":
		return fmt.Errorf("links.inline or links.server is required")
	case p.Links.Server != "" && p.Links.AjaxPath == "":
		return fmt.Errorf("links.ajax_path is required with links.server")
	}
	return nil
}

var mainSections = []Section{
	{Key: "/", Name: "الصفحة الرئيسية"},
	{Key: "/newepisode", Name: "أحدث الحلقات"},
	{Key: "/movies", Name: "الأفلام"},
	{Key: "/series", Name: "المسلسلات"},
	{Key: "/status/live", Name: "يبث حاليا"},
	{Key: "/status/complete", Name: "أعمال مكتملة"},
}

func attr(selector, name string) markup.Strategy {
	return markup.Strategy{Selector: selector, Attr: name}
}

func text(selector string) markup.Strategy {
	return markup.Strategy{Selector: selector}
}

var builtin = map[string]Profile{
	// Current markup: article/postmovie cards and inline iframes.
	"asia2tv": {
		Sections:   mainSections,
		SearchPath: "/?s=",
		Listing: markup.ItemMap{
			Item:   "article, div.postmovie",
			Link:   markup.Field{attr("h3.post-box-title a, h4 > a, h3.postmovie-title a", "href"), attr("a", "href")},
			Title:  markup.Field{text("h3.post-box-title a, h4 > a, h3.postmovie-title a"), attr("a", "title")},
			Poster: markup.Field{attr("img", "data-src"), attr("img", "src")},
		},
		NextPage:   "a.next, .pagination a.next, link[rel=next]",
		Classifier: markup.Classifier{MovieMarkers: []string{"/movie/"}},
		Home: HomeMap{
			Block: "div.mov-cat-d",
			Title: markup.Field{text("h2.mov-cat-d-title")},
			Items: markup.ItemMap{
				Item:   "div.postmovie",
				Link:   markup.Field{attr("h3.postmovie-title a", "href"), attr("a", "href")},
				Title:  markup.Field{text("h3.postmovie-title a")},
				Poster: markup.Field{attr("img", "data-src"), attr("img", "src")},
			},
		},
		Detail: DetailMap{
			Title:   markup.Field{text("h1.name"), text("div.data h1")},
			Poster:  markup.Field{attr("div.poster > img", "src"), attr("div.poster img", "data-src")},
			Plot:    markup.Field{text("div.story")},
			Year:    markup.Field{text("ul.info li:contains('سنة الإنتاج') a"), text("ul.info li:contains('سنة') a")},
			Tags:    markup.Field{text("div.genres-single a[href*=genre]")},
			Rating:  markup.Field{text("span.rating-vote"), text("div.imdb span")},
			Related: "div.content-box",
		},
		Episodes: EpisodeMap{
			Item: "div#DivEpisodes a",
			Link: markup.Field{attr("", "data-url"), attr("", "href")},
			Name: markup.Field{text(""), attr("", "title")},
		},
		Links: LinkMap{
			Inline:    "iframe",
			InlineSrc: markup.Field{attr("", "data-src"), attr("", "src")},
		},
	},

	// Older markup: article.item cards, season blocks and tokenized servers.
	"asia2tv-legacy": {
		Sections:   mainSections,
		SearchPath: "/?s=",
		Listing: markup.ItemMap{
			Item:   "article.item",
			Link:   markup.Field{attr("div.poster a", "href")},
			Title:  markup.Field{text("div.data h3 a")},
			Poster: markup.Field{attr("img", "data-src"), attr("img", "src")},
		},
		NextPage:   "div.pagination a.arrow_pag, a.next",
		Classifier: markup.Classifier{MovieMarkers: []string{"/movie/"}},
		Home: HomeMap{
			Block: "div.mov-cat-d",
			Title: markup.Field{text("h2.mov-cat-d-title")},
			Items: markup.ItemMap{
				Item:   "div.postmovie",
				Link:   markup.Field{attr("a", "href")},
				Title:  markup.Field{text("h3.postmovie-title a")},
				Poster: markup.Field{attr("img", "data-src"), attr("img", "src")},
			},
		},
		Detail: DetailMap{
			Title:   markup.Field{text("div.data h1")},
			Poster:  markup.Field{attr("div.poster img", "src")},
			Plot:    markup.Field{text("div.story p"), text("div.story")},
			Year:    markup.Field{text("div.details ul.meta li:contains('سنة') a")},
			Tags:    markup.Field{text("div.details ul.meta li:contains('النوع') a")},
			Rating:  markup.Field{text("div.imdb span")},
			Related: "div.related div.items",
		},
		Episodes: EpisodeMap{
			Season:     "div#seasons div.se-c",
			SeasonName: markup.Field{text("h3")},
			Item:       "ul.episodes li",
			Link:       markup.Field{attr("a", "href")},
			Name:       markup.Field{text("a")},
		},
		Links: LinkMap{
			Inline:     "div.servers-list iframe",
			InlineSrc:  markup.Field{attr("", "src")},
			Server:     "div.servers-list ul li",
			Token:      markup.Field{attr("", "data-server")},
			Label:      markup.Field{text("")},
			AjaxPath:   "/wp-admin/admin-ajax.php",
			AjaxAction: "get_player_content",
			AjaxParam:  "server",
		},
	},

	// Block layout: div.Blocks rows, div.item cards and season_item blocks.
	"asia2tv-blocks": {
		Sections:   mainSections,
		SearchPath: "/?s=",
		Listing: markup.ItemMap{
			Item:   "div.items div.item",
			Link:   markup.Field{attr("div.poster a", "href")},
			Title:  markup.Field{text("div.data h2 a")},
			Poster: markup.Field{attr("div.poster img", "data-src"), attr("div.poster img", "src")},
		},
		NextPage:   "div.pagination a.next, a.next",
		Classifier: markup.Classifier{MovieMarkers: []string{"/movie/"}},
		Home: HomeMap{
			Block: "div.Blocks",
			Title: markup.Field{text("div.title-bar h2")},
			Items: markup.ItemMap{
				Item:   "div.item",
				Link:   markup.Field{attr("div.poster a", "href")},
				Title:  markup.Field{text("div.data h2 a")},
				Poster: markup.Field{attr("div.poster img", "data-src"), attr("div.poster img", "src")},
			},
		},
		Detail: DetailMap{
			Title:   markup.Field{text("div.data h1")},
			Poster:  markup.Field{attr("div.poster img", "src")},
			Plot:    markup.Field{text("div.story p")},
			Year:    markup.Field{text("div.meta span a[href*=release]")},
			Tags:    markup.Field{text("div.meta span a[href*=genre]")},
			Rating:  markup.Field{text("div.imdb span")},
			Related: "div.related",
		},
		Episodes: EpisodeMap{
			Season:     "div#seasons div.season_item",
			SeasonName: markup.Field{text("h3")},
			Item:       "ul.episodes li",
			Link:       markup.Field{attr("a", "href")},
			Name:       markup.Field{text("a")},
		},
		Links: LinkMap{
			Inline:    "div.servers-list iframe",
			InlineSrc: markup.Field{attr("", "src")},
		},
	},
}

// DefaultProfile is the profile used when the configuration names none.
const DefaultProfile = "asia2tv"

// Builtin returns the built-in profile called name.
func Builtin(name string) (Profile, bool) {
	p, ok := builtin[name]
	return p, ok
}

// BuiltinNames lists the built-in profiles in lexical order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
