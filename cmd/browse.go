package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"asia2tv/internal/media"
	"asia2tv/internal/provider"
	"asia2tv/internal/ui"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Browse the rows of the front page",
	Args:  cobra.NoArgs,
	RunE:  homeRun,
}

func homeRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rows, err := site.Home(ctx)
	if err != nil {
		return fmt.Errorf("loading front page: %w", err)
	}
	if flagJSON {
		return printJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Println("Nothing found on the front page.")
		return nil
	}

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = fmt.Sprintf("%s (%d)", rowTitle(r), len(r.Items))
	}
	idx, err := ui.Select("Row", labels)
	if err != nil {
		return err
	}

	return pickAndPlay(ctx, rowTitle(rows[idx]), rows[idx].Items)
}

func rowTitle(r media.Row) string {
	if r.Title == "" {
		return "Latest"
	}
	return r.Title
}

var flagPage int

var browseCmd = &cobra.Command{
	Use:   "browse [section]",
	Short: "Browse a section listing page by page",
	Long: `Browse a section of the site. Without an argument the configured sections
are offered. A section can also be given as a site path such as /category/movies/.`,
	Args: cobra.MaximumNArgs(1),
	RunE: browseRun,
}

func init() {
	browseCmd.Flags().IntVar(&flagPage, "page", 1, "Page to start from")
}

// nextPageLabel is appended to a listing that has more pages.
const nextPageLabel = ">> الصفحة التالية"

func browseRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	section, err := parseSectionArg(args)
	if err != nil {
		return err
	}
	if flagPage < 1 {
		return fmt.Errorf("page must be at least 1, got %d", flagPage)
	}

	for page := flagPage; ; page++ {
		logger.Debug("listing", "section", section.Key, "page", page)
		listing, err := site.ListPage(ctx, section.Key, page)
		if err != nil {
			return fmt.Errorf("listing %s: %w", section.Name, err)
		}
		if flagJSON {
			return printJSON(listing)
		}
		if len(listing.Items) == 0 {
			fmt.Printf("No items on page %d of %s.\n", page, section.Name)
			return nil
		}

		idx, err := selectListing(fmt.Sprintf("%s [%d]", section.Name, page), listing)
		if err != nil {
			return err
		}
		if idx < len(listing.Items) {
			return resolveAndPlay(ctx, listing.Items[idx], nil)
		}
	}
}

// selectListing returns an index into the page items, or len(items) when the
// user asked for the next page.
func selectListing(prompt string, listing *media.Page) (int, error) {
	labels := make([]string, 0, len(listing.Items)+1)
	for _, it := range listing.Items {
		labels = append(labels, provider.FormatDisplayTitle(it))
	}
	if listing.HasMore {
		labels = append(labels, nextPageLabel)
	}
	return ui.Select(prompt, labels)
}

// parseSectionArg maps the optional argument to a section, matching a
// configured key or name first and accepting a raw site path otherwise.
func parseSectionArg(args []string) (provider.Section, error) {
	sections := site.Sections()
	if len(args) == 0 {
		if len(sections) == 0 {
			return provider.Section{}, fmt.Errorf("no sections configured; pass a section path")
		}
		labels := make([]string, len(sections))
		for i, s := range sections {
			labels[i] = s.Name
		}
		idx, err := ui.Select("Section", labels)
		if err != nil {
			return provider.Section{}, err
		}
		return sections[idx], nil
	}

	arg := strings.TrimSpace(args[0])
	for _, s := range sections {
		if strings.EqualFold(arg, s.Name) || strings.Trim(arg, "/") == strings.Trim(s.Key, "/") {
			return s, nil
		}
	}
	if !strings.HasPrefix(arg, "/") {
		return provider.Section{}, fmt.Errorf("unknown section %q", arg)
	}
	return provider.Section{Key: arg, Name: arg}, nil
}
