package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"asia2tv/internal/media"
	"asia2tv/internal/provider"
)

var infoCmd = &cobra.Command{
	Use:   "info <url>",
	Short: "Show the details of a movie or series page",
	Args:  cobra.ExactArgs(1),
	RunE:  infoRun,
}

var linksCmd = &cobra.Command{
	Use:   "links <url>",
	Short: "Resolve the players of an episode or movie page into streams",
	Args:  cobra.ExactArgs(1),
	RunE:  linksRun,
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B91C1C"))
	labelStyle   = lipgloss.NewStyle().Faint(true)
)

func infoRun(cmd *cobra.Command, args []string) error {
	entry, err := site.LoadDetail(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading details: %w", err)
	}
	if flagJSON {
		return printJSON(entry)
	}
	writeEntry(os.Stdout, entry)
	return nil
}

func writeEntry(w io.Writer, e *media.CatalogEntry) {
	fmt.Fprintln(w, headingStyle.Render(provider.FormatDisplayTitle(e.CatalogItem)))
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), value)
		}
	}
	field("URL", e.DetailURL)
	if e.Year > 0 {
		field("Year", fmt.Sprint(e.Year))
	}
	if e.Rating != nil {
		field("Rating", fmt.Sprintf("%.1f", *e.Rating))
	}
	field("Tags", strings.Join(e.Tags, ", "))
	field("Poster", e.PosterURL)
	if e.Plot != "" {
		fmt.Fprintf(w, "\n%s\n", e.Plot)
	}

	if len(e.Episodes) > 0 {
		fmt.Fprintf(w, "\n%s\n", headingStyle.Render(fmt.Sprintf("Episodes (%d)", len(e.Episodes))))
		for _, ep := range e.Episodes {
			fmt.Fprintf(w, "  %s  %s\n", provider.FormatEpisode(ep), labelStyle.Render(ep.PlayURL))
		}
	}
	if len(e.Related) > 0 {
		fmt.Fprintf(w, "\n%s\n", headingStyle.Render("Related"))
		for _, it := range e.Related {
			fmt.Fprintf(w, "  %s  %s\n", provider.FormatDisplayTitle(it), labelStyle.Render(it.DetailURL))
		}
	}
}

func linksRun(cmd *cobra.Command, args []string) error {
	streams, subs, err := site.ResolveLinks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("resolving players: %w", err)
	}
	if flagJSON {
		return printJSON(map[string]any{"streams": streams, "subtitles": subs})
	}
	if len(streams) == 0 {
		return fmt.Errorf("no playable streams found")
	}
	for _, s := range streams {
		quality := s.Quality
		if quality == "" {
			quality = "?"
		}
		fmt.Printf("%-6s %-12s %s\n", quality, s.Source, s.URL)
	}
	for _, sub := range subs {
		fmt.Printf("%-6s %-12s %s\n", "sub", sub.Label, sub.URL)
	}
	return nil
}
