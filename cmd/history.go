package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"asia2tv/internal/config"
	"asia2tv/internal/history"
	"asia2tv/internal/media"
	"asia2tv/internal/ui"
)

var flagRemove bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Resume from watch history",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVar(&flagRemove, "remove", false, "Remove the selected entry instead of playing it")
}

func historyRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path, err := config.HistoryPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if flagJSON {
		return printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	idx, err := ui.Select("History", history.FormatForDisplay(entries))
	if err != nil {
		return err
	}
	selected := entries[idx]

	if flagRemove {
		ok, err := ui.Confirm(fmt.Sprintf("Remove %s?", selected.Title))
		if err != nil || !ok {
			return err
		}
		if err := store.Remove(ctx, selected.DetailURL, selected.EpisodeURL); err != nil {
			return fmt.Errorf("removing entry: %w", err)
		}
		fmt.Printf("Removed %s\n", selected.Title)
		return nil
	}

	logger.Debug("resuming", "title", selected.Title, "episode", selected.EpisodeURL)
	item := media.CatalogItem{Title: selected.Title, DetailURL: selected.DetailURL, Kind: selected.Kind}
	return resolveAndPlay(ctx, item, &selected)
}
