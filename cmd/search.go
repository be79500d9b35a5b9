package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"asia2tv/internal/config"
	"asia2tv/internal/download"
	"asia2tv/internal/extract"
	"asia2tv/internal/history"
	"asia2tv/internal/media"
	"asia2tv/internal/player"
	"asia2tv/internal/provider"
	"asia2tv/internal/subtitle"
	"asia2tv/internal/ui"
)

// searchRun is the default command: asia2tv <query>
func searchRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	if query == "" {
		var err error
		query, err = ui.Input("Search")
		if err != nil {
			return fmt.Errorf("no search query provided: %w", err)
		}
	}

	logger.Debug("searching", "query", query)
	results, err := site.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if flagJSON {
		return printJSON(results)
	}
	if len(results) == 0 {
		return fmt.Errorf("no results found for %q", query)
	}
	return pickAndPlay(ctx, "Select", results)
}

// pickAndPlay lets the user choose one of items and plays it.
func pickAndPlay(ctx context.Context, prompt string, items []media.CatalogItem) error {
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = provider.FormatDisplayTitle(it)
	}

	idx, err := ui.Select(prompt, labels)
	if err != nil {
		return err
	}

	selected := items[idx]
	logger.Debug("selected", "title", selected.Title, "url", selected.DetailURL, "kind", selected.Kind)
	return resolveAndPlay(ctx, selected, nil)
}

// resolveAndPlay loads the detail page, picks an episode for series and plays
// it. A history entry, when given, preselects its episode and resume position.
func resolveAndPlay(ctx context.Context, selected media.CatalogItem, resume *media.HistoryEntry) error {
	entry, err := site.LoadDetail(ctx, selected.DetailURL)
	if err != nil {
		return fmt.Errorf("loading details: %w", err)
	}

	target := media.HistoryEntry{
		DetailURL:  entry.DetailURL,
		Title:      entry.Title,
		Kind:       entry.Kind,
		EpisodeURL: entry.DetailURL,
	}
	title := entry.Title

	if entry.Kind == media.Series {
		if len(entry.Episodes) == 0 {
			return fmt.Errorf("no episodes found for %q", entry.Title)
		}
		ep, err := chooseEpisode(entry.Episodes, resume)
		if err != nil {
			return err
		}
		target.EpisodeURL = ep.PlayURL
		target.EpisodeName = ep.Name
		target.Season = ep.Season
		target.Episode = ep.Number
		title = entry.Title + " - " + provider.FormatEpisode(ep)
		logger.Debug("episode", "name", ep.Name, "url", ep.PlayURL)
	}

	streams, subs, err := site.ResolveLinks(ctx, target.EpisodeURL)
	if err != nil {
		return fmt.Errorf("resolving players: %w", err)
	}
	stream, ok := extract.Pick(streams, cfg.Quality)
	if !ok {
		return fmt.Errorf("no playable streams found for %q", title)
	}
	logger.Debug("stream", "url", stream.URL, "quality", stream.Quality, "source", stream.Source)

	if flagJSON {
		return printJSON(map[string]any{
			"title":     title,
			"page":      target.EpisodeURL,
			"stream":    stream,
			"streams":   streams,
			"subtitles": subs,
		})
	}

	var subFile string
	if !flagNoSubs && len(subs) > 0 {
		if best := subtitle.BestMatch(subs, cfg.SubsLanguage); best != nil {
			tmpDir, err := subtitle.NewTempDir()
			if err == nil {
				defer tmpDir.Cleanup()
				subFile, err = tmpDir.Download(ctx, client, *best, stream.Referer)
				if err != nil {
					logger.Debug("subtitle download failed", "err", err)
					subFile = ""
				}
			}
		}
	}

	if flagDownload != "" {
		dir, err := downloadDir()
		if err != nil {
			return err
		}
		outputPath, err := download.Download(ctx, logger, download.Request{
			Stream:    stream,
			Title:     title,
			SubFile:   subFile,
			UserAgent: client.UserAgent(),
		}, dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Downloaded: %s\n", outputPath)
		return nil
	}

	store := openHistory()
	if store != nil {
		defer store.Close()
	}

	var startPos float64
	switch {
	case resume != nil && resume.EpisodeURL == target.EpisodeURL:
		startPos = resume.Position
	case flagContinue && store != nil:
		if prev, ok, _ := store.Find(ctx, target.DetailURL); ok && prev.EpisodeURL == target.EpisodeURL {
			startPos = prev.Position
		}
	}
	if startPos > 0 {
		logger.Info("resuming", "at", player.FormatPosition(startPos))
	}

	p := player.New(cfg.Player)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}

	lastPos, err := p.Play(ctx, player.Request{
		Stream:    stream,
		Title:     title,
		Start:     startPos,
		SubFile:   subFile,
		UserAgent: client.UserAgent(),
	})
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	if store != nil {
		target.Position = lastPos
		if err := store.Save(context.WithoutCancel(ctx), target); err != nil {
			logger.Debug("saving history failed", "err", err)
		}
	}
	return nil
}

// chooseEpisode returns the history entry's episode when it is still listed,
// and asks the user otherwise.
func chooseEpisode(episodes []media.Episode, resume *media.HistoryEntry) (media.Episode, error) {
	if resume != nil {
		for _, ep := range episodes {
			if ep.PlayURL == resume.EpisodeURL {
				return ep, nil
			}
		}
	}

	labels := make([]string, len(episodes))
	for i, ep := range episodes {
		labels[i] = provider.FormatEpisode(ep)
	}
	idx, err := ui.Select("Episode", labels)
	if err != nil {
		return media.Episode{}, err
	}
	return episodes[idx], nil
}

// openHistory opens the history store, or returns nil when history is disabled
// or unavailable.
func openHistory() *history.Store {
	if !cfg.History {
		return nil
	}
	path, err := config.HistoryPath()
	if err != nil {
		logger.Debug("history unavailable", "err", err)
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("history unavailable", "err", err)
		return nil
	}
	return store
}

func downloadDir() (string, error) {
	if flagDownload != "" && flagDownload != "-" {
		return flagDownload, nil
	}
	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return "", fmt.Errorf("resolving download dir: %w", err)
	}
	return dir, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// isCancelled reports whether err means the user backed out of a prompt.
func isCancelled(err error) bool {
	return errors.Is(err, ui.ErrCancelled) || errors.Is(err, context.Canceled)
}
