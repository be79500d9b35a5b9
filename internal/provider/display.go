package provider

import (
	"fmt"
	"strings"

	"asia2tv/internal/media"
)

// FormatDisplayTitle creates a display string for the picker.
func FormatDisplayTitle(it media.CatalogItem) string {
	if it.Kind == media.Movie {
		return it.Title + " [فيلم]"
	}
	return it.Title + " [مسلسل]"
}

// FormatEpisode creates a display string for an episode.
func FormatEpisode(ep media.Episode) string {
	var parts []string
	if ep.Season > 0 {
		parts = append(parts, fmt.Sprintf("S%02d", ep.Season))
	}
	switch {
	case ep.Name != "":
		parts = append(parts, ep.Name)
	case ep.Number > 0:
		parts = append(parts, fmt.Sprintf("الحلقة %d", ep.Number))
	default:
		parts = append(parts, ep.PlayURL)
	}
	return strings.Join(parts, " ")
}
