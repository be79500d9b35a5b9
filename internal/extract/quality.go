package extract

import (
	"strconv"
	"strings"
	"unicode"

	"asia2tv/internal/media"
)

// height returns the vertical resolution named in a quality label such as
// "720p" or "HD 1080", or 0 when the label names none.
func height(label string) int {
	f := strings.FieldsFunc(label, func(r rune) bool { return !unicode.IsDigit(r) })
	best := 0
	for _, s := range f {
		if n, err := strconv.Atoi(s); err == nil && n >= 144 && n <= 4320 && n > best {
			best = n
		}
	}
	return best
}

// Pick chooses the stream to play. "best" or an empty quality takes the highest
// labelled resolution; otherwise the first stream of that resolution is used,
// falling back to the best one. Among equals the first stream wins.
func Pick(streams []media.Stream, quality string) (media.Stream, bool) {
	if len(streams) == 0 {
		return media.Stream{}, false
	}
	if want, err := strconv.Atoi(strings.TrimSuffix(quality, "p")); err == nil {
		for _, s := range streams {
			if height(s.Quality) == want {
				return s, true
			}
		}
	}

	best := streams[0]
	for _, s := range streams[1:] {
		if height(s.Quality) > height(best.Quality) {
			best = s
		}
	}
	return best, true
}
