package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"asia2tv/internal/media"
)

func TestFormatDisplayTitle(t *testing.T) {
	assert.Equal(t, "Alpha [فيلم]", FormatDisplayTitle(media.CatalogItem{Title: "Alpha", Kind: media.Movie}))
	assert.Equal(t, "Beta [مسلسل]", FormatDisplayTitle(media.CatalogItem{Title: "Beta", Kind: media.Series}))
}

func TestFormatEpisode(t *testing.T) {
	tests := []struct {
		name string
		ep   media.Episode
		want string
	}{
		{"named", media.Episode{Name: "الحلقة 3"}, "الحلقة 3"},
		{"season", media.Episode{Name: "الحلقة 1", Season: 2}, "S02 الحلقة 1"},
		{"number only", media.Episode{Number: 7}, "الحلقة 7"},
		{"bare", media.Episode{PlayURL: "https://asia2tv.com/episode/x/"}, "https://asia2tv.com/episode/x/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEpisode(tt.ep))
		})
	}
}
