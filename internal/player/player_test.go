package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"asia2tv/internal/media"
)

func TestNew(t *testing.T) {
	assert.Equal(t, "mpv", New("mpv").Name())
	assert.Equal(t, "vlc", New("vlc").Name())
	assert.Equal(t, "iina", New("iina").Name())
	assert.Equal(t, "celluloid", New("celluloid").Name())
	assert.Equal(t, "mpv", New("unknown").Name())
}

func TestMPVArgs(t *testing.T) {
	req := Request{
		Stream: media.Stream{
			URL:     "https://cdn.example.com/hls/master.m3u8",
			Referer: "https://vidbom.com/embed-1.html",
			Headers: map[string]string{"Origin": "https://vidbom.com", "Referer": "ignored", "Cookie": "a=b"},
		},
		Title:     "مسلسل بيتا - الحلقة 3; rm -rf /",
		Start:     90.4,
		SubFile:   "/tmp/asia2tv-subs-1/ar.vtt",
		UserAgent: "UA/1.0",
	}

	assert.Equal(t, []string{
		"https://cdn.example.com/hls/master.m3u8",
		"--force-media-title=مسلسل بيتا - الحلقة 3; rm -rf /",
		"--really-quiet",
		"--input-ipc-server=/tmp/sock",
		"--referrer=https://vidbom.com/embed-1.html",
		"--user-agent=UA/1.0",
		"--http-header-fields=Cookie: a=b,Origin: https://vidbom.com",
		"--start=+90",
		"--sub-file=/tmp/asia2tv-subs-1/ar.vtt",
	}, mpvArgs(req, "/tmp/sock"))
}

func TestMPVArgsMinimal(t *testing.T) {
	args := mpvArgs(Request{Stream: media.Stream{URL: "https://cdn/v.mp4"}, Title: "Alpha"}, "")
	assert.Equal(t, []string{"https://cdn/v.mp4", "--force-media-title=Alpha", "--really-quiet"}, args)
}

func TestVLCArgs(t *testing.T) {
	args := vlcArgs(Request{
		Stream:  media.Stream{URL: "https://cdn/v.mp4", Referer: "https://uqload.co/embed-2.html"},
		Title:   "Alpha",
		Start:   12,
		SubFile: "/tmp/ar.srt",
	})
	assert.Equal(t, []string{
		"https://cdn/v.mp4",
		"--meta-title", "Alpha",
		"--play-and-exit",
		"--http-referrer=https://uqload.co/embed-2.html",
		"--start-time=12",
		"--sub-file", "/tmp/ar.srt",
	}, args)
}

func TestObservedPosition(t *testing.T) {
	assert.Equal(t, 12.5, observedPosition([]byte(`{"event":"property-change","name":"time-pos","data":12.5}`), 3))
	assert.Equal(t, 3.0, observedPosition([]byte(`{"event":"property-change","name":"pause","data":0}`), 3))
	assert.Equal(t, 3.0, observedPosition([]byte(`not json`), 3))
}

func TestFormatPosition(t *testing.T) {
	assert.Equal(t, "0:59", FormatPosition(59))
	assert.Equal(t, "12:05", FormatPosition(725))
	assert.Equal(t, "1:02:03", FormatPosition(3723))
}
