// Package download saves streams to disk with ffmpeg. Arguments are passed as
// an explicit slice and output paths are confined to the download directory.
package download

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"asia2tv/internal/httputil"
	"asia2tv/internal/media"
)

// Request describes one download.
type Request struct {
	Stream    media.Stream
	Title     string
	SubFile   string // Local subtitle file muxed into the output, optional
	UserAgent string
}

// requestHeaders renders the stream's HTTP headers in ffmpeg's -headers form.
func requestHeaders(s media.Stream) string {
	h := make(map[string]string, len(s.Headers)+1)
	for k, v := range s.Headers {
		h[k] = v
	}
	if s.Referer != "" {
		h["Referer"] = s.Referer
	}
	delete(h, "User-Agent")

	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, h[k])
	}
	return b.String()
}

// ffmpegArgs builds the ffmpeg command line writing req to outputPath.
func ffmpegArgs(req Request, outputPath string) []string {
	args := []string{"-y"}

	// input options apply to the next -i only
	if req.UserAgent != "" {
		args = append(args, "-user_agent", req.UserAgent)
	}
	if h := requestHeaders(req.Stream); h != "" {
		args = append(args, "-headers", h)
	}
	args = append(args, "-i", req.Stream.URL)

	if req.SubFile != "" {
		args = append(args, "-i", req.SubFile)
	}

	args = append(args,
		"-c:v", "copy",
		"-c:a", "copy",
	)

	if req.SubFile != "" {
		args = append(args,
			"-c:s", "srt",
			"-map", "0:v",
			"-map", "0:a",
			"-map", "1:s",
		)
	}

	return append(args,
		"-metadata", "title="+req.Title,
		outputPath,
	)
}

// Download fetches a stream to a local file using ffmpeg and returns its path.
func Download(ctx context.Context, logger *log.Logger, req Request, outputDir string) (string, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	outputPath, err := httputil.SafeDownloadPath(absDir, httputil.SanitizeFilename(req.Title)+".mkv")
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, ffmpegArgs(req, outputPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if logger != nil {
		logger.Info("downloading", "to", outputPath, "source", req.Stream.Source)
	}

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg download failed: %w", err)
	}

	return outputPath, nil
}
