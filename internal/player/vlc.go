package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool {
	_, err := exec.LookPath("vlc")
	return err == nil
}

func vlcArgs(req Request) []string {
	args := []string{
		req.Stream.URL,
		"--meta-title", req.Title,
		"--play-and-exit",
	}
	if req.Stream.Referer != "" {
		args = append(args, "--http-referrer="+req.Stream.Referer)
	}
	if req.UserAgent != "" {
		args = append(args, "--http-user-agent="+req.UserAgent)
	}
	if req.Start > 0 {
		args = append(args, fmt.Sprintf("--start-time=%.0f", req.Start))
	}
	if req.SubFile != "" {
		args = append(args, "--sub-file", req.SubFile)
	}
	return args
}

// Play launches VLC. VLC has no IPC position tracking like mpv, so the
// returned position is always 0.
func (v *VLC) Play(ctx context.Context, req Request) (float64, error) {
	cmd := exec.CommandContext(ctx, "vlc", vlcArgs(req)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// VLC exits non-zero on user close
			return 0, nil
		}
		return 0, fmt.Errorf("running vlc: %w", err)
	}
	return 0, nil
}
