package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// MPV implements the Player interface for mpv.
// Position is tracked over an IPC socket at a randomized temp path.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// mpvArgs builds the mpv command line. Hosts reject stream requests that do
// not carry the player page as referrer.
func mpvArgs(req Request, socketPath string) []string {
	args := []string{
		req.Stream.URL,
		"--force-media-title=" + req.Title,
		"--really-quiet",
	}
	if socketPath != "" {
		args = append(args, "--input-ipc-server="+socketPath)
	}
	if req.Stream.Referer != "" {
		args = append(args, "--referrer="+req.Stream.Referer)
	}
	if req.UserAgent != "" {
		args = append(args, "--user-agent="+req.UserAgent)
	}
	if fields := headerFields(req.Stream); len(fields) > 0 {
		args = append(args, "--http-header-fields="+strings.Join(fields, ","))
	}
	if req.Start > 0 {
		args = append(args, fmt.Sprintf("--start=+%.0f", req.Start))
	}
	if req.SubFile != "" {
		args = append(args, "--sub-file="+req.SubFile)
	}
	return args
}

// Play launches mpv with the given stream and returns the final playback position.
func (m *MPV) Play(ctx context.Context, req Request) (float64, error) {
	socketDir, err := os.MkdirTemp("", "asia2tv-mpv-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	defer os.RemoveAll(socketDir)

	socketPath := filepath.Join(socketDir, "socket")

	cmd := exec.CommandContext(ctx, "mpv", mpvArgs(req, socketPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting mpv: %w", err)
	}

	pos := make(chan float64, 1)
	go func() {
		pos <- m.trackPosition(socketPath)
	}()

	waitErr := cmd.Wait()
	lastPos := <-pos

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return lastPos, fmt.Errorf("running mpv: %w", waitErr)
	}
	// mpv exits non-zero when the user quits early
	return lastPos, nil
}

// trackPosition follows mpv's time-pos property until the socket closes.
func (m *MPV) trackPosition(socketPath string) float64 {
	var lastPos float64

	for i := 0; i < 50; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return 0
	}
	defer conn.Close()

	cmd := map[string]any{
		"command":    []any{"observe_property", 1, "time-pos"},
		"request_id": 100,
	}
	data, _ := json.Marshal(cmd)
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return 0
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		lastPos = observedPosition(scanner.Bytes(), lastPos)
	}
	return lastPos
}

// observedPosition returns the position carried by an IPC event line, or last
// when the line is not a time-pos update.
func observedPosition(line []byte, last float64) float64 {
	var event struct {
		Event string  `json:"event"`
		Name  string  `json:"name"`
		Data  float64 `json:"data"`
	}
	if err := json.Unmarshal(line, &event); err != nil {
		return last
	}
	if event.Name == "time-pos" && event.Data > 0 {
		return event.Data
	}
	return last
}
