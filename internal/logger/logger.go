// Package logger builds the leveled, structured logger shared by the CLI and
// the scraping packages.
package logger

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

func prefix() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#B91C1C")).
		Bold(true).
		Padding(0, 1)
	return style.Render("asia2tv")
}

// New returns a logger writing to w. Debug enables debug-level records along
// with timestamps and caller locations.
func New(w io.Writer, debug bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    debug,
		ReportTimestamp: debug,
		TimeFormat:      "15:04:05",
		Prefix:          prefix(),
	})
	if debug {
		l.SetLevel(log.DebugLevel)
		l.SetColorProfile(termenv.TrueColor)
		l.Debug("debug logging enabled")
	} else {
		l.SetLevel(log.InfoLevel)
	}
	return l
}

// Discard returns a logger that drops every record.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
