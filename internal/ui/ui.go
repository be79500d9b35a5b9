// Package ui provides the interactive prompts of the CLI: a fuzzy picker and a
// line input built on bubbletea. Items are rendered as plain text; nothing
// taken from a page is ever passed to a shell.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user leaves a prompt without answering.
var ErrCancelled = errors.New("selection cancelled")

// visibleRows bounds the number of items drawn at once.
const visibleRows = 12

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B91C1C")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	countStyle    = lipgloss.NewStyle().Faint(true)
)

type pickerModel struct {
	items     []string
	input     textinput.Model
	matches   []int // Indices into items, best match first
	cursor    int
	chosen    int
	cancelled bool
}

func newPicker(prompt string, items []string) *pickerModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt+" > ")
	ti.Focus()

	m := &pickerModel{items: items, input: ti, chosen: -1}
	m.filter()
	return m
}

func (m *pickerModel) filter() {
	q := strings.TrimSpace(m.input.Value())
	m.matches = m.matches[:0]
	if q == "" {
		for i := range m.items {
			m.matches = append(m.matches, i)
		}
	} else {
		for _, match := range fuzzy.Find(q, m.items) {
			m.matches = append(m.matches, match.Index)
		}
	}
	if m.cursor >= len(m.matches) {
		m.cursor = max(len(m.matches)-1, 0)
	}
}

func (m *pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.matches) > 0 {
				m.chosen = m.matches[m.cursor]
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyUp, tea.KeyCtrlP:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filter()
	return m, cmd
}

func (m *pickerModel) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(countStyle.Render(fmt.Sprintf("  %d/%d", len(m.matches), len(m.items))))
	b.WriteString("\n")

	start := 0
	if m.cursor >= visibleRows {
		start = m.cursor - visibleRows + 1
	}
	end := min(start+visibleRows, len(m.matches))
	for i := start; i < end; i++ {
		text := m.items[m.matches[i]]
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + selectedStyle.Render(text))
		} else {
			b.WriteString(itemStyle.Render(text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Select presents items in a fuzzy picker and returns the chosen index. When
// stdin is not a terminal a numbered list is printed and a number is read instead.
func Select(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return selectPlain(os.Stdin, os.Stderr, prompt, items)
	}

	final, err := tea.NewProgram(newPicker(prompt, items), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return -1, fmt.Errorf("running picker: %w", err)
	}
	m := final.(*pickerModel)
	if m.cancelled || m.chosen < 0 {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}

func selectPlain(r io.Reader, w io.Writer, prompt string, items []string) (int, error) {
	for i, item := range items {
		fmt.Fprintf(w, "%3d) %s\n", i+1, item)
	}
	fmt.Fprintf(w, "%s > ", prompt)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return -1, ErrCancelled
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(items) {
		return -1, fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}
	return n - 1, nil
}

// Confirm asks the user a yes/no question.
func Confirm(prompt string) (bool, error) {
	idx, err := Select(prompt, []string{"Yes", "No"})
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}

type inputModel struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func (m *inputModel) Init() tea.Cmd { return textinput.Blink }

func (m *inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.input.View() + "\n"
}

// Input prompts the user for free-text input.
func Input(prompt string) (string, error) {
	var query string
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "%s > ", prompt)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		query = line
	} else {
		ti := textinput.New()
		ti.Prompt = promptStyle.Render(prompt + " > ")
		ti.Focus()

		final, err := tea.NewProgram(&inputModel{input: ti}, tea.WithOutput(os.Stderr)).Run()
		if err != nil {
			return "", fmt.Errorf("running prompt: %w", err)
		}
		m := final.(*inputModel)
		if m.cancelled {
			return "", ErrCancelled
		}
		query = m.input.Value()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("no input provided")
	}
	return query, nil
}
