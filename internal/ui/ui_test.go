package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m *pickerModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestPickerNavigation(t *testing.T) {
	m := newPicker("Pick", []string{"Alpha", "Beta", "Gamma"})
	assert.Equal(t, []int{0, 1, 2}, m.matches)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.cursor, "cursor stops at the last item")

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.chosen)
	assert.False(t, m.cancelled)
}

func TestPickerFilter(t *testing.T) {
	m := newPicker("Pick", []string{"مسلسل بيتا", "Alpha", "Gamma"})
	typeText(m, "gam")
	require.Equal(t, []int{2}, m.matches)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 2, m.chosen)
}

func TestPickerNoMatchIgnoresEnter(t *testing.T) {
	m := newPicker("Pick", []string{"Alpha"})
	typeText(m, "zzz")
	assert.Empty(t, m.matches)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, -1, m.chosen)
}

func TestPickerCancel(t *testing.T) {
	m := newPicker("Pick", []string{"Alpha"})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.cancelled)
}

func TestPickerView(t *testing.T) {
	items := make([]string, 30)
	for i := range items {
		items[i] = strings.Repeat("x", i+1)
	}
	m := newPicker("Pick", items)
	for i := 0; i < 20; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	view := m.View()
	assert.Contains(t, view, "30/30")
	assert.Contains(t, view, strings.Repeat("x", 21), "the cursor row stays visible")
	assert.NotContains(t, view, "\n  x\n", "rows scrolled past are not drawn")
}

func TestSelectPlain(t *testing.T) {
	var out bytes.Buffer
	idx, err := selectPlain(strings.NewReader("2\n"), &out, "Episode", []string{"الحلقة 1", "الحلقة 2"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "  2) الحلقة 2")

	_, err = selectPlain(strings.NewReader("9\n"), &out, "Episode", []string{"a"})
	assert.Error(t, err)

	_, err = selectPlain(strings.NewReader(""), &out, "Episode", []string{"a"})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestSelectEmpty(t *testing.T) {
	_, err := Select("Pick", nil)
	assert.Error(t, err)
}
