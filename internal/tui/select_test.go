package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(t *testing.T, m SelectModel, keys ...string) SelectModel {
	t.Helper()
	for _, k := range keys {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(SelectModel)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func testItems() []Item {
	return []Item{
		{Name: "biome", Description: "Formatter and linter"},
		{Name: "typescript", Description: "Type checking"},
		{Name: "vitest", Description: "Test runner"},
	}
}

func TestSelectToggleAndConfirm(t *testing.T) {
	m := NewSelectModel("Select providers", testItems())

	m = press(t, m, " ", "j", "j", " ", "enter")

	if m.Canceled() {
		t.Fatal("Canceled() = true, want confirmed")
	}
	chosen := m.Chosen()
	if len(chosen) != 2 || chosen[0] != "biome" || chosen[1] != "vitest" {
		t.Fatalf("Chosen() = %v, want [biome vitest]", chosen)
	}
}

func TestSelectToggleTwiceDeselects(t *testing.T) {
	m := NewSelectModel("Select providers", testItems())

	m = press(t, m, " ", " ", "enter")
	if chosen := m.Chosen(); len(chosen) != 0 {
		t.Fatalf("Chosen() = %v, want none", chosen)
	}
}

func TestSelectCancel(t *testing.T) {
	m := NewSelectModel("Select providers", testItems())

	m = press(t, m, " ", "q")
	if !m.Canceled() {
		t.Fatal("Canceled() = false, want true")
	}
}

func TestSelectCursorStaysInBounds(t *testing.T) {
	m := NewSelectModel("Select providers", testItems())

	m = press(t, m, "k", "k", " ", "enter")
	if chosen := m.Chosen(); len(chosen) != 1 || chosen[0] != "biome" {
		t.Fatalf("Chosen() = %v, want [biome] after clamped up moves", chosen)
	}

	m = NewSelectModel("Select providers", testItems())
	m = press(t, m, "j", "j", "j", "j", " ", "enter")
	if chosen := m.Chosen(); len(chosen) != 1 || chosen[0] != "vitest" {
		t.Fatalf("Chosen() = %v, want [vitest] after clamped down moves", chosen)
	}
}
