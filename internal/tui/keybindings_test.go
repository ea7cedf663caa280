package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestChordFallbackKeys(t *testing.T) {
	t.Run("new task", func(t *testing.T) {
		if !isNewTask(tea.KeyMsg{Type: tea.KeyEnter, Alt: true}) {
			t.Fatalf("expected Alt+Enter to be recognized for new task")
		}
		if isNewTask(tea.KeyMsg{Type: tea.KeyEnter}) {
			t.Fatalf("plain Enter must not be recognized for new task")
		}
	})
	t.Run("complete", func(t *testing.T) {
		if !isComplete(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d"), Alt: true}) {
			t.Fatalf("expected Alt+D to be recognized for complete")
		}
		if isComplete(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")}) {
			t.Fatalf("a plain d must not be recognized for complete")
		}
	})
	t.Run("mode toggle", func(t *testing.T) {
		if !isModeToggle(tea.KeyMsg{Type: tea.KeyCtrlAt}) {
			t.Fatalf("expected Ctrl+Space (reported as ctrl+@) to be recognized for mode toggle")
		}
	})
	t.Run("fold toggle", func(t *testing.T) {
		if !isFoldToggle(tea.KeyMsg{Type: tea.KeyCtrlUp}) {
			t.Fatalf("expected Ctrl+Up to be recognized for fold toggle")
		}
		if !isFoldToggle(tea.KeyMsg{Type: tea.KeyCtrlDown}) {
			t.Fatalf("expected Ctrl+Down to be recognized for fold toggle")
		}
		if isFoldToggle(tea.KeyMsg{Type: tea.KeyUp}) {
			t.Fatalf("plain Up must not be recognized for fold toggle")
		}
	})
}
