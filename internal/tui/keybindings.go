package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Chord fallbacks: not every terminal reports Shift+Enter, Ctrl+Enter,
// or Ctrl+Space distinctly, so each chord has an Alt alias any terminal
// can produce.

// isNewTask recognizes the create chord: Shift+Enter, or Alt+Enter.
func isNewTask(k tea.KeyMsg) bool {
	switch k.String() {
	case "shift+enter", "alt+enter":
		return true
	}
	return false
}

// isComplete recognizes the complete/pin chord: Ctrl+Enter, or Alt+D.
func isComplete(k tea.KeyMsg) bool {
	switch k.String() {
	case "ctrl+enter", "alt+d":
		return true
	}
	return false
}

// isModeToggle recognizes Ctrl+Space (terminals report the NUL byte it
// produces as ctrl+@).
func isModeToggle(k tea.KeyMsg) bool {
	switch k.String() {
	case "ctrl+@", "ctrl+space":
		return true
	}
	return false
}

// isFoldToggle recognizes Ctrl+Up/Ctrl+Down, the fold chord in the task
// pane and the expand chord in the suggestion panel.
func isFoldToggle(k tea.KeyMsg) bool {
	return k.Type == tea.KeyCtrlUp || k.Type == tea.KeyCtrlDown
}
