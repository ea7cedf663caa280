package tui

import (
	"cyberorganism/internal/config"
	"cyberorganism/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive session and blocks until the user quits.
func Run(cfg config.Config, st *store.Store) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference()

	m := newAppModel(cfg, st)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Pick up external edits to tasks.json while running. Watching is
	// best effort; the TUI works without it.
	if stop, err := store.StartWatcher(st.Dir, func() {
		p.Send(tasksChangedMsg{})
	}); err == nil {
		defer stop()
	}

	_, err := p.Run()
	return err
}
