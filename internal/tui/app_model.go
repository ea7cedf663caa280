package tui

import (
	"context"
	"log/slog"

	"cyberorganism/internal/command"
	"cyberorganism/internal/config"
	"cyberorganism/internal/display"
	"cyberorganism/internal/feed"
	"cyberorganism/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type appModel struct {
	store  *store.Store
	proj   *display.Projection
	log    *display.ActivityLog
	engine *command.Engine

	client *feed.Client
	coord  *feed.Coordinator

	// input is the single shared buffer: command line on the compose
	// slot, staged edit on a task, query text in Feed mode.
	input textinput.Model

	mode     mode
	showHelp bool

	// composeText preserves slot-0 typing while focus visits tasks.
	composeText string

	// returnFocusID is restored when the edit of a freshly created
	// subtask commits (Shift+Enter on a task). Cleared by any manual
	// focus movement.
	returnFocusID  int
	hasReturnFocus bool

	width  int
	height int

	debug *slog.Logger
}

func newAppModel(cfg config.Config, st *store.Store) appModel {
	proj := display.NewProjection()
	alog := display.NewActivityLog()

	m := appModel{
		store:  st,
		proj:   proj,
		log:    alog,
		engine: command.NewEngine(st, proj, alog),
		client: feed.NewClient(feed.ClientConfig{
			BaseURL:        cfg.Suggestion.BaseURL,
			APIKey:         cfg.Suggestion.APIKey,
			OrganizationID: cfg.Suggestion.OrganizationID,
			Timeout:        cfg.Suggestion.Timeout(),
			BatchCount:     cfg.Suggestion.BatchCount,
		}),
		coord: feed.NewCoordinator(),
		mode:  modePkm,
		debug: newDebugLogger(),
	}

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.CharLimit = 0
	m.input.Width = 60
	m.input.Focus()

	// Best effort: restore the container and fold set from the last session.
	if ui, err := st.LoadUIState(); err == nil && ui != nil {
		if ui.ActiveContainer != "" {
			m.proj.ActiveContainer = ui.ActiveContainer
		}
		m.proj.SetFolded(ui.FoldedIDs)
	}
	m.proj.Rebuild(st.Tasks())

	m.debug.Debug("session start",
		"tasks", st.Len(),
		"container", string(m.proj.ActiveContainer),
		"mock", m.client.Mock(),
		"feed_session", m.client.SessionID())
	return m
}

func (m *appModel) rebuildProjection() {
	m.proj.Rebuild(m.store.Tasks())
}

// rememberCompose captures slot-0 typing before focus leaves the
// compose line.
func (m *appModel) rememberCompose() {
	if m.proj.FocusedIndex() == 0 {
		m.composeText = m.input.Value()
	}
}

// syncInputToFocus mirrors the focused task's content into the input
// buffer with the cursor at the end. On the compose slot it restores the
// pending compose text instead.
func (m *appModel) syncInputToFocus() {
	if id, ok := m.proj.FocusedTaskID(); ok {
		if t, found := m.store.Find(id); found {
			m.input.SetValue(t.Content)
			m.input.CursorEnd()
			return
		}
	}
	m.input.SetValue(m.composeText)
	m.input.CursorEnd()
}

func (m *appModel) saveUIState() {
	_ = m.store.SaveUIState(&store.UIState{
		ActiveContainer: m.proj.ActiveContainer,
		FoldedIDs:       m.proj.FoldedIDs(),
	})
}

// queryCmd runs one suggestion request off the update loop. The request
// descriptor rides along so the coordinator can discard stale results.
func (m *appModel) queryCmd(req feed.Request) tea.Cmd {
	client := m.client
	logger := m.debug
	return func() tea.Msg {
		logger.Debug("suggestion query", "query", req.Query, "page", req.Page, "session", req.Session)
		resp, err := client.Query(context.Background(), req.Query, req.Page)
		return feedResponseMsg{req: req, resp: resp, err: err}
	}
}
