package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd { return textinput.Blink }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 6
		if w < 20 {
			w = 20
		}
		m.input.Width = w
		return m, nil

	case tasksChangedMsg:
		// The watcher also fires for this process's own saves; only a
		// file that differs from what we last wrote is an external edit.
		if !m.store.ChangedOnDisk() {
			return m, nil
		}
		// tasks.json was rewritten outside this process (editor, second
		// instance). Reload; on failure keep the current state.
		if err := m.store.Reload(); err != nil {
			m.log.Add(fmt.Sprintf("Failed to reload tasks: %v", err))
			return m, nil
		}
		m.debug.Debug("reloaded after external change", "tasks", m.store.Len())
		m.rebuildProjection()
		if m.proj.FocusedIndex() > 0 {
			m.syncInputToFocus()
		}
		return m, nil

	case feedResponseMsg:
		if msg.err != nil {
			m.debug.Debug("suggestion query failed",
				"query", msg.req.Query, "page", msg.req.Page, "err", msg.err)
			m.coord.HandleError(msg.req)
			return m, nil
		}
		if msg.req.Query != m.coord.Query() {
			m.debug.Debug("suggestion response superseded",
				"query", msg.req.Query, "current", m.coord.Query())
		} else {
			m.debug.Debug("suggestion response",
				"query", msg.req.Query, "page", msg.req.Page, "items", len(msg.resp.Items))
		}
		m.coord.HandleResponse(msg.req, msg.resp)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Everything else (cursor blink) belongs to the input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case k.String() == "ctrl+c":
		m.saveUIState()
		return m, tea.Quit
	case isModeToggle(k):
		return m.toggleMode()
	}

	if m.mode == modeFeed {
		return m.handleFeedKey(k)
	}
	return m.handlePkmKey(k)
}

func (m appModel) toggleMode() (tea.Model, tea.Cmd) {
	if m.mode == modePkm {
		m.rememberCompose()
		m.mode = modeFeed
		m.debug.Debug("mode switch", "now", modeName(m.mode))
		// The buffer survives the switch and becomes the query.
		if req := m.coord.OnInput(m.input.Value()); req != nil {
			return m, m.queryCmd(*req)
		}
		return m, nil
	}
	m.mode = modePkm
	m.debug.Debug("mode switch", "now", modeName(m.mode))
	// Resync so a stale query string is not committed as an edit.
	m.syncInputToFocus()
	return m, nil
}

func (m appModel) handlePkmKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isNewTask(k):
		if id, ok := m.proj.FocusedTaskID(); ok {
			// New empty subtask under the focused task; committing its
			// edit returns focus here.
			sub, err := m.engine.CreateSubtask(id, "")
			if err != nil {
				return m, nil
			}
			m.returnFocusID = id
			m.hasReturnFocus = true
			m.proj.FocusTask(sub)
			m.input.SetValue("")
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		id := m.engine.CreateRoot(text)
		m.composeText = ""
		m.proj.FocusTask(id)
		m.syncInputToFocus()
		return m, nil

	case isComplete(k):
		if id, ok := m.proj.FocusedTaskID(); ok {
			if text := strings.TrimSpace(m.input.Value()); text != "" {
				m.engine.CommitEdit(id, text)
			}
			m.engine.CompleteTask(id)
			m.syncInputToFocus()
			return m, nil
		}
		// Compose slot: complete the task the buffer refers to.
		target := strings.TrimSpace(m.input.Value())
		if target == "" {
			return m, nil
		}
		m.engine.Execute("done " + target)
		m.composeText = ""
		m.syncInputToFocus()
		return m, nil

	case isFoldToggle(k):
		if id, ok := m.proj.FocusedTaskID(); ok {
			if t, found := m.store.Find(id); found && t.HasChildren() {
				m.engine.ToggleFold(id)
			}
		}
		return m, nil
	}

	switch k.String() {
	case "enter":
		return m.handlePkmEnter()
	case "up":
		m.rememberCompose()
		m.hasReturnFocus = false
		m.proj.FocusPrevious()
		m.syncInputToFocus()
		return m, nil
	case "down":
		m.rememberCompose()
		m.hasReturnFocus = false
		m.proj.FocusNext()
		m.syncInputToFocus()
		return m, nil
	case "esc":
		m.showHelp = false
		m.hasReturnFocus = false
		m.proj.FocusCompose()
		m.syncInputToFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m appModel) handlePkmEnter() (tea.Model, tea.Cmd) {
	if id, ok := m.proj.FocusedTaskID(); ok {
		// Commit the staged edit; an emptied buffer commits nothing.
		if text := strings.TrimSpace(m.input.Value()); text != "" {
			m.engine.CommitEdit(id, text)
		}
		if m.hasReturnFocus {
			m.proj.FocusTask(m.returnFocusID)
			m.hasReturnFocus = false
		}
		m.syncInputToFocus()
		return m, nil
	}

	prev := m.proj.ActiveContainer
	if m.engine.Execute(m.input.Value()) {
		m.showHelp = !m.showHelp
	}
	if m.proj.ActiveContainer != prev {
		m.saveUIState()
	}
	m.composeText = ""
	m.syncInputToFocus()
	return m, nil
}

func (m appModel) handleFeedKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isComplete(k):
		if it, ok := m.coord.FocusedItem(); ok {
			m.coord.TogglePin(it.ID)
		}
		return m, nil
	case isFoldToggle(k):
		if it, ok := m.coord.FocusedItem(); ok {
			m.coord.ToggleExpand(it.ID)
		}
		return m, nil
	}

	switch k.String() {
	case "up":
		m.coord.FocusPrevious()
		return m, nil
	case "down":
		m.coord.FocusNext()
		return m, nil
	case "pgdown":
		if req := m.coord.LoadNextPage(); req != nil {
			return m, m.queryCmd(*req)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	if req := m.coord.OnInput(m.input.Value()); req != nil {
		return m, tea.Batch(cmd, m.queryCmd(*req))
	}
	return m, cmd
}
