package tui

import (
	"fmt"
	"sort"
	"strings"

	"cyberorganism/internal/feed"
	"cyberorganism/internal/model"

	"github.com/charmbracelet/lipgloss"
)

const composeSlotText = "<Create new task or enter commands>"

func (m appModel) View() string {
	w := m.width
	h := m.height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}

	// Three chrome lines below the panes: activity, input, key hints.
	bodyH := h - 3
	if bodyH < 4 {
		bodyH = 4
	}

	var body string
	if m.showHelp {
		body = normalizePane(renderHelp(w-4), w, bodyH)
	} else {
		leftW := w / 2
		rightW := w - leftW - 2
		left := normalizePane(m.renderTaskPane(leftW), leftW, bodyH)
		right := normalizePane(m.renderFeedPane(rightW), rightW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	}

	activity := styleMuted().Render(truncate(m.log.Latest(), w))
	input := m.renderInput(w)
	footer := styleMuted().Render(truncate(m.footerHint(), w))

	return strings.Join([]string{body, activity, input, footer}, "\n")
}

func (m appModel) renderTaskPane(width int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(string(m.proj.ActiveContainer)))
	b.WriteString("\n")

	compose := truncate(composeSlotText, width)
	if m.mode == modePkm && m.proj.FocusedIndex() == 0 {
		b.WriteString(styleSelected().Render(compose))
	} else {
		b.WriteString(styleAccent().Render(compose))
	}
	b.WriteString("\n")

	for i, row := range m.proj.Rows() {
		t, ok := m.store.Find(row.ID)
		if !ok {
			continue
		}

		indent := strings.Repeat("  ", row.Depth)
		sep := " "
		if row.Depth == 0 {
			sep = ". "
		}
		check := ""
		if t.Status == model.StatusDone {
			check = glyphCheck() + " "
		}
		arrow := ""
		if t.HasChildren() {
			if m.proj.IsFolded(t.ID) {
				arrow = glyphTwistyCollapsed() + " "
			} else {
				arrow = glyphTwistyExpanded() + " "
			}
		}

		line := truncate(indent+row.Path+sep+check+arrow+t.Content, width)
		if m.mode == modePkm && m.proj.FocusedIndex() == i+1 {
			line = styleSelected().Render(line)
		} else if check != "" {
			line = strings.Replace(line, check, styleAccent().Render(check), 1)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m appModel) renderFeedPane(width int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Suggestions"))
	b.WriteString("\n")

	switch {
	case m.coord.Query() == "":
		b.WriteString(styleMuted().Render("Type to see suggestions"))
		b.WriteString("\n")
	case m.coord.InFlight() && m.coord.Len() == 0:
		b.WriteString(styleMuted().Render("Loading results…"))
		b.WriteString("\n")
	default:
		focused := m.coord.FocusedIndex()
		for i, it := range m.coord.SortedView() {
			line := fmt.Sprintf("%s %s (%.0f%%)", glyphBullet(), it.Description, it.Relevance()*100)
			if m.coord.IsPinned(it.ID) {
				line = glyphPin() + " " + line
			}
			line = truncate(line, width)
			if m.mode == modeFeed && i == focused {
				line = styleSelected().Render(line)
			} else if m.coord.IsPinned(it.ID) {
				line = lipgloss.NewStyle().Foreground(colorPin).Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")

			if m.coord.IsExpanded(it.ID) {
				for _, meta := range metadataLines(it, width-4) {
					b.WriteString(styleMuted().Render("    " + meta))
					b.WriteString("\n")
				}
			}
		}
	}

	if m.coord.Query() != "" {
		b.WriteString("\n")
		footer := fmt.Sprintf("query: %s  page %d", m.coord.Query(), m.coord.Page())
		b.WriteString(faintIfDark(lipgloss.NewStyle().Foreground(colorChromeMutedFg)).Render(truncate(footer, width)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// metadataLines flattens an item's metadata for the expanded view, keys
// sorted for a stable frame.
func metadataLines(it feed.Item, width int) []string {
	lines := []string{truncate("id: "+it.ID, width)}
	keys := make([]string, 0, len(it.Metadata))
	for k := range it.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, truncate(fmt.Sprintf("%s: %v", k, it.Metadata[k]), width))
	}
	return lines
}

func (m appModel) renderInput(width int) string {
	in := m.input
	if m.mode == modeFeed {
		in.PromptStyle = lipgloss.NewStyle().Foreground(colorPin)
	} else {
		in.PromptStyle = styleAccent()
	}
	view := strings.ReplaceAll(in.View(), "\n", " ")
	return truncate(view, width)
}

func (m appModel) footerHint() string {
	if m.mode == modeFeed {
		return "[Feed] up/down: select  ctrl+up/down: expand  ctrl+enter: pin  pgdn: more  ctrl+space: tasks  ctrl+c: quit"
	}
	return "[PKM] enter: run/commit  shift+enter: new  ctrl+enter: done  ctrl+up/down: fold  ctrl+space: suggestions  ctrl+c: quit"
}
