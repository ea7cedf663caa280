package tui

import "cyberorganism/internal/feed"

// mode selects which pane the keyboard drives.
type mode int

const (
	modePkm mode = iota
	modeFeed
)

func modeName(m mode) string {
	switch m {
	case modeFeed:
		return "Feed"
	default:
		return "PKM"
	}
}

// feedResponseMsg carries a suggestion query result from its worker
// goroutine back into the update loop, where the coordinator decides
// whether it is still current.
type feedResponseMsg struct {
	req  feed.Request
	resp *feed.Response
	err  error
}

// tasksChangedMsg is sent by the data-directory watcher when tasks.json
// is rewritten outside this process.
type tasksChangedMsg struct{}
