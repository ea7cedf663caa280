package display

const activityCap = 100

// ActivityLog keeps recent user-facing messages, newest first. It is the
// single channel for reporting recoverable errors: nothing in the UI
// panics or prints to stderr while the screen is up.
type ActivityLog struct {
	entries []string
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) Add(msg string) {
	l.entries = append([]string{msg}, l.entries...)
	if len(l.entries) > activityCap {
		l.entries = l.entries[:activityCap]
	}
}

// Latest returns the most recent message, or "" when nothing has
// happened yet.
func (l *ActivityLog) Latest() string {
	if len(l.entries) == 0 {
		return ""
	}
	return l.entries[0]
}

// Entries returns all retained messages, newest first.
func (l *ActivityLog) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *ActivityLog) Len() int {
	return len(l.entries)
}
