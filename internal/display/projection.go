// Package display computes the visible window onto the task forest:
// which rows show for the active container after folding, where focus
// sits, and how dotted display paths resolve to tasks.
package display

import (
	"sort"
	"strconv"
	"strings"

	"cyberorganism/internal/model"
)

// Row is one visible line of the task pane.
type Row struct {
	ID    int
	Depth int
	Path  string // dotted 1-based position, e.g. "2.1.3"
}

// Projection holds the ordered visible rows, the fold set, and the focus
// slot. Slot 0 is the compose line; slots 1..len(rows) are tasks.
type Projection struct {
	ActiveContainer model.Container

	rows    []Row
	folded  map[int]bool
	focused int
}

func NewProjection() *Projection {
	return &Projection{
		ActiveContainer: model.ContainerTaskpad,
		folded:          map[int]bool{},
	}
}

// Rebuild recomputes the visible rows from the forest: roots of the
// active container in document order, descending into unfolded tasks.
// Focus follows the previously focused task to its new slot; if that
// task is no longer visible, focus returns to the compose line.
func (p *Projection) Rebuild(tasks []model.Task) {
	prevID, hadTask := p.FocusedTaskID()

	byID := make(map[int]*model.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	// Drop fold entries for tasks that no longer exist, or they pile up
	// in the persisted UI state forever.
	for id := range p.folded {
		if _, ok := byID[id]; !ok {
			delete(p.folded, id)
		}
	}

	p.rows = p.rows[:0]
	rootNum := 0
	for i := range tasks {
		t := &tasks[i]
		if t.Container != p.ActiveContainer || t.ParentID != nil {
			continue
		}
		rootNum++
		p.appendVisible(byID, t, 0, strconv.Itoa(rootNum))
	}

	p.focused = 0
	if hadTask {
		for i, r := range p.rows {
			if r.ID == prevID {
				p.focused = i + 1
				break
			}
		}
	}
}

func (p *Projection) appendVisible(byID map[int]*model.Task, t *model.Task, depth int, path string) {
	p.rows = append(p.rows, Row{ID: t.ID, Depth: depth, Path: path})
	if p.folded[t.ID] {
		return
	}
	childNum := 0
	for _, cid := range t.ChildIDs {
		c, ok := byID[cid]
		if !ok {
			continue
		}
		childNum++
		p.appendVisible(byID, c, depth+1, path+"."+strconv.Itoa(childNum))
	}
}

// Rows returns the visible rows in display order.
func (p *Projection) Rows() []Row {
	return p.rows
}

func (p *Projection) Len() int {
	return len(p.rows)
}

func (p *Projection) VisibleIDs() []int {
	ids := make([]int, len(p.rows))
	for i, r := range p.rows {
		ids[i] = r.ID
	}
	return ids
}

func (p *Projection) FocusedIndex() int {
	return p.focused
}

// FocusedTaskID returns the task under focus, or false on the compose
// line.
func (p *Projection) FocusedTaskID() (int, bool) {
	if p.focused < 1 || p.focused > len(p.rows) {
		return 0, false
	}
	return p.rows[p.focused-1].ID, true
}

// SetFocus clamps out-of-range slots to the compose line.
func (p *Projection) SetFocus(slot int) {
	if slot < 0 || slot > len(p.rows) {
		slot = 0
	}
	p.focused = slot
}

func (p *Projection) FocusCompose() {
	p.focused = 0
}

// FocusTask focuses a task by id; false when it is not visible.
func (p *Projection) FocusTask(id int) bool {
	for i, r := range p.rows {
		if r.ID == id {
			p.focused = i + 1
			return true
		}
	}
	return false
}

// FocusNext moves focus down one slot, wrapping from the last task back
// to the compose line.
func (p *Projection) FocusNext() {
	p.focused = (p.focused + 1) % (len(p.rows) + 1)
}

// FocusPrevious moves focus up one slot, wrapping from the compose line
// to the last task.
func (p *Projection) FocusPrevious() {
	n := len(p.rows) + 1
	p.focused = (p.focused - 1 + n) % n
}

// ParsePath parses a dotted 1-based display path like "2.1.3". A single
// trailing dot is tolerated. Empty, zero, or non-numeric segments make
// the string not a path at all.
func ParsePath(s string) ([]int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return nil, false
	}
	parts := strings.Split(s, ".")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, false
		}
		indices = append(indices, n)
	}
	return indices, true
}

// ResolvePath returns the visible task at the parsed path. Resolution
// fails through folded ancestors and out-of-range segments, because
// their rows simply do not exist.
func (p *Projection) ResolvePath(indices []int) (int, bool) {
	if len(indices) == 0 {
		return 0, false
	}
	parts := make([]string, len(indices))
	for i, n := range indices {
		parts[i] = strconv.Itoa(n)
	}
	want := strings.Join(parts, ".")
	for _, r := range p.rows {
		if r.Path == want {
			return r.ID, true
		}
	}
	return 0, false
}

func (p *Projection) IsFolded(id int) bool {
	return p.folded[id]
}

func (p *Projection) Fold(id int) {
	p.folded[id] = true
}

func (p *Projection) Unfold(id int) {
	delete(p.folded, id)
}

func (p *Projection) ToggleFold(id int) {
	if p.folded[id] {
		delete(p.folded, id)
	} else {
		p.folded[id] = true
	}
}

// CollapseAll folds every currently visible task.
func (p *Projection) CollapseAll() {
	for _, r := range p.rows {
		p.folded[r.ID] = true
	}
}

// FoldedIDs returns the fold set in ascending order, for persistence.
func (p *Projection) FoldedIDs() []int {
	ids := make([]int, 0, len(p.folded))
	for id := range p.folded {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SetFolded replaces the fold set, for restoring persisted UI state.
func (p *Projection) SetFolded(ids []int) {
	p.folded = make(map[int]bool, len(ids))
	for _, id := range ids {
		p.folded[id] = true
	}
}
