package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cyberorganism/internal/model"
)

const tasksFileName = "tasks.json"

var (
	ErrNoTask            = errors.New("no such task")
	ErrNoParent          = errors.New("no such parent task")
	ErrCycle             = errors.New("would create a cycle")
	ErrContainerMismatch = errors.New("parent and child containers differ")
)

// Store owns the task forest for one data directory. Mutations keep
// parent/child links bidirectional and allocate ids monotonically.
// Persistence is the whole document; callers save after each mutation.
type Store struct {
	Dir string

	tasks  []model.Task // document order
	byID   map[int]int  // id -> index into tasks
	nextID int
	now    func() time.Time

	// lastDoc is the file content this store last read or wrote, so the
	// reload path can tell our own saves from external edits.
	lastDoc []byte
}

// Open loads the task file under dir. A missing file yields an empty
// store; a file that exists but cannot be parsed or fails validation is
// an error, which callers treat as fatal at startup.
func Open(dir string) (*Store, error) {
	s := &Store{Dir: dir, now: time.Now}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return filepath.Join(s.Dir, tasksFileName)
}

func (s *Store) load() error {
	var tasks []model.Task
	b, err := os.ReadFile(s.Path())
	switch {
	case errors.Is(err, os.ErrNotExist):
		tasks = []model.Task{}
	case err != nil:
		return fmt.Errorf("read %s: %w", tasksFileName, err)
	default:
		if err := json.Unmarshal(b, &tasks); err != nil {
			return fmt.Errorf("parse %s: %w", tasksFileName, err)
		}
	}
	// Externally authored files may omit child_ids; the saved shape is
	// always an array.
	for i := range tasks {
		if tasks[i].ChildIDs == nil {
			tasks[i].ChildIDs = []int{}
		}
	}
	if err := validate(tasks); err != nil {
		return fmt.Errorf("%s: %w", tasksFileName, err)
	}
	s.tasks = tasks
	s.lastDoc = b
	s.reindex()
	return nil
}

// ChangedOnDisk reports whether tasks.json differs from the last
// document this store read or wrote. The directory watcher cannot tell
// our own rename from an external edit, so reload callers check here
// first.
func (s *Store) ChangedOnDisk() bool {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		return true
	}
	return !bytes.Equal(b, s.lastDoc)
}

// Reload re-reads the task file, replacing in-memory state. Ids stay
// monotonic across reloads so a truncated file cannot cause id reuse
// within this process.
func (s *Store) Reload() error {
	return s.load()
}

func (s *Store) reindex() {
	s.byID = make(map[int]int, len(s.tasks))
	maxID := 0
	for i := range s.tasks {
		s.byID[s.tasks[i].ID] = i
		if s.tasks[i].ID > maxID {
			maxID = s.tasks[i].ID
		}
	}
	if next := maxID + 1; next > s.nextID {
		s.nextID = next
	}
}

func validate(tasks []model.Task) error {
	byID := make(map[int]*model.Task, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if _, dup := byID[t.ID]; dup {
			return fmt.Errorf("duplicate task id %d", t.ID)
		}
		byID[t.ID] = t
		if !t.Status.Valid() {
			return fmt.Errorf("task %d: unknown status %q", t.ID, t.Status)
		}
		if !t.Container.Valid() {
			return fmt.Errorf("task %d: unknown container %q", t.ID, t.Container)
		}
	}
	for i := range tasks {
		t := &tasks[i]
		if t.ParentID != nil {
			p, ok := byID[*t.ParentID]
			if !ok {
				return fmt.Errorf("task %d: parent %d does not exist", t.ID, *t.ParentID)
			}
			if p.Container != t.Container {
				return fmt.Errorf("task %d: container %s differs from parent's %s", t.ID, t.Container, p.Container)
			}
			n := 0
			for _, cid := range p.ChildIDs {
				if cid == t.ID {
					n++
				}
			}
			if n != 1 {
				return fmt.Errorf("task %d: parent %d lists it as child %d times", t.ID, *t.ParentID, n)
			}
		}
		for _, cid := range t.ChildIDs {
			c, ok := byID[cid]
			if !ok {
				return fmt.Errorf("task %d: child %d does not exist", t.ID, cid)
			}
			if c.ParentID == nil || *c.ParentID != t.ID {
				return fmt.Errorf("task %d: child %d does not point back", t.ID, cid)
			}
		}
	}
	for i := range tasks {
		seen := map[int]bool{}
		for t := &tasks[i]; t.ParentID != nil; t = byID[*t.ParentID] {
			if seen[t.ID] {
				return fmt.Errorf("task %d: cycle in parent chain", tasks[i].ID)
			}
			seen[t.ID] = true
		}
	}
	return nil
}

func (s *Store) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

// AddRoot appends a new top-level task to the given container.
func (s *Store) AddRoot(content string, container model.Container) int {
	id := s.allocID()
	s.tasks = append(s.tasks, model.Task{
		ID:        id,
		Content:   content,
		CreatedAt: s.now().UTC(),
		Container: container,
		Status:    model.StatusTodo,
		ChildIDs:  []int{},
	})
	s.byID[id] = len(s.tasks) - 1
	return id
}

// AddChild appends a new task under parentID, inheriting its container.
func (s *Store) AddChild(parentID int, content string) (int, error) {
	pi, ok := s.byID[parentID]
	if !ok {
		return 0, fmt.Errorf("add child: parent %d: %w", parentID, ErrNoParent)
	}
	id := s.allocID()
	pid := parentID
	s.tasks = append(s.tasks, model.Task{
		ID:        id,
		Content:   content,
		CreatedAt: s.now().UTC(),
		Container: s.tasks[pi].Container,
		Status:    model.StatusTodo,
		ParentID:  &pid,
		ChildIDs:  []int{},
	})
	s.byID[id] = len(s.tasks) - 1
	s.tasks[pi].ChildIDs = append(s.tasks[pi].ChildIDs, id)
	return id, nil
}

func (s *Store) Edit(id int, content string) error {
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("edit task %d: %w", id, ErrNoTask)
	}
	s.tasks[i].Content = content
	return nil
}

func (s *Store) SetStatus(id int, status model.Status) error {
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("set status of task %d: %w", id, ErrNoTask)
	}
	s.tasks[i].Status = status
	return nil
}

// MoveTo moves a task and its whole subtree to another container. A task
// moved out from under a parent that stays behind becomes a root in the
// destination. Moving to the current container is a no-op and keeps the
// parent link.
func (s *Store) MoveTo(id int, container model.Container) error {
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("move task %d: %w", id, ErrNoTask)
	}
	if s.tasks[i].Container == container {
		return nil
	}
	s.detach(id)
	for _, sub := range s.subtree(id) {
		s.tasks[s.byID[sub]].Container = container
	}
	return nil
}

// Reparent moves a task (with its subtree) under a new parent, or makes
// it a root when newParentID is nil. The new parent must exist, live in
// the same container, and not sit inside the task's own subtree.
func (s *Store) Reparent(id int, newParentID *int) error {
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("reparent task %d: %w", id, ErrNoTask)
	}
	if newParentID == nil {
		s.detach(id)
		return nil
	}
	pid := *newParentID
	pi, ok := s.byID[pid]
	if !ok {
		return fmt.Errorf("reparent task %d under %d: %w", id, pid, ErrNoParent)
	}
	for _, sub := range s.subtree(id) {
		if sub == pid {
			return fmt.Errorf("reparent task %d under %d: %w", id, pid, ErrCycle)
		}
	}
	if s.tasks[pi].Container != s.tasks[i].Container {
		return fmt.Errorf("reparent task %d under %d: %w", id, pid, ErrContainerMismatch)
	}
	s.detach(id)
	s.tasks[i].ParentID = &pid
	s.tasks[pi].ChildIDs = append(s.tasks[pi].ChildIDs, id)
	return nil
}

// Delete removes a task and its whole subtree.
func (s *Store) Delete(id int) error {
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("delete task %d: %w", id, ErrNoTask)
	}
	s.detach(id)
	doomed := make(map[int]bool)
	for _, sub := range s.subtree(id) {
		doomed[sub] = true
	}
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !doomed[t.ID] {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.reindex()
	return nil
}

// detach removes the task from its parent's child list and clears the
// parent link. No-op for roots.
func (s *Store) detach(id int) {
	i := s.byID[id]
	if s.tasks[i].ParentID == nil {
		return
	}
	if pi, ok := s.byID[*s.tasks[i].ParentID]; ok {
		kids := s.tasks[pi].ChildIDs
		out := kids[:0]
		for _, cid := range kids {
			if cid != id {
				out = append(out, cid)
			}
		}
		s.tasks[pi].ChildIDs = out
	}
	s.tasks[i].ParentID = nil
}

// subtree returns id and all its descendants in preorder.
func (s *Store) subtree(id int) []int {
	out := []int{id}
	for _, cid := range s.tasks[s.byID[id]].ChildIDs {
		out = append(out, s.subtree(cid)...)
	}
	return out
}

// Find returns the task with the given id. The pointer stays valid until
// the next mutation.
func (s *Store) Find(id int) (*model.Task, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.tasks[i], true
}

// Tasks returns a snapshot of the forest in document order.
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Len() int { return len(s.tasks) }

// Save writes the whole document atomically.
func (s *Store) Save() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.Path(), b); err != nil {
		return err
	}
	s.lastDoc = b
	return nil
}
