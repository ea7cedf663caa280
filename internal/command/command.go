// Package command parses the textual commands typed into the compose
// slot and applies them to the store and projection. Every mutation
// saves the whole document; failures surface as activity messages, never
// as partial state.
package command

import (
	"errors"
	"fmt"
	"strings"

	"cyberorganism/internal/display"
	"cyberorganism/internal/model"
	"cyberorganism/internal/store"
)

type Action int

const (
	ActionCreate Action = iota
	ActionSubtask
	ActionEdit
	ActionComplete
	ActionMove
	ActionDelete
	ActionFocus
	ActionShow
	ActionFold
	ActionUnfold
	ActionCollapse
	ActionHelp
)

// Command is one parsed input line. Target is a display path or free
// text for fuzzy lookup; Text carries new content where the verb takes
// any.
type Command struct {
	Action    Action
	Target    string
	Text      string
	Container model.Container
}

// Parse splits an input line into a command. The first word selects the
// verb; anything unrecognized is a Create carrying the whole line. A
// recognized verb with missing or malformed arguments is an error, not a
// task creation.
func Parse(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}, errors.New("empty command")
	}
	fields := strings.Fields(trimmed)
	rest := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "sub":
		if len(rest) < 2 {
			return Command{}, errors.New("usage: sub <task> <content>")
		}
		return Command{Action: ActionSubtask, Target: rest[0], Text: strings.Join(rest[1:], " ")}, nil
	case "edit":
		if len(rest) < 2 {
			return Command{}, errors.New("usage: edit <task> <content>")
		}
		return Command{Action: ActionEdit, Target: rest[0], Text: strings.Join(rest[1:], " ")}, nil
	case "done":
		if len(rest) < 1 {
			return Command{}, errors.New("usage: done <task>")
		}
		return Command{Action: ActionComplete, Target: strings.Join(rest, " ")}, nil
	case "move":
		if len(rest) < 2 {
			return Command{}, errors.New("usage: move <task> <container>")
		}
		c, ok := model.ParseContainer(rest[len(rest)-1])
		if !ok {
			return Command{}, fmt.Errorf("invalid container: %s", rest[len(rest)-1])
		}
		return Command{Action: ActionMove, Target: strings.Join(rest[:len(rest)-1], " "), Container: c}, nil
	case "delete":
		if len(rest) < 1 {
			return Command{}, errors.New("usage: delete <task>")
		}
		return Command{Action: ActionDelete, Target: strings.Join(rest, " ")}, nil
	case "focus":
		if len(rest) < 1 {
			return Command{}, errors.New("usage: focus <task>")
		}
		return Command{Action: ActionFocus, Target: strings.Join(rest, " ")}, nil
	case "show":
		if len(rest) != 1 {
			return Command{}, errors.New("usage: show <container>")
		}
		c, ok := model.ParseContainer(rest[0])
		if !ok {
			return Command{}, fmt.Errorf("invalid container: %s", rest[0])
		}
		return Command{Action: ActionShow, Container: c}, nil
	case "fold":
		if len(rest) < 1 {
			return Command{}, errors.New("usage: fold <task>")
		}
		return Command{Action: ActionFold, Target: strings.Join(rest, " ")}, nil
	case "unfold":
		if len(rest) < 1 {
			return Command{}, errors.New("usage: unfold <task>")
		}
		return Command{Action: ActionUnfold, Target: strings.Join(rest, " ")}, nil
	case "collapse":
		if len(rest) != 0 {
			return Command{}, errors.New("usage: collapse")
		}
		return Command{Action: ActionCollapse}, nil
	case "help":
		if len(rest) != 0 {
			return Command{}, errors.New("usage: help")
		}
		return Command{Action: ActionHelp}, nil
	}
	return Command{Action: ActionCreate, Text: trimmed}, nil
}

// Engine applies commands and the key-driven operations to the store,
// rebuilding the projection and posting one activity message per
// outcome.
type Engine struct {
	Store *store.Store
	Proj  *display.Projection
	Log   *display.ActivityLog
}

func NewEngine(s *store.Store, p *display.Projection, l *display.ActivityLog) *Engine {
	return &Engine{Store: s, Proj: p, Log: l}
}

// Execute runs one input line. The returned flag asks the caller to
// toggle the help overlay, the only command outcome that lives outside
// the engine's reach.
func (e *Engine) Execute(line string) (toggleHelp bool) {
	if strings.TrimSpace(line) == "" {
		return false
	}
	cmd, err := Parse(line)
	if err != nil {
		e.Log.Add(err.Error())
		return false
	}

	switch cmd.Action {
	case ActionCreate:
		e.CreateRoot(cmd.Text)
	case ActionSubtask:
		id, ok := e.resolveTarget(cmd.Target)
		if !ok {
			return false
		}
		_, _ = e.CreateSubtask(id, cmd.Text)
	case ActionEdit:
		id, ok := e.resolveTarget(cmd.Target)
		if !ok {
			return false
		}
		e.CommitEdit(id, cmd.Text)
	case ActionComplete:
		id, ok := e.resolveTarget(cmd.Target)
		if !ok {
			return false
		}
		e.CompleteTask(id)
	case ActionMove:
		id, ok := e.resolveTarget(cmd.Target)
		if !ok {
			return false
		}
		e.MoveTask(id, cmd.Container)
	case ActionDelete:
		id, ok := e.resolveTarget(cmd.Target)
		if !ok {
			return false
		}
		e.DeleteTask(id)
	case ActionFocus:
		id, ok := e.resolveTarget(cmd.Target)
		if !ok {
			return false
		}
		if t, found := e.Store.Find(id); found && e.Proj.FocusTask(id) {
			e.Log.Add(fmt.Sprintf("Focused on: %s", t.Content))
		}
	case ActionShow:
		e.Proj.ActiveContainer = cmd.Container
		e.rebuild()
		e.Log.Add(fmt.Sprintf("Showing %s", cmd.Container))
	case ActionFold:
		id, ok := e.resolveTarget(cmd.Target)
		if !ok {
			return false
		}
		e.Proj.Fold(id)
		e.rebuild()
		e.logWithContent("Folded task: %s", id)
	case ActionUnfold:
		id, ok := e.resolveTarget(cmd.Target)
		if !ok {
			return false
		}
		e.Proj.Unfold(id)
		e.rebuild()
		e.logWithContent("Unfolded task: %s", id)
	case ActionCollapse:
		e.Proj.CollapseAll()
		e.rebuild()
		e.Log.Add("Collapsed all tasks")
	case ActionHelp:
		return true
	}
	return false
}

// CreateRoot adds a top-level task to the active container.
func (e *Engine) CreateRoot(content string) int {
	id := e.Store.AddRoot(content, e.Proj.ActiveContainer)
	e.save()
	e.rebuild()
	e.Log.Add(fmt.Sprintf("Created task: %s", content))
	return id
}

// CreateSubtask adds a child under parentID and unfolds the parent so
// the new task is visible. Empty content is allowed; the subtask flow
// creates the row first and fills it in afterwards.
func (e *Engine) CreateSubtask(parentID int, content string) (int, error) {
	id, err := e.Store.AddChild(parentID, content)
	if err != nil {
		e.Log.Add(fmt.Sprintf("Cannot create subtask: %v", err))
		return 0, err
	}
	e.Proj.Unfold(parentID)
	e.save()
	e.rebuild()
	if p, ok := e.Store.Find(parentID); ok {
		e.Log.Add(fmt.Sprintf("Created subtask under: %s", p.Content))
	}
	return id, nil
}

// CommitEdit replaces a task's content.
func (e *Engine) CommitEdit(id int, content string) {
	if err := e.Store.Edit(id, content); err != nil {
		e.Log.Add(fmt.Sprintf("Cannot edit task: %v", err))
		return
	}
	e.save()
	e.rebuild()
	e.Log.Add(fmt.Sprintf("Updated task: %s", content))
}

// CompleteTask marks a task Done. The task stays in its container; use
// move to archive it.
func (e *Engine) CompleteTask(id int) {
	if err := e.Store.SetStatus(id, model.StatusDone); err != nil {
		e.Log.Add(fmt.Sprintf("Cannot complete task: %v", err))
		return
	}
	e.save()
	e.rebuild()
	e.logWithContent("Completed task: %s", id)
}

// MoveTask moves a task and its subtree to another container.
func (e *Engine) MoveTask(id int, container model.Container) {
	content := ""
	if t, ok := e.Store.Find(id); ok {
		content = t.Content
	}
	if err := e.Store.MoveTo(id, container); err != nil {
		e.Log.Add(fmt.Sprintf("Cannot move task: %v", err))
		return
	}
	e.save()
	e.rebuild()
	e.Log.Add(fmt.Sprintf("Moved task to %s: %s", container, content))
}

// DeleteTask removes a task and its subtree.
func (e *Engine) DeleteTask(id int) {
	content := ""
	if t, ok := e.Store.Find(id); ok {
		content = t.Content
	}
	if err := e.Store.Delete(id); err != nil {
		e.Log.Add(fmt.Sprintf("Cannot delete task: %v", err))
		return
	}
	e.save()
	e.rebuild()
	e.Log.Add(fmt.Sprintf("Deleted task: %s", content))
}

// ToggleFold flips the fold state of a task, reporting it by its display
// position.
func (e *Engine) ToggleFold(id int) {
	path := ""
	for _, r := range e.Proj.Rows() {
		if r.ID == id {
			path = r.Path
			break
		}
	}
	e.Proj.ToggleFold(id)
	e.rebuild()
	if path != "" {
		e.Log.Add(fmt.Sprintf("Toggled fold of task %s", path))
	}
}

func (e *Engine) rebuild() {
	e.Proj.Rebuild(e.Store.Tasks())
}

// save persists after a mutation. A failed save keeps the in-memory
// change and reports through the activity log.
func (e *Engine) save() {
	if err := e.Store.Save(); err != nil {
		e.Log.Add(fmt.Sprintf("Failed to save tasks: %v", err))
	}
}

func (e *Engine) logWithContent(format string, id int) {
	if t, ok := e.Store.Find(id); ok {
		e.Log.Add(fmt.Sprintf(format, t.Content))
	}
}

// resolveTarget maps a command target to a task id: dotted display paths
// resolve through the projection; anything that is not a well-formed
// path falls back to fuzzy content lookup. Failures are reported here so
// callers can simply stop.
func (e *Engine) resolveTarget(target string) (int, bool) {
	if indices, ok := display.ParsePath(target); ok {
		if id, ok := e.Proj.ResolvePath(indices); ok {
			return id, true
		}
		e.Log.Add(fmt.Sprintf("No task at %s", target))
		return 0, false
	}
	if id, ok := FindByContent(e.Store.Tasks(), e.Proj.ActiveContainer, target); ok {
		return id, true
	}
	e.Log.Add(fmt.Sprintf("No task found matching '%s'", target))
	return 0, false
}
