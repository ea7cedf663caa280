package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cyberorganism/internal/display"
	"cyberorganism/internal/model"
	"cyberorganism/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p := display.NewProjection()
	p.Rebuild(s.Tasks())
	return NewEngine(s, p, display.NewActivityLog())
}

func TestParseVerbs(t *testing.T) {
	cases := []struct {
		line string
		want Command
	}{
		{"sub 1 buy milk", Command{Action: ActionSubtask, Target: "1", Text: "buy milk"}},
		{"edit 1.2 new text", Command{Action: ActionEdit, Target: "1.2", Text: "new text"}},
		{"done 2", Command{Action: ActionComplete, Target: "2"}},
		{"done buy milk", Command{Action: ActionComplete, Target: "buy milk"}},
		{"move 1 archived", Command{Action: ActionMove, Target: "1", Container: model.ContainerArchived}},
		{"move buy milk Shelved", Command{Action: ActionMove, Target: "buy milk", Container: model.ContainerShelved}},
		{"delete 3", Command{Action: ActionDelete, Target: "3"}},
		{"focus 1.1", Command{Action: ActionFocus, Target: "1.1"}},
		{"show backburner", Command{Action: ActionShow, Container: model.ContainerBackburner}},
		{"fold 1", Command{Action: ActionFold, Target: "1"}},
		{"unfold 1", Command{Action: ActionUnfold, Target: "1"}},
		{"collapse", Command{Action: ActionCollapse}},
		{"help", Command{Action: ActionHelp}},
		{"DONE 2", Command{Action: ActionComplete, Target: "2"}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.line, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestParseFreeTextCreates(t *testing.T) {
	for _, line := range []string{"buy milk", "subscribe to newsletter", "Movement practice"} {
		got, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		if got.Action != ActionCreate || got.Text != line {
			t.Fatalf("Parse(%q) = %+v, want Create with full line", line, got)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, line := range []string{
		"sub 1", "sub", "edit 1", "done", "move 1", "move 1 nowhere",
		"delete", "focus", "show", "show taskpad backburner", "show attic",
		"fold", "unfold", "collapse now", "help me",
	} {
		if _, err := Parse(line); err == nil {
			t.Fatalf("Parse(%q) should fail", line)
		}
	}
}

func TestExecuteCreateThenFold(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("A")
	e.Execute("sub 1 A1")
	e.Execute("sub 1.1 A1a")

	ids := e.Proj.VisibleIDs()
	if len(ids) != 3 {
		t.Fatalf("visible = %v, want 3 rows", ids)
	}

	e.Execute("fold 1")
	if got := e.Proj.VisibleIDs(); len(got) != 1 || got[0] != ids[0] {
		t.Fatalf("after fold visible = %v", got)
	}
	e.Execute("unfold 1")
	if got := e.Proj.VisibleIDs(); len(got) != 3 {
		t.Fatalf("after unfold visible = %v", got)
	}
}

func TestExecuteCreateUsesActiveContainer(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("show backburner")
	e.Execute("simmering idea")

	tasks := e.Store.Tasks()
	if len(tasks) != 1 || tasks[0].Container != model.ContainerBackburner {
		t.Fatalf("tasks = %+v", tasks)
	}
	if e.Log.Latest() != "Created task: simmering idea" {
		t.Fatalf("activity = %q", e.Log.Latest())
	}
}

func TestExecuteDoneLeavesTaskInPlace(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("write report")
	e.Execute("done 1")

	tk, ok := e.Store.Find(1)
	if !ok {
		t.Fatalf("task gone after done")
	}
	if tk.Status != model.StatusDone {
		t.Fatalf("status = %s, want Done", tk.Status)
	}
	if tk.Container != model.ContainerTaskpad {
		t.Fatalf("container = %s, completing must not archive", tk.Container)
	}
	if got := e.Proj.VisibleIDs(); len(got) != 1 {
		t.Fatalf("completed task vanished from view: %v", got)
	}
	if e.Log.Latest() != "Completed task: write report" {
		t.Fatalf("activity = %q", e.Log.Latest())
	}
}

func TestExecuteMoveCarriesSubtree(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("A")
	e.Execute("sub 1 A1")
	e.Execute("sub 1.1 A1a")

	e.Execute("move 1 Archived")

	for id := 1; id <= 3; id++ {
		tk, ok := e.Store.Find(id)
		if !ok || tk.Container != model.ContainerArchived {
			t.Fatalf("task %d = %+v, want Archived", id, tk)
		}
	}
	if got := e.Proj.VisibleIDs(); len(got) != 0 {
		t.Fatalf("Taskpad still shows %v", got)
	}

	e.Execute("show archived")
	if got := e.Proj.VisibleIDs(); len(got) != 3 {
		t.Fatalf("Archived shows %v, want 3 rows", got)
	}
}

func TestExecuteDeleteRemovesSubtree(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("A")
	e.Execute("sub 1 A1")
	e.Execute("keep me")

	e.Execute("delete 1")
	if e.Store.Len() != 1 {
		t.Fatalf("store has %d tasks, want 1", e.Store.Len())
	}
	if got := e.Proj.VisibleIDs(); len(got) != 1 {
		t.Fatalf("visible = %v", got)
	}
	if e.Log.Latest() != "Deleted task: A" {
		t.Fatalf("activity = %q", e.Log.Latest())
	}
}

func TestExecuteEditByFuzzyContent(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("groceries")
	e.Execute("done groceries")

	tk, _ := e.Store.Find(1)
	if tk.Status != model.StatusDone {
		t.Fatalf("fuzzy target missed: %+v", tk)
	}
}

func TestExecuteUnresolvedTarget(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("only task")

	e.Execute("done 4")
	if e.Log.Latest() != "No task at 4" {
		t.Fatalf("activity = %q", e.Log.Latest())
	}
	e.Execute("done something else entirely")
	if e.Log.Latest() != "No task found matching 'something else entirely'" {
		t.Fatalf("activity = %q", e.Log.Latest())
	}
	tk, _ := e.Store.Find(1)
	if tk.Status != model.StatusTodo {
		t.Fatalf("unresolved target mutated the store: %+v", tk)
	}
}

func TestExecuteMalformedReportsWithoutMutation(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("sub 1")
	if e.Store.Len() != 0 {
		t.Fatalf("malformed command created a task")
	}
	if !strings.Contains(e.Log.Latest(), "usage: sub") {
		t.Fatalf("activity = %q", e.Log.Latest())
	}
}

func TestExecuteEmptyIsNoop(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("   ")
	if e.Store.Len() != 0 || e.Log.Len() != 0 {
		t.Fatalf("blank input had effects")
	}
}

func TestExecuteHelpTogglesOverlay(t *testing.T) {
	e := newTestEngine(t)
	if !e.Execute("help") {
		t.Fatalf("help did not request the overlay")
	}
	if e.Execute("anything else") {
		t.Fatalf("create requested the overlay")
	}
}

func TestExecuteCollapseAll(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("A")
	e.Execute("sub 1 A1")
	e.Execute("B")
	e.Execute("collapse")

	if got := e.Proj.VisibleIDs(); len(got) != 2 {
		t.Fatalf("visible after collapse = %v", got)
	}
	if e.Log.Latest() != "Collapsed all tasks" {
		t.Fatalf("activity = %q", e.Log.Latest())
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p := display.NewProjection()
	p.Rebuild(s.Tasks())
	e := NewEngine(s, p, display.NewActivityLog())

	// Block saving by occupying the temp file path with a directory.
	if err := os.MkdirAll(filepath.Join(dir, "tasks.json.tmp"), 0o755); err != nil {
		t.Fatal(err)
	}
	e.Execute("survives anyway")

	if e.Store.Len() != 1 {
		t.Fatalf("mutation lost on save failure")
	}
	found := false
	for _, msg := range e.Log.Entries() {
		if strings.Contains(msg, "Failed to save tasks") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no save failure in activity log: %v", e.Log.Entries())
	}
}

func TestToggleFoldReportsPath(t *testing.T) {
	e := newTestEngine(t)
	e.Execute("A")
	e.Execute("sub 1 A1")

	e.ToggleFold(1)
	if e.Log.Latest() != "Toggled fold of task 1" {
		t.Fatalf("activity = %q", e.Log.Latest())
	}
	if got := e.Proj.VisibleIDs(); len(got) != 1 {
		t.Fatalf("visible = %v", got)
	}
	e.ToggleFold(1)
	if got := e.Proj.VisibleIDs(); len(got) != 2 {
		t.Fatalf("visible = %v", got)
	}
}
