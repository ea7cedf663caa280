package feed

import (
	"sort"
	"time"
)

const (
	// DefaultMinInterval is the minimum spacing between issued
	// requests. Edits arriving inside the window are dropped, not
	// deferred; the suppressed text reaches the service only if a later
	// edit passes the gate.
	DefaultMinInterval = 50 * time.Millisecond

	// MaxPage bounds pagination so a held-down PgDn cannot accumulate
	// without limit.
	MaxPage = 50
)

// Request identifies one query in flight. Session increments whenever
// the query text changes, so a late response from an earlier query can
// be recognized and dropped.
type Request struct {
	Session int
	Query   string
	Page    int
}

// Coordinator owns the suggestion feed state: current query, items
// accumulated across pages, focus, and the expanded/pinned sets. It
// never blocks. Callers run the returned Request against the Client on
// a worker and deliver the outcome back through HandleResponse or
// HandleError on the UI thread.
type Coordinator struct {
	MinInterval time.Duration

	session     int
	query       string
	page        int
	items       []Item
	mergedPages map[int]bool
	inFlight    bool
	lastIssued  time.Time
	hasIssued   bool

	focused  int
	expanded map[string]bool
	pinned   map[string]bool

	now func() time.Time
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		MinInterval: DefaultMinInterval,
		mergedPages: map[int]bool{},
		expanded:    map[string]bool{},
		pinned:      map[string]bool{},
		now:         time.Now,
	}
}

// OnInput reacts to an edit of the feed buffer. It returns the request
// to issue, or nil when the edit is suppressed: empty text, text equal
// to the current query, or arriving within MinInterval of the last
// issued request. An accepted edit starts a fresh session: page 1,
// items and item state cleared.
func (c *Coordinator) OnInput(text string) *Request {
	if text == "" || text == c.query {
		return nil
	}
	if c.hasIssued && c.now().Sub(c.lastIssued) < c.MinInterval {
		return nil
	}
	c.session++
	c.query = text
	c.page = 1
	c.items = nil
	c.mergedPages = map[int]bool{}
	c.focused = 0
	c.expanded = map[string]bool{}
	c.pinned = map[string]bool{}
	c.inFlight = true
	c.lastIssued = c.now()
	c.hasIssued = true
	return &Request{Session: c.session, Query: text, Page: 1}
}

// LoadNextPage requests the page after the current one for the same
// query. Nil when there is no query, a request is already in flight, or
// the page cap is reached.
func (c *Coordinator) LoadNextPage() *Request {
	if c.query == "" || c.inFlight || c.page >= MaxPage {
		return nil
	}
	c.page++
	c.inFlight = true
	c.lastIssued = c.now()
	c.hasIssued = true
	return &Request{Session: c.session, Query: c.query, Page: c.page}
}

// HandleResponse merges one page of results. A response from a
// superseded session, or for a page already merged, is dropped without
// touching state; in particular a stale response never clears the
// in-flight flag of a newer request.
func (c *Coordinator) HandleResponse(req Request, resp *Response) {
	if req.Session != c.session || c.mergedPages[req.Page] {
		return
	}
	c.mergedPages[req.Page] = true
	c.inFlight = false
	if resp != nil {
		c.items = append(c.items, resp.Items...)
	}
}

// HandleError records a failed request: accumulated items stay as they
// are and the in-flight flag clears. A failed page advance rolls back
// so the page can be retried.
func (c *Coordinator) HandleError(req Request) {
	if req.Session != c.session {
		return
	}
	if req.Page > 1 && req.Page == c.page && !c.mergedPages[req.Page] {
		c.page--
	}
	c.inFlight = false
}

// SortedView returns the accumulated items by relevance, highest first.
// Ties keep insertion order so equal items do not jump around as pages
// merge.
func (c *Coordinator) SortedView() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance() > out[j].Relevance()
	})
	return out
}

func (c *Coordinator) FocusNext() {
	if n := len(c.items); n > 0 {
		c.focused = (c.focused + 1) % n
	}
}

func (c *Coordinator) FocusPrevious() {
	if n := len(c.items); n > 0 {
		c.focused = (c.focused - 1 + n) % n
	}
}

func (c *Coordinator) FocusedIndex() int {
	return c.focused
}

// FocusedItem returns the focused entry of the sorted view.
func (c *Coordinator) FocusedItem() (Item, bool) {
	view := c.SortedView()
	if c.focused < 0 || c.focused >= len(view) {
		return Item{}, false
	}
	return view[c.focused], true
}

func (c *Coordinator) ToggleExpand(id string) {
	if c.expanded[id] {
		delete(c.expanded, id)
	} else {
		c.expanded[id] = true
	}
}

func (c *Coordinator) IsExpanded(id string) bool {
	return c.expanded[id]
}

func (c *Coordinator) TogglePin(id string) {
	if c.pinned[id] {
		delete(c.pinned, id)
	} else {
		c.pinned[id] = true
	}
}

func (c *Coordinator) IsPinned(id string) bool {
	return c.pinned[id]
}

func (c *Coordinator) Query() string {
	return c.query
}

func (c *Coordinator) Page() int {
	return c.page
}

func (c *Coordinator) InFlight() bool {
	return c.inFlight
}

// Items returns the accumulated items in arrival order.
func (c *Coordinator) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Coordinator) Len() int {
	return len(c.items)
}
