package page

import (
	"sync"

	"github.com/rubiojr/explore/pkg/explore"
)

// View is the results area: the rendered items, the counter text and the
// not-found indicator. It is safe for concurrent use so a front end can read it
// while the controller paints.
type View struct {
	mu       sync.RWMutex
	items    []explore.Item
	counter  string
	notFound bool
	painted  int
}

// Snapshot is a copy of the view state.
type Snapshot struct {
	Items    []explore.Item
	Counter  string
	NotFound bool
	// Paints counts how many times the view was repainted.
	Paints int
}

// NewView returns an empty view with nothing painted yet.
func NewView() *View {
	return &View{}
}

// ShowResults replaces the rendered items and updates counter and indicator.
func (v *View) ShowResults(items []explore.Item) {
	cp := make([]explore.Item, len(items))
	copy(cp, items)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = cp
	v.counter = explore.CounterText(len(cp))
	v.notFound = len(cp) == 0
	v.painted++
}

// ShowFailure shows the not-found indicator and the failure counter. Previously
// rendered items are removed so the counter never contradicts the cards.
func (v *View) ShowFailure() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = nil
	v.counter = explore.FailureCounterText
	v.notFound = true
	v.painted++
}

// Snapshot returns a copy of the current view state.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	cp := make([]explore.Item, len(v.items))
	copy(cp, v.items)
	return Snapshot{
		Items:    cp,
		Counter:  v.counter,
		NotFound: v.notFound,
		Paints:   v.painted,
	}
}
