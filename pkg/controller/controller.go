// Package controller drives the explore page: it turns user actions into filter
// edits, issues one search per action and paints the results view.
//
// Every search is tagged with a sequence number. Responses may come back in any
// order; only the one carrying the latest issued number is painted, older ones
// are dropped.
package controller

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/log"
	"github.com/rubiojr/explore/pkg/page"
)

// QueryParams are the URL parameters that seed the text query on load, in
// lookup order.
var QueryParams = []string{"query", "filter_title"}

// Searcher runs a search against the dataset endpoint.
type Searcher interface {
	Search(ctx context.Context, c explore.Criteria) ([]explore.Item, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, c explore.Criteria) ([]explore.Item, error)

func (f SearcherFunc) Search(ctx context.Context, c explore.Criteria) ([]explore.Item, error) {
	return f(ctx, c)
}

// Request is a search about to be sent.
type Request struct {
	Seq      uint64
	Criteria explore.Criteria
}

// Outcome is the result of a Request.
type Outcome struct {
	Seq   uint64
	Items []explore.Item
	Err   error
}

// Pending performs exactly one search when called.
type Pending struct {
	Request
	run func() Outcome
}

// Run sends the request and waits for the response.
func (p Pending) Run() Outcome {
	return p.run()
}

// Controller owns the page state. Filters are only edited through Dispatch and
// Load, from a single goroutine.
type Controller struct {
	filters  *page.Filters
	view     *page.View
	searcher Searcher
	handlers map[ActionKind]handler
	seq      atomic.Uint64
	log      *log.Logger
}

// New returns a controller painting into view.
func New(filters *page.Filters, view *page.View, searcher Searcher) *Controller {
	return &Controller{
		filters:  filters,
		view:     view,
		searcher: searcher,
		handlers: defaultHandlers(),
		log:      log.ForService("controller"),
	}
}

// Filters returns the filter state.
func (c *Controller) Filters() *page.Filters {
	return c.filters
}

// View returns the results view.
func (c *Controller) View() *page.View {
	return c.view
}

// Latest returns the sequence number of the last issued request.
func (c *Controller) Latest() uint64 {
	return c.seq.Load()
}

// Trigger snapshots the current filters and prepares one search for them.
func (c *Controller) Trigger(ctx context.Context) Pending {
	req := Request{
		Seq:      c.seq.Add(1),
		Criteria: c.filters.Criteria(),
	}
	c.log.Debugf("search #%d: %+v", req.Seq, req.Criteria)

	return Pending{
		Request: req,
		run: func() Outcome {
			items, err := c.searcher.Search(ctx, req.Criteria)
			return Outcome{Seq: req.Seq, Items: items, Err: err}
		},
	}
}

// Dispatch applies a to the filters and prepares the follow-up search. When
// the action cannot be applied no search is prepared and the error is returned.
func (c *Controller) Dispatch(ctx context.Context, a Action) (Pending, error) {
	h, ok := c.handlers[a.Kind]
	if !ok {
		return Pending{}, fmt.Errorf("no handler for action %s", a.Kind)
	}
	if err := h(c.filters, a); err != nil {
		c.log.Warnf("%s: %v", a.Kind, err)
		return Pending{}, err
	}
	return c.Trigger(ctx), nil
}

// Load seeds the text query from the page URL and prepares the first search.
// Without a usable parameter the search runs with the default filters.
func (c *Controller) Load(ctx context.Context, params url.Values) Pending {
	for _, name := range QueryParams {
		if q := params.Get(name); strings.TrimSpace(q) != "" {
			c.filters.Query = q
			break
		}
	}
	return c.Trigger(ctx)
}

// Apply paints o if it answers the latest request and reports whether it did.
func (c *Controller) Apply(o Outcome) bool {
	if latest := c.seq.Load(); o.Seq != latest {
		c.log.Debugf("dropping stale response #%d (latest #%d)", o.Seq, latest)
		return false
	}
	if o.Err != nil {
		c.log.Errorf("search #%d failed: %v", o.Seq, o.Err)
		c.view.ShowFailure()
		return true
	}
	c.view.ShowResults(o.Items)
	return true
}

// Search runs the current filters synchronously and paints the result.
func (c *Controller) Search(ctx context.Context) error {
	o := c.Trigger(ctx).Run()
	c.Apply(o)
	return o.Err
}
