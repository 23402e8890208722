package controller

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/page"
)

type recordingSearcher struct {
	mu    sync.Mutex
	calls []explore.Criteria
	items []explore.Item
	err   error
}

func (s *recordingSearcher) Search(_ context.Context, c explore.Criteria) ([]explore.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	return s.items, s.err
}

func (s *recordingSearcher) Calls() []explore.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]explore.Criteria, len(s.calls))
	copy(out, s.calls)
	return out
}

func newTestController(s Searcher) *Controller {
	return New(page.NewFilters(nil), page.NewView(), s)
}

func items(n int) []explore.Item {
	out := make([]explore.Item, n)
	for i := range out {
		out[i] = explore.Item{ID: string(rune('a' + i)), Title: "Dataset", CreatedAt: time.Unix(0, 0)}
	}
	return out
}

func TestResultCounter(t *testing.T) {
	tests := []struct {
		n       int
		counter string
	}{
		{0, "0 datasets found"},
		{1, "1 dataset found"},
		{3, "3 datasets found"},
	}
	for _, tt := range tests {
		s := &recordingSearcher{items: items(tt.n)}
		c := newTestController(s)
		c.View().ShowResults(items(5))

		if err := c.Search(context.Background()); err != nil {
			t.Fatalf("Search: %v", err)
		}
		snap := c.View().Snapshot()
		if snap.Counter != tt.counter {
			t.Errorf("n=%d: counter %q, want %q", tt.n, snap.Counter, tt.counter)
		}
		if snap.NotFound != (tt.n == 0) {
			t.Errorf("n=%d: not-found indicator %v", tt.n, snap.NotFound)
		}
		if len(snap.Items) != tt.n {
			t.Errorf("n=%d: container holds %d items, previous cards not replaced", tt.n, len(snap.Items))
		}
	}
}

func TestFailureShowsNotFound(t *testing.T) {
	s := &recordingSearcher{items: items(2)}
	c := newTestController(s)
	if err := c.Search(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.err = errors.New("HTTP error! status: 500")
	if err := c.Search(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	snap := c.View().Snapshot()
	if snap.Counter != "0 results found" {
		t.Errorf("counter %q", snap.Counter)
	}
	if !snap.NotFound {
		t.Error("not-found indicator hidden after failure")
	}
	if len(snap.Items) != 0 {
		t.Errorf("stale cards left after failure: %d", len(snap.Items))
	}
}

func TestSelectTagIssuesOneSearch(t *testing.T) {
	s := &recordingSearcher{}
	c := newTestController(s)
	c.Filters().Query = "something else"

	p, err := c.Dispatch(context.Background(), SelectTag("  phi "))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	c.Apply(p.Run())

	calls := s.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 search, got %d", len(calls))
	}
	if calls[0].Query != "phi" || c.Filters().Query != "phi" {
		t.Errorf("query not set to tag: sent %q, field %q", calls[0].Query, c.Filters().Query)
	}
}

func TestSelectCategory(t *testing.T) {
	s := &recordingSearcher{}
	c := newTestController(s)

	p, err := c.Dispatch(context.Background(), SelectCategory("Master"))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	p.Run()
	if got := s.Calls()[0].Category; got != "master" {
		t.Errorf("expected category value master, got %q", got)
	}

	_, err = c.Dispatch(context.Background(), SelectCategory("Grand Slam"))
	if !errors.Is(err, page.ErrNoSuchCategory) {
		t.Fatalf("expected ErrNoSuchCategory, got %v", err)
	}
	if len(s.Calls()) != 1 {
		t.Errorf("rejected action issued a search")
	}
	if c.Filters().Category.Value() != "master" {
		t.Errorf("selection changed on mismatch")
	}
}

func TestClearIssuesOneSearchWithDefaults(t *testing.T) {
	s := &recordingSearcher{}
	c := newTestController(s)
	f := c.Filters()
	f.Query = "padel"
	f.Author = "javi"
	f.Category.SetValue("open")
	f.Sort.Check(explore.SortOldest)

	p, err := c.Dispatch(context.Background(), Clear())
	if err != nil {
		t.Fatal(err)
	}
	p.Run()

	calls := s.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 search, got %d", len(calls))
	}
	got := calls[0]
	if got.Query != "" || got.Author != "" || got.Category != explore.AnyCategory || got.Sorting != explore.SortNewest {
		t.Errorf("clear sent %+v", got)
	}
}

func TestInputActions(t *testing.T) {
	s := &recordingSearcher{}
	c := newTestController(s)
	ctx := context.Background()

	steps := []Action{
		Input(FieldQuery, "padel"),
		Input(FieldAuthor, "javi"),
		Input(FieldDescription, "datos"),
		Input(FieldTags, "a, b,,"),
		Input(FieldCategory, "qualifying"),
		Input(FieldSort, "oldest"),
	}
	for _, a := range steps {
		p, err := c.Dispatch(ctx, a)
		if err != nil {
			t.Fatalf("Dispatch(%+v): %v", a, err)
		}
		p.Run()
	}

	calls := s.Calls()
	if len(calls) != len(steps) {
		t.Fatalf("expected one search per edit, got %d", len(calls))
	}
	last := calls[len(calls)-1]
	want := explore.Criteria{
		Query: "padel", Author: "javi", Description: "datos",
		Tags: []string{"a", "b"}, Category: "qualifying", Sorting: explore.SortOldest,
	}
	if last.Query != want.Query || last.Author != want.Author || last.Description != want.Description ||
		last.Category != want.Category || last.Sorting != want.Sorting || len(last.Tags) != 2 {
		t.Errorf("last criteria %+v, want %+v", last, want)
	}

	for _, bad := range []Action{
		Input(FieldSort, "random"),
		Input(FieldCategory, "nope"),
		Input("colour", "red"),
		{Kind: ActionKind(99)},
	} {
		if _, err := c.Dispatch(ctx, bad); err == nil {
			t.Errorf("expected error for %+v", bad)
		}
	}
	if len(s.Calls()) != len(steps) {
		t.Errorf("rejected actions issued searches")
	}
}

func TestLoadSeedsQuery(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
		want   string
	}{
		{"query param", url.Values{"query": {"phi"}}, "phi"},
		{"legacy param", url.Values{"filter_title": {"padel"}}, "padel"},
		{"blank param", url.Values{"query": {"  "}}, ""},
		{"none", url.Values{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSearcher{}
			c := newTestController(s)

			p := c.Load(context.Background(), tt.params)
			if c.Filters().Query != tt.want {
				t.Errorf("field %q before search, want %q", c.Filters().Query, tt.want)
			}
			if p.Criteria.Query != tt.want {
				t.Errorf("first search carries %q, want %q", p.Criteria.Query, tt.want)
			}
			c.Apply(p.Run())
			if n := len(s.Calls()); n != 1 {
				t.Errorf("expected exactly one initial search, got %d", n)
			}
		})
	}
}

func TestStaleResponsesDropped(t *testing.T) {
	s := SearcherFunc(func(_ context.Context, c explore.Criteria) ([]explore.Item, error) {
		if c.Query == "slow" {
			return items(1), nil
		}
		return items(3), nil
	})
	c := newTestController(s)
	ctx := context.Background()

	first, _ := c.Dispatch(ctx, Input(FieldQuery, "slow"))
	second, _ := c.Dispatch(ctx, Input(FieldQuery, "fast"))

	if !c.Apply(second.Run()) {
		t.Fatal("latest response not applied")
	}
	if c.Apply(first.Run()) {
		t.Fatal("stale response applied")
	}

	snap := c.View().Snapshot()
	if snap.Counter != "3 datasets found" || snap.Paints != 1 {
		t.Errorf("view shows %q after %d paints", snap.Counter, snap.Paints)
	}
}

func TestParseActionKind(t *testing.T) {
	for _, k := range []ActionKind{ActionInput, ActionSelectTag, ActionSelectCategory, ActionClear} {
		got, err := ParseActionKind(k.String())
		if err != nil || got != k {
			t.Errorf("round trip of %s: %v %v", k, got, err)
		}
	}
	if _, err := ParseActionKind("explode"); err == nil {
		t.Error("expected error for unknown action")
	}
}
