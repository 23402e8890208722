package page

import (
	"errors"
	"testing"
	"time"

	"github.com/rubiojr/explore/pkg/explore"
)

func TestNewFiltersDefaults(t *testing.T) {
	f := NewFilters(nil)

	if f.Category.Value() != explore.AnyCategory {
		t.Errorf("expected category %q, got %q", explore.AnyCategory, f.Category.Value())
	}
	if f.Sort.Checked() != explore.SortNewest {
		t.Errorf("expected sort newest, got %q", f.Sort.Checked())
	}

	c := f.Criteria()
	if c.Query != "" || c.Author != "" || c.Tags != nil {
		t.Errorf("unexpected criteria %+v", c)
	}
}

func TestNewFiltersPrependsAny(t *testing.T) {
	f := NewFilters([]Option{{Value: "open", Text: "Open"}})
	if f.Category.Options[0].Value != explore.AnyCategory {
		t.Fatalf("expected any option first, got %+v", f.Category.Options)
	}
	if f.Category.Value() != explore.AnyCategory {
		t.Errorf("expected any selected, got %q", f.Category.Value())
	}
}

func TestCriteriaFromFilters(t *testing.T) {
	f := NewFilters(nil)
	f.Query = "padel"
	f.Author = "javi"
	f.Description = "datos"
	f.TagsInput = " a, ,b "
	f.Category.SetValue("open")
	f.Sort.Check(explore.SortOldest)

	c := f.Criteria()
	if c.Query != "padel" || c.Author != "javi" || c.Description != "datos" {
		t.Errorf("text fields not copied: %+v", c)
	}
	if len(c.Tags) != 2 || c.Tags[0] != "a" || c.Tags[1] != "b" {
		t.Errorf("unexpected tags %q", c.Tags)
	}
	if c.Category != "open" || c.Sorting != explore.SortOldest {
		t.Errorf("unexpected selectors %+v", c)
	}
}

func TestRadioGroupAlwaysChecked(t *testing.T) {
	g := NewRadioGroup(explore.SortOrders(), "bogus")
	if g.Checked() != explore.SortNewest {
		t.Fatalf("expected fallback to first value, got %q", g.Checked())
	}
	if g.Check("bogus") {
		t.Fatal("Check accepted a value outside the group")
	}
	if g.Checked() != explore.SortNewest {
		t.Errorf("rejected Check changed the checked value to %q", g.Checked())
	}
}

func TestSelectCategoryByText(t *testing.T) {
	f := NewFilters(nil)

	if err := f.SelectCategoryByText(" Qualifying "); err != nil {
		t.Fatalf("SelectCategoryByText: %v", err)
	}
	if f.Category.Value() != "qualifying" {
		t.Errorf("expected qualifying, got %q", f.Category.Value())
	}

	// Matching is on display text, not value.
	err := f.SelectCategoryByText("open")
	if !errors.Is(err, ErrNoSuchCategory) {
		t.Fatalf("expected ErrNoSuchCategory, got %v", err)
	}
	if f.Category.Value() != "qualifying" {
		t.Errorf("selection changed on mismatch: %q", f.Category.Value())
	}
}

func TestClear(t *testing.T) {
	f := NewFilters(nil)
	f.Query = "q"
	f.Author = "a"
	f.Description = "d"
	f.TagsInput = "t"
	f.Category.SetValue("master")
	f.Sort.Check(explore.SortOldest)

	f.Clear()

	if f.Query != "" || f.Author != "" {
		t.Errorf("query/author not cleared: %q %q", f.Query, f.Author)
	}
	if f.Category.Value() != explore.AnyCategory {
		t.Errorf("category not reset: %q", f.Category.Value())
	}
	if f.Sort.Checked() != explore.SortNewest {
		t.Errorf("sort not reset: %q", f.Sort.Checked())
	}
	if f.Description != "d" || f.TagsInput != "t" {
		t.Errorf("description/tags should survive Clear: %q %q", f.Description, f.TagsInput)
	}
}

func TestViewPaints(t *testing.T) {
	v := NewView()
	item := explore.Item{ID: "1", Title: "Padel", CreatedAt: time.Now()}

	v.ShowResults([]explore.Item{item, item})
	s := v.Snapshot()
	if s.Counter != "2 datasets found" || s.NotFound || len(s.Items) != 2 {
		t.Errorf("unexpected snapshot after results: %+v", s)
	}

	v.ShowResults(nil)
	s = v.Snapshot()
	if s.Counter != "0 datasets found" || !s.NotFound || len(s.Items) != 0 {
		t.Errorf("unexpected snapshot after empty results: %+v", s)
	}

	v.ShowResults([]explore.Item{item})
	v.ShowFailure()
	s = v.Snapshot()
	if s.Counter != explore.FailureCounterText || !s.NotFound || len(s.Items) != 0 {
		t.Errorf("unexpected snapshot after failure: %+v", s)
	}
	if s.Paints != 4 {
		t.Errorf("expected 4 paints, got %d", s.Paints)
	}
}
