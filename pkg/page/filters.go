// Package page models the explore page as explicit state: the filter controls
// the user edits and the results view a renderer paints. Nothing here touches a
// rendering target; HTML and terminal front ends read from these types.
package page

import (
	"errors"
	"strings"

	"github.com/rubiojr/explore/pkg/explore"
)

// ErrNoSuchCategory is returned when no category option carries the requested
// display text.
var ErrNoSuchCategory = errors.New("no category option with that display text")

// Option is a selectable entry with a submitted value and a display text.
type Option struct {
	Value string
	Text  string
}

// Select is a single choice control.
type Select struct {
	Options  []Option
	selected string
}

// NewSelect returns a select with the first option selected.
func NewSelect(options []Option) *Select {
	s := &Select{Options: options}
	if len(options) > 0 {
		s.selected = options[0].Value
	}
	return s
}

// Value returns the selected option value.
func (s *Select) Value() string {
	return s.selected
}

// SetValue selects the option with the given value. Unknown values are ignored
// and reported as false.
func (s *Select) SetValue(v string) bool {
	for _, o := range s.Options {
		if o.Value == v {
			s.selected = v
			return true
		}
	}
	return false
}

// SelectByText selects the first option whose display text equals text.
func (s *Select) SelectByText(text string) bool {
	for _, o := range s.Options {
		if o.Text == text {
			s.selected = o.Value
			return true
		}
	}
	return false
}

// RadioGroup holds the sort order radios. Exactly one value is checked.
type RadioGroup struct {
	values  []explore.SortOrder
	checked explore.SortOrder
}

// NewRadioGroup builds a group with def checked. If def is not one of values the
// first value is checked instead.
func NewRadioGroup(values []explore.SortOrder, def explore.SortOrder) *RadioGroup {
	g := &RadioGroup{values: values}
	if !g.Check(def) && len(values) > 0 {
		g.checked = values[0]
	}
	return g
}

// Values returns the radio values in display order.
func (g *RadioGroup) Values() []explore.SortOrder {
	return g.values
}

// Checked returns the checked value.
func (g *RadioGroup) Checked() explore.SortOrder {
	return g.checked
}

// Check checks v and unchecks everything else. Values outside the group are
// rejected.
func (g *RadioGroup) Check(v explore.SortOrder) bool {
	for _, val := range g.values {
		if val == v {
			g.checked = v
			return true
		}
	}
	return false
}

// Filters is the state of the filter controls.
type Filters struct {
	Query       string
	Author      string
	Description string
	TagsInput   string
	Category    *Select
	Sort        *RadioGroup
}

// DefaultCategories are used when the page does not provide its own list.
func DefaultCategories() []Option {
	return []Option{
		{Value: explore.AnyCategory, Text: "Any"},
		{Value: "master", Text: "Master"},
		{Value: "open", Text: "Open"},
		{Value: "qualifying", Text: "Qualifying"},
	}
}

// NewFilters returns filters with empty inputs, the category sentinel selected
// and the default sort checked. An "any" option is prepended when categories
// lack one.
func NewFilters(categories []Option) *Filters {
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	if !hasValue(categories, explore.AnyCategory) {
		categories = append([]Option{{Value: explore.AnyCategory, Text: "Any"}}, categories...)
	}
	f := &Filters{
		Category: NewSelect(categories),
		Sort:     NewRadioGroup(explore.SortOrders(), explore.DefaultSort),
	}
	f.Category.SetValue(explore.AnyCategory)
	return f
}

func hasValue(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Criteria builds the record sent to the search endpoint.
func (f *Filters) Criteria() explore.Criteria {
	return explore.Criteria{
		Query:       f.Query,
		Author:      f.Author,
		Description: f.Description,
		Tags:        explore.ParseTags(f.TagsInput),
		Category:    f.Category.Value(),
		Sorting:     f.Sort.Checked(),
	}
}

// SetTag makes tag the text query.
func (f *Filters) SetTag(tag string) {
	f.Query = strings.TrimSpace(tag)
}

// SelectCategoryByText selects the category whose display text matches text.
// The current selection is kept when nothing matches.
func (f *Filters) SelectCategoryByText(text string) error {
	if !f.Category.SelectByText(strings.TrimSpace(text)) {
		return ErrNoSuchCategory
	}
	return nil
}

// Clear resets query, author, category and sort order. Description and tags
// keep their values.
func (f *Filters) Clear() {
	f.Query = ""
	f.Author = ""
	f.Category.SetValue(explore.AnyCategory)
	f.Sort.Check(explore.DefaultSort)
}
