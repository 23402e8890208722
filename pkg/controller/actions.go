package controller

import (
	"fmt"

	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/page"
)

// ActionKind identifies a user action on the explore page.
type ActionKind int

const (
	// ActionInput is an edit of one filter control.
	ActionInput ActionKind = iota
	// ActionSelectTag makes a tag badge the text query.
	ActionSelectTag
	// ActionSelectCategory selects the category whose display text matches a badge.
	ActionSelectCategory
	// ActionClear resets the filters to their defaults.
	ActionClear
)

var actionNames = map[ActionKind]string{
	ActionInput:          "input",
	ActionSelectTag:      "select-tag",
	ActionSelectCategory: "select-category",
	ActionClear:          "clear",
}

func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// ParseActionKind maps the data-action attribute of rendered markup to a kind.
func ParseActionKind(s string) (ActionKind, error) {
	for k, name := range actionNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Field names a filter control. Values match the JSON names of the criteria.
type Field string

const (
	FieldQuery       Field = "query"
	FieldAuthor      Field = "author"
	FieldDescription Field = "description"
	FieldTags        Field = "tags"
	FieldCategory    Field = "tournament_type"
	FieldSort        Field = "sorting"
)

// Action is a single user event.
type Action struct {
	Kind ActionKind
	// Field is the edited control for ActionInput.
	Field Field
	// Value is the new control value, the tag, or the category display text.
	Value string
}

// Input is shorthand for an ActionInput on field.
func Input(field Field, value string) Action {
	return Action{Kind: ActionInput, Field: field, Value: value}
}

// SelectTag is shorthand for an ActionSelectTag.
func SelectTag(tag string) Action {
	return Action{Kind: ActionSelectTag, Value: tag}
}

// SelectCategory is shorthand for an ActionSelectCategory.
func SelectCategory(text string) Action {
	return Action{Kind: ActionSelectCategory, Value: text}
}

// Clear is shorthand for an ActionClear.
func Clear() Action {
	return Action{Kind: ActionClear}
}

type handler func(f *page.Filters, a Action) error

func defaultHandlers() map[ActionKind]handler {
	return map[ActionKind]handler{
		ActionInput:          applyInput,
		ActionSelectTag:      applySelectTag,
		ActionSelectCategory: applySelectCategory,
		ActionClear:          applyClear,
	}
}

func applyInput(f *page.Filters, a Action) error {
	switch a.Field {
	case FieldQuery:
		f.Query = a.Value
	case FieldAuthor:
		f.Author = a.Value
	case FieldDescription:
		f.Description = a.Value
	case FieldTags:
		f.TagsInput = a.Value
	case FieldCategory:
		if !f.Category.SetValue(a.Value) {
			return fmt.Errorf("unknown category value %q", a.Value)
		}
	case FieldSort:
		s, err := explore.ParseSortOrder(a.Value)
		if err != nil {
			return err
		}
		f.Sort.Check(s)
	default:
		return fmt.Errorf("unknown field %q", a.Field)
	}
	return nil
}

func applySelectTag(f *page.Filters, a Action) error {
	f.SetTag(a.Value)
	return nil
}

func applySelectCategory(f *page.Filters, a Action) error {
	if err := f.SelectCategoryByText(a.Value); err != nil {
		return fmt.Errorf("selecting category %q: %w", a.Value, err)
	}
	return nil
}

func applyClear(f *page.Filters, _ Action) error {
	f.Clear()
	return nil
}
