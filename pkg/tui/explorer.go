// Package tui is a terminal front end for the explore page.
package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rubiojr/explore/pkg/controller"
	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/render"
)

// outcomeMsg carries a finished search back to Update.
type outcomeMsg controller.Outcome

// StatusMsg shows a short message in the footer.
type StatusMsg string

// errorMsg shows a rejected action or failed command in the footer.
type errorMsg struct{ err error }

// textFields are the text inputs in focus order.
var textFields = []struct {
	field       controller.Field
	label       string
	placeholder string
}{
	{controller.FieldQuery, "Title", "Search for datasets by title..."},
	{controller.FieldAuthor, "Author", "Filter by author..."},
	{controller.FieldDescription, "Description", "Filter by description..."},
	{controller.FieldTags, "Tags", "Tags, separated by commas"},
}

// resultsFocus is the focus index of the results list.
var resultsFocus = len(textFields)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(13)
	focusStyle   = labelStyle.Foreground(lipgloss.Color("86")).Bold(true)
	counterStyle = lipgloss.NewStyle().Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ExplorerModel drives a controller from the keyboard. Searches run as
// commands and their outcomes come back through Update, so only the latest one
// is painted.
type ExplorerModel struct {
	ctx    context.Context
	ctrl   *controller.Controller
	params url.Values
	loc    *time.Location

	inputs    []textinput.Model
	focus     int
	cursor    int
	results   viewport.Model
	width     int
	height    int
	painted   bool
	status    string
	statusErr bool
	copyText  func(string) error
}

// NewExplorerModel returns a model for ctrl. params seed the first search the
// same way page URL parameters do.
func NewExplorerModel(ctx context.Context, ctrl *controller.Controller, params url.Values, loc *time.Location) *ExplorerModel {
	m := &ExplorerModel{
		ctx:      ctx,
		ctrl:     ctrl,
		params:   params,
		loc:      loc,
		results:  viewport.New(80, 20),
		width:    80,
		height:   24,
		copyText: clipboard.WriteAll,
	}
	for _, tf := range textFields {
		ti := textinput.New()
		ti.Placeholder = tf.placeholder
		ti.Prompt = ""
		ti.Cursor.SetMode(cursor.CursorStatic)
		m.inputs = append(m.inputs, ti)
	}
	m.inputs[0].Focus()
	return m
}

func (m *ExplorerModel) Init() tea.Cmd {
	p := m.ctrl.Load(m.ctx, m.params)
	m.syncInputs()
	return run(p)
}

func run(p controller.Pending) tea.Cmd {
	return func() tea.Msg {
		return outcomeMsg(p.Run())
	}
}

// dispatch applies a and returns the follow-up search, or a status message when
// the action was rejected.
func (m *ExplorerModel) dispatch(a controller.Action) tea.Cmd {
	p, err := m.ctrl.Dispatch(m.ctx, a)
	if err != nil {
		return func() tea.Msg { return errorMsg{err} }
	}
	m.syncInputs()
	return run(p)
}

// syncInputs copies the filter state into the text inputs after actions that
// change it from outside an input.
func (m *ExplorerModel) syncInputs() {
	f := m.ctrl.Filters()
	values := []string{f.Query, f.Author, f.Description, f.TagsInput}
	for i := range m.inputs {
		if m.inputs[i].Value() != values[i] {
			m.inputs[i].SetValue(values[i])
		}
	}
}

func (m *ExplorerModel) setFocus(i int) {
	n := len(m.inputs) + 1
	m.focus = (i%n + n) % n
	for j := range m.inputs {
		if j == m.focus {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	m.refresh()
}

func (m *ExplorerModel) selected() (explore.Item, bool) {
	items := m.ctrl.View().Snapshot().Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return explore.Item{}, false
	}
	return items[m.cursor], true
}

func (m *ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.Width = msg.Width
		m.results.Height = max(msg.Height-10, 3)
		m.refresh()
		return m, nil

	case outcomeMsg:
		if m.ctrl.Apply(controller.Outcome(msg)) {
			m.painted = true
			n := len(m.ctrl.View().Snapshot().Items)
			if m.cursor >= n {
				m.cursor = max(n-1, 0)
			}
			m.refresh()
		}
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		m.statusErr = false
		return m, nil

	case errorMsg:
		m.status = msg.err.Error()
		m.statusErr = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *ExplorerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.setFocus(m.focus + 1)
		return m, nil
	case "shift+tab":
		m.setFocus(m.focus - 1)
		return m, nil
	case "ctrl+t":
		return m, m.dispatch(controller.Input(controller.FieldCategory, m.nextCategory()))
	case "ctrl+o":
		return m, m.dispatch(controller.Input(controller.FieldSort, string(m.nextSort())))
	case "ctrl+r":
		return m, m.dispatch(controller.Clear())
	}

	if m.focus == resultsFocus {
		return m, m.handleResultsKey(msg)
	}

	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		return m, tea.Batch(cmd, m.dispatch(controller.Input(textFields[m.focus].field, after)))
	}
	return m, cmd
}

func (m *ExplorerModel) handleResultsKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.refresh()
		}
		return nil
	case "down", "j":
		if m.cursor < len(m.ctrl.View().Snapshot().Items)-1 {
			m.cursor++
			m.refresh()
		}
		return nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return cmd
	}

	item, ok := m.selected()
	if !ok {
		return nil
	}
	switch key {
	case "c":
		return m.dispatch(controller.SelectCategory(item.Category))
	case "y":
		if err := m.copyText(item.URL); err != nil {
			return func() tea.Msg { return errorMsg{fmt.Errorf("copying url: %w", err)} }
		}
		return func() tea.Msg { return StatusMsg(item.URL + " → clipboard") }
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(key[0] - '1')
		if i < len(item.Tags) {
			return m.dispatch(controller.SelectTag(item.Tags[i]))
		}
	}
	return nil
}

func (m *ExplorerModel) nextCategory() string {
	sel := m.ctrl.Filters().Category
	for i, o := range sel.Options {
		if o.Value == sel.Value() {
			return sel.Options[(i+1)%len(sel.Options)].Value
		}
	}
	return explore.AnyCategory
}

func (m *ExplorerModel) nextSort() explore.SortOrder {
	g := m.ctrl.Filters().Sort
	values := g.Values()
	for i, v := range values {
		if v == g.Checked() {
			return values[(i+1)%len(values)]
		}
	}
	return explore.DefaultSort
}

// refresh re-renders the result cards into the viewport.
func (m *ExplorerModel) refresh() {
	snap := m.ctrl.View().Snapshot()
	cards := make([]string, len(snap.Items))
	offset := 0
	for i, item := range snap.Items {
		cards[i] = render.TerminalCard(item, m.width, m.loc, m.focus == resultsFocus && i == m.cursor)
		if i < m.cursor {
			offset += lipgloss.Height(cards[i])
		}
	}
	m.results.SetContent(strings.Join(cards, "\n"))
	m.results.SetYOffset(offset)
}

func (m *ExplorerModel) View() string {
	var b strings.Builder
	for i, tf := range textFields {
		label := labelStyle.Render(tf.label)
		if i == m.focus {
			label = focusStyle.Render(tf.label)
		}
		b.WriteString(label + m.inputs[i].View() + "\n")
	}

	f := m.ctrl.Filters()
	category := f.Category.Value()
	for _, o := range f.Category.Options {
		if o.Value == category {
			category = o.Text
		}
	}
	b.WriteString(labelStyle.Render("Type") + category + "\n")
	b.WriteString(labelStyle.Render("Sort") + render.CategoryTitle(string(f.Sort.Checked())) + " first\n\n")

	if m.painted {
		snap := m.ctrl.View().Snapshot()
		b.WriteString(counterStyle.Render(snap.Counter) + "\n")
		if snap.NotFound {
			b.WriteString("We have not found any datasets that meet your search criteria.\n")
		}
	} else {
		b.WriteString("Searching...\n")
	}
	b.WriteString(m.results.View() + "\n")

	if m.status != "" {
		style := helpStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render(
		"tab focus • ctrl+t type • ctrl+o sort • ctrl+r clear • results: j/k move, 1-9 tag, c type, y copy url • esc quit"))
	return b.String()
}
