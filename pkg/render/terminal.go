package render

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/rubiojr/explore/pkg/explore"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("86"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(13)
)

// TerminalCard renders item for a terminal of the given width. Selected cards
// get a highlighted border.
func TerminalCard(item explore.Item, width int, loc *time.Location, selected bool) string {
	if width < 30 {
		width = 30
	}
	inner := width - 4
	textWidth := inner - 13

	var b strings.Builder
	b.WriteString(titleStyle.Render(wordwrap.String(item.Title, inner)))
	if item.Category != "" {
		b.WriteString(" " + badgeStyle.Render(item.Category))
	}
	b.WriteString("\n")
	if !item.CreatedAt.IsZero() {
		b.WriteString(metaStyle.Render(explore.FormatDate(item.CreatedAt, loc)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(label),
			wordwrap.String(value, textWidth)))
		b.WriteString("\n")
	}

	row("Description", item.Description)

	authors := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		authors = append(authors, explore.AuthorLine(a))
	}
	row("Authors", strings.Join(authors, "\n"))

	tags := make([]string, 0, len(item.Tags))
	for _, t := range item.Tags {
		tags = append(tags, "#"+t)
	}
	row("Tags", strings.Join(tags, " "))
	row("Download", item.TotalSize)
	row("URL", item.URL)

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Width(width - 2).Render(strings.TrimRight(b.String(), "\n"))
}
