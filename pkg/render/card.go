// Package render turns dataset items into HTML cards and terminal cards and
// renders the explore page.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rubiojr/explore/pkg/explore"
)

//go:embed card.html
var cardTemplate string

// Cards renders dataset items as HTML cards.
type Cards struct {
	tmpl *template.Template
}

// NewCards parses the card template. Dates are shown in loc, local time when
// loc is nil.
func NewCards(loc *time.Location, links Links) (*Cards, error) {
	tmpl, err := template.New("card").Funcs(TemplateFuncs(loc, links)).Parse(cardTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing card template: %w", err)
	}
	return &Cards{tmpl: tmpl}, nil
}

// MustCards is NewCards for package-level initialisation.
func MustCards(loc *time.Location, links Links) *Cards {
	c, err := NewCards(loc, links)
	if err != nil {
		panic(err)
	}
	return c
}

// Card renders one item.
func (c *Cards) Card(item explore.Item) (template.HTML, error) {
	var buf strings.Builder
	if err := c.tmpl.Execute(&buf, item); err != nil {
		return "", fmt.Errorf("rendering card %s: %w", item.ID, err)
	}
	return template.HTML(buf.String()), nil
}

// Results renders all items in order, the content of the results container.
func (c *Cards) Results(items []explore.Item) (template.HTML, error) {
	var buf strings.Builder
	for _, item := range items {
		card, err := c.Card(item)
		if err != nil {
			return "", err
		}
		buf.WriteString(string(card))
	}
	return template.HTML(buf.String()), nil
}
