package render

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/explore/pkg/controller"
	"github.com/rubiojr/explore/pkg/explore"
)

// Links builds the hrefs rendered on a card. Tag and category badges link
// back to the explore page with the same action and value as their
// data-action and data-value attributes.
type Links struct {
	Endpoint string
}

// DefaultLinks points badges at the default explore endpoint.
func DefaultLinks() Links {
	return Links{Endpoint: explore.DefaultEndpoint}
}

func (l Links) endpoint() string {
	if l.Endpoint == "" {
		return explore.DefaultEndpoint
	}
	return l.Endpoint
}

func (l Links) action(kind controller.ActionKind, value string) string {
	params := url.Values{"action": {kind.String()}}
	if value != "" {
		params.Set("value", value)
	}
	return l.endpoint() + "?" + params.Encode()
}

// Tag returns the page URL with tag as the text query.
func (l Links) Tag(tag string) string {
	return l.action(controller.ActionSelectTag, tag)
}

// Category returns the page URL selecting the category with display text.
func (l Links) Category(text string) string {
	return l.action(controller.ActionSelectCategory, text)
}

// Clear returns the page URL resetting the filters.
func (l Links) Clear() string {
	return l.action(controller.ActionClear, "")
}

// Download returns the dataset download path.
func Download(id string) string {
	return "/dataset/download/" + url.PathEscape(id)
}

// Export returns the dataset export path.
func Export(id string) string {
	return "/dataset/export/" + url.PathEscape(id)
}

// CategoryTitle turns a stored category value into display text, for
// instance "qualifying" into "Qualifying".
func CategoryTitle(value string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(value, "_", " "))
}

// TemplateFuncs returns the functions available to card templates.
func TemplateFuncs(loc *time.Location, links Links) template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return explore.FormatDate(t, loc)
		},
		"authorLine":   explore.AuthorLine,
		"tagHref":      links.Tag,
		"categoryHref": links.Category,
		"downloadHref": Download,
		"exportHref":   Export,
	}
}
