package render

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/page"
)

// PageData is everything the explore page template needs.
type PageData struct {
	Title    string
	Endpoint string
	Token    string
	Filters  *page.Filters
	Results  page.Snapshot
	// Painted is false before the first search, when the results area is
	// left empty.
	Painted bool
	Version string
}

// htmlWriter accumulates the first write error so components can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + "=\"" + templ.EscapeString(value) + "\"")
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// ExplorePage renders the full explore page.
func ExplorePage(d PageData, cards *Cards) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>")
		h.text(d.Title)
		h.raw("</title></head><body><main class=\"container\"><h1>Explore</h1><div class=\"row\">")
		h.component(ctx, FiltersForm(d))
		h.component(ctx, ResultsSection(d, cards))
		h.raw("</div></main><footer class=\"text-secondary\">")
		h.text("explore " + d.Version)
		h.raw("</footer></body></html>")
		return h.err
	})
}

// FiltersForm renders the filter controls. The form submits with GET so the
// page works without script.
func FiltersForm(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		f := d.Filters
		links := Links{Endpoint: d.Endpoint}

		h.raw("<form class=\"col-lg-3\" method=\"get\"")
		h.attr("id", explore.IDFilters)
		h.attr("action", string(templ.URL(links.endpoint())))
		h.raw(">")

		h.raw("<input type=\"hidden\"")
		h.attr("id", explore.IDToken)
		h.attr("name", explore.IDToken)
		h.attr("value", d.Token)
		h.raw(">")

		textInput(h, explore.IDQuery, "query", "Search for datasets by title...", f.Query)
		textInput(h, explore.IDAuthor, "author", "Filter by author...", f.Author)
		textInput(h, explore.IDDescription, "description", "Filter by description...", f.Description)
		textInput(h, explore.IDTags, "tags", "Tags, separated by commas", f.TagsInput)

		h.raw("<label class=\"form-label\"")
		h.attr("for", explore.IDCategory)
		h.raw(">Filter by type</label><select class=\"form-control\"")
		h.attr("id", explore.IDCategory)
		h.attr("name", explore.IDCategory)
		h.raw(">")
		for _, o := range f.Category.Options {
			h.raw("<option")
			h.attr("value", o.Value)
			if o.Value == f.Category.Value() {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(o.Text)
			h.raw("</option>")
		}
		h.raw("</select>")

		h.raw("<fieldset><legend>Sort results by creation date</legend>")
		for _, s := range f.Sort.Values() {
			id := explore.NameSort + "_" + string(s)
			h.raw("<div class=\"form-check\"><input class=\"form-check-input\" type=\"radio\"")
			h.attr("id", id)
			h.attr("name", explore.NameSort)
			h.attr("value", string(s))
			if s == f.Sort.Checked() {
				h.raw(" checked")
			}
			h.raw("><label class=\"form-check-label\"")
			h.attr("for", id)
			h.raw(">")
			h.text(CategoryTitle(string(s)) + " first")
			h.raw("</label></div>")
		}
		h.raw("</fieldset>")

		h.raw("<button type=\"submit\" class=\"btn btn-primary btn-sm\">Search</button> ")
		h.raw("<a class=\"btn btn-outline-primary btn-sm\"")
		h.attr("id", explore.IDClearFilters)
		h.attr("href", string(templ.URL(links.Clear())))
		h.raw(">Clear filters</a></form>")
		return h.err
	})
}

func textInput(h *htmlWriter, id, name, placeholder, value string) {
	h.raw("<input class=\"form-control mb-2\" type=\"search\"")
	h.attr("id", id)
	h.attr("name", name)
	h.attr("placeholder", placeholder)
	h.attr("value", value)
	h.raw(">")
}

// ResultsSection renders the counter, the not-found indicator and the results
// container.
func ResultsSection(d PageData, cards *Cards) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		snap := d.Results

		h.raw("<section class=\"col-lg-9\"><h5")
		h.attr("id", explore.IDResultsNumber)
		h.raw(">")
		if d.Painted {
			h.text(snap.Counter)
		}
		h.raw("</h5><div")
		h.attr("id", explore.IDNotFound)
		display := "none"
		if d.Painted && snap.NotFound {
			display = "block"
		}
		h.attr("style", "display: "+display)
		h.raw("><p>We have not found any datasets that meet your search criteria.</p></div><div class=\"row\"")
		h.attr("id", explore.IDResults)
		h.raw(">")
		if h.err == nil && len(snap.Items) > 0 {
			body, err := cards.Results(snap.Items)
			if err != nil {
				return err
			}
			h.component(ctx, templ.Raw(string(body)))
		}
		h.raw("</div></section>")
		return h.err
	})
}
