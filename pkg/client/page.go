package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/page"
)

// PageInfo is what a client needs from the served explore page.
type PageInfo struct {
	Token      string
	Categories []page.Option
	// Category is the initially selected category value.
	Category string
	Sort     explore.SortOrder
}

// Filters builds filter state from the page controls.
func (p *PageInfo) Filters() *page.Filters {
	f := page.NewFilters(p.Categories)
	if p.Category != "" {
		f.Category.SetValue(p.Category)
	}
	if p.Sort != "" {
		f.Sort.Check(p.Sort)
	}
	return f
}

// LoadPage fetches the explore page, remembers its anti-forgery token and
// returns the filter controls it offers. The session cookie set by the page is
// kept in the client's jar.
func (c *Client) LoadPage(ctx context.Context) (*PageInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(url.Values{}), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Warnf("closing page body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	info := ParsePage(doc)
	if info.Token == "" {
		return nil, fmt.Errorf("page has no %s field", explore.IDToken)
	}
	c.token = info.Token
	c.log.Debugf("loaded page: %d categories, sort %s", len(info.Categories), info.Sort)
	return info, nil
}

// ParsePage extracts the token field, category options and checked sort radio
// from a parsed explore page.
func ParsePage(doc *html.Node) *PageInfo {
	info := &PageInfo{}
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "input":
			switch {
			case attr(n, "id") == explore.IDToken || attr(n, "name") == explore.IDToken:
				info.Token = attr(n, "value")
			case attr(n, "type") == "radio" && attr(n, "name") == explore.NameSort && hasAttr(n, "checked"):
				if s, err := explore.ParseSortOrder(attr(n, "value")); err == nil {
					info.Sort = s
				}
			}
		case "select":
			if attr(n, "id") != explore.IDCategory {
				return
			}
			walk(n, func(o *html.Node) {
				if o.Type != html.ElementNode || o.Data != "option" {
					return
				}
				opt := page.Option{Value: attr(o, "value"), Text: strings.TrimSpace(text(o))}
				if !hasAttr(o, "value") {
					opt.Value = opt.Text
				}
				info.Categories = append(info.Categories, opt)
				if hasAttr(o, "selected") {
					info.Category = opt.Value
				}
			})
		}
	})
	return info
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(t *html.Node) {
		if t.Type == html.TextNode {
			b.WriteString(t.Data)
		}
	})
	return b.String()
}
