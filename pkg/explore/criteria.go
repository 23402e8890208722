// Package explore holds the records exchanged between the explore page and the
// dataset search endpoint: the filter criteria sent by the page and the dataset
// items returned for display.
package explore

import (
	"fmt"
	"strings"
)

// AnyCategory is the category selector value that disables category filtering.
const AnyCategory = "any"

// SortOrder is the value of the sort radio group.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// DefaultSort is the order checked when the page loads and after clearing filters.
const DefaultSort = SortNewest

// SortOrders lists the valid sort orders in display order.
func SortOrders() []SortOrder {
	return []SortOrder{SortNewest, SortOldest}
}

// ParseSortOrder converts a radio value into a SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Criteria is the filter state posted to the search endpoint.
type Criteria struct {
	Query       string    `json:"query"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Category    string    `json:"tournament_type"`
	Sorting     SortOrder `json:"sorting"`
}

// Normalize fills in defaults for fields a client may leave out.
func (c Criteria) Normalize() Criteria {
	if strings.TrimSpace(c.Category) == "" {
		c.Category = AnyCategory
	}
	if strings.TrimSpace(string(c.Sorting)) == "" {
		c.Sorting = DefaultSort
	} else if sort, err := ParseSortOrder(string(c.Sorting)); err == nil {
		c.Sorting = sort
	}
	return c
}

// ParseTags splits a comma separated tag input. Segments are trimmed, empty
// segments are dropped and the input order is kept.
func ParseTags(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
