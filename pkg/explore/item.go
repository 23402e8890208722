package explore

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Author is a dataset author as returned by the search endpoint.
type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
}

// Item is a single dataset search result.
type Item struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Category    string    `json:"tournament_type"`
	TotalSize   string    `json:"total_size_in_human_format"`
	Authors     []Author  `json:"authors"`
	Tags        []string  `json:"tags"`
}

// SchemaError reports a search response that does not have the expected shape.
type SchemaError struct {
	Index  int // -1 when the payload itself is malformed
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Index < 0 {
		return "invalid search response: " + e.Reason
	}
	return fmt.Sprintf("invalid search response: item %d: %s", e.Index, e.Reason)
}

// DecodeItems reads a JSON array of items and checks every element before
// handing them to a renderer.
func DecodeItems(r io.Reader) ([]Item, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &SchemaError{Index: -1, Reason: err.Error()}
	}
	if raw == nil {
		return nil, &SchemaError{Index: -1, Reason: "expected an array, got null"}
	}

	items := make([]Item, 0, len(raw))
	for i, msg := range raw {
		var it Item
		if err := json.Unmarshal(msg, &it); err != nil {
			return nil, &SchemaError{Index: i, Reason: err.Error()}
		}
		if it.ID == "" {
			return nil, &SchemaError{Index: i, Reason: "missing id"}
		}
		if it.Title == "" {
			return nil, &SchemaError{Index: i, Reason: "missing title"}
		}
		if it.Authors == nil {
			it.Authors = []Author{}
		}
		if it.Tags == nil {
			it.Tags = []string{}
		}
		items = append(items, it)
	}
	return items, nil
}
