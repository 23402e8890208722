package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/rubiojr/explore/pkg/explore"
)

// Filter returns the published datasets matching c. Title words must all
// match, description words match if any does, every tag must match and the
// author filter matches name, affiliation or ORCID of any author. Only
// datasets with a DOI are considered published.
func (s *Store) Filter(ctx context.Context, c explore.Criteria) ([]Dataset, error) {
	c = c.Normalize()

	where := []string{"d.doi != ''"}
	var args []any

	for _, w := range Words(c.Query) {
		where = append(where, `d.title_norm LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(w))
	}

	if a := strings.TrimSpace(c.Author); a != "" {
		folded := likePattern(Fold(a))
		where = append(where, `EXISTS (SELECT 1 FROM authors a WHERE a.dataset_id = d.id AND (
			a.name_norm LIKE ? ESCAPE '\' OR
			a.affiliation_norm LIKE ? ESCAPE '\' OR
			lower(a.orcid) LIKE ? ESCAPE '\'))`)
		args = append(args, folded, folded, folded)
	}

	if words := Words(c.Description); len(words) > 0 {
		ors := make([]string, len(words))
		for i, w := range words {
			ors[i] = `d.description_norm LIKE ? ESCAPE '\'`
			args = append(args, likePattern(w))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	for _, tag := range c.Tags {
		where = append(where, `d.tags_norm LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(Fold(tag)))
	}

	if cat := strings.ToLower(strings.TrimSpace(c.Category)); cat != "" && cat != explore.AnyCategory {
		where = append(where, "d.category = ?")
		args = append(args, cat)
	}

	order := "DESC"
	if c.Sorting == explore.SortOldest {
		order = "ASC"
	}

	q := fmt.Sprintf("%s WHERE %s ORDER BY d.created_at %s, d.id",
		selectDatasets, strings.Join(where, " AND "), order)
	s.log.Debugf("filter: %s %v", q, args)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("filtering datasets: %w", err)
	}
	return s.scan(ctx, rows)
}

// Search runs Filter and converts the matches into explore items.
func (s *Store) Search(ctx context.Context, c explore.Criteria) ([]explore.Item, error) {
	list, err := s.Filter(ctx, c)
	if err != nil {
		return nil, err
	}
	items := make([]explore.Item, len(list))
	for i, ds := range list {
		items[i] = s.Item(ds)
	}
	return items, nil
}
