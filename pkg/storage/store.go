// Package storage keeps published datasets in SQLite and answers explore
// searches over them.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/explore/pkg/db"
	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/log"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("dataset not found")

// Dataset is a stored dataset with its authors.
type Dataset struct {
	ID          string
	DOI         string
	Title       string
	Description string
	// Category is the lowercase category value, e.g. "master".
	Category  string
	Tags      []string
	SizeBytes int64
	CreatedAt time.Time
	Authors   []explore.Author
}

// Store is a SQLite backed dataset repository.
type Store struct {
	db  *sql.DB
	log *log.Logger

	mu     sync.RWMutex
	labels map[string]string
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA temp_store = memory",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", p, err)
		}
	}

	if err := db.Migrate(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Store{db: sqlDB, log: log.ForService("storage")}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetCategoryLabels sets the display text used for category values in search
// results. Values without a label are title-cased.
func (s *Store) SetCategoryLabels(labels map[string]string) {
	cp := make(map[string]string, len(labels))
	for k, v := range labels {
		cp[strings.ToLower(k)] = v
	}
	s.mu.Lock()
	s.labels = cp
	s.mu.Unlock()
}

func (s *Store) label(category string) string {
	s.mu.RLock()
	l, ok := s.labels[category]
	s.mu.RUnlock()
	if ok {
		return l
	}
	return cases.Title(language.English).String(strings.ReplaceAll(category, "_", " "))
}

// Insert stores ds, replacing any dataset with the same id.
func (s *Store) Insert(ctx context.Context, ds Dataset) error {
	if strings.TrimSpace(ds.ID) == "" {
		return errors.New("dataset id is required")
	}
	if strings.TrimSpace(ds.Title) == "" {
		return fmt.Errorf("dataset %s: title is required", ds.ID)
	}
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = time.Now()
	}
	category := strings.ToLower(strings.TrimSpace(ds.Category))
	tags := strings.Join(ds.Tags, ",")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				s.log.Warnf("rolling back insert of %s: %v", ds.ID, err)
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO datasets
			(id, doi, title, description, category, tags, size_bytes, created_at,
			 title_norm, description_norm, tags_norm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ds.ID, ds.DOI, ds.Title, ds.Description, category, tags, ds.SizeBytes,
		ds.CreatedAt.UTC().Truncate(time.Second),
		Fold(ds.Title), Fold(ds.Description), Fold(tags),
	)
	if err != nil {
		return fmt.Errorf("inserting dataset %s: %w", ds.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM authors WHERE dataset_id = ?", ds.ID); err != nil {
		return fmt.Errorf("clearing authors of %s: %w", ds.ID, err)
	}
	for i, a := range ds.Authors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO authors (dataset_id, position, name, affiliation, orcid, name_norm, affiliation_norm)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ds.ID, i, a.Name, a.Affiliation, a.ORCID, Fold(a.Name), Fold(a.Affiliation),
		)
		if err != nil {
			return fmt.Errorf("inserting author %q of %s: %w", a.Name, ds.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dataset %s: %w", ds.ID, err)
	}
	committed = true
	return nil
}

// Get returns the dataset with id.
func (s *Store) Get(ctx context.Context, id string) (*Dataset, error) {
	rows, err := s.db.QueryContext(ctx, selectDatasets+" WHERE d.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying dataset %s: %w", id, err)
	}
	list, err := s.scan(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

// Count returns the number of stored datasets.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM datasets").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting datasets: %w", err)
	}
	return n, nil
}

const selectDatasets = `SELECT d.id, d.doi, d.title, d.description, d.category, d.tags,
	d.size_bytes, d.created_at FROM datasets d`

func (s *Store) scan(ctx context.Context, rows *sql.Rows) ([]Dataset, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warnf("closing rows: %v", err)
		}
	}()

	var out []Dataset
	for rows.Next() {
		var ds Dataset
		var tags string
		if err := rows.Scan(&ds.ID, &ds.DOI, &ds.Title, &ds.Description, &ds.Category,
			&tags, &ds.SizeBytes, &ds.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		ds.Tags = splitTags(tags)
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating datasets: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("closing rows: %w", err)
	}

	if err := s.loadAuthors(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) loadAuthors(ctx context.Context, list []Dataset) error {
	if len(list) == 0 {
		return nil
	}
	index := make(map[string]int, len(list))
	args := make([]any, len(list))
	for i, ds := range list {
		index[ds.ID] = i
		args[i] = ds.ID
		list[i].Authors = []explore.Author{}
	}

	q := `SELECT dataset_id, name, affiliation, orcid FROM authors
		WHERE dataset_id IN (?` + strings.Repeat(",?", len(list)-1) + `)
		ORDER BY dataset_id, position`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("querying authors: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.log.Warnf("closing author rows: %v", err)
		}
	}()

	for rows.Next() {
		var id string
		var a explore.Author
		if err := rows.Scan(&id, &a.Name, &a.Affiliation, &a.ORCID); err != nil {
			return fmt.Errorf("scanning author: %w", err)
		}
		if i, ok := index[id]; ok {
			list[i].Authors = append(list[i].Authors, a)
		}
	}
	return rows.Err()
}

func splitTags(s string) []string {
	tags := explore.ParseTags(s)
	if tags == nil {
		return []string{}
	}
	return tags
}

// Item converts ds into the record returned to explore clients.
func (s *Store) Item(ds Dataset) explore.Item {
	url := "/dataset/view/" + ds.ID
	if ds.DOI != "" {
		url = "/doi/" + ds.DOI + "/"
	}
	return explore.Item{
		ID:          ds.ID,
		URL:         url,
		Title:       ds.Title,
		Description: ds.Description,
		CreatedAt:   ds.CreatedAt,
		Category:    s.label(ds.Category),
		TotalSize:   humanize.Bytes(uint64(max(ds.SizeBytes, 0))),
		Authors:     ds.Authors,
		Tags:        ds.Tags,
	}
}
