// Package db applies the versioned SQL migrations shipped with the binary.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rubiojr/explore/pkg/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one numbered SQL file, e.g. 001_datasets.sql.
type Migration struct {
	Version   int
	Name      string
	SQL       string
	AppliedAt *time.Time
}

// MigrationManager applies migrations to a database.
type MigrationManager struct {
	db  *sql.DB
	src fs.FS
	log *log.Logger
}

// NewMigrationManager uses the embedded migrations.
func NewMigrationManager(db *sql.DB) *MigrationManager {
	sub, _ := fs.Sub(migrationsFS, "migrations")
	return &MigrationManager{db: db, src: sub, log: log.ForService("db")}
}

// NewMigrationManagerFromPath loads migrations from a directory instead of the
// embedded set.
func NewMigrationManagerFromPath(db *sql.DB, dir string) *MigrationManager {
	return &MigrationManager{db: db, src: os.DirFS(dir), log: log.ForService("db")}
}

func (m *MigrationManager) ensureTable() error {
	_, err := m.db.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (m *MigrationManager) applied() (map[int]time.Time, error) {
	rows, err := m.db.Query("SELECT version, applied_at FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			m.log.Warnf("closing rows: %v", err)
		}
	}()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		applied[version] = at
	}
	return applied, rows.Err()
}

// Available lists the migrations found in the source, ordered by version.
func (m *MigrationManager) Available() ([]Migration, error) {
	entries, err := fs.ReadDir(m.src, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		num, name, ok := strings.Cut(strings.TrimSuffix(e.Name(), ".sql"), "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		content, err := fs.ReadFile(m.src, e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Pending lists migrations not applied yet.
func (m *MigrationManager) Pending() ([]Migration, error) {
	if err := m.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensuring migrations table: %w", err)
	}
	applied, err := m.applied()
	if err != nil {
		return nil, err
	}
	available, err := m.Available()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range available {
		if _, ok := applied[mig.Version]; !ok {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

func (m *MigrationManager) apply(mig Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				m.log.Warnf("rolling back migration %d: %v", mig.Version, err)
			}
		}
	}()

	if _, err := tx.Exec(mig.SQL); err != nil {
		return fmt.Errorf("executing migration %d: %w", mig.Version, err)
	}
	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", mig.Version); err != nil {
		return fmt.Errorf("recording migration %d: %w", mig.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", mig.Version, err)
	}
	committed = true
	return nil
}

// Apply runs every pending migration in version order and returns how many
// were applied.
func (m *MigrationManager) Apply() (int, error) {
	pending, err := m.Pending()
	if err != nil {
		return 0, err
	}
	for _, mig := range pending {
		m.log.Infof("applying migration %03d %s", mig.Version, mig.Name)
		if err := m.apply(mig); err != nil {
			return 0, fmt.Errorf("applying migration %d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return len(pending), nil
}

// Migrate applies the embedded migrations to db.
func Migrate(db *sql.DB) error {
	if _, err := NewMigrationManager(db).Apply(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}
