package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	m := NewMigrationManager(db)
	n, err := m.Apply()
	if err != nil {
		t.Fatal(err)
	}
	available, err := m.Available()
	if err != nil {
		t.Fatal(err)
	}
	if n != len(available) || n == 0 {
		t.Errorf("applied %d of %d migrations", n, len(available))
	}

	n, err = m.Apply()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second Apply ran %d migrations", n)
	}

	if _, err := db.Exec("INSERT INTO datasets (id, title, created_at) VALUES ('a', 'A', CURRENT_TIMESTAMP)"); err != nil {
		t.Errorf("datasets table missing: %v", err)
	}
}

func TestMigrationsFromPath(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_second.sql": "CREATE TABLE second (id INTEGER);",
		"001_first.sql":  "CREATE TABLE first (id INTEGER);",
		"notes.txt":      "ignored",
		"bad_name.sql":   "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	m := NewMigrationManagerFromPath(openTestDB(t), dir)
	available, err := m.Available()
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 2 || available[0].Name != "first" || available[1].Version != 2 {
		t.Fatalf("available = %+v", available)
	}

	if n, err := m.Apply(); err != nil || n != 2 {
		t.Fatalf("Apply = %d, %v", n, err)
	}
	pending, err := m.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %+v", pending)
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_broken.sql"), []byte("CREATE TABLE ok (id INTEGER); NOT SQL;"), 0644); err != nil {
		t.Fatal(err)
	}
	db := openTestDB(t)

	if _, err := NewMigrationManagerFromPath(db, dir).Apply(); err == nil {
		t.Fatal("expected error")
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("broken migration recorded")
	}
}
