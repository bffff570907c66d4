package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"003_indexes.sql": {Data: []byte("CREATE INDEX a ON t (b);")},
		"001_core.sql":    {Data: []byte("CREATE TABLE t (id SERIAL PRIMARY KEY);")},
		"002_columns.sql": {Data: []byte("ALTER TABLE t ADD COLUMN b INT;")},
		"README.md":       {Data: []byte("not a migration")},
		"notes.sql":       {Data: []byte("-- no numeric prefix")},
		"abc_bad.sql":     {Data: []byte("-- non-numeric prefix")},
		"old/004_x.sql":   {Data: []byte("-- nested, ignored")},
	}

	migrations, err := NewMigrator(nil, fsys).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	for i, want := range []string{"001_core.sql", "002_columns.sql", "003_indexes.sql"} {
		if migrations[i].Name != want {
			t.Errorf("migration %d: expected %s, got %s", i, want, migrations[i].Name)
		}
		if migrations[i].Version != i+1 {
			t.Errorf("migration %d: expected version %d, got %d", i, i+1, migrations[i].Version)
		}
	}
	if migrations[0].SQL != "CREATE TABLE t (id SERIAL PRIMARY KEY);" {
		t.Errorf("unexpected SQL content: %s", migrations[0].SQL)
	}
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql":  {Data: []byte("SELECT 1;")},
		"0001_b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := NewMigrator(nil, fsys).LoadMigrations(); err == nil {
		t.Error("expected error for duplicate version")
	}
}

func TestLoadMigrations_Empty(t *testing.T) {
	migrations, err := NewMigrator(nil, fstest.MapFS{}).LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected no migrations, got %d", len(migrations))
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := NewMigrator(nil, Migrations()).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected embedded migrations")
	}
	if migrations[0].Version != 1 {
		t.Errorf("expected first version 1, got %d", migrations[0].Version)
	}
	if !strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS sirs_calculations") {
		t.Error("expected first migration to create sirs_calculations")
	}
}

func TestMigrator_UpAndStatus(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url, 2, 0)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	m := NewMigrator(pool, Migrations())
	if _, err := m.Up(ctx); err != nil {
		t.Fatalf("Up: %v", err)
	}
	n, err := m.Up(ctx)
	if err != nil {
		t.Fatalf("second Up: %v", err)
	}
	if n != 0 {
		t.Errorf("expected second Up to apply nothing, applied %d", n)
	}

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, st := range statuses {
		if !st.Applied || st.AppliedAt == nil {
			t.Errorf("expected %s to be applied", st.Name)
		}
	}
}
