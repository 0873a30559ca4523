package migrations

import (
	"testing"
	"testing/fstest"
)

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000002_add_tags.up.sql":        {Data: []byte("ALTER TABLE sql_examples ADD COLUMN tags TEXT;")},
		"sql/000002_add_tags.down.sql":      {Data: []byte("ALTER TABLE sql_examples DROP COLUMN tags;")},
		"sql/000001_create_table.up.sql":    {Data: []byte("CREATE TABLE sql_examples (id BIGSERIAL PRIMARY KEY);")},
		"sql/000001_create_table.down.sql":  {Data: []byte("DROP TABLE sql_examples;")},
		"sql/README.md":                     {Data: []byte("ignored")},
		"sql/000003_notamigration.up.txt":   {Data: []byte("ignored")},
		"sql/000003_notamigration.down.txt": {Data: []byte("ignored")},
	}

	migrations, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Fatalf("unexpected order: %d, %d", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].UpSQL == "" || migrations[0].DownSQL == "" {
		t.Fatalf("migration 1 missing scripts")
	}
}

func TestLoadMigrationsRejectsMissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000001_create_table.up.sql": {Data: []byte("CREATE TABLE sql_examples (id BIGSERIAL PRIMARY KEY);")},
	}

	if _, err := loadMigrations(fsys); err == nil {
		t.Fatal("expected error for missing down migration")
	}
}

func TestLoadMigrationsRejectsMissingUp(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000001_create_table.down.sql": {Data: []byte("DROP TABLE sql_examples;")},
	}

	if _, err := loadMigrations(fsys); err == nil {
		t.Fatal("expected error for missing up migration")
	}
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	migrations, err := loadMigrations(embeddedFS)
	if err != nil {
		t.Fatalf("loadMigrations embedded: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if migrations[0].Version != 1 {
		t.Fatalf("expected first migration version 1, got %d", migrations[0].Version)
	}
}
