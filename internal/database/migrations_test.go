package database

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func TestCreateMigrationsTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := createMigrationsTable(db)
	if err != nil {
		t.Fatalf("failed to create migrations table: %v", err)
	}

	var count int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='migrations'
	`).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query migrations table: %v", err)
	}

	if count != 1 {
		t.Errorf("expected 1 migrations table, got %d", count)
	}
}

func TestRecordMigration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := createMigrationsTable(db); err != nil {
		t.Fatalf("failed to create migrations table: %v", err)
	}

	if err := recordMigration(db, "test_migration", 1); err != nil {
		t.Fatalf("failed to record migration: %v", err)
	}

	var migrationName string
	var batch int
	err := db.QueryRow(`
		SELECT migration, batch FROM migrations WHERE migration = ?
	`, "test_migration").Scan(&migrationName, &batch)
	if err != nil {
		t.Fatalf("failed to query migration: %v", err)
	}

	if migrationName != "test_migration" {
		t.Errorf("expected migration name 'test_migration', got %q", migrationName)
	}
	if batch != 1 {
		t.Errorf("expected batch 1, got %d", batch)
	}
}

func TestHasMigrationRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := createMigrationsTable(db); err != nil {
		t.Fatalf("failed to create migrations table: %v", err)
	}

	ran, err := hasMigrationRun(db, "create_operations_table")
	if err != nil {
		t.Fatalf("hasMigrationRun: %v", err)
	}
	if ran {
		t.Error("expected migration not to have run yet")
	}

	if err := recordMigration(db, "create_operations_table", 1); err != nil {
		t.Fatalf("failed to record migration: %v", err)
	}

	ran, err = hasMigrationRun(db, "create_operations_table")
	if err != nil {
		t.Fatalf("hasMigrationRun: %v", err)
	}
	if !ran {
		t.Error("expected migration to be recorded")
	}
}

func TestRunMigrations(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := runMigrations(db); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	// A second run must be a no-op.
	if err := runMigrations(db); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	var tables int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='operations'
	`).Scan(&tables)
	if err != nil {
		t.Fatalf("failed to query operations table: %v", err)
	}
	if tables != 1 {
		t.Errorf("expected operations table, got %d", tables)
	}

	var recorded, batches int
	if err := db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT batch) FROM migrations`).Scan(&recorded, &batches); err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if recorded != len(migrations) {
		t.Errorf("expected %d recorded migrations, got %d", len(migrations), recorded)
	}
	if batches != 1 {
		t.Errorf("expected a single batch, got %d", batches)
	}
}

func TestNew_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	if _, err := db.Exec(`INSERT INTO operations (id, action, outcome, username) VALUES ('x', 'add', 'added', 'alice')`); err != nil {
		t.Fatalf("insert after migrate failed: %v", err)
	}
}
