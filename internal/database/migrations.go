package database

import (
	"database/sql"
)

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create_operations_table",
		sql: `CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			ip TEXT,
			hostname TEXT,
			backup_path TEXT,
			source_path TEXT,
			outcome TEXT NOT NULL,
			digest TEXT,
			username TEXT NOT NULL,
			machine TEXT,
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "index_operations_created_at",
		sql:  `CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at)`,
	},
	{
		name: "index_operations_action",
		sql:  `CREATE INDEX IF NOT EXISTS idx_operations_action ON operations(action)`,
	},
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		migration TEXT UNIQUE NOT NULL,
		batch INTEGER NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func recordMigration(db *sql.DB, name string, batch int) error {
	_, err := db.Exec(`INSERT INTO migrations (migration, batch) VALUES (?, ?)`, name, batch)
	return err
}

func hasMigrationRun(db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM migrations WHERE migration = ?`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func nextBatch(db *sql.DB) (int, error) {
	var batch sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(batch) FROM migrations`).Scan(&batch); err != nil {
		return 0, err
	}
	return int(batch.Int64) + 1, nil
}

func runMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return err
	}

	batch, err := nextBatch(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		done, err := hasMigrationRun(db, m.name)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		if _, err := db.Exec(m.sql); err != nil {
			return err
		}
		if err := recordMigration(db, m.name, batch); err != nil {
			return err
		}
	}
	return nil
}
