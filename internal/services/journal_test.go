package services

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pandeptwidyaop/hostkit/internal/database"
	"github.com/pandeptwidyaop/hostkit/internal/models"
)

func setupJournal(t *testing.T) *JournalService {
	t.Helper()
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// :memory: is per connection.
	sqlDB.SetMaxOpenConns(1)

	db := &database.DB{DB: sqlDB}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := NewJournalService(db)
	svc.MachineName = func(context.Context) string { return "kali" }
	return svc
}

func TestJournalService_RecordAndList(t *testing.T) {
	svc := setupJournal(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	entries := []*models.Operation{
		{Action: models.ActionAdd, Outcome: models.OutcomeAdded, IP: "10.10.11.5", Hostname: "box.htb", Username: "alice", CreatedAt: base},
		{Action: models.ActionAdd, Outcome: models.OutcomePresent, IP: "10.10.11.5", Hostname: "box.htb", Username: "alice", CreatedAt: base.Add(time.Minute)},
		{Action: models.ActionReset, Outcome: models.OutcomeRestored, SourcePath: "/home/alice/.hosts_backups/hosts.original", Username: "alice", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, op := range entries {
		if err := svc.Record(ctx, op); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if op.ID == "" {
			t.Error("expected an id to be assigned")
		}
	}

	ops, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ops))
	}
	if ops[0].Action != models.ActionReset {
		t.Errorf("expected newest entry first, got %s", ops[0].Action)
	}
	if ops[0].SourcePath == "" || ops[0].IP != "" {
		t.Errorf("unexpected reset entry %+v", ops[0])
	}
	if ops[2].Hostname != "box.htb" || ops[2].Machine != "kali" {
		t.Errorf("unexpected oldest entry %+v", ops[2])
	}

	limited, err := svc.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 1 || limited[0].Outcome != models.OutcomePresent {
		t.Errorf("unexpected page %+v", limited)
	}
}

func TestJournalService_RecordDefaultsTimestamp(t *testing.T) {
	svc := setupJournal(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	op := &models.Operation{Action: models.ActionAdd, Outcome: models.OutcomeFailed, Username: "bob", Error: "boom"}
	if err := svc.Record(context.Background(), op); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !op.CreatedAt.Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, op.CreatedAt)
	}

	ops, err := svc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ops) != 1 || ops[0].Error != "boom" {
		t.Errorf("unexpected entries %+v", ops)
	}
}

func TestLazyJournal_OpensOnFirstRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backups", "journal.db")
	lazy := &LazyJournal{Path: path, Logger: zerolog.Nop()}
	defer lazy.Close()

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("journal should not exist before the first record")
	}

	op := &models.Operation{Action: models.ActionAdd, Outcome: models.OutcomeAdded, Username: "alice", Machine: "kali"}
	if err := lazy.Record(context.Background(), op); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := lazy.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	journal, err := OpenExistingJournal(path)
	if err != nil {
		t.Fatalf("OpenExistingJournal: %v", err)
	}
	defer journal.Close()

	ops, err := journal.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ops) != 1 || ops[0].ID != op.ID {
		t.Errorf("unexpected entries %+v", ops)
	}
}

func TestOpenExistingJournal_Missing(t *testing.T) {
	_, err := OpenExistingJournal(filepath.Join(t.TempDir(), "journal.db"))
	if !errors.Is(err, ErrJournalMissing) {
		t.Errorf("expected ErrJournalMissing, got %v", err)
	}
}
