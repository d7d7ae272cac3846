package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pandeptwidyaop/hostkit/internal/config"
	"github.com/pandeptwidyaop/hostkit/internal/models"
)

func TestSnapshotName(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 5, 7, 0, time.Local)

	if got := SnapshotName(models.SnapshotAdd, ts); got != "hosts.20250314-090507.bak" {
		t.Errorf("unexpected add snapshot name %s", got)
	}
	if got := SnapshotName(models.SnapshotReset, ts); got != "hosts.reset.20250314-090507.bak" {
		t.Errorf("unexpected reset snapshot name %s", got)
	}
}

func TestNextSnapshotPath(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 5, 7, 0, time.Local)
	taken := map[string]bool{
		"/b/hosts.20250314-090507.bak":   true,
		"/b/hosts.20250314-090507.1.bak": true,
	}
	exists := func(p string) (bool, error) { return taken[p], nil }

	got, err := NextSnapshotPath("/b", models.SnapshotAdd, ts, exists)
	if err != nil || got != "/b/hosts.20250314-090507.2.bak" {
		t.Errorf("unexpected path %s, %v", got, err)
	}
	got, err = NextSnapshotPath("/b", models.SnapshotReset, ts, exists)
	if err != nil || got != "/b/hosts.reset.20250314-090507.bak" {
		t.Errorf("unexpected path %s, %v", got, err)
	}
}

func TestNextSnapshotPath_DirNotSearchable(t *testing.T) {
	// A regular file in place of the backup dir makes every Lstat fail with ENOTDIR.
	dir := filepath.Join(t.TempDir(), "backups")
	if err := os.WriteFile(dir, []byte("not a dir"), 0600); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := NextSnapshotPath(dir, models.SnapshotAdd, time.Now(), pathExists)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected an error when the backup dir is a regular file")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("NextSnapshotPath did not return")
	}
}

func TestNextSnapshotPath_ExistsError(t *testing.T) {
	boom := errors.New("permission denied")
	calls := 0
	exists := func(string) (bool, error) {
		calls++
		return false, boom
	}

	_, err := NextSnapshotPath("/b", models.SnapshotAdd, time.Now(), exists)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped lookup error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the search to stop after one lookup, got %d", calls)
	}
}

func TestParseSnapshotName(t *testing.T) {
	tests := []struct {
		name string
		kind models.SnapshotKind
		seq  int
		ok   bool
	}{
		{"hosts.20250314-090507.bak", models.SnapshotAdd, 0, true},
		{"hosts.20250314-090507.3.bak", models.SnapshotAdd, 3, true},
		{"hosts.reset.20250314-090507.bak", models.SnapshotReset, 0, true},
		{config.OriginalName, models.SnapshotOriginal, 0, true},
		{"journal.db", "", 0, false},
		{"hosts.notatime.bak", "", 0, false},
		{"hosts.20250314-090507.x.bak", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sn, ok := parseSnapshotName(tt.name)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if sn.kind != tt.kind || sn.seq != tt.seq {
				t.Errorf("got kind=%s seq=%d", sn.kind, sn.seq)
			}
		})
	}
}

func TestListSnapshots(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"hosts.20250101-120000.bak",
		"hosts.20250314-090507.bak",
		"hosts.20250314-090507.1.bak",
		"hosts.reset.20250201-080000.bak",
		config.OriginalName,
		"journal.db",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "hosts.20250401-000000.bak"), 0700); err != nil {
		t.Fatal(err)
	}

	snaps, err := ListSnapshots(dir)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}

	want := []string{
		"hosts.20250314-090507.1.bak",
		"hosts.20250314-090507.bak",
		"hosts.reset.20250201-080000.bak",
		"hosts.20250101-120000.bak",
		config.OriginalName,
	}
	if len(snaps) != len(want) {
		t.Fatalf("expected %d snapshots, got %d", len(want), len(snaps))
	}
	for i, name := range want {
		if snaps[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, snaps[i].Name)
		}
	}
	if snaps[4].Kind != models.SnapshotOriginal {
		t.Errorf("expected original kind, got %s", snaps[4].Kind)
	}
	if snaps[0].Size != int64(len(want[0])) {
		t.Errorf("unexpected size %d", snaps[0].Size)
	}
}

func TestListSnapshots_MissingDir(t *testing.T) {
	snaps, err := ListSnapshots(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected no snapshots, got %d", len(snaps))
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("127.0.0.1 localhost\n"))
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a != Digest([]byte("127.0.0.1 localhost\n")) {
		t.Error("digest should be deterministic")
	}
	if a == Digest([]byte("127.0.0.1 localhost")) {
		t.Error("different content should give a different digest")
	}
}
