package services

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/pandeptwidyaop/hostkit/internal/config"
	"github.com/pandeptwidyaop/hostkit/internal/models"
)

// SnapshotTimeLayout is embedded in snapshot names (second resolution).
const SnapshotTimeLayout = "20060102-150405"

const (
	snapshotPrefix      = "hosts."
	resetSnapshotPrefix = "hosts.reset."
	snapshotSuffix      = ".bak"
)

// SnapshotName returns the base name for a snapshot of kind taken at t.
func SnapshotName(kind models.SnapshotKind, t time.Time) string {
	ts := t.Format(SnapshotTimeLayout)
	if kind == models.SnapshotReset {
		return resetSnapshotPrefix + ts + snapshotSuffix
	}
	return snapshotPrefix + ts + snapshotSuffix
}

// NextSnapshotPath returns a path in dir that does not exist yet. Two runs in
// the same second get ".1", ".2", ... inserted before ".bak". An error from
// exists (e.g. dir is not searchable) stops the search.
func NextSnapshotPath(dir string, kind models.SnapshotKind, t time.Time, exists func(string) (bool, error)) (string, error) {
	name := SnapshotName(kind, t)
	base := strings.TrimSuffix(name, snapshotSuffix)
	path := filepath.Join(dir, name)
	for i := 1; ; i++ {
		taken, err := exists(path)
		if err != nil {
			return "", err
		}
		if !taken {
			return path, nil
		}
		path = filepath.Join(dir, base+"."+strconv.Itoa(i)+snapshotSuffix)
	}
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

type snapshotName struct {
	kind    models.SnapshotKind
	takenAt time.Time
	seq     int
}

// parseSnapshotName maps a backup directory entry to its kind and the time
// embedded in its name. The original has no timestamp.
func parseSnapshotName(name string) (snapshotName, bool) {
	if name == config.OriginalName {
		return snapshotName{kind: models.SnapshotOriginal}, true
	}
	if !strings.HasSuffix(name, snapshotSuffix) {
		return snapshotName{}, false
	}

	var sn snapshotName
	rest := strings.TrimSuffix(name, snapshotSuffix)
	switch {
	case strings.HasPrefix(rest, resetSnapshotPrefix):
		sn.kind = models.SnapshotReset
		rest = strings.TrimPrefix(rest, resetSnapshotPrefix)
	case strings.HasPrefix(rest, snapshotPrefix):
		sn.kind = models.SnapshotAdd
		rest = strings.TrimPrefix(rest, snapshotPrefix)
	default:
		return snapshotName{}, false
	}

	ts, seq, hasSeq := strings.Cut(rest, ".")
	t, err := time.ParseInLocation(SnapshotTimeLayout, ts, time.Local)
	if err != nil {
		return snapshotName{}, false
	}
	sn.takenAt = t
	if hasSeq {
		n, err := strconv.Atoi(seq)
		if err != nil {
			return snapshotName{}, false
		}
		sn.seq = n
	}
	return sn, true
}

// ListSnapshots returns the snapshots in dir, newest first by the time in
// their name (cp -p keeps the hosts file mtime, so ModTime is not usable for
// ordering). The original sorts last. A missing directory yields an empty list.
func ListSnapshots(dir string) ([]models.Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Snapshot{}, nil
		}
		return nil, err
	}

	type item struct {
		snap models.Snapshot
		seq  int
	}
	items := make([]item, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		sn, ok := parseSnapshotName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, item{
			snap: models.Snapshot{
				Name:     entry.Name(),
				Path:     filepath.Join(dir, entry.Name()),
				Kind:     sn.kind,
				Size:     info.Size(),
				TakenAt:  sn.takenAt,
				Modified: info.ModTime(),
			},
			seq: sn.seq,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.snap.TakenAt.Equal(b.snap.TakenAt) {
			return a.snap.TakenAt.After(b.snap.TakenAt)
		}
		return a.seq > b.seq
	})

	snapshots := make([]models.Snapshot, 0, len(items))
	for _, it := range items {
		snapshots = append(snapshots, it.snap)
	}
	return snapshots, nil
}

// Digest returns the hex BLAKE2b-256 of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
