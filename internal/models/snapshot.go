package models

import "time"

// SnapshotKind distinguishes backups taken by the two hosts tools.
type SnapshotKind string

const (
	// SnapshotAdd is taken before appending a record.
	SnapshotAdd SnapshotKind = "add"
	// SnapshotReset is taken before restoring the original.
	SnapshotReset SnapshotKind = "reset"
	// SnapshotOriginal is the user-maintained restore baseline.
	SnapshotOriginal SnapshotKind = "original"
)

// Snapshot describes one file in the backup directory.
type Snapshot struct {
	TakenAt  time.Time    `json:"taken_at"`
	Modified time.Time    `json:"modified"`
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Kind     SnapshotKind `json:"kind"`
	Size     int64        `json:"size"`
}
