package models

import "time"

// Action identifies which tool produced a journal entry.
type Action string

const (
	// ActionAdd is a hosts-add run.
	ActionAdd Action = "add"
	// ActionReset is a hosts-reset run.
	ActionReset Action = "reset"
)

// Outcome is the result of an operation.
type Outcome string

const (
	// OutcomeAdded indicates a new line was appended.
	OutcomeAdded Outcome = "added"
	// OutcomePresent indicates the mapping already existed.
	OutcomePresent Outcome = "present"
	// OutcomeRestored indicates the live file was replaced by the original.
	OutcomeRestored Outcome = "restored"
	// OutcomeFailed indicates the operation aborted after it started.
	OutcomeFailed Outcome = "failed"
)

// Operation is one journaled hosts file mutation.
type Operation struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	Outcome    Outcome   `json:"outcome"`
	IP         string    `json:"ip,omitempty"`
	Hostname   string    `json:"hostname,omitempty"`
	BackupPath string    `json:"backup_path,omitempty"`
	SourcePath string    `json:"source_path,omitempty"`
	Digest     string    `json:"digest,omitempty"`
	Username   string    `json:"username"`
	Machine    string    `json:"machine,omitempty"`
	Error      string    `json:"error,omitempty"`
}
