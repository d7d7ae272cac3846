// Package privileged performs the file operations that need root: creating
// the backup directory, snapshotting the hosts file, appending to it and
// restoring it.
//
// Two implementations exist. LocalOperator calls the os package directly and
// is used when the process already runs as root. SudoOperator shells out to
// an elevation tool (sudo by default) so that only the individual file
// operations run elevated.
package privileged

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"
)

// ErrElevationUnavailable indicates the configured elevation tool is not on PATH.
var ErrElevationUnavailable = errors.New("elevation tool not available")

// Owner is a numeric uid/gid pair.
type Owner struct {
	UID string
	GID string
}

func (o Owner) String() string {
	return o.UID + ":" + o.GID
}

// IsZero reports whether no owner was set.
func (o Owner) IsZero() bool {
	return o.UID == "" && o.GID == ""
}

func (o Owner) ids() (int, int, error) {
	uid, err := strconv.Atoi(o.UID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid uid %q: %w", o.UID, err)
	}
	gid, err := strconv.Atoi(o.GID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid gid %q: %w", o.GID, err)
	}
	return uid, gid, nil
}

// Operator is the set of file operations that may need elevated privileges.
type Operator interface {
	// EnsureDir creates path (and parents) and sets its mode and owner.
	EnsureDir(ctx context.Context, path string, perm os.FileMode, owner Owner) error
	// Copy copies src to dst preserving mode, ownership and timestamps.
	Copy(ctx context.Context, src, dst string) error
	Chown(ctx context.Context, path string, owner Owner) error
	// Append writes data to the end of path.
	Append(ctx context.Context, path string, data []byte) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// Selector picks an Operator for the current process.
type Selector struct {
	Tool     string
	Euid     int
	LookPath func(string) (string, error)
	Runner   CommandRunner
	Logger   zerolog.Logger
}

// NewSelector returns a Selector bound to the running process.
func NewSelector(tool string, logger zerolog.Logger) Selector {
	return Selector{
		Tool:     tool,
		Euid:     os.Geteuid(),
		LookPath: exec.LookPath,
		Runner:   ExecRunner{},
		Logger:   logger,
	}
}

// Select returns a LocalOperator when already root, otherwise a SudoOperator
// for the configured tool. A missing tool fails before any file is touched.
func (s Selector) Select() (Operator, error) {
	if s.Euid == 0 {
		s.Logger.Debug().Msg("running as root, using direct file operations")
		return LocalOperator{}, nil
	}

	path, err := s.LookPath(s.Tool)
	if err != nil {
		return nil, fmt.Errorf("%w: %q not found in PATH", ErrElevationUnavailable, s.Tool)
	}

	s.Logger.Debug().Str("tool", path).Msg("using elevation tool")
	return &SudoOperator{Tool: path, Runner: s.Runner, Logger: s.Logger}, nil
}
