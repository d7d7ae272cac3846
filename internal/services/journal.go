package services

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/pandeptwidyaop/hostkit/internal/database"
	"github.com/pandeptwidyaop/hostkit/internal/models"
	"github.com/pandeptwidyaop/hostkit/internal/privileged"
)

// Recorder stores a finished operation.
type Recorder interface {
	Record(ctx context.Context, op *models.Operation) error
}

// JournalService records hosts file operations in SQLite.
type JournalService struct {
	db *database.DB
	// MachineName is looked up once per record; replaced in tests.
	MachineName func(ctx context.Context) string
	now         func() time.Time
}

// NewJournalService creates a new JournalService instance.
func NewJournalService(db *database.DB) *JournalService {
	return &JournalService{
		db:          db,
		MachineName: machineName,
		now:         time.Now,
	}
}

// OpenJournal opens (and migrates) the journal database at path.
func OpenJournal(path string) (*JournalService, error) {
	db, err := database.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewJournalService(db), nil
}

func machineName(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		name, _ := os.Hostname()
		return name
	}
	return info.Hostname
}

// Record assigns an id, timestamp and machine name when missing and inserts op.
func (s *JournalService) Record(ctx context.Context, op *models.Operation) error {
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = s.now().UTC()
	}
	if op.Machine == "" && s.MachineName != nil {
		op.Machine = s.MachineName(ctx)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operations (id, action, ip, hostname, backup_path, source_path, outcome, digest, username, machine, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, op.ID, op.Action, op.IP, op.Hostname, op.BackupPath, op.SourcePath, op.Outcome, op.Digest, op.Username, op.Machine, op.Error, op.CreatedAt)
	return err
}

// List returns journal entries newest first.
func (s *JournalService) List(ctx context.Context, limit, offset int) ([]models.Operation, error) {
	if limit == 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, ip, hostname, backup_path, source_path, outcome, digest, username, machine, error, created_at
		FROM operations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := make([]models.Operation, 0)
	for rows.Next() {
		var op models.Operation
		var ip, hostname, backup, source, digest, machine, errText sql.NullString

		if err := rows.Scan(
			&op.ID,
			&op.Action,
			&ip,
			&hostname,
			&backup,
			&source,
			&op.Outcome,
			&digest,
			&op.Username,
			&machine,
			&errText,
			&op.CreatedAt,
		); err != nil {
			return nil, err
		}

		op.IP = ip.String
		op.Hostname = hostname.String
		op.BackupPath = backup.String
		op.SourcePath = source.String
		op.Digest = digest.String
		op.Machine = machine.String
		op.Error = errText.String

		ops = append(ops, op)
	}

	return ops, rows.Err()
}

// Close releases the database.
func (s *JournalService) Close() error {
	return s.db.Close()
}

// LazyJournal opens the journal on first Record, after the backup directory
// has been provisioned. When the tool runs as root the database file is
// handed to the invoking identity so later unprivileged runs can append.
type LazyJournal struct {
	Path   string
	Owner  privileged.Owner
	Logger zerolog.Logger

	once    sync.Once
	journal *JournalService
	openErr error
}

func (l *LazyJournal) Record(ctx context.Context, op *models.Operation) error {
	l.once.Do(func() {
		l.journal, l.openErr = OpenJournal(l.Path)
		if l.openErr == nil && os.Geteuid() == 0 && !l.Owner.IsZero() {
			uid, _ := strconv.Atoi(l.Owner.UID)
			gid, _ := strconv.Atoi(l.Owner.GID)
			if err := os.Chown(l.Path, uid, gid); err != nil {
				l.Logger.Warn().Err(err).Str("path", l.Path).Msg("failed to hand journal to invoking user")
			}
		}
	})
	if l.openErr != nil {
		return l.openErr
	}
	return l.journal.Record(ctx, op)
}

// Close closes the journal if it was opened.
func (l *LazyJournal) Close() error {
	if l.journal == nil {
		return nil
	}
	return l.journal.Close()
}

// ErrJournalMissing indicates no journal has been written yet.
var ErrJournalMissing = errors.New("no journal recorded yet")

// OpenExistingJournal opens the journal for reading without creating it.
func OpenExistingJournal(path string) (*JournalService, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrJournalMissing
		}
		return nil, err
	}
	return OpenJournal(path)
}
