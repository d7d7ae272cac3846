package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pandeptwidyaop/hostkit/internal/config"
	"github.com/pandeptwidyaop/hostkit/internal/hostsfile"
	"github.com/pandeptwidyaop/hostkit/internal/models"
	"github.com/pandeptwidyaop/hostkit/internal/privileged"
	"github.com/pandeptwidyaop/hostkit/internal/validation"
)

// BackupDirPerm restricts the snapshot directory to its owner.
const BackupDirPerm os.FileMode = 0700

var (
	// ErrOriginalMissing indicates hosts.original has not been created.
	ErrOriginalMissing = errors.New("original hosts snapshot not found")
	// ErrRestoreMismatch indicates the live file differs from the original after a restore.
	ErrRestoreMismatch = errors.New("restored hosts file does not match the original")
)

// AddResult reports what Add did.
type AddResult struct {
	BackupPath string
	HostsFile  string
	Added      bool
}

// ResetResult reports what Reset did.
type ResetResult struct {
	BackupPath string
	Source     string
	HostsFile  string
}

// HostsService mutates and restores the hosts file. Every call takes exactly
// one snapshot before touching the live file. There is no locking: two
// concurrent runs may interleave, and the last writer wins.
type HostsService struct {
	env     *config.Env
	op      privileged.Operator
	journal Recorder
	logger  zerolog.Logger
	now     func() time.Time
}

// NewHostsService creates a HostsService. journal may be nil.
func NewHostsService(env *config.Env, op privileged.Operator, journal Recorder, logger zerolog.Logger) *HostsService {
	return &HostsService{
		env:     env,
		op:      op,
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the snapshot clock.
func (s *HostsService) SetClock(now func() time.Time) {
	s.now = now
}

// Add appends "ip<TAB>hostname" to the hosts file unless a line already maps
// ip to hostname.
func (s *HostsService) Add(ctx context.Context, hostname, ip string) (*AddResult, error) {
	if err := validation.ValidateIPv4Syntax(ip); err != nil {
		return nil, fmt.Errorf("%w: %q", err, ip)
	}
	if err := validation.ValidateHostname(hostname); err != nil {
		return nil, fmt.Errorf("%w: %q", err, hostname)
	}

	hostsPath := s.env.Config.HostsFile
	rec := &models.Operation{
		Action:   models.ActionAdd,
		IP:       ip,
		Hostname: hostname,
		Username: s.env.Identity.Username,
	}

	if err := s.ensureBackupDir(ctx); err != nil {
		return nil, err
	}

	backup, err := s.snapshot(ctx, models.SnapshotAdd)
	if err != nil {
		rec.BackupPath = backup
		s.record(ctx, rec, models.OutcomeFailed, err)
		if backup == "" {
			return nil, err
		}
		return &AddResult{BackupPath: backup, HostsFile: hostsPath}, err
	}
	rec.BackupPath = backup
	result := &AddResult{BackupPath: backup, HostsFile: hostsPath}

	content, err := s.op.ReadFile(ctx, hostsPath)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", hostsPath, err)
		s.record(ctx, rec, models.OutcomeFailed, err)
		return result, err
	}
	rec.Digest = Digest(content)

	if hostsfile.Contains(content, ip, hostname) {
		s.logger.Info().Str("ip", ip).Str("hostname", hostname).Msg("entry already present")
		s.record(ctx, rec, models.OutcomePresent, nil)
		return result, nil
	}

	if err := s.op.Append(ctx, hostsPath, hostsfile.AppendPayload(content, ip, hostname)); err != nil {
		err = fmt.Errorf("failed to append to %s: %w", hostsPath, err)
		s.record(ctx, rec, models.OutcomeFailed, err)
		return result, err
	}

	s.logger.Info().Str("ip", ip).Str("hostname", hostname).Str("backup", backup).Msg("entry added")
	result.Added = true
	s.record(ctx, rec, models.OutcomeAdded, nil)
	return result, nil
}

// Reset snapshots the live hosts file and replaces it with hosts.original.
func (s *HostsService) Reset(ctx context.Context) (*ResetResult, error) {
	hostsPath := s.env.Config.HostsFile
	original := s.env.OriginalPath()
	rec := &models.Operation{
		Action:     models.ActionReset,
		SourcePath: original,
		Username:   s.env.Identity.Username,
	}

	if err := s.ensureBackupDir(ctx); err != nil {
		return nil, err
	}

	if _, err := os.Stat(original); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s\nCreate it from a known-good hosts file first, e.g.:\n  sudo cp -p %s %s",
				ErrOriginalMissing, original, hostsPath, original)
		}
		return nil, fmt.Errorf("failed to check %s: %w", original, err)
	}

	backup, err := s.snapshot(ctx, models.SnapshotReset)
	if err != nil {
		rec.BackupPath = backup
		s.record(ctx, rec, models.OutcomeFailed, err)
		if backup == "" {
			return nil, err
		}
		return &ResetResult{BackupPath: backup, Source: original, HostsFile: hostsPath}, err
	}
	rec.BackupPath = backup
	result := &ResetResult{BackupPath: backup, Source: original, HostsFile: hostsPath}

	want, err := s.op.ReadFile(ctx, original)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", original, err)
		s.record(ctx, rec, models.OutcomeFailed, err)
		return result, err
	}
	rec.Digest = Digest(want)

	if err := s.op.Copy(ctx, original, hostsPath); err != nil {
		err = fmt.Errorf("failed to restore %s: %w", hostsPath, err)
		s.record(ctx, rec, models.OutcomeFailed, err)
		return result, err
	}

	got, err := s.op.ReadFile(ctx, hostsPath)
	if err != nil {
		err = fmt.Errorf("failed to verify %s: %w", hostsPath, err)
		s.record(ctx, rec, models.OutcomeFailed, err)
		return result, err
	}
	if !bytes.Equal(got, want) {
		err = fmt.Errorf("%w: %s has digest %s, expected %s", ErrRestoreMismatch, hostsPath, Digest(got), rec.Digest)
		s.record(ctx, rec, models.OutcomeFailed, err)
		return result, err
	}

	s.logger.Info().Str("source", original).Str("backup", backup).Msg("hosts file restored")
	s.record(ctx, rec, models.OutcomeRestored, nil)
	return result, nil
}

func (s *HostsService) ensureBackupDir(ctx context.Context) error {
	dir := s.env.BackupDir()
	if err := s.op.EnsureDir(ctx, dir, BackupDirPerm, s.env.Identity.Owner()); err != nil {
		return fmt.Errorf("failed to prepare backup directory %s: %w", dir, err)
	}
	return nil
}

// snapshot copies the live hosts file into the backup directory and hands the
// copy to the invoking identity.
func (s *HostsService) snapshot(ctx context.Context, kind models.SnapshotKind) (string, error) {
	hostsPath := s.env.Config.HostsFile
	path, err := NextSnapshotPath(s.env.BackupDir(), kind, s.now(), pathExists)
	if err != nil {
		return "", fmt.Errorf("failed to pick a snapshot name in %s: %w", s.env.BackupDir(), err)
	}

	if err := s.op.Copy(ctx, hostsPath, path); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", hostsPath, err)
	}
	if err := s.op.Chown(ctx, path, s.env.Identity.Owner()); err != nil {
		return path, fmt.Errorf("failed to set owner of %s: %w", path, err)
	}

	s.logger.Debug().Str("path", path).Msg("snapshot taken")
	return path, nil
}

// record journals the operation. Journal failures never fail the operation.
func (s *HostsService) record(ctx context.Context, rec *models.Operation, outcome models.Outcome, opErr error) {
	if s.journal == nil {
		return
	}
	rec.Outcome = outcome
	if opErr != nil {
		rec.Error = opErr.Error()
	}
	if err := s.journal.Record(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record operation in journal")
	}
}
