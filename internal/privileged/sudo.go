package privileged

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// SudoOperator runs each file operation through an elevation tool using the
// standard coreutils binaries (install, cp, chown, tee, cat).
type SudoOperator struct {
	Tool   string
	Runner CommandRunner
	Logger zerolog.Logger
}

func (s *SudoOperator) EnsureDir(ctx context.Context, path string, perm os.FileMode, owner Owner) error {
	args := []string{"install", "-d", "-m", fmt.Sprintf("%04o", perm.Perm())}
	if !owner.IsZero() {
		args = append(args, "-o", owner.UID, "-g", owner.GID)
	}
	args = append(args, "--", path)
	_, err := s.run(ctx, nil, args...)
	return err
}

func (s *SudoOperator) Copy(ctx context.Context, src, dst string) error {
	_, err := s.run(ctx, nil, "cp", "-p", "--", src, dst)
	return err
}

func (s *SudoOperator) Chown(ctx context.Context, path string, owner Owner) error {
	_, err := s.run(ctx, nil, "chown", owner.String(), "--", path)
	return err
}

func (s *SudoOperator) Append(ctx context.Context, path string, data []byte) error {
	_, err := s.run(ctx, bytes.NewReader(data), "tee", "-a", "--", path)
	return err
}

// ReadFile reads directly when permitted and only elevates on EACCES.
func (s *SudoOperator) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil || !errors.Is(err, os.ErrPermission) {
		return data, err
	}
	return s.run(ctx, nil, "cat", "--", path)
}

func (s *SudoOperator) run(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	s.Logger.Debug().Str("tool", s.Tool).Strs("args", args).Msg("running privileged command")

	stdout, stderr, code, err := s.Runner.Run(ctx, stdin, s.Tool, args...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		s.Logger.Debug().Int32("exit_code", code).Str("stderr", msg).Msg("privileged command failed")
		if msg != "" {
			return nil, fmt.Errorf("%s %s failed (exit %d): %s: %w", s.Tool, args[0], code, msg, err)
		}
		return nil, fmt.Errorf("%s %s failed (exit %d): %w", s.Tool, args[0], code, err)
	}
	return stdout, nil
}
