package privileged

import (
	"context"
	"fmt"
	"io"
	"os"
)

// LocalOperator performs the operations in-process. It is used when the tool
// already runs as root, and in tests against temporary directories.
type LocalOperator struct{}

func (l LocalOperator) EnsureDir(ctx context.Context, path string, perm os.FileMode, owner Owner) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return err
	}
	if err := os.Chmod(path, perm); err != nil {
		return err
	}
	if owner.IsZero() {
		return nil
	}
	return l.Chown(ctx, path, owner)
}

// Copy truncates dst in place rather than replacing it, so an existing
// destination keeps its inode (matching cp -p).
func (LocalOperator) Copy(_ context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	if err := preserveOwner(dst, info); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func (LocalOperator) Chown(_ context.Context, path string, owner Owner) error {
	uid, gid, err := owner.ids()
	if err != nil {
		return err
	}
	return os.Chown(path, uid, gid)
}

func (LocalOperator) Append(_ context.Context, path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (LocalOperator) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}
