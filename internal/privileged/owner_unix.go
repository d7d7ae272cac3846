//go:build unix

package privileged

import (
	"errors"
	"os"
	"syscall"
)

// preserveOwner copies the uid/gid of info onto path. Like cp -p, a
// non-root caller silently keeps its own ownership when that is refused.
func preserveOwner(path string, info os.FileInfo) error {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	err := os.Chown(path, int(st.Uid), int(st.Gid))
	if err != nil && os.Geteuid() != 0 && errors.Is(err, os.ErrPermission) {
		return nil
	}
	return err
}
