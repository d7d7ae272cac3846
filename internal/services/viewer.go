package services

import (
	"fmt"
	"os"
	"os/exec"
)

// ExecViewer launches an external program on the CSV and does not wait for it.
type ExecViewer struct {
	Program  string
	LookPath func(string) (string, error)
}

// NewExecViewer creates an ExecViewer for program.
func NewExecViewer(program string) *ExecViewer {
	return &ExecViewer{Program: program, LookPath: exec.LookPath}
}

// Open starts the viewer in its own session with stdio on the null device so
// the shell prompt returns immediately.
func (v *ExecViewer) Open(path string) error {
	bin, err := v.LookPath(v.Program)
	if err != nil {
		return fmt.Errorf("'%s' not found in PATH; CSV written but not opened", v.Program)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to launch %s: %w", v.Program, err)
	}
	defer func() { _ = devnull.Close() }()

	cmd := exec.Command(bin, path)
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", v.Program, err)
	}
	return cmd.Process.Release()
}
