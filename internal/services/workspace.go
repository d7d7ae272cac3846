package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pandeptwidyaop/hostkit/internal/validation"
)

// EnumerationDir holds scan output; nmap2csv reads and writes here by default.
const EnumerationDir = "enumeration"

// WorkspaceDirs are the engagement subdirectories, in creation order.
var WorkspaceDirs = []string{
	EnumerationDir,
	"loot",
	"exploitation",
	"privilege-escalation",
	"proof",
	"report",
}

// WorkspaceService scaffolds engagement note directories.
type WorkspaceService struct {
	perm os.FileMode
}

// NewWorkspaceService creates a WorkspaceService.
func NewWorkspaceService() *WorkspaceService {
	return &WorkspaceService{perm: 0755}
}

// Init creates root and every WorkspaceDirs entry below it. Existing
// directories are left alone, so Init is idempotent.
func (s *WorkspaceService) Init(root string) ([]string, error) {
	if err := validation.ValidateRoot(root); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(WorkspaceDirs))
	for _, dir := range WorkspaceDirs {
		path := filepath.Join(root, dir)
		if err := os.MkdirAll(path, s.perm); err != nil {
			return paths, fmt.Errorf("failed to create %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
