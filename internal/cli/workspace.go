package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pandeptwidyaop/hostkit/internal/services"
	"github.com/pandeptwidyaop/hostkit/internal/validation"
)

// WorkspaceInitCommand builds workspace-init. It needs neither the identity
// nor elevation, so it skips setup entirely.
func (r *Runner) WorkspaceInitCommand() *cobra.Command {
	cmd := r.newCommand("workspace-init <root>", "Create the engagement notes directory tree")
	cmd.Long = "Create <root> and its enumeration, loot, exploitation, privilege-escalation,\nproof and report subdirectories. Existing directories are left alone."
	cmd.Args = exactArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		_, err := services.NewWorkspaceService().Init(args[0])
		if errors.Is(err, validation.ErrRootEmpty) {
			return usageError(cmd, err)
		}
		return err
	}
	return cmd
}
