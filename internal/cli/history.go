package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pandeptwidyaop/hostkit/internal/models"
	"github.com/pandeptwidyaop/hostkit/internal/services"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// HistoryCommand builds hosts-history.
func (r *Runner) HistoryCommand() *cobra.Command {
	var (
		limit     int
		snapshots bool
	)

	cmd := r.newCommand("hosts-history", "List journaled hosts file operations and snapshots")
	cmd.Args = exactArgs(0)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of journal entries to show")
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "list the backup directory instead of the journal")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if limit < 1 {
			return fmt.Errorf("--limit must be positive, got %d", limit)
		}

		env, logger, err := r.setup("hosts-history")
		if err != nil {
			return err
		}

		if snapshots {
			list, err := services.ListSnapshots(env.BackupDir())
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", env.BackupDir(), err)
			}
			if len(list) == 0 {
				fmt.Fprintf(r.Stdout, "No snapshots in %s\n", env.BackupDir())
				return nil
			}
			return writeSnapshots(r.Stdout, list)
		}

		journal, err := services.OpenExistingJournal(env.JournalPath())
		if errors.Is(err, services.ErrJournalMissing) {
			fmt.Fprintln(r.Stdout, "No operations recorded yet.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to open journal %s: %w", env.JournalPath(), err)
		}
		defer func() {
			if err := journal.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close journal")
			}
		}()

		ops, err := journal.List(cmd.Context(), limit, 0)
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}
		if len(ops) == 0 {
			fmt.Fprintln(r.Stdout, "No operations recorded yet.")
			return nil
		}
		return writeOperations(r.Stdout, ops)
	}
	return cmd
}

func writeOperations(out io.Writer, ops []models.Operation) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tOUTCOME\tENTRY\tUSER\tBACKUP")
	for _, op := range ops {
		entry := "-"
		switch {
		case op.IP != "":
			entry = op.IP + " " + op.Hostname
		case op.SourcePath != "":
			entry = "from " + op.SourcePath
		}
		backup := op.BackupPath
		if backup == "" {
			backup = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			op.CreatedAt.Local().Format(historyTimeLayout), op.Action, op.Outcome, entry, op.Username, backup)
		if op.Error != "" {
			fmt.Fprintf(tw, "\t\t\terror: %s\t\t\n", op.Error)
		}
	}
	return tw.Flush()
}

func writeSnapshots(out io.Writer, list []models.Snapshot) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAKEN\tKIND\tSIZE\tNAME")
	for _, s := range list {
		taken := "-"
		if !s.TakenAt.IsZero() {
			taken = s.TakenAt.Format(historyTimeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", taken, s.Kind, s.Size, s.Name)
	}
	return tw.Flush()
}
