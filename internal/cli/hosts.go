package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pandeptwidyaop/hostkit/internal/config"
	"github.com/pandeptwidyaop/hostkit/internal/services"
	"github.com/pandeptwidyaop/hostkit/internal/validation"
)

// HostsAddCommand builds hosts-add.
func (r *Runner) HostsAddCommand() *cobra.Command {
	cmd := r.newCommand("hosts-add <fqdn> <ipv4>", "Back up the hosts file and append an IPv4 mapping")
	cmd.Args = exactArgs(2)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		hostname, ip := args[0], args[1]
		if err := validation.ValidateIPv4Syntax(ip); err != nil {
			return fmt.Errorf("%w: %q", err, ip)
		}
		if err := validation.ValidateHostname(hostname); err != nil {
			return fmt.Errorf("%w: %q", err, hostname)
		}

		svc, closeJournal, err := r.hostsService("hosts-add")
		if err != nil {
			return err
		}
		defer closeJournal()

		res, err := svc.Add(cmd.Context(), hostname, ip)
		if res != nil && res.BackupPath != "" {
			fmt.Fprintf(r.Stdout, "Backup: %s\n", res.BackupPath)
		}
		if err != nil {
			return err
		}

		if res.Added {
			fmt.Fprintf(r.Stdout, "Added %s\t%s to %s\n", ip, hostname, res.HostsFile)
		} else {
			fmt.Fprintf(r.Stdout, "Entry already present in %s: %s\t%s\n", res.HostsFile, ip, hostname)
		}
		return nil
	}
	return cmd
}

// HostsResetCommand builds hosts-reset.
func (r *Runner) HostsResetCommand() *cobra.Command {
	cmd := r.newCommand("hosts-reset", "Back up the hosts file and restore it from hosts.original")
	cmd.Args = exactArgs(0)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		svc, closeJournal, err := r.hostsService("hosts-reset")
		if err != nil {
			return err
		}
		defer closeJournal()

		res, err := svc.Reset(cmd.Context())
		if res != nil && res.BackupPath != "" {
			fmt.Fprintf(r.Stdout, "Backup: %s\n", res.BackupPath)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Stdout, "Restored from: %s\n", res.Source)
		return nil
	}
	return cmd
}

// hostsService resolves the environment, selects the operator and wires the
// journal. The returned func closes the journal.
func (r *Runner) hostsService(app string) (*services.HostsService, func(), error) {
	env, logger, err := r.setup(app)
	if err != nil {
		return nil, nil, err
	}

	op, err := r.Elevate(env.Config.Elevation.Tool, logger)
	if err != nil {
		return nil, nil, err
	}

	if !env.Config.JournalEnabled() {
		return services.NewHostsService(env, op, nil, logger), func() {}, nil
	}

	journal := newJournal(env, logger)
	closeJournal := func() {
		if err := journal.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close journal")
		}
	}
	return services.NewHostsService(env, op, journal, logger), closeJournal, nil
}

func newJournal(env *config.Env, logger zerolog.Logger) *services.LazyJournal {
	return &services.LazyJournal{
		Path:   env.JournalPath(),
		Owner:  env.Identity.Owner(),
		Logger: logger,
	}
}
