package cli

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pandeptwidyaop/hostkit/internal/config"
	"github.com/pandeptwidyaop/hostkit/internal/services"
)

// Nmap2CSVCommand builds nmap2csv.
func (r *Runner) Nmap2CSVCommand() *cobra.Command {
	var (
		output         string
		includeNonOpen bool
	)

	cmd := r.newCommand("nmap2csv [input]", "Convert nmap -oN output into an attack surface CSV")
	cmd.Long = "Convert plain-text nmap output into an attack surface CSV and open it in the\n" +
		"configured viewer. Without any arguments it reads " + services.DefaultNmapInput + "\n" +
		"and writes " + services.DefaultSurfaceOutput + "."
	cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 {
			return usageError(cmd, ErrUsage)
		}
		return nil
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path (default <input>.csv)")
	cmd.Flags().BoolVar(&includeNonOpen, "include-non-open", false, "include ports whose state is not open*")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, _, err := r.surfaceConfig("nmap2csv")
		if err != nil {
			return err
		}

		input := services.DefaultNmapInput
		if len(args) == 1 {
			input = args[0]
		}
		noArgs := len(args) == 0 && cmd.Flags().NFlag() == 0

		svc := services.NewSurfaceService(
			services.EnumerationDir,
			services.NewLinePrompter(r.Stdin, r.Stdout),
			r.Viewer(cfg.Surface.Viewer),
			r.Stderr,
		)
		_, err = svc.Convert(services.SurfaceOptions{
			Input:          input,
			Output:         services.SurfaceOutputFor(input, output, noArgs),
			IncludeNonOpen: includeNonOpen,
		})
		if errors.Is(err, services.ErrCancelled) {
			cmd.PrintErrln("Cancelled; output file not written.")
			return errReported
		}
		return err
	}
	return cmd
}

// surfaceConfig loads the config for tools that do not write on behalf of an
// identity. When the identity cannot be resolved the home default is skipped.
func (r *Runner) surfaceConfig(app string) (*config.Config, zerolog.Logger, error) {
	env, logger, err := r.setup(app)
	if err == nil {
		return env.Config, logger, nil
	}
	if !errors.Is(err, config.ErrIdentityUnresolved) && !errors.Is(err, config.ErrHomeUnresolved) {
		return nil, zerolog.Nop(), err
	}

	cfg, err := config.Load(config.ResolvePath(r.configPath, "", r.Getenv))
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger = r.logger(app, cfg)
	logger.Debug().Msg("identity unresolved, using config without home default")
	return cfg, logger, nil
}
