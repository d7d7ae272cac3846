// Package cli builds the cobra commands behind each hostkit binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pandeptwidyaop/hostkit/internal/config"
	"github.com/pandeptwidyaop/hostkit/internal/logging"
	"github.com/pandeptwidyaop/hostkit/internal/privileged"
	"github.com/pandeptwidyaop/hostkit/internal/services"
	"github.com/pandeptwidyaop/hostkit/internal/version"
)

// ErrUsage indicates the wrong number of positional arguments.
var ErrUsage = errors.New("wrong number of arguments")

// errReported marks a failure the command already described on stderr.
var errReported = errors.New("reported")

// Runner holds the process environment the commands run against. Tests
// replace the fields with buffers and fakes.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Getenv func(string) string
	Users  config.UserLookup

	// Elevate picks the privileged operator for the configured tool.
	Elevate func(tool string, logger zerolog.Logger) (privileged.Operator, error)
	// Viewer builds the program nmap2csv opens its CSV with.
	Viewer func(program string) services.Viewer
	// NewLogger builds the logger once the config is known.
	NewLogger func(opts logging.Options) zerolog.Logger

	configPath string
}

// NewRunner returns a Runner bound to the real process.
func NewRunner() *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		Users:  config.OSUsers{},
		Elevate: func(tool string, logger zerolog.Logger) (privileged.Operator, error) {
			return privileged.NewSelector(tool, logger).Select()
		},
		Viewer: func(program string) services.Viewer {
			return services.NewExecViewer(program)
		},
		NewLogger: logging.Configure,
	}
}

// Execute runs cmd with args and returns the process exit code.
func (r *Runner) Execute(ctx context.Context, cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	cmd.SetIn(r.Stdin)
	cmd.SetOut(r.Stdout)
	cmd.SetErr(r.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(r.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// newCommand applies the settings every tool shares.
func (r *Runner) newCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n" + version.Details())
	cmd.Flags().StringVar(&r.configPath, "config", "", "path to config file (default ~/"+config.DefaultConfigPath+")")
	return cmd
}

// setup resolves the identity, loads the config and builds the logger.
func (r *Runner) setup(app string) (*config.Env, zerolog.Logger, error) {
	env, err := config.Setup(r.configPath, r.Getenv, r.Users)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := r.logger(app, env.Config)
	logger.Debug().
		Str("user", env.Identity.Username).
		Str("home", env.Identity.Home).
		Str("config", env.ConfigPath).
		Msg("environment resolved")
	return env, logger, nil
}

func (r *Runner) logger(app string, cfg *config.Config) zerolog.Logger {
	return r.NewLogger(logging.Options{
		App:     app,
		Level:   cfg.Log.Level,
		NoColor: cfg.Log.NoColor,
		Out:     r.Stderr,
	})
}

// exactArgs rejects any other argument count with the command's usage line.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError(cmd, ErrUsage)
		}
		return nil
	}
}

func usageError(cmd *cobra.Command, err error) error {
	return fmt.Errorf("%w\nusage: %s", err, cmd.UseLine())
}
