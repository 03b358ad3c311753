// Package cli implements the cobra command tree for veilbreak.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/veilbreak/internal/config"
	"github.com/hupe1980/veilbreak/internal/logging"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitUsage   = 2
	ExitStale   = 8
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	return execute(NewRootCommand(), os.Stderr)
}

func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}

	code := ExitCode(err)
	if code != ExitOK {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}

	return code
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var missing *config.MissingPathError
	if errors.As(err, &missing) {
		return ExitUsage
	}

	return ExitRuntime
}

// usageError marks err as a configuration or usage problem.
func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile string
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "veilbreak",
		Short: "Build tooling for the Magiclysm Veilbreak mod",
		Long: `veilbreak bundles the maintenance tools of the Magiclysm Veilbreak mod.

It lists the monster ids of a content pack, generates the
MONSTER_BLACKLIST of monsters that exist only in Magiclysm, and
installs the mod into the game's user mod directory.

Game locations are read from MAGICLYSM_DIR, DDA_DATA_DIR and
USER_MOD_DIR, either from the environment or from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return usageError(err)
			}

			paths, err := config.LoadPaths(envFile)
			if err != nil {
				return usageError(err)
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = config.NewContextWithPaths(ctx, paths)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("configFile", cfg.ConfigFile),
				slog.Bool("magiclysmDir", paths.MagiclysmDir != ""),
				slog.Bool("ddaDataDir", paths.DDADataDir != ""),
				slog.Bool("userModDir", paths.UserModDir != ""),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .veilbreak.yaml)")
	pf.StringVar(&envFile, "env-file", "", "dotenv file with game locations (default: .env)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(
		newAuditCommand(),
		newBlacklistCommand(),
		newCopyCommand(),
		newWatchCommand(),
		newConfigCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
