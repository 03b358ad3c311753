package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/veilbreak/internal/copier"
	"github.com/hupe1980/veilbreak/internal/watch"
)

type watchOptions struct {
	copyOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reinstall the mod whenever its source changes",
		Long: `Watch installs the mod once, like copy, and then monitors the source
tree. After every burst of changes it copies the mod again.

Excluded paths and editor temporary files never trigger a copy.
Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd, opts)
		},
	}

	registerCopyFlags(cmd, &opts.copyOptions)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultOptions().Debounce, "quiet period before copying")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts *watchOptions) error {
	if opts.debounce <= 0 {
		return usageError(fmt.Errorf("--debounce must be positive"))
	}

	copts, err := copierOptions(ctx, cmd, &opts.copyOptions)
	if err != nil {
		return err
	}

	runFn := func(fnCtx context.Context, changed []string) (*watch.RunResult, error) {
		if len(changed) > 0 {
			copts.Logger.Debug("source changed", slog.Any("paths", changed))
		}

		res, err := copier.Copy(fnCtx, copts)
		if err != nil {
			return nil, err
		}

		return &watch.RunResult{Copied: len(res.Copied), Skipped: len(res.Skipped)}, nil
	}

	wopts := watch.DefaultOptions()
	wopts.Root = copts.Source
	wopts.Rules = copts.Rules
	wopts.Debounce = opts.debounce
	wopts.Logger = copts.Logger
	wopts.Out = cmd.ErrOrStderr()

	return watch.Run(ctx, wopts, runFn)
}
