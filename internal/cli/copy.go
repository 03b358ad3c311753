package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/veilbreak/internal/config"
	"github.com/hupe1980/veilbreak/internal/copier"
	"github.com/hupe1980/veilbreak/internal/logging"
)

type copyOptions struct {
	source  string
	dest    string
	exclude []string
	dryRun  bool
	force   bool
	verbose bool
}

// registerCopyFlags adds the flags shared by copy and watch.
func registerCopyFlags(cmd *cobra.Command, opts *copyOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.source, "source", ".", "mod source directory")
	f.StringVar(&opts.dest, "dest", "", "install directory (default: $USER_MOD_DIR/<mod-name>)")
	f.String("mod-name", config.DefaultModName, "install directory name under USER_MOD_DIR (config: copy.modName)")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "additional exclusion rule (repeatable): substring, *.ext, =segment or glob")
	f.Bool("no-default-excludes", false, "do not apply the built-in exclusion rules (config: copy.noDefaultExcludes)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "list the files without copying")
	f.BoolVar(&opts.force, "force", false, "overwrite an installed mod with a newer version")
}

func newCopyCommand() *cobra.Command {
	opts := &copyOptions{}

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Install the mod into the user mod directory",
		Long: `Copy mirrors the mod source tree into the game's user mod directory,
skipping development artifacts such as .git, node_modules, utils/,
*.ts and *.md files.

Exclusion rules come from the built-in defaults, the copy.exclude
list of the config file and --exclude. A rule is one of:

  =name      a whole path segment (=utils skips utils/ but not utils_x.json)
  =pattern   a segment pattern (=.env* skips .env and .env.local)
  *.ext      a file extension
  glob       a doublestar pattern such as monsters/**/*.bak
  text       any other text matches as a substring of the relative path

Installing over a mod whose modinfo.json has a newer version is
refused unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCopy(cmd.Context(), cmd, opts)
		},
	}

	registerCopyFlags(cmd, opts)
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "also list skipped paths")

	return cmd
}

// copierOptions resolves the loaded config, the --exclude flag and the
// environment into the options of a copy run. --mod-name and
// --no-default-excludes reach the config through flag binding.
func copierOptions(ctx context.Context, cmd *cobra.Command, opts *copyOptions) (copier.Options, error) {
	copyCfg := config.FromContext(ctx).Copy

	dest := opts.dest
	if dest == "" {
		modDir, err := config.PathsFromContext(ctx).Resolve("", config.EnvUserModDir, "dest")
		if err != nil {
			return copier.Options{}, err
		}

		dest = filepath.Join(modDir, copyCfg.ModName)
	}

	rules, err := copyCfg.Rules(opts.exclude)
	if err != nil {
		return copier.Options{}, usageError(err)
	}

	return copier.Options{
		Source:      opts.source,
		Destination: dest,
		Rules:       rules,
		DryRun:      opts.dryRun,
		Force:       opts.force,
		Logger:      logging.ForCommand(ctx, cmd.Name()),
	}, nil
}

func runCopy(ctx context.Context, cmd *cobra.Command, opts *copyOptions) error {
	copts, err := copierOptions(ctx, cmd, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(out, "Copying mod files to: %s\n", copts.Destination)
	_, _ = fmt.Fprintf(out, "Source directory: %s\n\n", copts.Source)

	res, err := copier.Copy(ctx, copts)
	if err != nil {
		return err
	}

	verb := "Copied"
	if copts.DryRun {
		verb = "Would copy"
	}

	for _, p := range res.Copied {
		_, _ = fmt.Fprintf(out, "%s: %s\n", verb, p)
	}

	if opts.verbose {
		_, _ = fmt.Fprintf(out, "Exclusion rules: %s\n", strings.Join(copts.Rules.Strings(), " "))

		for _, s := range res.Skipped {
			_, _ = fmt.Fprintf(out, "Skipped: %s (%s)\n", s.Path, s.Rule)
		}
	}

	_, _ = fmt.Fprintf(out, "\nDone. %s %d file(s), skipped %d path(s).\n", verb, len(res.Copied), len(res.Skipped))

	return nil
}
