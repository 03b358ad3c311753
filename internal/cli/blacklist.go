package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/veilbreak/internal/blacklist"
	"github.com/hupe1980/veilbreak/internal/config"
	"github.com/hupe1980/veilbreak/internal/logging"
	"github.com/hupe1980/veilbreak/internal/monster"
	"github.com/hupe1980/veilbreak/internal/output"
)

type blacklistOptions struct {
	base     string
	overlay  string
	dryRun   bool
	diff     bool
	check    bool
	tolerate bool
}

func newBlacklistCommand() *cobra.Command {
	opts := &blacklistOptions{}

	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Generate the MONSTER_BLACKLIST of Magiclysm-only monsters",
		Long: `Blacklist scans the base game monsters (--base, or the --subdir of
DDA_DATA_DIR) and the Magiclysm monsters (--overlay, or the --subdir
of MAGICLYSM_DIR), and writes a MONSTER_BLACKLIST listing every
monster that exists only in Magiclysm.

The output file is replaced only after the new document has been
fully written. Two runs over unchanged data produce identical files.

If either directory cannot be scanned the run fails. Pass
--tolerate-scan-errors to continue with an empty set instead; this
can grossly overstate the blacklist.

Exit codes:
  0  Success
  1  Scan or write failure
  2  Missing location or invalid arguments
  8  --check found an out-of-date blacklist`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBlacklist(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.base, "base", "", "base game monsters directory (default: $DDA_DATA_DIR/<subdir>)")
	f.StringVar(&opts.overlay, "overlay", "", "Magiclysm monsters directory (default: $MAGICLYSM_DIR/<subdir>)")
	f.String("subdir", config.DefaultSubdir, "monsters directory inside each pack (config: subdir)")
	f.StringP("output", "o", config.DefaultBlacklistFile, "blacklist file to write (config: blacklist.output)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the document instead of writing it")
	f.BoolVar(&opts.diff, "diff", false, "show a diff against the existing file instead of writing it")
	f.BoolVar(&opts.check, "check", false, "fail with exit code 8 if the existing file is out of date")
	f.BoolVar(&opts.tolerate, "tolerate-scan-errors", false, "treat an unreadable directory as empty")
	f.Int("preview", config.DefaultPreview, "number of blacklisted ids to preview (config: blacklist.preview)")

	return cmd
}

// corpusDir returns flagValue, or the subdir of the pack named by envName.
func corpusDir(ctx context.Context, flagValue, envName, flagName, subdir string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	pack, err := config.PathsFromContext(ctx).Resolve("", envName, flagName)
	if err != nil {
		return "", err
	}

	return filepath.Join(pack, subdir), nil
}

func runBlacklist(ctx context.Context, cmd *cobra.Command, opts *blacklistOptions) error {
	cfg := config.FromContext(ctx)

	baseDir, err := corpusDir(ctx, opts.base, config.EnvDDADataDir, "base", cfg.Subdir)
	if err != nil {
		return err
	}

	overlayDir, err := corpusDir(ctx, opts.overlay, config.EnvMagiclysmDir, "overlay", cfg.Subdir)
	if err != nil {
		return err
	}

	logger := logging.ForCommand(ctx, "blacklist")

	policy := blacklist.PolicyAbort
	if opts.tolerate {
		policy = blacklist.PolicyTreatAsEmpty
	}

	gen := blacklist.NewGenerator(
		monster.NewExtractor(monster.ExtractOptions{Logger: logger}),
		blacklist.WithPolicy(policy),
		blacklist.WithLogger(logger),
	)

	result, err := gen.Generate(ctx, baseDir, overlayDir)
	if err != nil {
		return err
	}

	data, err := blacklist.Marshal(blacklist.NewDocument(result.ExclusiveIDs))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	outPath := cfg.Blacklist.Output

	switch {
	case opts.check:
		return checkBlacklist(out, outPath, data, !cfg.NoColor)
	case opts.diff:
		return diffBlacklist(out, outPath, data, !cfg.NoColor)
	case opts.dryRun:
		writeStats(cmd.ErrOrStderr(), baseDir, overlayDir, result)
		return output.NewStdoutWriter(out).Write(data)
	}

	w := output.NewFileWriter(outPath, output.WithLogger(logger))
	if err := w.Write(data); err != nil {
		return err
	}

	writeStats(out, baseDir, overlayDir, result)
	_, _ = fmt.Fprintf(out, "\nBlacklist written to: %s\n", w.Path())
	writePreview(out, result.ExclusiveIDs, cfg.Blacklist.Preview)

	return nil
}

// readExisting returns the current blacklist file, or nil if there is none.
func readExisting(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied output path
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading existing blacklist: %w", err)
	}

	return data, nil
}

func diffBlacklist(w io.Writer, path string, proposed []byte, color bool) error {
	existing, err := readExisting(path)
	if err != nil {
		return err
	}

	d, err := blacklist.Diff(existing, proposed, path, "proposed")
	if err != nil {
		return err
	}

	blacklist.WriteDiff(w, d, color)

	return nil
}

func checkBlacklist(w io.Writer, path string, proposed []byte, color bool) error {
	existing, err := readExisting(path)
	if err != nil {
		return err
	}

	if existing != nil {
		if _, err := blacklist.Unmarshal(existing); err != nil {
			return &ExitError{Code: ExitStale, Err: fmt.Errorf("%s is not a valid blacklist: %w", path, err)}
		}
	}

	d, err := blacklist.Diff(existing, proposed, path, "proposed")
	if err != nil {
		return err
	}

	if !d.HasDifferences {
		_, _ = fmt.Fprintf(w, "%s is up to date\n", path)
		return nil
	}

	blacklist.WriteDiff(w, d, color)

	return &ExitError{
		Code: ExitStale,
		Err:  fmt.Errorf("%s is out of date (+%d/-%d lines)", path, d.Added, d.Removed),
	}
}

func writeStats(w io.Writer, baseDir, overlayDir string, r *blacklist.Result) {
	_, _ = fmt.Fprintf(w, "Base game monsters:   %d (%s)\n", r.Stats.BaseCount, baseDir)
	_, _ = fmt.Fprintf(w, "Magiclysm monsters:   %d (%s)\n", r.Stats.OverlayCount, overlayDir)
	_, _ = fmt.Fprintf(w, "Shared (not listed):  %d\n", r.Stats.OverlapCount)
	_, _ = fmt.Fprintf(w, "Magiclysm-exclusive:  %d\n", r.Stats.ExclusiveCount)
}

func writePreview(w io.Writer, ids []string, n int) {
	if n == 0 || len(ids) == 0 {
		return
	}

	shown := ids
	if len(shown) > n {
		shown = shown[:n]
	}

	_, _ = fmt.Fprintf(w, "\nPreview (first %d):\n", len(shown))

	for _, id := range shown {
		_, _ = fmt.Fprintf(w, "  - %s\n", id)
	}

	if rest := len(ids) - len(shown); rest > 0 {
		_, _ = fmt.Fprintf(w, "  ... and %d more\n", rest)
	}
}
