package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/veilbreak/internal/config"
	"github.com/hupe1980/veilbreak/internal/logging"
	"github.com/hupe1980/veilbreak/internal/monster"
)

// MarkerLine separates the summary from the id list in text output.
const MarkerLine = "---"

type auditOptions struct {
	dir       string
	format    string
	keepGoing bool
}

// auditReport is the json and yaml rendering of an audit.
type auditReport struct {
	Dir      string   `json:"dir" yaml:"dir"`
	Files    int      `json:"files" yaml:"files"`
	Count    int      `json:"count" yaml:"count"`
	Monsters []string `json:"monsters" yaml:"monsters"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newAuditCommand() *cobra.Command {
	opts := &auditOptions{}

	cmd := &cobra.Command{
		Use:   "audit [corpus-dir]",
		Short: "List the monster ids defined in a content pack",
		Long: `Audit scans the .json files directly inside a monsters directory and
prints every MONSTER id it defines, deduplicated and sorted.

The directory is the positional argument if given; otherwise the
--subdir of --dir, or of MAGICLYSM_DIR.

Text output prints a short summary, a line containing only "---",
and then one id per line. Everything after the marker is stable
for scripts.

A file that is not valid JSON aborts the scan. With --keep-going
the scan continues, every failure is reported, and the command
exits with code 1 after printing the ids it found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}

			return runAudit(cmd.Context(), cmd, dir, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", "", "content pack directory (default: $MAGICLYSM_DIR)")
	f.String("subdir", config.DefaultSubdir, "monsters directory inside the pack (config: subdir)")
	f.StringVar(&opts.format, "format", "text", "output format: text, json, yaml")
	f.BoolVar(&opts.keepGoing, "keep-going", false, "report unparsable files and continue")

	return cmd
}

func runAudit(ctx context.Context, cmd *cobra.Command, dir string, opts *auditOptions) error {
	switch opts.format {
	case "text", "json", "yaml":
	default:
		return usageError(fmt.Errorf("invalid format %q: must be one of text, json, yaml", opts.format))
	}

	if dir == "" {
		pack, err := config.PathsFromContext(ctx).Resolve(opts.dir, config.EnvMagiclysmDir, "dir")
		if err != nil {
			return err
		}

		dir = filepath.Join(pack, config.FromContext(ctx).Subdir)
	}

	extractor := monster.NewExtractor(monster.ExtractOptions{
		ContinueOnParseError: opts.keepGoing,
		Logger:               logging.ForCommand(ctx, "audit"),
	})

	res, err := extractor.Extract(ctx, dir)
	if err != nil {
		return err
	}

	for _, perr := range res.ParseErrors {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", perr)
	}

	if err := writeAudit(cmd.OutOrStdout(), opts.format, res); err != nil {
		return err
	}

	if n := len(res.ParseErrors); n > 0 {
		return &ExitError{Code: ExitRuntime, Err: fmt.Errorf("%d content file(s) could not be parsed", n)}
	}

	return nil
}

func writeAudit(w io.Writer, format string, res *monster.ScanResult) error {
	ids := res.IDs.Sorted()

	switch format {
	case "json", "yaml":
		report := auditReport{
			Dir:      res.Dir,
			Files:    len(res.Files),
			Count:    len(ids),
			Monsters: ids,
		}

		for _, perr := range res.ParseErrors {
			report.Errors = append(report.Errors, perr.Error())
		}

		if format == "yaml" {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)

			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("encoding yaml: %w", err)
			}

			return enc.Close()
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	}

	_, _ = fmt.Fprintf(w, "Scanned %d file(s) in %s\n", len(res.Files), res.Dir)

	if n := len(res.ParseErrors); n > 0 {
		_, _ = fmt.Fprintf(w, "Skipped %d unparsable file(s)\n", n)
	}

	_, _ = fmt.Fprintf(w, "Found %d monster id(s)\n", len(ids))
	_, _ = fmt.Fprintln(w, MarkerLine)

	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}

	return nil
}
