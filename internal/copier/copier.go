// Package copier mirrors the mod source tree into a game installation,
// skipping development artifacts.
package copier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/hupe1980/veilbreak/internal/filter"
	"github.com/hupe1980/veilbreak/internal/modinfo"
)

// Options configures a copy run.
type Options struct {
	// Source is the mod source root.
	Source string
	// Destination is the installed mod directory.
	Destination string
	// Rules excludes paths relative to Source.
	Rules filter.Rules
	// DryRun lists what would be copied without touching Destination.
	DryRun bool
	// Force overwrites an installed mod with a newer version.
	Force bool
	// Logger receives per-file progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// SkippedPath records a path excluded by a rule.
type SkippedPath struct {
	Path string
	Rule string
}

// Result is the outcome of a copy run. Paths are relative to the source.
type Result struct {
	Copied  []string
	Skipped []SkippedPath
	Bytes   int64
}

// DowngradeError is returned when the installed mod is newer than the
// source and Options.Force is not set.
type DowngradeError struct {
	Installed *semver.Version
	Source    *semver.Version
}

func (e *DowngradeError) Error() string {
	return fmt.Sprintf("installed mod version %s is newer than source version %s (use --force to overwrite)",
		e.Installed, e.Source)
}

// Copy walks opts.Source and copies every non-excluded regular file to the
// same relative path under opts.Destination. Excluded directories are not
// descended into.
func Copy(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	src, dst, err := resolveRoots(opts.Source, opts.Destination)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		if err := checkDowngrade(src, dst, opts.Logger); err != nil {
			return nil, err
		}
	}

	if !opts.DryRun {
		if err := os.MkdirAll(dst, 0o750); err != nil {
			return nil, fmt.Errorf("creating destination %s: %w", dst, err)
		}
	}

	result := &Result{}

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		if rule, excluded := opts.Rules.Explain(rel); excluded {
			result.Skipped = append(result.Skipped, SkippedPath{Path: filepath.ToSlash(rel), Rule: rule})

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		var n int64
		if !opts.DryRun {
			n, err = copyFile(path, filepath.Join(dst, rel))
			if err != nil {
				return err
			}
		}

		result.Copied = append(result.Copied, filepath.ToSlash(rel))
		result.Bytes += n

		opts.Logger.Debug("copied", slog.String("path", filepath.ToSlash(rel)), slog.Bool("dryRun", opts.DryRun))

		return nil
	})
	if walkErr != nil {
		return result, fmt.Errorf("copying %s to %s: %w", src, dst, walkErr)
	}

	return result, nil
}

// resolveRoots makes both roots absolute and rejects a destination inside
// the source tree.
func resolveRoots(source, destination string) (string, string, error) {
	if source == "" || destination == "" {
		return "", "", fmt.Errorf("source and destination are required")
	}

	src, err := filepath.Abs(source)
	if err != nil {
		return "", "", fmt.Errorf("resolving source %q: %w", source, err)
	}

	dst, err := filepath.Abs(destination)
	if err != nil {
		return "", "", fmt.Errorf("resolving destination %q: %w", destination, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", "", fmt.Errorf("reading source: %w", err)
	}

	if !info.IsDir() {
		return "", "", fmt.Errorf("source %s is not a directory", src)
	}

	if rel, err := filepath.Rel(src, dst); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("destination %s is inside source %s", dst, src)
	}

	return src, dst, nil
}

// checkDowngrade compares the modinfo versions of source and destination.
// Missing or unparsable metadata disables the check.
func checkDowngrade(src, dst string, logger *slog.Logger) error {
	srcVer, ok := loadVersion(src, logger)
	if !ok {
		return nil
	}

	dstVer, ok := loadVersion(dst, logger)
	if !ok {
		return nil
	}

	if dstVer.GreaterThan(srcVer) {
		return &DowngradeError{Installed: dstVer, Source: srcVer}
	}

	return nil
}

func loadVersion(dir string, logger *slog.Logger) (*semver.Version, bool) {
	info, err := modinfo.Load(dir)
	if err != nil {
		if !errors.Is(err, modinfo.ErrNotFound) {
			logger.Warn("ignoring unreadable mod info", slog.String("dir", dir), slog.String("error", err.Error()))
		}

		return nil, false
	}

	v, err := info.SemVer()
	if err != nil {
		logger.Warn("ignoring mod version", slog.String("dir", dir), slog.String("error", err.Error()))
		return nil, false
	}

	return v, true
}

func copyFile(src, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", dst, err)
	}

	in, err := os.Open(src) //nolint:gosec // walked from the source root
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm()) //nolint:gosec // destination is under the install root
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, fmt.Errorf("copying %s: %w", src, err)
	}

	return n, out.Close()
}
