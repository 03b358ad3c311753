package monster

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ContentFileExt is the suffix a file must carry to be scanned.
const ContentFileExt = ".json"

// ExtractOptions configures an Extractor.
type ExtractOptions struct {
	// ContinueOnParseError keeps scanning when a file cannot be read or
	// decoded. Failures are collected in ScanResult.ParseErrors instead of
	// aborting the scan.
	ContinueOnParseError bool

	// Logger receives per-file progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// ScanResult is the outcome of scanning one corpus directory.
type ScanResult struct {
	// Dir is the scanned directory.
	Dir string
	// IDs holds every qualifying monster identifier found.
	IDs Set
	// Files lists the content files that were scanned successfully, in
	// listing order.
	Files []string
	// ParseErrors holds the per-file failures skipped under
	// ContinueOnParseError.
	ParseErrors []error
}

// Extractor scans a corpus directory for monster identifiers.
type Extractor struct {
	opts ExtractOptions
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ExtractOptions) *Extractor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Extractor{opts: opts}
}

// Extract scans the immediate .json files of dir, one at a time.
//
// A directory that cannot be listed yields a *DirectoryAccessError. A file
// that cannot be read or decoded yields a *ContentParseError, unless
// ContinueOnParseError is set.
func (x *Extractor) Extract(ctx context.Context, dir string) (*ScanResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DirectoryAccessError{Dir: dir, Err: err}
	}

	result := &ScanResult{Dir: dir, IDs: make(Set)}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ContentFileExt) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, entry.Name())

		found, err := scanFile(path, result.IDs)
		if err != nil {
			if !x.opts.ContinueOnParseError {
				return nil, err
			}

			x.opts.Logger.Warn("skipping unreadable content file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)

			result.ParseErrors = append(result.ParseErrors, err)

			continue
		}

		result.Files = append(result.Files, entry.Name())

		x.opts.Logger.Debug("scanned content file",
			slog.String("file", entry.Name()),
			slog.Int("monsters", found),
		)
	}

	return result, nil
}

// scanFile adds the qualifying ids of one file to ids and returns how many
// qualifying records the file held.
func scanFile(path string, ids Set) (int, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the corpus listing
	if err != nil {
		return 0, &ContentParseError{Path: path, Err: err}
	}

	records, err := DecodeRecords(data)
	if err != nil {
		return 0, &ContentParseError{Path: path, Err: err}
	}

	found := 0

	for _, r := range records {
		if IsMonster(r) {
			ids.Add(r.ID)
			found++
		}
	}

	return found, nil
}
