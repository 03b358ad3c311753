// Package veilbreak provides a public Go API for the Magiclysm mod tooling:
// monster id extraction, MONSTER_BLACKLIST generation and mod installation.
//
// The package exposes the same operations as the veilbreak CLI, allowing
// programmatic use from build scripts and tests.
//
// Basic usage:
//
//	res, err := veilbreak.ExtractMonsterIDs(ctx, "data/mods/Magiclysm/monsters")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Monsters)
//
// Generating a blacklist:
//
//	result, err := veilbreak.GenerateBlacklist(ctx,
//	    "data/json/monsters", "data/mods/Magiclysm/monsters",
//	    veilbreak.WithTolerateScanErrors(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("monster_blacklist.json", result.Document, 0o644)
package veilbreak

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/veilbreak/internal/blacklist"
	"github.com/hupe1980/veilbreak/internal/copier"
	"github.com/hupe1980/veilbreak/internal/filter"
	"github.com/hupe1980/veilbreak/internal/logging"
	"github.com/hupe1980/veilbreak/internal/monster"
)

// Error types returned by the operations of this package.
type (
	DirectoryAccessError = monster.DirectoryAccessError
	ContentParseError    = monster.ContentParseError
	DowngradeError       = copier.DowngradeError
)

// Option configures an operation. Use the With* functions to create Options.
type Option func(*options)

type options struct {
	logger *slog.Logger

	// Scanning.
	keepGoing      bool
	tolerateErrors bool

	// Installation.
	excludes          []string
	noDefaultExcludes bool
	dryRun            bool
	force             bool
}

func (o *options) applyDefaults() {
	if o.logger == nil {
		o.logger = logging.Discard()
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	o.applyDefaults()

	return o
}

// WithLogger sets the logger for progress output. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// --- Scanning ---

// WithKeepGoing makes ExtractMonsterIDs skip content files that cannot be
// parsed and report them in ExtractResult.ParseErrors. GenerateBlacklist
// ignores it: a skipped base file would put shared monsters on the list.
func WithKeepGoing() Option { return func(o *options) { o.keepGoing = true } }

// WithTolerateScanErrors treats a corpus that fails to scan as empty when
// generating a blacklist.
func WithTolerateScanErrors() Option { return func(o *options) { o.tolerateErrors = true } }

// --- Installation ---

// WithExcludes appends exclusion rules to the defaults.
func WithExcludes(rules ...string) Option {
	return func(o *options) { o.excludes = append(o.excludes, rules...) }
}

// WithoutDefaultExcludes disables the built-in exclusion rules.
func WithoutDefaultExcludes() Option { return func(o *options) { o.noDefaultExcludes = true } }

// WithDryRun reports what Install would copy without writing anything.
func WithDryRun() Option { return func(o *options) { o.dryRun = true } }

// WithForce lets Install overwrite an installed mod with a newer version.
func WithForce() Option { return func(o *options) { o.force = true } }

// ExtractResult holds the monsters found in one corpus directory.
type ExtractResult struct {
	// Monsters are the distinct ids, sorted ascending.
	Monsters []string
	// Files lists the content files that were scanned successfully.
	Files []string
	// ParseErrors holds a *ContentParseError for every file skipped under
	// WithKeepGoing.
	ParseErrors []error
}

// ExtractMonsterIDs returns the sorted, distinct monster ids defined by the
// .json files directly inside dir.
func ExtractMonsterIDs(ctx context.Context, dir string, opts ...Option) (*ExtractResult, error) {
	if dir == "" {
		return nil, errors.New("corpus directory must not be empty")
	}

	o := newOptions(opts)

	res, err := o.extractor(o.keepGoing).Extract(ctx, dir)
	if err != nil {
		return nil, err
	}

	return &ExtractResult{
		Monsters:    res.IDs.Sorted(),
		Files:       res.Files,
		ParseErrors: res.ParseErrors,
	}, nil
}

// BlacklistResult holds a generated blacklist.
type BlacklistResult struct {
	// Document is the rendered MONSTER_BLACKLIST file content.
	Document []byte
	// Monsters are the overlay-exclusive ids, sorted ascending.
	Monsters []string

	BaseCount      int
	OverlayCount   int
	OverlapCount   int
	ExclusiveCount int
}

// GenerateBlacklist scans the base and overlay corpus directories and renders
// a blacklist of the monsters only the overlay defines. A file that cannot be
// parsed always fails the run.
func GenerateBlacklist(ctx context.Context, baseDir, overlayDir string, opts ...Option) (*BlacklistResult, error) {
	if baseDir == "" || overlayDir == "" {
		return nil, errors.New("base and overlay directories must not be empty")
	}

	o := newOptions(opts)

	policy := blacklist.PolicyAbort
	if o.tolerateErrors {
		policy = blacklist.PolicyTreatAsEmpty
	}

	gen := blacklist.NewGenerator(o.extractor(false),
		blacklist.WithPolicy(policy),
		blacklist.WithLogger(o.logger),
	)

	res, err := gen.Generate(ctx, baseDir, overlayDir)
	if err != nil {
		return nil, err
	}

	doc, err := blacklist.Marshal(blacklist.NewDocument(res.ExclusiveIDs))
	if err != nil {
		return nil, err
	}

	return &BlacklistResult{
		Document:       doc,
		Monsters:       res.ExclusiveIDs,
		BaseCount:      res.Stats.BaseCount,
		OverlayCount:   res.Stats.OverlayCount,
		OverlapCount:   res.Stats.OverlapCount,
		ExclusiveCount: res.Stats.ExclusiveCount,
	}, nil
}

// InstallResult lists the paths Install copied and skipped, relative to the
// source root with forward slashes.
type InstallResult struct {
	Copied  []string
	Skipped []string
	Bytes   int64
}

// Install copies the mod tree at source into dest, skipping excluded paths.
func Install(ctx context.Context, source, dest string, opts ...Option) (*InstallResult, error) {
	o := newOptions(opts)

	var rules filter.Rules
	if !o.noDefaultExcludes {
		rules = filter.DefaultRules()
	}

	extra, err := filter.ParseRules(o.excludes)
	if err != nil {
		return nil, fmt.Errorf("exclusion rules: %w", err)
	}

	res, err := copier.Copy(ctx, copier.Options{
		Source:      source,
		Destination: dest,
		Rules:       append(rules, extra...),
		DryRun:      o.dryRun,
		Force:       o.force,
		Logger:      o.logger,
	})
	if res == nil {
		return nil, err
	}

	out := &InstallResult{Copied: res.Copied, Bytes: res.Bytes}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, s.Path)
	}

	return out, err
}

func (o *options) extractor(keepGoing bool) *monster.Extractor {
	return monster.NewExtractor(monster.ExtractOptions{
		ContinueOnParseError: keepGoing,
		Logger:               o.logger,
	})
}
