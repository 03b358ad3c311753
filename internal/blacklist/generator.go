package blacklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/veilbreak/internal/monster"
)

// ScanPolicy decides what happens when one of the two corpora fails to scan.
type ScanPolicy int

const (
	// PolicyAbort fails the whole run. A silently empty base would blacklist
	// every overlay monster, so this is the default.
	PolicyAbort ScanPolicy = iota
	// PolicyTreatAsEmpty logs the failure and continues with an empty set
	// for the failed corpus. A *monster.ContentParseError still aborts: a
	// partially scanned base would blacklist shared monsters.
	PolicyTreatAsEmpty
)

// String implements fmt.Stringer.
func (p ScanPolicy) String() string {
	switch p {
	case PolicyTreatAsEmpty:
		return "treat-as-empty"
	default:
		return "abort"
	}
}

// Scanner extracts the monster identifiers of a corpus directory.
// *monster.Extractor satisfies it.
type Scanner interface {
	Extract(ctx context.Context, dir string) (*monster.ScanResult, error)
}

// Generator scans a base and an overlay corpus and compares them.
type Generator struct {
	scanner Scanner
	policy  ScanPolicy
	logger  *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithPolicy overrides the default PolicyAbort.
func WithPolicy(p ScanPolicy) GeneratorOption {
	return func(g *Generator) {
		g.policy = p
	}
}

// WithLogger sets the logger used for scan progress and failures.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a Generator that scans with s.
func NewGenerator(s Scanner, opts ...GeneratorOption) *Generator {
	g := &Generator{
		scanner: s,
		policy:  PolicyAbort,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate scans basePath, then overlayPath, and returns the overlay-exclusive
// identifiers.
func (g *Generator) Generate(ctx context.Context, basePath, overlayPath string) (*Result, error) {
	base, err := g.scan(ctx, "base", basePath)
	if err != nil {
		return nil, err
	}

	overlay, err := g.scan(ctx, "overlay", overlayPath)
	if err != nil {
		return nil, err
	}

	return Compute(base, overlay), nil
}

func (g *Generator) scan(ctx context.Context, role, dir string) (monster.Set, error) {
	g.logger.Info("scanning corpus", slog.String("role", role), slog.String("dir", dir))

	res, err := g.scanner.Extract(ctx, dir)
	if err != nil {
		var parseErr *monster.ContentParseError
		if g.policy != PolicyTreatAsEmpty || ctx.Err() != nil || errors.As(err, &parseErr) {
			return nil, fmt.Errorf("scanning %s corpus: %w", role, err)
		}

		g.logger.Warn("corpus scan failed, treating as empty",
			slog.String("role", role),
			slog.String("dir", dir),
			slog.String("error", err.Error()),
		)

		return make(monster.Set), nil
	}

	g.logger.Info("corpus scanned",
		slog.String("role", role),
		slog.Int("monsters", res.IDs.Len()),
		slog.Int("files", len(res.Files)),
	)

	return res.IDs, nil
}
