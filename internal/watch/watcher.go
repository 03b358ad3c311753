package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/veilbreak/internal/filter"
)

// RunFunc is called for the initial install and after every batch of
// changes. changed holds source-relative paths and is empty on the
// initial call.
type RunFunc func(ctx context.Context, changed []string) (*RunResult, error)

// RunResult summarises one install run.
type RunResult struct {
	Copied  int
	Skipped int
}

// Options configures the watch behaviour.
type Options struct {
	// Root is the mod source directory to watch recursively.
	Root string

	// Rules excludes paths relative to Root from both watching and
	// triggering.
	Rules filter.Rules

	// Debounce is the quiet period before triggering a copy.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run performs an initial run, then watches Root and blocks until the
// context is cancelled or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	defaults := DefaultOptions()

	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}

	if opts.Debounce <= 0 {
		opts.Debounce = defaults.Debounce
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", opts.Root, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root, opts.Rules); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", root, opts.Debounce)

	doRun(sigCtx, opts, runFn, nil)

	debouncer := NewDebouncer(opts.Debounce, func(paths []string) {
		doRun(sigCtx, opts, runFn, paths)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			rel, relevant := relevantPath(root, event, opts.Rules)
			if !relevant {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := addRecursive(watcher, event.Name, opts.Rules); addErr != nil {
						opts.Logger.Warn("watching new directory", slog.String("dir", event.Name), slog.String("error", addErr.Error()))
					}
				}
			}

			debouncer.Trigger(rel)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single install run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, changed []string) {
	now := time.Now().Format("15:04:05")

	trigger := "(initial)"
	if len(changed) == 1 {
		trigger = changed[0]
	} else if len(changed) > 1 {
		trigger = fmt.Sprintf("%s (+%d more)", changed[0], len(changed)-1)
	}

	result, err := runFn(ctx, changed)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d copied, %d skipped)\n",
		now, trigger, result.Copied, result.Skipped)
}

// addRecursive walks root and adds every non-excluded directory to the
// watcher.
func addRecursive(watcher *fsnotify.Watcher, root string, rules filter.Rules) error {
	base := root

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if rel, relErr := filepath.Rel(base, path); relErr == nil && rel != "." && rules.Match(rel) {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}

// relevantPath filters events down to content changes of non-excluded
// files and returns the path relative to root.
func relevantPath(root string, event fsnotify.Event, rules filter.Rules) (string, bool) {
	if !isRelevant(event) {
		return "", false
	}

	rel, err := filepath.Rel(root, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}

	if rules.Match(rel) {
		return "", false
	}

	return filepath.ToSlash(rel), true
}

// isRelevant filters out metadata-only events and editor temporaries.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	if strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") ||
		strings.HasPrefix(name, "#") || strings.HasPrefix(name, ".#") {
		return false
	}

	return true
}
