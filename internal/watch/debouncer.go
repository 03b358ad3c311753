package watch

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Debouncer collects changed paths and hands them over as one batch once no
// new event has arrived for the configured interval. Callbacks never run
// concurrently; a burst that settles while a callback is still running is
// delivered after it returns.
type Debouncer struct {
	interval time.Duration
	callback func(paths []string)

	running sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
}

// NewDebouncer creates a debouncer that fires callback with the sorted,
// distinct paths seen during a burst.
func NewDebouncer(interval time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
		pending:  make(map[string]struct{}),
	}
}

// Trigger records a change to path and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.running.Lock()
	defer d.running.Unlock()

	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	if len(paths) == 0 {
		return
	}

	sort.Strings(paths)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("debouncer callback panicked", slog.Any("error", r))
		}
	}()

	d.callback(paths)
}

// Stop cancels the pending batch.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.pending = make(map[string]struct{})
}
