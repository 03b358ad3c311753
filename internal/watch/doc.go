// Package watch re-installs the mod whenever its source tree changes. It
// monitors the source directory recursively, ignores excluded paths and
// editor temporaries, batches bursts of events and then triggers a copy.
package watch
