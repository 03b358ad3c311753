// Package output provides the destinations veilbreak writes results to.
//
// [StdoutWriter] sends bytes to a terminal or pipe. [FileWriter] replaces a
// file atomically: data goes to a temporary file in the target directory,
// which is then renamed over the target, so an interrupted run never leaves
// a half-written blacklist behind.
package output
