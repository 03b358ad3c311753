package monster

import "fmt"

// DirectoryAccessError reports a corpus directory that could not be listed.
type DirectoryAccessError struct {
	Dir string
	Err error
}

func (e *DirectoryAccessError) Error() string {
	return fmt.Sprintf("reading directory %s: %v", e.Dir, e.Err)
}

func (e *DirectoryAccessError) Unwrap() error { return e.Err }

// ContentParseError reports a content file that could not be read or is not
// valid JSON.
type ContentParseError struct {
	Path string
	Err  error
}

func (e *ContentParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ContentParseError) Unwrap() error { return e.Err }
