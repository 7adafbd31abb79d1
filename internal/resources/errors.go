package resources

import (
	"errors"
	"fmt"
)

// Sentinel errors for resource operations.
var (
	// ErrExtraction indicates a bundled tree could not be copied to disk.
	ErrExtraction = errors.New("resource extraction failed")

	// ErrTreeNotFound indicates the requested tree is not part of the bundle.
	ErrTreeNotFound = errors.New("resource tree not found")

	// ErrInvalidTreeName indicates the tree name is empty or contains
	// path separators or traversal sequences.
	ErrInvalidTreeName = errors.New("invalid resource tree name")
)

// ExtractionError describes a failed extraction. Written lists every file
// copied before the failure, relative to the destination directory.
type ExtractionError struct {
	Tree    string
	Path    string // path that could not be created or written
	Written []string
	Err     error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("%v: tree %q at %s: %v", ErrExtraction, e.Tree, e.Path, e.Err)
	if len(e.Written) > 0 {
		msg += fmt.Sprintf(" (%d file(s) already written)", len(e.Written))
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is reports ErrExtraction so callers can match on the sentinel.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }
