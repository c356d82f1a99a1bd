// Package rangeindex implements the range applier: it consumes a
// precomputed index of byte-offset references into source files and
// rewrites those files against a mapping snapshot, changing only the
// bytes within the indicated spans.
package rangeindex

import "fmt"

// OverlappingReferenceError is returned when two references in the same
// file's range list overlap, which the index is never supposed to
// produce.
type OverlappingReferenceError struct {
	File        string
	FirstEnd    uint32
	SecondStart uint32
}

func (e *OverlappingReferenceError) Error() string {
	return fmt.Sprintf("%s: overlapping references (end %d, next start %d)", e.File, e.FirstEnd, e.SecondStart)
}

// ReferenceMismatchError is returned when the bytes actually present at a
// reference's span do not equal the name the index claims is there —
// evidence the source file and the index have drifted out of sync.
type ReferenceMismatchError struct {
	File           string
	Start, End     uint32
	Expected, Got  string
}

func (e *ReferenceMismatchError) Error() string {
	return fmt.Sprintf("%s [%d,%d): expected %q, found %q", e.File, e.Start, e.End, e.Expected, e.Got)
}
