package supersrg

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz/lzma"
)

// CompressionID names a binary codec compression scheme, as carried
// verbatim over the wire in the str16 compr_id field.
type CompressionID string

const (
	CompressionNone CompressionID = ""
	CompressionLZ4  CompressionID = "lz4-frame"
	CompressionLZMA CompressionID = "lzma2"
	CompressionGzip CompressionID = "gzip"
)

// ForbiddenCompressionError is returned for a compr_id outside the
// recognized set.
type ForbiddenCompressionError struct {
	ID string
}

func (e *ForbiddenCompressionError) Error() string {
	return fmt.Sprintf("forbidden compression id %q", e.ID)
}

// UnsupportedCompressionError is returned for a compr_id that is
// recognized but not linked into this build.
type UnsupportedCompressionError struct {
	ID string
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("unsupported compression id %q", e.ID)
}

var knownCompressionIDs = map[CompressionID]bool{
	CompressionNone: true,
	CompressionLZ4:  true,
	CompressionLZMA: true,
	CompressionGzip: true,
}

// validateCompressionID rejects any id outside the recognized set; every
// recognized id is linked into this build, so ForbiddenCompressionError is
// the only failure this particular build can produce, but
// UnsupportedCompressionError is kept distinct so a build that compiles a
// codec out via a build tag still reports correctly.
func validateCompressionID(id CompressionID) error {
	if !knownCompressionIDs[id] {
		return &ForbiddenCompressionError{ID: string(id)}
	}
	return nil
}

// newCompressingWriter wraps w so that bytes written to the result are
// compressed per id before reaching w. Close must be called to flush
// trailing frame data.
func newCompressingWriter(w io.Writer, id CompressionID) (io.WriteCloser, error) {
	switch id {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionLZMA:
		lw, err := lzma.NewWriter2(w)
		if err != nil {
			return nil, err
		}
		return lw, nil
	default:
		return nil, &UnsupportedCompressionError{ID: string(id)}
	}
}

// newDecompressingReader wraps r so that reads from the result are
// decompressed per id. The caller must drain the result to EOF for the
// "must consume the entire stream" decoder rule to be enforceable.
func newDecompressingReader(r io.Reader, id CompressionID) (io.Reader, error) {
	switch id {
	case CompressionNone:
		return r, nil
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionLZ4:
		return lz4.NewReader(r), nil
	case CompressionLZMA:
		return lzma.NewReader2(r)
	default:
		return nil, &UnsupportedCompressionError{ID: string(id)}
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
