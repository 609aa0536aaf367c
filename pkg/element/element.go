// Package element provides the element kinds stored in byte vectors: their
// fixed-width encodings and the read, format, compare and predicate plug-ins
// the harness hands to a vector.
package element

import (
	"io"

	"github.com/715d/bytevec/pkg/vector"
)

// Source yields input tokens for Read.
type Source interface {
	// Word returns the next whitespace-delimited token.
	Word() (string, error)

	// Char returns the next non-space byte.
	Char() (byte, error)
}

// Kind describes one element type.
type Kind struct {
	// Name identifies the kind, e.g. "int".
	Name string

	// Selector is the numeric code scripts use to pick this kind.
	Selector int

	// Size is the encoded width of one element in bytes.
	Size int

	// BlockHint is the initial vector capacity used for this kind.
	BlockHint int

	// Read decodes the next element from src.
	Read func(src Source) ([]byte, error)

	// Format writes one element.
	Format func(w io.Writer, elem []byte) error

	Compare   vector.Comparator
	Predicate vector.Predicate
}
