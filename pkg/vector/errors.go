package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory is returned when the allocator cannot provide a buffer.
	ErrOutOfMemory = errors.New("vector: out of memory")

	// ErrIndexOutOfRange is matched by every *IndexError.
	ErrIndexOutOfRange = errors.New("vector: index out of range")

	// ErrElementSize is returned when an element's length differs from the vector's element size.
	ErrElementSize = errors.New("vector: element size mismatch")

	// ErrInvalidArgument is returned for negative sizes and capacities.
	ErrInvalidArgument = errors.New("vector: invalid argument")
)

// IndexError reports a positional argument outside the valid range [0, Limit)
// for erase and [0, Limit] for insert.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vector: %s: index %d out of range for length %d", e.Op, e.Index, e.Len)
}

// Is makes errors.Is(err, ErrIndexOutOfRange) hold for any *IndexError.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
