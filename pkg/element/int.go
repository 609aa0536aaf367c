package element

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

// IntSize is the width of an encoded int element.
const IntSize = 4

// EncodeInt encodes n as a little-endian 32-bit integer.
func EncodeInt(n int32) []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, IntSize), uint32(n))
}

// DecodeInt decodes an element produced by EncodeInt.
func DecodeInt(elem []byte) int32 {
	return int32(binary.LittleEndian.Uint32(elem))
}

// Int is the 32-bit integer kind. Its predicate selects even numbers.
var Int = &Kind{
	Name:      "int",
	Selector:  1,
	Size:      IntSize,
	BlockHint: 4,
	Read: func(src Source) ([]byte, error) {
		w, err := src.Word()
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(w, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("read int: %w", err)
		}
		return EncodeInt(int32(n)), nil
	},
	Format: func(w io.Writer, elem []byte) error {
		_, err := fmt.Fprintf(w, "%d ", DecodeInt(elem))
		return err
	},
	Compare: func(a, b []byte) int {
		return cmp.Compare(DecodeInt(a), DecodeInt(b))
	},
	Predicate: func(elem []byte) bool {
		return DecodeInt(elem)%2 == 0
	},
}
