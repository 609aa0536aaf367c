package element

import (
	"cmp"
	"fmt"
	"io"
)

// EncodeChar encodes a single-byte character.
func EncodeChar(c byte) []byte {
	return []byte{c}
}

// DecodeChar decodes an element produced by EncodeChar.
func DecodeChar(elem []byte) byte {
	return elem[0]
}

// Char is the single-byte character kind. Characters order as signed bytes.
// Its predicate selects vowels, counting 'y'.
var Char = &Kind{
	Name:      "char",
	Selector:  2,
	Size:      1,
	BlockHint: 2,
	Read: func(src Source) ([]byte, error) {
		c, err := src.Char()
		if err != nil {
			return nil, err
		}
		return EncodeChar(c), nil
	},
	Format: func(w io.Writer, elem []byte) error {
		_, err := fmt.Fprintf(w, "%c ", DecodeChar(elem))
		return err
	},
	Compare: func(a, b []byte) int {
		return cmp.Compare(int8(DecodeChar(a)), int8(DecodeChar(b)))
	},
	Predicate: func(elem []byte) bool {
		switch DecodeChar(elem) {
		case 'a', 'A', 'e', 'E', 'i', 'I', 'o', 'O', 'u', 'U', 'y', 'Y':
			return true
		}
		return false
	},
}
