package element

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
)

const (
	// NameLen is the width of each name field, including the terminating NUL.
	NameLen = 64

	// PersonSize is the width of an encoded person record.
	PersonSize = 4 + 2*NameLen

	firstNameOff = 4
	lastNameOff  = firstNameOff + NameLen
)

// Person is a fixed-size record. Names longer than NameLen-1 bytes are
// truncated when encoded.
type Person struct {
	Age       int32
	FirstName string
	LastName  string
}

// Encode returns the PersonSize-byte encoding of p.
func (p Person) Encode() []byte {
	buf := make([]byte, PersonSize)
	binary.LittleEndian.PutUint32(buf, uint32(p.Age))
	putName(buf[firstNameOff:lastNameOff], p.FirstName)
	putName(buf[lastNameOff:], p.LastName)
	return buf
}

// DecodePerson decodes an element produced by Person.Encode.
func DecodePerson(elem []byte) Person {
	return Person{
		Age:       int32(binary.LittleEndian.Uint32(elem)),
		FirstName: string(nameField(elem[firstNameOff:lastNameOff])),
		LastName:  string(nameField(elem[lastNameOff:PersonSize])),
	}
}

func putName(dst []byte, name string) {
	n := copy(dst[:NameLen-1], name)
	clear(dst[n:])
}

// nameField returns the bytes before the first NUL.
func nameField(field []byte) []byte {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return field[:i]
	}
	return field
}

// ComparePerson orders people by age, oldest first, then by first name and
// last name.
func ComparePerson(a, b []byte) int {
	ageA := int32(binary.LittleEndian.Uint32(a))
	ageB := int32(binary.LittleEndian.Uint32(b))
	if c := cmp.Compare(ageB, ageA); c != 0 {
		return c
	}
	if c := bytes.Compare(nameField(a[firstNameOff:lastNameOff]), nameField(b[firstNameOff:lastNameOff])); c != 0 {
		return c
	}
	return bytes.Compare(nameField(a[lastNameOff:PersonSize]), nameField(b[lastNameOff:PersonSize]))
}

// PersonKind is the person record kind. Its predicate selects people older than 25.
var PersonKind = &Kind{
	Name:      "person",
	Selector:  3,
	Size:      PersonSize,
	BlockHint: 2,
	Read: func(src Source) ([]byte, error) {
		w, err := src.Word()
		if err != nil {
			return nil, err
		}
		age, err := strconv.ParseInt(w, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("read person age: %w", err)
		}
		first, err := src.Word()
		if err != nil {
			return nil, fmt.Errorf("read person first name: %w", err)
		}
		last, err := src.Word()
		if err != nil {
			return nil, fmt.Errorf("read person last name: %w", err)
		}
		return Person{Age: int32(age), FirstName: first, LastName: last}.Encode(), nil
	},
	Format: func(w io.Writer, elem []byte) error {
		p := DecodePerson(elem)
		_, err := fmt.Fprintf(w, "%d %s %s\n", p.Age, p.FirstName, p.LastName)
		return err
	},
	Compare: ComparePerson,
	Predicate: func(elem []byte) bool {
		return DecodePerson(elem).Age > 25
	},
}
