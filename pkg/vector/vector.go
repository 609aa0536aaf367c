// Package vector implements a type-erased growable array of fixed-size elements.
//
// A Vector stores every element as an opaque block of ElemSize bytes in a single
// contiguous buffer. It never interprets element contents: ordering, equality and
// selection are supplied by the caller as Comparator and Predicate functions.
//
// Capacity grows by doubling, so a sequence of n appends copies O(n) bytes in
// total. Every Resize leaves the slots in [Len, Cap) zero-filled.
//
// A Vector is not safe for concurrent use.
package vector

import (
	"fmt"
)

// Comparator is a three-way comparison over two elements: negative when a
// orders before b, zero when they are equal, positive otherwise.
type Comparator func(a, b []byte) int

// Predicate reports whether an element matches.
type Predicate func(elem []byte) bool

// Option configures a Vector at construction.
type Option func(*Vector)

// WithAllocator sets the allocator used for the backing buffer.
func WithAllocator(a Allocator) Option {
	return func(v *Vector) {
		if a != nil {
			v.alloc = a
		}
	}
}

// Vector is a growable array of fixed-size elements.
type Vector struct {
	// data holds exactly capacity*elemSize bytes, or nil when capacity is zero.
	data     []byte
	elemSize int
	size     int
	capacity int
	alloc    Allocator
}

// New creates an empty vector with room for capacityHint elements of
// elemSize bytes each.
func New(capacityHint, elemSize int, opts ...Option) (*Vector, error) {
	if elemSize <= 0 {
		return nil, fmt.Errorf("element size %d: %w", elemSize, ErrInvalidArgument)
	}
	if capacityHint < 0 {
		return nil, fmt.Errorf("capacity hint %d: %w", capacityHint, ErrInvalidArgument)
	}
	v := &Vector{
		elemSize: elemSize,
		alloc:    HeapAllocator{},
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := v.Reserve(capacityHint); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return v, nil
}

// Len returns the number of elements.
func (v *Vector) Len() int { return v.size }

// Cap returns the number of element slots backed by storage.
func (v *Vector) Cap() int { return v.capacity }

// ElemSize returns the width of one element in bytes.
func (v *Vector) ElemSize() int { return v.elemSize }

// Bytes returns the live bytes of elements [0, Len). The slice aliases the
// vector's storage and is invalidated by any operation that changes capacity.
func (v *Vector) Bytes() []byte {
	return v.data[:v.offset(v.size)]
}

// At returns a live view of element i.
func (v *Vector) At(i int) ([]byte, error) {
	if i < 0 || i >= v.size {
		return nil, &IndexError{Op: "at", Index: i, Len: v.size}
	}
	return v.slot(i), nil
}

// Set overwrites element i.
func (v *Vector) Set(i int, elem []byte) error {
	if err := v.checkElem(elem); err != nil {
		return err
	}
	if i < 0 || i >= v.size {
		return &IndexError{Op: "set", Index: i, Len: v.size}
	}
	copy(v.slot(i), elem)
	return nil
}

// Each calls fn for every element in order until fn returns false.
func (v *Vector) Each(fn func(i int, elem []byte) bool) {
	for i := 0; i < v.size; i++ {
		if !fn(i, v.slot(i)) {
			return
		}
	}
}

// Reserve ensures storage for at least n elements. It never shrinks the
// vector. On failure the vector is unchanged.
func (v *Vector) Reserve(n int) error {
	if n < 0 {
		return fmt.Errorf("reserve %d: %w", n, ErrInvalidArgument)
	}
	if n <= v.capacity {
		return nil
	}
	return v.realloc(n)
}

// Resize sets the number of elements to n. Capacity doubles until it holds n
// elements. Slots from the smaller of the old and new length up to Cap are
// zeroed, so newly exposed elements read as zero bytes.
func (v *Vector) Resize(n int) error {
	if n < 0 {
		return fmt.Errorf("resize %d: %w", n, ErrInvalidArgument)
	}
	if n > MaxAllocBytes/v.elemSize {
		return fmt.Errorf("resize %d: %w", n, ErrOutOfMemory)
	}
	if n > v.capacity {
		target := v.capacity
		for target < n {
			target = grow(target)
		}
		if err := v.Reserve(target); err != nil {
			return fmt.Errorf("resize %d: %w", n, err)
		}
	}
	clear(v.data[v.offset(min(v.size, n)):])
	v.size = n
	return nil
}

// PushBack appends elem.
func (v *Vector) PushBack(elem []byte) error {
	if err := v.checkElem(elem); err != nil {
		return err
	}
	if err := v.Resize(v.size + 1); err != nil {
		return err
	}
	copy(v.slot(v.size-1), elem)
	return nil
}

// Insert places elem at index i, shifting elements [i, Len) one slot right.
// i may equal Len, which appends.
func (v *Vector) Insert(i int, elem []byte) error {
	if err := v.checkElem(elem); err != nil {
		return err
	}
	if i < 0 || i > v.size {
		return &IndexError{Op: "insert", Index: i, Len: v.size}
	}
	prev := v.size
	if err := v.Resize(prev + 1); err != nil {
		return err
	}
	copy(v.data[v.offset(i+1):v.offset(prev+1)], v.data[v.offset(i):v.offset(prev)])
	copy(v.slot(i), elem)
	return nil
}

// Erase removes element i, shifting elements (i, Len) one slot left.
// Capacity is unchanged.
func (v *Vector) Erase(i int) error {
	if i < 0 || i >= v.size {
		return &IndexError{Op: "erase", Index: i, Len: v.size}
	}
	v.erase(i)
	return nil
}

func (v *Vector) erase(i int) {
	copy(v.data[v.offset(i):], v.data[v.offset(i+1):v.offset(v.size)])
	v.size--
}

// EraseValue removes every element e for which cmp(value, e) == 0 and
// returns the number of elements removed. Remaining elements keep their order.
func (v *Vector) EraseValue(value []byte, cmp Comparator) (int, error) {
	if err := v.checkElem(value); err != nil {
		return 0, err
	}
	return v.EraseIf(func(elem []byte) bool {
		return cmp(value, elem) == 0
	}), nil
}

// EraseIf removes every element matching pred and returns the number removed.
// Remaining elements keep their order.
func (v *Vector) EraseIf(pred Predicate) int {
	removed := 0
	for i := 0; i < v.size; {
		if pred(v.slot(i)) {
			// The next element has shifted into slot i; examine it before moving on.
			v.erase(i)
			removed++
			continue
		}
		i++
	}
	return removed
}

// ShrinkToFit reduces capacity to Len. On failure the vector is unchanged.
func (v *Vector) ShrinkToFit() error {
	if v.capacity == v.size {
		return nil
	}
	if err := v.realloc(v.size); err != nil {
		return fmt.Errorf("shrink to fit: %w", err)
	}
	return nil
}

// Clear removes all elements and releases the backing storage.
// The vector stays usable.
func (v *Vector) Clear() {
	v.release()
	v.size = 0
}

// Release frees the backing storage. It is equivalent to Clear and exists so
// owners can pair it with New in a defer.
func (v *Vector) Release() {
	v.Clear()
}

func (v *Vector) release() {
	if v.data != nil {
		v.alloc.Free(v.data)
	}
	v.data = nil
	v.capacity = 0
}

// realloc moves the vector into a buffer of exactly n slots, keeping the
// first min(n, size) elements.
func (v *Vector) realloc(n int) error {
	if n > MaxAllocBytes/v.elemSize {
		return fmt.Errorf("%d elements of %d bytes: %w", n, v.elemSize, ErrOutOfMemory)
	}
	if n == 0 {
		v.release()
		return nil
	}
	buf, err := v.alloc.Alloc(v.offset(n))
	if err != nil {
		return err
	}
	copy(buf, v.data[:v.offset(min(v.capacity, n))])
	v.release()
	v.data = buf
	v.capacity = n
	return nil
}

func (v *Vector) checkElem(elem []byte) error {
	if len(elem) != v.elemSize {
		return fmt.Errorf("got %d bytes, want %d: %w", len(elem), v.elemSize, ErrElementSize)
	}
	return nil
}

func (v *Vector) slot(i int) []byte {
	return v.data[v.offset(i):v.offset(i+1)]
}

func (v *Vector) offset(i int) int {
	return i * v.elemSize
}

func grow(capacity int) int {
	if capacity == 0 {
		return 1
	}
	return capacity * 2
}
