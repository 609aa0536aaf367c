package vector

import (
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// MaxAllocBytes caps a single buffer handed out by HeapAllocator. It is
// bounded by the platform word size so it always fits an int.
const MaxAllocBytes = min(1<<40, math.MaxInt>>1)

// Allocator provides zeroed backing buffers. Alloc must return a slice of
// exactly n bytes; Free is called once per buffer returned by Alloc.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(buf []byte)
}

// HeapAllocator allocates from the Go heap. Free is a no-op.
type HeapAllocator struct{}

func (HeapAllocator) Alloc(n int) ([]byte, error) {
	if n < 0 || n > MaxAllocBytes {
		return nil, fmt.Errorf("alloc %d bytes: %w", n, ErrOutOfMemory)
	}
	if n == 0 {
		return nil, nil
	}
	return make([]byte, n), nil
}

func (HeapAllocator) Free([]byte) {}

// Budget is an Allocator that refuses to hand out more than a fixed number of
// bytes at once. Acquisition never blocks: an allocation that would exceed the
// limit fails immediately with ErrOutOfMemory.
//
// A Budget may be shared by several vectors, including from different goroutines.
type Budget struct {
	limit int64
	sem   *semaphore.Weighted
	used  atomic.Int64
}

// NewBudget creates a Budget holding at most limit bytes.
func NewBudget(limit int64) *Budget {
	return &Budget{
		limit: limit,
		sem:   semaphore.NewWeighted(limit),
	}
}

func (b *Budget) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("alloc %d bytes: %w", n, ErrOutOfMemory)
	}
	if n == 0 {
		return nil, nil
	}
	if !b.sem.TryAcquire(int64(n)) {
		return nil, fmt.Errorf("alloc %d bytes (used %d of %d): %w", n, b.used.Load(), b.limit, ErrOutOfMemory)
	}
	b.used.Add(int64(n))
	return make([]byte, n), nil
}

func (b *Budget) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	b.sem.Release(int64(len(buf)))
	b.used.Add(-int64(len(buf)))
}

// Used returns the number of bytes currently handed out.
func (b *Budget) Used() int64 {
	return b.used.Load()
}

// Limit returns the configured byte limit.
func (b *Budget) Limit() int64 {
	return b.limit
}
