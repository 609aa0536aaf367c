package vector

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32(n int32) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(n))
}

func readI32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func ints(t *testing.T, v *Vector) []int32 {
	t.Helper()
	out := []int32{}
	v.Each(func(_ int, elem []byte) bool {
		out = append(out, readI32(elem))
		return true
	})
	return out
}

func cmpI32(a, b []byte) int {
	return cmp.Compare(readI32(a), readI32(b))
}

func isEven(elem []byte) bool {
	return readI32(elem)%2 == 0
}

func newInts(t *testing.T, hint int, values ...int32) *Vector {
	t.Helper()
	v, err := New(hint, 4)
	require.NoError(t, err)
	for _, n := range values {
		require.NoError(t, v.PushBack(i32(n)))
	}
	return v
}

func TestVector_IntScenario(t *testing.T) {
	v := newInts(t, 4, 1, 2, 3, 4, 5)
	require.Equal(t, 5, v.Len())
	require.Equal(t, 8, v.Cap())

	require.NoError(t, v.Insert(2, i32(99)))
	require.Equal(t, []int32{1, 2, 99, 3, 4, 5}, ints(t, v))

	require.NoError(t, v.Erase(0))
	require.Equal(t, []int32{2, 99, 3, 4, 5}, ints(t, v))

	require.Equal(t, 2, v.EraseIf(isEven))
	require.Equal(t, []int32{99, 3, 5}, ints(t, v))

	v.Sort(cmpI32)
	require.Equal(t, []int32{3, 5, 99}, ints(t, v))

	require.NoError(t, v.ShrinkToFit())
	require.Equal(t, 3, v.Cap())
	require.Equal(t, []int32{3, 5, 99}, ints(t, v))
}

func TestVector_CharScenario(t *testing.T) {
	v, err := New(2, 1)
	require.NoError(t, err)
	for _, c := range []byte("abc") {
		require.NoError(t, v.PushBack([]byte{c}))
	}

	n, err := v.EraseValue([]byte{'b'}, func(a, b []byte) int { return int(a[0]) - int(b[0]) })
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []byte("ac"), v.Bytes())

	v.Clear()
	require.Equal(t, 0, v.Len())
	require.Equal(t, 0, v.Cap())

	require.NoError(t, v.PushBack([]byte{'z'}))
	require.Equal(t, 1, v.Len())
	require.Equal(t, 1, v.Cap())
	require.Equal(t, []byte("z"), v.Bytes())
}

func TestVector_New(t *testing.T) {
	tests := []struct {
		name     string
		hint     int
		elemSize int
		wantErr  error
	}{
		{name: "zero capacity", hint: 0, elemSize: 4},
		{name: "with capacity", hint: 16, elemSize: 8},
		{name: "zero element size", hint: 4, elemSize: 0, wantErr: ErrInvalidArgument},
		{name: "negative element size", hint: 4, elemSize: -1, wantErr: ErrInvalidArgument},
		{name: "negative capacity", hint: -1, elemSize: 4, wantErr: ErrInvalidArgument},
		{name: "huge capacity", hint: MaxAllocBytes, elemSize: 2, wantErr: ErrOutOfMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.hint, tt.elemSize)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, v)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, v.Len())
			assert.Equal(t, tt.hint, v.Cap())
			assert.Equal(t, tt.elemSize, v.ElemSize())
		})
	}
}

func TestVector_Reserve(t *testing.T) {
	v := newInts(t, 4, 7, 8)

	require.NoError(t, v.Reserve(2))
	require.Equal(t, 4, v.Cap(), "reserve must not shrink")

	require.NoError(t, v.Reserve(10))
	require.Equal(t, 10, v.Cap(), "reserve grows to exactly the request")
	require.Equal(t, []int32{7, 8}, ints(t, v))

	require.ErrorIs(t, v.Reserve(-1), ErrInvalidArgument)
}

func TestVector_ResizeDoubles(t *testing.T) {
	tests := []struct {
		name    string
		hint    int
		size    int
		wantCap int
	}{
		{name: "fits", hint: 4, size: 3, wantCap: 4},
		{name: "exact", hint: 4, size: 4, wantCap: 4},
		{name: "one doubling", hint: 4, size: 5, wantCap: 8},
		{name: "several doublings", hint: 2, size: 9, wantCap: 16},
		{name: "from empty", hint: 0, size: 5, wantCap: 8},
		{name: "from empty single", hint: 0, size: 1, wantCap: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.hint, 1)
			require.NoError(t, err)
			require.NoError(t, v.Resize(tt.size))
			require.Equal(t, tt.size, v.Len())
			require.Equal(t, tt.wantCap, v.Cap())
		})
	}
}

func TestVector_ResizeZeroFill(t *testing.T) {
	v := newInts(t, 4, 1, 2, 3, 4, 5, 6)

	require.NoError(t, v.Resize(2))
	require.Equal(t, 8, v.Cap(), "shrinking keeps capacity")

	require.NoError(t, v.Resize(7))
	require.Equal(t, []int32{1, 2, 0, 0, 0, 0, 0}, ints(t, v))

	// Every byte past Len is zero after a resize.
	require.NoError(t, v.Resize(3))
	tail := v.data[v.offset(v.Len()):]
	require.Equal(t, make([]byte, len(tail)), tail)
}

func TestVector_Insert(t *testing.T) {
	tests := []struct {
		name  string
		start []int32
		index int
		want  []int32
	}{
		{name: "into empty", start: nil, index: 0, want: []int32{42}},
		{name: "front", start: []int32{1, 2, 3}, index: 0, want: []int32{42, 1, 2, 3}},
		{name: "middle", start: []int32{1, 2, 3}, index: 1, want: []int32{1, 42, 2, 3}},
		{name: "last", start: []int32{1, 2, 3}, index: 2, want: []int32{1, 2, 42, 3}},
		{name: "end", start: []int32{1, 2, 3}, index: 3, want: []int32{1, 2, 3, 42}},
		{name: "end with growth", start: []int32{1, 2}, index: 2, want: []int32{1, 2, 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newInts(t, 2, tt.start...)
			require.NoError(t, v.Insert(tt.index, i32(42)))
			require.Equal(t, tt.want, ints(t, v))
			require.GreaterOrEqual(t, v.Cap(), v.Len())
		})
	}
}

func TestVector_Erase(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []int32
	}{
		{name: "front", index: 0, want: []int32{2, 3}},
		{name: "middle", index: 1, want: []int32{1, 3}},
		{name: "last", index: 2, want: []int32{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newInts(t, 4, 1, 2, 3)
			require.NoError(t, v.Erase(tt.index))
			require.Equal(t, tt.want, ints(t, v))
			require.Equal(t, 4, v.Cap(), "erase keeps capacity")
		})
	}
}

func TestVector_IndexErrors(t *testing.T) {
	v := newInts(t, 4, 1, 2)

	tests := []struct {
		name string
		call func() error
		op   string
	}{
		{name: "insert past end", call: func() error { return v.Insert(3, i32(0)) }, op: "insert"},
		{name: "insert negative", call: func() error { return v.Insert(-1, i32(0)) }, op: "insert"},
		{name: "erase at len", call: func() error { return v.Erase(2) }, op: "erase"},
		{name: "erase negative", call: func() error { return v.Erase(-1) }, op: "erase"},
		{name: "set at len", call: func() error { return v.Set(2, i32(0)) }, op: "set"},
		{name: "at at len", call: func() error { _, err := v.At(2); return err }, op: "at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, ErrIndexOutOfRange)
			var idxErr *IndexError
			require.True(t, errors.As(err, &idxErr))
			require.Equal(t, tt.op, idxErr.Op)
			require.Equal(t, 2, idxErr.Len)
			require.Equal(t, []int32{1, 2}, ints(t, v), "failed call must not modify the vector")
		})
	}

	t.Run("erase on empty", func(t *testing.T) {
		empty := newInts(t, 0)
		require.ErrorIs(t, empty.Erase(0), ErrIndexOutOfRange)
	})
}

func TestVector_ElementSize(t *testing.T) {
	v := newInts(t, 4, 1)

	require.ErrorIs(t, v.PushBack([]byte{1, 2}), ErrElementSize)
	require.ErrorIs(t, v.Insert(0, []byte{1, 2, 3, 4, 5}), ErrElementSize)
	require.ErrorIs(t, v.Set(0, nil), ErrElementSize)
	_, err := v.EraseValue([]byte{1}, cmpI32)
	require.ErrorIs(t, err, ErrElementSize)
	require.Equal(t, []int32{1}, ints(t, v))
}

func TestVector_AtAndSet(t *testing.T) {
	v := newInts(t, 4, 10, 20, 30)

	elem, err := v.At(1)
	require.NoError(t, err)
	require.Equal(t, int32(20), readI32(elem))

	require.NoError(t, v.Set(1, i32(25)))
	require.Equal(t, []int32{10, 25, 30}, ints(t, v))

	var visited []int
	v.Each(func(i int, _ []byte) bool {
		visited = append(visited, i)
		return i < 1
	})
	require.Equal(t, []int{0, 1}, visited)
}

func TestVector_EraseValue(t *testing.T) {
	tests := []struct {
		name    string
		start   []int32
		value   int32
		want    []int32
		removed int
	}{
		{name: "none", start: []int32{1, 2, 3}, value: 9, want: []int32{1, 2, 3}},
		{name: "single", start: []int32{1, 2, 3}, value: 2, want: []int32{1, 3}, removed: 1},
		{name: "adjacent run", start: []int32{2, 2, 2, 1, 2}, value: 2, want: []int32{1}, removed: 4},
		{name: "all", start: []int32{5, 5, 5}, value: 5, want: []int32{}, removed: 3},
		{name: "last", start: []int32{1, 3, 4}, value: 4, want: []int32{1, 3}, removed: 1},
		{name: "empty", start: nil, value: 1, want: []int32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newInts(t, 4, tt.start...)
			n, err := v.EraseValue(i32(tt.value), cmpI32)
			require.NoError(t, err)
			require.Equal(t, tt.removed, n)
			require.Equal(t, tt.want, ints(t, v))
		})
	}
}

func TestVector_EraseIfAdjacentMatches(t *testing.T) {
	v := newInts(t, 4, 2, 4, 1, 6, 8, 3, 10)
	require.Equal(t, 5, v.EraseIf(isEven))
	require.Equal(t, []int32{1, 3}, ints(t, v))
}

func TestVector_ShrinkToFit(t *testing.T) {
	v := newInts(t, 16, 1, 2, 3)
	require.NoError(t, v.ShrinkToFit())
	require.Equal(t, 3, v.Cap())
	require.Equal(t, []int32{1, 2, 3}, ints(t, v))

	v.Clear()
	require.NoError(t, v.ShrinkToFit())
	require.Equal(t, 0, v.Cap())

	w := newInts(t, 8)
	require.NoError(t, w.ShrinkToFit())
	require.Equal(t, 0, w.Cap())
	require.NoError(t, w.PushBack(i32(1)))
	require.Equal(t, 1, w.Cap())
}

func TestVector_Sort(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	values := make([]int32, 200)
	for i := range values {
		values[i] = int32(r.IntN(50)) - 25
	}
	v := newInts(t, 4, values...)
	v.Sort(cmpI32)

	got := ints(t, v)
	require.Len(t, got, len(values))
	for i := 1; i < len(got); i++ {
		require.LessOrEqual(t, got[i-1], got[i])
	}

	single := newInts(t, 1, 7)
	single.Sort(cmpI32)
	require.Equal(t, []int32{7}, ints(t, single))
}

func TestVector_InsertEraseInverse(t *testing.T) {
	start := []int32{4, 8, 15, 16, 23, 42}
	for i := 0; i <= len(start); i++ {
		v := newInts(t, 2, start...)
		require.NoError(t, v.Insert(i, i32(-1)))
		require.NoError(t, v.Erase(i))
		require.Equal(t, start, ints(t, v), "index %d", i)
	}
}

// TestVector_RandomOperations checks the vector against a slice model after
// every operation.
func TestVector_RandomOperations(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	v := newInts(t, 1)
	model := []int32{}

	keep := func(match func(int32) bool) {
		kept := model[:0]
		for _, m := range model {
			if !match(m) {
				kept = append(kept, m)
			}
		}
		model = kept
	}

	for step := 0; step < 5000; step++ {
		var name string
		switch op := r.IntN(11); {
		case op < 4:
			name = "push back"
			n := int32(r.IntN(100))
			require.NoError(t, v.PushBack(i32(n)))
			model = append(model, n)
		case op < 6:
			name = "insert"
			i := r.IntN(len(model) + 1)
			n := int32(r.IntN(100))
			require.NoError(t, v.Insert(i, i32(n)))
			model = append(model[:i], append([]int32{n}, model[i:]...)...)
		case op < 8:
			name = "erase"
			if len(model) == 0 {
				continue
			}
			i := r.IntN(len(model))
			require.NoError(t, v.Erase(i))
			model = append(model[:i], model[i+1:]...)
		case op == 8:
			name = "erase value"
			n := int32(r.IntN(100))
			_, err := v.EraseValue(i32(n), cmpI32)
			require.NoError(t, err)
			keep(func(m int32) bool { return m == n })
		case op == 9:
			name = "erase if"
			d := int32(r.IntN(5) + 3)
			removed := v.EraseIf(func(elem []byte) bool { return readI32(elem)%d == 0 })
			before := len(model)
			keep(func(m int32) bool { return m%d == 0 })
			require.Equal(t, before-len(model), removed, "step %d: %s", step, name)
		default:
			name = "shrink to fit"
			require.NoError(t, v.ShrinkToFit())
			require.Equal(t, v.Len(), v.Cap())
		}

		require.Equal(t, model, ints(t, v), "step %d: %s", step, name)
		require.GreaterOrEqual(t, v.Cap(), v.Len(), "step %d: %s", step, name)
	}
}

func TestVector_ResizeBeyondAllocCap(t *testing.T) {
	tests := []struct {
		name     string
		elemSize int
	}{
		{name: "bytes", elemSize: 1},
		{name: "ints", elemSize: 4},
		{name: "records", elemSize: 132},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(2, tt.elemSize)
			require.NoError(t, err)

			require.ErrorIs(t, v.Resize(MaxAllocBytes/tt.elemSize+1), ErrOutOfMemory)
			require.ErrorIs(t, v.Reserve(MaxAllocBytes/tt.elemSize+1), ErrOutOfMemory)
			require.Equal(t, 0, v.Len())
			require.Equal(t, 2, v.Cap())
		})
	}
}

func TestVector_Bytes(t *testing.T) {
	v := newInts(t, 4, 1, 2)
	require.True(t, bytes.Equal(append(i32(1), i32(2)...), v.Bytes()))

	empty := newInts(t, 0)
	require.Empty(t, empty.Bytes())
}
