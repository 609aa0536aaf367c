// Package harness runs command scripts against byte vectors and renders the
// resulting vector, mirroring how the vector is exercised interactively.
package harness

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/715d/bytevec/pkg/element"
	"github.com/715d/bytevec/pkg/vector"
)

// Options configures a script run.
type Options struct {
	// Allocator backs the vector. Nil uses the Go heap.
	Allocator vector.Allocator

	// CapacityHint is the initial capacity. Nil uses the kind's block hint.
	CapacityHint *int
}

// Result summarizes the vector after a run.
type Result struct {
	Kind     string `json:"kind"`
	Ops      int    `json:"ops"`
	Len      int    `json:"len"`
	Cap      int    `json:"cap"`
	Unknown  int    `json:"unknown_ops"`
	Selected bool   `json:"selected"`
}

// Run executes script and writes the vector's capacity followed by its
// elements to w. An operation that fails aborts the run.
func Run(ctx context.Context, script *Script, w io.Writer, opts Options) (*Result, error) {
	bw := bufio.NewWriter(w)
	res, err := run(ctx, script, bw, opts)
	if ferr := bw.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("write output: %w", ferr)
	}
	return res, err
}

func run(ctx context.Context, script *Script, w io.Writer, opts Options) (*Result, error) {
	res := &Result{}
	kind := script.Kind
	if kind == nil {
		_, err := fmt.Fprintf(w, "Nothing to do for %d\n", script.Selector)
		return res, err
	}
	res.Kind = kind.Name
	res.Selected = true

	hint := kind.BlockHint
	if opts.CapacityHint != nil {
		hint = *opts.CapacityHint
	}
	var vopts []vector.Option
	if opts.Allocator != nil {
		vopts = append(vopts, vector.WithAllocator(opts.Allocator))
	}
	v, err := vector.New(hint, kind.Size, vopts...)
	if err != nil {
		return res, err
	}
	defer v.Release()

	for i, op := range script.Ops {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		known, err := apply(v, kind, op)
		if err != nil {
			return res, fmt.Errorf("operation %d (%c): %w", i+1, op.Code, err)
		}
		if !known {
			res.Unknown++
			if _, err := fmt.Fprintf(w, "No such operation: %c\n", op.Code); err != nil {
				return res, err
			}
		}
		res.Ops++
		slog.Debug("applied operation", "n", i+1, "op", string(op.Code), "len", v.Len(), "cap", v.Cap())
	}

	res.Len, res.Cap = v.Len(), v.Cap()
	return res, render(w, v, kind)
}

func apply(v *vector.Vector, kind *element.Kind, op Op) (bool, error) {
	var err error
	switch op.Code {
	case OpPushBack:
		err = v.PushBack(op.Value)
	case OpInsert:
		err = v.Insert(op.Index, op.Value)
	case OpErase:
		err = v.Erase(op.Index)
	case OpEraseValue:
		_, err = v.EraseValue(op.Value, kind.Compare)
	case OpEraseIf:
		v.EraseIf(kind.Predicate)
	case OpResize:
		err = v.Resize(op.Size)
	case OpClear:
		v.Clear()
	case OpShrinkToFit:
		err = v.ShrinkToFit()
	case OpSort:
		v.Sort(kind.Compare)
	default:
		return false, nil
	}
	return true, err
}

func render(w io.Writer, v *vector.Vector, kind *element.Kind) error {
	if _, err := fmt.Fprintf(w, "%d\n", v.Cap()); err != nil {
		return err
	}
	var err error
	v.Each(func(_ int, elem []byte) bool {
		err = kind.Format(w, elem)
		return err == nil
	})
	return err
}
