package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/715d/bytevec/pkg/element"
)

// Operation codes understood by scripts.
const (
	OpPushBack    byte = 'p'
	OpInsert      byte = 'i'
	OpErase       byte = 'e'
	OpEraseValue  byte = 'v'
	OpEraseIf     byte = 'd'
	OpResize      byte = 'r'
	OpClear       byte = 'c'
	OpShrinkToFit byte = 'f'
	OpSort        byte = 's'
)

// Op is one parsed script operation. Index, Size and Value are set only for
// the codes that take them.
type Op struct {
	Code  byte
	Index int
	Size  int
	Value []byte
}

// Script is a parsed harness script: an element kind selector followed by
// a list of operations.
type Script struct {
	// Selector is the numeric kind selector from the script header.
	Selector int

	// Kind is the selected element kind, nil if Selector names no kind.
	Kind *element.Kind

	Ops []Op
}

// Parse reads a script of the form "<selector> <count>" followed by count
// operations. Unknown operation codes are kept and reported when run.
func Parse(r io.Reader) (*Script, error) {
	s := NewScanner(r)

	selector, err := s.Int()
	if err != nil {
		return nil, fmt.Errorf("read kind selector: %w", err)
	}
	count, err := s.Int()
	if err != nil {
		return nil, fmt.Errorf("read operation count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("negative operation count %d", count)
	}

	script := &Script{Selector: selector}
	kind, err := element.BySelector(selector)
	if err != nil {
		slog.Debug("no element kind for selector", "selector", selector)
		return script, nil
	}
	script.Kind = kind

	script.Ops = make([]Op, 0, min(count, 1<<16))
	for i := 1; i <= count; i++ {
		op, err := parseOp(s, kind)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		script.Ops = append(script.Ops, op)
	}
	return script, nil
}

func parseOp(s *Scanner, kind *element.Kind) (Op, error) {
	code, err := s.Char()
	if err != nil {
		return Op{}, fmt.Errorf("read code: %w", noEOF(err))
	}
	op := Op{Code: code}

	switch code {
	case OpPushBack, OpEraseValue:
		op.Value, err = kind.Read(s)
	case OpInsert:
		if op.Index, err = s.Int(); err == nil {
			op.Value, err = kind.Read(s)
		}
	case OpErase:
		op.Index, err = s.Int()
	case OpResize:
		op.Size, err = s.Int()
	}
	if err != nil {
		return Op{}, fmt.Errorf("%c: %w", code, noEOF(err))
	}
	return op, nil
}

// noEOF turns a bare EOF into ErrUnexpectedEOF: a script that ends inside an
// operation is truncated.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
