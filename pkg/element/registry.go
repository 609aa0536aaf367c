package element

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

// ErrUnknownKind is returned when a lookup finds no registered kind.
var ErrUnknownKind = errors.New("unknown element kind")

var (
	byName     = xsync.NewMap[string, *Kind]()
	bySelector = xsync.NewMap[int, *Kind]()
)

func init() {
	for _, k := range []*Kind{Int, Char, PersonKind} {
		if err := Register(k); err != nil {
			panic(err)
		}
	}
}

// Register adds k to the registry. Names and selectors must be unique.
func Register(k *Kind) error {
	if err := validate(k); err != nil {
		return err
	}
	if _, loaded := byName.LoadOrStore(k.Name, k); loaded {
		return fmt.Errorf("register %q: name already registered", k.Name)
	}
	if _, loaded := bySelector.LoadOrStore(k.Selector, k); loaded {
		byName.Delete(k.Name)
		return fmt.Errorf("register %q: selector %d already registered", k.Name, k.Selector)
	}
	return nil
}

func validate(k *Kind) error {
	switch {
	case k == nil:
		return fmt.Errorf("register: nil kind")
	case k.Name == "":
		return fmt.Errorf("register: empty name")
	case k.Size <= 0:
		return fmt.Errorf("register %q: invalid size %d", k.Name, k.Size)
	case k.Read == nil || k.Format == nil || k.Compare == nil || k.Predicate == nil:
		return fmt.Errorf("register %q: missing plug-in", k.Name)
	}
	return nil
}

// Lookup returns the kind registered under name.
func Lookup(name string) (*Kind, error) {
	if k, ok := byName.Load(name); ok {
		return k, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownKind)
}

// BySelector returns the kind registered under a numeric selector.
func BySelector(selector int) (*Kind, error) {
	if k, ok := bySelector.Load(selector); ok {
		return k, nil
	}
	return nil, fmt.Errorf("selector %d: %w", selector, ErrUnknownKind)
}

// Kinds returns all registered kinds ordered by selector.
func Kinds() []*Kind {
	var kinds []*Kind
	bySelector.Range(func(_ int, k *Kind) bool {
		kinds = append(kinds, k)
		return true
	})
	slices.SortFunc(kinds, func(a, b *Kind) int {
		return cmp.Compare(a.Selector, b.Selector)
	})
	return kinds
}
