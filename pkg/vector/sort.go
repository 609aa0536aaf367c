package vector

import "sort"

// Sort orders the elements in non-decreasing order under cmp. The sort is not stable.
func (v *Vector) Sort(cmp Comparator) {
	if v.size < 2 {
		return
	}
	sort.Sort(&blockSorter{v: v, cmp: cmp, tmp: make([]byte, v.elemSize)})
}

// blockSorter adapts the raw element blocks of a Vector to sort.Interface.
type blockSorter struct {
	v   *Vector
	cmp Comparator
	tmp []byte
}

func (s *blockSorter) Len() int { return s.v.size }

func (s *blockSorter) Less(i, j int) bool {
	return s.cmp(s.v.slot(i), s.v.slot(j)) < 0
}

func (s *blockSorter) Swap(i, j int) {
	a, b := s.v.slot(i), s.v.slot(j)
	copy(s.tmp, a)
	copy(a, b)
	copy(b, s.tmp)
}
