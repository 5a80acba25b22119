package dat

import "golang.org/x/exp/slices"

// Symbols is a sorted, ascending set of unique byte labels, capacity
// 256. It is used while relocating a subtree (reindex) to enumerate a
// state's existing children and the new label being inserted, and
// while enumerating a subtree's children in ascending order.
type Symbols struct {
	data []byte
}

// NewSymbols returns an empty Symbols set.
func NewSymbols() *Symbols {
	return &Symbols{data: make([]byte, 0, 8)}
}

// Add inserts c in sorted position, no-op if already present.
func (s *Symbols) Add(c byte) {
	i, found := slices.BinarySearch(s.data, c)
	if found {
		return
	}
	s.data = slices.Insert(s.data, i, c)
}

// AppendUnchecked appends c without searching; the caller must
// guarantee c is strictly greater than every symbol already present.
func (s *Symbols) AppendUnchecked(c byte) {
	s.data = append(s.data, c)
}

// Num returns the number of distinct symbols held.
func (s *Symbols) Num() int {
	return len(s.data)
}

// Get returns the i-th symbol in ascending order.
func (s *Symbols) Get(i int) byte {
	return s.data[i]
}

// Slice returns the underlying sorted bytes. Callers must not mutate
// the returned slice.
func (s *Symbols) Slice() []byte {
	return s.data
}
