package dat

import "github.com/rs/zerolog"

// doubleArray holds the two parallel signed-integer arrays that
// together encode the trie, threaded with a doubly-linked circular
// free list anchored at freeSentinel. It never models states as heap
// nodes; all "pointers" are signed integer indices into base/check.
type doubleArray struct {
	base  []int
	check []int

	initialSize int
	canResize   func() bool
	logger      *zerolog.Logger
}

func newDoubleArray(initialSize int, canResize func() bool, logger *zerolog.Logger) *doubleArray {
	if initialSize < minArraySize {
		initialSize = minArraySize
	}
	return &doubleArray{initialSize: initialSize, canResize: canResize, logger: logger}
}

// initialized reports whether the lazy setup (first insert) has run.
func (d *doubleArray) initialized() bool {
	return len(d.base) > 0
}

// ensureInit performs the lazy allocation: base/check stay nil until
// the first insert needs them.
func (d *doubleArray) ensureInit() error {
	if d.initialized() {
		return nil
	}
	if err := d.expand(d.initialSize); err != nil {
		return err
	}
	d.base[headerSlot] = Signature
	// freeSentinel and rootState are carved out of the initial free
	// segment expand() would otherwise have chained in; fix them up.
	d.unlinkReserved(freeSentinel)
	d.unlinkReserved(rootState)
	d.base[freeSentinel] = 0
	d.check[freeSentinel] = 0
	d.setPrevFree(freeSentinel, freeSentinel)
	d.setNextFree(freeSentinel, freeSentinel)
	d.base[rootState] = 0
	d.check[rootState] = 0
	// Splice every remaining initial cell (index 3 onward) into the
	// otherwise-empty free list.
	for i := rootState + 1; i < len(d.base); i++ {
		d.freeCell(i)
	}
	return nil
}

// unlinkReserved clears a reserved slot's base and check; the first
// expand() chains no cells, so there is no list link to undo. Used
// only during ensureInit before the list has any real members.
func (d *doubleArray) unlinkReserved(s int) {
	d.base[s] = 0
	d.check[s] = 0
}

func (d *doubleArray) length() int {
	return len(d.base)
}

// getBase and getCheck are the bounds-checked accessors; out-of-range
// returns TrieIndexError.
func (d *doubleArray) getBase(s int) int {
	if s < 0 || s >= len(d.base) {
		return TrieIndexError
	}
	return d.base[s]
}

func (d *doubleArray) getCheck(s int) int {
	if s < 0 || s >= len(d.check) {
		return TrieIndexError
	}
	return d.check[s]
}

func (d *doubleArray) setBase(s, v int) {
	d.base[s] = v
}

// walk attempts the transition out of s labelled c, returning the new
// state on success.
func (d *doubleArray) walk(s, c int) (int, error) {
	base := d.getBase(s)
	if base <= 0 {
		return 0, ErrNotFound
	}
	next := base + c
	if next < 0 || next >= len(d.check) || d.check[next] != s {
		return 0, ErrNotFound
	}
	return next, nil
}

// --- free list bookkeeping -------------------------------------------------
//
// For a free cell s, -check[s] is the next free cell and -base[s] is
// the previous one; the list is circular and anchored at freeSentinel.

func (d *doubleArray) nextFree(s int) int { return -d.check[s] }
func (d *doubleArray) prevFree(s int) int { return -d.base[s] }
func (d *doubleArray) setNextFree(s, n int) {
	d.check[s] = -n
}
func (d *doubleArray) setPrevFree(s, p int) {
	d.base[s] = -p
}

// freeCell inserts s into the free list, ordered by ascending index, so
// that the next allocation out of any given state prefers the smallest
// fitting offset — deliberately observable, not an implementation
// accident.
func (d *doubleArray) freeCell(s int) {
	prev := freeSentinel
	cur := d.nextFree(freeSentinel)
	for cur != freeSentinel && cur < s {
		prev = cur
		cur = d.nextFree(prev)
	}
	d.setNextFree(prev, s)
	d.setPrevFree(s, prev)
	d.setNextFree(s, cur)
	d.setPrevFree(cur, s)
}

// assignCell unlinks s from the free list (s must currently be free).
func (d *doubleArray) assignCell(s int) {
	p := d.prevFree(s)
	n := d.nextFree(s)
	d.setNextFree(p, n)
	d.setPrevFree(n, p)
}

func (d *doubleArray) isFree(s int) bool {
	if s < 0 || s >= len(d.base) {
		return false
	}
	if s == headerSlot || s == freeSentinel || s == rootState {
		return false
	}
	return d.base[s] <= 0 && d.check[s] <= 0
}

// nextPow2 returns the smallest power of two >= n, at least
// minArraySize.
func nextPow2(n int) int {
	size := minArraySize
	for size < n {
		size <<= 1
	}
	return size
}

// expand grows the arrays to next_power_of_two(size); a call with
// size <= current length is a no-op. size >= TrieIndexHalfMax pins to
// TrieIndexMax so the index space never overflows int32-sized wire
// formats even as it approaches the state-index ceiling.
func (d *doubleArray) expand(size int) error {
	if size <= len(d.base) {
		return nil
	}
	if size >= TrieIndexHalfMax {
		size = TrieIndexMax
	}
	newSize := nextPow2(size)
	if d.initialized() && d.canResize != nil && !d.canResize() {
		return ErrResizeDisabled
	}
	oldLen := len(d.base)
	newBase := make([]int, newSize)
	newCheck := make([]int, newSize)
	copy(newBase, d.base)
	copy(newCheck, d.check)
	d.base = newBase
	d.check = newCheck

	if oldLen == 0 {
		// First allocation: slot 3..newSize-1 are plain free cells;
		// ensureInit finishes wiring the reserved slots and splices
		// them into the list afterwards.
		d.check[headerSlot] = newSize
		return nil
	}

	// Splice the newly added cells, in ascending order, immediately
	// before the sentinel (i.e. at the tail of the existing list).
	tail := d.prevFree(freeSentinel)
	prev := tail
	for i := oldLen; i < newSize; i++ {
		d.setNextFree(prev, i)
		d.setPrevFree(i, prev)
		prev = i
	}
	d.setNextFree(prev, freeSentinel)
	d.setPrevFree(freeSentinel, prev)
	d.check[headerSlot] = newSize
	if d.logger != nil {
		d.logger.Debug().Int("old_size", oldLen).Int("new_size", newSize).Msg("resize")
	}
	return nil
}

// prepareSpace expands the arrays if needed to make cell i
// addressable, then reports whether it is currently free.
func (d *doubleArray) prepareSpace(i int) (bool, error) {
	if i > TrieIndexMax {
		return false, ErrAllocFailed
	}
	if i >= len(d.base) {
		if err := d.expand(i + 1); err != nil {
			return false, err
		}
	}
	return d.isFree(i), nil
}

// fitSymbols reports whether every symbol in symbols can be placed at
// the given base offset without overflow and with every target cell
// currently free.
func (d *doubleArray) fitSymbols(base int, symbols []byte) (bool, error) {
	for _, c := range symbols {
		if base > TrieIndexMax-int(c) {
			return false, nil
		}
		free, err := d.prepareSpace(base + int(c))
		if err != nil {
			return false, err
		}
		if !free {
			return false, nil
		}
	}
	return true, nil
}

// findFreeBase returns the smallest base offset admitting every symbol
// in symbols as a free cell, expanding the arrays as needed when the
// free list is exhausted mid-search.
func (d *doubleArray) findFreeBase(symbols []byte) (int, error) {
	if len(symbols) == 0 {
		return 0, ErrAllocFailed
	}
	first := int(symbols[0])
	candidate := d.nextFree(freeSentinel)
	for {
		if candidate == freeSentinel {
			// Free list exhausted: grow and resume from the new tail.
			if err := d.expand(len(d.base) + 1); err != nil {
				return 0, err
			}
			candidate = d.nextFree(freeSentinel)
			if candidate == freeSentinel {
				return 0, ErrAllocFailed
			}
			continue
		}
		if candidate < first+3 {
			candidate = d.nextFree(candidate)
			continue
		}
		base := candidate - first
		ok, err := d.fitSymbols(base, symbols)
		if err != nil {
			return 0, err
		}
		if ok {
			return base, nil
		}
		candidate = d.nextFree(candidate)
	}
}

// fillSymbols scans the occupied-branch range of s and returns its
// existing child labels in ascending order.
func (d *doubleArray) fillSymbols(s int) *Symbols {
	syms := NewSymbols()
	base := d.getBase(s)
	if base <= 0 {
		return syms
	}
	limit := 256
	if base+limit > len(d.check) {
		limit = len(d.check) - base
	}
	for c := 0; c < limit; c++ {
		if d.check[base+c] == s {
			syms.AppendUnchecked(byte(c))
		}
	}
	return syms
}

// hasChildren scans [base[s], base[s]+min(255,dasize-base[s])) for any
// check entry equal to s.
func (d *doubleArray) hasChildren(s int) bool {
	base := d.getBase(s)
	if base <= 0 {
		return false
	}
	limit := 255
	if base+limit > len(d.check) {
		limit = len(d.check) - base
	}
	for c := 0; c < limit; c++ {
		if d.check[base+c] == s {
			return true
		}
	}
	return false
}

// prune walks up from s towards parent, freeing childless states,
// until a branching ancestor (or parent itself) is reached.
func (d *doubleArray) prune(parent, s int) {
	for s != parent && !d.hasChildren(s) {
		next := d.getCheck(s)
		d.base[s] = TrieIndexError
		d.check[s] = TrieIndexError
		d.freeCell(s)
		s = next
	}
}

// reindex relocates every child of s to newBase, rewriting grandchild
// back-pointers, then frees the old cells and updates base[s]. It is
// the only operation that moves nodes.
func (d *doubleArray) reindex(s, newBase int) error {
	syms := d.fillSymbols(s)
	oldBase := d.base[s]
	type move struct{ oldNext, newNext int }
	moves := make([]move, 0, syms.Num())
	for i := 0; i < syms.Num(); i++ {
		c := int(syms.Get(i))
		newNext := newBase + c
		if _, err := d.prepareSpace(newNext); err != nil {
			return err
		}
		moves = append(moves, move{oldNext: oldBase + c, newNext: newNext})
	}
	for _, m := range moves {
		if d.isFree(m.newNext) {
			d.assignCell(m.newNext)
		}
		d.base[m.newNext] = d.base[m.oldNext]
		d.check[m.newNext] = s
		if d.base[m.oldNext] > 0 {
			grandBase := d.base[m.oldNext]
			limit := 256
			if grandBase+limit > len(d.check) {
				limit = len(d.check) - grandBase
			}
			for c := 0; c < limit; c++ {
				if d.check[grandBase+c] == m.oldNext {
					d.check[grandBase+c] = m.newNext
				}
			}
		}
		d.base[m.oldNext] = TrieIndexError
		d.check[m.oldNext] = TrieIndexError
		d.freeCell(m.oldNext)
	}
	d.base[s] = newBase
	if d.logger != nil {
		d.logger.Debug().Int("state", s).Int("old_base", oldBase).Int("new_base", newBase).Int("children", syms.Num()).Msg("reindex")
	}
	return nil
}

// insertEdge ensures an edge labelled c exists out of s, allocating a
// cell and relocating the subtree rooted at s if the natural offset
// collides with an unrelated parent's child.
func (d *doubleArray) insertEdge(s, c int) (int, error) {
	base := d.getBase(s)
	if base > 0 {
		next := base + c
		free, err := d.prepareSpace(next)
		if err != nil {
			return 0, err
		}
		if !free {
			syms := d.fillSymbols(s)
			syms.Add(byte(c))
			newBase, err := d.findFreeBase(syms.Slice())
			if err != nil {
				return 0, err
			}
			if err := d.reindex(s, newBase); err != nil {
				return 0, err
			}
			next = newBase + c
		}
		if d.isFree(next) {
			d.assignCell(next)
		}
		d.check[next] = s
		d.base[next] = TrieIndexError
		return next, nil
	}
	newBase, err := d.findFreeBase([]byte{byte(c)})
	if err != nil {
		return 0, err
	}
	d.base[s] = newBase
	next := newBase + c
	if d.isFree(next) {
		d.assignCell(next)
	}
	d.check[next] = s
	d.base[next] = TrieIndexError
	return next, nil
}
