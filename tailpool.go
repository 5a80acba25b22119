package dat

import "github.com/rs/zerolog"

// TailEntry holds the unique suffix of a single-descendant path
// together with the full external key and opaque value stored there.
type TailEntry struct {
	suffix []byte
	key    []byte
	val    interface{}

	// nextFree is tailNoFree while the slot is in use, the index of
	// the next free block while free, and tailListEnd for the last
	// free block in the chain.
	nextFree int
}

// Suffix, Key and Val expose the entry's fields for read-only use by
// the iterator and diagnostics.
func (e *TailEntry) Suffix() []byte     { return e.suffix }
func (e *TailEntry) Key() []byte        { return e.key }
func (e *TailEntry) Val() interface{}   { return e.val }
func (e *TailEntry) inUse() bool        { return e.nextFree == tailNoFree }

// tailPool is the slab of TailEntry values with its own free list.
type tailPool struct {
	entries   []TailEntry
	firstFree int // tailNoFree (-1) means "no free block"
	used      int

	canResize  func() bool
	keyDestroy func([]byte)
	valDestroy func(interface{})
	logger     *zerolog.Logger
}

func newTailPool(canResize func() bool, keyDestroy func([]byte), valDestroy func(interface{}), logger *zerolog.Logger) *tailPool {
	return &tailPool{
		firstFree:  tailNoFree,
		canResize:  canResize,
		keyDestroy: keyDestroy,
		valDestroy: valDestroy,
		logger:     logger,
	}
}

func (p *tailPool) addrOf(block int) int  { return block + TailStartBlockNo }
func (p *tailPool) blockOf(addr int) int  { return addr - TailStartBlockNo }

func (p *tailPool) validBlock(block int) bool {
	return block >= 0 && block < len(p.entries)
}

// grow doubles the pool (or allocates an initial slab of 4), chaining
// the new upper half into the free list in ascending order.
func (p *tailPool) grow() error {
	if len(p.entries) > 0 && p.canResize != nil && !p.canResize() {
		return ErrResizeDisabled
	}
	oldLen := len(p.entries)
	newLen := minArraySize
	if oldLen > 0 {
		newLen = nextPow2(oldLen + 1)
	}
	grown := make([]TailEntry, newLen)
	copy(grown, p.entries)
	for i := oldLen; i < newLen; i++ {
		if i == newLen-1 {
			grown[i].nextFree = tailListEnd
		} else {
			grown[i].nextFree = i + 1
		}
	}
	p.entries = grown
	p.firstFree = oldLen
	if p.logger != nil {
		p.logger.Debug().Int("old_size", oldLen).Int("new_size", newLen).Msg("tail pool resize")
	}
	return nil
}

// alloc pops a block from the free list (growing the pool first if
// necessary) and returns its address.
func (p *tailPool) alloc() (int, error) {
	if p.firstFree == tailNoFree {
		if err := p.grow(); err != nil {
			return 0, err
		}
	}
	block := p.firstFree
	entry := &p.entries[block]
	if entry.nextFree == tailListEnd {
		p.firstFree = tailNoFree
	} else {
		p.firstFree = entry.nextFree
	}
	entry.nextFree = tailNoFree
	entry.suffix = nil
	entry.key = nil
	entry.val = nil
	p.used++
	return p.addrOf(block), nil
}

// free releases block back to the pool, running caller destructors on
// key and val and freeing the suffix bytes, then reinserts it into the
// free list ordered by ascending block index.
func (p *tailPool) free(addr int) error {
	block := p.blockOf(addr)
	if !p.validBlock(block) || p.entries[block].nextFree != tailNoFree {
		return ErrInvalidEntry
	}
	entry := &p.entries[block]
	if p.keyDestroy != nil {
		p.keyDestroy(entry.key)
	}
	if p.valDestroy != nil {
		p.valDestroy(entry.val)
	}
	entry.suffix = nil
	entry.key = nil
	entry.val = nil

	if p.firstFree == tailNoFree || block < p.firstFree {
		if p.firstFree == tailNoFree {
			entry.nextFree = tailListEnd
		} else {
			entry.nextFree = p.firstFree
		}
		p.firstFree = block
	} else {
		prev := p.firstFree
		for p.entries[prev].nextFree != tailListEnd && p.entries[prev].nextFree < block {
			prev = p.entries[prev].nextFree
		}
		if p.entries[prev].nextFree == tailListEnd {
			entry.nextFree = tailListEnd
		} else {
			entry.nextFree = p.entries[prev].nextFree
		}
		p.entries[prev].nextFree = block
	}
	p.used--
	return nil
}

// get returns a pointer to the in-use entry at addr, or nil if addr
// does not name a live slot.
func (p *tailPool) get(addr int) *TailEntry {
	block := p.blockOf(addr)
	if !p.validBlock(block) || p.entries[block].nextFree != tailNoFree {
		return nil
	}
	return &p.entries[block]
}

// setSuffix duplicates bytes (tolerating the incoming slice aliasing
// the stored one) and installs it, freeing the old suffix first. A
// nil/empty bytes installs a null suffix.
func (p *tailPool) setSuffix(addr int, bytes []byte) {
	entry := p.get(addr)
	if entry == nil {
		return
	}
	if len(bytes) == 0 {
		entry.suffix = nil
		return
	}
	dup := make([]byte, len(bytes))
	copy(dup, bytes)
	entry.suffix = dup
}

// walkTail advances suffixIdx against the stored suffix of the given
// tail entry: if suffix[suffixIdx] == c, it advances suffixIdx (unless
// c is TermSymbol, in which case the index is left in place so that
// further calls at the terminator remain idempotent), and returns ok.
func (p *tailPool) walkTail(addr int, suffixIdx *int, c int) bool {
	entry := p.get(addr)
	if entry == nil {
		return false
	}
	if *suffixIdx < 0 || *suffixIdx >= len(entry.suffix) {
		return false
	}
	if int(entry.suffix[*suffixIdx]) != c {
		return false
	}
	if c != TermSymbol {
		*suffixIdx++
	}
	return true
}

// emptyAll destroys every in-use entry, invoking progress every 2^16
// slots visited, then discards the slab.
func (p *tailPool) emptyAll(progress func()) {
	for i := range p.entries {
		if p.entries[i].nextFree == tailNoFree {
			if p.keyDestroy != nil {
				p.keyDestroy(p.entries[i].key)
			}
			if p.valDestroy != nil {
				p.valDestroy(p.entries[i].val)
			}
		}
		if progress != nil && i != 0 && i%(1<<16) == 0 {
			progress()
		}
	}
	p.entries = nil
	p.firstFree = tailNoFree
	p.used = 0
}
