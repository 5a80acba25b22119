package dat

import "github.com/pkg/errors"

// TrieIterator depth-first enumerates the subtree rooted at a prefix
// match. The full set of tail addresses is collected up front at
// construction time rather than lazily walking live base[] pointers,
// so a relocation triggered by a later insert cannot corrupt an
// in-progress enumeration; a mutation during iteration is instead
// caught by comparing a sampled mutation counter ("fingerprint")
// against the trie's live one.
type TrieIterator struct {
	t           *Trie
	tailAddrs   []int
	pos         int
	fingerprint uint64
}

// PrefixSearch walks prefix (raw external bytes, no wildcard) as far
// as the DAT allows and returns an iterator over every key stored
// under it, in ascending byte-lexicographic order of the encoded form.
func (t *Trie) PrefixSearch(prefix []byte) (*TrieIterator, error) {
	it := &TrieIterator{t: t, fingerprint: t.mutation}
	if t.da == nil {
		return it, nil
	}
	full, err := t.alphabet.Encode(prefix)
	if err != nil {
		return nil, errors.Wrap(ErrAlphaCharError, err.Error())
	}
	// Encode always appends TermSymbol; a prefix search must not itself
	// demand the terminator, only descend past it.
	symbols := full[:len(full)-1]

	s := rootState
	pos := 0
	for pos < len(symbols) && t.da.getBase(s) > 0 {
		next, werr := t.da.walk(s, int(symbols[pos]))
		if werr != nil {
			return it, nil // no key has this prefix
		}
		s = next
		pos++
	}
	base := t.da.getBase(s)
	if base == 0 && pos < len(symbols) {
		return it, nil
	}
	if pos == len(symbols) {
		if base == 0 {
			// Root, empty trie, empty prefix: nothing to enumerate.
			return it, nil
		}
		it.tailAddrs = t.collectSubtree(s)
		return it, nil
	}
	// base < 0: walked onto a tail pointer before consuming the whole
	// prefix; the prefix must be a prefix of (or equal to) that single
	// remaining tail's suffix for there to be any match at all.
	addr := t.tailAddrOf(s)
	entry := t.tails.get(addr)
	if entry == nil {
		return it, nil
	}
	eff := effectiveSuffix(entry)
	remaining := symbols[pos:]
	if len(remaining) > len(eff) || commonPrefixLen(remaining, eff) != len(remaining) {
		return it, nil
	}
	it.tailAddrs = []int{addr}
	return it, nil
}

// KeysMatching implements a TKEYS-style pattern lookup: pattern must
// end in a literal '*' wildcard byte, everything before it is a
// literal prefix.
func (t *Trie) KeysMatching(pattern []byte) (*TrieIterator, error) {
	if len(pattern) == 0 || pattern[len(pattern)-1] != '*' {
		return t.PrefixSearch(pattern)
	}
	return t.PrefixSearch(pattern[:len(pattern)-1])
}

// collectSubtree performs an explicit-stack depth-first traversal:
// children are pushed in reverse symbol order so that popping the
// stack visits them in ascending label order.
func (t *Trie) collectSubtree(start int) []int {
	var tails []int
	stack := newIntStack()
	stack.push(start)
	for !stack.empty() {
		s := stack.pop()
		if t.da.getBase(s) <= 0 {
			tails = append(tails, t.tailAddrOf(s))
			continue
		}
		syms := t.da.fillSymbols(s)
		for i := syms.Num() - 1; i >= 0; i-- {
			next, err := t.da.walk(s, int(syms.Get(i)))
			if err != nil {
				continue
			}
			stack.push(next)
		}
	}
	return tails
}

// Next advances the iterator, returning the next (key, value) pair in
// order. ok is false once enumeration is exhausted. A structural
// mutation of the trie since construction surfaces as
// ErrIteratorStale instead of silently reading stale state.
func (it *TrieIterator) Next() ([]byte, interface{}, bool, error) {
	if it.t.mutation != it.fingerprint {
		return nil, nil, false, ErrIteratorStale
	}
	if it.pos >= len(it.tailAddrs) {
		return nil, nil, false, nil
	}
	addr := it.tailAddrs[it.pos]
	it.pos++
	entry := it.t.tails.get(addr)
	if entry == nil {
		return nil, nil, false, ErrInvalidEntry
	}
	return entry.key, entry.val, true, nil
}

// Remaining reports how many entries Next has not yet returned.
func (it *TrieIterator) Remaining() int {
	return len(it.tailAddrs) - it.pos
}
