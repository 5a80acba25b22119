package dat

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Trie orchestrates DAT walks, tail insertion/splitting, relocation
// and pruning. It owns base, check and the tail pool exclusively;
// AlphabetMap is supplied by the caller and never owned.
type Trie struct {
	alphabet AlphabetMap
	cfg      Config
	logger   zerolog.Logger

	da    *doubleArray
	tails *tailPool

	// mutation is bumped on every structural change and sampled by
	// TrieIterator at construction time so a stale iterator can be
	// detected instead of silently reading a relocated structure.
	mutation uint64
}

// New creates a Trie over the given alphabet. Arrays are not allocated
// until the first Insert.
func New(alphabet AlphabetMap, cfg Config) *Trie {
	t := &Trie{alphabet: alphabet, cfg: cfg}
	if cfg.Logger != nil {
		t.logger = *cfg.Logger
	} else {
		t.logger = zerolog.Nop()
	}
	return t
}

func (t *Trie) resizeAllowed() bool {
	if t.cfg.UseGlobalResizeToggle {
		return globalAllowResize.Load()
	}
	return t.cfg.AllowResize
}

func (t *Trie) ensureInit() error {
	if t.da != nil {
		return nil
	}
	logger := &t.logger
	t.da = newDoubleArray(t.cfg.InitialSize, t.resizeAllowed, logger)
	t.tails = newTailPool(t.resizeAllowed, t.cfg.KeyDestroy, t.cfg.ValDestroy, logger)
	return t.da.ensureInit()
}

func (t *Trie) bumpMutation() { t.mutation++ }

func (t *Trie) dupKey(key []byte) []byte {
	if t.cfg.KeyDup != nil {
		return t.cfg.KeyDup(key)
	}
	return key
}

func (t *Trie) dupVal(val interface{}) interface{} {
	if t.cfg.ValDup != nil {
		return t.cfg.ValDup(val)
	}
	return val
}

func (t *Trie) tailAddrOf(s int) int {
	return -t.da.getBase(s)
}

func (t *Trie) setTailBase(s, addr int) {
	t.da.setBase(s, -addr)
}

// effectiveSuffix treats a nil/empty suffix as a single TermSymbol, the
// convention that lets split/match logic compare tails uniformly
// whether or not the stored key ended exactly at this node.
func effectiveSuffix(e *TailEntry) []byte {
	if len(e.suffix) == 0 {
		return []byte{TermSymbol}
	}
	return e.suffix
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func normalize(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

// GetKeySize reports how many keys are currently stored.
func (t *Trie) GetKeySize() int {
	if t.tails == nil {
		return 0
	}
	return t.tails.used
}

// Insert stores val under key, duplicating per the configured
// KeyDup/ValDup hooks. It reports whether key already existed (a
// replace) or was freshly added.
func (t *Trie) Insert(key []byte, val interface{}) (existed bool, err error) {
	if err := t.ensureInit(); err != nil {
		return false, err
	}
	p, err := t.alphabet.Encode(key)
	if err != nil {
		return false, errors.Wrap(ErrAlphaCharError, err.Error())
	}
	addr, existed, err := t.addKey(p)
	if err != nil {
		return false, err
	}
	entry := t.tails.get(addr)
	if entry == nil {
		return false, errors.Wrap(ErrInvalidEntry, "add_key returned a dead address")
	}
	if existed {
		old := entry.val
		entry.val = t.dupVal(val)
		if t.cfg.ValDestroy != nil {
			t.cfg.ValDestroy(old)
		}
		return true, nil
	}
	entry.key = t.dupKey(key)
	entry.val = t.dupVal(val)
	return false, nil
}

// Find returns the value stored under key, if any.
func (t *Trie) Find(key []byte) (interface{}, bool, error) {
	if t.da == nil {
		return nil, false, nil
	}
	p, err := t.alphabet.Encode(key)
	if err != nil {
		return nil, false, errors.Wrap(ErrAlphaCharError, err.Error())
	}
	_, addr, ok, err := t.locate(p)
	if err != nil || !ok {
		return nil, false, err
	}
	return t.tails.get(addr).val, true, nil
}

// FindEntry returns the stable address of key's tail entry, for use
// with ReplaceAt. It exists because raw pointers into the tail pool
// slice may be invalidated by a later growth, the same reason the
// iterator snapshots addresses instead of slice pointers; addresses
// themselves remain stable across growth and relocation.
func (t *Trie) FindEntry(key []byte) (addr int, ok bool, err error) {
	if t.da == nil {
		return 0, false, nil
	}
	p, err := t.alphabet.Encode(key)
	if err != nil {
		return 0, false, errors.Wrap(ErrAlphaCharError, err.Error())
	}
	_, addr, ok, err = t.locate(p)
	return addr, ok, err
}

// ReplaceAt sets a new value at addr (as returned by FindEntry),
// running the old value's destructor only after the new value is in
// place, so aliasing or reference-counted values tolerate the order.
func (t *Trie) ReplaceAt(addr int, val interface{}) error {
	entry := t.tails.get(addr)
	if entry == nil {
		return ErrInvalidEntry
	}
	old := entry.val
	entry.val = t.dupVal(val)
	if t.cfg.ValDestroy != nil {
		t.cfg.ValDestroy(old)
	}
	return nil
}

// Delete removes key, freeing its tail slot and pruning any DAT states
// left childless. Deleting an absent key is an error; a second Delete
// of the same key is well-defined and also errors.
func (t *Trie) Delete(key []byte) error {
	if t.da == nil {
		return ErrNotFound
	}
	p, err := t.alphabet.Encode(key)
	if err != nil {
		return errors.Wrap(ErrAlphaCharError, err.Error())
	}
	s, addr, ok, err := t.locate(p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := t.tails.free(addr); err != nil {
		return err
	}
	t.da.setBase(s, TrieIndexError)
	t.da.prune(rootState, s)
	t.bumpMutation()
	return nil
}

// Close destroys every stored entry (invoking KeyDestroy/ValDestroy)
// and releases both arrays, invoking progress every 2^16 slots visited
// so a host can interleave this with other cooperative work.
func (t *Trie) Close(progress func()) {
	if t.tails != nil {
		t.tails.emptyAll(progress)
	}
	t.da = nil
	t.tails = nil
	t.mutation = 0
}

// locate walks p (an encoded key, including its trailing TermSymbol)
// as far as the DAT allows, then matches any remainder against the
// tail it lands on. It performs no mutation.
func (t *Trie) locate(p []byte) (state, addr int, ok bool, err error) {
	s := rootState
	pos := 0
	for pos < len(p) && t.da.getBase(s) > 0 {
		next, werr := t.da.walk(s, int(p[pos]))
		if werr != nil {
			return 0, 0, false, nil
		}
		s = next
		pos++
	}
	if t.da.getBase(s) >= 0 {
		// Either the root with nothing inserted yet, or (structurally
		// impossible in a healthy trie) a childless branch state.
		return 0, 0, false, nil
	}
	addr = t.tailAddrOf(s)
	entry := t.tails.get(addr)
	if entry == nil {
		return 0, 0, false, nil
	}
	if pos == len(p) {
		if len(entry.suffix) != 0 {
			return 0, 0, false, nil
		}
		return s, addr, true, nil
	}
	remaining := p[pos:]
	eff := effectiveSuffix(entry)
	if len(remaining) != len(eff) || commonPrefixLen(remaining, eff) != len(eff) {
		return 0, 0, false, nil
	}
	return s, addr, true, nil
}

// addKey walks the DAT, extending or splitting a tail as needed, and
// returns the tail address where the caller should write key/val, plus
// whether an existing entry for this exact key was found.
func (t *Trie) addKey(p []byte) (addr int, existed bool, err error) {
	s := rootState
	pos := 0
	for {
		base := t.da.getBase(s)
		if base > 0 {
			c := int(p[pos])
			next, werr := t.da.walk(s, c)
			if werr != nil {
				return t.createBranchTail(s, c, p[pos+1:])
			}
			s = next
			pos++
			continue
		}
		if base == 0 {
			// A state with no children and no tail yet: only possible
			// for the root on the very first insert into this trie.
			c := int(p[pos])
			return t.createBranchTail(s, c, p[pos+1:])
		}
		break // base < 0: reached an existing tail pointer.
	}
	if pos == len(p) {
		return t.tailAddrOf(s), true, nil
	}
	remaining := p[pos:]
	addr = t.tailAddrOf(s)
	entry := t.tails.get(addr)
	if entry == nil {
		return 0, false, errors.Wrap(ErrInvalidEntry, "dangling tail pointer")
	}
	eff := effectiveSuffix(entry)
	d := commonPrefixLen(remaining, eff)
	if d == len(remaining) && d == len(eff) {
		return addr, true, nil
	}
	return t.splitTail(s, addr, eff, remaining, d)
}

// createBranchTail installs a fresh edge c out of s and parks the
// unconsumed remainder of the key in a brand-new tail entry.
func (t *Trie) createBranchTail(s, c int, rest []byte) (int, bool, error) {
	next, err := t.da.insertEdge(s, c)
	if err != nil {
		return 0, false, err
	}
	addr, err := t.tails.alloc()
	if err != nil {
		t.da.freeCell(next)
		t.da.prune(rootState, s)
		return 0, false, err
	}
	t.tails.setSuffix(addr, normalize(rest))
	t.setTailBase(next, addr)
	t.bumpMutation()
	return addr, false, nil
}

// splitTail separates two keys that agree on a common prefix of d
// symbols (remaining[:d] == eff[:d]) and then diverge: it grows a
// chain of single-child branches for the common prefix, then installs
// two edges at the divergence point, one re-pointing at the existing
// tail (with its suffix shifted past the matched bytes) and one
// pointing at a freshly allocated tail for the new key.
//
// s is the only pointer back to oldAddr's tail entry on entry, and the
// very first edge grown off s overwrites base[s], destroying that
// pointer before oldAddr is re-wired onto oldChild. Until that
// re-wiring lands, any insertEdge failure in the common-prefix chain
// or at oldChild's own edge would otherwise orphan oldAddr and leave a
// dangling, childless chain behind — a deferred restore undoes exactly
// that: it prunes whatever chain cells were grown so far and gives s
// back its original tail pointer, so the old key stays findable. Once
// oldChild is wired, the old key is safe again and a later failure
// while adding the new key needs no such restore.
func (t *Trie) splitTail(s, oldAddr int, eff, remaining []byte, d int) (addr int, existed bool, err error) {
	cur := s
	oldRewired := false
	defer func() {
		if err != nil && !oldRewired {
			if cur != s {
				t.da.prune(s, cur)
			}
			t.setTailBase(s, oldAddr)
		}
	}()

	for i := 0; i < d; i++ {
		next, ierr := t.da.insertEdge(cur, int(remaining[i]))
		if ierr != nil {
			err = ierr
			return 0, false, err
		}
		cur = next
	}
	oldDivergeSym := int(eff[d])
	newDivergeSym := int(remaining[d])
	oldRest := eff[d+1:]
	newRest := remaining[d+1:]

	oldChild, ierr := t.da.insertEdge(cur, oldDivergeSym)
	if ierr != nil {
		err = ierr
		return 0, false, err
	}
	t.setTailBase(oldChild, oldAddr)
	t.tails.setSuffix(oldAddr, normalize(oldRest))
	oldRewired = true

	newChild, ierr := t.da.insertEdge(cur, newDivergeSym)
	if ierr != nil {
		err = ierr
		return 0, false, err
	}
	newAddr, ierr := t.tails.alloc()
	if ierr != nil {
		t.da.freeCell(newChild)
		t.da.prune(rootState, cur)
		err = ierr
		return 0, false, err
	}
	t.tails.setSuffix(newAddr, normalize(newRest))
	t.setTailBase(newChild, newAddr)
	t.bumpMutation()
	return newAddr, false, nil
}
