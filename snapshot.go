package dat

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// tailEntrySnapshot is the gob-friendly mirror of TailEntry; TailEntry
// itself keeps its fields unexported so callers can't bypass the
// duplication/destruction contract, hence the separate type with
// exported fields for the encoder to walk.
type tailEntrySnapshot struct {
	Suffix   []byte
	Key      []byte
	Val      interface{}
	NextFree int
}

// trieSnapshot is the persisted shape: the two DA arrays verbatim plus
// the tail pool's slab and free-list head. It deliberately excludes
// the AlphabetMap and the Config's dup/destroy hooks, neither of which
// is serializable; Load only restores the two arrays and the tail
// pool and leaves those caller-supplied pieces alone.
type trieSnapshot struct {
	Base      []int
	Check     []int
	Tails     []tailEntrySnapshot
	FirstFree int
	Used      int
}

// Store gob-encodes the trie's arrays and tail pool to path. The
// caller is responsible for gob.Register-ing any concrete value types
// stored via Insert, as with any gob-encoded interface{}.
func (t *Trie) Store(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "dat: open snapshot for write")
	}
	defer file.Close()

	snap := trieSnapshot{}
	if t.da != nil {
		snap.Base = append([]int(nil), t.da.base...)
		snap.Check = append([]int(nil), t.da.check...)
	}
	if t.tails != nil {
		snap.Tails = make([]tailEntrySnapshot, len(t.tails.entries))
		for i, e := range t.tails.entries {
			snap.Tails[i] = tailEntrySnapshot{
				Suffix:   e.suffix,
				Key:      e.key,
				Val:      e.val,
				NextFree: e.nextFree,
			}
		}
		snap.FirstFree = t.tails.firstFree
		snap.Used = t.tails.used
	}

	if err := gob.NewEncoder(file).Encode(&snap); err != nil {
		return errors.Wrap(err, "dat: encode snapshot")
	}
	return nil
}

// Load replaces the trie's arrays and tail pool with the contents of
// path. The Trie must already have been constructed with New; its
// AlphabetMap and Config are left untouched, since neither round-trips
// through the snapshot.
func (t *Trie) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "dat: open snapshot for read")
	}
	defer file.Close()

	var snap trieSnapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return errors.Wrap(err, "dat: decode snapshot")
	}

	da := newDoubleArray(t.cfg.InitialSize, t.resizeAllowed, &t.logger)
	da.base = snap.Base
	da.check = snap.Check

	tails := newTailPool(t.resizeAllowed, t.cfg.KeyDestroy, t.cfg.ValDestroy, &t.logger)
	tails.entries = make([]TailEntry, len(snap.Tails))
	for i, e := range snap.Tails {
		tails.entries[i] = TailEntry{
			suffix:   e.Suffix,
			key:      e.Key,
			val:      e.Val,
			nextFree: e.NextFree,
		}
	}
	tails.firstFree = snap.FirstFree
	tails.used = snap.Used

	t.da = da
	t.tails = tails
	t.mutation++
	return nil
}
