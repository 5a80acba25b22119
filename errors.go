package dat

import "github.com/pkg/errors"

// Sentinel errors surfaced to callers of this package. Compare with
// errors.Is (or errors.Cause for a wrapped error returned from here).
var (
	// ErrNotFound is returned by Find/Delete when the key is absent.
	ErrNotFound = errors.New("dat: key not found")

	// ErrAllocFailed is returned by any growth path that could not
	// satisfy a request; the structure is left consistent.
	ErrAllocFailed = errors.New("dat: allocation failed")

	// ErrAlphaCharError wraps an encoder's ALPHA_CHAR_ERROR sentinel.
	ErrAlphaCharError = errors.New("dat: character outside alphabet range")

	// ErrIteratorStale is returned by TrieIterator.Next when the trie
	// was mutated after the iterator was constructed.
	ErrIteratorStale = errors.New("dat: iterator invalidated by mutation")

	// ErrResizeDisabled is returned when growth is required but the
	// engine's resize policy forbids it.
	ErrResizeDisabled = errors.New("dat: growth required but resize is disabled")

	// ErrInvalidEntry is returned when an entry address does not name
	// an in-use tail slot (stale handle, double free, out of range).
	ErrInvalidEntry = errors.New("dat: invalid tail entry address")
)
