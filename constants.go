package dat

// Package dat implements an ordered associative container on top of a
// double-array trie (DAT) with tail-pool suffix compression. This file
// holds the sentinel values and reserved slot layout the rest of the
// package builds on.

const (
	// TermSymbol is the terminator symbol every encoded key ends with.
	// It is a legal edge label like any other, distinct from the
	// reserved-slot indices below.
	TermSymbol = 0

	// Signature is the informational header written into base[0] of
	// the double array; TailSignature is the tail pool's counterpart,
	// which the pool does not store anywhere. Neither is load-bearing
	// for any operation; they are only useful for in-memory sanity
	// checks.
	Signature     = 0xDAFCDAFC
	TailSignature = 0xDFFCDFFC

	// TailStartBlockNo offsets tail pool block indices into tail
	// addresses. A leaf state stores -address in base[], so the offset
	// keeps that tail pointer strictly negative even for block 0, never
	// the 0 of a state with no children and no tail.
	TailStartBlockNo = 2

	// TrieIndexError is the sentinel returned by bounds-checked
	// accessors and denotes "no state"/"not found" in several call
	// sites (it coincides with the header slot, which is never a
	// valid live state to walk to).
	TrieIndexError = 0

	// TrieIndexMax is the largest legal state index. TrieIndexHalfMax
	// is the growth cap beyond which the next grow pins to the max.
	TrieIndexMax     = 1<<31 - 1
	TrieIndexHalfMax = 1<<30 - 1

	// AlphaCharError is the integer sentinel for a byte outside an
	// alphabet's configured ranges. AlphabetMap.Encode reports that case
	// as an error instead; ByteAlphabet returns ErrAlphaCharError.
	AlphaCharError = ^0

	// Reserved double-array slots.
	headerSlot   = 0
	freeSentinel = 1
	rootState    = 2

	// minArraySize is the smallest power-of-two array length the
	// double array ever shrinks to or starts from.
	minArraySize = 4

	// tailListEnd marks the last block in the tail pool's free chain,
	// distinct from tailNoFree so a slot's free-ness can be told apart
	// from its position in the chain.
	tailListEnd = -2
	tailNoFree  = -1
)
