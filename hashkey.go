package dat

// hashFieldSeparator composes a per-key-field hash command (THSET,
// THGET, THDEL, THKEYS, ...) into a single trie key: "key\x01field".
// 0x01 is outside the printable-ASCII range a ByteAlphabet is normally
// configured with, so it never collides with a literal key or field
// byte under that configuration.
const hashFieldSeparator = 0x01

// ComposeHashKey builds the flat trie key a THSET/THGET/... command
// would look up for field within key.
func ComposeHashKey(key, field []byte) []byte {
	out := make([]byte, 0, len(key)+1+len(field))
	out = append(out, key...)
	out = append(out, hashFieldSeparator)
	out = append(out, field...)
	return out
}

// HashKeyPrefix returns the prefix a THKEYS/THVALS/THGETALL scan over
// key should search, i.e. "key\x01".
func HashKeyPrefix(key []byte) []byte {
	out := make([]byte, 0, len(key)+1)
	out = append(out, key...)
	out = append(out, hashFieldSeparator)
	return out
}

// SplitHashField strips a key's "key\x01" prefix off a flat trie key
// returned by a THKEYS/THGETALL enumeration, yielding just the field.
// ok is false if flatKey does not start with that prefix.
func SplitHashField(key, flatKey []byte) (field []byte, ok bool) {
	prefix := HashKeyPrefix(key)
	if len(flatKey) < len(prefix) {
		return nil, false
	}
	for i := range prefix {
		if flatKey[i] != prefix[i] {
			return nil, false
		}
	}
	return flatKey[len(prefix):], true
}
