package dlargs

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// ArgumentMap maps dotted option paths ("download.url") to typed leaf values:
// string, int64, float64, bool, or []any of those.
type ArgumentMap map[string]any

// ArgumentsHash is the short hex digest identifying an ArgumentMap.
type ArgumentsHash string

// hashLen is the number of hex characters kept from the SHA-256 digest.
const hashLen = 8

// Keys returns the option paths in sorted order.
func (m ArgumentMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Hash computes the digest over the canonical serialization: keys sorted,
// each key and its JSON-encoded value length-prefixed so that no two
// distinct maps serialize to the same bytes.
func (m ArgumentMap) Hash() ArgumentsHash {
	h := sha256.New()
	writeField := func(data []byte) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(data)))
		h.Write(length[:])
		h.Write(data)
	}

	keys := m.Keys()
	writeField([]byte{byte(len(keys) >> 8), byte(len(keys))})
	for _, k := range keys {
		writeField([]byte(k))
		writeField(canonicalValue(m[k]))
	}
	return ArgumentsHash(hex.EncodeToString(h.Sum(nil))[:hashLen])
}

// canonicalValue encodes v with its type visible: 1 and "1" differ.
func canonicalValue(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// Leaves are produced by parseValue and always encode.
		panic(err)
	}
	return b
}

// Nested expands dotted paths into the nested mapping expected by the preset
// source: {"download.url": "x"} becomes {"download": {"url": "x"}}.
func (m ArgumentMap) Nested() map[string]any {
	out := map[string]any{}
	for _, k := range m.Keys() {
		parts := strings.Split(k, ".")
		node := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = copyValue(m[k])
	}
	return out
}

func copyValue(v any) any {
	if list, ok := v.([]any); ok {
		return append([]any(nil), list...)
	}
	return v
}
