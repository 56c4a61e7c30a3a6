package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Values longer than this are fingerprinted so document bodies never
// end up verbatim in a key.
const maxInlineValueLen = 64

// Fingerprint reduces arbitrary text to a short stable hash token
func Fingerprint(s string) string {
	return fmt.Sprintf("x%016x", xxhash.Sum64String(s))
}

// BuildKey derives a stable key from a namespace and a parameter map.
// Keys are order-independent: semantically equal maps always produce
// the same key.
func BuildKey(namespace string, params map[string]any) string {
	if len(params) == 0 {
		return namespace
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(namespace)
	for _, name := range names {
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(encodeValue(params[name]))
	}
	return b.String()
}

func encodeValue(v any) string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprintf("%v", val)
	}
	if len(s) > maxInlineValueLen {
		return Fingerprint(s)
	}
	return s
}
