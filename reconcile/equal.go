package reconcile

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/zeebo/xxh3"
)

var canonical = jsoniter.Config{SortMapKeys: true, EscapeHTML: false}.Froze()

// Equal compares two attribute values. Scalars compare by value; slices, maps
// and structs compare by a hash of their canonical encoding, so a resent but
// unchanged port list is not treated as a change.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case uint8:
		bv, ok := b.(uint8)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	}
	if b == nil {
		return false
	}
	fa, okA := Fingerprint(a)
	fb, okB := Fingerprint(b)
	return okA && okB && fa == fb
}

// Fingerprint hashes the canonical JSON encoding of v.
func Fingerprint(v any) (uint64, bool) {
	raw, err := canonical.Marshal(v)
	if err != nil {
		return 0, false
	}
	return xxh3.Hash(raw), true
}
