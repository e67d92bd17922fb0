// Package value converts opaque graph store values into JSON-serializable trees.
package value

import "sort"

// Kind classifies a Value. Only KindInteger, KindString and KindBoolean are terminal.
type Kind int

const (
	KindOther Kind = iota
	KindInteger
	KindString
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindString:
		return "STRING"
	case KindBoolean:
		return "BOOLEAN"
	default:
		return "OTHER"
	}
}

// Value is a handle to a piece of store data.
//
// A terminal Value answers one of AsInt, AsString or AsBool according to its Kind.
// A non-terminal Value enumerates its keys and resolves each of them to another Value.
type Value interface {
	Kind() Kind
	AsInt() int64
	AsString() string
	AsBool() bool
	Keys() []string
	Get(key string) Value
	// Raw returns the value as the store reported it.
	Raw() any
}

// IsTerminal reports whether v is passed through Normalize unchanged.
func IsTerminal(v Value) bool {
	switch v.Kind() {
	case KindInteger, KindString, KindBoolean:
		return true
	default:
		return false
	}
}

// Normalize turns v into an int64, string, bool or map[string]any.
//
// Every non-terminal value becomes a mapping, whose key set may be empty:
// nulls, floats and sequences become {}.
func Normalize(v Value) any {
	if IsTerminal(v) {
		switch v.Kind() {
		case KindInteger:
			return v.AsInt()
		case KindBoolean:
			return v.AsBool()
		default:
			return v.AsString()
		}
	}

	keys := v.Keys()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		out[key] = Normalize(v.Get(key))
	}
	return out
}

// RawAll collects the raw entries of a keyed set of values, skipping the excluded keys.
func RawAll(keys []string, get func(string) Value, exclude ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if contains(exclude, key) {
			continue
		}
		out[key] = get(key).Raw()
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
