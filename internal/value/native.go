package value

// Converter rewrites store-specific types into plain Go maps, slices and scalars
// before a value is classified.
type Converter func(any) any

type native struct {
	x    any
	raw  any
	conv Converter
}

// Of wraps a plain Go value: integers, strings and booleans are terminal and
// maps expose their keys. Sequences, like every other value, expose no keys.
func Of(x any) Value {
	return OfWith(x, nil)
}

// OfWith wraps x, running conv over x and over every nested value reached through Get.
func OfWith(x any, conv Converter) Value {
	n := native{x: x, raw: x, conv: conv}
	if conv != nil {
		n.x = conv(x)
	}
	return n
}

func (n native) Raw() any { return n.raw }

func (n native) Kind() Kind {
	switch n.x.(type) {
	case int, int32, int64:
		return KindInteger
	case string:
		return KindString
	case bool:
		return KindBoolean
	default:
		return KindOther
	}
}

func (n native) AsInt() int64 {
	switch v := n.x.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

func (n native) AsString() string {
	s, _ := n.x.(string)
	return s
}

func (n native) AsBool() bool {
	b, _ := n.x.(bool)
	return b
}

func (n native) Keys() []string {
	switch v := n.x.(type) {
	case map[string]any:
		return SortedKeys(v)
	default:
		return nil
	}
}

func (n native) Get(key string) Value {
	switch v := n.x.(type) {
	case map[string]any:
		return OfWith(v[key], n.conv)
	default:
		return OfWith(nil, n.conv)
	}
}
