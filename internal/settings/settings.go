package settings

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Settings is a recursively nested configuration record: string keys mapped
// to a leaf string, a nested Settings, or an ordered array of either.
// Equality is structural and array order is preserved.
type Settings struct {
	val cty.Value
}

// Empty is the zero-valued Settings: an empty object.
func Empty() Settings {
	return Settings{val: cty.EmptyObjectVal}
}

// FromValue wraps an already-built cty.Value as Settings. Used by the
// nativehcl driver, which gets cty values directly from gohcl.
func FromValue(v cty.Value) Settings { return Settings{val: v} }

// Value returns the underlying cty.Value.
func (s Settings) Value() cty.Value { return s.val }

// New builds a Settings from plain Go data: map[string]any, []any, string,
// or a nested Settings, for callers that hold ordinary Go maps rather than
// cty values.
func New(data map[string]any) (Settings, error) {
	v, err := toCty(data)
	if err != nil {
		return Settings{}, err
	}
	return Settings{val: v}, nil
}

func toCty(v any) (cty.Value, error) {
	switch t := v.(type) {
	case nil:
		return cty.NullVal(cty.String), nil
	case string:
		return cty.StringVal(t), nil
	case Settings:
		return t.val, nil
	case map[string]any:
		if len(t) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t))
		for k, val := range t {
			cv, err := toCty(val)
			if err != nil {
				return cty.NilVal, fmt.Errorf("settings: key %q: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(t) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(t))
		for i, val := range t {
			cv, err := toCty(val)
			if err != nil {
				return cty.NilVal, fmt.Errorf("settings: index %d: %w", i, err)
			}
			elems[i] = cv
		}
		return cty.TupleVal(elems), nil
	default:
		return cty.NilVal, fmt.Errorf("settings: unsupported value type %T (values must be opaque strings)", v)
	}
}

// IsObject reports whether this Settings node is a keyed object.
func (s Settings) IsObject() bool {
	return s.val.Type().IsObjectType()
}

// Keys returns the sorted attribute names of an object-typed Settings, or
// nil if this node is not an object.
func (s Settings) Keys() []string {
	if !s.IsObject() {
		return nil
	}
	keys := make([]string, 0)
	for k := range s.val.Type().AttributeTypes() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get walks a dot-separated path of object keys and returns the Settings at
// that path.
func (s Settings) Get(path string) (Settings, bool) {
	cur := s.val
	if path == "" {
		return s, true
	}
	for _, seg := range strings.Split(path, ".") {
		if !cur.Type().IsObjectType() {
			return Settings{}, false
		}
		if !cur.Type().HasAttribute(seg) {
			return Settings{}, false
		}
		cur = cur.GetAttr(seg)
	}
	return Settings{val: cur}, true
}

// GetString returns the string leaf at path, if present.
func (s Settings) GetString(path string) (string, bool) {
	v, ok := s.Get(path)
	if !ok || v.val.Type() != cty.String || v.val.IsNull() {
		return "", false
	}
	return v.val.AsString(), true
}

// Array returns the ordered elements of a tuple/list-typed Settings node.
func (s Settings) Array() ([]Settings, bool) {
	t := s.val.Type()
	if !t.IsTupleType() && !t.IsListType() {
		return nil, false
	}
	out := make([]Settings, 0)
	for it := s.val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		out = append(out, Settings{val: v})
	}
	return out, true
}

// Equal reports structural equality.
func (s Settings) Equal(o Settings) bool {
	return s.val.RawEquals(o.val)
}

// CanonicalBytes serializes Settings to a stable bytestring: object keys are
// always written in sorted order, so the hash is stable under key
// reordering, and array element order is preserved since arrays are
// semantically ordered.
func (s Settings) CanonicalBytes() []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, s.val)
	return buf.Bytes()
}

func writeCanonical(buf *bytes.Buffer, v cty.Value) {
	switch {
	case v.IsNull():
		buf.WriteString("n:")
	case v.Type() == cty.String:
		writeLenPrefixed(buf, "s:", []byte(v.AsString()))
	case v.Type().IsObjectType():
		attrTypes := v.Type().AttributeTypes()
		keys := make([]string, 0, len(attrTypes))
		for k := range attrTypes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteString("o:")
		writeUint(buf, uint64(len(keys)))
		for _, k := range keys {
			writeLenPrefixed(buf, "k:", []byte(k))
			writeCanonical(buf, v.GetAttr(k))
		}
	case v.Type().IsTupleType() || v.Type().IsListType():
		elems := make([]cty.Value, 0)
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			elems = append(elems, ev)
		}
		buf.WriteString("a:")
		writeUint(buf, uint64(len(elems)))
		for _, ev := range elems {
			writeCanonical(buf, ev)
		}
	default:
		// Unsupported types (numbers, bools) never appear in a well-formed
		// Settings tree per the "values are opaque strings" invariant, but
		// fail safe rather than panic on malformed input from a driver.
		writeLenPrefixed(buf, "u:", []byte(v.Type().FriendlyName()))
	}
}

func writeLenPrefixed(buf *bytes.Buffer, tag string, data []byte) {
	buf.WriteString(tag)
	writeUint(buf, uint64(len(data)))
	buf.WriteByte(':')
	buf.Write(data)
}

func writeUint(buf *bytes.Buffer, n uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], n)
	buf.Write(tmp[:])
}

// Hash returns the sha256 digest of the canonical serialization.
func (s Settings) Hash() [32]byte {
	return sha256.Sum256(s.CanonicalBytes())
}

// HashString returns the hex-encoded Hash, used directly as the path
// component for storage.BuildDir.
func (s Settings) HashString() string {
	h := s.Hash()
	return hex.EncodeToString(h[:])
}

// MergeAppend combines object-typed Settings in order: for a key that is
// array-valued (tuple or list) in at least one input, the array values
// concatenate in input order and any non-array values for that key are
// dropped; otherwise the first non-null value found for that key wins.
// Non-object inputs are ignored. This is the propagation rule for PUBLIC interface
// settings: include_directories/definitions/link_libraries-style
// properties accumulate across a target's dependency closure, while
// scalar properties take the value nearest the root.
func MergeAppend(objects ...Settings) Settings {
	arrays := make(map[string][]cty.Value)
	scalars := make(map[string]cty.Value)
	order := make([]string, 0)
	seen := make(map[string]bool)

	for _, obj := range objects {
		if !obj.IsObject() {
			continue
		}
		for _, k := range obj.Keys() {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
			v := obj.val.GetAttr(k)
			if v.Type().IsTupleType() || v.Type().IsListType() {
				if _, ok := arrays[k]; !ok {
					arrays[k] = []cty.Value{}
				}
				for it := v.ElementIterator(); it.Next(); {
					_, ev := it.Element()
					arrays[k] = append(arrays[k], ev)
				}
				continue
			}
			if _, exists := scalars[k]; !exists && !v.IsNull() {
				scalars[k] = v
			}
		}
	}

	if len(order) == 0 {
		return Empty()
	}
	attrs := make(map[string]cty.Value, len(order))
	for _, k := range order {
		if elems, ok := arrays[k]; ok {
			if len(elems) == 0 {
				attrs[k] = cty.EmptyTupleVal
			} else {
				attrs[k] = cty.TupleVal(elems)
			}
			continue
		}
		if v, ok := scalars[k]; ok {
			attrs[k] = v
		}
	}
	return Settings{val: cty.ObjectVal(attrs)}
}

// WithoutKeys returns a copy of an object-typed Settings with the named
// top-level keys removed. Used to compute the "key" projection that the
// target map keys lookups on, stripping volatile fields like absolute
// paths or caller identity before hashing.
func (s Settings) WithoutKeys(keys ...string) Settings {
	if !s.IsObject() {
		return s
	}
	exclude := make(map[string]bool, len(keys))
	for _, k := range keys {
		exclude[k] = true
	}
	attrTypes := s.val.Type().AttributeTypes()
	attrs := make(map[string]cty.Value, len(attrTypes))
	for k := range attrTypes {
		if exclude[k] {
			continue
		}
		attrs[k] = s.val.GetAttr(k)
	}
	if len(attrs) == 0 {
		return Settings{val: cty.EmptyObjectVal}
	}
	return Settings{val: cty.ObjectVal(attrs)}
}
