// Package settings implements a recursive, keyed configuration record: a
// Settings value is a nested mapping from string keys to a value, a nested
// Settings, or an ordered array, with two stable hashing views — the full
// settings and a "key" subset used by the target map.
//
// The underlying representation is a cty.Value, the same value type used
// elsewhere in this codebase to carry step/resource arguments through its
// HCL evaluation pipeline. Re-using cty here means canonical serialization,
// equality, and conversion to/from plain Go maps all come from a library
// already proven for exactly this "arbitrary nested configuration" shape,
// instead of a hand-rolled variant type.
package settings
