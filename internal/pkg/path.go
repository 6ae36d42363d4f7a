package pkg

import "strings"

// Path is a dotted hierarchical package name, e.g. "org.sw.demo.zlib".
// Comparison is case-insensitive; the canonical string form is lower case.
type Path string

// NewPath canonicalizes a raw package path string.
func NewPath(raw string) Path {
	return Path(strings.ToLower(strings.TrimSpace(raw)))
}

// String returns the canonical (lower-case) form.
func (p Path) String() string {
	return string(p)
}

// Equal reports whether two paths name the same package, independent of the
// case they were originally written in.
func (p Path) Equal(o Path) bool {
	return strings.EqualFold(string(p), string(o))
}

// Segments splits the path on its dot separators.
func (p Path) Segments() []string {
	return strings.Split(string(p), ".")
}
