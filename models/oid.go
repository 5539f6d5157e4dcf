// Package models defines the core data structures shared across every layer
// of the agent. These types represent the canonical in-memory form of the
// compiled MIB schema and the mutable runtime state; every other package
// depends on this package and nothing here depends on any other internal
// package.
package models

import (
	"strconv"
	"strings"
)

// OID is an ordered sequence of non-negative integers, compared
// component-wise and lexicographically. A zero-length OID is permitted
// in memory (used as the "before everything" start point for walks) but
// is never valid on the wire.
type OID []uint32

// ParseOID parses a dotted-decimal string ("1.3.6.1.2.1.1.1.0") into an OID.
// A single leading dot is tolerated and stripped.
func ParseOID(s string) (OID, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return OID{}, nil
	}
	parts := strings.Split(s, ".")
	out := make(OID, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

// MustParseOID parses s and panics on error. Intended for static OIDs known
// at compile time (registry axioms, well-known notification OIDs).
func MustParseOID(s string) OID {
	o, err := ParseOID(s)
	if err != nil {
		panic("models: invalid static OID " + s + ": " + err.Error())
	}
	return o
}

// String renders the OID in dotted-decimal form without a leading dot.
func (o OID) String() string {
	if len(o) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range o {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(c), 10))
	}
	return b.String()
}

// Clone returns an independent copy.
func (o OID) Clone() OID {
	out := make(OID, len(o))
	copy(out, o)
	return out
}

// Append returns a new OID with the given components appended, leaving the
// receiver untouched.
func (o OID) Append(components ...uint32) OID {
	out := make(OID, len(o)+len(components))
	copy(out, o)
	copy(out[len(o):], components)
	return out
}

// HasPrefix reports whether o begins with the given prefix.
func (o OID) HasPrefix(prefix OID) bool {
	if len(prefix) > len(o) {
		return false
	}
	for i := range prefix {
		if o[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Suffix returns the components of o after the given prefix. The caller
// must have already verified HasPrefix.
func (o OID) Suffix(prefix OID) OID {
	return o[len(prefix):]
}

// Equal reports component-wise equality.
func (o OID) Equal(other OID) bool {
	return Compare(o, other) == 0
}

// Compare returns -1, 0, or 1 according to SNMP lexicographic ordering:
// component-wise comparison, with a shorter OID sorting before a longer one
// that shares its prefix.
func Compare(a, b OID) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Less reports whether o sorts strictly before other.
func (o OID) Less(other OID) bool {
	return Compare(o, other) < 0
}
