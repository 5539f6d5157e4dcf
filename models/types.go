package models

// BaseType is one of the three ASN.1 base types. These are the only three
// hardcoded types anywhere in the agent; every other SMI type name resolves
// to one of these through the type registry.
type BaseType int

const (
	BaseUnknown BaseType = iota
	BaseInteger
	BaseOctetString
	BaseObjectIdentifier
)

// String renders the base type the way SMI spells it.
func (b BaseType) String() string {
	switch b {
	case BaseInteger:
		return "INTEGER"
	case BaseOctetString:
		return "OCTET STRING"
	case BaseObjectIdentifier:
		return "OBJECT IDENTIFIER"
	default:
		return "UNKNOWN"
	}
}

// ConstraintKind distinguishes value-range constraints (INTEGER) from
// size-range constraints (OCTET STRING).
type ConstraintKind int

const (
	ValueRangeConstraint ConstraintKind = iota
	SizeRangeConstraint
)

// Range is an inclusive [Min, Max] bound. Used both for INTEGER value
// constraints and OCTET STRING size constraints.
type Range struct {
	Min int64
	Max int64
}

// Contains reports whether v falls within the range, inclusive.
func (r Range) Contains(v int64) bool {
	return v >= r.Min && v <= r.Max
}

// NamedValue is one label of an enumeration or BITS definition.
type NamedValue struct {
	Name  string
	Value int64
}

// TypeEntry is the normalized, immutable-after-build description of an SMI
// type: a TEXTUAL-CONVENTION, an RFC 2578 application type, or one of the
// three ASN.1 axioms themselves.
type TypeEntry struct {
	Name        string
	BaseType    BaseType
	DisplayHint string
	Kind        ConstraintKind
	Constraints []Range
	Enumeration []NamedValue // ordered; present iff this is an enumerated INTEGER
	Abstract    bool         // true for CHOICE / structural-only types
	DefinedIn   string
	UsedBy      []string
}

// EnumValue looks up the integer for a declared enumeration label.
func (t *TypeEntry) EnumValue(label string) (int64, bool) {
	for _, nv := range t.Enumeration {
		if nv.Name == label {
			return nv.Value, true
		}
	}
	return 0, false
}

// IsValidEnum reports whether v is one of the declared enumeration values.
// Types with no enumeration accept any value (this check is a no-op for them).
func (t *TypeEntry) IsValidEnum(v int64) bool {
	if len(t.Enumeration) == 0 {
		return true
	}
	for _, nv := range t.Enumeration {
		if nv.Value == v {
			return true
		}
	}
	return false
}

// InRange reports whether v satisfies the declared constraints. A type with
// no constraints accepts any value.
func (t *TypeEntry) InRange(v int64) bool {
	if len(t.Constraints) == 0 {
		return true
	}
	for _, r := range t.Constraints {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

// InSizeRange reports whether n (an octet-string length) satisfies the
// declared size constraints.
func (t *TypeEntry) InSizeRange(n int) bool {
	if len(t.Constraints) == 0 {
		return true
	}
	for _, r := range t.Constraints {
		if int64(n) >= r.Min && int64(n) <= r.Max {
			return true
		}
	}
	return false
}
