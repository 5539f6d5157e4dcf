package models

import "time"

// Source records how a StoreEntry's current value was derived, for
// diagnostics and for the type-registry / state-snapshot export tools.
type Source int

const (
	SourceSchemaInitial Source = iota
	SourceStateLoaded
	SourceRuntimeSet
	SourcePluginDefault
)

func (s Source) String() string {
	switch s {
	case SourceSchemaInitial:
		return "schema-initial"
	case SourceStateLoaded:
		return "state-loaded"
	case SourceRuntimeSet:
		return "runtime-set"
	case SourcePluginDefault:
		return "plugin-default"
	default:
		return "unknown"
	}
}

// StoreEntry is one addressable (type, value, access) binding in the OID
// Store. Complete OIDs include the trailing ".0" for scalars and the
// index-encoded instance suffix for table columns.
type StoreEntry struct {
	OID           OID
	SyntaxType    *TypeEntry
	Access        Access
	Value         any
	Source        Source
	LastWriteTime time.Time

	// RowKey identifies which runtime row this entry belongs to, empty for
	// scalars. Used by row-lifecycle operations (create/destroy) to find
	// every column entry of a row without re-decoding every OID's index
	// suffix.
	RowKey string
}
