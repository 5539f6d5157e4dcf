package models

// Kind classifies a node in the MIB tree.
type Kind int

const (
	KindScalar Kind = iota
	KindTable
	KindRow
	KindColumn
	KindNotification
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindTable:
		return "table"
	case KindRow:
		return "row"
	case KindColumn:
		return "column"
	case KindNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// Access is the SNMP MAX-ACCESS clause, reused verbatim for runtime
// authorization decisions.
type Access int

const (
	AccessNotAccessible Access = iota
	AccessAccessibleForNotify
	AccessReadOnly
	AccessReadWrite
	AccessReadCreate
)

func (a Access) String() string {
	switch a {
	case AccessNotAccessible:
		return "not-accessible"
	case AccessAccessibleForNotify:
		return "accessible-for-notify"
	case AccessReadOnly:
		return "read-only"
	case AccessReadWrite:
		return "read-write"
	case AccessReadCreate:
		return "read-create"
	default:
		return "unknown"
	}
}

// Writable reports whether a SET against this access level is ever
// permitted (subject to community authorization).
func (a Access) Writable() bool {
	return a == AccessReadWrite || a == AccessReadCreate
}

// Readable reports whether the object ever appears as a queryable store
// entry. not-accessible and accessible-for-notify objects exist only as
// schema structure, never as store entries reachable by GET.
func (a Access) Readable() bool {
	return a == AccessReadOnly || a == AccessReadWrite || a == AccessReadCreate
}

// Status is the SMI STATUS clause.
type Status int

const (
	StatusCurrent Status = iota
	StatusDeprecated
	StatusObsolete
)

// MibObject is the union of every addressable MIB tree node: scalar, table,
// row, column, or notification. Kind-specific fields are populated
// according to Kind; fields irrelevant to a given Kind are left zero.
type MibObject struct {
	Name        string
	OID         OID
	TypeName    string // resolved via the type registry by name, not embedded
	Access      Access
	Status      Status
	Description string
	Kind        Kind

	// scalar
	Initial any // concrete value, or nil

	// table
	Rows []TableRow // seed rows from the schema document, not runtime rows

	// row
	IndexColumns []string // ordered column names forming the index
	Augments     string   // optional row name this row augments
	ImpliedLast  bool     // affects string/OID index encoding of the last column

	// column
	ParentRow string

	// notification
	Objects []string // ordered varbind object names
}

// TableRow is a schema-level seed row: a mapping from column name to its
// initial value, as supplied by the MIB ingestion document's "rows" field.
// Distinct from a runtime row instance, which lives only in the OID Store.
type TableRow map[string]any
