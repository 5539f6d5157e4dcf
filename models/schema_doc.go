package models

// SchemaDoc is the shape of one MIB schema ingestion document, produced by
// the MIB text-to-intermediate-representation compiler. The
// agent consumes one such document per configured MIB module.
type SchemaDoc struct {
	MibName string                    `json:"mibName"`
	Objects map[string]SchemaObjectDoc `json:"objects"`
}

// SchemaObjectDoc is one entry of a SchemaDoc's "objects" map.
type SchemaObjectDoc struct {
	OID          []uint32              `json:"oid"`
	Type         string                `json:"type"`
	Kind         string                `json:"kind"`
	Access       string                `json:"access"`
	Status       string                `json:"status,omitempty"`
	Initial      any                   `json:"initial,omitempty"`
	Rows         []map[string]any      `json:"rows,omitempty"`
	Indexes      []string              `json:"indexes,omitempty"`
	Augments     string                `json:"augments,omitempty"`
	ImpliedLast  bool                  `json:"implied_last,omitempty"`
	ParentRow    string                `json:"parent_row,omitempty"`
	Enums        []SchemaEnumDoc       `json:"enums,omitempty"`
	Constraints  []SchemaConstraintDoc `json:"constraints,omitempty"`
	DisplayHint  string                `json:"display_hint,omitempty"`
	Objects      []string              `json:"objects,omitempty"`
	Description  string                `json:"description,omitempty"`
}

// SchemaEnumDoc is one named value of an "enums" list.
type SchemaEnumDoc struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// SchemaConstraintDoc is one entry of a "constraints" list.
type SchemaConstraintDoc struct {
	Type string `json:"type"` // "ValueRangeConstraint" | "SizeRangeConstraint"
	Min  int64  `json:"min"`
	Max  int64  `json:"max"`
}

// TypeRegistryDoc is the JSON mapping typeName -> TypeEntry produced at
// startup for inspection tooling, and also the shape the type registry
// reads back in as its own input.
type TypeRegistryDoc map[string]TypeEntryDoc

// TypeEntryDoc is the exported, wire-friendly form of a TypeEntry.
type TypeEntryDoc struct {
	Name        string                `json:"name"`
	BaseType    string                `json:"base_type"`
	DisplayHint string                `json:"display_hint,omitempty"`
	Constraints []SchemaConstraintDoc `json:"constraints,omitempty"`
	Enumeration []SchemaEnumDoc       `json:"enumeration,omitempty"`
	Abstract    bool                  `json:"abstract"`
	DefinedIn   string                `json:"defined_in,omitempty"`
	UsedBy      []string              `json:"used_by,omitempty"`
}

// SnapshotDoc is the persistent state snapshot: scalar overrides, table
// row instances, and tombstones recording destroyed rows
// so a reload does not resurrect them.
type SnapshotDoc struct {
	Scalars           map[string]any              `json:"scalars"`
	Tables            map[string]map[string]SnapshotRow `json:"tables"`
	DeletedInstances  []string                     `json:"deleted_instances"`
}

// SnapshotRow is one row instance within a SnapshotDoc table entry.
type SnapshotRow struct {
	ColumnValues map[string]any `json:"column_values"`
}
