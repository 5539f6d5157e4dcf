package snapshot_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vpbank/snmp_agent/internal/defaultvalue"
	"github.com/vpbank/snmp_agent/internal/mibtype"
	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/internal/snapshot"
	"github.com/vpbank/snmp_agent/internal/store"
	"github.com/vpbank/snmp_agent/models"
)

func buildFixture(t *testing.T) (*store.Store, *schema.Schema) {
	t.Helper()
	types := mibtype.Build(nil, nil)
	doc := models.SchemaDoc{
		MibName: "TEST-MIB",
		Objects: map[string]models.SchemaObjectDoc{
			"sysContact": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 1, 4}, Type: "OCTET STRING", Kind: "scalar",
				Access: "read-write", Initial: "ops@example.com",
			},
			"ifTable": {OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2}, Kind: "table", Access: "not-accessible"},
			"ifEntry": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2, 1}, Kind: "row", Access: "not-accessible",
				Indexes: []string{"ifIndex"},
			},
			"ifIndex": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2, 1, 1}, Type: "INTEGER", Kind: "column",
				Access: "read-only", ParentRow: "ifEntry",
			},
			"ifDescr": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2, 1, 2}, Type: "OCTET STRING", Kind: "column",
				Access: "read-write", ParentRow: "ifEntry",
			},
		},
	}
	tableObj := doc.Objects["ifTable"]
	tableObj.Rows = []map[string]any{{"ifIndex": int64(1), "ifDescr": "eth0"}}
	doc.Objects["ifTable"] = tableObj

	sch, err := schema.Build([]models.SchemaDoc{doc}, types)
	if err != nil {
		t.Fatalf("schema.Build: %v", err)
	}
	st := store.New(models.MustParseOID("1.3.6.1.2.1.1.3.0"), time.Now())
	if err := store.Populate(st, sch, defaultvalue.New(nil), nil); err != nil {
		t.Fatalf("store.Populate: %v", err)
	}
	return st, sch
}

func TestApplyScalarOverride(t *testing.T) {
	st, sch := buildFixture(t)
	doc := &models.SnapshotDoc{
		Scalars: map[string]any{"1.3.6.1.2.1.1.4.0": "noc@example.com"},
		Tables:  map[string]map[string]models.SnapshotRow{},
	}
	if err := snapshot.Apply(st, sch, doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	e, err := st.Lookup(models.MustParseOID("1.3.6.1.2.1.1.4.0"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if e.Value != "noc@example.com" {
		t.Fatalf("sysContact.0 = %v, want override", e.Value)
	}
	if e.Source != models.SourceStateLoaded {
		t.Fatalf("Source = %v, want SourceStateLoaded", e.Source)
	}
}

func TestApplyCreatesRowAbsentFromSchema(t *testing.T) {
	st, sch := buildFixture(t)
	doc := &models.SnapshotDoc{
		Scalars: map[string]any{},
		Tables: map[string]map[string]models.SnapshotRow{
			"1.3.6.1.2.1.2.2": {
				"2": models.SnapshotRow{ColumnValues: map[string]any{
					"ifIndex": int64(2), "ifDescr": "eth1",
				}},
			},
		},
	}
	if err := snapshot.Apply(st, sch, doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	e, err := st.Lookup(models.MustParseOID("1.3.6.1.2.1.2.2.1.2.2"))
	if err != nil {
		t.Fatalf("Lookup ifDescr.2: %v", err)
	}
	if e.Value != "eth1" {
		t.Fatalf("ifDescr.2 = %v", e.Value)
	}
}

func TestApplyTombstoneSuppressesRow(t *testing.T) {
	st, sch := buildFixture(t)
	doc := &models.SnapshotDoc{
		Scalars:          map[string]any{},
		Tables:           map[string]map[string]models.SnapshotRow{},
		DeletedInstances: []string{"1.3.6.1.2.1.2.2.1.1"},
	}
	if err := snapshot.Apply(st, sch, doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := st.Lookup(models.MustParseOID("1.3.6.1.2.1.2.2.1.2.1")); err != store.ErrNotFound {
		t.Fatalf("expected tombstoned row to be gone, got err=%v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	doc := &models.SnapshotDoc{
		Scalars: map[string]any{"1.3.6.1.2.1.1.4.0": "x"},
		Tables: map[string]map[string]models.SnapshotRow{
			"1.3.6.1.2.1.2.2": {"1": models.SnapshotRow{ColumnValues: map[string]any{"ifDescr": "eth0"}}},
		},
		DeletedInstances: []string{"1.3.6.1.2.1.2.2.1.1.9"},
	}
	if err := snapshot.Save(path, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := snapshot.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Scalars["1.3.6.1.2.1.1.4.0"] != "x" {
		t.Fatalf("round-tripped scalar mismatch: %v", loaded.Scalars)
	}
	if len(loaded.DeletedInstances) != 1 {
		t.Fatalf("round-tripped tombstones = %v", loaded.DeletedInstances)
	}
}

func TestLoadMissingFileReturnsEmptyDoc(t *testing.T) {
	doc, err := snapshot.Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if len(doc.Scalars) != 0 || len(doc.Tables) != 0 {
		t.Fatalf("expected empty doc, got %+v", doc)
	}
}
