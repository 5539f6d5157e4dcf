// Package snapshot implements State Snapshot I/O: loading and saving
// the mutable-state JSON document (scalar overrides, table row
// instances, and tombstones for destroyed rows).
//
// Saving writes to a temporary file in the same directory and renames it
// into place, so a crash mid-write never corrupts the previous snapshot —
// the same write-temp-then-rename discipline the original CLI's bake
// command uses.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/internal/store"
	"github.com/vpbank/snmp_agent/models"
)

// Load reads and parses the snapshot document at path. A missing file is
// not an error: it means no prior state exists, and the caller should
// proceed with schema-only population.
func Load(path string) (*models.SnapshotDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.SnapshotDoc{
				Scalars: map[string]any{},
				Tables:  map[string]map[string]models.SnapshotRow{},
			}, nil
		}
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	var doc models.SnapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}
	if doc.Scalars == nil {
		doc.Scalars = map[string]any{}
	}
	if doc.Tables == nil {
		doc.Tables = map[string]map[string]models.SnapshotRow{}
	}
	return &doc, nil
}

// Save atomically writes doc to path. The file is rewritten only by the
// bake-state command and by run-agent's save on clean shutdown, never
// automatically on every write.
func Save(path string, doc *models.SnapshotDoc) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("snapshot: rename into place: %w", err)
	}
	return nil
}

// Apply overlays doc onto an already schema-populated store: scalar
// overrides replace the schema-initial value, table rows present in the
// snapshot but absent from the schema's seed rows are created, and
// tombstoned row instances are removed last so that a destroyed row never
// reappears on reload.
func Apply(st *store.Store, sch *schema.Schema, doc *models.SnapshotDoc) error {
	for oidStr, value := range doc.Scalars {
		oid, err := models.ParseOID(oidStr)
		if err != nil {
			return fmt.Errorf("snapshot: invalid scalar OID %q: %w", oidStr, err)
		}
		st.WithLock(func(txn *store.Txn) {
			if e, err := txn.Lookup(oid); err == nil {
				e.Value = value
				e.Source = models.SourceStateLoaded
			}
		})
	}

	for tableOIDStr, rows := range doc.Tables {
		tableOID, err := models.ParseOID(tableOIDStr)
		if err != nil {
			return fmt.Errorf("snapshot: invalid table OID %q: %w", tableOIDStr, err)
		}
		tableObj, ok := sch.ObjectByOID(tableOID)
		if !ok {
			return fmt.Errorf("snapshot: table OID %s not found in schema", tableOIDStr)
		}
		rowObj, ok := sch.ObjectByOID(tableObj.OID.Append(1))
		if !ok {
			return fmt.Errorf("snapshot: no row object for table %s", tableObj.Name)
		}
		cols := sch.Columns(rowObj.Name)

		for suffixStr, row := range rows {
			suffix, err := models.ParseOID(suffixStr)
			if err != nil {
				return fmt.Errorf("snapshot: invalid instance suffix %q: %w", suffixStr, err)
			}
			for _, col := range cols {
				v, present := row.ColumnValues[col.Name]
				if !present {
					continue
				}
				oid := col.OID.Append(suffix...)
				applied := false
				st.WithLock(func(txn *store.Txn) {
					if e, err := txn.Lookup(oid); err == nil {
						e.Value = v
						e.Source = models.SourceStateLoaded
						applied = true
					}
				})
				if !applied {
					typ := sch.Types.Resolve(col.TypeName)
					st.WithLock(func(txn *store.Txn) {
						txn.Insert(&models.StoreEntry{
							OID:        oid,
							SyntaxType: typ,
							Access:     col.Access,
							Value:      v,
							Source:     models.SourceStateLoaded,
							RowKey:     suffix.String(),
						})
					})
				}
			}
		}
	}

	for _, tombstone := range doc.DeletedInstances {
		oid, err := models.ParseOID(tombstone)
		if err != nil {
			return fmt.Errorf("snapshot: invalid tombstone OID %q: %w", tombstone, err)
		}
		applyTombstone(st, sch, oid)
	}

	return nil
}

// applyTombstone destroys whichever row's entry-base OID the tombstone
// names. Tombstones are recorded against the row's entry OID plus instance
// suffix (rowObj.OID.Append(instance...) -- the row's base OID
// before column fan-out), so a reload never has to guess which column the
// operator meant.
func applyTombstone(st *store.Store, sch *schema.Schema, oid models.OID) {
	for _, obj := range sch.All() {
		if obj.Kind != models.KindRow {
			continue
		}
		if !oid.HasPrefix(obj.OID) {
			continue
		}
		suffix := oid.Suffix(obj.OID)
		st.WithLock(func(txn *store.Txn) {
			txn.DestroyRow(sch, obj, suffix)
		})
		return
	}
}

// BuildFromStore walks every entry currently in the store and produces a
// SnapshotDoc suitable for Save. This is the "bake" operation: compact the
// live store back down into one clean snapshot document.
func BuildFromStore(st *store.Store, sch *schema.Schema, tombstones []string) *models.SnapshotDoc {
	doc := &models.SnapshotDoc{
		Scalars:          map[string]any{},
		Tables:           map[string]map[string]models.SnapshotRow{},
		DeletedInstances: append([]string{}, tombstones...),
	}

	for _, obj := range sch.All() {
		if obj.Kind == models.KindScalar && obj.Access.Readable() {
			if e, err := st.Lookup(obj.OID.Append(0)); err == nil {
				doc.Scalars[obj.OID.Append(0).String()] = e.Value
			}
		}
	}

	for _, obj := range sch.All() {
		if obj.Kind != models.KindTable {
			continue
		}
		rowObj, ok := sch.ObjectByOID(obj.OID.Append(1))
		if !ok {
			continue
		}
		cols := sch.Columns(rowObj.Name)
		if len(cols) == 0 {
			continue
		}
		rowsBySuffix := map[string]models.SnapshotRow{}
		for _, e := range st.IterateFrom(cols[0].OID) {
			if !e.OID.HasPrefix(cols[0].OID) {
				break
			}
			suffix := e.OID.Suffix(cols[0].OID).String()
			rowsBySuffix[suffix] = models.SnapshotRow{ColumnValues: map[string]any{cols[0].Name: e.Value}}
		}
		for _, col := range cols[1:] {
			for _, e := range st.IterateFrom(col.OID) {
				if !e.OID.HasPrefix(col.OID) {
					break
				}
				suffix := e.OID.Suffix(col.OID).String()
				if r, ok := rowsBySuffix[suffix]; ok {
					r.ColumnValues[col.Name] = e.Value
				} else {
					rowsBySuffix[suffix] = models.SnapshotRow{ColumnValues: map[string]any{col.Name: e.Value}}
				}
			}
		}
		if len(rowsBySuffix) > 0 {
			doc.Tables[obj.OID.String()] = rowsBySuffix
		}
	}

	return doc
}
