package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vpbank/snmp_agent/internal/defaultvalue"
	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/models"
)

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Populate installs every scalar and table-row instance named in sch into
// st, applying the Default Value Resolver wherever a schema object has no
// explicit initial value. It is the store-building half of boot: the type
// registry and schema are already built; this is where they meet the
// store.
func Populate(st *Store, sch *schema.Schema, resolver *defaultvalue.Resolver, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}

	for _, obj := range sch.All() {
		if obj.Kind != models.KindScalar {
			continue
		}
		if !obj.Access.Readable() {
			continue
		}
		typ := sch.Types.Resolve(obj.TypeName)
		value, src := resolveInitial(obj.Initial, typ, obj.Name, resolver)
		entry := &models.StoreEntry{
			OID:           obj.OID.Append(0),
			SyntaxType:    typ,
			Access:        obj.Access,
			Value:         value,
			Source:        src,
			LastWriteTime: time.Now(),
		}
		if err := st.Insert(entry); err != nil {
			return fmt.Errorf("store: populate scalar %s: %w", obj.Name, err)
		}
	}

	for _, obj := range sch.All() {
		if obj.Kind != models.KindTable {
			continue
		}
		if err := populateTable(st, sch, obj, resolver, logger); err != nil {
			return fmt.Errorf("store: populate table %s: %w", obj.Name, err)
		}
	}

	return nil
}

func populateTable(st *Store, sch *schema.Schema, table *models.MibObject, resolver *defaultvalue.Resolver, logger *slog.Logger) error {
	rowObj, ok := sch.ObjectByOID(table.OID.Append(1))
	if !ok {
		logger.Warn("store: table has no matching row object, skipping", "table", table.Name)
		return nil
	}
	indexCols, err := ResolveIndexColumns(sch, rowObj.IndexColumns)
	if err != nil {
		return fmt.Errorf("row %s: %w", rowObj.Name, err)
	}
	columns := sch.Columns(rowObj.Name)

	for _, seedRow := range table.Rows {
		suffix, err := EncodeIndex(seedRow, indexCols, rowObj.ImpliedLast)
		if err != nil {
			return fmt.Errorf("row %s: %w", rowObj.Name, err)
		}
		rowKey := suffix.String()
		for _, col := range columns {
			if !col.Access.Readable() {
				continue
			}
			typ := sch.Types.Resolve(col.TypeName)
			rawValue, present := seedRow[col.Name]
			var value any
			var src models.Source
			if present {
				value, src = rawValue, models.SourceSchemaInitial
			} else {
				value, src = resolveInitial(nil, typ, col.Name, resolver)
			}
			entry := &models.StoreEntry{
				OID:           col.OID.Append(suffix...),
				SyntaxType:    typ,
				Access:        col.Access,
				Value:         value,
				Source:        src,
				LastWriteTime: time.Now(),
				RowKey:        rowKey,
			}
			if err := st.Insert(entry); err != nil {
				return fmt.Errorf("column %s instance %s: %w", col.Name, rowKey, err)
			}
		}
	}
	return nil
}

// ResolveIndexColumns resolves a row's declared index column names to their
// types, in order, for use by EncodeIndex/DecodeIndex.
func ResolveIndexColumns(sch *schema.Schema, names []string) ([]IndexColumn, error) {
	out := make([]IndexColumn, 0, len(names))
	for _, name := range names {
		colObj, ok := sch.Object(name)
		if !ok {
			return nil, fmt.Errorf("index column %q not found in schema", name)
		}
		out = append(out, IndexColumn{Name: name, Type: sch.Types.Resolve(colObj.TypeName)})
	}
	return out, nil
}

// resolveInitial applies a three-tier fallback: explicit schema initial,
// then the Default Value Resolver, then the BaseType fallback.
func resolveInitial(explicit any, typ *models.TypeEntry, objectName string, resolver *defaultvalue.Resolver) (any, models.Source) {
	if explicit != nil {
		return explicit, models.SourceSchemaInitial
	}
	if v, ok := resolver.Resolve(typ, objectName); ok {
		return v, models.SourcePluginDefault
	}
	return defaultvalue.Fallback(typ), models.SourcePluginDefault
}
