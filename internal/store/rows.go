package store

import (
	"time"

	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/models"
)

// RowStatus textual-convention values (RFC 2579 §7.7), reproduced here
// rather than looked up through the type registry because the Dispatcher's
// row lifecycle state machine needs them as Go constants, not as runtime
// enumeration strings.
const (
	RowStatusActive        = 1
	RowStatusNotInService  = 2
	RowStatusNotReady      = 3
	RowStatusCreateAndGo   = 4
	RowStatusCreateAndWait = 5
	RowStatusDestroy       = 6
)

// RowExists reports whether any column of the given row instance is
// present in the store.
func (t *Txn) RowExists(rowObj *models.MibObject, sch *schema.Schema, rowKey string) bool {
	cols := sch.Columns(rowObj.Name)
	suffix := rowKeyOID(rowKey)
	for _, col := range cols {
		if _, ok := t.s.byOID[col.OID.Append(suffix...).String()]; ok {
			return true
		}
	}
	return false
}

// rowKeyOID recovers the instance suffix OID from its cached string form.
// RowKey is stored as the dotted form produced by OID.String(), so parsing
// it back is exact.
func rowKeyOID(rowKey string) models.OID {
	o, err := models.ParseOID(rowKey)
	if err != nil {
		return models.OID{}
	}
	return o
}

// CreateRow installs a column entry for every accessible column of the
// row, using columnValues where supplied and the BaseType-driven fallback
// otherwise, and the RowStatus column set to the given status. Intended
// to run inside Store.WithLock so the whole row appears atomically.
func (t *Txn) CreateRow(sch *schema.Schema, rowObj *models.MibObject, suffix models.OID, columnValues map[string]any, status int64) error {
	rowKey := suffix.String()
	cols := sch.Columns(rowObj.Name)
	for _, col := range cols {
		if !col.Access.Readable() {
			continue
		}
		typ := sch.Types.Resolve(col.TypeName)
		var value any
		if typ.Name == "RowStatus" {
			value = status
		} else if v, ok := columnValues[col.Name]; ok {
			value = v
		} else {
			value = zeroValue(typ)
		}
		entry := &models.StoreEntry{
			OID:           col.OID.Append(suffix...),
			SyntaxType:    typ,
			Access:        col.Access,
			Value:         value,
			Source:        models.SourceRuntimeSet,
			LastWriteTime: time.Now(),
			RowKey:        rowKey,
		}
		if err := t.Insert(entry); err != nil {
			return err
		}
	}
	return nil
}

// DestroyRow removes every column entry belonging to the given row
// instance.
func (t *Txn) DestroyRow(sch *schema.Schema, rowObj *models.MibObject, suffix models.OID) {
	cols := sch.Columns(rowObj.Name)
	for _, col := range cols {
		t.Remove(col.OID.Append(suffix...))
	}
}

func zeroValue(typ *models.TypeEntry) any {
	switch typ.BaseType {
	case models.BaseInteger:
		return int64(0)
	case models.BaseOctetString:
		return []byte{}
	case models.BaseObjectIdentifier:
		return models.OID{0, 0}
	default:
		return int64(0)
	}
}
