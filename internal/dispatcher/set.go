package dispatcher

import (
	"github.com/vpbank/snmp_agent/internal/ber"
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/internal/store"
	"github.com/vpbank/snmp_agent/models"
)

// planKind classifies how a single varbind's SET will be carried out once
// every varbind in the PDU has been validated.
type planKind int

const (
	planError planKind = iota
	planSetValue
	planNoop
	planCreateRowTrigger // this varbind is the row's RowStatus, requesting createAndGo/createAndWait
	planColumnForCreate  // this varbind supplies a non-status column of a row being created in the same PDU
	planDestroyRow
)

type setPlan struct {
	kind   planKind
	oid    models.OID
	value  any
	status int64 // target RowStatus after commit, for planCreateRowTrigger

	rowObj  *models.MibObject
	suffix  models.OID
	colName string // for planColumnForCreate

	errStatus snmperr.Status
}

// rowGroup tracks every varbind in one SET PDU that targets the same row
// instance, so a createAndGo/createAndWait trigger can be matched up with
// the other columns supplied alongside it.
type rowGroup struct {
	rowObj           *models.MibObject
	suffix           models.OID
	hasCreateTrigger bool
	createStatus     int64
}

// handleSet implements the validate-all-then-commit-all SET PDU: every
// varbind is checked before any store mutation happens, so a single bad
// varbind leaves the store completely unchanged.
func (d *Dispatcher) handleSet(msg ber.Message) ber.PDU {
	varbinds := msg.PDU.Varbinds
	plans := make([]setPlan, len(varbinds))
	groups := map[string]*rowGroup{}

	// Pass 1: classify each varbind and record row-creation triggers.
	for i, vb := range varbinds {
		col, suffix, isColumn := d.schema.ColumnForOID(vb.OID)
		if !isColumn {
			plans[i] = d.planScalar(vb)
			continue
		}
		rowObj, _ := d.schema.Object(col.ParentRow)
		typ := d.schema.Types.Resolve(col.TypeName)
		key := col.ParentRow + "|" + suffix.String()
		g := groups[key]
		if g == nil {
			g = &rowGroup{rowObj: rowObj, suffix: suffix}
			groups[key] = g
		}

		if typ.Name == "RowStatus" && isCreateRequest(vb.Value) {
			status, _ := asInt64(vb.Value)
			g.hasCreateTrigger = true
			g.createStatus = status
		}

		plans[i] = d.planColumn(vb, col, rowObj, suffix, typ)
	}

	// Pass 2: resolve planColumnForCreate against its group's trigger.
	for i := range plans {
		if plans[i].kind != planColumnForCreate {
			continue
		}
		key := plans[i].rowObj.Name + "|" + plans[i].suffix.String()
		g := groups[key]
		if g == nil || !g.hasCreateTrigger {
			plans[i] = setPlan{kind: planError, errStatus: snmperr.NoCreation}
		}
	}

	// Find the first failing varbind, if any.
	for i, p := range plans {
		if p.kind == planError {
			return d.errorResponse(msg, p.errStatus, int32(i+1))
		}
	}

	d.commitSet(plans, groups)

	out := make([]ber.Varbind, len(varbinds))
	copy(out, varbinds)
	return ber.PDU{RequestID: msg.PDU.RequestID, Varbinds: out}
}

func (d *Dispatcher) planScalar(vb ber.Varbind) setPlan {
	e, err := d.store.Lookup(vb.OID)
	if err == store.ErrNotFound {
		return setPlan{kind: planError, errStatus: snmperr.NoSuchName}
	}
	if !e.Access.Writable() {
		return setPlan{kind: planError, errStatus: snmperr.NoAccess}
	}
	if verr := store.ValidateValue(e.SyntaxType, vb.WireType, vb.Value); verr != nil {
		return setPlan{kind: planError, errStatus: statusOf(verr)}
	}
	return setPlan{kind: planSetValue, oid: vb.OID, value: vb.Value}
}

func (d *Dispatcher) planColumn(vb ber.Varbind, col, rowObj *models.MibObject, suffix models.OID, typ *models.TypeEntry) setPlan {
	e, err := d.store.Lookup(vb.OID)
	rowExists := err == nil

	if rowExists {
		if !e.Access.Writable() {
			return setPlan{kind: planError, errStatus: snmperr.NoAccess}
		}
		if verr := store.ValidateValue(typ, vb.WireType, vb.Value); verr != nil {
			return setPlan{kind: planError, errStatus: statusOf(verr)}
		}
		if typ.Name != "RowStatus" {
			return setPlan{kind: planSetValue, oid: vb.OID, value: vb.Value}
		}
		requested, _ := asInt64(vb.Value)
		current, _ := asInt64(e.Value)
		if requested == int64(store.RowStatusDestroy) {
			return setPlan{kind: planDestroyRow, rowObj: rowObj, suffix: suffix}
		}
		if !validRowStatusTransition(current, requested) {
			return setPlan{kind: planError, errStatus: snmperr.InconsistentValue}
		}
		return setPlan{kind: planSetValue, oid: vb.OID, value: requested}
	}

	// Row (or at least this column instance) does not exist yet.
	if typ.Name == "RowStatus" {
		requested, ok := asInt64(vb.Value)
		if !ok || !typ.IsValidEnum(requested) {
			return setPlan{kind: planError, errStatus: snmperr.WrongValue}
		}
		switch requested {
		case int64(store.RowStatusCreateAndGo):
			return setPlan{kind: planCreateRowTrigger, rowObj: rowObj, suffix: suffix, status: int64(store.RowStatusActive)}
		case int64(store.RowStatusCreateAndWait):
			return setPlan{kind: planCreateRowTrigger, rowObj: rowObj, suffix: suffix, status: int64(store.RowStatusNotReady)}
		case int64(store.RowStatusDestroy):
			return setPlan{kind: planNoop}
		default:
			return setPlan{kind: planError, errStatus: snmperr.InconsistentValue}
		}
	}

	if verr := store.ValidateValue(typ, vb.WireType, vb.Value); verr != nil {
		return setPlan{kind: planError, errStatus: statusOf(verr)}
	}
	return setPlan{kind: planColumnForCreate, rowObj: rowObj, suffix: suffix, colName: col.Name, value: vb.Value}
}

// commitSet applies every plan under a single write-lock hold, so the
// whole PDU's effects become visible atomically.
func (d *Dispatcher) commitSet(plans []setPlan, groups map[string]*rowGroup) {
	columnValues := map[string]map[string]any{} // group key -> column name -> value
	for _, p := range plans {
		if p.kind != planColumnForCreate {
			continue
		}
		key := p.rowObj.Name + "|" + p.suffix.String()
		m := columnValues[key]
		if m == nil {
			m = map[string]any{}
			columnValues[key] = m
		}
		m[p.colName] = p.value
	}

	d.store.WithLock(func(txn *store.Txn) {
		for _, p := range plans {
			switch p.kind {
			case planSetValue:
				txn.SetValue(p.oid, p.value)
			case planDestroyRow:
				txn.DestroyRow(d.schema, p.rowObj, p.suffix)
				d.tombstones.add(p.rowObj.OID.Append(p.suffix...).String())
			case planCreateRowTrigger:
				key := p.rowObj.Name + "|" + p.suffix.String()
				txn.CreateRow(d.schema, p.rowObj, p.suffix, columnValues[key], p.status)
			}
		}
	})
}

func isCreateRequest(v any) bool {
	n, ok := asInt64(v)
	return ok && (n == int64(store.RowStatusCreateAndGo) || n == int64(store.RowStatusCreateAndWait))
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	default:
		return 0, false
	}
}

// validRowStatusTransition permits the manager-driven transitions of RFC
// 2579 §7.7 that make sense once a row already exists: toggling between
// active and notInService, or destroying it. createAndGo/createAndWait are
// only valid while creating a row, never as a transition on one that
// already exists; notReady is agent-assigned, never settable directly.
func validRowStatusTransition(current, requested int64) bool {
	switch current {
	case int64(store.RowStatusActive):
		return requested == int64(store.RowStatusNotInService) || requested == int64(store.RowStatusDestroy)
	case int64(store.RowStatusNotInService):
		return requested == int64(store.RowStatusActive) || requested == int64(store.RowStatusDestroy)
	case int64(store.RowStatusNotReady):
		return requested == int64(store.RowStatusDestroy)
	default:
		return false
	}
}

// statusOf extracts the snmperr.Status carried by a *snmperr.Exception, or
// falls back to genErr for any other error shape.
func statusOf(err error) snmperr.Status {
	if exc, ok := snmperr.AsException(err); ok {
		return exc.Status
	}
	return snmperr.GenErr
}
