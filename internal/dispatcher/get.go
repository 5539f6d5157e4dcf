package dispatcher

import (
	"github.com/vpbank/snmp_agent/internal/ber"
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/internal/store"
)

// handleGet answers a GetRequest: one exact lookup per varbind. An absent
// OID fails the whole PDU under v1 (noSuchName, echoing the original
// varbinds) and is represented per-varbind under v2c (noSuchObject or
// noSuchInstance).
func (d *Dispatcher) handleGet(msg ber.Message) ber.PDU {
	out := make([]ber.Varbind, len(msg.PDU.Varbinds))
	for i, vb := range msg.PDU.Varbinds {
		e, err := d.store.Lookup(vb.OID)
		if err == store.ErrNotFound {
			if msg.Version == ber.Version1 {
				return d.errorResponse(msg, snmperr.NoSuchName, int32(i+1))
			}
			out[i] = exceptionVarbind(vb.OID, classifyMissing(d.schema, vb.OID))
			continue
		}
		out[i] = responseVarbind(vb.OID, e)
	}
	return ber.PDU{RequestID: msg.PDU.RequestID, Varbinds: out}
}
