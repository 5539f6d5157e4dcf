package dispatcher

import (
	"github.com/vpbank/snmp_agent/internal/ber"
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/internal/store"
)

// handleGetNext answers a GetNextRequest: one successor lookup per
// varbind. Running off the end of the MIB fails the whole PDU under v1
// (noSuchName, echoing the original varbinds) and is represented
// per-varbind as endOfMibView under v2c.
func (d *Dispatcher) handleGetNext(msg ber.Message) ber.PDU {
	out := make([]ber.Varbind, len(msg.PDU.Varbinds))
	for i, vb := range msg.PDU.Varbinds {
		e, err := d.store.Successor(vb.OID)
		if err == store.ErrNotFound {
			if msg.Version == ber.Version1 {
				return d.errorResponse(msg, snmperr.NoSuchName, int32(i+1))
			}
			out[i] = exceptionVarbind(vb.OID, snmperr.EndOfMibView)
			continue
		}
		out[i] = responseVarbind(e.OID, e)
	}
	return ber.PDU{RequestID: msg.PDU.RequestID, Varbinds: out}
}
