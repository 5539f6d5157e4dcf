package dispatcher

import (
	"github.com/vpbank/snmp_agent/internal/ber"
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/internal/store"
	"github.com/vpbank/snmp_agent/models"
)

// handleGetBulk answers a GetBulkRequest (v2c only, already filtered out
// for v1 in HandleDatagram): the first non-repeaters varbinds each get one
// GETNEXT; the rest are walked up to max-repetitions times, interleaved by
// repetition round rather than grouped by varbind, per RFC 3416 §4.2.3.
// Message-size truncation is handled uniformly by Dispatcher.encode after
// this returns.
func (d *Dispatcher) handleGetBulk(msg ber.Message) ber.PDU {
	reqVarbinds := msg.PDU.Varbinds
	k := len(reqVarbinds)

	nonRepeaters := int(msg.PDU.NonRepeaters)
	if nonRepeaters < 0 {
		nonRepeaters = 0
	}
	if nonRepeaters > k {
		nonRepeaters = k
	}
	maxRepetitions := int(msg.PDU.MaxRepetitions)
	if maxRepetitions < 0 {
		maxRepetitions = 0
	}

	cursor := make([]models.OID, k)
	for i, vb := range reqVarbinds {
		cursor[i] = vb.OID
	}
	exhausted := make([]bool, k)

	var out []ber.Varbind

	for i := 0; i < nonRepeaters; i++ {
		out = append(out, d.bulkStep(reqVarbinds[i].OID, cursor, exhausted, i))
	}

	for r := 0; r < maxRepetitions; r++ {
		for i := nonRepeaters; i < k; i++ {
			out = append(out, d.bulkStep(reqVarbinds[i].OID, cursor, exhausted, i))
		}
	}

	return ber.PDU{RequestID: msg.PDU.RequestID, Varbinds: out}
}

// bulkStep advances the walk for repeated varbind i by one GETNEXT,
// returning endOfMibView once that varbind's walk has run off the MIB and
// on every subsequent call for it.
func (d *Dispatcher) bulkStep(originalOID models.OID, cursor []models.OID, exhausted []bool, i int) ber.Varbind {
	if exhausted[i] {
		return exceptionVarbind(originalOID, snmperr.EndOfMibView)
	}
	e, err := d.store.Successor(cursor[i])
	if err == store.ErrNotFound {
		exhausted[i] = true
		return exceptionVarbind(originalOID, snmperr.EndOfMibView)
	}
	cursor[i] = e.OID
	return responseVarbind(e.OID, e)
}
