// Package dispatcher implements the Dispatcher: the per-datagram
// state machine that decodes a request, authorizes its community, routes
// it to the OID Store by operation, and encodes the response. It is the
// one place that ties the PDU Codec, Access Control, and OID Store
// together.
package dispatcher

import (
	"log/slog"
	"sync"

	"github.com/vpbank/snmp_agent/internal/access"
	"github.com/vpbank/snmp_agent/internal/ber"
	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/internal/store"
)

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Dispatcher ties the store, schema, and access control together to answer
// one datagram at a time. A single instance is safe for concurrent use:
// every call goes through Store's own locking.
type Dispatcher struct {
	store          *store.Store
	schema         *schema.Schema
	access         *access.Control
	maxMessageSize int
	logger         *slog.Logger

	tombstones *tombstoneLog
}

// New constructs a Dispatcher. maxMessageSize bounds the encoded response
// size (default 1472, the conventional UDP-safe SNMP datagram size).
func New(st *store.Store, sch *schema.Schema, ctl *access.Control, maxMessageSize int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if maxMessageSize <= 0 {
		maxMessageSize = 1472
	}
	return &Dispatcher{
		store: st, schema: sch, access: ctl,
		maxMessageSize: maxMessageSize, logger: logger,
		tombstones: newTombstoneLog(),
	}
}

// Tombstones returns every row instance destroyed during this process's
// lifetime, for the bake-state command to fold into the persisted
// snapshot.
func (d *Dispatcher) Tombstones() []string { return d.tombstones.all() }

// HandleDatagram runs one request through the full DecodeMessage ->
// AuthorizeCommunity -> DispatchPDU -> EncodeResponse pipeline. It returns
// the response bytes to send, or nil if the datagram must be silently
// dropped (malformed input, unknown community) -- never respond to a
// request that didn't pass these gates, to avoid fingerprinting and
// amplification.
func (d *Dispatcher) HandleDatagram(data []byte) []byte {
	msg, err := ber.Decode(data)
	if err != nil {
		d.logger.Debug("dispatcher: dropping malformed datagram", "error", err.Error())
		return nil
	}
	if msg.Version != ber.Version1 && msg.Version != ber.Version2c {
		d.logger.Debug("dispatcher: dropping unsupported version", "version", msg.Version)
		return nil
	}
	if msg.Version == ber.Version1 && msg.PDU.Type == ber.GetBulkRequest {
		d.logger.Debug("dispatcher: dropping GetBulkRequest under SNMPv1")
		return nil
	}

	if !d.access.KnownCommunity(msg.Community) {
		d.logger.Debug("dispatcher: dropping unknown community")
		return nil
	}

	op := access.Read
	if msg.PDU.Type == ber.SetRequest {
		op = access.Write
	}
	if d.access.Authorize(msg.Community, op, nil) != access.Allow {
		return d.encode(msg, d.errorResponse(msg, snmperr.NoAccess, 1))
	}

	var resp ber.PDU
	switch msg.PDU.Type {
	case ber.GetRequest:
		resp = d.handleGet(msg)
	case ber.GetNextRequest:
		resp = d.handleGetNext(msg)
	case ber.GetBulkRequest:
		resp = d.handleGetBulk(msg)
	case ber.SetRequest:
		resp = d.handleSet(msg)
	default:
		d.logger.Debug("dispatcher: dropping unsupported PDU type", "type", msg.PDU.Type)
		return nil
	}

	return d.encode(msg, resp)
}

// encode finishes a response PDU (version-appropriate errorStatus
// collapse, response PDU tag) and serializes the full message, truncating
// trailing varbinds if the encoding exceeds maxMessageSize.
func (d *Dispatcher) encode(req ber.Message, resp ber.PDU) []byte {
	resp.Type = ber.GetResponse
	if req.Version == ber.Version1 {
		resp.ErrorStatus = snmperr.ForV1(resp.ErrorStatus)
	}

	respMsg := ber.Message{Version: req.Version, Community: req.Community, PDU: resp}
	encoded, err := ber.Encode(respMsg)
	if err != nil {
		d.logger.Error("dispatcher: failed to encode response", "error", err.Error())
		return nil
	}

	for len(encoded) > d.maxMessageSize && len(respMsg.PDU.Varbinds) > 0 {
		respMsg.PDU.Varbinds = respMsg.PDU.Varbinds[:len(respMsg.PDU.Varbinds)-1]
		encoded, err = ber.Encode(respMsg)
		if err != nil {
			d.logger.Error("dispatcher: failed to re-encode truncated response", "error", err.Error())
			return nil
		}
	}
	return encoded
}

// errorResponse builds a whole-PDU failure: the original varbinds are
// echoed unchanged, per RFC 3416's rule that an error response carries the
// request's own variable-bindings back.
func (d *Dispatcher) errorResponse(msg ber.Message, status snmperr.Status, errorIndex int32) ber.PDU {
	return ber.PDU{
		RequestID:   msg.PDU.RequestID,
		ErrorStatus: status,
		ErrorIndex:  errorIndex,
		Varbinds:    msg.PDU.Varbinds,
	}
}

// tombstoneLog is a minimal append-only, concurrency-safe set of destroyed
// row instance OIDs, private to this package since only the bake-state
// command needs to read it back out.
type tombstoneLog struct {
	mu      sync.Mutex
	entries []string
}

func newTombstoneLog() *tombstoneLog { return &tombstoneLog{} }

func (t *tombstoneLog) add(oid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, oid)
}

func (t *tombstoneLog) all() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}
