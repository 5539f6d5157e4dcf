package dispatcher_test

import (
	"testing"
	"time"

	"github.com/vpbank/snmp_agent/internal/access"
	"github.com/vpbank/snmp_agent/internal/ber"
	"github.com/vpbank/snmp_agent/internal/defaultvalue"
	"github.com/vpbank/snmp_agent/internal/dispatcher"
	"github.com/vpbank/snmp_agent/internal/mibtype"
	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/internal/store"
	"github.com/vpbank/snmp_agent/models"
)

func buildFixture(t *testing.T) *dispatcher.Dispatcher {
	t.Helper()

	types := mibtype.Build([]mibtype.Def{
		{
			Name:    "RowStatus",
			AliasOf: "INTEGER",
			Enumeration: []models.NamedValue{
				{Name: "active", Value: 1},
				{Name: "notInService", Value: 2},
				{Name: "notReady", Value: 3},
				{Name: "createAndGo", Value: 4},
				{Name: "createAndWait", Value: 5},
				{Name: "destroy", Value: 6},
			},
		},
	}, nil)

	doc := models.SchemaDoc{
		MibName: "TEST-MIB",
		Objects: map[string]models.SchemaObjectDoc{
			"sysContact": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 1, 4}, Type: "OCTET STRING", Kind: "scalar",
				Access: "read-write", Initial: "ops@example.com",
			},
			"sysDescr": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 1, 1}, Type: "OCTET STRING", Kind: "scalar",
				Access: "read-only", Initial: "Test Agent",
			},
			"ifTable":  {OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2}, Kind: "table", Access: "not-accessible"},
			"ifEntry":  {
				OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2, 1}, Kind: "row", Access: "not-accessible",
				Indexes: []string{"ifIndex"},
				Rows: []map[string]any{
					{"ifIndex": int64(1), "ifDescr": "eth0", "ifRowStatus": int64(1)},
				},
			},
			"ifIndex": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2, 1, 1}, Type: "INTEGER", Kind: "column",
				Access: "read-only", ParentRow: "ifEntry",
			},
			"ifDescr": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2, 1, 2}, Type: "OCTET STRING", Kind: "column",
				Access: "read-write", ParentRow: "ifEntry",
			},
			"ifRowStatus": {
				OID: []uint32{1, 3, 6, 1, 2, 1, 2, 2, 1, 3}, Type: "RowStatus", Kind: "column",
				Access: "read-write", ParentRow: "ifEntry",
			},
		},
	}
	tableObj := doc.Objects["ifTable"]
	tableObj.Rows = doc.Objects["ifEntry"].Rows
	doc.Objects["ifTable"] = tableObj
	rowObj := doc.Objects["ifEntry"]
	rowObj.Rows = nil
	doc.Objects["ifEntry"] = rowObj

	sch, err := schema.Build([]models.SchemaDoc{doc}, types)
	if err != nil {
		t.Fatalf("schema.Build: %v", err)
	}

	st := store.New(models.MustParseOID("1.3.6.1.2.1.1.3.0"), time.Now())
	if err := store.Populate(st, sch, defaultvalue.New(nil), nil); err != nil {
		t.Fatalf("store.Populate: %v", err)
	}

	ctl := access.New([]string{"public"}, []string{"private"})
	return dispatcher.New(st, sch, ctl, 1472, nil)
}

func request(version ber.Version, community string, pdu ber.PDU) []byte {
	encoded, err := ber.Encode(ber.Message{Version: version, Community: community, PDU: pdu})
	if err != nil {
		panic(err)
	}
	return encoded
}

func mustDecode(t *testing.T, data []byte) ber.Message {
	t.Helper()
	msg, err := ber.Decode(data)
	if err != nil {
		t.Fatalf("ber.Decode: %v", err)
	}
	return msg
}

func TestHandleGetReturnsScalarValue(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "public", ber.PDU{
		Type: ber.GetRequest, RequestID: 1,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.1.1.0")}},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if resp.PDU.ErrorStatus != snmperr.NoError {
		t.Fatalf("errorStatus = %v", resp.PDU.ErrorStatus)
	}
	if string(resp.PDU.Varbinds[0].Value.([]byte)) != "Test Agent" {
		t.Fatalf("value = %v", resp.PDU.Varbinds[0].Value)
	}
}

func TestHandleGetUnknownCommunityDropsDatagram(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "bogus", ber.PDU{
		Type: ber.GetRequest, RequestID: 1,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.1.1.0")}},
	})
	if out := d.HandleDatagram(req); out != nil {
		t.Fatalf("expected nil response for unknown community, got %d bytes", len(out))
	}
}

func TestHandleGetV2cMissingInstanceReturnsNoSuchInstance(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "public", ber.PDU{
		Type: ber.GetRequest, RequestID: 1,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.2.99")}},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if !resp.PDU.Varbinds[0].IsException || resp.PDU.Varbinds[0].Exception != snmperr.NoSuchInstance {
		t.Fatalf("exception = %+v", resp.PDU.Varbinds[0])
	}
}

func TestHandleGetV1MissingAbortsWholePDU(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version1, "public", ber.PDU{
		Type: ber.GetRequest, RequestID: 7,
		Varbinds: []ber.Varbind{
			{OID: models.MustParseOID("1.3.6.1.2.1.1.1.0")},
			{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.2.99")},
		},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if resp.PDU.ErrorStatus != snmperr.NoSuchName || resp.PDU.ErrorIndex != 2 {
		t.Fatalf("errorStatus=%v errorIndex=%d", resp.PDU.ErrorStatus, resp.PDU.ErrorIndex)
	}
}

func TestHandleGetNextWalksOrder(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "public", ber.PDU{
		Type: ber.GetNextRequest, RequestID: 1,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("0.0")}},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if !resp.PDU.Varbinds[0].OID.Equal(models.MustParseOID("1.3.6.1.2.1.1.1.0")) {
		t.Fatalf("first successor = %s", resp.PDU.Varbinds[0].OID)
	}
}

func TestHandleGetBulkInterleavesRepeaters(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "public", ber.PDU{
		Type: ber.GetBulkRequest, RequestID: 1,
		NonRepeaters: 0, MaxRepetitions: 2,
		Varbinds: []ber.Varbind{
			{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.1")}, // ifIndex column
			{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.2")}, // ifDescr column
		},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if len(resp.PDU.Varbinds) != 4 {
		t.Fatalf("expected 4 varbinds (2 repeaters x 2 rounds), got %d", len(resp.PDU.Varbinds))
	}
	// round 0: ifIndex.1 then ifDescr.1; round 1: each repeater continues to
	// the lexicographic successor, so ifIndex.1 is followed by ifDescr.1.
	if !resp.PDU.Varbinds[0].OID.Equal(models.MustParseOID("1.3.6.1.2.1.2.2.1.1.1")) {
		t.Fatalf("round0[0] = %s", resp.PDU.Varbinds[0].OID)
	}
	if !resp.PDU.Varbinds[1].OID.Equal(models.MustParseOID("1.3.6.1.2.1.2.2.1.2.1")) {
		t.Fatalf("round0[1] = %s", resp.PDU.Varbinds[1].OID)
	}
	if resp.PDU.Varbinds[2].IsException || !resp.PDU.Varbinds[2].OID.Equal(models.MustParseOID("1.3.6.1.2.1.2.2.1.2.1")) {
		t.Fatalf("round1[0] = %+v, want ifDescr.1", resp.PDU.Varbinds[2])
	}
}

func TestHandleSetScalarWritesValue(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "private", ber.PDU{
		Type: ber.SetRequest, RequestID: 1,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.1.4.0"), WireType: models.BaseOctetString, Value: []byte("noc@example.com")}},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if resp.PDU.ErrorStatus != snmperr.NoError {
		t.Fatalf("errorStatus = %v", resp.PDU.ErrorStatus)
	}

	get := request(ber.Version2c, "public", ber.PDU{
		Type: ber.GetRequest, RequestID: 2,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.1.4.0")}},
	})
	getResp := mustDecode(t, d.HandleDatagram(get))
	if string(getResp.PDU.Varbinds[0].Value.([]byte)) != "noc@example.com" {
		t.Fatalf("sysContact after SET = %v", getResp.PDU.Varbinds[0].Value)
	}
}

func TestHandleSetReadOnlyCommunityDenied(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "public", ber.PDU{
		Type: ber.SetRequest, RequestID: 1,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.1.4.0"), WireType: models.BaseOctetString, Value: []byte("x")}},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if resp.PDU.ErrorStatus != snmperr.NoAccess {
		t.Fatalf("errorStatus = %v, want noAccess", resp.PDU.ErrorStatus)
	}
}

func TestHandleSetCreateAndGoInstallsRow(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "private", ber.PDU{
		Type: ber.SetRequest, RequestID: 1,
		Varbinds: []ber.Varbind{
			{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.3.5"), WireType: models.BaseInteger, Value: int64(4)},
			{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.2.5"), WireType: models.BaseOctetString, Value: []byte("eth5")},
		},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if resp.PDU.ErrorStatus != snmperr.NoError {
		t.Fatalf("errorStatus = %v", resp.PDU.ErrorStatus)
	}

	get := request(ber.Version2c, "public", ber.PDU{
		Type: ber.GetRequest, RequestID: 2,
		Varbinds: []ber.Varbind{
			{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.2.5")},
			{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.3.5")},
		},
	})
	getResp := mustDecode(t, d.HandleDatagram(get))
	if string(getResp.PDU.Varbinds[0].Value.([]byte)) != "eth5" {
		t.Fatalf("ifDescr.5 = %v", getResp.PDU.Varbinds[0].Value)
	}
	if getResp.PDU.Varbinds[1].Value.(int64) != 1 {
		t.Fatalf("ifRowStatus.5 = %v, want active(1)", getResp.PDU.Varbinds[1].Value)
	}
}

func TestHandleSetColumnWithoutRowStatusFailsNoCreation(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "private", ber.PDU{
		Type: ber.SetRequest, RequestID: 1,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.2.9"), WireType: models.BaseOctetString, Value: []byte("eth9")}},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if resp.PDU.ErrorStatus != snmperr.NoCreation {
		t.Fatalf("errorStatus = %v, want noCreation", resp.PDU.ErrorStatus)
	}
}

func TestHandleSetDestroyRemovesRowAndRecordsTombstone(t *testing.T) {
	d := buildFixture(t)
	req := request(ber.Version2c, "private", ber.PDU{
		Type: ber.SetRequest, RequestID: 1,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.3.1"), WireType: models.BaseInteger, Value: int64(6)}},
	})
	resp := mustDecode(t, d.HandleDatagram(req))
	if resp.PDU.ErrorStatus != snmperr.NoError {
		t.Fatalf("errorStatus = %v", resp.PDU.ErrorStatus)
	}

	get := request(ber.Version2c, "public", ber.PDU{
		Type: ber.GetRequest, RequestID: 2,
		Varbinds: []ber.Varbind{{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.2.1")}},
	})
	getResp := mustDecode(t, d.HandleDatagram(get))
	if !getResp.PDU.Varbinds[0].IsException {
		t.Fatal("expected ifDescr.1 to be gone after destroy")
	}
	if len(d.Tombstones()) != 1 {
		t.Fatalf("tombstones = %v, want 1 entry", d.Tombstones())
	}
}
