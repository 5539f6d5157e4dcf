package ber_test

import (
	"testing"

	"github.com/vpbank/snmp_agent/internal/ber"
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/models"
)

func TestMessageRoundTripGetRequest(t *testing.T) {
	msg := ber.Message{
		Version:   ber.Version2c,
		Community: "public",
		PDU: ber.PDU{
			Type:      ber.GetRequest,
			RequestID: 42,
			Varbinds: []ber.Varbind{
				{OID: models.MustParseOID("1.3.6.1.2.1.1.1.0"), WireType: models.BaseInteger, TypeName: "NULL"},
			},
		},
	}
	encoded, err := ber.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := ber.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Version != ber.Version2c || decoded.Community != "public" {
		t.Fatalf("envelope mismatch: %+v", decoded)
	}
	if decoded.PDU.Type != ber.GetRequest || decoded.PDU.RequestID != 42 {
		t.Fatalf("PDU mismatch: %+v", decoded.PDU)
	}
	if len(decoded.PDU.Varbinds) != 1 || !decoded.PDU.Varbinds[0].OID.Equal(models.MustParseOID("1.3.6.1.2.1.1.1.0")) {
		t.Fatalf("varbinds mismatch: %+v", decoded.PDU.Varbinds)
	}
}

func TestVarbindRoundTripOctetStringAndInteger(t *testing.T) {
	msg := ber.Message{
		Version:   ber.Version1,
		Community: "public",
		PDU: ber.PDU{
			Type:      ber.GetResponse,
			RequestID: 7,
			Varbinds: []ber.Varbind{
				{OID: models.MustParseOID("1.3.6.1.2.1.1.1.0"), WireType: models.BaseOctetString, Value: "hello agent"},
				{OID: models.MustParseOID("1.3.6.1.2.1.1.7.0"), WireType: models.BaseInteger, Value: int64(72)},
				{OID: models.MustParseOID("1.3.6.1.2.1.1.7.1"), WireType: models.BaseInteger, Value: int64(-5)},
			},
		},
	}
	encoded, err := ber.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := ber.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	vbs := decoded.PDU.Varbinds
	if string(vbs[0].Value.([]byte)) != "hello agent" {
		t.Fatalf("varbind[0] = %v", vbs[0].Value)
	}
	if vbs[1].Value != int64(72) {
		t.Fatalf("varbind[1] = %v", vbs[1].Value)
	}
	if vbs[2].Value != int64(-5) {
		t.Fatalf("varbind[2] = %v", vbs[2].Value)
	}
}

func TestVarbindRoundTripApplicationTypes(t *testing.T) {
	msg := ber.Message{
		Version:   ber.Version2c,
		Community: "public",
		PDU: ber.PDU{
			Type:      ber.GetResponse,
			RequestID: 1,
			Varbinds: []ber.Varbind{
				{OID: models.MustParseOID("1.3.6.1.2.1.4.20.1.1.10.0.0.1"), TypeName: "IpAddress", Value: "10.0.0.1"},
				{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.10.1"), TypeName: "Counter32", Value: int64(4294967295)},
				{OID: models.MustParseOID("1.3.6.1.2.1.1.3.0"), TypeName: "TimeTicks", Value: int64(12345)},
				{OID: models.MustParseOID("1.3.6.1.2.1.31.1.1.1.6.1"), TypeName: "Counter64", Value: int64(1) << 40},
			},
		},
	}
	encoded, err := ber.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := ber.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	vbs := decoded.PDU.Varbinds
	if vbs[0].Value != "10.0.0.1" || vbs[0].TypeName != "IpAddress" {
		t.Fatalf("IpAddress round-trip = %+v", vbs[0])
	}
	if vbs[1].Value != int64(4294967295) {
		t.Fatalf("Counter32 round-trip = %+v", vbs[1])
	}
	if vbs[2].Value != int64(12345) {
		t.Fatalf("TimeTicks round-trip = %+v", vbs[2])
	}
	if vbs[3].Value != int64(1)<<40 {
		t.Fatalf("Counter64 round-trip = %+v", vbs[3])
	}
}

func TestVarbindExceptionValuesRoundTrip(t *testing.T) {
	msg := ber.Message{
		Version:   ber.Version2c,
		Community: "public",
		PDU: ber.PDU{
			Type:      ber.GetResponse,
			RequestID: 9,
			Varbinds: []ber.Varbind{
				{OID: models.MustParseOID("1.3.6.1.2.1.99.0"), IsException: true, Exception: snmperr.NoSuchObject},
				{OID: models.MustParseOID("1.3.6.1.2.1.99.1"), IsException: true, Exception: snmperr.EndOfMibView},
			},
		},
	}
	encoded, err := ber.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := ber.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.PDU.Varbinds[0].IsException || decoded.PDU.Varbinds[0].Exception != snmperr.NoSuchObject {
		t.Fatalf("varbind[0] exception = %+v", decoded.PDU.Varbinds[0])
	}
	if !decoded.PDU.Varbinds[1].IsException || decoded.PDU.Varbinds[1].Exception != snmperr.EndOfMibView {
		t.Fatalf("varbind[1] exception = %+v", decoded.PDU.Varbinds[1])
	}
}

func TestGetBulkRequestDecodesNonRepeatersAndMaxRepetitions(t *testing.T) {
	msg := ber.Message{
		Version:   ber.Version2c,
		Community: "public",
		PDU: ber.PDU{
			Type:           ber.GetBulkRequest,
			RequestID:      3,
			NonRepeaters:   1,
			MaxRepetitions: 10,
			Varbinds: []ber.Varbind{
				{OID: models.MustParseOID("1.3.6.1.2.1.1.1.0")},
				{OID: models.MustParseOID("1.3.6.1.2.1.2.2.1.1")},
			},
		},
	}
	encoded, err := ber.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := ber.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.PDU.NonRepeaters != 1 || decoded.PDU.MaxRepetitions != 10 {
		t.Fatalf("bulk params mismatch: %+v", decoded.PDU)
	}
}

func TestDecodeTruncatedMessageErrors(t *testing.T) {
	if _, err := ber.Decode([]byte{0x30, 0x7F, 0x02, 0x01}); err == nil {
		t.Fatal("expected error decoding truncated message")
	}
}

func TestEncodeIntegerMinimalLength(t *testing.T) {
	cases := []struct {
		n    int64
		want int
	}{
		{0, 1}, {127, 1}, {128, 2}, {-1, 1}, {-128, 1}, {-129, 2}, {32767, 2}, {32768, 3},
	}
	for _, c := range cases {
		msg := ber.Message{
			Version: ber.Version1, Community: "x",
			PDU: ber.PDU{Type: ber.GetResponse, RequestID: int32(c.n)},
		}
		encoded, err := ber.Encode(msg)
		if err != nil {
			t.Fatalf("Encode(%d): %v", c.n, err)
		}
		decoded, err := ber.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%d): %v", c.n, err)
		}
		if decoded.PDU.RequestID != int32(c.n) {
			t.Fatalf("round-trip %d -> %d", c.n, decoded.PDU.RequestID)
		}
		// Everything but the request-id's content octets is a fixed 20 bytes
		// for this message shape.
		if len(encoded) != 20+c.want {
			t.Fatalf("Encode(%d) is %d bytes, want %d", c.n, len(encoded), 20+c.want)
		}
	}
}
