package ber

import (
	"fmt"

	"github.com/vpbank/snmp_agent/internal/snmperr"
)

// PDUType names the SNMP operation carried by a decoded message, taken
// directly from the BER CHOICE tag.
type PDUType int

const (
	GetRequest PDUType = iota
	GetNextRequest
	GetResponse
	SetRequest
	GetBulkRequest
)

func (t PDUType) String() string {
	switch t {
	case GetRequest:
		return "GetRequest"
	case GetNextRequest:
		return "GetNextRequest"
	case GetResponse:
		return "GetResponse"
	case SetRequest:
		return "SetRequest"
	case GetBulkRequest:
		return "GetBulkRequest"
	default:
		return "Unknown"
	}
}

var pduTag = map[PDUType]Tag{
	GetRequest:     TagGetRequest,
	GetNextRequest: TagGetNextRequest,
	GetResponse:    TagGetResponse,
	SetRequest:     TagSetRequest,
	GetBulkRequest: TagGetBulkRequest,
}

var tagPDU = map[Tag]PDUType{
	TagGetRequest:     GetRequest,
	TagGetNextRequest: GetNextRequest,
	TagGetResponse:    GetResponse,
	TagSetRequest:     SetRequest,
	TagGetBulkRequest: GetBulkRequest,
}

// PDU is the decoded request/response body shared by every SNMP operation.
// NonRepeaters and MaxRepetitions are only meaningful when Type is
// GetBulkRequest; they alias the same wire position as ErrorStatus and
// ErrorIndex (RFC 3416 §3).
type PDU struct {
	Type           PDUType
	RequestID      int32
	ErrorStatus    snmperr.Status
	ErrorIndex     int32
	NonRepeaters   int32
	MaxRepetitions int32
	Varbinds       []Varbind
}

// encodeVarbind produces the SEQUENCE { name, value } TLV for one varbind.
func encodeVarbind(v Varbind) ([]byte, error) {
	oidEnc, err := encodeOID(v.OID)
	if err != nil {
		return nil, fmt.Errorf("ber: encode varbind OID %s: %w", v.OID, err)
	}
	valueEnc, err := encodeValue(v)
	if err != nil {
		return nil, fmt.Errorf("ber: encode varbind value for %s: %w", v.OID, err)
	}
	body := append(encodeTLV(TagObjectIdentifier, oidEnc), valueEnc...)
	return encodeTLV(TagSequence, body), nil
}

func decodeVarbind(raw []byte) (Varbind, error) {
	r := newReader(raw)
	tag, oidBytes, err := r.readTLV()
	if err != nil {
		return Varbind{}, fmt.Errorf("ber: varbind OID: %w", err)
	}
	if tag != TagObjectIdentifier {
		return Varbind{}, fmt.Errorf("ber: varbind expected OBJECT IDENTIFIER, got tag 0x%02X", byte(tag))
	}
	oid, err := decodeOID(oidBytes)
	if err != nil {
		return Varbind{}, fmt.Errorf("ber: varbind OID: %w", err)
	}
	valTag, valBytes, err := r.readTLV()
	if err != nil {
		return Varbind{}, fmt.Errorf("ber: varbind value: %w", err)
	}
	wireType, typeName, value, isException, exc, err := decodeValue(valTag, valBytes)
	if err != nil {
		return Varbind{}, fmt.Errorf("ber: varbind %s value: %w", oid, err)
	}
	return Varbind{
		OID: oid, WireType: wireType, TypeName: typeName,
		Value: value, IsException: isException, Exception: exc,
	}, nil
}

// EncodePDU produces the tag+length+value for a full PDU body.
func EncodePDU(p PDU) ([]byte, error) {
	tag, ok := pduTag[p.Type]
	if !ok {
		return nil, fmt.Errorf("ber: unknown PDU type %v", p.Type)
	}

	second := int64(p.ErrorIndex)
	first := int64(p.ErrorStatus)
	if p.Type == GetBulkRequest {
		first = int64(p.NonRepeaters)
		second = int64(p.MaxRepetitions)
	}

	body := encodeTLV(TagInteger, encodeInteger(int64(p.RequestID)))
	body = append(body, encodeTLV(TagInteger, encodeInteger(first))...)
	body = append(body, encodeTLV(TagInteger, encodeInteger(second))...)

	var vbList []byte
	for _, vb := range p.Varbinds {
		enc, err := encodeVarbind(vb)
		if err != nil {
			return nil, err
		}
		vbList = append(vbList, enc...)
	}
	body = append(body, encodeTLV(TagSequence, vbList)...)

	return encodeTLV(tag, body), nil
}

// decodePDU parses a PDU body given its CHOICE tag and raw contents.
func decodePDU(tag Tag, raw []byte) (PDU, error) {
	typ, ok := tagPDU[tag]
	if !ok {
		return PDU{}, fmt.Errorf("ber: unrecognized PDU tag 0x%02X", byte(tag))
	}

	r := newReader(raw)
	idTag, idBytes, err := r.readTLV()
	if err != nil || idTag != TagInteger {
		return PDU{}, fmt.Errorf("ber: PDU request-id: %w", errOrMismatch(err, idTag, TagInteger))
	}
	requestID, err := decodeInteger(idBytes)
	if err != nil {
		return PDU{}, fmt.Errorf("ber: PDU request-id: %w", err)
	}

	firstTag, firstBytes, err := r.readTLV()
	if err != nil || firstTag != TagInteger {
		return PDU{}, fmt.Errorf("ber: PDU error-status/non-repeaters: %w", errOrMismatch(err, firstTag, TagInteger))
	}
	first, err := decodeInteger(firstBytes)
	if err != nil {
		return PDU{}, err
	}

	secondTag, secondBytes, err := r.readTLV()
	if err != nil || secondTag != TagInteger {
		return PDU{}, fmt.Errorf("ber: PDU error-index/max-repetitions: %w", errOrMismatch(err, secondTag, TagInteger))
	}
	second, err := decodeInteger(secondBytes)
	if err != nil {
		return PDU{}, err
	}

	vbTag, vbBytes, err := r.readTLV()
	if err != nil || vbTag != TagSequence {
		return PDU{}, fmt.Errorf("ber: PDU variable-bindings: %w", errOrMismatch(err, vbTag, TagSequence))
	}

	var varbinds []Varbind
	vr := newReader(vbBytes)
	for vr.remaining() > 0 {
		seqTag, seqBytes, err := vr.readTLV()
		if err != nil {
			return PDU{}, fmt.Errorf("ber: variable-bindings entry: %w", err)
		}
		if seqTag != TagSequence {
			return PDU{}, fmt.Errorf("ber: variable-bindings entry: expected SEQUENCE, got 0x%02X", byte(seqTag))
		}
		vb, err := decodeVarbind(seqBytes)
		if err != nil {
			return PDU{}, err
		}
		varbinds = append(varbinds, vb)
	}

	pdu := PDU{Type: typ, RequestID: int32(requestID), Varbinds: varbinds}
	if typ == GetBulkRequest {
		pdu.NonRepeaters = int32(first)
		pdu.MaxRepetitions = int32(second)
	} else {
		pdu.ErrorStatus = snmperr.Status(first)
		pdu.ErrorIndex = int32(second)
	}
	return pdu, nil
}

func errOrMismatch(err error, got, want Tag) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("expected tag 0x%02X, got 0x%02X", byte(want), byte(got))
}
