package ber

import "fmt"

// Version identifies the SNMP protocol version carried in a message
// envelope (RFC 1157 §4.1, RFC 3416 §2).
type Version int

const (
	Version1  Version = 0
	Version2c Version = 1
)

// Message is a decoded or to-be-encoded SNMP message: the version and
// community envelope plus one PDU.
type Message struct {
	Version   Version
	Community string
	PDU       PDU
}

// Decode parses a full UDP datagram into a Message. Any malformed input
// returns an error; the caller (Transport/Dispatcher) is responsible for
// logging and silently dropping it rather than crashing or responding.
func Decode(data []byte) (Message, error) {
	r := newReader(data)
	topTag, topBytes, err := r.readTLV()
	if err != nil {
		return Message{}, fmt.Errorf("ber: message envelope: %w", err)
	}
	if topTag != TagSequence {
		return Message{}, fmt.Errorf("ber: message envelope: expected SEQUENCE, got 0x%02X", byte(topTag))
	}

	mr := newReader(topBytes)
	verTag, verBytes, err := mr.readTLV()
	if err != nil || verTag != TagInteger {
		return Message{}, fmt.Errorf("ber: message version: %w", errOrMismatch(err, verTag, TagInteger))
	}
	ver, err := decodeInteger(verBytes)
	if err != nil {
		return Message{}, fmt.Errorf("ber: message version: %w", err)
	}

	commTag, commBytes, err := mr.readTLV()
	if err != nil || commTag != TagOctetString {
		return Message{}, fmt.Errorf("ber: message community: %w", errOrMismatch(err, commTag, TagOctetString))
	}

	pduTag, pduBytes, err := mr.readTLV()
	if err != nil {
		return Message{}, fmt.Errorf("ber: message PDU: %w", err)
	}
	pdu, err := decodePDU(pduTag, pduBytes)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Version:   Version(ver),
		Community: string(commBytes),
		PDU:       pdu,
	}, nil
}

// Encode produces the full wire-format datagram for m.
func Encode(m Message) ([]byte, error) {
	pduEnc, err := EncodePDU(m.PDU)
	if err != nil {
		return nil, err
	}
	body := encodeTLV(TagInteger, encodeInteger(int64(m.Version)))
	body = append(body, encodeTLV(TagOctetString, []byte(m.Community))...)
	body = append(body, pduEnc...)
	return encodeTLV(TagSequence, body), nil
}
