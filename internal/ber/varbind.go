package ber

import (
	"fmt"

	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/models"
)

// Varbind is one decoded or to-be-encoded variable binding. Exactly one of
// Value or Exception is meaningful: IsException distinguishes a v2c
// noSuchObject/noSuchInstance/endOfMibView placeholder from a real value.
type Varbind struct {
	OID         models.OID
	WireType    models.BaseType
	TypeName    string // "IpAddress", "Counter32", ... when WireType alone is ambiguous
	Value       any
	IsException bool
	Exception   snmperr.ExceptionValue
}

// encodeValue produces the tag+value TLV for a varbind's value, choosing
// the application tag from TypeName when the base type alone does not
// determine the wire encoding (OCTET STRING vs. IpAddress, INTEGER vs. the
// Counter/Gauge/TimeTicks family).
func encodeValue(v Varbind) ([]byte, error) {
	if v.IsException {
		switch v.Exception {
		case snmperr.NoSuchObject:
			return encodeTLV(TagNoSuchObject, nil), nil
		case snmperr.NoSuchInstance:
			return encodeTLV(TagNoSuchInstance, nil), nil
		case snmperr.EndOfMibView:
			return encodeTLV(TagEndOfMibView, nil), nil
		default:
			return nil, fmt.Errorf("ber: unknown exception value %d", v.Exception)
		}
	}

	switch v.TypeName {
	case "IpAddress":
		b, err := ipBytes(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagIPAddress, b), nil
	case "Counter32":
		n, err := toUint32(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagCounter32, encodeUnsigned(n)), nil
	case "Gauge32":
		n, err := toUint32(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagGauge32, encodeUnsigned(n)), nil
	case "Unsigned32":
		n, err := toUint32(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagUnsigned32, encodeUnsigned(n)), nil
	case "TimeTicks":
		n, err := toUint32(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagTimeTicks, encodeUnsigned(n)), nil
	case "Counter64":
		n, err := toUint64(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagCounter64, encodeUnsigned64(n)), nil
	case "Opaque":
		b, err := toBytes(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagOpaque, b), nil
	case "NULL":
		return encodeTLV(TagNull, nil), nil
	}

	switch v.WireType {
	case models.BaseInteger:
		n, err := toInt64Value(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagInteger, encodeInteger(n)), nil
	case models.BaseOctetString:
		b, err := toBytes(v.Value)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagOctetString, b), nil
	case models.BaseObjectIdentifier:
		oid, err := toOIDValue(v.Value)
		if err != nil {
			return nil, err
		}
		enc, err := encodeOID(oid)
		if err != nil {
			return nil, err
		}
		return encodeTLV(TagObjectIdentifier, enc), nil
	default:
		return encodeTLV(TagNull, nil), nil
	}
}

// decodeValue parses a value TLV (tag + raw bytes already separated) into
// a Varbind's Value/WireType/TypeName/exception fields.
func decodeValue(tag Tag, raw []byte) (wireType models.BaseType, typeName string, value any, isException bool, exc snmperr.ExceptionValue, err error) {
	switch tag {
	case TagInteger:
		n, e := decodeInteger(raw)
		return models.BaseInteger, "INTEGER", n, false, 0, e
	case TagOctetString:
		return models.BaseOctetString, "OCTET STRING", append([]byte{}, raw...), false, 0, nil
	case TagNull:
		return models.BaseInteger, "NULL", nil, false, 0, nil
	case TagObjectIdentifier:
		oid, e := decodeOID(raw)
		return models.BaseObjectIdentifier, "OBJECT IDENTIFIER", oid, false, 0, e
	case TagIPAddress:
		if len(raw) != 4 {
			return 0, "", nil, false, 0, fmt.Errorf("ber: IpAddress must be 4 octets, got %d", len(raw))
		}
		ip := fmt.Sprintf("%d.%d.%d.%d", raw[0], raw[1], raw[2], raw[3])
		return models.BaseOctetString, "IpAddress", ip, false, 0, nil
	case TagCounter32:
		n, e := decodeUnsigned(raw)
		return models.BaseInteger, "Counter32", int64(n), false, 0, e
	case TagGauge32: // also TagUnsigned32, same wire tag
		n, e := decodeUnsigned(raw)
		return models.BaseInteger, "Gauge32", int64(n), false, 0, e
	case TagTimeTicks:
		n, e := decodeUnsigned(raw)
		return models.BaseInteger, "TimeTicks", int64(n), false, 0, e
	case TagOpaque:
		return models.BaseOctetString, "Opaque", append([]byte{}, raw...), false, 0, nil
	case TagCounter64:
		n, e := decodeUnsigned64(raw)
		return models.BaseInteger, "Counter64", int64(n), false, 0, e
	case TagNoSuchObject:
		return 0, "", nil, true, snmperr.NoSuchObject, nil
	case TagNoSuchInstance:
		return 0, "", nil, true, snmperr.NoSuchInstance, nil
	case TagEndOfMibView:
		return 0, "", nil, true, snmperr.EndOfMibView, nil
	default:
		return 0, "", nil, false, 0, fmt.Errorf("ber: unsupported value tag 0x%02X", byte(tag))
	}
}

func toInt64Value(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("ber: cannot encode %T as INTEGER", v)
	}
}

func toUint32(v any) (uint32, error) {
	switch x := v.(type) {
	case int64:
		return uint32(x), nil
	case uint32:
		return x, nil
	case uint64:
		return uint32(x), nil
	case int:
		return uint32(x), nil
	default:
		return 0, fmt.Errorf("ber: cannot encode %T as an unsigned 32-bit value", v)
	}
}

func toUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case int64:
		return uint64(x), nil
	case uint64:
		return x, nil
	case int:
		return uint64(x), nil
	default:
		return 0, fmt.Errorf("ber: cannot encode %T as Counter64", v)
	}
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	default:
		return nil, fmt.Errorf("ber: cannot encode %T as OCTET STRING", v)
	}
}

func toOIDValue(v any) (models.OID, error) {
	switch x := v.(type) {
	case models.OID:
		return x, nil
	case []uint32:
		return models.OID(x), nil
	case string:
		return models.ParseOID(x)
	default:
		return nil, fmt.Errorf("ber: cannot encode %T as OBJECT IDENTIFIER", v)
	}
}

func ipBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case string:
		oct, err := parseDottedIP(x)
		if err != nil {
			return nil, err
		}
		return oct, nil
	case [4]byte:
		return x[:], nil
	case []byte:
		if len(x) != 4 {
			return nil, fmt.Errorf("ber: IpAddress must be 4 octets, got %d", len(x))
		}
		return x, nil
	default:
		return nil, fmt.Errorf("ber: cannot encode %T as IpAddress", v)
	}
}

func parseDottedIP(s string) ([]byte, error) {
	var a, b, c, d int
	n, err := fmt.Sscanf(s, "%d.%d.%d.%d", &a, &b, &c, &d)
	if err != nil || n != 4 {
		return nil, fmt.Errorf("ber: invalid IpAddress %q", s)
	}
	for _, v := range []int{a, b, c, d} {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("ber: invalid IpAddress %q", s)
		}
	}
	return []byte{byte(a), byte(b), byte(c), byte(d)}, nil
}
