package store

import (
	"fmt"

	"github.com/vpbank/snmp_agent/models"
)

// IndexColumn names one column participating in a row's index, together
// with its resolved type, so the encoder/decoder doesn't need to look the
// type up again per row.
type IndexColumn struct {
	Name string
	Type *models.TypeEntry
}

// EncodeIndex builds the instance sub-OID for a row, applying RFC 2578's
// INDEX encoding rules column-by-column in index-column order. impliedLast
// applies only to the last column, and only for OCTET STRING / OBJECT
// IDENTIFIER types.
func EncodeIndex(row models.TableRow, cols []IndexColumn, impliedLast bool) (models.OID, error) {
	var out models.OID
	for i, col := range cols {
		v, present := row[col.Name]
		if !present {
			return nil, fmt.Errorf("index column %q missing from row", col.Name)
		}
		isLast := i == len(cols)-1
		suffix, err := encodeIndexComponent(col, v, isLast && impliedLast)
		if err != nil {
			return nil, fmt.Errorf("index column %q: %w", col.Name, err)
		}
		out = append(out, suffix...)
	}
	return out, nil
}

func encodeIndexComponent(col IndexColumn, v any, omitLength bool) (models.OID, error) {
	if col.Type.Name == "IpAddress" {
		octets, err := ipToOctets(v)
		if err != nil {
			return nil, err
		}
		return models.OID{uint32(octets[0]), uint32(octets[1]), uint32(octets[2]), uint32(octets[3])}, nil
	}

	switch col.Type.BaseType {
	case models.BaseInteger:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative value %d not valid in an OID index", n)
		}
		return models.OID{uint32(n)}, nil

	case models.BaseOctetString:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		out := make(models.OID, 0, len(b)+1)
		if !omitLength {
			out = append(out, uint32(len(b)))
		}
		for _, c := range b {
			out = append(out, uint32(c))
		}
		return out, nil

	case models.BaseObjectIdentifier:
		o, err := toOID(v)
		if err != nil {
			return nil, err
		}
		out := make(models.OID, 0, len(o)+1)
		if !omitLength {
			out = append(out, uint32(len(o)))
		}
		out = append(out, o...)
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported index base type %v", col.Type.BaseType)
	}
}

// DecodeIndex is the exact inverse of EncodeIndex: given the instance
// sub-OID and the row's index column list, recover the per-column values.
// On any shape mismatch it returns an error.
func DecodeIndex(suffix models.OID, cols []IndexColumn, impliedLast bool) (models.TableRow, error) {
	row := make(models.TableRow, len(cols))
	pos := 0
	for i, col := range cols {
		isLast := i == len(cols)-1
		omitLength := isLast && impliedLast

		if col.Type.Name == "IpAddress" {
			if pos+4 > len(suffix) {
				return nil, fmt.Errorf("index column %q: truncated IpAddress", col.Name)
			}
			row[col.Name] = fmt.Sprintf("%d.%d.%d.%d", suffix[pos], suffix[pos+1], suffix[pos+2], suffix[pos+3])
			pos += 4
			continue
		}

		switch col.Type.BaseType {
		case models.BaseInteger:
			if pos >= len(suffix) {
				return nil, fmt.Errorf("index column %q: missing INTEGER component", col.Name)
			}
			row[col.Name] = int64(suffix[pos])
			pos++

		case models.BaseOctetString:
			n, adv, err := readLengthPrefixed(suffix, pos, omitLength, isLast)
			if err != nil {
				return nil, fmt.Errorf("index column %q: %w", col.Name, err)
			}
			pos = adv
			if pos+n > len(suffix) {
				return nil, fmt.Errorf("index column %q: truncated OCTET STRING of length %d", col.Name, n)
			}
			b := make([]byte, n)
			for k := 0; k < n; k++ {
				b[k] = byte(suffix[pos+k])
			}
			row[col.Name] = b
			pos += n

		case models.BaseObjectIdentifier:
			n, adv, err := readLengthPrefixed(suffix, pos, omitLength, isLast)
			if err != nil {
				return nil, fmt.Errorf("index column %q: %w", col.Name, err)
			}
			pos = adv
			if pos+n > len(suffix) {
				return nil, fmt.Errorf("index column %q: truncated OBJECT IDENTIFIER of length %d", col.Name, n)
			}
			sub := make(models.OID, n)
			copy(sub, suffix[pos:pos+n])
			row[col.Name] = sub
			pos += n

		default:
			return nil, fmt.Errorf("unsupported index base type %v", col.Type.BaseType)
		}
	}
	if pos != len(suffix) {
		return nil, fmt.Errorf("index suffix has %d trailing components after decoding", len(suffix)-pos)
	}
	return row, nil
}

// readLengthPrefixed returns the declared length and the position
// immediately following it. When omitLength is true (last column with
// impliedLast), the remaining suffix length is used directly instead of a
// length prefix and the position does not advance.
func readLengthPrefixed(suffix models.OID, pos int, omitLength, isLast bool) (n, newPos int, err error) {
	if omitLength {
		if !isLast {
			return 0, pos, fmt.Errorf("implied length only valid on the last index column")
		}
		return len(suffix) - pos, pos, nil
	}
	if pos >= len(suffix) {
		return 0, pos, fmt.Errorf("missing length prefix")
	}
	return int(suffix[pos]), pos + 1, nil
}

func ipToOctets(v any) ([4]byte, error) {
	switch t := v.(type) {
	case string:
		var a, b, c, d int
		if _, err := fmt.Sscanf(t, "%d.%d.%d.%d", &a, &b, &c, &d); err != nil {
			return [4]byte{}, fmt.Errorf("invalid IpAddress %q: %w", t, err)
		}
		if a < 0 || a > 255 || b < 0 || b > 255 || c < 0 || c > 255 || d < 0 || d > 255 {
			return [4]byte{}, fmt.Errorf("invalid IpAddress octet range %q", t)
		}
		return [4]byte{byte(a), byte(b), byte(c), byte(d)}, nil
	case [4]byte:
		return t, nil
	case []byte:
		if len(t) != 4 {
			return [4]byte{}, fmt.Errorf("IpAddress bytes must be length 4, got %d", len(t))
		}
		return [4]byte{t[0], t[1], t[2], t[3]}, nil
	default:
		return [4]byte{}, fmt.Errorf("unsupported IpAddress value type %T", v)
	}
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("unsupported integer value type %T", v)
	}
}

func toBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("unsupported OCTET STRING value type %T", v)
	}
}

func toOID(v any) (models.OID, error) {
	switch t := v.(type) {
	case models.OID:
		return t, nil
	case []uint32:
		return models.OID(t), nil
	case string:
		return models.ParseOID(t)
	default:
		return nil, fmt.Errorf("unsupported OBJECT IDENTIFIER value type %T", v)
	}
}
