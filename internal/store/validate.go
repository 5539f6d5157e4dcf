package store

import (
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/models"
)

// ValidateValue checks a candidate SET value against its type entry: the
// wire type must match the entry's syntax, and the value must satisfy any
// constraint or enumeration the type declares. Lookup and access checks
// are the caller's responsibility, since they differ between "SET on an
// existing entry" and "SET on a RowStatus column orchestrating row
// creation".
func ValidateValue(typ *models.TypeEntry, wireType models.BaseType, value any) error {
	if wireType != typ.BaseType {
		return snmperr.New(snmperr.WrongType, "wire type does not match entry syntax")
	}

	switch typ.BaseType {
	case models.BaseInteger:
		n, err := toInt64(value)
		if err != nil {
			return snmperr.New(snmperr.WrongType, err.Error())
		}
		if len(typ.Enumeration) > 0 {
			if !typ.IsValidEnum(n) {
				return snmperr.New(snmperr.WrongValue, "value is not a declared enumeration member")
			}
			return nil
		}
		if !typ.InRange(n) {
			return snmperr.New(snmperr.WrongValue, "value outside declared range")
		}

	case models.BaseOctetString:
		b, err := toBytes(value)
		if err != nil {
			return snmperr.New(snmperr.WrongType, err.Error())
		}
		if !typ.InSizeRange(len(b)) {
			return snmperr.New(snmperr.WrongValue, "length outside declared size range")
		}

	case models.BaseObjectIdentifier:
		if _, err := toOID(value); err != nil {
			return snmperr.New(snmperr.WrongType, err.Error())
		}
	}
	return nil
}
