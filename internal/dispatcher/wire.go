package dispatcher

import (
	"github.com/vpbank/snmp_agent/internal/ber"
	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/internal/snmperr"
	"github.com/vpbank/snmp_agent/models"
)

// applicationTypeNames lists the TypeEntry names that must be encoded with
// their SMI application tag (IpAddress, Counter32, ...) rather than the
// bare ASN.1 base type. Every name here matches a ber.Varbind.TypeName
// branch in the codec's encodeValue switch.
var applicationTypeNames = map[string]struct{}{
	"IpAddress":  {},
	"Counter32":  {},
	"Gauge32":    {},
	"Unsigned32": {},
	"TimeTicks":  {},
	"Opaque":     {},
	"Counter64":  {},
}

// responseVarbind builds the outbound ber.Varbind for a live StoreEntry,
// choosing the codec's TypeName hint from the entry's resolved syntax
// type so application-tagged values round-trip correctly.
func responseVarbind(oid models.OID, e *models.StoreEntry) ber.Varbind {
	typeName := ""
	baseType := models.BaseInteger
	if e.SyntaxType != nil {
		baseType = e.SyntaxType.BaseType
		if _, ok := applicationTypeNames[e.SyntaxType.Name]; ok {
			typeName = e.SyntaxType.Name
		}
	}
	return ber.Varbind{OID: oid, WireType: baseType, TypeName: typeName, Value: e.Value}
}

// exceptionVarbind builds a v2c placeholder varbind for a missing
// object/instance or end-of-MIB.
func exceptionVarbind(oid models.OID, exc snmperr.ExceptionValue) ber.Varbind {
	return ber.Varbind{OID: oid, IsException: true, Exception: exc}
}

// classifyMissing decides, for a GET whose OID has no store entry, whether
// the v2c response should carry noSuchInstance (the schema knows the
// column or scalar, but this particular instance does not exist) or
// noSuchObject (the OID matches nothing the schema knows about at all).
func classifyMissing(sch *schema.Schema, oid models.OID) snmperr.ExceptionValue {
	if _, _, ok := sch.ColumnForOID(oid); ok {
		return snmperr.NoSuchInstance
	}
	if len(oid) > 0 {
		if _, ok := sch.ObjectByOID(oid[:len(oid)-1]); ok {
			return snmperr.NoSuchInstance
		}
	}
	return snmperr.NoSuchObject
}
