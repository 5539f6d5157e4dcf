package defaultvalue

import (
	"crypto/sha256"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/vpbank/snmp_agent/models"
)

// wellKnownScalars are the stock values the basic-types plugin installs for
// a handful of named system-group scalars when no explicit initial value
// was supplied.
var wellKnownScalars = map[string]any{
	"sysDescr":    "Simulated SNMP Agent",
	"sysName":     "snmp-agent-sim",
	"sysContact":  "admin@example.com",
	"sysLocation": "Virtual Lab",
	"sysServices": int64(72),
	"sysObjectID": models.MustParseOID("1.3.6.1.4.1.8072.3.2.10"),
}

var (
	engineIDOnce  sync.Once
	engineIDValue []byte
)

// engineID derives snmpEngineID once per process, per RFC 3414's format:
// octet 0 = 0x80 (the "format defined by enterprise" marker bit set),
// octets 1-4 = an enterprise number, octets 5+ = a truncated SHA-256 of the
// hostname salted against accidental collision with other simulated agents
// on the same host.
func engineID() []byte {
	engineIDOnce.Do(func() {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		sum := sha256.Sum256([]byte("snmp-agent-sim-engine-id:" + hostname))
		buf := make([]byte, 0, 12)
		buf = append(buf, 0x80, 0x00, 0x00, 0x00, 0x01) // enterprise 1 (placeholder, no IANA registration)
		buf = append(buf, sum[:7]...)
		engineIDValue = buf
	})
	return engineIDValue
}

// FrameworkPlugin provides the stable snmpEngineID value.
func FrameworkPlugin() Plugin {
	return func(typ *models.TypeEntry, objectName string) (any, bool) {
		if objectName == "snmpEngineID" {
			return engineID(), true
		}
		return nil, false
	}
}

// DateAndTimePlugin produces the 11-octet encoded current UTC time for any
// slot typed as the DateAndTime textual convention: 2 bytes year, then
// month, day, hour, minute, second, decisecond, a sign octet (0x2B = '+'),
// and hours/minutes of UTC offset (zero, since the value is UTC).
func DateAndTimePlugin() Plugin {
	return func(typ *models.TypeEntry, objectName string) (any, bool) {
		if typ == nil || typ.Name != "DateAndTime" {
			return nil, false
		}
		now := time.Now().UTC()
		buf := make([]byte, 11)
		buf[0] = byte(now.Year() >> 8)
		buf[1] = byte(now.Year())
		buf[2] = byte(now.Month())
		buf[3] = byte(now.Day())
		buf[4] = byte(now.Hour())
		buf[5] = byte(now.Minute())
		buf[6] = byte(now.Second())
		buf[7] = byte(now.Nanosecond() / 100_000_000)
		buf[8] = '+'
		buf[9] = 0
		buf[10] = 0
		return buf, true
	}
}

// basicTypeUnsetLabels is the preference order the original default-value
// heuristic uses when a type declares an enumeration but no explicit
// default: pick whichever of these labels is present, before falling back
// to the first declared value.
var basicTypeUnsetLabels = []string{"unknown", "other", "none", "notset", "unset", "default"}

// basicTypeStringHints are substrings of an object's own name that suggest
// a human-readable OCTET STRING, used as a fallback when the type's
// display hint doesn't already say so.
var basicTypeStringHints = []string{"string", "display", "name", "descr", "label", "text"}

// BasicTypesPlugin populates well-known system scalars and applies the
// BaseType-driven tie-break order for everything else: enumerations prefer
// a recognizable "unset-like" label, human-readable OCTET STRING types get
// a placeholder string, and ranged INTEGER types prefer 0 when it is in
// range and the range minimum otherwise.
func BasicTypesPlugin() Plugin {
	return func(typ *models.TypeEntry, objectName string) (any, bool) {
		if v, ok := wellKnownScalars[objectName]; ok {
			return v, true
		}
		if typ == nil {
			return nil, false
		}

		if len(typ.Enumeration) > 0 {
			for _, label := range basicTypeUnsetLabels {
				for _, nv := range typ.Enumeration {
					if strings.EqualFold(nv.Name, label) {
						return nv.Value, true
					}
				}
			}
			return typ.Enumeration[0].Value, true
		}

		switch typ.BaseType {
		case models.BaseOctetString:
			if looksHumanReadable(typ, objectName) {
				return "Unset", true
			}
			return nil, false
		case models.BaseInteger:
			if len(typ.Constraints) == 0 {
				return nil, false
			}
			if typ.InRange(0) {
				return int64(0), true
			}
			return typ.Constraints[0].Min, true
		default:
			return nil, false
		}
	}
}

func looksHumanReadable(typ *models.TypeEntry, objectName string) bool {
	hint := strings.ToLower(typ.DisplayHint)
	if strings.Contains(hint, "a") || strings.Contains(hint, "t") {
		return true
	}
	name := strings.ToLower(objectName)
	for _, kw := range basicTypeStringHints {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
