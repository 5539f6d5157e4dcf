// Package access implements Access Control: community-string
// authorization. SNMPv1/v2c authenticates requests by a cleartext
// community string rather than a real credential, so this package's job is
// narrow: decide whether a community may read, and whether it may write.
//
// Decision is modeled as Authorize(community, operation, oid) -> Decision
// rather than a bare bool, so a future VACM-style view layer can replace
// this package's internals without the Dispatcher caring: it always
// inspects a Decision, never a community map directly.
package access

// Decision is the result of an authorization check.
type Decision int

const (
	Allow Decision = iota
	Deny
	NotInView
)

// Operation classifies the kind of access a varbind touch requires.
type Operation int

const (
	Read Operation = iota
	Write
)

// Control holds the read and write community sets and answers
// authorization questions for the Dispatcher.
type Control struct {
	read  map[string]struct{}
	write map[string]struct{}
}

// New builds a Control from the configured read and write community
// lists. A community present in write is implicitly granted read: SNMP
// agents conventionally treat write access as a superset of read.
func New(read, write []string) *Control {
	c := &Control{read: make(map[string]struct{}), write: make(map[string]struct{})}
	for _, s := range read {
		c.read[s] = struct{}{}
	}
	for _, s := range write {
		c.write[s] = struct{}{}
		c.read[s] = struct{}{}
	}
	return c
}

// KnownCommunity reports whether community appears in either the read or
// write list. A request bearing an unknown community is dropped silently
// before Authorize is ever consulted, per the no-response-to-bad-community
// rule.
func (c *Control) KnownCommunity(community string) bool {
	_, r := c.read[community]
	_, w := c.write[community]
	return r || w
}

// Authorize decides whether community may perform operation against oid.
// The current implementation is a flat allow-all within a community's
// granted operation: every scalar and column is equally visible to every
// community that can read at all. oid is accepted now so a future
// view-based implementation can consult it without changing this method's
// signature.
func (c *Control) Authorize(community string, op Operation, _ /* oid */ any) Decision {
	switch op {
	case Read:
		if _, ok := c.read[community]; ok {
			return Allow
		}
		return Deny
	case Write:
		if _, ok := c.write[community]; ok {
			return Allow
		}
		return Deny
	default:
		return Deny
	}
}
