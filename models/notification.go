package models

// NotificationRequest is the operator-supplied input to the Notification
// Originator: a notification name resolved against the schema, a
// destination, and optional per-varbind overrides.
type NotificationRequest struct {
	Name        string            // schema notification name, e.g. "coldStart", "linkDown"
	Host        string
	Port        int
	Community   string
	Kind        NotificationKind
	Overrides   map[string]any    // object name -> override value
}

// NotificationKind distinguishes a fire-and-forget trap from an
// acknowledged inform.
type NotificationKind int

const (
	NotificationTrap NotificationKind = iota
	NotificationInform
)

func (k NotificationKind) String() string {
	if k == NotificationInform {
		return "inform"
	}
	return "trap"
}
