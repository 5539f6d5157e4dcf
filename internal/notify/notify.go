// Package notify implements the Notification Originator: it builds
// and sends trap/inform PDUs for an operator-requested notification name,
// reading current values from the Store and falling back to the Default
// Value Resolver exactly as GET would. Outbound encoding and transmission
// are delegated to gosnmp, whose client/trap-sender API is a natural fit
// for this one-shot, manager-role send (unlike the inbound responder path,
// which gosnmp cannot do at all and which internal/ber supplies instead).
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/vpbank/snmp_agent/internal/defaultvalue"
	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/internal/store"
	"github.com/vpbank/snmp_agent/models"
)

// sysUpTimeOID and snmpTrapOID are the two mandatory varbinds of every
// notification.
var (
	sysUpTimeOID  = models.MustParseOID("1.3.6.1.2.1.1.3.0")
	snmpTrapOIDID = models.MustParseOID("1.3.6.1.6.3.1.1.4.1.0")
)

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Kind distinguishes a fire-and-forget trap from an acknowledged inform.
type Kind int

const (
	Trap Kind = iota
	Inform
)

// Destination names where and how to send one notification.
type Destination struct {
	Host      string
	Port      uint16
	Community string
	Kind      Kind
}

// Originator builds and sends notifications against the live Store.
type Originator struct {
	store    *store.Store
	schema   *schema.Schema
	resolver *defaultvalue.Resolver
	logger   *slog.Logger

	informTimeout time.Duration
	maxRetries    int
}

// New constructs an Originator. informTimeout and maxRetries configure the
// inform acknowledgement policy; both fall back to a default (3s, 3
// retries) when zero.
func New(st *store.Store, sch *schema.Schema, resolver *defaultvalue.Resolver, informTimeout time.Duration, maxRetries int, logger *slog.Logger) *Originator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if informTimeout <= 0 {
		informTimeout = 3 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Originator{store: st, schema: sch, resolver: resolver, informTimeout: informTimeout, maxRetries: maxRetries, logger: logger}
}

// Send resolves notificationName in the schema, builds its varbind list,
// and sends it to dest. overrides supplies explicit values for declared
// objects, taking priority over the Store and the Default Value Resolver.
//
// For a trap, one UDP datagram is sent and Send returns as soon as it is
// written. For an inform, Send blocks until an acknowledging Response PDU
// arrives or every retry (exponential backoff 1s, 2s, 4s) is exhausted.
func (o *Originator) Send(ctx context.Context, notificationName string, dest Destination, overrides map[string]any) error {
	obj, ok := o.schema.Object(notificationName)
	if !ok || obj.Kind != models.KindNotification {
		return fmt.Errorf("notify: %q is not a declared notification", notificationName)
	}

	varbinds := o.buildVarbinds(obj, overrides)

	client := &gosnmp.GoSNMP{
		Target:    dest.Host,
		Port:      dest.Port,
		Community: dest.Community,
		Version:   gosnmp.Version2c,
		Timeout:   o.informTimeout,
		Retries:   0, // this package owns retry/backoff, not gosnmp
		Logger:    gosnmp.NewLogger(slogAdapter{o.logger}),
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("notify: connect %s:%d: %w", dest.Host, dest.Port, err)
	}
	defer client.Close()

	trap := gosnmp.SnmpTrap{Variables: varbinds, IsInform: dest.Kind == Inform}

	if dest.Kind == Trap {
		if _, err := client.SendTrap(trap); err != nil {
			return fmt.Errorf("notify: send trap %q to %s:%d: %w", notificationName, dest.Host, dest.Port, err)
		}
		return nil
	}

	return o.sendInformWithRetry(ctx, client, trap, notificationName, dest)
}

// sendInformWithRetry implements a bounded exponential-backoff inform
// policy: up to maxRetries additional attempts after the first, waiting
// 1s/2s/4s between them. It never retries past maxRetries — unbounded
// retry risks an inform send blocking forever against an unreachable
// manager.
func (o *Originator) sendInformWithRetry(ctx context.Context, client *gosnmp.GoSNMP, trap gosnmp.SnmpTrap, name string, dest Destination) error {
	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		_, err := client.SendTrap(trap)
		if err == nil {
			return nil
		}
		lastErr = err
		o.logger.Warn("notify: inform attempt failed", "notification", name, "dest", dest.Host, "attempt", attempt+1, "error", err.Error())

		if attempt == o.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("notify: inform %q to %s:%d failed after %d attempts: %w", name, dest.Host, dest.Port, o.maxRetries+1, lastErr)
}

// buildVarbinds assembles the mandatory sysUpTime/snmpTrapOID pair plus
// every object the notification declares, in declaration order.
func (o *Originator) buildVarbinds(obj *models.MibObject, overrides map[string]any) []gosnmp.SnmpPDU {
	out := make([]gosnmp.SnmpPDU, 0, 2+len(obj.Objects))

	upTime, err := o.store.Lookup(sysUpTimeOID)
	var upTimeValue uint32
	if err == nil {
		if v, ok := upTime.Value.(int64); ok {
			upTimeValue = uint32(v)
		}
	}
	out = append(out, gosnmp.SnmpPDU{Name: sysUpTimeOID.String(), Type: gosnmp.TimeTicks, Value: upTimeValue})
	out = append(out, gosnmp.SnmpPDU{Name: snmpTrapOIDID.String(), Type: gosnmp.ObjectIdentifier, Value: obj.OID.String()})

	for _, objName := range obj.Objects {
		out = append(out, o.resolveObjectVarbind(objName, overrides))
	}
	return out
}

func (o *Originator) resolveObjectVarbind(objName string, overrides map[string]any) gosnmp.SnmpPDU {
	target, ok := o.schema.Object(objName)
	if !ok {
		o.logger.Warn("notify: notification references unknown object", "object", objName)
		return gosnmp.SnmpPDU{Name: objName, Type: gosnmp.Null, Value: nil}
	}

	oid := target.OID.Append(0)
	typ := o.schema.Types.Resolve(target.TypeName)

	if v, ok := overrides[objName]; ok {
		return gosnmp.SnmpPDU{Name: oid.String(), Type: asn1BERFor(typ), Value: v}
	}
	if e, err := o.store.Lookup(oid); err == nil {
		return gosnmp.SnmpPDU{Name: oid.String(), Type: asn1BERFor(typ), Value: e.Value}
	}
	if v, ok := o.resolver.Resolve(typ, objName); ok {
		return gosnmp.SnmpPDU{Name: oid.String(), Type: asn1BERFor(typ), Value: v}
	}
	o.logger.Warn("notify: could not resolve a value for notification object", "object", objName)
	return gosnmp.SnmpPDU{Name: oid.String(), Type: gosnmp.Null, Value: nil}
}

// asn1BERFor picks the wire tag gosnmp should encode the value with,
// mirroring internal/ber's TypeName-driven application-tag selection
// (dispatcher/wire.go's applicationTypeNames) in gosnmp's own vocabulary.
func asn1BERFor(typ *models.TypeEntry) gosnmp.Asn1BER {
	switch typ.Name {
	case "IpAddress":
		return gosnmp.IPAddress
	case "Counter32":
		return gosnmp.Counter32
	case "Gauge32", "Unsigned32":
		return gosnmp.Gauge32
	case "TimeTicks":
		return gosnmp.TimeTicks
	case "Opaque":
		return gosnmp.Opaque
	case "Counter64":
		return gosnmp.Counter64
	}
	switch typ.BaseType {
	case models.BaseOctetString:
		return gosnmp.OctetString
	case models.BaseObjectIdentifier:
		return gosnmp.ObjectIdentifier
	default:
		return gosnmp.Integer
	}
}

// slogAdapter bridges slog.Logger to gosnmp's Printf-style Logger
// interface.
type slogAdapter struct{ l *slog.Logger }

func (a slogAdapter) Print(v ...interface{})            { a.l.Debug(fmt.Sprint(v...)) }
func (a slogAdapter) Printf(format string, v ...interface{}) { a.l.Debug(fmt.Sprintf(format, v...)) }
