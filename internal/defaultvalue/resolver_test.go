package defaultvalue_test

import (
	"bytes"
	"testing"

	"github.com/vpbank/snmp_agent/internal/defaultvalue"
	"github.com/vpbank/snmp_agent/models"
)

func TestResolveWellKnownScalar(t *testing.T) {
	r := defaultvalue.New(nil)
	v, ok := r.Resolve(&models.TypeEntry{BaseType: models.BaseOctetString}, "sysDescr")
	if !ok {
		t.Fatal("expected sysDescr to resolve")
	}
	if v != "Simulated SNMP Agent" {
		t.Fatalf("sysDescr = %v", v)
	}
}

func TestResolveEngineIDStable(t *testing.T) {
	r := defaultvalue.New(nil)
	v1, ok := r.Resolve(&models.TypeEntry{BaseType: models.BaseOctetString}, "snmpEngineID")
	if !ok {
		t.Fatal("expected snmpEngineID to resolve")
	}
	v2, _ := r.Resolve(&models.TypeEntry{BaseType: models.BaseOctetString}, "snmpEngineID")
	b1, b2 := v1.([]byte), v2.([]byte)
	if !bytes.Equal(b1, b2) {
		t.Fatalf("snmpEngineID not stable across calls: %x vs %x", b1, b2)
	}
	if b1[0] != 0x80 {
		t.Fatalf("snmpEngineID octet 0 = %#x, want 0x80", b1[0])
	}
}

func TestResolveEnumPrefersUnsetLabel(t *testing.T) {
	r := defaultvalue.New(nil)
	typ := &models.TypeEntry{
		BaseType: models.BaseInteger,
		Enumeration: []models.NamedValue{
			{Name: "up", Value: 1},
			{Name: "unknown", Value: 3},
			{Name: "down", Value: 2},
		},
	}
	v, ok := r.Resolve(typ, "ifAdminStatus")
	if !ok || v != int64(3) {
		t.Fatalf("Resolve = %v, %v, want 3, true", v, ok)
	}
}

func TestResolveRangedIntegerPrefersZero(t *testing.T) {
	r := defaultvalue.New(nil)
	typ := &models.TypeEntry{BaseType: models.BaseInteger, Constraints: []models.Range{{Min: -1, Max: 10}}}
	v, ok := r.Resolve(typ, "someGauge")
	if !ok || v != int64(0) {
		t.Fatalf("Resolve = %v, %v, want 0, true", v, ok)
	}

	typ2 := &models.TypeEntry{BaseType: models.BaseInteger, Constraints: []models.Range{{Min: 1, Max: 10}}}
	v2, ok2 := r.Resolve(typ2, "someGauge")
	if !ok2 || v2 != int64(1) {
		t.Fatalf("Resolve = %v, %v, want 1, true", v2, ok2)
	}
}

func TestResolveNoMatchFallsThrough(t *testing.T) {
	r := defaultvalue.New(nil)
	typ := &models.TypeEntry{BaseType: models.BaseOctetString, Name: "OctetString"}
	_, ok := r.Resolve(typ, "rawBytesField")
	if ok {
		t.Fatal("expected no plugin to match, falling through to BaseType fallback")
	}
	if fb := defaultvalue.Fallback(typ); !bytes.Equal(fb.([]byte), []byte{}) {
		t.Fatalf("Fallback = %v, want empty bytes", fb)
	}
}

func TestPluginPanicTreatedAsNoMatch(t *testing.T) {
	r := defaultvalue.New(nil).WithPlugins([]defaultvalue.Plugin{
		func(typ *models.TypeEntry, name string) (any, bool) { panic("boom") },
		defaultvalue.BasicTypesPlugin(),
	})
	v, ok := r.Resolve(&models.TypeEntry{BaseType: models.BaseOctetString}, "sysDescr")
	if !ok || v != "Simulated SNMP Agent" {
		t.Fatalf("Resolve after panicking plugin = %v, %v", v, ok)
	}
}
