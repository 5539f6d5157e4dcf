package mibtype_test

import (
	"testing"

	"github.com/vpbank/snmp_agent/internal/mibtype"
	"github.com/vpbank/snmp_agent/models"
)

func TestBuildSeedsAxioms(t *testing.T) {
	r := mibtype.Build(nil, nil)

	cases := []struct {
		name string
		want models.BaseType
	}{
		{"INTEGER", models.BaseInteger},
		{"OCTET STRING", models.BaseOctetString},
		{"OBJECT IDENTIFIER", models.BaseObjectIdentifier},
		{"Counter32", models.BaseInteger},
		{"Counter64", models.BaseInteger},
		{"IpAddress", models.BaseOctetString},
		{"Bits", models.BaseOctetString},
	}
	for _, c := range cases {
		e := r.Resolve(c.name)
		if e.BaseType != c.want {
			t.Errorf("Resolve(%q).BaseType = %v, want %v", c.name, e.BaseType, c.want)
		}
	}
}

func TestResolveUnknownFallsBackToInteger(t *testing.T) {
	r := mibtype.Build(nil, nil)
	e := r.Resolve("TotallyMadeUpType")
	if e.BaseType != models.BaseInteger {
		t.Fatalf("unknown type resolved to %v, want INTEGER", e.BaseType)
	}
}

func TestResolveChainedTextualConvention(t *testing.T) {
	defs := textualConventionFixtures(t)
	r := mibtype.Build(defs, nil)

	e := r.Resolve("DisplayString")
	if e.BaseType != models.BaseOctetString {
		t.Fatalf("DisplayString base = %v, want OCTET STRING", e.BaseType)
	}
	if len(e.Constraints) != 1 || e.Constraints[0].Max != 255 {
		t.Fatalf("DisplayString constraints = %v, want [0,255]", e.Constraints)
	}

	rowStatus := r.Resolve("RowStatus")
	if rowStatus.BaseType != models.BaseInteger {
		t.Fatalf("RowStatus base = %v, want INTEGER", rowStatus.BaseType)
	}
	if !rowStatus.IsValidEnum(6) {
		t.Fatalf("RowStatus should accept destroy(6)")
	}
	if rowStatus.IsValidEnum(99) {
		t.Fatalf("RowStatus should reject undeclared value 99")
	}
}

func TestResolveCycleMarksAbstract(t *testing.T) {
	defs := []mibtype.Def{
		{Name: "A", AliasOf: "B"},
		{Name: "B", AliasOf: "A"},
	}
	r := mibtype.Build(defs, nil)
	e := r.Resolve("A")
	if !e.Abstract {
		t.Fatalf("cyclic type A should be marked abstract")
	}
	if e.BaseType != models.BaseInteger {
		t.Fatalf("cyclic type A base = %v, want INTEGER", e.BaseType)
	}
}

func textualConventionFixtures(t *testing.T) []mibtype.Def {
	t.Helper()
	return []mibtype.Def{
		{
			Name:        "DisplayString",
			AliasOf:     "OCTET STRING",
			DisplayHint: "255a",
			Constraints: []models.Range{{Min: 0, Max: 255}},
		},
		{
			Name:    "RowStatus",
			AliasOf: "INTEGER",
			Enumeration: []models.NamedValue{
				{Name: "active", Value: 1},
				{Name: "notInService", Value: 2},
				{Name: "notReady", Value: 3},
				{Name: "createAndGo", Value: 4},
				{Name: "createAndWait", Value: 5},
				{Name: "destroy", Value: 6},
			},
		},
	}
}
