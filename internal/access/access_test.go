package access_test

import (
	"testing"

	"github.com/vpbank/snmp_agent/internal/access"
)

func TestKnownCommunity(t *testing.T) {
	c := access.New([]string{"public"}, []string{"private"})
	if !c.KnownCommunity("public") {
		t.Fatal("public should be known")
	}
	if !c.KnownCommunity("private") {
		t.Fatal("private should be known")
	}
	if c.KnownCommunity("nope") {
		t.Fatal("unknown community should not be known")
	}
}

func TestWriteCommunityImpliesRead(t *testing.T) {
	c := access.New([]string{"public"}, []string{"private"})
	if c.Authorize("private", access.Read, nil) != access.Allow {
		t.Fatal("write community should also be allowed to read")
	}
}

func TestReadOnlyCommunityDeniedWrite(t *testing.T) {
	c := access.New([]string{"public"}, []string{"private"})
	if c.Authorize("public", access.Write, nil) != access.Deny {
		t.Fatal("read-only community should be denied write")
	}
}

func TestUnknownCommunityDeniedBoth(t *testing.T) {
	c := access.New([]string{"public"}, []string{"private"})
	if c.Authorize("nope", access.Read, nil) != access.Deny {
		t.Fatal("unknown community should be denied read")
	}
	if c.Authorize("nope", access.Write, nil) != access.Deny {
		t.Fatal("unknown community should be denied write")
	}
}
