package mibload_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vpbank/snmp_agent/internal/mibload"
)

func TestLoadSchemaDocsReadsEachNamedFile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "IF-MIB.json"), `{"mibName":"IF-MIB","objects":{}}`)

	docs, err := mibload.LoadSchemaDocs(dir, []string{"IF-MIB"})
	if err != nil {
		t.Fatalf("LoadSchemaDocs: %v", err)
	}
	if len(docs) != 1 || docs[0].MibName != "IF-MIB" {
		t.Fatalf("docs = %+v", docs)
	}
}

func TestLoadSchemaDocsMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := mibload.LoadSchemaDocs(dir, []string{"NOPE-MIB"}); err == nil {
		t.Fatal("expected an error for a missing schema document")
	}
}

func TestLoadTypeDefsMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	defs, err := mibload.LoadTypeDefs(dir)
	if err != nil {
		t.Fatalf("LoadTypeDefs: %v", err)
	}
	if defs != nil {
		t.Fatalf("defs = %+v, want nil", defs)
	}
}

func TestLoadTypeDefsParsesBaseTypeAndEnumeration(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "types.json"), `{
		"RowStatus": {
			"base_type": "INTEGER",
			"enumeration": [{"name": "active", "value": 1}, {"name": "destroy", "value": 6}]
		}
	}`)

	defs, err := mibload.LoadTypeDefs(dir)
	if err != nil {
		t.Fatalf("LoadTypeDefs: %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "RowStatus" || len(defs[0].Enumeration) != 2 {
		t.Fatalf("defs = %+v", defs)
	}
}

func write(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
