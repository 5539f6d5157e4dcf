// Package mibload reads the MIB schema ingestion documents and the sibling
// type registry document that the agent core consumes at startup.
// Producing these documents (the MIB text-to-intermediate-representation
// compiler) is an external collaborator; this package only reads the JSON
// shape that compiler is assumed to emit.
package mibload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vpbank/snmp_agent/internal/mibtype"
	"github.com/vpbank/snmp_agent/models"
)

// DirFromEnv resolves the directory holding per-MIB schema documents and
// the type registry document, honoring AGENT_MIB_DIR before falling back
// to the conventional default.
func DirFromEnv() string {
	if v := os.Getenv("AGENT_MIB_DIR"); v != "" {
		return v
	}
	return "/etc/snmp_agent/mibs"
}

// LoadSchemaDocs reads "<dir>/<name>.json" for every name in mibNames, in
// the given order (the order the config's "mibs" key declares).
func LoadSchemaDocs(dir string, mibNames []string) ([]models.SchemaDoc, error) {
	docs := make([]models.SchemaDoc, 0, len(mibNames))
	for _, name := range mibNames {
		path := filepath.Join(dir, name+".json")
		var doc models.SchemaDoc
		if err := readJSON(path, &doc); err != nil {
			return nil, fmt.Errorf("mibload: %s: %w", name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadTypeDefs reads "<dir>/types.json", the sibling type registry
// document. A missing file is not an error: the type registry then
// resolves purely from its built-in seed axioms.
func LoadTypeDefs(dir string) ([]mibtype.Def, error) {
	path := filepath.Join(dir, "types.json")
	var doc models.TypeRegistryDoc
	if err := readJSON(path, &doc); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mibload: types: %w", err)
	}
	return mibtype.DefsFromDoc(doc), nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
