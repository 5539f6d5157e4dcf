// Package mibtype implements the Type Registry: resolution of any SMI type
// name to one of the three ASN.1 base types, plus the constraints,
// enumerations and display hints each type carries.
//
// The build is two passes, mirroring a textual-convention resolver's
// seed-then-resolve shape: Pass 1 installs the fixed axioms (the three base
// types, plus the RFC 2578 application types and a handful of structural
// aliases); Pass 2 walks every remaining type definition's alias chain,
// detecting cycles with a per-resolution seen-set, and falls back to
// INTEGER with a logged warning rather than failing the build.
package mibtype

import (
	"encoding/json"
	"log/slog"

	"github.com/vpbank/snmp_agent/models"
)

// Def is one user-defined or textual-convention type as found in a schema
// ingestion document: a name, a reference to its parent/alias type, and its
// own constraints/enumeration/display hint layered on top.
type Def struct {
	Name        string
	AliasOf     string // parent type name; empty if BaseType is already an axiom
	BaseType    models.BaseType
	DisplayHint string
	Constraints []models.Range
	Enumeration []models.NamedValue
	DefinedIn   string
}

// Registry is the built, immutable-after-Build mapping from type name to
// TypeEntry.
type Registry struct {
	entries map[string]*models.TypeEntry
	logger  *slog.Logger
}

// seedAxioms are the Pass 1 fixed points: the three ASN.1 base types, the
// RFC 2578 application types, and the structural CHOICE/alias names the
// original type handler also hardcodes (ObjectSyntax, SimpleSyntax,
// ApplicationSyntax collapse to an abstract INTEGER; ObjectName and
// NotificationName are plain OBJECT IDENTIFIER aliases).
var seedAxioms = map[string]struct {
	base     models.BaseType
	abstract bool
}{
	"INTEGER":           {models.BaseInteger, false},
	"OCTET STRING":      {models.BaseOctetString, false},
	"OBJECT IDENTIFIER": {models.BaseObjectIdentifier, false},

	"Integer32":  {models.BaseInteger, false},
	"Unsigned32": {models.BaseInteger, false},
	"Counter32":  {models.BaseInteger, false},
	"Counter64":  {models.BaseInteger, false},
	"Gauge32":    {models.BaseInteger, false},
	"TimeTicks":  {models.BaseInteger, false},

	"IpAddress": {models.BaseOctetString, false},
	"Opaque":    {models.BaseOctetString, false},
	"Bits":      {models.BaseOctetString, false},

	"ObjectSyntax":      {models.BaseInteger, true},
	"SimpleSyntax":      {models.BaseInteger, true},
	"ApplicationSyntax": {models.BaseInteger, true},

	"ObjectName":       {models.BaseObjectIdentifier, false},
	"NotificationName": {models.BaseObjectIdentifier, false},
}

// noopWriter discards everything written to it, so a nil logger can be
// turned into a harmless one instead of forcing every caller to wire up
// logging just to construct a registry.
type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Build constructs a Registry from the given type definitions. Pass 1 seeds
// the axioms; Pass 2 resolves every def's alias chain down to a base type,
// merging constraints (narrowest of the chain wins) and enumerations
// (derived type's enumeration overrides its parent's).
func Build(defs []Def, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	r := &Registry{entries: make(map[string]*models.TypeEntry, len(defs)+len(seedAxioms)), logger: logger}

	// Pass 1 — seed.
	for name, axiom := range seedAxioms {
		r.entries[name] = &models.TypeEntry{
			Name:     name,
			BaseType: axiom.base,
			Abstract: axiom.abstract,
		}
	}

	// Index raw defs by name for chain-walking in pass 2.
	byName := make(map[string]Def, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	// Pass 2 — resolve.
	for _, d := range defs {
		r.entries[d.Name] = r.resolve(d, byName, make(map[string]struct{}))
	}

	return r
}

// resolve walks d's alias chain to a base type, with a seen-set guarding
// against cycles. On cycle, the type is marked abstract with base type
// INTEGER and a warning is logged; the build never fails.
func (r *Registry) resolve(d Def, byName map[string]Def, seen map[string]struct{}) *models.TypeEntry {
	if d.BaseType != models.BaseUnknown {
		return &models.TypeEntry{
			Name:        d.Name,
			BaseType:    d.BaseType,
			DisplayHint: d.DisplayHint,
			Constraints: d.Constraints,
			Enumeration: d.Enumeration,
			DefinedIn:   d.DefinedIn,
		}
	}

	if _, cyclic := seen[d.Name]; cyclic {
		r.logger.Warn("mibtype: cyclic type alias, marking abstract", "type", d.Name)
		return &models.TypeEntry{Name: d.Name, BaseType: models.BaseInteger, Abstract: true, DefinedIn: d.DefinedIn}
	}
	seen[d.Name] = struct{}{}

	parentName := d.AliasOf
	if parentName == "" {
		r.logger.Warn("mibtype: type has no alias and no base type, defaulting to INTEGER", "type", d.Name)
		return &models.TypeEntry{Name: d.Name, BaseType: models.BaseInteger, DefinedIn: d.DefinedIn}
	}

	var parent *models.TypeEntry
	if axiom, ok := seedAxioms[parentName]; ok {
		parent = &models.TypeEntry{Name: parentName, BaseType: axiom.base, Abstract: axiom.abstract}
	} else if pd, ok := byName[parentName]; ok {
		parent = r.resolve(pd, byName, seen)
	} else {
		r.logger.Warn("mibtype: unresolvable parent type, defaulting to INTEGER", "type", d.Name, "parent", parentName)
		return &models.TypeEntry{Name: d.Name, BaseType: models.BaseInteger, DefinedIn: d.DefinedIn}
	}

	entry := &models.TypeEntry{
		Name:        d.Name,
		BaseType:    parent.BaseType,
		Abstract:    parent.Abstract,
		DisplayHint: d.DisplayHint,
		Constraints: mergeConstraints(parent.Constraints, d.Constraints),
		Enumeration: d.Enumeration,
		DefinedIn:   d.DefinedIn,
	}
	if entry.DisplayHint == "" {
		entry.DisplayHint = parent.DisplayHint
	}
	if len(entry.Enumeration) == 0 {
		entry.Enumeration = parent.Enumeration
	}
	return entry
}

// mergeConstraints implements "the narrowest of the alias chain wins": if
// the derived type declares its own constraints, they replace the parent's
// rather than being unioned, since a derived TEXTUAL-CONVENTION narrows its
// parent's range, never widens it.
func mergeConstraints(parent, own []models.Range) []models.Range {
	if len(own) > 0 {
		return own
	}
	return parent
}

// Resolve is the total lookup contract: resolveBaseType(name) always
// returns, falling back to INTEGER with a logged warning for unknown names
// so that an unrecognized type in an inbound request never crashes
// dispatch.
func (r *Registry) Resolve(name string) *models.TypeEntry {
	if e, ok := r.entries[name]; ok {
		return e
	}
	r.logger.Warn("mibtype: unknown type, defaulting to INTEGER", "type", name)
	return &models.TypeEntry{Name: name, BaseType: models.BaseInteger}
}

// Lookup returns the entry and whether it was found, without falling back.
func (r *Registry) Lookup(name string) (*models.TypeEntry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// All returns every registered type entry, for export and inspection.
func (r *Registry) All() map[string]*models.TypeEntry {
	return r.entries
}

// Export serializes the registry to its type registry document shape
// (models.TypeRegistryDoc), for inspection tooling and for DefsFromDoc to
// read back in.
func (r *Registry) Export() (models.TypeRegistryDoc, error) {
	doc := make(models.TypeRegistryDoc, len(r.entries))
	for name, e := range r.entries {
		td := models.TypeEntryDoc{
			Name:        e.Name,
			BaseType:    e.BaseType.String(),
			DisplayHint: e.DisplayHint,
			Abstract:    e.Abstract,
			DefinedIn:   e.DefinedIn,
			UsedBy:      e.UsedBy,
		}
		for _, c := range e.Constraints {
			kind := "ValueRangeConstraint"
			if e.BaseType == models.BaseOctetString {
				kind = "SizeRangeConstraint"
			}
			td.Constraints = append(td.Constraints, models.SchemaConstraintDoc{Type: kind, Min: c.Min, Max: c.Max})
		}
		for _, nv := range e.Enumeration {
			td.Enumeration = append(td.Enumeration, models.SchemaEnumDoc{Name: nv.Name, Value: nv.Value})
		}
		doc[name] = td
	}
	return doc, nil
}

// MarshalJSON makes Registry usable directly with json.Marshal for the
// export document.
func (r *Registry) MarshalJSON() ([]byte, error) {
	doc, err := r.Export()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// DefsFromDoc is Export's inverse: it converts a type registry ingestion
// document (the same shape Export produces) into the Def list Build
// expects. Every TypeEntryDoc already carries a resolved
// BaseType rather than an alias chain, so each Def here is a direct seed
// (AliasOf is never needed) — Build's pass 2 short-circuits on any Def
// whose BaseType is already known.
func DefsFromDoc(doc models.TypeRegistryDoc) []Def {
	defs := make([]Def, 0, len(doc))
	for name, td := range doc {
		d := Def{
			Name:        name,
			BaseType:    parseBaseType(td.BaseType),
			DisplayHint: td.DisplayHint,
			DefinedIn:   td.DefinedIn,
		}
		for _, c := range td.Constraints {
			d.Constraints = append(d.Constraints, models.Range{Min: c.Min, Max: c.Max})
		}
		for _, nv := range td.Enumeration {
			d.Enumeration = append(d.Enumeration, models.NamedValue{Name: nv.Name, Value: nv.Value})
		}
		defs = append(defs, d)
	}
	return defs
}

func parseBaseType(s string) models.BaseType {
	switch s {
	case "INTEGER":
		return models.BaseInteger
	case "OCTET STRING":
		return models.BaseOctetString
	case "OBJECT IDENTIFIER":
		return models.BaseObjectIdentifier
	default:
		return models.BaseUnknown
	}
}
