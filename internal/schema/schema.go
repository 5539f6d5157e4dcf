// Package schema builds the Schema Model: the per-MIB normalized
// description of every scalar, table, row, column, and notification, ready
// to be handed to the OID Store builder and the Notification Originator.
package schema

import (
	"fmt"
	"sort"

	"github.com/vpbank/snmp_agent/internal/mibtype"
	"github.com/vpbank/snmp_agent/models"
)

// Schema is the built, immutable-after-construction collection of every
// MibObject across every loaded MIB module, indexed for the lookups the
// rest of the agent needs.
type Schema struct {
	Types   *mibtype.Registry
	objects map[string]*models.MibObject // by name
	byOID   map[string]*models.MibObject // by dotted OID string

	// columnsByRow maps a row object name to its column objects, ordered
	// by object name, for table population.
	columnsByRow map[string][]*models.MibObject
}

// kindNames maps the schema document's "kind" string to models.Kind.
var kindNames = map[string]models.Kind{
	"scalar":       models.KindScalar,
	"table":        models.KindTable,
	"row":          models.KindRow,
	"column":       models.KindColumn,
	"notification": models.KindNotification,
}

// accessNames maps the schema document's "access" string to models.Access.
var accessNames = map[string]models.Access{
	"not-accessible":        models.AccessNotAccessible,
	"accessible-for-notify": models.AccessAccessibleForNotify,
	"read-only":             models.AccessReadOnly,
	"read-write":            models.AccessReadWrite,
	"read-create":           models.AccessReadCreate,
}

var statusNames = map[string]models.Status{
	"current":    models.StatusCurrent,
	"deprecated": models.StatusDeprecated,
	"obsolete":   models.StatusObsolete,
}

// Build converts a set of ingested MIB documents, plus the already-built
// type registry, into a Schema.
func Build(docs []models.SchemaDoc, types *mibtype.Registry) (*Schema, error) {
	s := &Schema{
		Types:        types,
		objects:      make(map[string]*models.MibObject),
		byOID:        make(map[string]*models.MibObject),
		columnsByRow: make(map[string][]*models.MibObject),
	}

	for _, doc := range docs {
		names := make([]string, 0, len(doc.Objects))
		for name := range doc.Objects {
			names = append(names, name)
		}
		sort.Strings(names) // deterministic object construction order

		for _, name := range names {
			od := doc.Objects[name]
			obj, err := convert(name, od)
			if err != nil {
				return nil, fmt.Errorf("schema: %s.%s: %w", doc.MibName, name, err)
			}
			if _, dup := s.objects[name]; dup {
				return nil, fmt.Errorf("schema: duplicate object name %q", name)
			}
			s.objects[name] = obj
			s.byOID[obj.OID.String()] = obj
			if obj.Kind == models.KindColumn && obj.ParentRow != "" {
				s.columnsByRow[obj.ParentRow] = append(s.columnsByRow[obj.ParentRow], obj)
			}
		}
	}

	return s, nil
}

func convert(name string, od models.SchemaObjectDoc) (*models.MibObject, error) {
	kind, ok := kindNames[od.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", od.Kind)
	}
	access, ok := accessNames[od.Access]
	if !ok {
		return nil, fmt.Errorf("unknown access %q", od.Access)
	}
	status := statusNames[od.Status] // zero value StatusCurrent is a fine default

	obj := &models.MibObject{
		Name:        name,
		OID:         models.OID(od.OID),
		TypeName:    od.Type,
		Access:      access,
		Status:      status,
		Description: od.Description,
		Kind:        kind,
		Initial:     od.Initial,
		IndexColumns: od.Indexes,
		Augments:    od.Augments,
		ImpliedLast: od.ImpliedLast,
		ParentRow:   od.ParentRow,
		Objects:     od.Objects,
	}
	for _, r := range od.Rows {
		obj.Rows = append(obj.Rows, models.TableRow(r))
	}
	return obj, nil
}

// Object looks up a MibObject by its schema name.
func (s *Schema) Object(name string) (*models.MibObject, bool) {
	o, ok := s.objects[name]
	return o, ok
}

// ObjectByOID looks up a MibObject by its base OID.
func (s *Schema) ObjectByOID(oid models.OID) (*models.MibObject, bool) {
	o, ok := s.byOID[oid.String()]
	return o, ok
}

// Columns returns the column objects of the given row, ordered by object
// name.
func (s *Schema) Columns(rowName string) []*models.MibObject {
	return s.columnsByRow[rowName]
}

// ColumnForOID finds the column object whose OID is the longest prefix of
// oid, along with the remaining instance suffix. Used by the Dispatcher's
// SET path, where a target OID may name a row instance that does not yet
// exist in the store (row creation via RowStatus), so a store lookup alone
// cannot identify which column is being addressed.
func (s *Schema) ColumnForOID(oid models.OID) (*models.MibObject, models.OID, bool) {
	var best *models.MibObject
	for _, obj := range s.objects {
		if obj.Kind != models.KindColumn {
			continue
		}
		if len(oid) <= len(obj.OID) || !oid.HasPrefix(obj.OID) {
			continue
		}
		if best == nil || len(obj.OID) > len(best.OID) {
			best = obj
		}
	}
	if best == nil {
		return nil, nil, false
	}
	return best, oid.Suffix(best.OID), true
}

// All returns every object in the schema, for store population.
func (s *Schema) All() map[string]*models.MibObject {
	return s.objects
}

// Notifications returns every notification object in the schema.
func (s *Schema) Notifications() []*models.MibObject {
	var out []*models.MibObject
	for _, o := range s.objects {
		if o.Kind == models.KindNotification {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
