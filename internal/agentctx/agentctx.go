// Package agentctx builds the CoreContext: config, logger, type registry,
// schema, store, and access control constructed once at startup and
// passed by reference, with no process-wide globals. Every long-lived
// component is built once here and threaded by reference into the
// Dispatcher, Transport, and Notification Originator.
package agentctx

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vpbank/snmp_agent/internal/access"
	"github.com/vpbank/snmp_agent/internal/defaultvalue"
	"github.com/vpbank/snmp_agent/internal/dispatcher"
	"github.com/vpbank/snmp_agent/internal/mibtype"
	"github.com/vpbank/snmp_agent/internal/notify"
	"github.com/vpbank/snmp_agent/internal/schema"
	"github.com/vpbank/snmp_agent/internal/snapshot"
	"github.com/vpbank/snmp_agent/internal/store"
	"github.com/vpbank/snmp_agent/models"
)

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// CoreContext is the fully built agent, ready to be handed to the
// transport listener and any CLI front-end.
type CoreContext struct {
	Config models.AgentConfig
	Logger *slog.Logger

	Types  *mibtype.Registry
	Schema *schema.Schema
	Store  *store.Store
	Access *access.Control

	Dispatcher *dispatcher.Dispatcher
	Originator *notify.Originator
}

// Build constructs a CoreContext: the type registry and schema from docs
// and typeDefs, the store populated from the schema and overlaid with the
// state snapshot at cfg.StateFile (if present), then the Dispatcher and
// Notification Originator wired on top.
func Build(cfg models.AgentConfig, docs []models.SchemaDoc, typeDefs []mibtype.Def, logger *slog.Logger) (*CoreContext, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	cfg = cfg.WithDefaults()

	types := mibtype.Build(typeDefs, logger)
	sch, err := schema.Build(docs, types)
	if err != nil {
		return nil, fmt.Errorf("agentctx: build schema: %w", err)
	}

	sysUpTimeOID := models.MustParseOID("1.3.6.1.2.1.1.3.0")
	st := store.New(sysUpTimeOID, time.Now())
	resolver := defaultvalue.New(logger)
	if err := store.Populate(st, sch, resolver, logger); err != nil {
		return nil, fmt.Errorf("agentctx: populate store: %w", err)
	}

	doc, err := snapshot.Load(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("agentctx: load state snapshot: %w", err)
	}
	if err := snapshot.Apply(st, sch, doc); err != nil {
		return nil, fmt.Errorf("agentctx: apply state snapshot: %w", err)
	}

	ctl := access.New(cfg.Communities.Read, cfg.Communities.Write)
	disp := dispatcher.New(st, sch, ctl, cfg.MaxMessageSize, logger)
	orig := notify.New(st, sch, resolver, cfg.Inform.Timeout, cfg.Inform.MaxRetries, logger)

	return &CoreContext{
		Config: cfg, Logger: logger,
		Types: types, Schema: sch, Store: st, Access: ctl,
		Dispatcher: disp, Originator: orig,
	}, nil
}
