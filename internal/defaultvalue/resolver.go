// Package defaultvalue implements the Default Value Resolver: a
// plugin-based computation of a concrete initial value for any typed slot,
// consulted when a schema object has no explicit initial value.
//
// Plugins are registered once at startup as an explicit ordered slice, not
// discovered via decorator-style registration at import time — plugin
// addition is a one-line edit to the slice literal. Resolution calls
// plugins in order until one returns a value; a panicking or erroring
// plugin is treated as "did not match" and never aborts startup.
package defaultvalue

import (
	"log/slog"

	"github.com/vpbank/snmp_agent/models"
)

// Plugin computes a default value for a typed slot, or reports that it does
// not handle this type/name by returning ok=false.
type Plugin func(typ *models.TypeEntry, objectName string) (value any, ok bool)

// Resolver calls an ordered list of plugins, falling back to the
// BaseType-driven default if none of them match.
type Resolver struct {
	plugins []Plugin
	logger  *slog.Logger
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

// New builds a Resolver with the built-in plugins, checked in order:
// Framework, DateAndTime, then the basic-types catch-all.
func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	r := &Resolver{logger: logger}
	r.plugins = []Plugin{
		FrameworkPlugin(),
		DateAndTimePlugin(),
		BasicTypesPlugin(),
	}
	return r
}

// WithPlugins overrides the plugin list entirely. Intended for tests and
// for operators who need to prepend a site-specific plugin ahead of the
// built-ins.
func (r *Resolver) WithPlugins(plugins []Plugin) *Resolver {
	r.plugins = plugins
	return r
}

// Resolve calls each plugin in order, catching panics as "plugin did not
// match", until one returns a value. If none do, it returns ok=false and
// the caller falls through to the BaseType-driven fallback.
func (r *Resolver) Resolve(typ *models.TypeEntry, objectName string) (value any, ok bool) {
	for _, p := range r.plugins {
		v, matched := r.invoke(p, typ, objectName)
		if matched {
			return v, true
		}
	}
	return nil, false
}

func (r *Resolver) invoke(p Plugin, typ *models.TypeEntry, objectName string) (v any, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("defaultvalue: plugin panicked, treating as no match", "object", objectName, "panic", rec)
			v, ok = nil, false
		}
	}()
	return p(typ, objectName)
}

// Fallback is the BaseType-driven fallback: 0 for INTEGER,
// empty bytes for OCTET STRING, {0, 0} for OBJECT IDENTIFIER.
func Fallback(typ *models.TypeEntry) any {
	switch typ.BaseType {
	case models.BaseInteger:
		return int64(0)
	case models.BaseOctetString:
		return []byte{}
	case models.BaseObjectIdentifier:
		return models.OID{0, 0}
	default:
		return int64(0)
	}
}
