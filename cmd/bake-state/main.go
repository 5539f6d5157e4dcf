// Command bake-state writes an atomic, compacted state snapshot for an
// agent instance without running its transport listener.
//
// It builds the same CoreContext run-agent would (schema-populated store,
// existing snapshot applied on top), then immediately re-saves the
// snapshot. This folds any destroyed-row tombstones and now-defaulted
// scalars into one clean document — the Go equivalent of the original
// source's bake CLI, which rewrites the state file atomically (temp file,
// then rename) so a crash mid-bake never corrupts the previous good
// snapshot.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/vpbank/snmp_agent/internal/agentctx"
	"github.com/vpbank/snmp_agent/internal/config"
	"github.com/vpbank/snmp_agent/internal/mibload"
	"github.com/vpbank/snmp_agent/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bake-state: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath, mibDir, out string
	flag.StringVar(&cfgPath, "config", config.PathFromEnv(), "Path to the agent YAML configuration file")
	flag.StringVar(&mibDir, "mibs", mibload.DirFromEnv(), "Directory holding compiled MIB schema documents and types.json")
	flag.StringVar(&out, "out", "", "Path to write the baked snapshot (default: config's state_file)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if out != "" {
		cfg.StateFile = out
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	docs, err := mibload.LoadSchemaDocs(mibDir, cfg.MIBs)
	if err != nil {
		return fmt.Errorf("load MIB schema documents: %w", err)
	}
	typeDefs, err := mibload.LoadTypeDefs(mibDir)
	if err != nil {
		return fmt.Errorf("load type registry: %w", err)
	}

	core, err := agentctx.Build(cfg, docs, typeDefs, logger)
	if err != nil {
		return fmt.Errorf("build agent: %w", err)
	}

	doc := snapshot.BuildFromStore(core.Store, core.Schema, core.Dispatcher.Tombstones())
	if err := snapshot.Save(cfg.StateFile, doc); err != nil {
		return fmt.Errorf("save state snapshot: %w", err)
	}
	logger.Info("bake-state: snapshot baked", "path", cfg.StateFile)
	return nil
}
