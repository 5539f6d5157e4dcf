// Command run-agent is the main SNMP simulator agent binary.
//
// It loads YAML configuration and the MIB schema/type-registry documents
// from directories specified by environment variables (or command-line
// flags), builds the CoreContext, starts the UDP transport listener, and
// runs until interrupted (SIGINT / SIGTERM). On a clean shutdown it writes
// a state snapshot so the next run resumes where this one left off.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vpbank/snmp_agent/internal/agentctx"
	"github.com/vpbank/snmp_agent/internal/config"
	"github.com/vpbank/snmp_agent/internal/mibload"
	"github.com/vpbank/snmp_agent/internal/snapshot"
	"github.com/vpbank/snmp_agent/internal/transport"
	"github.com/vpbank/snmp_agent/models"
	"github.com/vpbank/snmp_agent/transport/file"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "run-agent: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logLevel  string
		logFmt    string
		cfgPath   string
		mibDir    string
		saveOnTTL bool
	)

	flag.StringVar(&logLevel, "log.level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.StringVar(&logFmt, "log.fmt", "text", "Log format: json, text")
	flag.StringVar(&cfgPath, "config", config.PathFromEnv(), "Path to the agent YAML configuration file")
	flag.StringVar(&mibDir, "mibs", mibload.DirFromEnv(), "Directory holding compiled MIB schema documents and types.json")
	flag.BoolVar(&saveOnTTL, "state.save-on-shutdown", true, "Write a state snapshot on clean shutdown")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}

	logger, err := buildLogger(cfg, logFmt)
	if err != nil {
		return err
	}

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

	listener := transport.New(transport.Config{
		ListenAddr: fmt.Sprintf("%s:%d", core.Config.Host, core.Config.Port),
	}, core.Dispatcher.HandleDatagram, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := listener.Start(ctx); err != nil {
		return fmt.Errorf("start listener: %w", err)
	}
	logger.Info("run-agent: listening", "addr", listener.ListenAddr())

	<-ctx.Done()
	logger.Info("run-agent: received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		listener.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("run-agent: shutdown timed out waiting for in-flight requests")
	}

	if saveOnTTL {
		doc := snapshot.BuildFromStore(core.Store, core.Schema, core.Dispatcher.Tombstones())
		if err := snapshot.Save(core.Config.StateFile, doc); err != nil {
			return fmt.Errorf("save state snapshot: %w", err)
		}
		logger.Info("run-agent: state snapshot saved", "path", core.Config.StateFile)
	}

	return nil
}

// buildLogger constructs the process logger from cfg.Logger, optionally
// rotating the previous run's log file at startup (logger.rotate_on_startup)
// and writing to logger.log_dir instead of stderr when one is configured.
func buildLogger(cfg models.AgentConfig, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch cfg.Logger.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", cfg.Logger.Level)
	}

	var w io.Writer = os.Stderr
	if cfg.Logger.LogDir != "" {
		path := filepath.Join(cfg.Logger.LogDir, "agent.log")
		if cfg.Logger.RotateOnStartup {
			if _, err := os.Stat(path); err == nil {
				if err := os.Rename(path, path+"."+time.Now().UTC().Format("20060102T150405Z")); err != nil {
					return nil, fmt.Errorf("rotate startup log: %w", err)
				}
			}
		}
		rf, err := file.NewRotatingFile(file.RotateConfig{FilePath: path, MaxBytes: 10 << 20, MaxBackups: 5}, nil)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = rf
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (expected json|text)", format)
	}
	return slog.New(handler), nil
}
