// Package config loads the agent's single YAML configuration document: a
// lenient yaml.v3 decode (KnownFields(false), forward compatible with keys
// this build doesn't recognize yet) followed by WithDefaults filling in
// every zero-value field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vpbank/snmp_agent/models"
)

// PathFromEnv resolves the configuration file path: the AGENT_CONFIG_PATH
// environment variable if set, else "agent.yaml" in the working directory.
func PathFromEnv() string {
	if v := os.Getenv("AGENT_CONFIG_PATH"); v != "" {
		return v
	}
	return "agent.yaml"
}

// Load reads and parses the YAML document at path, returning a fully
// defaulted AgentConfig.
func Load(path string) (models.AgentConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.AgentConfig{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var cfg models.AgentConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(false)
	if err := dec.Decode(&cfg); err != nil {
		return models.AgentConfig{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg.WithDefaults(), nil
}
