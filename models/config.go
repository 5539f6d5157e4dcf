package models

import "time"

// AgentConfig is the agent's YAML configuration document. Zero-value
// fields are filled in by WithDefaults; the loader never has to know the
// defaults itself.
type AgentConfig struct {
	MIBs           []string          `yaml:"mibs"`
	Host           string            `yaml:"host"`
	Port           int               `yaml:"port"`
	Communities    CommunitiesConfig `yaml:"communities"`
	StateFile      string            `yaml:"state_file"`
	Logger         LoggerConfig      `yaml:"logger"`
	MaxMessageSize int               `yaml:"max_message_size"`
	Inform         InformConfig      `yaml:"inform"`
}

// CommunitiesConfig lists the accepted community strings for each operation
// class.
type CommunitiesConfig struct {
	Read  []string `yaml:"read"`
	Write []string `yaml:"write"`
}

// LoggerConfig controls the ambient logging stack: level, an optional
// directory for rotated log files, and whether to force a rotation on
// startup.
type LoggerConfig struct {
	Level           string `yaml:"level"`
	LogDir          string `yaml:"log_dir"`
	RotateOnStartup bool   `yaml:"rotate_on_startup"`
}

// InformConfig controls the Notification Originator's inform retry policy:
// the per-attempt timeout and a bounded number of retries, never unbounded.
type InformConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// WithDefaults returns a copy of c with zero-value fields filled in.
func (c AgentConfig) WithDefaults() AgentConfig {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 161
	}
	if c.StateFile == "" {
		c.StateFile = "state.json"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 1472
	}
	if c.Inform.Timeout == 0 {
		c.Inform.Timeout = 3 * time.Second
	}
	if c.Inform.MaxRetries == 0 {
		c.Inform.MaxRetries = 3
	}
	if len(c.Communities.Read) == 0 {
		c.Communities.Read = []string{"public"}
	}
	return c
}
