// Package config loads the PLC target list the demo CLIs connect to
// (spec.md §9): a name, address, backplane slot and per-call timeout
// per target, nothing more. It is a deliberately trimmed descendant of
// the teacher's Config, which described an entire multi-protocol
// gateway (PLCs, MQTT brokers, Valkey caches, Kafka topics, rules,
// web/TUI settings); none of that survives scope.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Target describes one PLC the CLIs can connect to.
type Target struct {
	Name      string `yaml:"name"`
	Address   string `yaml:"address"`
	Slot      byte   `yaml:"slot"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Timeout returns the configured per-call timeout, defaulting to 2s
// when unset (matching session.Open's own default).
func (t Target) Timeout() time.Duration {
	if t.TimeoutMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(t.TimeoutMs) * time.Millisecond
}

// Config is the top-level YAML document: a named list of targets.
type Config struct {
	Targets []Target `yaml:"targets"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for i, t := range cfg.Targets {
		if t.Name == "" {
			return nil, fmt.Errorf("config: target %d is missing a name", i)
		}
		if t.Address == "" {
			return nil, fmt.Errorf("config: target %q is missing an address", t.Name)
		}
	}
	return &cfg, nil
}

// Find returns the target with the given name, or false if none matches.
func (c *Config) Find(name string) (Target, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}
