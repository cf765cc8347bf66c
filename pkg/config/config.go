// Package config loads lint run configuration: a YAML rule-override file
// plus environment-variable defaults for runtime knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// RuleSetting overrides one rule. A setting with a Path applies only to
// nodes at or beneath that dotted path; an empty Path applies everywhere.
type RuleSetting struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Disabled reports whether the setting turns its rule off.
func (s RuleSetting) Disabled() bool {
	return s.Enabled != nil && !*s.Enabled
}

// Config is the per-run configuration.
type Config struct {
	// Rules maps rule id to its override.
	Rules map[string]RuleSetting `yaml:"rules"`
}

// UnknownRuleError reports a config entry naming a rule id the catalog
// does not contain. Unlike unknown ids in inline directives, this is
// fatal at startup.
type UnknownRuleError struct {
	ID string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("config references unknown rule id %q", e.ID)
}

// RuleSet is the minimal catalog view config validation needs.
type RuleSet interface {
	Has(id string) bool
}

// Default returns an empty configuration.
func Default() *Config {
	return &Config{Rules: make(map[string]RuleSetting)}
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleSetting)
	}
	return &cfg, nil
}

// Validate checks every configured rule id against the catalog.
func (c *Config) Validate(rules RuleSet) error {
	for id := range c.Rules {
		if !rules.Has(id) {
			return &UnknownRuleError{ID: id}
		}
	}
	return nil
}

// Disable records a repository-wide disable for the given rule id,
// replacing any narrower setting.
func (c *Config) Disable(id string) {
	disabled := false
	c.Rules[id] = RuleSetting{Enabled: &disabled}
}

// Runtime holds knobs sourced from APILINT_* environment variables, with
// flag values taking precedence in the CLI layer.
type Runtime struct {
	Workers  int
	Deadline time.Duration
	// Grace bounds how long a cancelled run waits for in-flight checks.
	Grace    time.Duration
	LogLevel string
}

// LoadRuntime reads runtime defaults from the environment.
func LoadRuntime() Runtime {
	return Runtime{
		Workers:  getEnvInt("APILINT_WORKERS", 0), // 0 = GOMAXPROCS
		Deadline: getEnvDuration("APILINT_DEADLINE", 0),
		Grace:    getEnvDuration("APILINT_GRACE", 2*time.Second),
		LogLevel: getEnv("APILINT_LOG_LEVEL", "warn"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
