// Package config loads the description of a TPIU capture: which channel IDs
// to expect, the intermixing policy and where the raw bytes come from.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tpiutrace/common"
	"tpiutrace/tpiu"
)

// Source formats understood by the capture package.
const (
	FormatRaw = "raw"
	FormatCSV = "csv"
)

// maxID is the largest ID a half-word can carry.
const maxID = 0x7f

// Config represents a complete capture configuration
type Config struct {
	Channels   []uint8      `yaml:"channels"`             // legitimate channel IDs
	Print      []uint8      `yaml:"print,omitempty"`      // channels to list; empty lists all
	Intermixed *bool        `yaml:"intermixed,omitempty"` // default true
	LogLevel   string       `yaml:"log_level"`            // debug, info, warning, error
	Source     SourceConfig `yaml:"source"`
}

// SourceConfig describes the captured byte stream
type SourceConfig struct {
	Format string `yaml:"format"` // raw, csv
	Path   string `yaml:"path"`
	Baud   int    `yaml:"baud"` // raw only: line rate used to synthesize timestamps
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Source.Format == "" {
		cfg.Source.Format = FormatCSV
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return fmt.Errorf("no channels configured")
	}
	for _, id := range c.Channels {
		if id == tpiu.NullID {
			return fmt.Errorf("channel 0 is the reserved NULL ID")
		}
		if id > maxID {
			return fmt.Errorf("channel 0x%02x does not fit in 7 bits", id)
		}
	}

	channels := c.ChannelSet()
	for _, id := range c.Print {
		if !channels.Contains(id) {
			return fmt.Errorf("print channel 0x%02x is not a configured channel", id)
		}
	}

	if _, err := common.ParseSeverity(c.LogLevel); err != nil {
		return err
	}

	switch c.Source.Format {
	case FormatCSV:
	case FormatRaw:
		if c.Source.Baud < 0 {
			return fmt.Errorf("negative baud rate %d", c.Source.Baud)
		}
	default:
		return fmt.Errorf("unknown source format %q", c.Source.Format)
	}

	if c.Source.Path == "" {
		return fmt.Errorf("source path is required")
	}

	return nil
}

// ChannelSet returns the configured channels as a membership table.
func (c *Config) ChannelSet() *tpiu.ChannelSet {
	return tpiu.NewChannelSet(c.Channels...)
}

// PrintFilter returns the channels to list, or nil when all are listed.
func (c *Config) PrintFilter() *tpiu.ChannelSet {
	if len(c.Print) == 0 {
		return nil
	}
	return tpiu.NewChannelSet(c.Print...)
}

// IntermixedOrDefault returns the intermixing policy, true when unset.
func (c *Config) IntermixedOrDefault() bool {
	if c.Intermixed == nil {
		return true
	}
	return *c.Intermixed
}

// Severity returns the configured minimum log severity.
func (c *Config) Severity() common.Severity {
	s, _ := common.ParseSeverity(c.LogLevel)
	return s
}
