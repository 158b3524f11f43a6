// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format  string `yaml:"format"`
		Profile string `yaml:"profile"`
		Verbose bool   `yaml:"verbose"`
		Debug   bool   `yaml:"debug"`
		NoColor bool   `yaml:"no_color"`
		Jobs    int    `yaml:"jobs"`
		Timeout string `yaml:"timeout"`
	} `yaml:"defaults"`

	// Base thresholds applied to every run
	Thresholds Thresholds `yaml:"thresholds"`

	// Profiles for different validation scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a named set of threshold overrides. Only the keys
// present under thresholds replace the base values.
type Profile struct {
	Description string    `yaml:"description"`
	Format      string    `yaml:"format"`
	Thresholds  yaml.Node `yaml:"thresholds"`
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	// Default configuration
	config := &Config{
		Profiles:   make(map[string]Profile),
		Thresholds: DefaultThresholds(),
	}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Jobs = 4
	config.Defaults.Timeout = "60s"

	config.Profiles["strict"] = Profile{
		Description: "Tighter confidence gates for drawings released to construction",
		Thresholds:  thresholdNode(map[string]any{"symbol_confidence": 0.90, "tag_confidence": 0.80, "proximity_threshold": 35.0}),
	}

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := decodeStrict(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	for _, name := range []string{"drawcheck.yaml", "drawcheck.yml", ".drawcheck.yaml", ".drawcheck.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if dir := os.Getenv("DRAWCHECK_CONFIG_DIR"); dir != "" {
		configFile := filepath.Join(dir, "config.yaml")
		if fileExists(configFile) {
			return configFile
		}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		configFile := filepath.Join(xdgConfig, "drawcheck", name)
		if fileExists(configFile) {
			return configFile
		}
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) || err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ThresholdsFor resolves the thresholds for a profile. An empty name returns
// the base thresholds.
func (c *Config) ThresholdsFor(profileName string) (Thresholds, error) {
	resolved := c.Thresholds
	if profileName == "" {
		return resolved, resolved.Validate()
	}

	profile := c.GetProfile(profileName)
	if profile == nil {
		return Thresholds{}, fmt.Errorf("profile %q not found (available: %v)", profileName, c.ListProfiles())
	}
	if !profile.Thresholds.IsZero() {
		data, err := yaml.Marshal(&profile.Thresholds)
		if err != nil {
			return Thresholds{}, fmt.Errorf("profile %q thresholds: %w", profileName, err)
		}
		if err := decodeStrict(data, &resolved); err != nil {
			return Thresholds{}, fmt.Errorf("profile %q thresholds: %w", profileName, err)
		}
	}
	if err := resolved.Validate(); err != nil {
		return Thresholds{}, fmt.Errorf("profile %q: %w", profileName, err)
	}
	return resolved, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := config.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	for _, name := range config.ListProfiles() {
		if _, err := config.ThresholdsFor(name); err != nil {
			return err
		}
	}

	if config.Defaults.Jobs < 0 {
		return fmt.Errorf("defaults.jobs must not be negative")
	}

	return nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard
// locations when configFile is empty). If loading fails, it returns the default
// configuration together with the load error so callers can warn.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg, _ = LoadConfig("")
		return cfg, err
	}
	return cfg, nil
}

// decodeStrict decodes a YAML document into v, rejecting keys v does not
// declare. An empty document leaves v untouched.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// thresholdNode encodes built-in profile overrides as a YAML node
func thresholdNode(values map[string]any) yaml.Node {
	var node yaml.Node
	if err := node.Encode(values); err != nil {
		panic(fmt.Sprintf("encoding built-in profile: %v", err))
	}
	return node
}
