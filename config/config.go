// Package config handles mesa configuration loading.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all mesa configuration.
type Config struct {
	Listen   ListenConfig   `yaml:"listen"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Airtable AirtableConfig `yaml:"airtable"`
	Sessions SessionsConfig `yaml:"sessions"`
	Timezone string         `yaml:"timezone"`
	LogLevel string         `yaml:"log_level"`
}

// ListenConfig defines the HTTP listener.
type ListenConfig struct {
	Address string `yaml:"address"`
}

// GeminiConfig defines the language model settings. The API key falls
// back to the GEMINI_API_KEY environment variable when empty.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AirtableConfig defines the reservation store settings. The API key
// falls back to the AIRTABLE_API_KEY environment variable when empty.
type AirtableConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseID  string `yaml:"base_id"`
	TableID string `yaml:"table_id"`
}

// SessionsConfig defines session persistence.
type SessionsConfig struct {
	Path string `yaml:"path"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Airtable.APIKey == "" {
		cfg.Airtable.APIKey = os.Getenv("AIRTABLE_API_KEY")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen.Address == "" {
		c.Listen.Address = ":8080"
	}
	if c.Sessions.Path == "" {
		c.Sessions.Path = "data/sessions.db"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Mexico_City"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini api key is required (config or GEMINI_API_KEY)")
	}
	if c.Airtable.APIKey == "" {
		return fmt.Errorf("airtable api key is required (config or AIRTABLE_API_KEY)")
	}
	if c.Airtable.BaseID == "" || c.Airtable.TableID == "" {
		return fmt.Errorf("airtable base_id and table_id are required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured restaurant timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
