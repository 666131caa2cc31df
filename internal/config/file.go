package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileConfig represents the configuration file. Every field is optional;
// nil means "not set" so flags and defaults can fill in.
type FileConfig struct {
	Session SessionConfig `toml:"session" koanf:"session"`
	Store   StoreConfig   `toml:"store" koanf:"store"`
	Log     LogConfig     `toml:"log" koanf:"log"`
	Metrics MetricsConfig `toml:"metrics" koanf:"metrics"`
}

// SessionConfig maps test-related settings.
type SessionConfig struct {
	User       *string `toml:"user" koanf:"user"`
	Type       *string `toml:"type" koanf:"type"`
	Difficulty *string `toml:"difficulty" koanf:"difficulty"`
	Trials     *int    `toml:"trials" koanf:"trials"`
}

// StoreConfig selects the profile store.
type StoreConfig struct {
	Backend *string `toml:"backend" koanf:"backend"`
	Path    *string `toml:"path" koanf:"path"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level" koanf:"level"`
	File  *string `toml:"file" koanf:"file"`
}

// MetricsConfig maps the metrics textfile export.
type MetricsConfig struct {
	File *string `toml:"file" koanf:"file"`
}

// LoadConfig reads a config file from the given path. Missing file is not an
// error. Files ending in .yaml or .yml are YAML; anything else is TOML.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func loadYAML(path string) (FileConfig, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	var cfg FileConfig
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Overlay returns c with every field set in o replacing c's value.
func (c FileConfig) Overlay(o FileConfig) FileConfig {
	overlay(&c.Session.User, o.Session.User)
	overlay(&c.Session.Type, o.Session.Type)
	overlay(&c.Session.Difficulty, o.Session.Difficulty)
	overlay(&c.Session.Trials, o.Session.Trials)
	overlay(&c.Store.Backend, o.Store.Backend)
	overlay(&c.Store.Path, o.Store.Path)
	overlay(&c.Log.Level, o.Log.Level)
	overlay(&c.Log.File, o.Log.File)
	overlay(&c.Metrics.File, o.Metrics.File)
	return c
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
