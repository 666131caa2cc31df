package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. STROOP_SESSION_TRIALS.
const EnvPrefix = "STROOP_"

// PathEnv overrides the config file location.
const PathEnv = EnvPrefix + "CONFIG"

// ConfigPath returns $STROOP_CONFIG or the default TOML path.
func ConfigPath() string {
	if v := strings.TrimSpace(os.Getenv(PathEnv)); v != "" {
		return v
	}
	return DefaultConfigPath()
}

// LoadEnv reads STROOP_<SECTION>_<KEY> variables. Only variables that are
// set produce non-nil fields.
func LoadEnv() (FileConfig, error) {
	k := koanf.New(".")
	provider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		// SESSION_TRIALS -> session.trials
		return strings.Replace(s, "_", ".", 1)
	})
	if err := k.Load(provider, nil); err != nil {
		return FileConfig{}, fmt.Errorf("failed to read environment: %w", err)
	}
	var cfg FileConfig
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode environment: %w", err)
	}
	return cfg, nil
}

// Load reads the config file at path and applies environment overrides.
func Load(path string) (FileConfig, error) {
	fileCfg, err := LoadConfig(path)
	if err != nil {
		return FileConfig{}, err
	}
	envCfg, err := LoadEnv()
	if err != nil {
		return FileConfig{}, err
	}
	return fileCfg.Overlay(envCfg), nil
}
