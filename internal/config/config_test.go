package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	. "github.com/smartystreets/goconvey/convey"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, EnvPrefix) {
			t.Setenv(key, "")
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("unsetenv %s: %v", key, err)
			}
		}
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	tomlPath := writeFile(t, "config.toml", `
[session]
user = "alice"
difficulty = "hard"
trials = 30

[store]
backend = "json"
`)
	yamlPath := writeFile(t, "config.yaml", `
session:
  user: bob
  type: reverse
log:
  level: debug
`)

	Convey("Given config files", t, func() {
		Convey("A missing file yields an empty config", func() {
			cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
			So(err, ShouldBeNil)
			So(cfg.Session.User, ShouldBeNil)
			So(cfg.Session.Trials, ShouldBeNil)
		})

		Convey("An empty path is rejected", func() {
			_, err := LoadConfig("")
			So(err, ShouldNotBeNil)
		})

		Convey("TOML values are decoded and unset keys stay nil", func() {
			cfg, err := LoadConfig(tomlPath)
			So(err, ShouldBeNil)
			So(*cfg.Session.User, ShouldEqual, "alice")
			So(*cfg.Session.Difficulty, ShouldEqual, "hard")
			So(*cfg.Session.Trials, ShouldEqual, 30)
			So(*cfg.Store.Backend, ShouldEqual, "json")
			So(cfg.Session.Type, ShouldBeNil)
			So(cfg.Log.Level, ShouldBeNil)
		})

		Convey("YAML files are read through koanf", func() {
			cfg, err := LoadConfig(yamlPath)
			So(err, ShouldBeNil)
			So(*cfg.Session.User, ShouldEqual, "bob")
			So(*cfg.Session.Type, ShouldEqual, "reverse")
			So(*cfg.Log.Level, ShouldEqual, "debug")
			So(cfg.Session.Trials, ShouldBeNil)
		})

		Convey("Malformed TOML is an error", func() {
			_, err := LoadConfig(writeFile(t, "bad.toml", "[session\nuser ="))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[session]
user = "alice"
trials = 30
`)
	t.Setenv("STROOP_SESSION_TRIALS", "50")
	t.Setenv("STROOP_STORE_PATH", "/tmp/profiles.json")
	t.Setenv("STROOP_LOG_LEVEL", "warn")

	Convey("Given a file and environment overrides", t, func() {
		cfg, err := Load(path)
		So(err, ShouldBeNil)

		Convey("Environment wins over the file", func() {
			So(*cfg.Session.Trials, ShouldEqual, 50)
		})
		Convey("File values without overrides are kept", func() {
			So(*cfg.Session.User, ShouldEqual, "alice")
		})
		Convey("Environment-only values are added", func() {
			So(*cfg.Store.Path, ShouldEqual, "/tmp/profiles.json")
			So(*cfg.Log.Level, ShouldEqual, "warn")
			So(cfg.Metrics.File, ShouldBeNil)
		})
	})
}

func TestConfigPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	Convey("Paths follow the XDG directories", t, func() {
		So(ConfigPath(), ShouldEqual, filepath.Join("/xdg/config", "stroop", "config.toml"))
		So(DefaultStorePath("sqlite"), ShouldEqual, filepath.Join("/xdg/data", "stroop", "stroop.db"))
		So(DefaultStorePath("json"), ShouldEqual, filepath.Join("/xdg/data", "stroop", "stroop_user_data.json"))
		So(DefaultLogPath(), ShouldEqual, filepath.Join("/xdg/data", "stroop", "stroop.log"))

		Convey("STROOP_CONFIG overrides the file location", func() {
			t.Setenv(PathEnv, "/etc/stroop.yaml")
			So(ConfigPath(), ShouldEqual, "/etc/stroop.yaml")
		})
	})
}

func TestDefaultTemplateDecodes(t *testing.T) {
	var cfg FileConfig
	if _, err := toml.Decode(DefaultTemplate(), &cfg); err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if cfg.Session.User != nil || cfg.Store.Backend != nil {
		t.Fatalf("template values must all be commented out")
	}
}
